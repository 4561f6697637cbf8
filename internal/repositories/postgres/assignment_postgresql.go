package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/KrishPrajapati1346/Treasure-Hunt-Backend/internal/models"
	"github.com/KrishPrajapati1346/Treasure-Hunt-Backend/internal/repositories"
)

type assignmentRepository struct {
	db *gorm.DB
}

func NewAssignmentPostgreSQL(db *gorm.DB) repositories.AssignmentRepository {
	return &assignmentRepository{db: db}
}

func (r *assignmentRepository) CreateBatch(ctx context.Context, tx *gorm.DB, assignments []*models.QuestionAssignment) error {
	if len(assignments) == 0 {
		return nil
	}
	db := getDB(r.db, tx)
	if err := db.WithContext(ctx).Create(&assignments).Error; err != nil {
		return handleDBError(err, "create assignments")
	}
	return nil
}

func (r *assignmentRepository) CountByUser(ctx context.Context, tx *gorm.DB, userID uint) (int64, error) {
	db := getDB(r.db, tx)
	var count int64
	err := db.WithContext(ctx).
		Model(&models.QuestionAssignment{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	if err != nil {
		return 0, handleDBError(err, "count assignments")
	}
	return count, nil
}

func (r *assignmentRepository) ListByUser(ctx context.Context, tx *gorm.DB, userID uint) ([]*models.QuestionAssignment, error) {
	db := getDB(r.db, tx)
	var assignments []*models.QuestionAssignment
	err := db.WithContext(ctx).
		Preload("Question").
		Where("user_id = ?", userID).
		Order("id").
		Find(&assignments).Error
	if err != nil {
		return nil, handleDBError(err, "list assignments")
	}
	return assignments, nil
}

func (r *assignmentRepository) ExistsForQuestion(ctx context.Context, tx *gorm.DB, userID, questionID uint) (bool, error) {
	db := getDB(r.db, tx)
	var count int64
	err := db.WithContext(ctx).
		Model(&models.QuestionAssignment{}).
		Where("user_id = ? AND question_id = ?", userID, questionID).
		Count(&count).Error
	if err != nil {
		return false, handleDBError(err, "check assignment existence")
	}
	return count > 0, nil
}

func (r *assignmentRepository) FirstUnanswered(ctx context.Context, tx *gorm.DB, userID, partitionID uint) (*repositories.CurrentAssignment, error) {
	db := getDB(r.db, tx)

	var assignment models.QuestionAssignment
	err := db.WithContext(ctx).
		Preload("Question").
		Where("user_id = ?", userID).
		Where(`NOT EXISTS (
			SELECT 1 FROM user_answers ua
			WHERE ua.partition_id = ? AND ua.question_id = question_assignments.question_id
		)`, partitionID).
		Order("id").
		First(&assignment).Error
	if err != nil {
		return nil, handleDBError(err, "get first unanswered assignment")
	}

	return &repositories.CurrentAssignment{
		AssignmentID: assignment.ID,
		Question:     assignment.Question,
	}, nil
}
