package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/KrishPrajapati1346/Treasure-Hunt-Backend/internal/models"
	"github.com/KrishPrajapati1346/Treasure-Hunt-Backend/internal/repositories"
)

type answerRepository struct {
	db *gorm.DB
}

func NewAnswerPostgreSQL(db *gorm.DB) repositories.AnswerRepository {
	return &answerRepository{db: db}
}

func (r *answerRepository) Create(ctx context.Context, tx *gorm.DB, answer *models.Answer) error {
	db := getDB(r.db, tx)
	if err := db.WithContext(ctx).Create(answer).Error; err != nil {
		return handleDBError(err, "create answer")
	}
	return nil
}

func (r *answerRepository) GetByID(ctx context.Context, tx *gorm.DB, partitionID, answerID uint) (*models.Answer, error) {
	db := getDB(r.db, tx)
	var answer models.Answer
	err := db.WithContext(ctx).
		Preload("Question").
		Preload("Reviewer").
		Where("partition_id = ?", partitionID).
		First(&answer, answerID).Error
	if err != nil {
		return nil, handleDBError(err, "get answer by id")
	}
	return &answer, nil
}

func (r *answerRepository) ExistsForQuestion(ctx context.Context, tx *gorm.DB, partitionID, questionID uint) (bool, error) {
	db := getDB(r.db, tx)
	var count int64
	err := db.WithContext(ctx).
		Model(&models.Answer{}).
		Where("partition_id = ? AND question_id = ?", partitionID, questionID).
		Count(&count).Error
	if err != nil {
		return false, handleDBError(err, "check answer existence")
	}
	return count > 0, nil
}

func (r *answerRepository) ListByPartition(ctx context.Context, tx *gorm.DB, partitionID uint, filters repositories.AnswerFilters) ([]*models.Answer, error) {
	db := getDB(r.db, tx)
	var answers []*models.Answer

	query := db.WithContext(ctx).
		Preload("Question").
		Preload("Reviewer").
		Where("partition_id = ?", partitionID)

	if filters.IsReviewed != nil {
		query = query.Where("is_reviewed = ?", *filters.IsReviewed)
	}
	if filters.IsAccepted != nil {
		query = query.Where("is_accepted = ?", *filters.IsAccepted)
	}
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	if err := query.Order("submitted_at DESC").Find(&answers).Error; err != nil {
		return nil, handleDBError(err, "list answers")
	}
	return answers, nil
}

func (r *answerRepository) Update(ctx context.Context, tx *gorm.DB, answer *models.Answer) error {
	db := getDB(r.db, tx)
	if err := db.WithContext(ctx).Save(answer).Error; err != nil {
		return handleDBError(err, "update answer")
	}
	return nil
}

// ParticipantScores aggregates accepted answers for every participant in a
// single grouped query. Participants without a partition or without
// accepted answers come back with zero counts.
func (r *answerRepository) ParticipantScores(ctx context.Context, tx *gorm.DB) ([]*repositories.ParticipantScore, error) {
	db := getDB(r.db, tx)
	var scores []*repositories.ParticipantScore

	err := db.WithContext(ctx).
		Table("users u").
		Select(`u.id AS user_id,
			u.username,
			COUNT(ua.id) FILTER (WHERE ua.is_accepted) AS questions_solved,
			COALESCE(SUM(qb.points) FILTER (WHERE ua.is_accepted), 0) AS total_points`).
		Joins("LEFT JOIN answer_partitions ap ON ap.user_id = u.id").
		Joins("LEFT JOIN user_answers ua ON ua.partition_id = ap.id").
		Joins("LEFT JOIN question_bank qb ON qb.id = ua.question_id").
		Where("u.role = ?", models.RoleParticipant).
		Group("u.id, u.username").
		Order("u.id").
		Scan(&scores).Error
	if err != nil {
		return nil, handleDBError(err, "aggregate participant scores")
	}
	return scores, nil
}
