package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/KrishPrajapati1346/Treasure-Hunt-Backend/internal/models"
	"github.com/KrishPrajapati1346/Treasure-Hunt-Backend/internal/repositories"
)

type questionRepository struct {
	db *gorm.DB
}

func NewQuestionPostgreSQL(db *gorm.DB) repositories.QuestionRepository {
	return &questionRepository{db: db}
}

func (r *questionRepository) Create(ctx context.Context, tx *gorm.DB, question *models.Question) error {
	db := getDB(r.db, tx)
	if err := db.WithContext(ctx).Create(question).Error; err != nil {
		return handleDBError(err, "create question")
	}
	return nil
}

func (r *questionRepository) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Question, error) {
	db := getDB(r.db, tx)
	var question models.Question
	if err := db.WithContext(ctx).First(&question, id).Error; err != nil {
		return nil, handleDBError(err, "get question by id")
	}
	return &question, nil
}

func (r *questionRepository) List(ctx context.Context, tx *gorm.DB, filters repositories.QuestionFilters) ([]*models.Question, int64, error) {
	db := getDB(r.db, tx)
	var questions []*models.Question
	var total int64

	query := db.WithContext(ctx).Model(&models.Question{})
	if filters.CreatedBy != nil {
		query = query.Where("created_by = ?", *filters.CreatedBy)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, handleDBError(err, "count questions")
	}

	query = query.Order("id DESC")
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	if err := query.Find(&questions).Error; err != nil {
		return nil, 0, handleDBError(err, "list questions")
	}
	return questions, total, nil
}

func (r *questionRepository) ListIDs(ctx context.Context, tx *gorm.DB) ([]uint, error) {
	db := getDB(r.db, tx)
	var ids []uint
	err := db.WithContext(ctx).
		Model(&models.Question{}).
		Order("id").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, handleDBError(err, "list question ids")
	}
	return ids, nil
}

func (r *questionRepository) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
	db := getDB(r.db, tx)
	var count int64
	if err := db.WithContext(ctx).Model(&models.Question{}).Count(&count).Error; err != nil {
		return 0, handleDBError(err, "count questions")
	}
	return count, nil
}
