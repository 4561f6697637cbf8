package postgres

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/KrishPrajapati1346/Treasure-Hunt-Backend/internal/models"
	"github.com/KrishPrajapati1346/Treasure-Hunt-Backend/internal/repositories"
)

type partitionRepository struct {
	db *gorm.DB
}

func NewPartitionPostgreSQL(db *gorm.DB) repositories.PartitionRepository {
	return &partitionRepository{db: db}
}

// Ensure inserts the partition row if it does not exist yet and reloads the
// stored row into partition. ON CONFLICT DO NOTHING makes the insert
// idempotent under concurrent provisioning of the same participant.
func (r *partitionRepository) Ensure(ctx context.Context, tx *gorm.DB, partition *models.AnswerPartition) error {
	db := getDB(r.db, tx)

	err := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoNothing: true,
		}).
		Create(partition).Error
	if err != nil {
		return handleDBError(err, "ensure answer partition")
	}

	// When the row already existed the insert is skipped and no id comes
	// back, so reload by user id either way.
	err = db.WithContext(ctx).
		Where("user_id = ?", partition.UserID).
		First(partition).Error
	if err != nil {
		return handleDBError(err, "load answer partition")
	}
	return nil
}

func (r *partitionRepository) GetByUserID(ctx context.Context, tx *gorm.DB, userID uint) (*models.AnswerPartition, error) {
	db := getDB(r.db, tx)
	var partition models.AnswerPartition
	if err := db.WithContext(ctx).Where("user_id = ?", userID).First(&partition).Error; err != nil {
		return nil, handleDBError(err, "get partition by user id")
	}
	return &partition, nil
}

func (r *partitionRepository) GetByUsername(ctx context.Context, tx *gorm.DB, username string) (*models.AnswerPartition, error) {
	db := getDB(r.db, tx)
	var partition models.AnswerPartition
	if err := db.WithContext(ctx).Where("username = ?", username).First(&partition).Error; err != nil {
		return nil, handleDBError(err, "get partition by username")
	}
	return &partition, nil
}
