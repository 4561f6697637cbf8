package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/KrishPrajapati1346/Treasure-Hunt-Backend/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type QuestionFilters struct {
	CreatedBy *uint `json:"created_by"`
	Limit     int   `json:"limit"`
	Offset    int   `json:"offset"`
}

type AnswerFilters struct {
	IsReviewed *bool `json:"is_reviewed"`
	IsAccepted *bool `json:"is_accepted"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}

// ===== SHARED RESULT STRUCTS =====

// CurrentAssignment is the first assigned-but-unanswered question for a
// participant, in assignment order.
type CurrentAssignment struct {
	AssignmentID uint            `json:"assignment_id"`
	Question     models.Question `json:"question"`
}

// ParticipantScore is one leaderboard row before ranking.
type ParticipantScore struct {
	UserID          uint   `json:"id"`
	Username        string `json:"username"`
	QuestionsSolved int    `json:"questions_solved"`
	TotalPoints     int    `json:"total_points"`
}

// ===== REPOSITORY INTERFACES =====

// All methods accept an optional tx; pass nil to use the base connection.
// Services that need multi-statement atomicity go through
// Repository.WithTransaction instead of threading tx handles around.

type UserRepository interface {
	Create(ctx context.Context, tx *gorm.DB, user *models.User) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, tx *gorm.DB, username string) (*models.User, error)
	ExistsByUsername(ctx context.Context, tx *gorm.DB, username string) (bool, error)
	ListByRole(ctx context.Context, tx *gorm.DB, role models.UserRole) ([]*models.User, error)
}

type QuestionRepository interface {
	Create(ctx context.Context, tx *gorm.DB, question *models.Question) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Question, error)
	List(ctx context.Context, tx *gorm.DB, filters QuestionFilters) ([]*models.Question, int64, error)
	ListIDs(ctx context.Context, tx *gorm.DB) ([]uint, error)
	Count(ctx context.Context, tx *gorm.DB) (int64, error)
}

type AssignmentRepository interface {
	CreateBatch(ctx context.Context, tx *gorm.DB, assignments []*models.QuestionAssignment) error
	CountByUser(ctx context.Context, tx *gorm.DB, userID uint) (int64, error)
	ListByUser(ctx context.Context, tx *gorm.DB, userID uint) ([]*models.QuestionAssignment, error)
	ExistsForQuestion(ctx context.Context, tx *gorm.DB, userID, questionID uint) (bool, error)
	// FirstUnanswered returns the lowest-id assignment of userID whose
	// question has no answer row in partitionID, or a not-found error when
	// every assignment is answered.
	FirstUnanswered(ctx context.Context, tx *gorm.DB, userID, partitionID uint) (*CurrentAssignment, error)
}

type PartitionRepository interface {
	// Ensure creates the partition row if absent and loads the current row
	// either way. Safe to call repeatedly and concurrently.
	Ensure(ctx context.Context, tx *gorm.DB, partition *models.AnswerPartition) error
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uint) (*models.AnswerPartition, error)
	GetByUsername(ctx context.Context, tx *gorm.DB, username string) (*models.AnswerPartition, error)
}

type AnswerRepository interface {
	Create(ctx context.Context, tx *gorm.DB, answer *models.Answer) error
	GetByID(ctx context.Context, tx *gorm.DB, partitionID, answerID uint) (*models.Answer, error)
	ExistsForQuestion(ctx context.Context, tx *gorm.DB, partitionID, questionID uint) (bool, error)
	ListByPartition(ctx context.Context, tx *gorm.DB, partitionID uint, filters AnswerFilters) ([]*models.Answer, error)
	Update(ctx context.Context, tx *gorm.DB, answer *models.Answer) error
	// ParticipantScores aggregates accepted answers per participant across
	// every partition in one query.
	ParticipantScores(ctx context.Context, tx *gorm.DB) ([]*ParticipantScore, error)
}
