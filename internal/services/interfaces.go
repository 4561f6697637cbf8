package services

import (
	"context"
	"time"

	"github.com/KrishPrajapati1346/Treasure-Hunt-Backend/internal/models"
	"github.com/KrishPrajapati1346/Treasure-Hunt-Backend/internal/repositories"
	"github.com/KrishPrajapati1346/Treasure-Hunt-Backend/internal/validator"
)

// ===== REQUEST/RESPONSE DTOs =====

// Request payloads live next to their validation rules.
type RegisterRequest = validator.RegisterRequest
type LoginRequest = validator.LoginRequest
type CreateQuestionRequest = validator.CreateQuestionRequest
type SubmitAnswerRequest = validator.SubmitAnswerRequest
type ReviewAnswerRequest = validator.ReviewAnswerRequest

// ClientMeta is request-scoped client info recorded alongside submissions.
type ClientMeta struct {
	IP        string `json:"ip,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`
}

type UserResponse struct {
	ID       uint            `json:"id"`
	Username string          `json:"username"`
	Role     models.UserRole `json:"role"`
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// CurrentQuestionResponse carries either the next question to answer or the
// Completed sentinel once every assignment has an answer.
type CurrentQuestionResponse struct {
	Completed    bool             `json:"completed"`
	AssignmentID uint             `json:"assignment_id,omitempty"`
	Question     *models.Question `json:"question,omitempty"`
}

type QuestionListResponse struct {
	Questions []*models.Question `json:"questions"`
	Total     int64              `json:"total"`
}

type TeamResponse struct {
	ID          uint   `json:"id"`
	Username    string `json:"username"`
	TotalPoints int    `json:"total_points"`
}

type LeaderboardEntry struct {
	UserID          uint   `json:"id"`
	Username        string `json:"username"`
	QuestionsSolved int    `json:"questions_solved"`
	TotalPoints     int    `json:"total_points"`
}

// AnswerWithQuestion is one partition listing row: the answer joined with
// its question's text and points and the reviewer's username when reviewed.
type AnswerWithQuestion struct {
	ID                 uint       `json:"id"`
	QuestionID         uint       `json:"question_id"`
	QuestionText       string     `json:"question_text"`
	Points             int        `json:"points"`
	RequiresImage      bool       `json:"requires_image"`
	TextAnswer         *string    `json:"text_answer"`
	ImageAnswerURL     *string    `json:"image_answer_url"`
	SubmittedAt        time.Time  `json:"submitted_at"`
	IsReviewed         bool       `json:"is_reviewed"`
	IsAccepted         bool       `json:"is_accepted"`
	ReviewedAt         *time.Time `json:"reviewed_at"`
	ReviewedByUsername *string    `json:"reviewed_by_username"`
	AdminFeedback      *string    `json:"admin_feedback"`
}

// ===== SERVICE INTERFACES =====

type AuthService interface {
	// Register creates the account; participants additionally get their
	// answer partition and question assignment in the same transaction.
	Register(ctx context.Context, req *RegisterRequest) (*UserResponse, error)
	// Login verifies credentials and issues a signed token. Participants
	// with zero assignments are assigned on the spot (self-healing).
	Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error)
}

type AssignmentService interface {
	// Assign samples the assignment batch for a fresh participant.
	Assign(ctx context.Context, userID uint) ([]uint, error)
	// CurrentQuestion returns the first assigned question without an
	// answer, or the Completed sentinel.
	CurrentQuestion(ctx context.Context, userID uint) (*CurrentQuestionResponse, error)
}

type AnswerService interface {
	Submit(ctx context.Context, userID, questionID uint, req *SubmitAnswerRequest, meta *ClientMeta) (*models.Answer, error)
	Review(ctx context.Context, adminID uint, username string, answerID uint, req *ReviewAnswerRequest) (*models.Answer, error)
	ListForParticipant(ctx context.Context, username string) ([]*AnswerWithQuestion, error)
}

type ScoringService interface {
	Teams(ctx context.Context) ([]*TeamResponse, error)
	Leaderboard(ctx context.Context) ([]*LeaderboardEntry, error)
	// ExportLeaderboard renders the current leaderboard as an XLSX file.
	ExportLeaderboard(ctx context.Context) ([]byte, error)
}

type QuestionService interface {
	Create(ctx context.Context, req *CreateQuestionRequest, creatorID uint) (*models.Question, error)
	List(ctx context.Context, filters repositories.QuestionFilters) (*QuestionListResponse, error)
}

// ===== SERVICE MANAGER =====

type ServiceManager interface {
	Auth() AuthService
	Assignment() AssignmentService
	Answer() AnswerService
	Scoring() ScoringService
	Question() QuestionService

	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
