package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/KrishPrajapati1346/Treasure-Hunt-Backend/internal/models"
	"github.com/KrishPrajapati1346/Treasure-Hunt-Backend/internal/repositories"
	"github.com/KrishPrajapati1346/Treasure-Hunt-Backend/internal/validator"
)

type questionService struct {
	repo      repositories.Repository
	validator *validator.Validator
	logger    *slog.Logger
}

func NewQuestionService(repo repositories.Repository, v *validator.Validator, logger *slog.Logger) QuestionService {
	return &questionService{
		repo:      repo,
		validator: v,
		logger:    logger,
	}
}

// Create adds a question to the bank. Only admins create questions.
func (s *questionService) Create(ctx context.Context, req *CreateQuestionRequest, creatorID uint) (*models.Question, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	creator, err := s.repo.User().GetByID(ctx, nil, creatorID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load creator: %w", err)
	}
	if creator.Role != models.RoleAdmin {
		return nil, NewPermissionError(creatorID, "question", "create", "insufficient role permissions")
	}

	question := &models.Question{
		Question:      req.Question,
		Points:        req.Points,
		RequiresImage: req.RequiresImage,
		ImageURL:      req.ImageURL,
		CreatedBy:     creatorID,
	}

	if err := s.repo.Question().Create(ctx, nil, question); err != nil {
		return nil, fmt.Errorf("failed to create question: %w", err)
	}

	s.logger.Info("question created",
		"question_id", question.ID,
		"points", question.Points,
		"created_by", creatorID)

	return question, nil
}

// List returns bank questions, newest first.
func (s *questionService) List(ctx context.Context, filters repositories.QuestionFilters) (*QuestionListResponse, error) {
	questions, total, err := s.repo.Question().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}

	return &QuestionListResponse{
		Questions: questions,
		Total:     total,
	}, nil
}
