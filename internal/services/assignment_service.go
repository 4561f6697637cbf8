package services

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/KrishPrajapati1346/Treasure-Hunt-Backend/internal/models"
	"github.com/KrishPrajapati1346/Treasure-Hunt-Backend/internal/repositories"
	"github.com/KrishPrajapati1346/Treasure-Hunt-Backend/internal/tenant"
)

// DefaultAssignmentSize is the number of questions handed to each
// participant.
const DefaultAssignmentSize = 10

type assignmentService struct {
	repo        repositories.Repository
	provisioner *tenant.Provisioner
	logger      *slog.Logger
	batchSize   int

	// shuffle is rand.Shuffle in production; tests inject a deterministic
	// permutation.
	shuffle func(n int, swap func(i, j int))
}

func NewAssignmentService(repo repositories.Repository, provisioner *tenant.Provisioner, logger *slog.Logger, batchSize int) AssignmentService {
	if batchSize <= 0 {
		batchSize = DefaultAssignmentSize
	}
	return &assignmentService{
		repo:        repo,
		provisioner: provisioner,
		logger:      logger,
		batchSize:   batchSize,
		shuffle:     rand.Shuffle,
	}
}

// Assign samples batchSize distinct questions uniformly at random
// (shuffle-and-take) and records them for userID. The existence check and
// the batch insert share one transaction, and the (user_id, question_id)
// unique index backs it up, so two racing calls can never double-assign.
func (s *assignmentService) Assign(ctx context.Context, userID uint) ([]uint, error) {
	user, err := s.repo.User().GetByID(ctx, nil, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user.Role != models.RoleParticipant {
		return nil, NewPermissionError(userID, "assignment", "create", "only participants receive question assignments")
	}

	var assigned []uint
	err = s.repo.WithTransaction(ctx, func(r repositories.Repository) error {
		assigned, err = assignQuestionBatch(ctx, r, userID, s.batchSize, s.shuffle)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("questions assigned",
		"user_id", userID,
		"count", len(assigned))
	return assigned, nil
}

// assignQuestionBatch samples batchSize distinct questions and records them
// for userID. The repository must already be bound to a transaction; the
// registration flow shares this with Assign so a new participant gets their
// questions in the same transaction that creates the account.
func assignQuestionBatch(ctx context.Context, r repositories.Repository, userID uint, batchSize int, shuffle func(n int, swap func(i, j int))) ([]uint, error) {
	count, err := r.Assignment().CountByUser(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count assignments: %w", err)
	}
	if count > 0 {
		return nil, ErrAlreadyAssigned
	}

	ids, err := r.Question().ListIDs(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list question bank: %w", err)
	}
	if len(ids) < batchSize {
		return nil, ErrInsufficientQuestions
	}

	shuffle(len(ids), func(i, j int) {
		ids[i], ids[j] = ids[j], ids[i]
	})
	picked := ids[:batchSize]

	assignments := make([]*models.QuestionAssignment, 0, len(picked))
	for _, questionID := range picked {
		assignments = append(assignments, &models.QuestionAssignment{
			UserID:     userID,
			QuestionID: questionID,
		})
	}
	if err := r.Assignment().CreateBatch(ctx, nil, assignments); err != nil {
		if repositories.IsDuplicateError(err) {
			return nil, ErrAlreadyAssigned
		}
		return nil, fmt.Errorf("failed to create assignments: %w", err)
	}

	assigned := make([]uint, 0, len(assignments))
	for _, a := range assignments {
		assigned = append(assigned, a.ID)
	}
	return assigned, nil
}

// CurrentQuestion returns the assigned question with the smallest
// assignment id that has no answer row yet, or the Completed sentinel once
// every assignment is answered.
func (s *assignmentService) CurrentQuestion(ctx context.Context, userID uint) (*CurrentQuestionResponse, error) {
	user, err := s.repo.User().GetByID(ctx, nil, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	partition, err := s.provisioner.PartitionForAccess(ctx, s.repo, user)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve answer partition: %w", err)
	}

	current, err := s.repo.Assignment().FirstUnanswered(ctx, nil, userID, partition.ID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return &CurrentQuestionResponse{Completed: true}, nil
		}
		return nil, fmt.Errorf("failed to get current question: %w", err)
	}

	return &CurrentQuestionResponse{
		AssignmentID: current.AssignmentID,
		Question:     &current.Question,
	}, nil
}
