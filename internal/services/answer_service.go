package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/KrishPrajapati1346/Treasure-Hunt-Backend/internal/events"
	"github.com/KrishPrajapati1346/Treasure-Hunt-Backend/internal/models"
	"github.com/KrishPrajapati1346/Treasure-Hunt-Backend/internal/repositories"
	"github.com/KrishPrajapati1346/Treasure-Hunt-Backend/internal/tenant"
)

type answerService struct {
	repo        repositories.Repository
	provisioner *tenant.Provisioner
	publisher   events.EventPublisher
	logger      *slog.Logger

	now func() time.Time
}

func NewAnswerService(repo repositories.Repository, provisioner *tenant.Provisioner, publisher events.EventPublisher, logger *slog.Logger) AnswerService {
	return &answerService{
		repo:        repo,
		provisioner: provisioner,
		publisher:   publisher,
		logger:      logger,
		now:         time.Now,
	}
}

// Submit stores a participant's answer for an assigned question. The
// duplicate check runs in the same transaction as the insert, and the
// (partition_id, question_id) unique index closes the remaining race.
func (s *answerService) Submit(ctx context.Context, userID, questionID uint, req *SubmitAnswerRequest, meta *ClientMeta) (*models.Answer, error) {
	if isEmptySubmission(req) {
		return nil, ErrEmptyAnswer
	}

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

	answer := &models.Answer{
		PartitionID:    partition.ID,
		QuestionID:     questionID,
		TextAnswer:     req.TextAnswer,
		ImageAnswerURL: req.ImageAnswerURL,
	}
	if meta != nil {
		raw, mErr := json.Marshal(meta)
		if mErr == nil {
			answer.SubmissionMeta = raw
		}
	}

	err = s.repo.WithTransaction(ctx, func(r repositories.Repository) error {
		assigned, err := r.Assignment().ExistsForQuestion(ctx, nil, userID, questionID)
		if err != nil {
			return fmt.Errorf("failed to check assignment: %w", err)
		}
		if !assigned {
			return ErrNotAssigned
		}

		answered, err := r.Answer().ExistsForQuestion(ctx, nil, partition.ID, questionID)
		if err != nil {
			return fmt.Errorf("failed to check existing answer: %w", err)
		}
		if answered {
			return ErrAlreadyAnswered
		}

		if err := r.Answer().Create(ctx, nil, answer); err != nil {
			if repositories.IsDuplicateError(err) {
				return ErrAlreadyAnswered
			}
			return fmt.Errorf("failed to create answer: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("answer submitted",
		"user_id", userID,
		"question_id", questionID,
		"answer_id", answer.ID)

	if pErr := s.publisher.Publish(ctx, events.TopicAnswerSubmitted, map[string]any{
		"user_id":     userID,
		"question_id": questionID,
		"answer_id":   answer.ID,
	}); pErr != nil {
		s.logger.Error("failed to publish answer.submitted", "error", pErr)
	}

	return answer, nil
}

// Review records an admin verdict. Re-review overwrites the previous
// verdict; no history is kept.
func (s *answerService) Review(ctx context.Context, adminID uint, username string, answerID uint, req *ReviewAnswerRequest) (*models.Answer, error) {
	admin, err := s.repo.User().GetByID(ctx, nil, adminID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load reviewer: %w", err)
	}
	if admin.Role != models.RoleAdmin {
		return nil, NewPermissionError(adminID, "answer", "review", "insufficient role permissions")
	}

	partition, err := s.partitionByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	answer, err := s.repo.Answer().GetByID(ctx, nil, partition.ID, answerID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAnswerNotFound
		}
		return nil, fmt.Errorf("failed to load answer: %w", err)
	}

	reviewedAt := s.now()
	answer.IsReviewed = true
	answer.IsAccepted = *req.IsAccepted
	answer.AdminFeedback = req.Feedback
	answer.ReviewedAt = &reviewedAt
	answer.ReviewedBy = &adminID

	if err := s.repo.Answer().Update(ctx, nil, answer); err != nil {
		return nil, fmt.Errorf("failed to update answer: %w", err)
	}

	s.logger.Info("answer reviewed",
		"answer_id", answerID,
		"username", username,
		"accepted", answer.IsAccepted,
		"reviewed_by", adminID)

	if pErr := s.publisher.Publish(ctx, events.TopicAnswerReviewed, map[string]any{
		"answer_id":   answerID,
		"username":    username,
		"accepted":    answer.IsAccepted,
		"reviewed_by": adminID,
	}); pErr != nil {
		s.logger.Error("failed to publish answer.reviewed", "error", pErr)
	}

	return answer, nil
}

// ListForParticipant returns every answer in a participant's partition,
// newest submission first, joined with question text and points.
func (s *answerService) ListForParticipant(ctx context.Context, username string) ([]*AnswerWithQuestion, error) {
	partition, err := s.partitionByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	answers, err := s.repo.Answer().ListByPartition(ctx, nil, partition.ID, repositories.AnswerFilters{})
	if err != nil {
		return nil, fmt.Errorf("failed to list answers: %w", err)
	}

	out := make([]*AnswerWithQuestion, 0, len(answers))
	for _, a := range answers {
		row := &AnswerWithQuestion{
			ID:             a.ID,
			QuestionID:     a.QuestionID,
			QuestionText:   a.Question.Question,
			Points:         a.Question.Points,
			RequiresImage:  a.Question.RequiresImage,
			TextAnswer:     a.TextAnswer,
			ImageAnswerURL: a.ImageAnswerURL,
			SubmittedAt:    a.SubmittedAt,
			IsReviewed:     a.IsReviewed,
			IsAccepted:     a.IsAccepted,
			ReviewedAt:     a.ReviewedAt,
			AdminFeedback:  a.AdminFeedback,
		}
		if a.Reviewer != nil {
			row.ReviewedByUsername = &a.Reviewer.Username
		}
		out = append(out, row)
	}
	return out, nil
}

func (s *answerService) partitionByUsername(ctx context.Context, username string) (*models.AnswerPartition, error) {
	id, err := tenant.Sanitize(username)
	if err != nil {
		return nil, err
	}

	partition, err := s.repo.Partition().GetByUsername(ctx, nil, id.String())
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrPartitionMissing
		}
		return nil, fmt.Errorf("failed to load partition: %w", err)
	}
	return partition, nil
}

func isEmptySubmission(req *SubmitAnswerRequest) bool {
	hasText := req.TextAnswer != nil && *req.TextAnswer != ""
	hasImage := req.ImageAnswerURL != nil && *req.ImageAnswerURL != ""
	return !hasText && !hasImage
}
