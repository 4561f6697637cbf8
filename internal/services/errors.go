package services

import (
	"errors"
	"fmt"
)

// Sentinel errors for the core operations. Handlers map these to HTTP
// status codes; everything else is treated as a storage failure.
var (
	ErrUserNotFound     = errors.New("user not found")
	ErrQuestionNotFound = errors.New("question not found")
	ErrAnswerNotFound   = errors.New("answer not found")
	ErrPartitionMissing = errors.New("answer partition not found")

	ErrUsernameTaken   = errors.New("username already taken")
	ErrAlreadyAssigned = errors.New("questions already assigned to this user")
	ErrAlreadyAnswered = errors.New("question already answered")

	ErrNotAssigned           = errors.New("question not assigned to user")
	ErrEmptyAnswer           = errors.New("answer must contain text or an image")
	ErrInsufficientQuestions = errors.New("question bank has too few questions to assign")

	ErrInvalidCredentials = errors.New("invalid credentials")
)

// PermissionError reports an operation a user is not allowed to perform.
type PermissionError struct {
	UserID   uint
	Resource string
	Action   string
	Reason   string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: user %d cannot %s %s: %s",
		e.UserID, e.Action, e.Resource, e.Reason)
}

func NewPermissionError(userID uint, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:   userID,
		Resource: resource,
		Action:   action,
		Reason:   reason,
	}
}

// IsPermissionError reports whether err is a PermissionError.
func IsPermissionError(err error) bool {
	var pe *PermissionError
	return errors.As(err, &pe)
}
