package repositories

import "context"

// Repository aggregates the per-domain repository interfaces.
type Repository interface {
	User() UserRepository
	Question() QuestionRepository
	Assignment() AssignmentRepository
	Partition() PartitionRepository
	Answer() AnswerRepository

	// WithTransaction runs fn against a Repository scoped to a single
	// database transaction. Any error from fn rolls the whole transaction
	// back, so callers never leave partial state behind.
	WithTransaction(ctx context.Context, fn func(Repository) error) error

	// Health check
	Ping(ctx context.Context) error

	// Close connections
	Close() error
}

// RepositoryManager manages repository lifecycle.
type RepositoryManager interface {
	Initialize() error
	GetRepository() Repository
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
