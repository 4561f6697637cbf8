package tenant

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/KrishPrajapati1346/Treasure-Hunt-Backend/internal/models"
	"github.com/KrishPrajapati1346/Treasure-Hunt-Backend/internal/repositories"
)

// Provisioner creates the answer partition for a participant. Provisioning
// is an explicit application step, invoked inside the registration
// transaction, never a database-side trigger.
type Provisioner struct {
	logger *slog.Logger
}

func NewProvisioner(logger *slog.Logger) *Provisioner {
	return &Provisioner{logger: logger}
}

// EnsurePartition makes sure the partition row for (userID, id) exists and
// returns it. Idempotent: repeated calls for the same participant return the
// same partition. Callers that need atomicity with other writes pass a
// Repository already scoped to their transaction.
func (p *Provisioner) EnsurePartition(ctx context.Context, repo repositories.Repository, userID uint, id SafeIdentifier) (*models.AnswerPartition, error) {
	partition := &models.AnswerPartition{
		UserID:   userID,
		Username: id.String(),
	}

	if err := repo.Partition().Ensure(ctx, nil, partition); err != nil {
		return nil, fmt.Errorf("provision partition for %q: %w", id, err)
	}

	p.logger.Debug("answer partition ensured",
		"user_id", userID,
		"partition_id", partition.ID)
	return partition, nil
}

// PartitionForAccess loads the partition for a participant before an
// answer-store operation, provisioning it on the fly if it is missing. A
// user row without a partition should be impossible, but the state is
// self-healing rather than fatal.
func (p *Provisioner) PartitionForAccess(ctx context.Context, repo repositories.Repository, user *models.User) (*models.AnswerPartition, error) {
	partition, err := repo.Partition().GetByUserID(ctx, nil, user.ID)
	if err == nil {
		return partition, nil
	}
	if !repositories.IsNotFoundError(err) {
		return nil, err
	}

	id, sErr := Sanitize(user.Username)
	if sErr != nil {
		return nil, sErr
	}

	p.logger.Warn("answer partition missing, re-provisioning",
		"user_id", user.ID,
		"username", id.String())
	return p.EnsurePartition(ctx, repo, user.ID, id)
}
