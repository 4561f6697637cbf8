package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KrishPrajapati1346/Treasure-Hunt-Backend/internal/models"
	"github.com/KrishPrajapati1346/Treasure-Hunt-Backend/internal/tenant"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// identityShuffle keeps question order unchanged so tests can predict
// which questions get picked.
func identityShuffle(n int, swap func(i, j int)) {}

func newTestAssignmentService(f *fakeRepository, batchSize int) *assignmentService {
	return &assignmentService{
		repo:        f,
		provisioner: tenant.NewProvisioner(testLogger()),
		logger:      testLogger(),
		batchSize:   batchSize,
		shuffle:     identityShuffle,
	}
}

func seedQuestions(f *fakeRepository, n int) {
	for i := 0; i < n; i++ {
		f.addQuestion(fmt.Sprintf("question %d", i+1), 5)
	}
}

func TestAssign_CreatesExactBatch(t *testing.T) {
	f := newFakeRepository()
	user := f.addUser("alice_01", models.RoleParticipant)
	seedQuestions(f, 15)

	svc := newTestAssignmentService(f, 10)

	ids, err := svc.Assign(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Len(t, ids, 10)
	assert.Equal(t, 10, f.assignmentCount(user.ID))
}

func TestAssign_SecondCallConflicts(t *testing.T) {
	f := newFakeRepository()
	user := f.addUser("alice_01", models.RoleParticipant)
	seedQuestions(f, 12)

	svc := newTestAssignmentService(f, 10)

	_, err := svc.Assign(context.Background(), user.ID)
	require.NoError(t, err)

	_, err = svc.Assign(context.Background(), user.ID)
	assert.ErrorIs(t, err, ErrAlreadyAssigned)
	assert.Equal(t, 10, f.assignmentCount(user.ID), "conflicting call must not change assignments")
}

func TestAssign_InsufficientQuestions(t *testing.T) {
	f := newFakeRepository()
	user := f.addUser("alice_01", models.RoleParticipant)
	seedQuestions(f, 4)

	svc := newTestAssignmentService(f, 10)

	_, err := svc.Assign(context.Background(), user.ID)
	assert.ErrorIs(t, err, ErrInsufficientQuestions)
	assert.Equal(t, 0, f.assignmentCount(user.ID), "failed assignment must leave no rows behind")
}

func TestAssign_AdminRejected(t *testing.T) {
	f := newFakeRepository()
	admin := f.addUser("quizmaster", models.RoleAdmin)
	seedQuestions(f, 10)

	svc := newTestAssignmentService(f, 10)

	_, err := svc.Assign(context.Background(), admin.ID)
	assert.True(t, IsPermissionError(err))
}

func TestAssign_UnknownUser(t *testing.T) {
	f := newFakeRepository()
	svc := newTestAssignmentService(f, 10)

	_, err := svc.Assign(context.Background(), 99)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestCurrentQuestion_FollowsAssignmentOrder(t *testing.T) {
	f := newFakeRepository()
	user := f.addUser("alice_01", models.RoleParticipant)
	seedQuestions(f, 3)

	svc := newTestAssignmentService(f, 3)
	ctx := context.Background()

	_, err := svc.Assign(ctx, user.ID)
	require.NoError(t, err)

	resp, err := svc.CurrentQuestion(ctx, user.ID)
	require.NoError(t, err)
	require.False(t, resp.Completed)
	assert.Equal(t, uint(1), resp.Question.ID)

	// Answer the first question; the next one comes up.
	partition, err := f.Partition().GetByUserID(ctx, nil, user.ID)
	require.NoError(t, err)
	text := "done"
	require.NoError(t, f.Answer().Create(ctx, nil, &models.Answer{
		PartitionID: partition.ID,
		QuestionID:  1,
		TextAnswer:  &text,
	}))

	resp, err = svc.CurrentQuestion(ctx, user.ID)
	require.NoError(t, err)
	require.False(t, resp.Completed)
	assert.Equal(t, uint(2), resp.Question.ID)
}

func TestCurrentQuestion_CompletedWhenAllAnswered(t *testing.T) {
	f := newFakeRepository()
	user := f.addUser("alice_01", models.RoleParticipant)
	seedQuestions(f, 2)

	svc := newTestAssignmentService(f, 2)
	ctx := context.Background()

	_, err := svc.Assign(ctx, user.ID)
	require.NoError(t, err)

	partition := f.addPartition(user.ID, user.Username)
	text := "done"
	for _, qid := range []uint{1, 2} {
		require.NoError(t, f.Answer().Create(ctx, nil, &models.Answer{
			PartitionID: partition.ID,
			QuestionID:  qid,
			TextAnswer:  &text,
		}))
	}

	resp, err := svc.CurrentQuestion(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, resp.Completed)
	assert.Nil(t, resp.Question)
}
