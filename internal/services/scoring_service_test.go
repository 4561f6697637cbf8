package services

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/KrishPrajapati1346/Treasure-Hunt-Backend/internal/cache"
	"github.com/KrishPrajapati1346/Treasure-Hunt-Backend/internal/events"
	"github.com/KrishPrajapati1346/Treasure-Hunt-Backend/internal/models"
	"github.com/KrishPrajapati1346/Treasure-Hunt-Backend/internal/repositories"
)

func newTestScoringService(f *fakeRepository) *scoringService {
	return &scoringService{
		repo:   f,
		cache:  cache.NewCacheHelper(nil, ""),
		logger: testLogger(),
	}
}

// A participant with one accepted answer worth 5 points, one rejected
// answer worth 3, and one unanswered question scores solved=1 points=5.
func TestLeaderboard_OnlyAcceptedAnswersCount(t *testing.T) {
	f := newFakeRepository()
	admin := f.addUser("quizmaster", models.RoleAdmin)
	bob := f.addUser("bob_team", models.RoleParticipant)
	partition := f.addPartition(bob.ID, "bob_team")

	q1 := f.addQuestion("q1", 5)
	q2 := f.addQuestion("q2", 3)
	f.addQuestion("q3", 8)

	ctx := context.Background()
	require.NoError(t, f.Assignment().CreateBatch(ctx, nil, []*models.QuestionAssignment{
		{UserID: bob.ID, QuestionID: q1.ID},
		{UserID: bob.ID, QuestionID: q2.ID},
		{UserID: bob.ID, QuestionID: 3},
	}))

	text := "answer"
	a1 := &models.Answer{PartitionID: partition.ID, QuestionID: q1.ID, TextAnswer: &text}
	a2 := &models.Answer{PartitionID: partition.ID, QuestionID: q2.ID, TextAnswer: &text}
	require.NoError(t, f.Answer().Create(ctx, nil, a1))
	require.NoError(t, f.Answer().Create(ctx, nil, a2))

	answerSvc := newTestAnswerService(f, events.NewMockEventPublisher())
	_, err := answerSvc.Review(ctx, admin.ID, "bob_team", a1.ID, &ReviewAnswerRequest{IsAccepted: boolPtr(true)})
	require.NoError(t, err)
	_, err = answerSvc.Review(ctx, admin.ID, "bob_team", a2.ID, &ReviewAnswerRequest{IsAccepted: boolPtr(false)})
	require.NoError(t, err)

	entries, err := newTestScoringService(f).Leaderboard(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "bob_team", entries[0].Username)
	assert.Equal(t, 1, entries[0].QuestionsSolved)
	assert.Equal(t, 5, entries[0].TotalPoints)
}

func TestRankScores_Ordering(t *testing.T) {
	scores := []*repositories.ParticipantScore{
		{UserID: 1, Username: "early_bird", QuestionsSolved: 2, TotalPoints: 10},
		{UserID: 2, Username: "grinder", QuestionsSolved: 4, TotalPoints: 10},
		{UserID: 3, Username: "champion", QuestionsSolved: 3, TotalPoints: 15},
		{UserID: 4, Username: "twin", QuestionsSolved: 2, TotalPoints: 10},
	}

	entries := rankScores(scores)

	// Points first, then solved count; full ties keep input order.
	assert.Equal(t, "champion", entries[0].Username)
	assert.Equal(t, "grinder", entries[1].Username)
	assert.Equal(t, "early_bird", entries[2].Username)
	assert.Equal(t, "twin", entries[3].Username)
}

func TestTeams_ListsParticipantsOnly(t *testing.T) {
	f := newFakeRepository()
	f.addUser("quizmaster", models.RoleAdmin)
	alice := f.addUser("alice_01", models.RoleParticipant)
	bob := f.addUser("bob_team", models.RoleParticipant)
	f.addPartition(alice.ID, "alice_01")
	f.addPartition(bob.ID, "bob_team")

	teams, err := newTestScoringService(f).Teams(context.Background())
	require.NoError(t, err)
	require.Len(t, teams, 2)
	assert.Equal(t, "alice_01", teams[0].Username)
	assert.Equal(t, "bob_team", teams[1].Username)
}

func TestExportLeaderboard_ProducesWorkbook(t *testing.T) {
	f := newFakeRepository()
	alice := f.addUser("alice_01", models.RoleParticipant)
	f.addPartition(alice.ID, "alice_01")

	data, err := newTestScoringService(f).ExportLeaderboard(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, data)

	wb, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer wb.Close()

	cell, err := wb.GetCellValue("Leaderboard", "B2")
	require.NoError(t, err)
	assert.Equal(t, "alice_01", cell)
}
