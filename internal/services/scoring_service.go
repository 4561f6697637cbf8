package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/KrishPrajapati1346/Treasure-Hunt-Backend/internal/cache"
	"github.com/KrishPrajapati1346/Treasure-Hunt-Backend/internal/repositories"
)

type scoringService struct {
	repo   repositories.Repository
	cache  *cache.CacheHelper
	logger *slog.Logger
}

func NewScoringService(repo repositories.Repository, cacheHelper *cache.CacheHelper, logger *slog.Logger) ScoringService {
	return &scoringService{
		repo:   repo,
		cache:  cacheHelper,
		logger: logger,
	}
}

// Teams lists every participant with their current accepted points.
func (s *scoringService) Teams(ctx context.Context) ([]*TeamResponse, error) {
	var cached []*TeamResponse
	if err := s.cache.GetWithConfig(ctx, "all", &cached, cache.TeamCacheConfig); err == nil {
		return cached, nil
	}

	scores, err := s.repo.Answer().ParticipantScores(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate team scores: %w", err)
	}

	teams := make([]*TeamResponse, 0, len(scores))
	for _, sc := range scores {
		teams = append(teams, &TeamResponse{
			ID:          sc.UserID,
			Username:    sc.Username,
			TotalPoints: sc.TotalPoints,
		})
	}

	if err := s.cache.SetWithConfig(ctx, "all", teams, cache.TeamCacheConfig); err != nil {
		s.logger.Warn("failed to cache team list", "error", err)
	}
	return teams, nil
}

// Leaderboard ranks participants by accepted points, then by accepted
// answer count. Ties beyond that keep registration order.
func (s *scoringService) Leaderboard(ctx context.Context) ([]*LeaderboardEntry, error) {
	var cached []*LeaderboardEntry
	if err := s.cache.GetWithConfig(ctx, "current", &cached, cache.LeaderboardCacheConfig); err == nil {
		return cached, nil
	}

	scores, err := s.repo.Answer().ParticipantScores(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate leaderboard: %w", err)
	}

	entries := rankScores(scores)

	if err := s.cache.SetWithConfig(ctx, "current", entries, cache.LeaderboardCacheConfig); err != nil {
		s.logger.Warn("failed to cache leaderboard", "error", err)
	}
	return entries, nil
}

// ExportLeaderboard renders the leaderboard as an XLSX workbook.
func (s *scoringService) ExportLeaderboard(ctx context.Context) ([]byte, error) {
	entries, err := s.Leaderboard(ctx)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Leaderboard"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{"Rank", "Username", "Questions Solved", "Total Points"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
	}

	for row, e := range entries {
		values := []any{row + 1, e.Username, e.QuestionsSolved, e.TotalPoints}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, fmt.Errorf("failed to write row %s: %w", strconv.Itoa(row+1), err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}

	s.logger.Info("leaderboard exported", "rows", len(entries))
	return buf.Bytes(), nil
}

// rankScores applies the leaderboard ordering to aggregated scores.
func rankScores(scores []*repositories.ParticipantScore) []*LeaderboardEntry {
	entries := make([]*LeaderboardEntry, 0, len(scores))
	for _, sc := range scores {
		entries = append(entries, &LeaderboardEntry{
			UserID:          sc.UserID,
			Username:        sc.Username,
			QuestionsSolved: sc.QuestionsSolved,
			TotalPoints:     sc.TotalPoints,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].TotalPoints != entries[j].TotalPoints {
			return entries[i].TotalPoints > entries[j].TotalPoints
		}
		return entries[i].QuestionsSolved > entries[j].QuestionsSolved
	})
	return entries
}
