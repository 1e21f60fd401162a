package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"relay/internal/repository"
)

const statsWindowDays = 7

// StatsOverview is the admin dashboard payload.
type StatsOverview struct {
	TotalMessages  int64
	MessagesInWeek int64
	PerAuthor      []repository.AuthorCount
	PerDay         []repository.DailyCount
}

// StatsService aggregates board activity for the admin dashboard.
type StatsService struct {
	messages repository.BoardMessageRepository
	logger   *zap.Logger
	now      func() time.Time
}

func NewStatsService(messages repository.BoardMessageRepository, logger *zap.Logger) (*StatsService, error) {
	if messages == nil {
		return nil, fmt.Errorf("board message repository is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &StatsService{
		messages: messages,
		logger:   logger,
		now:      time.Now,
	}, nil
}

func (s *StatsService) Overview(ctx context.Context) (*StatsOverview, error) {
	total, err := s.messages.CountAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count messages: %w", err)
	}

	weekStart := s.now().UTC().AddDate(0, 0, -statsWindowDays)
	inWeek, err := s.messages.CountSince(ctx, weekStart)
	if err != nil {
		return nil, fmt.Errorf("failed to count recent messages: %w", err)
	}

	perAuthor, err := s.messages.CountPerAuthor(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count per author: %w", err)
	}

	perDay, err := s.messages.CountPerDay(ctx, weekStart)
	if err != nil {
		return nil, fmt.Errorf("failed to count per day: %w", err)
	}

	return &StatsOverview{
		TotalMessages:  total,
		MessagesInWeek: inWeek,
		PerAuthor:      perAuthor,
		PerDay:         perDay,
	}, nil
}
