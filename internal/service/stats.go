package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mfekih/jobtrack/internal/model"
)

// StatsAPI is the slice of the gateway the stats controller needs.
type StatsAPI interface {
	Stats(ctx context.Context) (*model.Stats, error)
}

// StatsService caches the aggregate snapshot. Its cache key is independent
// of the list's pagination — there is exactly one snapshot — but it is
// invalidated alongside the list on every successful mutation.
type StatsService struct {
	api    StatsAPI
	logger *slog.Logger

	mu     sync.Mutex
	cached *model.Stats
}

func NewStatsService(api StatsAPI, logger *slog.Logger) *StatsService {
	return &StatsService{api: api, logger: logger}
}

// Get returns the snapshot, fetching only when the cache is empty.
func (s *StatsService) Get(ctx context.Context) (*model.Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cached != nil {
		return s.cached, nil
	}

	stats, err := s.api.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching stats: %w", err)
	}
	s.cached = stats
	s.logger.Debug("stats fetched")
	return stats, nil
}

// Invalidate drops the cached snapshot.
func (s *StatsService) Invalidate() {
	s.mu.Lock()
	s.cached = nil
	s.mu.Unlock()
}
