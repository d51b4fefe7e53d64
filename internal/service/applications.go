// Package service contains the dashboard's controllers. Each controller
// owns a slice of client state (pagination, caches, submit lifecycle) and
// talks to the remote service through the API gateway. Controllers program
// against small interfaces so tests can substitute fakes for the gateway.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mfekih/jobtrack/internal/model"
)

// ListAPI is the slice of the gateway the list controller needs.
type ListAPI interface {
	ListApplications(ctx context.Context, page, limit int, status model.Status) (*model.Page, error)
}

// pageKey identifies one cached page. The cache key is the full tuple — a
// page fetched under one status filter is never reused for another.
type pageKey struct {
	page   int
	limit  int
	status model.Status
}

// ApplicationService owns the list view's state: current page, active
// status filter, and a read-through cache of fetched pages.
//
// Invalidation is coarse on purpose: any successful mutation drops every
// cached page for the collection. Collections here are small, so refetching
// a page costs little and the bookkeeping for precise invalidation would
// buy nothing.
type ApplicationService struct {
	api    ListAPI
	logger *slog.Logger
	limit  int

	mu         sync.Mutex
	page       int
	status     model.Status
	totalPages int // last server-reported count for the current filter, 0 before first fetch
	cache      map[pageKey]*model.Page
}

func NewApplicationService(api ListAPI, limit int, logger *slog.Logger) *ApplicationService {
	return &ApplicationService{
		api:    api,
		logger: logger,
		limit:  limit,
		page:   1,
		status: model.StatusApplied,
		cache:  make(map[pageKey]*model.Page),
	}
}

// Current fetches (or serves from cache) the page for the controller's
// current position. If the server reports that the current page no longer
// exists — the last item of the last page was deleted — the controller
// falls back to the last valid page and refetches once.
func (s *ApplicationService) Current(ctx context.Context) (*model.Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.fetchLocked(ctx, s.page)
	if err != nil {
		return nil, err
	}

	if result.TotalPages >= 1 && s.page > result.TotalPages && len(result.Items) == 0 {
		s.page = result.TotalPages
		result, err = s.fetchLocked(ctx, s.page)
		if err != nil {
			return nil, err
		}
	}

	s.totalPages = result.TotalPages
	return result, nil
}

// fetchLocked is the read-through path. Callers hold s.mu.
func (s *ApplicationService) fetchLocked(ctx context.Context, page int) (*model.Page, error) {
	key := pageKey{page: page, limit: s.limit, status: s.status}
	if cached, ok := s.cache[key]; ok {
		return cached, nil
	}

	result, err := s.api.ListApplications(ctx, page, s.limit, s.status)
	if err != nil {
		return nil, fmt.Errorf("listing applications: %w", err)
	}

	s.cache[key] = result
	s.logger.Debug("page fetched",
		slog.Int("page", page),
		slog.String("status", string(s.status)),
		slog.Int("items", len(result.Items)),
	)
	return result, nil
}

// SetPage moves to page n, clamped to [1, totalPages] when a page count is
// known. An out-of-range request therefore never reaches the network with
// an out-of-range value. Returns the page actually selected.
func (s *ApplicationService) SetPage(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n < 1 {
		n = 1
	}
	if s.totalPages >= 1 && n > s.totalPages {
		n = s.totalPages
	}
	s.page = n
	return s.page
}

// NextPage advances one page, clamped. Returns the resulting page.
func (s *ApplicationService) NextPage() int {
	s.mu.Lock()
	n := s.page + 1
	s.mu.Unlock()
	return s.SetPage(n)
}

// PrevPage goes back one page, clamped. Returns the resulting page.
func (s *ApplicationService) PrevPage() int {
	s.mu.Lock()
	n := s.page - 1
	s.mu.Unlock()
	return s.SetPage(n)
}

// Page returns the current 1-indexed page.
func (s *ApplicationService) Page() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.page
}

// Status returns the active status filter.
func (s *ApplicationService) Status() model.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// SetStatus switches the status tab and resets to page 1. The server-side
// page count for the new filter is unknown until the next fetch.
func (s *ApplicationService) SetStatus(status model.Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == status {
		return
	}
	s.status = status
	s.page = 1
	s.totalPages = 0
}

// Invalidate drops every cached page. The next Current forces fresh fetches.
func (s *ApplicationService) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = make(map[pageKey]*model.Page)
	s.logger.Debug("application cache invalidated")
}

// ResetToFirstPage jumps back to page 1. Used after a create, where the new
// row may land on any page and page 1 is the predictable place to show it.
func (s *ApplicationService) ResetToFirstPage() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.page = 1
}
