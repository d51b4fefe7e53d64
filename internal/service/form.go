package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/mfekih/jobtrack/internal/apperror"
	"github.com/mfekih/jobtrack/internal/model"
)

// ErrSubmitInFlight is returned when a submit starts while another one is
// still pending. The UI disables the submit control while pending, so
// hitting this means a caller bypassed the form lifecycle.
var ErrSubmitInFlight = errors.New("service: a submission is already in flight")

// MutationAPI is the slice of the gateway the form controller needs.
type MutationAPI interface {
	CreateApplication(ctx context.Context, payload model.ApplicationPayload) (*model.JobApplication, error)
	UpdateApplication(ctx context.Context, id string, payload model.ApplicationPayload) (*model.JobApplication, error)
	DeleteApplication(ctx context.Context, id string) error
}

// ListInvalidator is the list-controller surface a mutation touches.
type ListInvalidator interface {
	Invalidate()
	ResetToFirstPage()
}

// Invalidator marks a cache that must be refreshed after a mutation.
type Invalidator interface {
	Invalidate()
}

// FormService runs the create/update/delete lifecycle.
//
// Client-side validation is a fast path only: it blocks submissions with
// missing required fields before any network call, but the server remains
// authoritative and its messages, when present, are surfaced verbatim. On
// success both the list cache and the stats cache are invalidated so the
// dashboard's numbers stay consistent with its rows. At most one submit is
// in flight at a time.
type FormService struct {
	api    MutationAPI
	list   ListInvalidator
	stats  Invalidator
	logger *slog.Logger

	mu         sync.Mutex
	submitting bool
}

func NewFormService(api MutationAPI, list ListInvalidator, stats Invalidator, logger *slog.Logger) *FormService {
	return &FormService{
		api:    api,
		list:   list,
		stats:  stats,
		logger: logger,
	}
}

// Submitting reports whether a submit is pending. The UI uses this to
// disable the submit control.
func (s *FormService) Submitting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submitting
}

// Submit creates (id == "") or updates (id != "") an application.
//
// A validation failure — client- or server-side — leaves all caches
// untouched: the modal stays open with the entered values, and nothing on
// the dashboard has changed.
func (s *FormService) Submit(ctx context.Context, id string, payload model.ApplicationPayload) (*model.JobApplication, error) {
	if messages := payload.Validate(); len(messages) > 0 {
		return nil, apperror.Validation(messages...)
	}

	if err := s.begin(); err != nil {
		return nil, err
	}
	defer s.end()

	var (
		result *model.JobApplication
		err    error
	)
	if id == "" {
		result, err = s.api.CreateApplication(ctx, payload)
	} else {
		result, err = s.api.UpdateApplication(ctx, id, payload)
	}
	if err != nil {
		return nil, err
	}

	// Coarse invalidation: the mutation may have changed any page and every
	// aggregate, so both caches go.
	s.list.Invalidate()
	s.stats.Invalidate()
	if id == "" {
		// The new row may land anywhere; page 1 is the predictable place.
		s.list.ResetToFirstPage()
		s.logger.Info("application created", slog.String("id", result.ID))
	} else {
		s.logger.Info("application updated", slog.String("id", result.ID))
	}

	return result, nil
}

// Delete removes an application and invalidates both caches. The current
// page is refetched as-is on the next read; if it no longer exists the list
// controller falls back per the server-reported page count.
func (s *FormService) Delete(ctx context.Context, id string) error {
	if err := s.begin(); err != nil {
		return err
	}
	defer s.end()

	if err := s.api.DeleteApplication(ctx, id); err != nil {
		return err
	}

	s.list.Invalidate()
	s.stats.Invalidate()
	s.logger.Info("application deleted", slog.String("id", id))
	return nil
}

func (s *FormService) begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.submitting {
		return ErrSubmitInFlight
	}
	s.submitting = true
	return nil
}

func (s *FormService) end() {
	s.mu.Lock()
	s.submitting = false
	s.mu.Unlock()
}
