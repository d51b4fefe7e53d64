package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/mfekih/jobtrack/internal/model"
)

// fakeListAPI serves pages from an in-memory collection and records every
// call so tests can assert on cache behaviour.
type fakeListAPI struct {
	apps  map[model.Status][]model.JobApplication
	err   error
	calls []int // requested page numbers, in order
}

func (f *fakeListAPI) ListApplications(_ context.Context, page, limit int, status model.Status) (*model.Page, error) {
	f.calls = append(f.calls, page)
	if f.err != nil {
		return nil, f.err
	}

	rows := f.apps[status]
	total := len(rows)
	totalPages := (total + limit - 1) / limit
	if totalPages < 1 {
		totalPages = 1
	}
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}
	items := append([]model.JobApplication{}, rows[start:end]...)
	return &model.Page{
		Items:      items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}, nil
}

func rowsApplied(n int) map[model.Status][]model.JobApplication {
	rows := make([]model.JobApplication, n)
	for i := range rows {
		rows[i] = model.JobApplication{
			ID:     string(rune('a' + i)),
			Status: model.StatusApplied,
		}
	}
	return map[model.Status][]model.JobApplication{model.StatusApplied: rows}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCurrent_FetchesOnce(t *testing.T) {
	api := &fakeListAPI{apps: rowsApplied(5)}
	svc := NewApplicationService(api, 10, testLogger())
	ctx := context.Background()

	first, err := svc.Current(ctx)
	if err != nil {
		t.Fatalf("Current() error = %v", err)
	}
	second, err := svc.Current(ctx)
	if err != nil {
		t.Fatalf("second Current() error = %v", err)
	}

	// The second read is a cache hit: no second network call.
	if len(api.calls) != 1 {
		t.Errorf("API called %d times, want 1", len(api.calls))
	}
	if first != second {
		t.Error("second Current() did not serve the cached page")
	}
}

func TestCurrent_FetchFailureLeavesCacheEmpty(t *testing.T) {
	api := &fakeListAPI{err: errors.New("boom")}
	svc := NewApplicationService(api, 10, testLogger())
	ctx := context.Background()

	if _, err := svc.Current(ctx); err == nil {
		t.Fatal("Current() expected an error")
	}

	// Recovery: the next read fetches again rather than serving a broken
	// cache entry.
	api.err = nil
	api.apps = rowsApplied(1)
	if _, err := svc.Current(ctx); err != nil {
		t.Fatalf("Current() after recovery error = %v", err)
	}
	if len(api.calls) != 2 {
		t.Errorf("API called %d times, want 2", len(api.calls))
	}
}

func TestSetPage_Clamps(t *testing.T) {
	api := &fakeListAPI{apps: rowsApplied(25)} // 3 pages at limit 10
	svc := NewApplicationService(api, 10, testLogger())
	ctx := context.Background()

	if _, err := svc.Current(ctx); err != nil {
		t.Fatalf("Current() error = %v", err)
	}

	if got := svc.SetPage(99); got != 3 {
		t.Errorf("SetPage(99) = %d, want 3", got)
	}
	if got := svc.SetPage(0); got != 1 {
		t.Errorf("SetPage(0) = %d, want 1", got)
	}
	if got := svc.SetPage(-5); got != 1 {
		t.Errorf("SetPage(-5) = %d, want 1", got)
	}
	if got := svc.SetPage(2); got != 2 {
		t.Errorf("SetPage(2) = %d, want 2", got)
	}
}

func TestSetPage_OutOfRangeNeverReachesNetwork(t *testing.T) {
	api := &fakeListAPI{apps: rowsApplied(25)} // 3 pages at limit 10
	svc := NewApplicationService(api, 10, testLogger())
	ctx := context.Background()

	if _, err := svc.Current(ctx); err != nil {
		t.Fatalf("Current() error = %v", err)
	}

	svc.SetPage(99)
	if _, err := svc.Current(ctx); err != nil {
		t.Fatalf("Current() error = %v", err)
	}

	for _, page := range api.calls {
		if page < 1 || page > 3 {
			t.Errorf("API saw out-of-range page %d", page)
		}
	}
}

func TestNextPrevPage(t *testing.T) {
	api := &fakeListAPI{apps: rowsApplied(15)} // 2 pages at limit 10
	svc := NewApplicationService(api, 10, testLogger())
	ctx := context.Background()

	if _, err := svc.Current(ctx); err != nil {
		t.Fatalf("Current() error = %v", err)
	}

	if got := svc.PrevPage(); got != 1 {
		t.Errorf("PrevPage() on page 1 = %d, want 1", got)
	}
	if got := svc.NextPage(); got != 2 {
		t.Errorf("NextPage() = %d, want 2", got)
	}
	if got := svc.NextPage(); got != 2 {
		t.Errorf("NextPage() past the end = %d, want 2", got)
	}
	if got := svc.PrevPage(); got != 1 {
		t.Errorf("PrevPage() = %d, want 1", got)
	}
}

func TestSetStatus_ResetsPageAndCacheKey(t *testing.T) {
	api := &fakeListAPI{apps: rowsApplied(25)}
	svc := NewApplicationService(api, 10, testLogger())
	ctx := context.Background()

	if _, err := svc.Current(ctx); err != nil {
		t.Fatalf("Current() error = %v", err)
	}
	svc.SetPage(3)

	svc.SetStatus(model.StatusInterview)
	if got := svc.Page(); got != 1 {
		t.Errorf("page after SetStatus = %d, want 1", got)
	}

	// A page cached under one filter is never reused for another.
	if _, err := svc.Current(ctx); err != nil {
		t.Fatalf("Current() error = %v", err)
	}
	if len(api.calls) != 2 {
		t.Errorf("API called %d times, want 2", len(api.calls))
	}

	// Switching back serves the original entry from cache.
	svc.SetStatus(model.StatusApplied)
	if _, err := svc.Current(ctx); err != nil {
		t.Fatalf("Current() error = %v", err)
	}
	if len(api.calls) != 2 {
		t.Errorf("API called %d times after switching back, want still 2", len(api.calls))
	}
}

func TestSetStatus_SameStatusKeepsPosition(t *testing.T) {
	api := &fakeListAPI{apps: rowsApplied(25)}
	svc := NewApplicationService(api, 10, testLogger())

	if _, err := svc.Current(context.Background()); err != nil {
		t.Fatalf("Current() error = %v", err)
	}
	svc.SetPage(2)
	svc.SetStatus(model.StatusApplied)
	if got := svc.Page(); got != 2 {
		t.Errorf("page = %d, want 2 (re-selecting the active tab is a no-op)", got)
	}
}

func TestCurrent_FallsBackWhenPageDisappears(t *testing.T) {
	// 11 rows = 2 pages. Stand on page 2, then delete the only row there.
	api := &fakeListAPI{apps: rowsApplied(11)}
	svc := NewApplicationService(api, 10, testLogger())
	ctx := context.Background()

	if _, err := svc.Current(ctx); err != nil {
		t.Fatalf("Current() error = %v", err)
	}
	svc.SetPage(2)
	if _, err := svc.Current(ctx); err != nil {
		t.Fatalf("Current() on page 2 error = %v", err)
	}

	api.apps = rowsApplied(10) // page 2 no longer exists
	svc.Invalidate()

	page, err := svc.Current(ctx)
	if err != nil {
		t.Fatalf("Current() after delete error = %v", err)
	}
	if page.Page != 1 {
		t.Errorf("landed on page %d, want 1", page.Page)
	}
	if len(page.Items) != 10 {
		t.Errorf("got %d items, want 10", len(page.Items))
	}
	if got := svc.Page(); got != 1 {
		t.Errorf("controller page = %d, want 1", got)
	}
}

func TestInvalidate_ForcesRefetch(t *testing.T) {
	api := &fakeListAPI{apps: rowsApplied(5)}
	svc := NewApplicationService(api, 10, testLogger())
	ctx := context.Background()

	if _, err := svc.Current(ctx); err != nil {
		t.Fatalf("Current() error = %v", err)
	}
	svc.Invalidate()
	if _, err := svc.Current(ctx); err != nil {
		t.Fatalf("Current() after Invalidate() error = %v", err)
	}

	if len(api.calls) != 2 {
		t.Errorf("API called %d times, want 2", len(api.calls))
	}
}

func TestResetToFirstPage(t *testing.T) {
	api := &fakeListAPI{apps: rowsApplied(25)}
	svc := NewApplicationService(api, 10, testLogger())

	if _, err := svc.Current(context.Background()); err != nil {
		t.Fatalf("Current() error = %v", err)
	}
	svc.SetPage(3)
	svc.ResetToFirstPage()
	if got := svc.Page(); got != 1 {
		t.Errorf("page = %d, want 1", got)
	}
}
