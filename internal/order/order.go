// Package order implements the ephemeral drag-to-reorder layer of the
// dashboard list. There are two layers of truth: the server's order (by
// page), which is authoritative, and a per-status permutation held here,
// which is presentation-only. The permutation is never persisted and never
// sent to the server — a fresh session always starts in server order.
package order

import (
	"sync"

	"github.com/mfekih/jobtrack/internal/model"
)

// Board holds one manual ordering per status.
type Board struct {
	mu       sync.Mutex
	byStatus map[model.Status][]string
}

func NewBoard() *Board {
	return &Board{byStatus: make(map[model.Status][]string)}
}

// Apply returns items rearranged by the stored permutation for status.
// Before applying, the stored order is reconciled against the items actually
// present: ids that left the server set are dropped, new ids are appended in
// server order. Every input item appears exactly once in the output — the
// permutation can neither drop nor duplicate rows.
func (b *Board) Apply(status model.Status, items []model.JobApplication) []model.JobApplication {
	b.mu.Lock()
	defer b.mu.Unlock()

	ids := make([]string, len(items))
	byID := make(map[string]model.JobApplication, len(items))
	for i, item := range items {
		ids[i] = item.ID
		byID[item.ID] = item
	}

	b.byStatus[status] = reconcile(b.byStatus[status], ids)

	ordered := make([]model.JobApplication, 0, len(items))
	for _, id := range b.byStatus[status] {
		ordered = append(ordered, byID[id])
	}
	return ordered
}

// Move shifts the row at index from to index to within the stored order for
// status. Indexes refer to the last Apply output. Out-of-range moves are
// ignored and reported as false.
func (b *Board) Move(status model.Status, from, to int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	current := b.byStatus[status]
	if from < 0 || from >= len(current) || to < 0 || to >= len(current) || from == to {
		return false
	}

	moved := current[from]
	without := make([]string, 0, len(current)-1)
	without = append(without, current[:from]...)
	without = append(without, current[from+1:]...)

	next := make([]string, 0, len(current))
	next = append(next, without[:to]...)
	next = append(next, moved)
	next = append(next, without[to:]...)
	b.byStatus[status] = next
	return true
}

// reconcile intersects a stored order with the server's current membership,
// then appends ids the server added, in server order. With no stored order
// the server order is adopted as-is.
func reconcile(stored, serverIDs []string) []string {
	if len(stored) == 0 {
		return append([]string(nil), serverIDs...)
	}

	present := make(map[string]bool, len(serverIDs))
	for _, id := range serverIDs {
		present[id] = true
	}

	next := make([]string, 0, len(serverIDs))
	kept := make(map[string]bool, len(serverIDs))
	for _, id := range stored {
		if present[id] && !kept[id] {
			next = append(next, id)
			kept[id] = true
		}
	}
	for _, id := range serverIDs {
		if !kept[id] {
			next = append(next, id)
			kept[id] = true
		}
	}
	return next
}
