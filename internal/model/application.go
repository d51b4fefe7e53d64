// Package model defines the data structures exchanged with the tracker API.
// Everything here is owned by the remote service; the client's copies are
// caches, never a source of truth.
package model

// Status is the closed set of pipeline states an application can be in.
type Status string

const (
	StatusApplied   Status = "APPLIED"
	StatusInterview Status = "INTERVIEW"
	StatusRejected  Status = "REJECTED"
	StatusAccepted  Status = "ACCEPTED"
)

// Statuses lists all statuses in dashboard tab order.
var Statuses = []Status{StatusApplied, StatusInterview, StatusRejected, StatusAccepted}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusApplied, StatusInterview, StatusRejected, StatusAccepted:
		return true
	}
	return false
}

// JobApplication mirrors the server's representation. IDs are generated by
// the server and are stable and unique; the client never fabricates one.
type JobApplication struct {
	ID              string `json:"id"`
	Company         string `json:"company"`
	JobTitle        string `json:"jobTitle"`
	Link            string `json:"link,omitempty"`
	ApplicationDate string `json:"applicationDate"` // YYYY-MM-DD
	Status          Status `json:"status"`
	HadInterview    bool   `json:"hadInterview"`
}

// Page is one server-computed slice of the collection. The client treats a
// page as immutable and replaces it wholesale on refetch.
type Page struct {
	Items      []JobApplication `json:"items"`
	Total      int              `json:"total"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
	TotalPages int              `json:"totalPages"`
}

// ApplicationPayload is the body sent on create and update. Update sends the
// same shape; the server ignores unchanged fields.
type ApplicationPayload struct {
	Company         string `json:"company"`
	JobTitle        string `json:"jobTitle"`
	Link            string `json:"link,omitempty"`
	ApplicationDate string `json:"applicationDate"`
	Status          Status `json:"status"`
	HadInterview    bool   `json:"hadInterview"`
}

// Validate runs the client-side required-field fast path. It returns one
// message per missing field, in form order. Server-side validation remains
// authoritative; this only blocks obviously incomplete submissions before
// they reach the network.
func (p ApplicationPayload) Validate() []string {
	var messages []string
	if p.Company == "" {
		messages = append(messages, "Company is required")
	}
	if p.JobTitle == "" {
		messages = append(messages, "Job title is required")
	}
	if p.ApplicationDate == "" {
		messages = append(messages, "Application date is required")
	}
	if p.Status == "" {
		messages = append(messages, "Status is required")
	} else if !p.Status.Valid() {
		messages = append(messages, "Status must be one of APPLIED, INTERVIEW, REJECTED, ACCEPTED")
	}
	return messages
}

// ExportParams narrows a PDF export. All fields are optional; zero values
// are omitted from the query string.
type ExportParams struct {
	From   string // YYYY-MM-DD
	To     string // YYYY-MM-DD
	Status Status
}
