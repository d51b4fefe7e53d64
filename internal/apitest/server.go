// Package apitest provides an in-memory stand-in for the remote tracker
// service, used by tests across the client packages. It implements the same
// REST surface the real service exposes — login, identity, the paginated
// applications collection, stats and the PDF export — and records every
// request so tests can assert on headers and call counts.
package apitest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/mfekih/jobtrack/internal/model"
)

// Account is a login the fake accepts.
type Account struct {
	Email    string
	Password string
	User     model.User
}

// RecordedRequest is one observed call.
type RecordedRequest struct {
	Method string
	Path   string
	Auth   string // raw Authorization header, "" when absent
}

// Server is the fake remote service.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	accounts []Account
	tokens   map[string]string // token -> user id
	apps     []model.JobApplication
	nextID   int
	requests []RecordedRequest

	// RejectMe forces /users/me to fail with 401 regardless of the token.
	RejectMe bool
	// PDF is the body served by the export endpoint.
	PDF []byte
	// ExportFilename is sent in Content-Disposition; empty omits the header.
	ExportFilename string
}

// New starts a fake service with one default account
// (a@b.com / x → token "T1").
func New() *Server {
	s := &Server{
		tokens:         make(map[string]string),
		nextID:         1,
		PDF:            []byte("%PDF-1.4 fake"),
		ExportFilename: "job-applications-export.pdf",
	}
	s.accounts = []Account{{
		Email:    "a@b.com",
		Password: "x",
		User: model.User{
			ID:        "user-1",
			FirstName: "Ada",
			LastName:  "Lovelace",
			Email:     "a@b.com",
		},
	}}
	s.tokens["T1"] = "user-1"

	r := chi.NewRouter()
	r.Use(s.record)
	r.Post("/auth/login", s.handleLogin)
	r.Get("/users/me", s.handleMe)
	r.Route("/job-applications", func(r chi.Router) {
		r.Get("/", s.handleList)
		r.Post("/", s.handleCreate)
		r.Get("/export/pdf", s.handleExport)
		r.Put("/{id}", s.handleUpdate)
		r.Delete("/{id}", s.handleDelete)
	})
	r.Get("/stats", s.handleStats)

	s.Server = httptest.NewServer(r)
	return s
}

// Seed replaces the stored applications. IDs are assigned when empty.
func (s *Server) Seed(apps ...model.JobApplication) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apps = nil
	for _, app := range apps {
		if app.ID == "" {
			app.ID = fmt.Sprintf("app-%d", s.nextID)
			s.nextID++
		}
		s.apps = append(s.apps, app)
	}
}

// Requests returns a copy of all observed calls.
func (s *Server) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]RecordedRequest(nil), s.requests...)
}

// CountRequests counts observed calls matching method and path prefix.
func (s *Server) CountRequests(method, pathPrefix string) int {
	n := 0
	for _, req := range s.Requests() {
		if req.Method == method && strings.HasPrefix(req.Path, pathPrefix) {
			n++
		}
	}
	return n
}

// Applications returns a copy of the stored collection.
func (s *Server) Applications() []model.JobApplication {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.JobApplication(nil), s.apps...)
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, RecordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Auth:   r.Header.Get("Authorization"),
		})
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) authenticate(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.tokens[strings.TrimPrefix(auth, "Bearer ")]
	return ok
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "Invalid request body"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, acct := range s.accounts {
		if acct.Email == body.Email && acct.Password == body.Password {
			token := fmt.Sprintf("T%d", len(s.tokens))
			s.tokens[token] = acct.User.ID
			writeJSON(w, http.StatusOK, map[string]string{"access_token": token})
			return
		}
	}
	writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "Invalid credentials"})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	if s.RejectMe || !s.authenticate(r) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "Unauthorized"})
		return
	}
	auth := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	s.mu.Lock()
	userID := s.tokens[auth]
	var user model.User
	for _, acct := range s.accounts {
		if acct.User.ID == userID {
			user = acct.User
		}
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	if !s.authenticate(r) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "Unauthorized"})
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	status := model.Status(r.URL.Query().Get("status"))

	s.mu.Lock()
	var filtered []model.JobApplication
	for _, app := range s.apps {
		if status == "" || app.Status == status {
			filtered = append(filtered, app)
		}
	}
	s.mu.Unlock()

	total := len(filtered)
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

	items := filtered[start:end]
	if items == nil {
		items = []model.JobApplication{}
	}
	writeJSON(w, http.StatusOK, model.Page{
		Items:      items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	})
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	if !s.authenticate(r) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "Unauthorized"})
		return
	}

	var payload model.ApplicationPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "Invalid request body"})
		return
	}
	if messages := validatePayload(payload); len(messages) > 0 {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": messages})
		return
	}

	s.mu.Lock()
	app := model.JobApplication{
		ID:              fmt.Sprintf("app-%d", s.nextID),
		Company:         payload.Company,
		JobTitle:        payload.JobTitle,
		Link:            payload.Link,
		ApplicationDate: payload.ApplicationDate,
		Status:          payload.Status,
		HadInterview:    payload.HadInterview,
	}
	s.nextID++
	s.apps = append(s.apps, app)
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, app)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	if !s.authenticate(r) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "Unauthorized"})
		return
	}

	id := chi.URLParam(r, "id")
	var payload model.ApplicationPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "Invalid request body"})
		return
	}
	if messages := validatePayload(payload); len(messages) > 0 {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": messages})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, app := range s.apps {
		if app.ID == id {
			s.apps[i] = model.JobApplication{
				ID:              id,
				Company:         payload.Company,
				JobTitle:        payload.JobTitle,
				Link:            payload.Link,
				ApplicationDate: payload.ApplicationDate,
				Status:          payload.Status,
				HadInterview:    payload.HadInterview,
			}
			writeJSON(w, http.StatusOK, s.apps[i])
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]any{"message": "Job application not found"})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if !s.authenticate(r) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "Unauthorized"})
		return
	}

	id := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, app := range s.apps {
		if app.ID == id {
			s.apps = append(s.apps[:i], s.apps[i+1:]...)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]any{"message": "Job application not found"})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if !s.authenticate(r) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "Unauthorized"})
		return
	}

	s.mu.Lock()
	byStatus := make(map[string]int)
	byMonth := make(map[string]int)
	interviewByMonth := make(map[string]int)
	interviewTotal := 0
	for _, app := range s.apps {
		byStatus[string(app.Status)]++
		month := app.ApplicationDate
		if len(month) >= 7 {
			month = month[:7]
		}
		byMonth[month]++
		if app.HadInterview {
			interviewTotal++
			interviewByMonth[month]++
		}
	}
	total := len(s.apps)
	s.mu.Unlock()

	rate := 0.0
	avg := 0.0
	if total > 0 {
		rate = float64(interviewTotal) / float64(total)
	}
	if len(byMonth) > 0 {
		avg = float64(total) / float64(len(byMonth))
	}

	writeJSON(w, http.StatusOK, model.Stats{
		ByMonth:          monthCounts(byMonth),
		ByStatus:         byStatus,
		InterviewTotal:   interviewTotal,
		InterviewByMonth: monthCounts(interviewByMonth),
		InterviewRate:    rate,
		AveragePerMonth:  avg,
	})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if !s.authenticate(r) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "Unauthorized"})
		return
	}
	if s.ExportFilename != "" {
		w.Header().Set("Content-Disposition",
			fmt.Sprintf("attachment; filename=%q", s.ExportFilename))
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(s.PDF)
}

func validatePayload(p model.ApplicationPayload) []string {
	var messages []string
	if p.Company == "" {
		messages = append(messages, "company should not be empty")
	}
	if p.JobTitle == "" {
		messages = append(messages, "jobTitle should not be empty")
	}
	if p.ApplicationDate == "" {
		messages = append(messages, "applicationDate should not be empty")
	}
	if !p.Status.Valid() {
		messages = append(messages, "status must be a valid enum value")
	}
	return messages
}

func monthCounts(m map[string]int) []model.MonthCount {
	months := make([]string, 0, len(m))
	for month := range m {
		months = append(months, month)
	}
	sort.Strings(months)
	out := make([]model.MonthCount, 0, len(months))
	for _, month := range months {
		out = append(out, model.MonthCount{Month: month, Count: m[month]})
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
