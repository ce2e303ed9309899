package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/xeipuuv/gojsonschema"

	"github.com/finedu/classroom/internal/assist"
	"github.com/finedu/classroom/internal/catalog"
	"github.com/finedu/classroom/internal/curriculum"
	"github.com/finedu/classroom/internal/export"
	"github.com/finedu/classroom/internal/grading"
	"github.com/finedu/classroom/internal/notify"
	"github.com/finedu/classroom/internal/store"
)

const maxBodyBytes = 1 << 20 // 1 MiB

// Request body schemas. Compiled once at startup; a schema that fails to
// compile is a programming error.
var (
	gradeSchema = mustCompileSchema(`{
		"type": "object",
		"required": ["grade"],
		"properties": {
			"grade": {"type": "integer"},
			"feedback": {"type": "string"}
		},
		"additionalProperties": false
	}`)

	assignmentSchema = mustCompileSchema(`{
		"type": "object",
		"properties": {
			"title": {"type": "string"},
			"description": {"type": "string"},
			"due_date": {"type": "string"},
			"max_points": {"type": "integer", "minimum": 1},
			"skills": {"type": "array", "items": {"type": "string"}}
		},
		"additionalProperties": false
	}`)

	feedbackDraftSchema = mustCompileSchema(`{
		"type": "object",
		"required": ["assignment_id"],
		"properties": {
			"assignment_id": {"type": "string", "minLength": 1},
			"rubric": {"type": "string"}
		},
		"additionalProperties": false
	}`)

	lessonDraftSchema = mustCompileSchema(`{
		"type": "object",
		"required": ["topic"],
		"properties": {
			"topic": {"type": "string", "minLength": 1}
		},
		"additionalProperties": false
	}`)
)

func mustCompileSchema(doc string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(doc))
	if err != nil {
		panic(fmt.Sprintf("compiling request schema: %v", err))
	}
	return schema
}

// server holds the HTTP handler dependencies.
type server struct {
	store   store.Store
	assist  *assist.Gateway
	builder *curriculum.Builder
	desk    *grading.Desk
	hub     *notify.Hub
}

func newServer(s store.Store, gw *assist.Gateway, events store.EventLogger, hub *notify.Hub) *server {
	return &server{
		store:   s,
		assist:  gw,
		builder: curriculum.NewBuilder(gw, s, events),
		desk:    grading.NewDesk(s, gw, events, hub),
		hub:     hub,
	}
}

// newMux creates the HTTP router.
func newMux(s *server) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealthz)
	mux.HandleFunc("GET /readyz", handleReadyz)

	mux.HandleFunc("GET /api/me", s.handleCurrentUser)
	mux.HandleFunc("GET /api/courses", s.handleListCourses)
	mux.HandleFunc("GET /api/courses/{id}", s.handleGetCourse)
	mux.HandleFunc("POST /api/courses/{id}/assignments", s.handleCreateAssignment)
	mux.HandleFunc("POST /api/courses/{id}/modules/{moduleID}/lessons/draft", s.handleDraftLesson)
	mux.HandleFunc("GET /api/assignments/{id}/submissions", s.handleListSubmissions)
	mux.HandleFunc("GET /api/assignments/{id}/gradebook.xlsx", s.handleGradebook)
	mux.HandleFunc("POST /api/submissions/{id}/grade", s.handleSaveGrade)
	mux.HandleFunc("POST /api/submissions/{id}/feedback-draft", s.handleFeedbackDraft)

	if s.hub != nil {
		mux.Handle("GET /api/events", s.hub)
	}
	return mux
}

func handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

func handleReadyz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}

func (s *server) handleCurrentUser(w http.ResponseWriter, r *http.Request) {
	user, err := s.store.CurrentUser(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *server) handleListCourses(w http.ResponseWriter, r *http.Request) {
	courses, err := s.store.ListCourses(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, courses)
}

func (s *server) handleGetCourse(w http.ResponseWriter, r *http.Request) {
	course, err := s.store.GetCourse(r.Context(), r.PathValue("id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, course)
}

func (s *server) handleCreateAssignment(w http.ResponseWriter, r *http.Request) {
	body, ok := readValidBody(w, r, assignmentSchema)
	if !ok {
		return
	}

	var req struct {
		Title       string   `json:"title"`
		Description string   `json:"description"`
		DueDate     string   `json:"due_date"`
		MaxPoints   int      `json:"max_points"`
		Skills      []string `json:"skills"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	var dueDate time.Time
	if req.DueDate != "" {
		var err error
		dueDate, err = parseDueDate(req.DueDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "due_date must be RFC 3339 or YYYY-MM-DD")
			return
		}
	}

	course, err := s.store.GetCourse(r.Context(), r.PathValue("id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}

	_, created, err := s.builder.AddAssignment(r.Context(), *course, store.AssignmentFields{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     dueDate,
		MaxPoints:   req.MaxPoints,
		Skills:      req.Skills,
	})
	if err != nil {
		writeStoreError(w, err)
		return
	}

	s.hub.Publish(store.EventAssignmentCreated, created.ID)
	writeJSON(w, http.StatusCreated, created)
}

func (s *server) handleDraftLesson(w http.ResponseWriter, r *http.Request) {
	body, ok := readValidBody(w, r, lessonDraftSchema)
	if !ok {
		return
	}

	var req struct {
		Topic string `json:"topic"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	course, err := s.store.GetCourse(r.Context(), r.PathValue("id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}

	updated, added := s.builder.AddAIGeneratedLesson(r.Context(), *course, r.PathValue("moduleID"), req.Topic)
	if added {
		s.hub.Publish(store.EventLessonDrafted, course.ID)
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *server) handleListSubmissions(w http.ResponseWriter, r *http.Request) {
	subs, summary, err := s.desk.Submissions(r.Context(), r.PathValue("id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}

	resp := struct {
		Submissions []catalog.Submission `json:"submissions"`
		Summary     summaryPayload       `json:"summary"`
	}{
		Submissions: subs,
		Summary:     newSummaryPayload(summary),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *server) handleGradebook(w http.ResponseWriter, r *http.Request) {
	assignmentID := r.PathValue("id")

	assignment, ok, err := s.findAssignment(r, assignmentID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "assignment not found")
		return
	}

	subs, err := s.store.ListSubmissions(r.Context(), assignmentID)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "gradebook-"+assignmentID+".xlsx"))
	if err := export.WriteGradebook(w, assignment, subs); err != nil {
		slog.Error("failed to write gradebook", "assignment_id", assignmentID, "error", err)
	}
}

func (s *server) handleSaveGrade(w http.ResponseWriter, r *http.Request) {
	body, ok := readValidBody(w, r, gradeSchema)
	if !ok {
		return
	}

	var req struct {
		Grade    int    `json:"grade"`
		Feedback string `json:"feedback"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	sub, err := s.desk.SaveGrade(r.Context(), r.PathValue("id"), req.Grade, req.Feedback)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

func (s *server) handleFeedbackDraft(w http.ResponseWriter, r *http.Request) {
	body, ok := readValidBody(w, r, feedbackDraftSchema)
	if !ok {
		return
	}

	var req struct {
		AssignmentID string `json:"assignment_id"`
		Rubric       string `json:"rubric"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	subs, err := s.store.ListSubmissions(r.Context(), req.AssignmentID)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	submissionID := r.PathValue("id")
	for _, sub := range subs {
		if sub.ID != submissionID {
			continue
		}
		draft := s.desk.RequestFeedbackDraft(r.Context(), sub, req.Rubric)
		writeJSON(w, http.StatusOK, map[string]string{"feedback": draft})
		return
	}
	writeError(w, http.StatusNotFound, "submission not found")
}

// parseDueDate accepts either a full RFC 3339 timestamp or a date-only
// value, which is how the UI sends due dates.
func parseDueDate(v string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", v)
}

// findAssignment scans courses for the assignment. The store keys
// assignments by course, so a flat lookup walks the catalog.
func (s *server) findAssignment(r *http.Request, assignmentID string) (catalog.Assignment, bool, error) {
	courses, err := s.store.ListCourses(r.Context())
	if err != nil {
		return catalog.Assignment{}, false, err
	}
	for _, course := range courses {
		if a, ok := course.Assignment(assignmentID); ok {
			return a, true, nil
		}
	}
	return catalog.Assignment{}, false, nil
}

// summaryPayload is the wire form of a grading summary. Average is null
// until at least one submission is graded.
type summaryPayload struct {
	Total   int      `json:"total"`
	Graded  int      `json:"graded"`
	Pending int      `json:"pending"`
	Average *float64 `json:"average"`
}

func newSummaryPayload(s grading.Summary) summaryPayload {
	p := summaryPayload{Total: s.Total, Graded: s.Graded, Pending: s.Pending}
	if avg, ok := s.Average(); ok {
		p.Average = &avg
	}
	return p
}

// readValidBody reads the request body and validates it against the schema.
// On failure it writes the error response and returns ok=false.
func readValidBody(w http.ResponseWriter, r *http.Request, schema *gojsonschema.Schema) ([]byte, bool) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return nil, false
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return nil, false
	}
	if !result.Valid() {
		writeError(w, http.StatusBadRequest, result.Errors()[0].String())
		return nil, false
	}
	return body, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrCourseNotFound):
		writeError(w, http.StatusNotFound, "course not found")
	case errors.Is(err, store.ErrSubmissionNotFound):
		writeError(w, http.StatusNotFound, "submission not found")
	default:
		slog.Error("store error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
