package webserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/tejzpr/audience-inbox/internal/classifier"
	"github.com/tejzpr/audience-inbox/internal/errs"
	"github.com/tejzpr/audience-inbox/internal/inbox"
	"github.com/tejzpr/audience-inbox/internal/logging"
	"github.com/tejzpr/audience-inbox/internal/manager"
)

const healthMagic = "audience-inbox-ok"

// ErrAlreadyRunning is returned by Serve when another audience-inbox
// instance already owns the port.
var ErrAlreadyRunning = errors.New("audience-inbox already running on port")

type Server struct {
	queries *manager.QueryManager
	broker  *manager.SSEBroker
}

func New(queries *manager.QueryManager, broker *manager.SSEBroker) *Server {
	return &Server{queries: queries, broker: broker}
}

type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Handler returns the API routes wrapped in CORS headers.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/queries", s.handleListQueries)
	mux.HandleFunc("POST /api/queries", s.handleCreateQuery)
	mux.HandleFunc("POST /api/queries/auto-tag", s.handleAutoTag)
	mux.HandleFunc("GET /api/queries/{id}", s.handleGetQuery)
	mux.HandleFunc("PATCH /api/queries/{id}", s.handleUpdateQuery)
	mux.HandleFunc("DELETE /api/queries/{id}", s.handleDeleteQuery)
	mux.HandleFunc("PATCH /api/queries/{id}/assign", s.handleAssign)
	mux.HandleFunc("POST /api/queries/{id}/notes", s.handleAddNote)
	mux.HandleFunc("GET /api/analytics", s.handleAnalytics)
	mux.HandleFunc("GET /api/team", s.handleTeam)
	mux.HandleFunc("GET /api/events", s.handleSSE)
	mux.HandleFunc("OPTIONS /api/", handleCORS)

	return corsMiddleware(mux)
}

// Serve listens on port until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, port int) error {
	logCtx := logging.WithAttrs(ctx, slog.String("component", "webserver"), slog.Int("port", port))

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		if IsRunning(ctx, fmt.Sprintf("http://localhost:%d", port)) {
			return ErrAlreadyRunning
		}
		return errs.Wrapf(err, "port %d in use by unknown process", port)
	}

	// Requests inherit ctx so open event streams end when serving stops.
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ln) }()
	logging.Info(logCtx, "listening")

	select {
	case err := <-done:
		return errs.Wrap(err, "serve")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errs.Wrap(err, "shutdown")
	}
	logging.Info(logCtx, "stopped")
	return nil
}

func writeData(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(envelope{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(envelope{Success: false, Error: msg})
}

// writeFailure maps domain errors onto HTTP statuses.
func writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, inbox.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, inbox.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		logging.Error(
			logging.WithAttrs(r.Context(), slog.String("component", "webserver")),
			"request failed",
			slog.String("path", r.URL.Path),
			slog.Any("err", errs.Loggable(err)),
		)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		next.ServeHTTP(w, r)
	})
}

func handleCORS(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": healthMagic})
}

func (s *Server) handleListQueries(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	f := inbox.Filter{
		Search:   params.Get("search"),
		Priority: inbox.Priority(params.Get("priority")),
		Status:   inbox.Status(params.Get("status")),
		Channel:  inbox.Channel(params.Get("channel")),
		Tag:      inbox.Tag(params.Get("tag")),
	}
	queries, err := s.queries.List(r.Context(), f)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeData(w, http.StatusOK, queries)
}

func (s *Server) handleCreateQuery(w http.ResponseWriter, r *http.Request) {
	var body manager.CreateInput
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	q, err := s.queries.Create(r.Context(), body)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, q)
}

func (s *Server) handleGetQuery(w http.ResponseWriter, r *http.Request) {
	q, err := s.queries.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeData(w, http.StatusOK, q)
}

func (s *Server) handleUpdateQuery(w http.ResponseWriter, r *http.Request) {
	var patch inbox.QueryPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	q, err := s.queries.Update(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeData(w, http.StatusOK, q)
}

func (s *Server) handleDeleteQuery(w http.ResponseWriter, r *http.Request) {
	if err := s.queries.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeFailure(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]string{"id": r.PathValue("id")})
}

func (s *Server) handleAssign(w http.ResponseWriter, r *http.Request) {
	var body struct {
		TeamMemberID string `json:"teamMemberId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	q, err := s.queries.Assign(r.Context(), r.PathValue("id"), body.TeamMemberID)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeData(w, http.StatusOK, q)
}

func (s *Server) handleAddNote(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Note string `json:"note"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	q, err := s.queries.AddNote(r.Context(), r.PathValue("id"), body.Note)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeData(w, http.StatusOK, q)
}

// handleAutoTag classifies content without storing anything. A missing or
// non-string content is rejected; an empty string is classified.
func (s *Server) handleAutoTag(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Content json.RawMessage `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	var content string
	if len(body.Content) == 0 || string(body.Content) == "null" || json.Unmarshal(body.Content, &content) != nil {
		writeError(w, http.StatusBadRequest, "invalid content")
		return
	}
	writeData(w, http.StatusOK, classifier.Classify(content))
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	a, err := s.queries.Analytics(r.Context())
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeData(w, http.StatusOK, a)
}

func (s *Server) handleTeam(w http.ResponseWriter, r *http.Request) {
	team, err := s.queries.Team(r.Context())
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeData(w, http.StatusOK, team)
}

func (s *Server) handleSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := s.broker.Subscribe()
	defer s.broker.Unsubscribe(ch)

	fmt.Fprintf(w, ": keepalive\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case evt, ok := <-ch:
			if !ok {
				return
			}
			payload, err := evt.Encode()
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", evt.Type, payload)
			flusher.Flush()
		}
	}
}
