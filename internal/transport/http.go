// Package transport exposes the parking ledger over HTTP.
package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/PhucDaizz/parkledger/internal/domain/ledger"
	"github.com/PhucDaizz/parkledger/internal/domain/query"
	"github.com/PhucDaizz/parkledger/internal/domain/workflow"
	"github.com/PhucDaizz/parkledger/internal/metrics"
	"github.com/PhucDaizz/parkledger/internal/recognizer"
)

// maxUploadBytes caps a multipart confirm request body.
const maxUploadBytes = 10 << 20

// Confirmer runs the entry/exit confirmation workflow.
type Confirmer interface {
	Confirm(ctx context.Context, rawPlate string, image []byte) (*workflow.Result, error)
}

// Queries serves the read-only views.
type Queries interface {
	CurrentOccupants(ctx context.Context) ([]ledger.Session, error)
	History(ctx context.Context, limit int) ([]ledger.Session, error)
	Search(ctx context.Context, filter query.Filter) ([]ledger.Session, error)
	Occupancy(ctx context.Context) (int, error)
	TodayCount(ctx context.Context, now time.Time) (int, error)
	Session(ctx context.Context, id int64) (*ledger.Session, error)
}

// Admin covers the destructive operations.
type Admin interface {
	DeleteSession(ctx context.Context, id int64) error
}

// Recognizer extracts a plate string from a captured frame.
type Recognizer interface {
	Recognize(ctx context.Context, jpeg []byte) (*recognizer.Result, error)
}

// Server wires HTTP handlers.
type Server struct {
	confirmer  Confirmer
	queries    Queries
	admin      Admin
	recognizer Recognizer
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

// NewServer creates the router. recognizer and m may be nil; a nil
// recognizer rejects multipart confirms.
func NewServer(confirmer Confirmer, queries Queries, admin Admin, rec Recognizer, m *metrics.Metrics, logger *slog.Logger) *chi.Mux {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	srv := &Server{
		confirmer:  confirmer,
		queries:    queries,
		admin:      admin,
		recognizer: rec,
		metrics:    m,
		logger:     logger,
	}

	r := chi.NewRouter()

	r.Post("/api/confirm", srv.handleConfirm)
	r.Get("/api/occupants", srv.handleOccupants)
	r.Get("/api/history", srv.handleHistory)
	r.Get("/api/search", srv.handleSearch)
	r.Get("/api/stats", srv.handleStats)
	r.Get("/api/sessions/{id}", srv.handleGetSession)
	r.Delete("/api/sessions/{id}", srv.handleDeleteSession)
	r.Get("/health", srv.handleHealth)
	if m != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(m.Registry(), promhttp.HandlerOpts{}))
	}

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

type confirmRequest struct {
	Plate string `json:"plate"`
}

func (s *Server) handleConfirm(w http.ResponseWriter, r *http.Request) {
	rawPlate, image, err := s.confirmInput(w, r)
	if err != nil {
		s.countConfirmError(err)
		s.writeError(w, err)
		return
	}

	result, err := s.confirmer.Confirm(r.Context(), rawPlate, image)
	if err != nil {
		s.countConfirmError(err)
		s.writeError(w, err)
		return
	}

	s.recordConfirm(result.Action)
	writeJSON(w, http.StatusOK, result)
}

// confirmInput extracts the plate (and optional image) from either a JSON
// body or a multipart frame upload routed through the recognizer.
func (s *Server) confirmInput(w http.ResponseWriter, r *http.Request) (string, []byte, error) {
	if mediaType(r) != "multipart/form-data" {
		var req confirmRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return "", nil, fmt.Errorf("decoding body: %w", ledger.ErrValidation)
		}
		return req.Plate, nil, nil
	}

	if s.recognizer == nil {
		return "", nil, fmt.Errorf("no recognizer configured: %w", ledger.ErrValidation)
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return "", nil, fmt.Errorf("parsing upload: %w", ledger.ErrValidation)
	}
	file, _, err := r.FormFile("image")
	if err != nil {
		return "", nil, fmt.Errorf("missing image part: %w", ledger.ErrValidation)
	}
	defer file.Close()

	frame, err := io.ReadAll(file)
	if err != nil {
		return "", nil, fmt.Errorf("reading image part: %w", ledger.ErrValidation)
	}

	result, err := s.recognizer.Recognize(r.Context(), frame)
	if err != nil {
		return "", nil, recognitionError{err}
	}
	return result.Plates[0], frame, nil
}

// recognitionError marks a failure in the upstream recognition service so
// the error mapping can answer 502 for it.
type recognitionError struct{ err error }

func (e recognitionError) Error() string { return "recognizing frame: " + e.err.Error() }
func (e recognitionError) Unwrap() error { return e.err }

func (s *Server) handleOccupants(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.queries.CurrentOccupants(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"occupants": sessions,
		"count":     len(sessions),
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			s.writeError(w, fmt.Errorf("invalid limit %q: %w", raw, ledger.ErrValidation))
			return
		}
		limit = n
	}

	sessions, err := s.queries.History(r.Context(), limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": sessions})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := query.Filter{Plate: q.Get("plate")}

	var err error
	if filter.From, err = parseDate(q.Get("from")); err != nil {
		s.writeError(w, err)
		return
	}
	if filter.To, err = parseDate(q.Get("to")); err != nil {
		s.writeError(w, err)
		return
	}

	sessions, err := s.queries.Search(r.Context(), filter)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": sessions})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	inside, err := s.queries.Occupancy(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	today, err := s.queries.TodayCount(r.Context(), time.Now())
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"vehicles_inside": inside,
		"today_count":     today,
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id, err := sessionID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	sess, err := s.queries.Session(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id, err := sessionID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.admin.DeleteSession(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func sessionID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid session id %q: %w", raw, ledger.ErrValidation)
	}
	return id, nil
}

// parseDate accepts a calendar date in YYYY-MM-DD form.
func parseDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation("2006-01-02", raw, time.Local)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", raw, ledger.ErrValidation)
	}
	return &t, nil
}

func mediaType(r *http.Request) string {
	ct := r.Header.Get("Content-Type")
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return strings.TrimSpace(strings.ToLower(ct))
}

func (s *Server) recordConfirm(action workflow.Action) {
	if s.metrics == nil {
		return
	}
	switch action {
	case workflow.ActionEntered:
		s.metrics.Entries.Inc()
	case workflow.ActionExited:
		s.metrics.Exits.Inc()
	}
}

func (s *Server) countConfirmError(err error) {
	if s.metrics == nil {
		return
	}
	s.metrics.ConfirmErrors.WithLabelValues(errorClass(err)).Inc()
}

func errorClass(err error) string {
	switch {
	case errors.Is(err, ledger.ErrValidation):
		return "validation"
	case errors.Is(err, ledger.ErrAlreadyOccupied):
		return "occupied"
	case errors.Is(err, ledger.ErrNoOpenSession):
		return "no_open_session"
	case errors.Is(err, ledger.ErrStorageUnavailable):
		return "storage"
	case errors.As(err, new(recognitionError)):
		return "recognition"
	default:
		return "internal"
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ledger.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, ledger.ErrAlreadyOccupied):
		status = http.StatusConflict
	case errors.Is(err, ledger.ErrNoOpenSession), errors.Is(err, ledger.ErrSessionNotFound):
		status = http.StatusNotFound
	case errors.Is(err, ledger.ErrStorageUnavailable):
		status = http.StatusServiceUnavailable
	case errors.As(err, new(recognitionError)):
		status = http.StatusBadGateway
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
