// Package httpapi serves a read-only JSON scoreboard.
package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/verte-zerg/tuipairs/internal/ledger"
	"github.com/verte-zerg/tuipairs/internal/model"
	"github.com/verte-zerg/tuipairs/internal/stats"
)

// ScoreSource provides the ranked high scores.
type ScoreSource interface {
	Top() []ledger.Entry
}

// Score is the JSON form of a ledger entry. Malformed records only carry Raw.
type Score struct {
	Rank       int    `json:"rank"`
	Player     string `json:"player,omitempty"`
	Difficulty string `json:"difficulty,omitempty"`
	Attempts   int    `json:"attempts,omitempty"`
	TimeLeft   string `json:"timeLeft,omitempty"`
	Raw        string `json:"raw,omitempty"`
}

// StatsResponse is the body of GET /stats.
type StatsResponse struct {
	Summary      stats.Summary         `json:"summary"`
	Difficulties []stats.DifficultyRow `json:"difficulties"`
}

// Server bundles the router with its data sources.
type Server struct {
	r      *chi.Mux
	scores ScoreSource
	lister stats.SessionLister
	logger *log.Logger
}

// New constructs a Server. A nil lister disables GET /stats.
func New(scores ScoreSource, lister stats.SessionLister, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{r: chi.NewRouter(), scores: scores, lister: lister, logger: logger}

	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(s.requestLogger)
	s.r.Use(chimw.Recoverer)
	s.r.Use(chimw.Timeout(10 * time.Second))
	s.r.Use(jsonContentType)

	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	s.r.Get("/scores", s.handleScores)
	s.r.Get("/stats", s.handleStats)

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not_found")
	})
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.r
}

func (s *Server) handleScores(w http.ResponseWriter, r *http.Request) {
	entries := s.scores.Top()
	out := make([]Score, 0, len(entries))
	for i, e := range entries {
		if !e.Valid() {
			out = append(out, Score{Rank: i + 1, Raw: e.Raw()})
			continue
		}
		out = append(out, Score{
			Rank:       i + 1,
			Player:     e.Player,
			Difficulty: e.Difficulty,
			Attempts:   e.Attempts,
			TimeLeft:   e.TimeLeft,
		})
	}
	s.writeJSON(w, out)
}

// handleStats summarizes history, optionally filtered by ?difficulty= and ?last=.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if s.lister == nil {
		writeError(w, http.StatusServiceUnavailable, "history_unavailable")
		return
	}
	difficulty, err := model.ParseDifficulty(r.URL.Query().Get("difficulty"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_difficulty")
		return
	}
	filter := model.HistoryFilter{Difficulty: difficulty}
	if raw := r.URL.Query().Get("last"); raw != "" {
		last, err := strconv.Atoi(raw)
		if err != nil || last < 0 {
			writeError(w, http.StatusBadRequest, "invalid_last")
			return
		}
		filter.Last = last
	}
	sessions, err := s.lister.ListSessions(r.Context(), filter)
	if err != nil {
		s.logger.Error("failed to list sessions", "err", err)
		writeError(w, http.StatusInternalServerError, "internal")
		return
	}
	rows := stats.DifficultyRows(sessions)
	if rows == nil {
		rows = []stats.DifficultyRow{}
	}
	s.writeJSON(w, StatsResponse{Summary: stats.Summarize(sessions), Difficulties: rows})
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("failed to write response", "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, code string) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": code})
}

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", chimw.GetReqID(r.Context()),
		)
	})
}
