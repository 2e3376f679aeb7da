package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/pbaille/noteorg/internal/domain"
	"github.com/pbaille/noteorg/internal/logging"
	"github.com/pbaille/noteorg/internal/store"
)

// RunStore is the read side of the run ledger
type RunStore interface {
	ListRuns(limit, offset int) ([]domain.Run, error)
	ResolveRun(prefix string) (*domain.Run, error)
}

// Server handles HTTP requests for the run history API
type Server struct {
	store  RunStore
	addr   string
	logger *zap.Logger
}

// New creates a new API server
func New(s RunStore, addr string, logger *zap.Logger) *Server {
	return &Server{store: s, addr: addr, logger: logging.OrNop(logger)}
}

// Handler returns the routed handler
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Runs
	mux.HandleFunc("GET /runs", s.listRuns)
	mux.HandleFunc("GET /runs/{id}", s.getRun)

	// Health check
	mux.HandleFunc("GET /health", s.health)

	return withCORS(mux)
}

// Run starts the HTTP server
func (s *Server) Run() error {
	s.logger.Info("starting server", zap.String("addr", s.addr))
	return http.ListenAndServe(s.addr, s.Handler())
}

// withCORS adds CORS headers for frontend development
func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		h.ServeHTTP(w, r)
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) listRuns(w http.ResponseWriter, r *http.Request) {
	limit := 20
	offset := 0

	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			limit = n
		}
	}
	if o := r.URL.Query().Get("offset"); o != "" {
		if n, err := strconv.Atoi(o); err == nil && n >= 0 {
			offset = n
		}
	}

	runs, err := s.store.ListRuns(limit, offset)
	if err != nil {
		s.logger.Error("list runs", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if runs == nil {
		runs = []domain.Run{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"runs":   runs,
		"limit":  limit,
		"offset": offset,
	})
}

// getRun supports ID prefixes and an optional ?decision= record filter
func (s *Server) getRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.store.ResolveRun(r.PathValue("id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if d := r.URL.Query().Get("decision"); d != "" {
		decision, ok := domain.ParseDecision(d)
		if !ok {
			writeError(w, http.StatusBadRequest, "decision must be keep or trash")
			return
		}
		filtered := []domain.AuditRecord{}
		for _, rec := range run.Records {
			if rec.Decision == decision {
				filtered = append(filtered, rec)
			}
		}
		run.Records = filtered
	}

	writeJSON(w, http.StatusOK, run)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
