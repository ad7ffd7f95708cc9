// Package http exposes the transition engine over a small JSON API.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/aretw0/tally/pkg/domain"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Engine defines the interface for the tally transition core.
type Engine interface {
	Dispatch(ctx context.Context, req domain.TransitionRequest) (*domain.Receipt, error)
	Account(ctx context.Context, addr domain.Address) (*domain.AccountView, error)
	ListsByOwner(ctx context.Context, owner domain.Address) ([]*domain.AccountView, error)
}

// Server routes HTTP requests into the engine.
type Server struct {
	engine Engine
	logger *slog.Logger
}

// NewHandler builds the router: transition submission, account readback,
// health and metrics.
func NewHandler(engine Engine, logger *slog.Logger, registry *prometheus.Registry) http.Handler {
	s := &Server{engine: engine, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Post("/v1/transitions", s.postTransition)
	r.Get("/v1/accounts/{address}", s.getAccount)
	r.Get("/v1/accounts", s.listAccounts)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	if registry != nil {
		r.Method(http.MethodGet, "/metrics",
			promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}
	return r
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) postTransition(w http.ResponseWriter, r *http.Request) {
	var req domain.TransitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}

	receipt, err := s.engine.Dispatch(r.Context(), req)
	if err != nil {
		s.writeError(w, r, statusFor(err), err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, receipt)
}

func (s *Server) getAccount(w http.ResponseWriter, r *http.Request) {
	addr, err := domain.ParseAddress(chi.URLParam(r, "address"))
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}

	view, err := s.engine.Account(r.Context(), addr)
	if err != nil {
		s.writeError(w, r, statusFor(err), err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, view)
}

func (s *Server) listAccounts(w http.ResponseWriter, r *http.Request) {
	if kind := r.URL.Query().Get("kind"); kind != "" && kind != "todolist" {
		s.writeError(w, r, http.StatusBadRequest,
			errors.New("only kind=todolist scans are supported"))
		return
	}

	owner, err := domain.ParseAddress(r.URL.Query().Get("owner"))
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}

	views, err := s.engine.ListsByOwner(r.Context(), owner)
	if err != nil {
		s.writeError(w, r, statusFor(err), err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, views)
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.ErrorContext(r.Context(), "encode response", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "err", err)
	}
	s.writeJSON(w, r, status, errorResponse{Error: err.Error()})
}

// statusFor maps engine errors onto HTTP statuses. Conflicts with existing
// state are 409, authorization failures 403, missing accounts 404 and
// violated business rules 422.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrAlreadyExists),
		errors.Is(err, domain.ErrSlotOccupied):
		return http.StatusConflict
	case errors.Is(err, domain.ErrNotAuthorized),
		errors.Is(err, domain.ErrMissingSigner),
		errors.Is(err, domain.ErrNotTokenHolder):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrAccountNotFound),
		errors.Is(err, domain.ErrAccountNotInitialized),
		errors.Is(err, domain.ErrItemNotInList),
		errors.Is(err, domain.ErrSlotEmpty):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrListFull),
		errors.Is(err, domain.ErrBountyTooSmall),
		errors.Is(err, domain.ErrInsufficientFunds),
		errors.Is(err, domain.ErrSeedsMismatch),
		errors.Is(err, domain.ErrSlotOutOfRange):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrUnknownOp):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
