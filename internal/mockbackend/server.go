package mockbackend

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"github.com/kf-pos/dashboard/internal/auth"
	"github.com/kf-pos/dashboard/internal/enum"
	"github.com/kf-pos/dashboard/internal/middleware"
	"github.com/kf-pos/dashboard/internal/model"
)

// BasePath is where the REST routes are mounted.
const BasePath = "/api"

// Server exposes a Store over the order backend's REST contract. Failures are
// answered with {"message": ...}.
type Server struct {
	store    *Store
	secret   string
	tokenTTL time.Duration
	now      func() time.Time
	validate *validator.Validate
	logger   *slog.Logger
}

// ServerOption configures a Server.
type ServerOption func(*Server)

func WithServerClock(now func() time.Time) ServerOption {
	return func(s *Server) { s.now = now }
}

func WithServerLogger(l *slog.Logger) ServerOption {
	return func(s *Server) { s.logger = l }
}

func NewServer(store *Store, secret string, tokenTTL time.Duration, opts ...ServerOption) *Server {
	s := &Server{
		store:    store,
		secret:   secret,
		tokenTTL: tokenTTL,
		now:      time.Now,
		validate: validator.New(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the router with every route under BasePath.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Route(BasePath, func(r chi.Router) {
		r.Post("/auth/login", s.login)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(s.secret))

			r.Get("/orders", s.listOrders)
			r.Get("/orders/{id}/cancelable", s.cancelable)
			r.Post("/orders/{id}/cancel", s.cancel)
			r.Post("/orders/{id}/{action}", s.transition)

			r.Get("/branches", s.branches)
			r.With(middleware.RequireRole(enum.UserRoleSuperAdmin)).Get("/branches/list-bms", s.listBMs)
			r.Get("/branches/by-area", s.branchesByArea)
			r.Get("/inventory/{branchId}", s.inventory)
			r.Get("/products", s.products)
		})
	})
	return r
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeMessage(w, http.StatusBadRequest, "username and password are required")
		return
	}

	user, claims, err := s.store.Authenticate(req.Username, req.Password)
	if err != nil {
		writeMessage(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}
	token, err := auth.GenerateToken(s.secret, claims, s.tokenTTL, s.now())
	if err != nil {
		s.logger.Error("sign token", "error", err)
		writeMessage(w, http.StatusInternalServerError, "internal server error")
		return
	}
	s.logger.Info("login", "username", user.Username, "role", user.Role)
	writeJSON(w, http.StatusOK, model.Session{Token: token, User: user})
}

func (s *Server) listOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := model.Filter{BranchID: q.Get("filter_branch_id"), AreaKota: q.Get("filter_area_kota")}
	writeJSON(w, http.StatusOK, s.store.ListOrders(claims(r), f))
}

func (s *Server) transition(w http.ResponseWriter, r *http.Request) {
	action := chi.URLParam(r, "action")
	if _, ok := transitions[action]; !ok {
		writeMessage(w, http.StatusNotFound, "unknown action")
		return
	}
	order, err := s.store.Transition(claims(r), chi.URLParam(r, "id"), action)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

type cancelRequest struct {
	CancelCode int `json:"cancelCode" validate:"required"`
}

func (s *Server) cancel(w http.ResponseWriter, r *http.Request) {
	var req cancelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeMessage(w, http.StatusBadRequest, "cancelCode is required")
		return
	}
	order, err := s.store.Cancel(claims(r), chi.URLParam(r, "id"), req.CancelCode)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (s *Server) cancelable(w http.ResponseWriter, r *http.Request) {
	c, err := s.store.Cancelable(claims(r), chi.URLParam(r, "id"))
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) branches(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Branches(claims(r)))
}

func (s *Server) listBMs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.BusinessManagers())
}

func (s *Server) branchesByArea(w http.ResponseWriter, r *http.Request) {
	area := r.URL.Query().Get("area")
	if area == "" {
		writeMessage(w, http.StatusBadRequest, "area is required")
		return
	}
	writeJSON(w, http.StatusOK, s.store.BranchesByArea(area))
}

func (s *Server) inventory(w http.ResponseWriter, r *http.Request) {
	recs, err := s.store.Inventory(claims(r), chi.URLParam(r, "branchId"))
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": recs})
}

func (s *Server) products(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"data": s.store.Products()})
}

func claims(r *http.Request) auth.Claims {
	if c := middleware.ClaimsFromContext(r.Context()); c != nil {
		return *c
	}
	return auth.Claims{}
}

func (s *Server) writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrOrderNotFound), errors.Is(err, ErrBranchNotFound):
		writeMessage(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrForbidden):
		writeMessage(w, http.StatusForbidden, err.Error())
	case errors.Is(err, ErrInvalidTransition), errors.Is(err, ErrNotCancelable):
		writeMessage(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrUnknownCancelCode):
		writeMessage(w, http.StatusBadRequest, err.Error())
	default:
		s.logger.Error("mock backend", "error", err)
		writeMessage(w, http.StatusInternalServerError, "internal server error")
	}
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
