package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kf-pos/dashboard/internal/middleware"
	"github.com/kf-pos/dashboard/internal/model"
)

// SessionService logs staff in and out.
// Satisfied by *session.Manager; narrow interface for testability.
type SessionService interface {
	Login(ctx context.Context, username, password string) (model.Session, error)
	Logout() error
}

// ViewLifecycle is the owning view that lives as long as the session.
// Satisfied by *service.Board.
type ViewLifecycle interface {
	Mount(ctx context.Context) error
	Unmount()
}

// ConfirmationCloser drops an open confirmation on logout.
// Satisfied by *service.Dispatcher.
type ConfirmationCloser interface {
	Cancel()
}

// AuthHandler handles login, logout and the current user.
type AuthHandler struct {
	sessions SessionService
	view     ViewLifecycle
	confirm  ConfirmationCloser
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(sessions SessionService, view ViewLifecycle, confirm ConfirmationCloser) *AuthHandler {
	return &AuthHandler{sessions: sessions, view: view, confirm: confirm}
}

// RegisterRoutes registers the public auth endpoints.
func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/auth/login", h.Login)
}

// RegisterProtectedRoutes registers the endpoints that need a session.
func (h *AuthHandler) RegisterProtectedRoutes(r chi.Router) {
	r.Post("/auth/logout", h.Logout)
	r.Get("/me", h.Me)
}

// --- Request / Response types ---

type loginRequest struct {
	Username string `json:"username" validate:"required,max=100"`
	Password string `json:"password" validate:"required,max=200"`
}

type loginResponse struct {
	Token string     `json:"token"`
	User  model.User `json:"user"`
}

// --- Handlers ---

// Login exchanges credentials at the backend and opens the dashboard.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeBody(w, r, &req, false) {
		return
	}

	sess, err := h.sessions.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	slog.Info("staff logged in", "username", sess.User.Username, "role", sess.User.Role)
	// A failed first fetch shows up as the board error, not as a login failure.
	if err := h.view.Mount(r.Context()); err != nil {
		slog.Warn("initial order fetch failed", "error", err)
	}

	writeJSON(w, http.StatusOK, loginResponse{Token: sess.Token, User: sess.User})
}

// Logout closes the dashboard and clears the session. No backend call is made.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.confirm.Cancel()
	h.view.Unmount()
	if err := h.sessions.Logout(); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out", "redirect": middleware.LoginPath})
}

// Me returns the logged-in user.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, middleware.UserFromContext(r.Context()))
}
