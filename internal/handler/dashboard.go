package handler

import (
	"bytes"
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kf-pos/dashboard/internal/enum"
	"github.com/kf-pos/dashboard/internal/middleware"
	"github.com/kf-pos/dashboard/internal/model"
	"github.com/kf-pos/dashboard/internal/service"
)

// BoardService is the order view.
// Satisfied by *service.Board; narrow interface for testability.
type BoardService interface {
	Mount(ctx context.Context) error
	Mounted() bool
	Snapshot() service.Snapshot
	SetFilter(ctx context.Context, f model.Filter) error
	Refresh(ctx context.Context, loud bool) error
	DismissNotice()
}

// DashboardHandler serves the order board, its filter and the CSV export.
type DashboardHandler struct {
	board BoardService
	loc   *time.Location
	now   func() time.Time
}

// NewDashboardHandler creates a DashboardHandler. Export dates are rendered in loc.
func NewDashboardHandler(board BoardService, loc *time.Location) *DashboardHandler {
	return &DashboardHandler{board: board, loc: loc, now: time.Now}
}

func (h *DashboardHandler) RegisterRoutes(r chi.Router) {
	r.Get("/dashboard", h.Get)
	r.Put("/dashboard/filter", h.SetFilter)
	r.Post("/dashboard/refresh", h.Refresh)
	r.Get("/dashboard/export", h.Export)
	r.Delete("/notice", h.DismissNotice)
}

// --- Request types ---

type filterRequest struct {
	AreaKota string `json:"areaKota" validate:"max=100"`
	BranchID string `json:"branchId" validate:"max=100"`
}

// --- Handlers ---

func viewParam(r *http.Request) (string, bool) {
	view := r.URL.Query().Get("view")
	if view == "" {
		return enum.BucketAll, true
	}
	return view, enum.IsValidView(view)
}

// ensureMounted opens the board for a session restored from disk.
func (h *DashboardHandler) ensureMounted(ctx context.Context) {
	if !h.board.Mounted() {
		_ = h.board.Mount(ctx)
	}
}

// Get returns the board narrowed to ?view= (default ALL). A failed fetch is
// reported in the body's error field; stale data stays visible.
func (h *DashboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	view, ok := viewParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid view"})
		return
	}
	h.ensureMounted(r.Context())
	writeJSON(w, http.StatusOK, h.board.Snapshot().ForView(view))
}

// SetFilter applies the filter bar selection for the user's role.
func (h *DashboardHandler) SetFilter(w http.ResponseWriter, r *http.Request) {
	var req filterRequest
	if !decodeBody(w, r, &req, false) {
		return
	}
	user := middleware.UserFromContext(r.Context())

	f, err := service.FilterFor(*user, service.FilterSelection{AreaKota: req.AreaKota, BranchID: req.BranchID})
	if err != nil {
		writeError(w, err)
		return
	}
	h.ensureMounted(r.Context())
	_ = h.board.SetFilter(r.Context(), f)
	writeJSON(w, http.StatusOK, h.board.Snapshot().ForView(enum.BucketAll))
}

// Refresh re-fetches with the loading indicator on.
func (h *DashboardHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	view, ok := viewParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid view"})
		return
	}
	h.ensureMounted(r.Context())
	_ = h.board.Refresh(r.Context(), true)
	writeJSON(w, http.StatusOK, h.board.Snapshot().ForView(view))
}

// Export downloads the active view as CSV.
func (h *DashboardHandler) Export(w http.ResponseWriter, r *http.Request) {
	view, ok := viewParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid view"})
		return
	}
	snap := h.board.Snapshot()

	var buf bytes.Buffer
	if err := service.WriteCSV(&buf, snap.Buckets.View(view, snap.Orders), h.loc); err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+service.ExportFileName(view, h.now())+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func (h *DashboardHandler) DismissNotice(w http.ResponseWriter, r *http.Request) {
	h.board.DismissNotice()
	w.WriteHeader(http.StatusNoContent)
}
