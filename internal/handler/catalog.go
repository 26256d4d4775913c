package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kf-pos/dashboard/internal/middleware"
	"github.com/kf-pos/dashboard/internal/model"
	"github.com/kf-pos/dashboard/internal/service"
)

// CatalogSource reads branches, business managers, stock and products.
// Satisfied by *backend.Client; narrow interface for testability.
type CatalogSource interface {
	service.FilterSource
	service.InventorySource
	ListProducts(ctx context.Context) ([]model.Product, error)
}

// CatalogHandler serves the filter bar options and the inventory pages.
type CatalogHandler struct {
	src CatalogSource
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(src CatalogSource) *CatalogHandler {
	return &CatalogHandler{src: src}
}

func (h *CatalogHandler) RegisterRoutes(r chi.Router) {
	r.Get("/filters/options", h.FilterOptions)
	r.Get("/inventory", h.Inventory)
	r.Get("/products", h.Products)
}

// FilterOptions lists what the user may filter by. Superadmins pass ?area=
// once a business manager is picked to get that area's branches.
func (h *CatalogHandler) FilterOptions(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	opts, err := service.LoadFilterOptions(r.Context(), h.src, *user, r.URL.Query().Get("area"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, opts)
}

// Inventory lists the stock of ?branch_id=, searched by ?q=.
func (h *CatalogHandler) Inventory(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	q := r.URL.Query()
	items, err := service.LoadInventory(r.Context(), h.src, *user, q.Get("branch_id"), q.Get("q"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": items})
}

func (h *CatalogHandler) Products(w http.ResponseWriter, r *http.Request) {
	products, err := h.src.ListProducts(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": products})
}
