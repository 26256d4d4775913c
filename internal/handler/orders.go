package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kf-pos/dashboard/internal/model"
	"github.com/kf-pos/dashboard/internal/service"
)

// ActionDispatcher gates order transitions behind a confirmation.
// Satisfied by *service.Dispatcher; narrow interface for testability.
type ActionDispatcher interface {
	Request(ctx context.Context, req service.ActionRequest) (service.Pending, error)
	Confirm(ctx context.Context) (model.Order, error)
	Cancel()
	Pending() (service.Pending, bool)
}

// OrderHandler opens, confirms and dismisses order action confirmations.
type OrderHandler struct {
	dispatcher ActionDispatcher
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(dispatcher ActionDispatcher) *OrderHandler {
	return &OrderHandler{dispatcher: dispatcher}
}

func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Post("/orders/{id}/{action}", h.RequestAction)
	r.Get("/confirmation", h.GetConfirmation)
	r.Post("/confirmation", h.Confirm)
	r.Delete("/confirmation", h.CancelConfirmation)
}

// --- Request / Response types ---

type actionBody struct {
	CancelCode int `json:"cancel_code" validate:"gte=0"`
}

type confirmationResponse struct {
	Pending *service.Pending `json:"pending"`
}

// --- Handlers ---

// RequestAction opens a confirmation for accept, reject, ready or cancel.
// Nothing reaches the backend until it is confirmed.
func (h *OrderHandler) RequestAction(w http.ResponseWriter, r *http.Request) {
	var body actionBody
	if !decodeBody(w, r, &body, true) {
		return
	}

	req := service.ActionRequest{
		Action:     chi.URLParam(r, "action"),
		OrderID:    chi.URLParam(r, "id"),
		CancelCode: body.CancelCode,
	}
	if err := validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":  "validation failed",
			"fields": fieldErrors(err),
		})
		return
	}

	p, err := h.dispatcher.Request(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, confirmationResponse{Pending: &p})
}

func (h *OrderHandler) GetConfirmation(w http.ResponseWriter, r *http.Request) {
	resp := confirmationResponse{}
	if p, ok := h.dispatcher.Pending(); ok {
		resp.Pending = &p
	}
	writeJSON(w, http.StatusOK, resp)
}

// Confirm dispatches the pending action. The confirmation is closed either way.
func (h *OrderHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	order, err := h.dispatcher.Confirm(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"order": order})
}

func (h *OrderHandler) CancelConfirmation(w http.ResponseWriter, r *http.Request) {
	h.dispatcher.Cancel()
	w.WriteHeader(http.StatusNoContent)
}
