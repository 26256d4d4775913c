package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/kf-pos/dashboard/internal/apperr"
	"github.com/kf-pos/dashboard/internal/enum"
	"github.com/kf-pos/dashboard/internal/model"
)

const msgFetchOrders = "failed to fetch orders"

// actionFallback is shown when the backend gives no message for a failed action.
var actionFallback = map[string]string{
	enum.ActionAccept: "failed to accept order",
	enum.ActionReject: "failed to reject order",
	enum.ActionReady:  "failed to mark order ready",
	enum.ActionCancel: "failed to cancel order",
}

// FilterQuery encodes f as the backend's filter query parameters.
// Empty fields are omitted.
func FilterQuery(f model.Filter) url.Values {
	q := url.Values{}
	if f.BranchID != "" {
		q.Set("filter_branch_id", f.BranchID)
	}
	if f.AreaKota != "" {
		q.Set("filter_area_kota", f.AreaKota)
	}
	return q
}

// ListOrders calls GET /orders with the filter. The backend narrows the list
// further by the caller's role.
func (c *Client) ListOrders(ctx context.Context, f model.Filter) ([]model.Order, error) {
	var orders []model.Order
	if err := c.do(ctx, http.MethodGet, "/orders", FilterQuery(f), nil, &orders); err != nil {
		return nil, apperr.FetchErr(msgFetchOrders, err)
	}
	if orders == nil {
		orders = []model.Order{}
	}
	return orders, nil
}

// AcceptOrder moves an INCOMING order to PREPARING.
func (c *Client) AcceptOrder(ctx context.Context, orderID string) (model.Order, error) {
	return c.orderAction(ctx, orderID, enum.ActionAccept, nil)
}

// RejectOrder moves an INCOMING order to REJECTED.
func (c *Client) RejectOrder(ctx context.Context, orderID string) (model.Order, error) {
	return c.orderAction(ctx, orderID, enum.ActionReject, nil)
}

// MarkOrderReady moves a PREPARING order to READY_FOR_PICKUP.
func (c *Client) MarkOrderReady(ctx context.Context, orderID string) (model.Order, error) {
	return c.orderAction(ctx, orderID, enum.ActionReady, nil)
}

type cancelRequest struct {
	CancelCode int `json:"cancelCode"`
}

// CancelOrder cancels an order with a platform reason code.
func (c *Client) CancelOrder(ctx context.Context, orderID string, cancelCode int) (model.Order, error) {
	return c.orderAction(ctx, orderID, enum.ActionCancel, cancelRequest{CancelCode: cancelCode})
}

// CheckCancellation asks whether the order may still be cancelled.
func (c *Client) CheckCancellation(ctx context.Context, orderID string) (model.Cancellability, error) {
	var out model.Cancellability
	path := fmt.Sprintf("/orders/%s/cancelable", url.PathEscape(orderID))
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		return model.Cancellability{}, actionError(err, "failed to check cancellation")
	}
	return out, nil
}

func (c *Client) orderAction(ctx context.Context, orderID, action string, body any) (model.Order, error) {
	var out model.Order
	path := fmt.Sprintf("/orders/%s/%s", url.PathEscape(orderID), action)
	if err := c.do(ctx, http.MethodPost, path, nil, body, &out); err != nil {
		return model.Order{}, actionError(err, actionFallback[action])
	}
	return out, nil
}

func actionError(err error, fallback string) error {
	if msg := serverMessage(err); msg != "" {
		return apperr.ActionErr(msg, err)
	}
	return apperr.ActionErr(fallback, err)
}
