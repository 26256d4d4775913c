package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kf-pos/dashboard/internal/apperr"
	"github.com/kf-pos/dashboard/internal/enum"
	"github.com/kf-pos/dashboard/internal/model"
)

// OrderActions performs the backend state transitions.
// Satisfied by *backend.Client.
type OrderActions interface {
	AcceptOrder(ctx context.Context, orderID string) (model.Order, error)
	RejectOrder(ctx context.Context, orderID string) (model.Order, error)
	MarkOrderReady(ctx context.Context, orderID string) (model.Order, error)
	CancelOrder(ctx context.Context, orderID string, cancelCode int) (model.Order, error)
	CheckCancellation(ctx context.Context, orderID string) (model.Cancellability, error)
}

// OrderView is the part of the board the dispatcher reads and refreshes.
// Satisfied by *Board; narrow interface for testability.
type OrderView interface {
	Order(id string) (model.Order, bool)
	RefreshAsync()
	SetNotice(msg string)
}

var (
	ErrNoPendingConfirmation = apperr.InvalidErr("no pending confirmation")
	ErrConfirmationPending   = apperr.ConflictErr("another confirmation is pending")
	ErrOrderNotFound         = apperr.NotFoundErr("order not found")
	ErrUnknownAction         = apperr.InvalidErr("unknown action")
	ErrNotCancelable         = apperr.InvalidErr("order cannot be cancelled")
	ErrUnknownCancelReason   = apperr.InvalidErr("unknown cancel reason")
)

// ActionRequest asks for a transition. CancelCode is only read for cancel;
// zero picks the first reason the backend offers.
type ActionRequest struct {
	Action     string `json:"action" validate:"required,oneof=accept reject ready cancel"`
	OrderID    string `json:"order_id" validate:"required"`
	CancelCode int    `json:"cancel_code,omitempty" validate:"gte=0"`
}

// Pending is an open confirmation.
type Pending struct {
	ID          uuid.UUID `json:"id"`
	Action      string    `json:"action"`
	OrderID     string    `json:"order_id"`
	DisplayID   string    `json:"display_id"`
	CancelCode  int       `json:"cancel_code,omitempty"`
	Prompt      string    `json:"prompt"`
	RequestedAt time.Time `json:"requested_at"`
}

type actionRule struct {
	requires string // required order status; empty when the backend decides
	verb     string
}

var actionRules = map[string]actionRule{
	enum.ActionAccept: {requires: enum.OrderStatusIncoming, verb: "Accept"},
	enum.ActionReject: {requires: enum.OrderStatusIncoming, verb: "Reject"},
	enum.ActionReady:  {requires: enum.OrderStatusPreparing, verb: "Mark ready"},
	enum.ActionCancel: {verb: "Cancel"},
}

// Dispatcher gates every transition behind an explicit confirmation.
// It is either idle or holds exactly one Pending.
type Dispatcher struct {
	actions  OrderActions
	view     OrderView
	observer Observer
	logger   *slog.Logger
	now      func() time.Time

	mu      sync.Mutex
	pending *Pending

	// dispatchMu keeps backend calls strictly sequential.
	dispatchMu sync.Mutex
}

type DispatcherOption func(*Dispatcher)

func WithDispatcherObserver(o Observer) DispatcherOption {
	return func(d *Dispatcher) { d.observer = o }
}

func WithDispatcherLogger(l *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) { d.logger = l }
}

func WithDispatcherClock(now func() time.Time) DispatcherOption {
	return func(d *Dispatcher) { d.now = now }
}

func NewDispatcher(actions OrderActions, view OrderView, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		actions:  actions,
		view:     view,
		observer: nopObserver{},
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Pending returns the open confirmation, if any.
func (d *Dispatcher) Pending() (Pending, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pending == nil {
		return Pending{}, false
	}
	return *d.pending, true
}

// Request checks the precondition against the displayed data and opens a
// confirmation. Nothing is sent to the backend for accept/reject/ready.
func (d *Dispatcher) Request(ctx context.Context, req ActionRequest) (Pending, error) {
	rule, ok := actionRules[req.Action]
	if !ok {
		return Pending{}, ErrUnknownAction
	}

	d.mu.Lock()
	if p := d.pending; p != nil {
		d.mu.Unlock()
		if p.Action == req.Action && p.OrderID == req.OrderID {
			return *p, nil
		}
		return Pending{}, ErrConfirmationPending
	}
	d.mu.Unlock()

	order, ok := d.view.Order(req.OrderID)
	if !ok {
		return Pending{}, ErrOrderNotFound
	}
	if rule.requires != "" && order.Status != rule.requires {
		return Pending{}, apperr.InvalidErr(fmt.Sprintf("cannot %s an order that is %s", req.Action, order.StatusLabel()))
	}

	code := 0
	if req.Action == enum.ActionCancel {
		var err error
		if code, err = d.cancelCode(ctx, req); err != nil {
			return Pending{}, err
		}
	}

	p := &Pending{
		ID:          uuid.New(),
		Action:      req.Action,
		OrderID:     req.OrderID,
		DisplayID:   order.DisplayID(),
		CancelCode:  code,
		Prompt:      fmt.Sprintf("%s order #%s?", rule.verb, order.DisplayID()),
		RequestedAt: d.now(),
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if cur := d.pending; cur != nil {
		if cur.Action == p.Action && cur.OrderID == p.OrderID {
			return *cur, nil
		}
		return Pending{}, ErrConfirmationPending
	}
	d.pending = p
	return *p, nil
}

func (d *Dispatcher) cancelCode(ctx context.Context, req ActionRequest) (int, error) {
	c, err := d.actions.CheckCancellation(ctx, req.OrderID)
	if err != nil {
		return 0, err
	}
	if !c.CancelAble {
		return 0, ErrNotCancelable
	}
	if len(c.Reasons) == 0 {
		return req.CancelCode, nil
	}
	if req.CancelCode == 0 {
		return c.Reasons[0].Code, nil
	}
	for _, r := range c.Reasons {
		if r.Code == req.CancelCode {
			return r.Code, nil
		}
	}
	return 0, ErrUnknownCancelReason
}

// Cancel closes the confirmation without dispatching.
func (d *Dispatcher) Cancel() {
	d.mu.Lock()
	d.pending = nil
	d.mu.Unlock()
}

// Confirm dispatches the pending action. The confirmation is closed whatever
// the outcome. On success a silent refresh is started; on failure the error
// becomes the board notice and the list is left untouched.
func (d *Dispatcher) Confirm(ctx context.Context) (model.Order, error) {
	d.dispatchMu.Lock()
	defer d.dispatchMu.Unlock()

	d.mu.Lock()
	p := d.pending
	d.pending = nil
	d.mu.Unlock()
	if p == nil {
		return model.Order{}, ErrNoPendingConfirmation
	}

	order, err := d.dispatch(ctx, *p)
	d.observer.ActionDispatched(p.Action, err)
	if err != nil {
		d.logger.Warn("order action failed", "action", p.Action, "order_id", p.OrderID, "error", err)
		d.view.SetNotice(apperr.PublicMessage(err))
		return model.Order{}, err
	}

	d.logger.Info("order action dispatched", "action", p.Action, "order_id", p.OrderID)
	d.view.RefreshAsync()
	return order, nil
}

func (d *Dispatcher) dispatch(ctx context.Context, p Pending) (model.Order, error) {
	switch p.Action {
	case enum.ActionAccept:
		return d.actions.AcceptOrder(ctx, p.OrderID)
	case enum.ActionReject:
		return d.actions.RejectOrder(ctx, p.OrderID)
	case enum.ActionReady:
		return d.actions.MarkOrderReady(ctx, p.OrderID)
	case enum.ActionCancel:
		return d.actions.CancelOrder(ctx, p.OrderID, p.CancelCode)
	}
	return model.Order{}, ErrUnknownAction
}
