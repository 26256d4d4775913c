package service

import (
	"strconv"
	"time"

	"github.com/kf-pos/dashboard/internal/enum"
	"github.com/kf-pos/dashboard/internal/model"
)

// OrderCard is the rendered form of one order on the board.
type OrderCard struct {
	OrderID     string     `json:"order_id"`
	DisplayID   string     `json:"display_id"`
	Status      string     `json:"status"`
	StatusLabel string     `json:"status_label"`
	CreatedAt   time.Time  `json:"created_at"`
	Total       string     `json:"total"`
	Items       []CardItem `json:"items"`
	Actions     []string   `json:"actions"`
}

// CardItem is one item line of a card.
type CardItem struct {
	Quantity  int64    `json:"quantity"`
	Name      string   `json:"name"`
	Modifiers []string `json:"modifiers,omitempty"`
	Notes     string   `json:"notes,omitempty"`
}

// cardActions are the buttons a card offers per status. Cancel is not a
// card button; it is offered only after the backend confirms it.
var cardActions = map[string][]string{
	enum.OrderStatusIncoming:  {enum.ActionReject, enum.ActionAccept},
	enum.OrderStatusPreparing: {enum.ActionReady},
}

// Card renders o. Unnamed items are labelled "Item #n", counting from 1.
func Card(o model.Order) OrderCard {
	items := make([]CardItem, 0, len(o.Payload.Items))
	for i, it := range o.Payload.Items {
		ci := CardItem{Quantity: it.Quantity, Name: "Item #" + strconv.Itoa(i+1)}
		if it.Name != nil && *it.Name != "" {
			ci.Name = *it.Name
		}
		if it.Notes != nil {
			ci.Notes = *it.Notes
		}
		for _, m := range it.Modifiers {
			if m.Name != "" {
				ci.Modifiers = append(ci.Modifiers, m.Name)
			}
		}
		items = append(items, ci)
	}

	actions := cardActions[o.Status]
	if actions == nil {
		actions = []string{}
	}
	return OrderCard{
		OrderID:     o.OrderID,
		DisplayID:   o.DisplayID(),
		Status:      o.Status,
		StatusLabel: o.StatusLabel(),
		CreatedAt:   o.CreatedAt,
		Total:       FormatIDR(DisplayTotal(o.Payload).Floor().IntPart()),
		Items:       items,
		Actions:     actions,
	}
}

// Cards renders every order, keeping their order.
func Cards(orders []model.Order) []OrderCard {
	out := make([]OrderCard, 0, len(orders))
	for _, o := range orders {
		out = append(out, Card(o))
	}
	return out
}
