// Package model holds the records exchanged with the order backend.
// Every field of the raw delivery-platform payload is optional; absent values
// are represented as nil pointers or empty slices, never as zero guesses.
package model

import (
	"strings"
	"time"
)

// Order is a delivery-platform order as reported by the backend.
// Status is authoritative and never mutated locally.
type Order struct {
	OrderID   string     `json:"grab_order_id"`
	Status    string     `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	Payload   RawPayload `json:"grab_payload_raw"`
}

// RawPayload is the platform payload forwarded untouched by the backend.
type RawPayload struct {
	ShortOrderNumber string         `json:"shortOrderNumber,omitempty"`
	Items            []Item         `json:"items,omitempty"`
	Price            PriceBreakdown `json:"price"`
}

// Item is one ordered line. Price is in minor units.
type Item struct {
	Quantity  int64      `json:"quantity"`
	Name      *string    `json:"name,omitempty"`
	Price     *int64     `json:"price,omitempty"`
	Modifiers []Modifier `json:"modifiers,omitempty"`
	Notes     *string    `json:"notes,omitempty"`
}

// Modifier is an add-on attached to an item.
type Modifier struct {
	Name     string `json:"name,omitempty"`
	Quantity int64  `json:"quantity,omitempty"`
	Price    *int64 `json:"price,omitempty"`
}

// PriceBreakdown carries the platform price fields, all in minor units.
type PriceBreakdown struct {
	Total        *int64 `json:"total,omitempty"`
	EaterPayment *int64 `json:"eaterPayment,omitempty"`
	Subtotal     *int64 `json:"subtotal,omitempty"`
}

// DisplayID is the short number shown on cards: the platform's short order
// number, else the last six characters of the order ID.
func (o Order) DisplayID() string {
	if o.Payload.ShortOrderNumber != "" {
		return o.Payload.ShortOrderNumber
	}
	if r := []rune(o.OrderID); len(r) > 6 {
		return string(r[len(r)-6:])
	}
	if o.OrderID == "" {
		return "ID"
	}
	return o.OrderID
}

// StatusLabel renders the status for humans, e.g. "READY FOR PICKUP".
func (o Order) StatusLabel() string {
	return strings.ReplaceAll(o.Status, "_", " ")
}

// User is the staff identity returned at login.
type User struct {
	Username   string  `json:"username"`
	Role       string  `json:"role"`
	BranchID   *string `json:"branchId,omitempty"`
	BranchName *string `json:"branchName,omitempty"`
}

// Session is a logged-in token together with its decoded identity.
type Session struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Filter narrows the order list server-side. At most one field is set.
type Filter struct {
	BranchID string `json:"branchId,omitempty"`
	AreaKota string `json:"areaKota,omitempty"`
}

// IsZero reports whether no narrowing is requested.
func (f Filter) IsZero() bool { return f.BranchID == "" && f.AreaKota == "" }

// Branch is a pharmacy outlet.
type Branch struct {
	BranchID   string `json:"branch_id"`
	BranchName string `json:"branch_name"`
	Kota       string `json:"kota"`
	AreaKota   string `json:"area_kota,omitempty"`
}

// BusinessManager is a user scoped to one area (city) of branches.
type BusinessManager struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	AreaKota string `json:"area_kota"`
}

// Product is a master product.
type Product struct {
	ProductID      string `json:"product_id"`
	ProductName    string `json:"product_name"`
	Price          int64  `json:"price"`
	GrabCategoryID string `json:"grab_category_id,omitempty"`
}

// InventoryRecord is a raw stock row of one branch.
type InventoryRecord struct {
	OpnameStock *int64  `json:"opname_stock"`
	Products    Product `json:"products"`
}

// InventoryItem is the flattened inventory row shown to staff.
// Price is already in display units.
type InventoryItem struct {
	ProductID string `json:"id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Stock     int64  `json:"stock"`
	Category  string `json:"category"`
	SKU       string `json:"sku"`
	Level     string `json:"level"`
}

// Cancellability is the backend's answer to whether an order may be cancelled.
type Cancellability struct {
	CancelAble bool           `json:"cancelAble"`
	Reasons    []CancelReason `json:"reasons,omitempty"`
}

// CancelReason is one selectable cancellation code.
type CancelReason struct {
	Code   int    `json:"code"`
	Reason string `json:"reason"`
}
