package service

import (
	"context"
	"strings"

	"github.com/kf-pos/dashboard/internal/apperr"
	"github.com/kf-pos/dashboard/internal/enum"
	"github.com/kf-pos/dashboard/internal/model"
)

// LowStockThreshold is the stock below which an item is flagged low.
const LowStockThreshold = 10

const (
	StockOut = "out"
	StockLow = "low"
	StockOK  = "ok"
)

// StockLevel buckets a stock count for the badge.
func StockLevel(stock int64) string {
	switch {
	case stock <= 0:
		return StockOut
	case stock < LowStockThreshold:
		return StockLow
	default:
		return StockOK
	}
}

// FlattenInventory maps raw stock rows to display rows. Missing stock counts as 0.
func FlattenInventory(recs []model.InventoryRecord) []model.InventoryItem {
	items := make([]model.InventoryItem, 0, len(recs))
	for _, r := range recs {
		var stock int64
		if r.OpnameStock != nil {
			stock = *r.OpnameStock
		}
		category := r.Products.GrabCategoryID
		if category == "" {
			category = "-"
		}
		items = append(items, model.InventoryItem{
			ProductID: r.Products.ProductID,
			Name:      r.Products.ProductName,
			Price:     r.Products.Price,
			Stock:     stock,
			Category:  category,
			SKU:       r.Products.ProductID,
			Level:     StockLevel(stock),
		})
	}
	return items
}

// SearchInventory keeps items whose name or SKU contains term, ignoring case.
func SearchInventory(items []model.InventoryItem, term string) []model.InventoryItem {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return items
	}
	out := make([]model.InventoryItem, 0, len(items))
	for _, it := range items {
		if strings.Contains(strings.ToLower(it.Name), term) || strings.Contains(strings.ToLower(it.SKU), term) {
			out = append(out, it)
		}
	}
	return out
}

// InventorySource reads branch stock.
// Satisfied by *backend.Client.
type InventorySource interface {
	InventoryByBranch(ctx context.Context, branchID string) ([]model.InventoryRecord, error)
}

// InventoryBranch resolves which branch's stock the user sees. Branch admins
// always see their own branch; other roles must pick one ("" means none yet).
func InventoryBranch(user model.User, requested string) (string, error) {
	if user.Role == enum.UserRoleBranchAdmin {
		if user.BranchID == nil || *user.BranchID == "" {
			return "", apperr.InvalidErr("no branch assigned to this account")
		}
		return *user.BranchID, nil
	}
	return requested, nil
}

// LoadInventory returns the searched stock rows for the user's branch choice.
func LoadInventory(ctx context.Context, src InventorySource, user model.User, requested, term string) ([]model.InventoryItem, error) {
	branchID, err := InventoryBranch(user, requested)
	if err != nil {
		return nil, err
	}
	if branchID == "" {
		return []model.InventoryItem{}, nil
	}
	recs, err := src.InventoryByBranch(ctx, branchID)
	if err != nil {
		return nil, err
	}
	return SearchInventory(FlattenInventory(recs), term), nil
}
