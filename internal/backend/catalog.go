package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/kf-pos/dashboard/internal/apperr"
	"github.com/kf-pos/dashboard/internal/model"
)

// dataEnvelope is the {data: [...]} wrapper used by the inventory and
// product endpoints.
type dataEnvelope[T any] struct {
	Data []T `json:"data"`
}

// ListBranches calls GET /branches. Business managers only get their area.
func (c *Client) ListBranches(ctx context.Context) ([]model.Branch, error) {
	var out []model.Branch
	if err := c.do(ctx, http.MethodGet, "/branches", nil, nil, &out); err != nil {
		return nil, apperr.FetchErr("failed to fetch branches", err)
	}
	return nonNil(out), nil
}

// ListBusinessManagers calls GET /branches/list-bms (superadmin only).
func (c *Client) ListBusinessManagers(ctx context.Context) ([]model.BusinessManager, error) {
	var out []model.BusinessManager
	if err := c.do(ctx, http.MethodGet, "/branches/list-bms", nil, nil, &out); err != nil {
		return nil, apperr.FetchErr("failed to fetch business managers", err)
	}
	return nonNil(out), nil
}

// ListBranchesByArea calls GET /branches/by-area?area=.
func (c *Client) ListBranchesByArea(ctx context.Context, area string) ([]model.Branch, error) {
	var out []model.Branch
	if err := c.do(ctx, http.MethodGet, "/branches/by-area", url.Values{"area": {area}}, nil, &out); err != nil {
		return nil, apperr.FetchErr(fmt.Sprintf("failed to fetch branches for area %s", area), err)
	}
	return nonNil(out), nil
}

// InventoryByBranch calls GET /inventory/{branchID}.
func (c *Client) InventoryByBranch(ctx context.Context, branchID string) ([]model.InventoryRecord, error) {
	var env dataEnvelope[model.InventoryRecord]
	path := "/inventory/" + url.PathEscape(branchID)
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &env); err != nil {
		return nil, apperr.FetchErr("failed to fetch branch inventory", err)
	}
	return nonNil(env.Data), nil
}

// ListProducts calls GET /products.
func (c *Client) ListProducts(ctx context.Context) ([]model.Product, error) {
	var env dataEnvelope[model.Product]
	if err := c.do(ctx, http.MethodGet, "/products", nil, nil, &env); err != nil {
		return nil, apperr.FetchErr("failed to fetch products", err)
	}
	return nonNil(env.Data), nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
