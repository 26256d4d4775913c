package handler_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/kf-pos/dashboard/internal/apperr"
	"github.com/kf-pos/dashboard/internal/enum"
	"github.com/kf-pos/dashboard/internal/handler"
	"github.com/kf-pos/dashboard/internal/model"
)

// mockCatalog implements handler.CatalogSource.
type mockCatalog struct {
	gotArea   string
	gotBranch string
	fail      bool
}

func (m *mockCatalog) ListBusinessManagers(ctx context.Context) ([]model.BusinessManager, error) {
	return []model.BusinessManager{{ID: "u1", Username: "bm-bdg", AreaKota: "Bandung"}}, nil
}
func (m *mockCatalog) ListBranches(ctx context.Context) ([]model.Branch, error) {
	return []model.Branch{{BranchID: "B1"}, {BranchID: "B2"}}, nil
}
func (m *mockCatalog) ListBranchesByArea(ctx context.Context, area string) ([]model.Branch, error) {
	m.gotArea = area
	return []model.Branch{{BranchID: "B7", AreaKota: area}}, nil
}
func (m *mockCatalog) InventoryByBranch(ctx context.Context, branchID string) ([]model.InventoryRecord, error) {
	m.gotBranch = branchID
	stock := int64(3)
	return []model.InventoryRecord{
		{OpnameStock: &stock, Products: model.Product{ProductID: "SKU-1", ProductName: "Paracetamol", Price: 12000}},
		{Products: model.Product{ProductID: "SKU-2", ProductName: "Masker", Price: 25000}},
	}, nil
}
func (m *mockCatalog) ListProducts(ctx context.Context) ([]model.Product, error) {
	if m.fail {
		return nil, apperr.FetchErr("failed to fetch products", nil)
	}
	return []model.Product{{ProductID: "SKU-1", ProductName: "Paracetamol"}}, nil
}

func newCatalogRouter(src *mockCatalog, user *model.User) http.Handler {
	return protectedRouter(user, handler.NewCatalogHandler(src).RegisterRoutes)
}

func TestFilterOptions(t *testing.T) {
	src := &mockCatalog{}
	rr := doJSON(t, newCatalogRouter(src, superadmin), "GET", "/filters/options?area=Bandung", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
	resp := decodeResponse(t, rr)
	if len(resp["business_managers"].([]interface{})) != 1 || len(resp["branches"].([]interface{})) != 1 {
		t.Errorf("resp = %v", resp)
	}
	if src.gotArea != "Bandung" {
		t.Errorf("area = %q", src.gotArea)
	}
}

func TestInventory(t *testing.T) {
	src := &mockCatalog{}
	admin := &model.User{Role: enum.UserRoleBranchAdmin, BranchID: strPtr("B1")}

	rr := doJSON(t, newCatalogRouter(src, admin), "GET", "/inventory?branch_id=B9&q=para", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
	if src.gotBranch != "B1" {
		t.Errorf("branch admin read branch %q, want own branch", src.gotBranch)
	}
	data := decodeResponse(t, rr)["data"].([]interface{})
	if len(data) != 1 {
		t.Fatalf("data = %v", data)
	}
	if item := data[0].(map[string]interface{}); item["level"] != "low" {
		t.Errorf("item = %v", item)
	}
}

func TestProducts(t *testing.T) {
	rr := doJSON(t, newCatalogRouter(&mockCatalog{}, superadmin), "GET", "/products", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}

	rr = doJSON(t, newCatalogRouter(&mockCatalog{fail: true}, superadmin), "GET", "/products", nil)
	if rr.Code != http.StatusBadGateway {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadGateway)
	}
}
