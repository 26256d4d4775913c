package mockbackend_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kf-pos/dashboard/internal/apperr"
	"github.com/kf-pos/dashboard/internal/backend"
	"github.com/kf-pos/dashboard/internal/enum"
	"github.com/kf-pos/dashboard/internal/mockbackend"
	"github.com/kf-pos/dashboard/internal/model"
)

const testSecret = "test-secret"

type tokenHolder struct{ token string }

func (h *tokenHolder) Token() string { return h.token }

func newTestServer(t *testing.T) (*httptest.Server, *mockbackend.Store) {
	t.Helper()
	store := seededStore(t)
	srv := mockbackend.NewServer(store, testSecret, time.Hour)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, store
}

// login returns a client carrying the token of username.
func login(t *testing.T, ts *httptest.Server, username string) (*backend.Client, model.Session) {
	t.Helper()
	holder := &tokenHolder{}
	c := backend.NewClient(ts.URL+mockbackend.BasePath, nil, holder)
	sess, err := c.Login(context.Background(), username, testPassword)
	if err != nil {
		t.Fatalf("login %s: %v", username, err)
	}
	holder.token = sess.Token
	return c, sess
}

func TestServerLogin(t *testing.T) {
	ts, _ := newTestServer(t)

	_, sess := login(t, ts, mockbackend.DemoAdminDago)
	if sess.Token == "" {
		t.Fatal("expected token")
	}
	if sess.User.Username != mockbackend.DemoAdminDago || sess.User.Role != enum.UserRoleBranchAdmin {
		t.Errorf("user = %+v", sess.User)
	}
	if sess.User.BranchID == nil || *sess.User.BranchID != "KF-BDG-001" {
		t.Errorf("branch id = %v", sess.User.BranchID)
	}

	c := backend.NewClient(ts.URL+mockbackend.BasePath, nil, nil)
	_, err := c.Login(context.Background(), mockbackend.DemoAdminDago, "wrong")
	if err == nil {
		t.Fatal("expected error")
	}
	if got := apperr.PublicMessage(err); got != "Invalid username or password" {
		t.Errorf("message = %q", got)
	}
}

func TestServerRequiresToken(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + mockbackend.BasePath + "/orders")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
}

func TestServerOrderFlow(t *testing.T) {
	ts, _ := newTestServer(t)
	c, _ := login(t, ts, mockbackend.DemoAdminMenteng)
	ctx := context.Background()

	orders, err := c.ListOrders(ctx, model.Filter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(orders) != 7 {
		t.Fatalf("orders = %d, want 7", len(orders))
	}
	incoming, ok := firstWithStatus(orders, enum.OrderStatusIncoming)
	if !ok {
		t.Fatal("no incoming order")
	}

	got, err := c.AcceptOrder(ctx, incoming.OrderID)
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if got.Status != enum.OrderStatusPreparing {
		t.Errorf("status = %s", got.Status)
	}

	_, err = c.AcceptOrder(ctx, incoming.OrderID)
	if err == nil {
		t.Fatal("second accept should fail")
	}
	if !apperr.Is(err, apperr.Action) {
		t.Errorf("expected action error, got %v", err)
	}

	got, err = c.MarkOrderReady(ctx, incoming.OrderID)
	if err != nil {
		t.Fatalf("ready: %v", err)
	}
	if got.Status != enum.OrderStatusReadyForPickup {
		t.Errorf("status = %s", got.Status)
	}

	cc, err := c.CheckCancellation(ctx, incoming.OrderID)
	if err != nil {
		t.Fatalf("cancelable: %v", err)
	}
	if !cc.CancelAble || len(cc.Reasons) == 0 {
		t.Fatalf("cancellability = %+v", cc)
	}
	got, err = c.CancelOrder(ctx, incoming.OrderID, cc.Reasons[0].Code)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if got.Status != enum.OrderStatusCancelled {
		t.Errorf("status = %s", got.Status)
	}
}

func TestServerFilterQuery(t *testing.T) {
	ts, _ := newTestServer(t)
	c, _ := login(t, ts, mockbackend.DemoSuperAdmin)
	ctx := context.Background()

	byArea, err := c.ListOrders(ctx, model.Filter{AreaKota: "Bandung"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(byArea) != 14 {
		t.Errorf("by area = %d, want 14", len(byArea))
	}
	byBranch, err := c.ListOrders(ctx, model.Filter{BranchID: "KF-JKT-001"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(byBranch) != 7 {
		t.Errorf("by branch = %d, want 7", len(byBranch))
	}
}

func TestServerCatalog(t *testing.T) {
	ts, _ := newTestServer(t)
	ctx := context.Background()

	super, _ := login(t, ts, mockbackend.DemoSuperAdmin)
	bms, err := super.ListBusinessManagers(ctx)
	if err != nil {
		t.Fatalf("bms: %v", err)
	}
	if len(bms) != 2 {
		t.Errorf("bms = %d, want 2", len(bms))
	}
	branches, err := super.ListBranchesByArea(ctx, "Bandung")
	if err != nil {
		t.Fatalf("by area: %v", err)
	}
	if len(branches) != 2 {
		t.Errorf("branches = %d, want 2", len(branches))
	}
	products, err := super.ListProducts(ctx)
	if err != nil {
		t.Fatalf("products: %v", err)
	}
	if len(products) == 0 {
		t.Error("expected products")
	}

	admin, _ := login(t, ts, mockbackend.DemoAdminMenteng)
	if _, err := admin.ListBusinessManagers(ctx); err == nil {
		t.Error("branch admin should not list BMs")
	}
	recs, err := admin.InventoryByBranch(ctx, "KF-JKT-001")
	if err != nil {
		t.Fatalf("inventory: %v", err)
	}
	if len(recs) != len(products) {
		t.Errorf("inventory rows = %d, want %d", len(recs), len(products))
	}
	if _, err := admin.InventoryByBranch(ctx, "KF-BDG-001"); err == nil {
		t.Error("branch admin should not read another branch's stock")
	}
}
