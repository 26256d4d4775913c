// Package mockbackend is an in-memory stand-in for the order backend. It
// serves the same REST contract the dashboard client speaks, with seeded demo
// data, for local demos and tests.
package mockbackend

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/kf-pos/dashboard/internal/auth"
	"github.com/kf-pos/dashboard/internal/enum"
	"github.com/kf-pos/dashboard/internal/model"
)

// Errors returned by the store. The handler maps them to status codes.
var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrOrderNotFound      = errors.New("order not found")
	ErrForbidden          = errors.New("order belongs to another branch")
	ErrInvalidTransition  = errors.New("order cannot move to the requested status")
	ErrNotCancelable      = errors.New("order can no longer be cancelled")
	ErrUnknownCancelCode  = errors.New("unknown cancel code")
	ErrBranchNotFound     = errors.New("branch not found")
	ErrDuplicateUser      = errors.New("username already exists")
)

// CancelReasons are the platform reason codes offered for every cancellable order.
var CancelReasons = []model.CancelReason{
	{Code: 1001, Reason: "Items are unavailable"},
	{Code: 1002, Reason: "Too many orders at the moment"},
	{Code: 1003, Reason: "Store is closed"},
	{Code: 1004, Reason: "Store is closing soon"},
}

// transitions maps an action to the status it requires and the one it sets.
var transitions = map[string]struct{ from, to string }{
	enum.ActionAccept: {enum.OrderStatusIncoming, enum.OrderStatusPreparing},
	enum.ActionReject: {enum.OrderStatusIncoming, enum.OrderStatusRejected},
	enum.ActionReady:  {enum.OrderStatusPreparing, enum.OrderStatusReadyForPickup},
}

func cancellable(status string) bool {
	switch status {
	case enum.OrderStatusIncoming, enum.OrderStatusPreparing, enum.OrderStatusReadyForPickup:
		return true
	}
	return false
}

type account struct {
	hash     []byte
	role     string
	branchID string
	areaKota string
}

type storedOrder struct {
	order    model.Order
	branchID string
	areaKota string
}

// Store holds the backend state behind one mutex.
type Store struct {
	hashCost int
	now      func() time.Time

	mu        sync.RWMutex
	accounts  map[string]account
	branches  []model.Branch
	bms       []model.BusinessManager
	products  []model.Product
	stock     map[string]map[string]int64 // branch → product → count
	orders    map[string]*storedOrder
	shortSeq  int
	injectSeq int
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithHashCost sets the bcrypt cost used for seeded passwords.
func WithHashCost(cost int) StoreOption {
	return func(s *Store) { s.hashCost = cost }
}

// WithClock overrides the time source for new orders.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) { s.now = now }
}

func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		hashCost: bcrypt.DefaultCost,
		now:      time.Now,
		accounts: make(map[string]account),
		stock:    make(map[string]map[string]int64),
		orders:   make(map[string]*storedOrder),
		shortSeq: 100,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddBranch registers a branch.
func (s *Store) AddBranch(b model.Branch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b.AreaKota == "" {
		b.AreaKota = b.Kota
	}
	s.branches = append(s.branches, b)
	if s.stock[b.BranchID] == nil {
		s.stock[b.BranchID] = make(map[string]int64)
	}
}

// AddProduct registers a master product.
func (s *Store) AddProduct(p model.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = append(s.products, p)
}

// SetStock records the counted stock of a product at a branch.
func (s *Store) SetStock(branchID, productID string, count int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.stock[branchID]
	if !ok {
		return ErrBranchNotFound
	}
	m[productID] = count
	return nil
}

// AddUser hashes password and registers a staff account. Business managers
// are also listed as BMs.
func (s *Store) AddUser(username, password, role, branchID, areaKota string) error {
	if !enum.IsValidRole(role) {
		return fmt.Errorf("invalid role %q", role)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[username]; ok {
		return ErrDuplicateUser
	}
	if branchID != "" {
		b, ok := s.branchLocked(branchID)
		if !ok {
			return ErrBranchNotFound
		}
		areaKota = b.AreaKota
	}
	s.accounts[username] = account{hash: hash, role: role, branchID: branchID, areaKota: areaKota}
	if role == enum.UserRoleBusinessManager {
		s.bms = append(s.bms, model.BusinessManager{ID: uuid.NewString(), Username: username, AreaKota: areaKota})
	}
	return nil
}

// Authenticate checks credentials and returns the user and the claims to sign.
func (s *Store) Authenticate(username, password string) (model.User, auth.Claims, error) {
	s.mu.RLock()
	acc, ok := s.accounts[username]
	var branch model.Branch
	if ok && acc.branchID != "" {
		branch, _ = s.branchLocked(acc.branchID)
	}
	s.mu.RUnlock()
	if !ok {
		return model.User{}, auth.Claims{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(acc.hash, []byte(password)); err != nil {
		return model.User{}, auth.Claims{}, ErrInvalidCredentials
	}

	user := model.User{Username: username, Role: acc.role}
	if acc.branchID != "" {
		id, name := branch.BranchID, branch.BranchName
		user.BranchID, user.BranchName = &id, &name
	}
	claims := auth.Claims{Username: username, Role: acc.role, BranchID: acc.branchID, AreaKota: acc.areaKota}
	return user, claims, nil
}

// NewOrder stores an INCOMING order placed at branchID and returns it.
func (s *Store) NewOrder(branchID string, items []model.Item) (model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.newOrderLocked(branchID, items, enum.OrderStatusIncoming, s.now())
}

func (s *Store) newOrderLocked(branchID string, items []model.Item, status string, at time.Time) (model.Order, error) {
	b, ok := s.branchLocked(branchID)
	if !ok {
		return model.Order{}, ErrBranchNotFound
	}
	s.shortSeq++

	var subtotal int64
	for _, it := range items {
		if it.Price != nil {
			subtotal += *it.Price * it.Quantity
		}
	}
	o := model.Order{
		OrderID:   uuid.NewString(),
		Status:    status,
		CreatedAt: at.UTC(),
		Payload: model.RawPayload{
			ShortOrderNumber: fmt.Sprintf("GF-%d", s.shortSeq),
			Items:            items,
		},
	}
	if subtotal > 0 {
		o.Payload.Price.Subtotal = &subtotal
	}
	s.orders[o.OrderID] = &storedOrder{order: o, branchID: b.BranchID, areaKota: b.AreaKota}
	return o, nil
}

// ListOrders returns the orders visible to the caller, newest first. Branch
// admins only see their branch and business managers their area; the filter
// narrows further within that scope.
func (s *Store) ListOrders(c auth.Claims, f model.Filter) []model.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Order, 0, len(s.orders))
	for _, so := range s.orders {
		if !visible(c, so) {
			continue
		}
		if c.Role != enum.UserRoleBranchAdmin {
			if f.BranchID != "" && so.branchID != f.BranchID {
				continue
			}
			if f.AreaKota != "" && so.areaKota != f.AreaKota {
				continue
			}
		}
		out = append(out, so.order)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].OrderID < out[j].OrderID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func visible(c auth.Claims, so *storedOrder) bool {
	switch c.Role {
	case enum.UserRoleSuperAdmin:
		return true
	case enum.UserRoleBusinessManager:
		return so.areaKota == c.AreaKota
	case enum.UserRoleBranchAdmin:
		return so.branchID == c.BranchID
	}
	return false
}

func (s *Store) lookupLocked(c auth.Claims, id string) (*storedOrder, error) {
	so, ok := s.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	if !visible(c, so) {
		return nil, ErrForbidden
	}
	return so, nil
}

// Transition applies accept, reject or ready to an order.
func (s *Store) Transition(c auth.Claims, id, action string) (model.Order, error) {
	t, ok := transitions[action]
	if !ok {
		return model.Order{}, fmt.Errorf("%w: %s", ErrInvalidTransition, action)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	so, err := s.lookupLocked(c, id)
	if err != nil {
		return model.Order{}, err
	}
	if so.order.Status != t.from {
		return model.Order{}, fmt.Errorf("%w: order is %s", ErrInvalidTransition, so.order.Status)
	}
	so.order.Status = t.to
	return so.order, nil
}

// Cancelable reports whether the order may still be cancelled and with which reasons.
func (s *Store) Cancelable(c auth.Claims, id string) (model.Cancellability, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	so, err := s.lookupLocked(c, id)
	if err != nil {
		return model.Cancellability{}, err
	}
	if !cancellable(so.order.Status) {
		return model.Cancellability{CancelAble: false}, nil
	}
	reasons := make([]model.CancelReason, len(CancelReasons))
	copy(reasons, CancelReasons)
	return model.Cancellability{CancelAble: true, Reasons: reasons}, nil
}

// Cancel cancels an order with one of CancelReasons.
func (s *Store) Cancel(c auth.Claims, id string, code int) (model.Order, error) {
	known := false
	for _, r := range CancelReasons {
		if r.Code == code {
			known = true
			break
		}
	}
	if !known {
		return model.Order{}, ErrUnknownCancelCode
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	so, err := s.lookupLocked(c, id)
	if err != nil {
		return model.Order{}, err
	}
	if !cancellable(so.order.Status) {
		return model.Order{}, ErrNotCancelable
	}
	so.order.Status = enum.OrderStatusCancelled
	return so.order, nil
}

// Advance moves up to one order along each driver-side step: the oldest
// READY_FOR_PICKUP order is collected and the oldest COLLECTED one delivered.
// It returns the number of orders moved.
func (s *Store) Advance() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	delivered := s.oldestLocked(enum.OrderStatusCollected)
	collected := s.oldestLocked(enum.OrderStatusReadyForPickup)
	n := 0
	if delivered != nil {
		delivered.order.Status = enum.OrderStatusDelivered
		n++
	}
	if collected != nil {
		collected.order.Status = enum.OrderStatusCollected
		n++
	}
	return n
}

func (s *Store) oldestLocked(status string) *storedOrder {
	var oldest *storedOrder
	for _, so := range s.orders {
		if so.order.Status != status {
			continue
		}
		if oldest == nil || so.order.CreatedAt.Before(oldest.order.CreatedAt) {
			oldest = so
		}
	}
	return oldest
}

// Branches lists the branches visible to the caller.
func (s *Store) Branches(c auth.Claims) []model.Branch {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []model.Branch{}
	for _, b := range s.branches {
		switch c.Role {
		case enum.UserRoleBusinessManager:
			if b.AreaKota != c.AreaKota {
				continue
			}
		case enum.UserRoleBranchAdmin:
			if b.BranchID != c.BranchID {
				continue
			}
		}
		out = append(out, b)
	}
	return out
}

// BranchesByArea lists the branches of one area.
func (s *Store) BranchesByArea(area string) []model.Branch {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []model.Branch{}
	for _, b := range s.branches {
		if b.AreaKota == area {
			out = append(out, b)
		}
	}
	return out
}

// BusinessManagers lists every BM account.
func (s *Store) BusinessManagers() []model.BusinessManager {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.BusinessManager{}, s.bms...)
}

// Products lists the master products.
func (s *Store) Products() []model.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Product{}, s.products...)
}

// Inventory returns the stock rows of a branch. Products never counted at
// the branch have no opname_stock.
func (s *Store) Inventory(c auth.Claims, branchID string) ([]model.InventoryRecord, error) {
	if c.Role == enum.UserRoleBranchAdmin && c.BranchID != branchID {
		return nil, ErrForbidden
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts, ok := s.stock[branchID]
	if !ok {
		return nil, ErrBranchNotFound
	}
	out := make([]model.InventoryRecord, 0, len(s.products))
	for _, p := range s.products {
		rec := model.InventoryRecord{Products: p}
		if n, ok := counts[p.ProductID]; ok {
			n := n
			rec.OpnameStock = &n
		}
		out = append(out, rec)
	}
	return out, nil
}

func (s *Store) branchLocked(id string) (model.Branch, bool) {
	for _, b := range s.branches {
		if b.BranchID == id {
			return b, true
		}
	}
	return model.Branch{}, false
}
