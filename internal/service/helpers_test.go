package service

import (
	"context"
	"sync"
	"time"

	"github.com/kf-pos/dashboard/internal/model"
)

// --- Test helpers ---

func i64(v int64) *int64   { return &v }
func str(s string) *string { return &s }

func order(id, status string, total int64) model.Order {
	o := model.Order{
		OrderID:   id,
		Status:    status,
		CreatedAt: time.Date(2024, 5, 1, 3, 4, 5, 0, time.UTC),
	}
	if total != 0 {
		o.Payload.Price.Total = i64(total)
	}
	return o
}

// --- Mock implementations ---

// mockLister implements OrderLister. Every call is recorded and, when seen is
// non-nil, announced on it.
type mockLister struct {
	mu     sync.Mutex
	calls  []model.Filter
	seen   chan model.Filter
	listFn func(ctx context.Context, f model.Filter) ([]model.Order, error)
}

func (m *mockLister) ListOrders(ctx context.Context, f model.Filter) ([]model.Order, error) {
	m.mu.Lock()
	m.calls = append(m.calls, f)
	m.mu.Unlock()
	if m.seen != nil {
		m.seen <- f
	}
	if m.listFn == nil {
		return []model.Order{}, nil
	}
	return m.listFn(ctx, f)
}

func (m *mockLister) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// manualTicker hands the poller a channel the test fires by hand.
type manualTicker struct {
	ch      chan time.Time
	mu      sync.Mutex
	started int
	stopped int
}

func newManualTicker() *manualTicker {
	return &manualTicker{ch: make(chan time.Time)}
}

func (m *manualTicker) fn(time.Duration) (<-chan time.Time, func()) {
	m.mu.Lock()
	m.started++
	m.mu.Unlock()
	return m.ch, func() {
		m.mu.Lock()
		m.stopped++
		m.mu.Unlock()
	}
}

func (m *manualTicker) counts() (started, stopped int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.started, m.stopped
}

// recordingObserver implements Observer.
type recordingObserver struct {
	mu      sync.Mutex
	fetches []bool
	fails   int
	ticks   int
	actions map[string]int
}

func (r *recordingObserver) FetchCompleted(loud bool, _ time.Duration, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fetches = append(r.fetches, loud)
	if err != nil {
		r.fails++
	}
}

func (r *recordingObserver) PollTicked() {
	r.mu.Lock()
	r.ticks++
	r.mu.Unlock()
}

func (r *recordingObserver) ActionDispatched(action string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.actions == nil {
		r.actions = map[string]int{}
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	r.actions[action+":"+outcome]++
}
