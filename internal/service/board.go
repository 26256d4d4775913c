package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kf-pos/dashboard/internal/apperr"
	"github.com/kf-pos/dashboard/internal/model"
)

// OrderLister fetches the raw order list.
// Satisfied by *backend.Client.
type OrderLister interface {
	ListOrders(ctx context.Context, f model.Filter) ([]model.Order, error)
}

// Snapshot is the view state rendered by the dashboard.
type Snapshot struct {
	// Filter is the active filter; DataFilter is the one the displayed
	// orders were fetched with. They differ while a fetch is in flight, or
	// when a slow poll resolved after a newer filter fetch.
	Filter     model.Filter  `json:"filter"`
	DataFilter model.Filter  `json:"data_filter"`
	Orders     []model.Order `json:"orders"`
	Buckets    Buckets       `json:"buckets"`
	Stats      Stats         `json:"stats"`
	Loading    bool          `json:"loading"`
	Error      string        `json:"error,omitempty"`
	Notice     string        `json:"notice,omitempty"`
	Mounted    bool          `json:"mounted"`
	UpdatedAt  time.Time     `json:"updated_at"`
	Version    uint64        `json:"version"`
}

// Board owns the order view: it fetches, classifies and keeps the list fresh.
//
// A loud fetch (mount, filter change) toggles Loading; a silent one (poll
// tick, post-action refresh) does not. Fetches are not serialized and cannot
// be cancelled by a filter change, so the last response to resolve wins.
type Board struct {
	lister    OrderLister
	interval  time.Duration
	newTicker TickerFunc
	observer  Observer
	logger    *slog.Logger
	now       func() time.Time
	base      context.Context

	filter atomic.Pointer[model.Filter]

	mu         sync.RWMutex
	orders     []model.Order
	buckets    Buckets
	dataFilter model.Filter
	loading    int
	errMsg     string
	notice     string
	updatedAt  time.Time
	version    uint64
	generation uint64
	poller     *Poller
	subs       []func(Snapshot)

	inflight sync.WaitGroup
}

// BoardOption configures a Board.
type BoardOption func(*Board)

func WithPollInterval(d time.Duration) BoardOption {
	return func(b *Board) { b.interval = d }
}

// WithTicker replaces the poll ticker, for tests.
func WithTicker(fn TickerFunc) BoardOption {
	return func(b *Board) { b.newTicker = fn }
}

func WithObserver(o Observer) BoardOption {
	return func(b *Board) { b.observer = o }
}

func WithBoardLogger(l *slog.Logger) BoardOption {
	return func(b *Board) { b.logger = l }
}

func WithBoardClock(now func() time.Time) BoardOption {
	return func(b *Board) { b.now = now }
}

// WithBaseContext bounds the poller and background refreshes.
func WithBaseContext(ctx context.Context) BoardOption {
	return func(b *Board) { b.base = ctx }
}

func NewBoard(lister OrderLister, opts ...BoardOption) *Board {
	b := &Board{
		lister:   lister,
		interval: DefaultPollInterval,
		observer: nopObserver{},
		logger:   slog.Default(),
		now:      time.Now,
		base:     context.Background(),
		orders:   []model.Order{},
		buckets:  Classify(nil),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.filter.Store(&model.Filter{})
	return b
}

// OnChange registers fn to receive every new snapshot.
func (b *Board) OnChange(fn func(Snapshot)) {
	b.mu.Lock()
	b.subs = append(b.subs, fn)
	b.mu.Unlock()
}

// Filter returns the active filter.
func (b *Board) Filter() model.Filter {
	return *b.filter.Load()
}

// Mounted reports whether the poller is running.
func (b *Board) Mounted() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.poller != nil
}

// Mount starts the poll loop and performs the initial loud fetch. Mounting
// an already mounted board is a no-op.
func (b *Board) Mount(ctx context.Context) error {
	b.mu.Lock()
	if b.poller != nil {
		b.mu.Unlock()
		return nil
	}
	p := NewPoller(b.interval, b.newTicker, b.pollTick)
	p.Start(b.base)
	b.poller = p
	b.mu.Unlock()

	b.logger.Info("order board mounted", "interval", b.interval)
	return b.Refresh(ctx, true)
}

// Unmount stops the poll loop and discards the view state. Results of
// fetches still in flight are dropped.
func (b *Board) Unmount() {
	b.mu.Lock()
	p := b.poller
	b.poller = nil
	b.generation++
	b.orders = []model.Order{}
	b.buckets = Classify(nil)
	b.dataFilter = model.Filter{}
	b.loading = 0
	b.errMsg = ""
	b.notice = ""
	b.updatedAt = time.Time{}
	b.version++
	b.mu.Unlock()
	b.filter.Store(&model.Filter{})

	if p != nil {
		p.Stop()
		b.logger.Info("order board unmounted")
	}
	b.notify()
}

// SetFilter stores f as the active filter and, when mounted, re-fetches
// loudly. The poll loop picks f up on its next tick without being restarted.
func (b *Board) SetFilter(ctx context.Context, f model.Filter) error {
	b.filter.Store(&f)
	if !b.Mounted() {
		b.touch()
		return nil
	}
	return b.Refresh(ctx, true)
}

// Refresh fetches with the active filter and reclassifies. A failure is
// recorded as the page error; displayed data is kept.
func (b *Board) Refresh(ctx context.Context, loud bool) error {
	filter := b.Filter()

	b.mu.Lock()
	gen := b.generation
	if loud {
		b.loading++
		b.errMsg = ""
		b.version++
	}
	b.mu.Unlock()
	if loud {
		b.notify()
	}

	start := b.now()
	orders, err := b.lister.ListOrders(ctx, filter)
	b.observer.FetchCompleted(loud, b.now().Sub(start), err)

	b.mu.Lock()
	if loud && b.loading > 0 {
		b.loading--
	}
	if gen != b.generation {
		b.mu.Unlock()
		return err
	}
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			b.errMsg = apperr.PublicMessage(err)
		}
	} else {
		b.orders = orders
		b.buckets = Classify(orders)
		b.dataFilter = filter
		b.errMsg = ""
		b.updatedAt = b.now()
	}
	b.version++
	b.mu.Unlock()
	b.notify()

	if err != nil {
		b.logger.Warn("fetch orders failed", "loud", loud, "filter", filter, "error", err)
	}
	return err
}

// RefreshAsync performs a silent refresh in the background.
func (b *Board) RefreshAsync() {
	b.inflight.Add(1)
	go func() {
		defer b.inflight.Done()
		_ = b.Refresh(b.base, false)
	}()
}

// Wait blocks until background refreshes started by RefreshAsync return.
func (b *Board) Wait() {
	b.inflight.Wait()
}

func (b *Board) pollTick(ctx context.Context) {
	b.observer.PollTicked()
	if err := b.Refresh(ctx, false); err != nil {
		b.logger.Debug("poll tick failed, next tick continues", "error", err)
	}
}

// Order finds an order in the displayed list.
func (b *Board) Order(id string) (model.Order, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, o := range b.orders {
		if o.OrderID == id {
			return o, true
		}
	}
	return model.Order{}, false
}

// SetNotice shows a dismissible error notice.
func (b *Board) SetNotice(msg string) {
	b.mu.Lock()
	b.notice = msg
	b.version++
	b.mu.Unlock()
	b.notify()
}

// DismissNotice hides the notice.
func (b *Board) DismissNotice() {
	b.SetNotice("")
}

// Snapshot returns the current view state. Stats are derived from the
// buckets on every call.
func (b *Board) Snapshot() Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.snapshotLocked()
}

func (b *Board) snapshotLocked() Snapshot {
	return Snapshot{
		Filter:     b.Filter(),
		DataFilter: b.dataFilter,
		Orders:     b.orders,
		Buckets:    b.buckets,
		Stats:      ComputeStats(b.orders, b.buckets),
		Loading:    b.loading > 0,
		Error:      b.errMsg,
		Notice:     b.notice,
		Mounted:    b.poller != nil,
		UpdatedAt:  b.updatedAt,
		Version:    b.version,
	}
}

func (b *Board) touch() {
	b.mu.Lock()
	b.version++
	b.mu.Unlock()
	b.notify()
}

func (b *Board) notify() {
	b.mu.RLock()
	subs := append([]func(Snapshot){}, b.subs...)
	snap := b.snapshotLocked()
	b.mu.RUnlock()
	for _, fn := range subs {
		fn(snap)
	}
}
