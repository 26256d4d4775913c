package mockbackend

import (
	"context"
	"log/slog"
	"time"
)

// Simulator keeps the demo data moving: each step places a new INCOMING
// order at the next branch and lets drivers collect and deliver orders.
type Simulator struct {
	store  *Store
	every  time.Duration
	logger *slog.Logger
}

func NewSimulator(store *Store, every time.Duration, logger *slog.Logger) *Simulator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Simulator{store: store, every: every, logger: logger}
}

// Step performs one simulation round.
func (s *Simulator) Step() error {
	s.store.mu.Lock()
	n := s.store.injectSeq
	s.store.injectSeq++
	var branchID string
	if len(s.store.branches) > 0 {
		branchID = s.store.branches[n%len(s.store.branches)].BranchID
	}
	s.store.mu.Unlock()

	moved := s.store.Advance()
	if branchID == "" {
		return nil
	}
	o, err := s.store.NewOrder(branchID, demoItems(n))
	if err != nil {
		return err
	}
	s.logger.Info("simulated order", "order_id", o.OrderID, "branch_id", branchID, "advanced", moved)
	return nil
}

// Run steps every interval until ctx is done. A non-positive interval
// disables the simulator.
func (s *Simulator) Run(ctx context.Context) error {
	if s.every <= 0 {
		<-ctx.Done()
		return nil
	}
	t := time.NewTicker(s.every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			if err := s.Step(); err != nil {
				s.logger.Warn("simulation step failed", "error", err)
			}
		}
	}
}
