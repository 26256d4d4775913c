package service

import (
	"time"

	"github.com/kf-pos/dashboard/internal/enum"
	"github.com/kf-pos/dashboard/internal/model"
)

// DashboardView is a snapshot narrowed to one tab.
type DashboardView struct {
	View       string         `json:"view"`
	Orders     []model.Order  `json:"orders"`
	Cards      []OrderCard    `json:"cards"`
	Counts     map[string]int `json:"counts"`
	Stats      Stats          `json:"stats"`
	Filter     model.Filter   `json:"filter"`
	DataFilter model.Filter   `json:"data_filter"`
	Loading    bool           `json:"loading"`
	Error      string         `json:"error,omitempty"`
	Notice     string         `json:"notice,omitempty"`
	UpdatedAt  time.Time      `json:"updated_at"`
	Version    uint64         `json:"version"`
}

// ForView narrows s to a tab. Counts carry the badge number of every tab.
func (s Snapshot) ForView(view string) DashboardView {
	counts := make(map[string]int, len(enum.Buckets)+1)
	counts[enum.BucketAll] = len(s.Orders)
	for _, name := range enum.Buckets {
		counts[name] = len(s.Buckets[name])
	}
	orders := s.Buckets.View(view, s.Orders)
	if orders == nil {
		orders = []model.Order{}
	}
	return DashboardView{
		View:       view,
		Orders:     orders,
		Cards:      Cards(orders),
		Counts:     counts,
		Stats:      s.Stats,
		Filter:     s.Filter,
		DataFilter: s.DataFilter,
		Loading:    s.Loading,
		Error:      s.Error,
		Notice:     s.Notice,
		UpdatedAt:  s.UpdatedAt,
		Version:    s.Version,
	}
}
