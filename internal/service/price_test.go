package service

import (
	"testing"

	"github.com/kf-pos/dashboard/internal/model"
)

func TestMinorTotal(t *testing.T) {
	tests := []struct {
		name string
		p    model.RawPayload
		want int64
	}{
		{
			name: "total wins",
			p: model.RawPayload{Price: model.PriceBreakdown{
				Total: i64(3_000_000), EaterPayment: i64(2_500_000), Subtotal: i64(2_000_000),
			}},
			want: 3_000_000,
		},
		{
			name: "zero total falls through to eater payment",
			p: model.RawPayload{Price: model.PriceBreakdown{
				Total: i64(0), EaterPayment: i64(2_500_000),
			}},
			want: 2_500_000,
		},
		{
			name: "subtotal when the others are missing",
			p:    model.RawPayload{Price: model.PriceBreakdown{Subtotal: i64(2_000_000)}},
			want: 2_000_000,
		},
		{
			name: "item sum with explicit prices",
			p: model.RawPayload{Items: []model.Item{
				{Quantity: 2, Price: i64(500_000)},
				{Quantity: 1, Price: i64(250_000)},
			}},
			want: 1_250_000,
		},
		{
			name: "unpriced item uses placeholder",
			p:    model.RawPayload{Items: []model.Item{{Quantity: 2}}},
			want: 2 * PlaceholderItemPrice,
		},
		{
			name: "zero item price uses placeholder",
			p:    model.RawPayload{Items: []model.Item{{Quantity: 1, Price: i64(0)}}},
			want: PlaceholderItemPrice,
		},
		{
			name: "empty payload",
			p:    model.RawPayload{},
			want: 0,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := MinorTotal(tc.p); got != tc.want {
				t.Errorf("MinorTotal = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestMinorTotal_NonNegativeForNonNegativeInputs(t *testing.T) {
	payloads := []model.RawPayload{
		{},
		{Items: []model.Item{{Quantity: 0}}},
		{Items: []model.Item{{Quantity: 3, Price: i64(1)}, {Quantity: 1}}},
		{Price: model.PriceBreakdown{Total: i64(0), EaterPayment: i64(0), Subtotal: i64(0)}},
	}
	for i, p := range payloads {
		if got := MinorTotal(p); got < 0 {
			t.Errorf("payload %d: MinorTotal = %d, want >= 0", i, got)
		}
	}
}

func TestDisplayTotal(t *testing.T) {
	p := model.RawPayload{Price: model.PriceBreakdown{Total: i64(1_234_550)}}
	if got := DisplayTotal(p).String(); got != "12345.5" {
		t.Errorf("DisplayTotal = %s, want 12345.5", got)
	}

	p = model.RawPayload{Items: []model.Item{{Quantity: 2}}}
	if got := DisplayTotal(p).String(); got != "30000" {
		t.Errorf("placeholder DisplayTotal = %s, want 30000", got)
	}
}
