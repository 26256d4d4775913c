package service

import (
	"github.com/kf-pos/dashboard/internal/model"
	"github.com/shopspring/decimal"
)

// PlaceholderItemPrice is the minor-unit price assumed for an item that
// carries no price of its own (Rp 15.000).
const PlaceholderItemPrice int64 = 1_500_000

// MinorUnitsPerDisplayUnit converts platform minor units to rupiah.
const MinorUnitsPerDisplayUnit = 100

var hundred = decimal.NewFromInt(MinorUnitsPerDisplayUnit)

// MinorTotal derives an order total in minor units from a payload whose price
// fields may be missing. The first non-zero of price.total, price.eaterPayment
// and price.subtotal wins; otherwise the items are summed, pricing unpriced
// items at PlaceholderItemPrice. A genuine zero total is indistinguishable
// from a missing one.
func MinorTotal(p model.RawPayload) int64 {
	for _, v := range []*int64{p.Price.Total, p.Price.EaterPayment, p.Price.Subtotal} {
		if v != nil && *v != 0 {
			return *v
		}
	}

	var sum int64
	for _, item := range p.Items {
		price := PlaceholderItemPrice
		if item.Price != nil && *item.Price != 0 {
			price = *item.Price
		}
		sum += price * item.Quantity
	}
	return sum
}

// DisplayTotal is MinorTotal in rupiah.
func DisplayTotal(p model.RawPayload) decimal.Decimal {
	return MinorToDisplay(MinorTotal(p))
}

// MinorToDisplay divides a minor-unit amount by 100.
func MinorToDisplay(minor int64) decimal.Decimal {
	return decimal.NewFromInt(minor).Div(hundred)
}
