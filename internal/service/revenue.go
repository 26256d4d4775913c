package service

import (
	"github.com/kf-pos/dashboard/internal/model"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var idrPrinter = message.NewPrinter(language.Indonesian)

// RevenueFigure is the revenue card value.
type RevenueFigure struct {
	Minor     int64  `json:"minor"`
	Amount    int64  `json:"amount"`
	Formatted string `json:"formatted"`
}

// Revenue sums the derived totals of the delivered orders and floors the
// result to whole rupiah.
func Revenue(delivered []model.Order) RevenueFigure {
	var minor int64
	for _, o := range delivered {
		minor += MinorTotal(o.Payload)
	}
	amount := MinorToDisplay(minor).Floor().IntPart()
	return RevenueFigure{
		Minor:     minor,
		Amount:    amount,
		Formatted: FormatIDR(amount),
	}
}

// FormatIDR renders whole rupiah with Indonesian digit grouping, e.g. "Rp 30.000".
func FormatIDR(amount int64) string {
	return idrPrinter.Sprintf("Rp %d", amount)
}
