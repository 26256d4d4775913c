package service

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/kf-pos/dashboard/internal/apperr"
	"github.com/kf-pos/dashboard/internal/model"
)

// ErrNothingToExport is returned for an empty view.
var ErrNothingToExport = apperr.InvalidErr("no data to download")

var csvHeader = []string{"Order ID", "Status", "Total", "Date", "Items"}

// ExportFileName names the report for a view, e.g. Report_Grab_INCOMING_2026-10-19.csv.
func ExportFileName(view string, now time.Time) string {
	return fmt.Sprintf("Report_Grab_%s_%s.csv", view, now.UTC().Format("2006-01-02"))
}

// WriteCSV writes one row per order. Dates are rendered in loc.
func WriteCSV(w io.Writer, orders []model.Order, loc *time.Location) error {
	if len(orders) == 0 {
		return ErrNothingToExport
	}
	if loc == nil {
		loc = time.UTC
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, o := range orders {
		id := o.Payload.ShortOrderNumber
		if id == "" {
			id = o.OrderID
		}
		row := []string{
			id,
			o.Status,
			DisplayTotal(o.Payload).String(),
			o.CreatedAt.In(loc).Format("02/01/2006 15.04.05"),
			ItemSummary(o.Payload.Items),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write order %s: %w", o.OrderID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ItemSummary joins items as "{qty}x {name}" separated by "; ".
func ItemSummary(items []model.Item) string {
	parts := make([]string, 0, len(items))
	for _, it := range items {
		name := "Item"
		if it.Name != nil && *it.Name != "" {
			name = *it.Name
		}
		parts = append(parts, strconv.FormatInt(it.Quantity, 10)+"x "+name)
	}
	return strings.Join(parts, "; ")
}
