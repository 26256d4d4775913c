package service

import (
	"encoding/csv"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/kf-pos/dashboard/internal/enum"
	"github.com/kf-pos/dashboard/internal/model"
)

var wib = time.FixedZone("WIB", 7*60*60)

func TestWriteCSV(t *testing.T) {
	withShort := order("grab-000111222", enum.OrderStatusDelivered, 3_000_000)
	withShort.Payload.ShortOrderNumber = "GF-123"
	withShort.Payload.Items = []model.Item{
		{Quantity: 2, Name: str("Paracetamol 500mg")},
		{Quantity: 1},
	}
	noShort := order("grab-999", enum.OrderStatusIncoming, 1_234_550)

	var sb strings.Builder
	if err := WriteCSV(&sb, []model.Order{withShort, noShort}, wib); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rows, err := csv.NewReader(strings.NewReader(sb.String())).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want header + 2", len(rows))
	}
	if strings.Join(rows[0], ",") != "Order ID,Status,Total,Date,Items" {
		t.Errorf("header = %v", rows[0])
	}

	want := []string{"GF-123", "DELIVERED", "30000", "01/05/2024 10.04.05", "2x Paracetamol 500mg; 1x Item"}
	for i, cell := range want {
		if rows[1][i] != cell {
			t.Errorf("row 1 col %d = %q, want %q", i, rows[1][i], cell)
		}
	}
	if rows[2][0] != "grab-999" {
		t.Errorf("fallback id = %q, want grab-999", rows[2][0])
	}
	if rows[2][2] != "12345.5" {
		t.Errorf("total = %q, want 12345.5", rows[2][2])
	}
	if rows[2][4] != "" {
		t.Errorf("items = %q, want empty", rows[2][4])
	}
}

func TestWriteCSV_EmptyView(t *testing.T) {
	var sb strings.Builder
	err := WriteCSV(&sb, nil, wib)
	if !errors.Is(err, ErrNothingToExport) {
		t.Fatalf("expected ErrNothingToExport, got %v", err)
	}
	if sb.Len() != 0 {
		t.Errorf("wrote %d bytes for an empty view", sb.Len())
	}
}

func TestExportFileName(t *testing.T) {
	now := time.Date(2026, 10, 19, 23, 30, 0, 0, time.UTC)
	if got := ExportFileName(enum.BucketAll, now); got != "Report_Grab_ALL_2026-10-19.csv" {
		t.Errorf("ExportFileName = %q", got)
	}
	if got := ExportFileName(enum.OrderStatusReadyForPickup, now); got != "Report_Grab_READY_FOR_PICKUP_2026-10-19.csv" {
		t.Errorf("ExportFileName = %q", got)
	}
}
