package mockbackend

import (
	"fmt"
	"time"

	"github.com/kf-pos/dashboard/internal/enum"
	"github.com/kf-pos/dashboard/internal/model"
)

// Demo accounts created by Seed. All share the password passed to Seed.
const (
	DemoSuperAdmin   = "superadmin"
	DemoBMJakarta    = "bm.jakarta"
	DemoBMBandung    = "bm.bandung"
	DemoAdminMenteng = "admin.menteng"
	DemoAdminDago    = "admin.dago"
)

var demoBranches = []model.Branch{
	{BranchID: "KF-JKT-001", BranchName: "Kimia Farma Menteng", Kota: "Jakarta Pusat", AreaKota: "Jakarta"},
	{BranchID: "KF-JKT-002", BranchName: "Kimia Farma Kemang", Kota: "Jakarta Selatan", AreaKota: "Jakarta"},
	{BranchID: "KF-BDG-001", BranchName: "Kimia Farma Dago", Kota: "Bandung", AreaKota: "Bandung"},
	{BranchID: "KF-BDG-002", BranchName: "Kimia Farma Buah Batu", Kota: "Bandung", AreaKota: "Bandung"},
}

// Product prices are in rupiah; order item prices are in minor units.
var demoProducts = []model.Product{
	{ProductID: "PRD-0001", ProductName: "Paracetamol 500mg Strip", Price: 12000, GrabCategoryID: "analgesic"},
	{ProductID: "PRD-0002", ProductName: "Vitamin C 1000mg Tube", Price: 45000, GrabCategoryID: "vitamin"},
	{ProductID: "PRD-0003", ProductName: "Masker Medis Box 50", Price: 35000, GrabCategoryID: "medical-supply"},
	{ProductID: "PRD-0004", ProductName: "Minyak Kayu Putih 60ml", Price: 23000, GrabCategoryID: "herbal"},
	{ProductID: "PRD-0005", ProductName: "Hand Sanitizer 100ml", Price: 18000},
	{ProductID: "PRD-0006", ProductName: "Obat Batuk Sirup 100ml", Price: 29500, GrabCategoryID: "cough"},
}

// Seed fills s with branches, products, stock, staff accounts and a spread
// of orders in every status. It is meant for a fresh store.
func Seed(s *Store, password string) error {
	for _, b := range demoBranches {
		s.AddBranch(b)
	}
	for _, p := range demoProducts {
		s.AddProduct(p)
	}
	for i, b := range demoBranches {
		// The last product is left uncounted everywhere.
		for j, p := range demoProducts[:len(demoProducts)-1] {
			count := int64((i*7 + j*13) % 40)
			if err := s.SetStock(b.BranchID, p.ProductID, count); err != nil {
				return fmt.Errorf("seed stock: %w", err)
			}
		}
	}

	users := []struct{ name, role, branch, area string }{
		{DemoSuperAdmin, enum.UserRoleSuperAdmin, "", ""},
		{DemoBMJakarta, enum.UserRoleBusinessManager, "", "Jakarta"},
		{DemoBMBandung, enum.UserRoleBusinessManager, "", "Bandung"},
		{DemoAdminMenteng, enum.UserRoleBranchAdmin, "KF-JKT-001", ""},
		{DemoAdminDago, enum.UserRoleBranchAdmin, "KF-BDG-001", ""},
	}
	for _, u := range users {
		if err := s.AddUser(u.name, password, u.role, u.branch, u.area); err != nil {
			return fmt.Errorf("seed user %s: %w", u.name, err)
		}
	}

	statuses := []string{
		enum.OrderStatusIncoming,
		enum.OrderStatusIncoming,
		enum.OrderStatusPreparing,
		enum.OrderStatusReadyForPickup,
		enum.OrderStatusCollected,
		enum.OrderStatusDelivered,
		enum.OrderStatusCancelled,
	}
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, b := range demoBranches {
		for j, status := range statuses {
			at := now.Add(-time.Duration(i*len(statuses)+j+1) * 7 * time.Minute)
			if _, err := s.newOrderLocked(b.BranchID, demoItems(i+j), status, at); err != nil {
				return fmt.Errorf("seed order: %w", err)
			}
		}
	}
	return nil
}

// demoItems builds one or two lines from the product list. Every third
// order carries an unpriced line so the placeholder price shows up.
func demoItems(n int) []model.Item {
	first := demoProducts[n%len(demoProducts)]
	items := []model.Item{itemFor(first, int64(n%3+1))}
	if n%2 == 1 {
		second := demoProducts[(n+2)%len(demoProducts)]
		it := itemFor(second, 1)
		if n%3 == 0 {
			it.Price = nil
		}
		note := "tolong dibungkus rapi"
		it.Notes = &note
		items = append(items, it)
	}
	return items
}

func itemFor(p model.Product, qty int64) model.Item {
	name := p.ProductName
	price := p.Price * 100
	return model.Item{Quantity: qty, Name: &name, Price: &price}
}
