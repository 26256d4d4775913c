package enum

// ── Group A: Order state machine (owned by the backend) ──

const (
	OrderStatusIncoming       = "INCOMING"
	OrderStatusPreparing      = "PREPARING"
	OrderStatusReadyForPickup = "READY_FOR_PICKUP"
	OrderStatusCollected      = "COLLECTED"
	OrderStatusDelivered      = "DELIVERED"
	OrderStatusCancelled      = "CANCELLED"
	OrderStatusRejected       = "REJECTED"
)

// ── Group B: Dashboard views ──

// BucketAll is the unfiltered view. It is resolved from the raw list and
// never stored as a bucket.
const BucketAll = "ALL"

// Buckets lists the stored buckets in tab order.
var Buckets = []string{
	OrderStatusIncoming,
	OrderStatusPreparing,
	OrderStatusReadyForPickup,
	OrderStatusCollected,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// ── Group C: Staff roles ──

const (
	UserRoleSuperAdmin      = "superadmin"
	UserRoleBusinessManager = "bisnis_manager"
	UserRoleBranchAdmin     = "admin_cabang"
)

// ── Group D: Order actions ──

const (
	ActionAccept = "accept"
	ActionReject = "reject"
	ActionReady  = "ready"
	ActionCancel = "cancel"
)

// IsValidStatus reports whether s is one of the backend order statuses.
func IsValidStatus(s string) bool {
	switch s {
	case OrderStatusIncoming, OrderStatusPreparing, OrderStatusReadyForPickup,
		OrderStatusCollected, OrderStatusDelivered, OrderStatusCancelled, OrderStatusRejected:
		return true
	}
	return false
}

// IsValidView reports whether v names a stored bucket or the ALL view.
func IsValidView(v string) bool {
	if v == BucketAll {
		return true
	}
	for _, b := range Buckets {
		if b == v {
			return true
		}
	}
	return false
}

// IsValidRole reports whether r is a known staff role.
func IsValidRole(r string) bool {
	switch r {
	case UserRoleSuperAdmin, UserRoleBusinessManager, UserRoleBranchAdmin:
		return true
	}
	return false
}
