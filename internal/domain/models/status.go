// internal/domain/models/status.go
package models

// Complaint status values. Pending is the only initial state.
const (
	StatusPending    = "pending"
	StatusInProgress = "in-progress"
	StatusResolved   = "resolved"
	StatusRejected   = "rejected"
)

// Statuses lists every canonical complaint status in lifecycle order.
var Statuses = []string{
	StatusPending,
	StatusInProgress,
	StatusResolved,
	StatusRejected,
}

// IsValidStatus reports whether s is a canonical complaint status.
func IsValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusInProgress, StatusResolved, StatusRejected:
		return true
	}
	return false
}
