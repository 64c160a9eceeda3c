package entity

import "time"

// Tipos y estados de notificación.
const (
	NotificationTypeRestockRequest  = "restock_request"
	NotificationTypeReleaseComplete = "release_completed"

	NotificationStatusActive = "active"
	NotificationStatusRead   = "read"
)

// Roles destinatarios habituales.
const (
	RoleAdmin            = "admin"
	RoleInventoryManager = "inventory_manager"
	RoleSeller           = "seller"
)

// Notification evento dirigido a roles. La UI externa lo lee y lo marca como leído.
type Notification struct {
	ID          string
	Type        string
	Priority    string
	Title       string
	Message     string
	Details     map[string]any
	TargetRoles []string
	Status      string
	CreatedBy   string
	CreatedAt   time.Time
	ReadAt      *time.Time
}

// TargetsRole indica si la notificación está dirigida al rol dado.
func (n *Notification) TargetsRole(role string) bool {
	for _, r := range n.TargetRoles {
		if r == role {
			return true
		}
	}
	return false
}
