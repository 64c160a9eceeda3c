package dto

import "time"

// Límites de página del listado de notificaciones.
const (
	DefaultNotificationLimit = 20
	MaxNotificationLimit     = 100
)

// NotificationQuery query de GET /api/notifications. Role vacío = rol del token.
type NotificationQuery struct {
	Role   string `query:"role"`
	Limit  int    `query:"limit"`
	Offset int    `query:"offset"`
}

// Normalize acota Limit a [1, MaxNotificationLimit] y Offset a >= 0.
func (q *NotificationQuery) Normalize() {
	switch {
	case q.Limit <= 0:
		q.Limit = DefaultNotificationLimit
	case q.Limit > MaxNotificationLimit:
		q.Limit = MaxNotificationLimit
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
}

// NotificationDTO notificación para la UI.
type NotificationDTO struct {
	ID          string         `json:"id"`
	Type        string         `json:"type"`
	Priority    string         `json:"priority"`
	Title       string         `json:"title"`
	Message     string         `json:"message"`
	Details     map[string]any `json:"details,omitempty"`
	TargetRoles []string       `json:"target_roles"`
	Status      string         `json:"status"`
	CreatedAt   time.Time      `json:"created_at"`
	ReadAt      *time.Time     `json:"read_at,omitempty"`
}

// NotificationPage página efectivamente aplicada; Returned < Limit indica la última.
type NotificationPage struct {
	Limit    int `json:"limit"`
	Offset   int `json:"offset"`
	Returned int `json:"returned"`
}

// NotificationListResponse página de notificaciones activas del rol.
type NotificationListResponse struct {
	Role  string            `json:"role"`
	Items []NotificationDTO `json:"items"`
	Page  NotificationPage  `json:"page"`
}
