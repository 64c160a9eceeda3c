package repository

import (
	"context"

	"github.com/jhoicas/stock-release/internal/domain/entity"
)

// NotificationRepository puerto de notificaciones dirigidas a roles.
type NotificationRepository interface {
	Create(ctx context.Context, n *entity.Notification) error
	ListActiveByRole(ctx context.Context, role string, limit, offset int) ([]*entity.Notification, error)
	MarkRead(ctx context.Context, id string) error
}
