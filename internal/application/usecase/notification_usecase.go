package usecase

import (
	"context"
	"strings"

	"github.com/jhoicas/stock-release/internal/application/dto"
	"github.com/jhoicas/stock-release/internal/domain"
	"github.com/jhoicas/stock-release/internal/domain/entity"
	"github.com/jhoicas/stock-release/internal/domain/repository"
)

// NotificationUseCase lectura de notificaciones por rol y marcado como leídas.
type NotificationUseCase struct {
	repo repository.NotificationRepository
}

// NewNotificationUseCase construye el caso de uso.
func NewNotificationUseCase(repo repository.NotificationRepository) *NotificationUseCase {
	return &NotificationUseCase{repo: repo}
}

// ListActive notificaciones activas dirigidas a q.Role, más recientes primero.
func (uc *NotificationUseCase) ListActive(ctx context.Context, q dto.NotificationQuery) (*dto.NotificationListResponse, error) {
	q.Role = strings.TrimSpace(q.Role)
	if q.Role == "" {
		return nil, domain.ErrInvalidInput
	}
	q.Normalize()
	list, err := uc.repo.ListActiveByRole(ctx, q.Role, q.Limit, q.Offset)
	if err != nil {
		return nil, err
	}
	out := &dto.NotificationListResponse{
		Role:  q.Role,
		Items: make([]dto.NotificationDTO, 0, len(list)),
		Page:  dto.NotificationPage{Limit: q.Limit, Offset: q.Offset, Returned: len(list)},
	}
	for _, n := range list {
		out.Items = append(out.Items, toNotificationDTO(n))
	}
	return out, nil
}

// MarkRead marca una notificación como leída.
func (uc *NotificationUseCase) MarkRead(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return domain.ErrInvalidInput
	}
	return uc.repo.MarkRead(ctx, id)
}

func toNotificationDTO(n *entity.Notification) dto.NotificationDTO {
	return dto.NotificationDTO{
		ID:          n.ID,
		Type:        n.Type,
		Priority:    n.Priority,
		Title:       n.Title,
		Message:     n.Message,
		Details:     n.Details,
		TargetRoles: n.TargetRoles,
		Status:      n.Status,
		CreatedAt:   n.CreatedAt,
		ReadAt:      n.ReadAt,
	}
}
