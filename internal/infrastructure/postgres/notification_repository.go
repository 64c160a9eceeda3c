package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jhoicas/stock-release/internal/domain"
	"github.com/jhoicas/stock-release/internal/domain/entity"
	"github.com/jhoicas/stock-release/internal/domain/repository"
)

var (
	_ repository.NotificationRepository      = (*NotificationRepo)(nil)
	_ repository.RestockingRequestRepository = (*RestockingRequestRepo)(nil)
)

// NotificationRepo notificaciones dirigidas a roles (target_roles TEXT[], details JSONB).
type NotificationRepo struct {
	q Querier
}

// NewNotificationRepository construye el adaptador.
func NewNotificationRepository(q Querier) *NotificationRepo {
	return &NotificationRepo{q: q}
}

// Create persiste una notificación.
func (r *NotificationRepo) Create(ctx context.Context, n *entity.Notification) error {
	details, err := json.Marshal(n.Details)
	if err != nil {
		return fmt.Errorf("serializar detalles: %w", err)
	}
	query := `
		INSERT INTO notifications (id, type, priority, title, message, details, target_roles, status, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6::jsonb, $7, $8, $9, $10)`
	_, err = r.q.Exec(ctx, query,
		n.ID, n.Type, n.Priority, n.Title, n.Message, string(details), n.TargetRoles, n.Status, nullString(n.CreatedBy), n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}

// ListActiveByRole notificaciones activas para un rol, más recientes primero.
func (r *NotificationRepo) ListActiveByRole(ctx context.Context, role string, limit, offset int) ([]*entity.Notification, error) {
	query := `
		SELECT id, type, priority, title, message, details, target_roles, status, created_by, created_at, read_at
		FROM notifications
		WHERE status = 'active' AND $1 = ANY(target_roles)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, role, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()
	var out []*entity.Notification
	for rows.Next() {
		var (
			n         entity.Notification
			details   []byte
			createdBy *string
		)
		if err := rows.Scan(
			&n.ID, &n.Type, &n.Priority, &n.Title, &n.Message, &details, &n.TargetRoles, &n.Status, &createdBy, &n.CreatedAt, &n.ReadAt,
		); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		n.CreatedBy = derefString(createdBy)
		if len(details) > 0 {
			if err := json.Unmarshal(details, &n.Details); err != nil {
				return nil, fmt.Errorf("leer detalles: %w", err)
			}
		}
		out = append(out, &n)
	}
	return out, rows.Err()
}

// MarkRead marca la notificación como leída.
func (r *NotificationRepo) MarkRead(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `UPDATE notifications SET status = 'read', read_at = $2 WHERE id = $1`, id, time.Now())
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// RestockingRequestRepo solicitudes de reposición (append-only).
type RestockingRequestRepo struct {
	q Querier
}

// NewRestockingRequestRepository construye el adaptador.
func NewRestockingRequestRepository(q Querier) *RestockingRequestRepo {
	return &RestockingRequestRepo{q: q}
}

// Create persiste una solicitud de reposición.
func (r *RestockingRequestRepo) Create(ctx context.Context, req *entity.RestockingRequest) error {
	query := `
		INSERT INTO restocking_requests (
			id, product_id, variant_id, product_name, current_quantity, restock_level, maximum_stock_level,
			suggested_order_quantity, priority, partition_id, record_id, location, release_id,
			requested_by, requested_by_name, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	_, err := r.q.Exec(ctx, query,
		req.ID, req.ProductID, nullString(req.VariantID), req.ProductName, req.CurrentQuantity, req.RestockLevel,
		req.MaximumStockLevel, req.SuggestedOrderQuantity, req.Priority, req.PartitionID, req.RecordID,
		req.Location, nullString(req.ReleaseID), nullString(req.RequestedBy), nullString(req.RequestedByName), req.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create restocking request: %w", err)
	}
	return nil
}
