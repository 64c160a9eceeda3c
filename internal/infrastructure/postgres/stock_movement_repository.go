package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jhoicas/stock-release/internal/domain/entity"
	"github.com/jhoicas/stock-release/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo movimientos de stock sobre PostgreSQL (usable con pool o tx).
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

// Create persiste un movimiento de stock.
func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	locations, err := toJSON(m.Locations)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO stock_movements (id, type, reason, product_id, variant_id, name, quantity, unit_price, total_value, release_id, locations, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11::jsonb, $12, $13)`
	_, err = r.q.Exec(ctx, query,
		m.ID, m.Type, m.Reason, m.ProductID, nullString(m.VariantID), m.Name, m.Quantity,
		m.UnitPrice, m.TotalValue, nullString(m.ReleaseID), locations, nullString(m.CreatedBy), m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create stock movement: %w", err)
	}
	return nil
}

// ListByRelease movimientos generados por una salida, en orden de creación.
func (r *StockMovementRepo) ListByRelease(ctx context.Context, releaseID string) ([]*entity.StockMovement, error) {
	query := `
		SELECT id, type, reason, product_id, variant_id, name, quantity, unit_price, total_value, release_id, locations, created_by, created_at
		FROM stock_movements WHERE release_id = $1 ORDER BY created_at, id`
	rows, err := r.q.Query(ctx, query, releaseID)
	if err != nil {
		return nil, fmt.Errorf("list stock movements: %w", err)
	}
	defer rows.Close()
	var out []*entity.StockMovement
	for rows.Next() {
		var (
			m                           entity.StockMovement
			variantID, relID, createdBy *string
			locations                   []byte
		)
		if err := rows.Scan(
			&m.ID, &m.Type, &m.Reason, &m.ProductID, &variantID, &m.Name, &m.Quantity,
			&m.UnitPrice, &m.TotalValue, &relID, &locations, &createdBy, &m.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan stock movement: %w", err)
		}
		m.VariantID = derefString(variantID)
		m.ReleaseID = derefString(relID)
		m.CreatedBy = derefString(createdBy)
		if m.Locations, err = fromJSON[entity.ReleasedLocation](locations); err != nil {
			return nil, err
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}
