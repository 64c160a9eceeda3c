package repository

import (
	"context"

	"github.com/jhoicas/stock-release/internal/domain/entity"
)

// StockMovementRepository define el puerto de persistencia para movimientos de stock (append-only).
type StockMovementRepository interface {
	Create(ctx context.Context, movement *entity.StockMovement) error
	ListByRelease(ctx context.Context, releaseID string) ([]*entity.StockMovement, error)
}
