package repository

import (
	"context"

	"github.com/jhoicas/stock-release/internal/domain/entity"
)

// ReleaseRepository puerto de las transacciones de venta/salida.
type ReleaseRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Release, error)
	// Claim pasa la salida de pending a processing de forma atómica y la devuelve.
	// domain.ErrNotFound si no existe, domain.ErrConflict si no está pendiente.
	Claim(ctx context.Context, id string) (*entity.Release, error)
	// Unclaim devuelve una salida en processing a pending.
	Unclaim(ctx context.Context, id string) error
	// MarkReleased cierra una salida en processing con estado y snapshot de lo liberado.
	MarkReleased(ctx context.Context, release *entity.Release) error
}

// ReleaseLogRepository puerto del registro resumen de salidas.
type ReleaseLogRepository interface {
	Create(ctx context.Context, log *entity.ReleaseLog) error
}
