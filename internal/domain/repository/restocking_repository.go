package repository

import (
	"context"

	"github.com/jhoicas/stock-release/internal/domain/entity"
)

// RestockingRequestRepository puerto de solicitudes de reposición (append-only).
type RestockingRequestRepository interface {
	Create(ctx context.Context, req *entity.RestockingRequest) error
}
