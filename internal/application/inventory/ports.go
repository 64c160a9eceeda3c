package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/stock-release/internal/domain/repository"
)

// TxRunner ejecuta fn dentro de una transacción de un solo registro. El ctx recibido por fn
// está atado a la transacción y debe usarse en las llamadas al repositorio.
// Ante escrituras concurrentes conflictivas el runner reintenta fn completo, por lo que fn
// debe releer el estado en cada intento.
type TxRunner interface {
	RunRecord(ctx context.Context, fn func(ctx context.Context, records repository.StockRecordRepository) error) error
}

// Event evento de dominio publicado hacia otros sistemas.
type Event struct {
	Type       string         `json:"type"`
	OccurredAt time.Time      `json:"occurred_at"`
	Payload    map[string]any `json:"payload"`
}

// Tipos de evento publicados.
const (
	EventRestockRequested = "restock.requested"
	EventReleaseCompleted = "release.completed"
)

// EventPublisher publica eventos de dominio; un fallo nunca debe abortar el flujo que lo emite.
type EventPublisher interface {
	Publish(ctx context.Context, key string, event Event) error
}

// NopPublisher descarta los eventos (sin broker configurado).
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, Event) error { return nil }
