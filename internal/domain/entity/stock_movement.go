package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento de stock.
const (
	MovementTypeOutbound = "outbound" // salida por venta/liberación
	MovementTypeInbound  = "inbound"  // recepción (la escriben otros flujos)
)

// StockMovement movimiento de inventario por renglón liberado.
type StockMovement struct {
	ID         string
	Type       string
	Reason     string
	ProductID  string
	VariantID  string
	Name       string
	Quantity   int
	UnitPrice  decimal.Decimal
	TotalValue decimal.Decimal
	ReleaseID  string
	Locations  []ReleasedLocation
	CreatedBy  string
	CreatedAt  time.Time
}
