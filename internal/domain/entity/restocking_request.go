package entity

import "time"

// Prioridades de reposición.
const (
	RestockPriorityUrgent = "urgent"
	RestockPriorityNormal = "normal"
)

// RestockingRequest solicitud de reposición emitida tras un descuento que cruzó el umbral.
// Solo se crea; este servicio nunca la modifica ni la borra.
type RestockingRequest struct {
	ID                     string
	ProductID              string
	VariantID              string
	ProductName            string
	CurrentQuantity        int
	RestockLevel           int
	MaximumStockLevel      int
	SuggestedOrderQuantity int
	Priority               string
	PartitionID            string
	RecordID               string
	Location               string
	ReleaseID              string
	RequestedBy            string
	RequestedByName        string
	CreatedAt              time.Time
}
