package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una transacción de salida (release).
const (
	ReleaseStatusPending           = "pending"
	ReleaseStatusProcessing        = "processing" // tomada por un llamador; nadie más puede liberarla
	ReleaseStatusReleased          = "released"
	ReleaseStatusPartiallyReleased = "partially_released"
)

// Actor identidad que dispara la salida (auditoría).
type Actor struct {
	UID         string
	DisplayName string
}

// ReleaseLineItem renglón de una venta/salida. Es entrada de solo lectura para el núcleo.
type ReleaseLineItem struct {
	ProductID       string          `json:"productId" bson:"productId"`
	VariantID       string          `json:"variantId,omitempty" bson:"variantId,omitempty"`
	Name            string          `json:"name" bson:"name"`
	Category        string          `json:"category,omitempty" bson:"category,omitempty"`
	Quantity        int             `json:"quantity" bson:"quantity"`
	UnitPrice       decimal.Decimal `json:"unitPrice" bson:"unitPrice"`
	StorageLocation string          `json:"storageLocation,omitempty" bson:"storageLocation,omitempty"`
	ShelfName       string          `json:"shelfName,omitempty" bson:"shelfName,omitempty"`
	RowName         string          `json:"rowName,omitempty" bson:"rowName,omitempty"`
	ColumnIndex     *int            `json:"columnIndex,omitempty" bson:"columnIndex,omitempty"`
	FullLocation    string          `json:"fullLocation,omitempty" bson:"fullLocation,omitempty"`
	// Quotation producto temporal de cotización: se permite inventario negativo.
	Quotation bool `json:"quotation,omitempty" bson:"quotation,omitempty"`
}

// LocationHint devuelve fullLocation o, si está vacío, la ruta compuesta con los campos sueltos.
func (i ReleaseLineItem) LocationHint() string {
	if i.FullLocation != "" {
		return i.FullLocation
	}
	var parts []string
	for _, p := range []string{i.StorageLocation, i.ShelfName, i.RowName} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if i.ColumnIndex != nil {
		parts = append(parts, fmt.Sprintf("%d", *i.ColumnIndex))
	}
	return strings.Join(parts, " - ")
}

// ReleasedLocation porción de un renglón descontada en una ubicación.
type ReleasedLocation struct {
	PartitionID      string `json:"partitionId" bson:"partitionId"`
	RecordID         string `json:"recordId" bson:"recordId"`
	Location         string `json:"location" bson:"location"`
	Amount           int    `json:"amount" bson:"amount"`
	PreviousQuantity int    `json:"previousQuantity" bson:"previousQuantity"`
	NewQuantity      int    `json:"newQuantity" bson:"newQuantity"`
}

// ReleasedItem snapshot desnormalizado de lo que efectivamente salió por renglón.
type ReleasedItem struct {
	ProductID  string             `json:"productId" bson:"productId"`
	VariantID  string             `json:"variantId,omitempty" bson:"variantId,omitempty"`
	Name       string             `json:"name" bson:"name"`
	Quantity   int                `json:"quantity" bson:"quantity"`
	UnitPrice  decimal.Decimal    `json:"unitPrice" bson:"unitPrice"`
	TotalValue decimal.Decimal    `json:"totalValue" bson:"totalValue"`
	Locations  []ReleasedLocation `json:"locations" bson:"locations"`
}

// Release transacción de venta/salida con sus renglones.
type Release struct {
	ID            string
	Reference     string
	Status        string
	Items         []ReleaseLineItem
	ReleasedItems []ReleasedItem
	ReleasedBy    string
	ReleasedAt    *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ReleaseLog registro resumen de una salida completada.
type ReleaseLog struct {
	ID         string
	ReleaseID  string
	Items      []ReleasedItem
	TotalUnits int
	TotalValue decimal.Decimal
	ActorUID   string
	ActorName  string
	CreatedAt  time.Time
}
