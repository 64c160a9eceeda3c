package mongo

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-release/internal/domain/entity"
)

type partitionDoc struct {
	ID       string `bson:"_id"`
	Name     string `bson:"name"`
	Category string `bson:"category,omitempty"`
}

// stockRecordDoc _id es "partition/record" para que la lectura por clave sea directa.
type stockRecordDoc struct {
	ID                string           `bson:"_id"`
	PartitionID       string           `bson:"partition_id"`
	RecordID          string           `bson:"record_id"`
	ProductID         string           `bson:"product_id"`
	VariantID         string           `bson:"variant_id,omitempty"`
	IsVariant         bool             `bson:"is_variant"`
	HasVariants       bool             `bson:"has_variants"`
	Name              string           `bson:"name"`
	Category          string           `bson:"category,omitempty"`
	Shelf             string           `bson:"shelf,omitempty"`
	Row               string           `bson:"row,omitempty"`
	Column            *int             `bson:"column,omitempty"`
	Quantity          int              `bson:"quantity"`
	RestockLevel      *int             `bson:"restock_level,omitempty"`
	MaximumStockLevel *int             `bson:"maximum_stock_level,omitempty"`
	UnitPrice         decimal.Decimal  `bson:"unit_price"`
	AllowNegative     bool             `bson:"allow_negative"`
	Variants          []entity.Variant `bson:"variants,omitempty"`
	Version           int64            `bson:"version"`
	UpdatedAt         time.Time        `bson:"updated_at"`
}

func recordKey(ref entity.RecordRef) string { return ref.String() }

func toStockRecordDoc(r *entity.StockRecord) stockRecordDoc {
	return stockRecordDoc{
		ID:                recordKey(r.Ref()),
		PartitionID:       r.PartitionID,
		RecordID:          r.RecordID,
		ProductID:         r.ProductID,
		VariantID:         r.VariantID,
		IsVariant:         r.IsVariant,
		HasVariants:       r.HasVariants,
		Name:              r.Name,
		Category:          r.Category,
		Shelf:             r.Shelf,
		Row:               r.Row,
		Column:            r.Column,
		Quantity:          r.Quantity,
		RestockLevel:      r.RestockLevel,
		MaximumStockLevel: r.MaximumStockLevel,
		UnitPrice:         r.UnitPrice,
		AllowNegative:     r.AllowNegative,
		Variants:          r.Variants,
		Version:           r.Version,
		UpdatedAt:         r.UpdatedAt,
	}
}

func (d stockRecordDoc) toEntity() *entity.StockRecord {
	return &entity.StockRecord{
		PartitionID:       d.PartitionID,
		RecordID:          d.RecordID,
		ProductID:         d.ProductID,
		VariantID:         d.VariantID,
		IsVariant:         d.IsVariant,
		HasVariants:       d.HasVariants,
		Name:              d.Name,
		Category:          d.Category,
		Shelf:             d.Shelf,
		Row:               d.Row,
		Column:            d.Column,
		Quantity:          d.Quantity,
		RestockLevel:      d.RestockLevel,
		MaximumStockLevel: d.MaximumStockLevel,
		UnitPrice:         d.UnitPrice,
		AllowNegative:     d.AllowNegative,
		Variants:          d.Variants,
		Version:           d.Version,
		UpdatedAt:         d.UpdatedAt,
	}
}

type releaseDoc struct {
	ID            string                   `bson:"_id"`
	Reference     string                   `bson:"reference,omitempty"`
	Status        string                   `bson:"status"`
	Items         []entity.ReleaseLineItem `bson:"items"`
	ReleasedItems []entity.ReleasedItem    `bson:"released_items,omitempty"`
	ReleasedBy    string                   `bson:"released_by,omitempty"`
	ReleasedAt    *time.Time               `bson:"released_at,omitempty"`
	CreatedAt     time.Time                `bson:"created_at"`
	UpdatedAt     time.Time                `bson:"updated_at"`
}

func (d releaseDoc) toEntity() *entity.Release {
	return &entity.Release{
		ID:            d.ID,
		Reference:     d.Reference,
		Status:        d.Status,
		Items:         d.Items,
		ReleasedItems: d.ReleasedItems,
		ReleasedBy:    d.ReleasedBy,
		ReleasedAt:    d.ReleasedAt,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

type releaseLogDoc struct {
	ID         string                `bson:"_id"`
	ReleaseID  string                `bson:"release_id"`
	Items      []entity.ReleasedItem `bson:"items"`
	TotalUnits int                   `bson:"total_units"`
	TotalValue decimal.Decimal       `bson:"total_value"`
	ActorUID   string                `bson:"actor_uid"`
	ActorName  string                `bson:"actor_name,omitempty"`
	CreatedAt  time.Time             `bson:"created_at"`
}

type movementDoc struct {
	ID         string                    `bson:"_id"`
	Type       string                    `bson:"type"`
	Reason     string                    `bson:"reason"`
	ProductID  string                    `bson:"product_id"`
	VariantID  string                    `bson:"variant_id,omitempty"`
	Name       string                    `bson:"name"`
	Quantity   int                       `bson:"quantity"`
	UnitPrice  decimal.Decimal           `bson:"unit_price"`
	TotalValue decimal.Decimal           `bson:"total_value"`
	ReleaseID  string                    `bson:"release_id,omitempty"`
	Locations  []entity.ReleasedLocation `bson:"locations"`
	CreatedBy  string                    `bson:"created_by,omitempty"`
	CreatedAt  time.Time                 `bson:"created_at"`
}

func (d movementDoc) toEntity() *entity.StockMovement {
	return &entity.StockMovement{
		ID:         d.ID,
		Type:       d.Type,
		Reason:     d.Reason,
		ProductID:  d.ProductID,
		VariantID:  d.VariantID,
		Name:       d.Name,
		Quantity:   d.Quantity,
		UnitPrice:  d.UnitPrice,
		TotalValue: d.TotalValue,
		ReleaseID:  d.ReleaseID,
		Locations:  d.Locations,
		CreatedBy:  d.CreatedBy,
		CreatedAt:  d.CreatedAt,
	}
}

type restockDoc struct {
	ID                     string    `bson:"_id"`
	ProductID              string    `bson:"product_id"`
	VariantID              string    `bson:"variant_id,omitempty"`
	ProductName            string    `bson:"product_name"`
	CurrentQuantity        int       `bson:"current_quantity"`
	RestockLevel           int       `bson:"restock_level"`
	MaximumStockLevel      int       `bson:"maximum_stock_level"`
	SuggestedOrderQuantity int       `bson:"suggested_order_quantity"`
	Priority               string    `bson:"priority"`
	PartitionID            string    `bson:"partition_id"`
	RecordID               string    `bson:"record_id"`
	Location               string    `bson:"location"`
	ReleaseID              string    `bson:"release_id,omitempty"`
	RequestedBy            string    `bson:"requested_by,omitempty"`
	RequestedByName        string    `bson:"requested_by_name,omitempty"`
	CreatedAt              time.Time `bson:"created_at"`
}

type notificationDoc struct {
	ID          string         `bson:"_id"`
	Type        string         `bson:"type"`
	Priority    string         `bson:"priority"`
	Title       string         `bson:"title"`
	Message     string         `bson:"message"`
	Details     map[string]any `bson:"details,omitempty"`
	TargetRoles []string       `bson:"target_roles"`
	Status      string         `bson:"status"`
	CreatedBy   string         `bson:"created_by,omitempty"`
	CreatedAt   time.Time      `bson:"created_at"`
	ReadAt      *time.Time     `bson:"read_at,omitempty"`
}

func (d notificationDoc) toEntity() *entity.Notification {
	return &entity.Notification{
		ID:          d.ID,
		Type:        d.Type,
		Priority:    d.Priority,
		Title:       d.Title,
		Message:     d.Message,
		Details:     d.Details,
		TargetRoles: d.TargetRoles,
		Status:      d.Status,
		CreatedBy:   d.CreatedBy,
		CreatedAt:   d.CreatedAt,
		ReadAt:      d.ReadAt,
	}
}
