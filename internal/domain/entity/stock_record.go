package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ShapeKind forma detectada de un registro de stock al momento de leerlo.
type ShapeKind string

const (
	ShapeFlatVariant         ShapeKind = "flat_variant"          // documento propio de una variante (forma actual)
	ShapeEmbeddedVariantBase ShapeKind = "embedded_variant_base" // producto base con arreglo de variantes (forma legada)
	ShapePlainBase           ShapeKind = "plain_base"            // producto sin variantes, cantidad propia
)

// Variant entrada de variante embebida en el documento del producto base.
// Los umbrales nil se heredan del producto padre.
type Variant struct {
	ID                string `json:"id" bson:"id"`
	Name              string `json:"name,omitempty" bson:"name,omitempty"`
	Quantity          int    `json:"quantity" bson:"quantity"`
	RestockLevel      *int   `json:"restockLevel,omitempty" bson:"restockLevel,omitempty"`
	MaximumStockLevel *int   `json:"maximumStockLevel,omitempty" bson:"maximumStockLevel,omitempty"`
}

// StockRecord unidad de inventario en una ubicación (documento dentro de una partición).
// RecordID es la clave del documento en la partición: el productId para productos base
// y el variantId para variantes planas.
type StockRecord struct {
	PartitionID       string
	RecordID          string
	ProductID         string
	VariantID         string
	IsVariant         bool
	HasVariants       bool
	Name              string
	Category          string
	Shelf             string
	Row               string
	Column            *int
	Quantity          int
	RestockLevel      *int
	MaximumStockLevel *int
	UnitPrice         decimal.Decimal
	// AllowNegative marca productos de clase cotización: pueden quedar en negativo con advertencia.
	AllowNegative bool
	Variants      []Variant
	UpdatedAt     time.Time
	Version       int64
}

// RecordShape unión etiquetada de la forma del registro. Se resuelve una vez por candidato
// y viaja como dato explícito (no se vuelve a inspeccionar campo por campo).
type RecordShape struct {
	Kind     ShapeKind
	Variants []Variant // solo para ShapeEmbeddedVariantBase
}

// Shape detecta la forma del registro. Exactamente una aplica.
func (r *StockRecord) Shape() RecordShape {
	switch {
	case r.IsVariant:
		return RecordShape{Kind: ShapeFlatVariant}
	case r.HasVariants || len(r.Variants) > 0:
		return RecordShape{Kind: ShapeEmbeddedVariantBase, Variants: r.Variants}
	default:
		return RecordShape{Kind: ShapePlainBase}
	}
}

// Ref clave de escritura del registro.
func (r *StockRecord) Ref() RecordRef {
	return RecordRef{PartitionID: r.PartitionID, RecordID: r.RecordID}
}

// Location ruta legible partición / estante / fila / columna.
func (r *StockRecord) Location() string {
	parts := []string{r.PartitionID}
	if r.Shelf != "" {
		parts = append(parts, r.Shelf)
	}
	if r.Row != "" {
		parts = append(parts, r.Row)
	}
	if r.Column != nil {
		parts = append(parts, fmt.Sprintf("%d", *r.Column))
	}
	return strings.Join(parts, " / ")
}

// Clone copia profunda (incluye el arreglo de variantes).
func (r *StockRecord) Clone() *StockRecord {
	c := *r
	if r.Variants != nil {
		c.Variants = make([]Variant, len(r.Variants))
		copy(c.Variants, r.Variants)
	}
	return &c
}

// RecordRef referencia escribible a un documento de stock.
type RecordRef struct {
	PartitionID string `json:"partition_id"`
	RecordID    string `json:"record_id"`
}

func (r RecordRef) String() string {
	return r.PartitionID + "/" + r.RecordID
}

// StockHandle resultado del Location Resolver: referencia escribible, cantidad observada y
// metadatos de forma. VariantIndex solo aplica a ShapeEmbeddedVariantBase.
type StockHandle struct {
	Ref          RecordRef    `json:"ref"`
	Shape        ShapeKind    `json:"shape"`
	VariantID    string       `json:"variant_id,omitempty"`
	VariantIndex int          `json:"variant_index"`
	Quantity     int          `json:"quantity"`
	Location     string       `json:"location"`
	Record       *StockRecord `json:"-"`
}

// StoragePartition contenedor físico de primer nivel (p. ej. una unidad de bodega).
// Se aprovisiona externamente; este servicio solo la lee.
type StoragePartition struct {
	ID       string
	Name     string
	Category string
}
