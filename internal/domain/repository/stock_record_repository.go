package repository

import (
	"context"

	"github.com/jhoicas/stock-release/internal/domain/entity"
)

// StockRecordRepository puerto del almacén documental particionado de registros de stock.
// Los métodos de lectura devuelven (nil, nil) cuando el documento no existe.
type StockRecordRepository interface {
	ListPartitions(ctx context.Context) ([]entity.StoragePartition, error)
	// FindFlatVariant busca el documento de variante plana cuyo id es variantID.
	FindFlatVariant(ctx context.Context, partitionID, variantID string) (*entity.StockRecord, error)
	// GetProduct lectura por clave del documento base del producto en la partición.
	GetProduct(ctx context.Context, partitionID, productID string) (*entity.StockRecord, error)
	// ListProducts recorre la subcolección de productos base (no variantes planas) de la partición.
	ListProducts(ctx context.Context, partitionID string) ([]*entity.StockRecord, error)
	// GetForUpdate relee el registro dentro de la transacción en curso (bloqueo o control de conflicto).
	GetForUpdate(ctx context.Context, ref entity.RecordRef) (*entity.StockRecord, error)
	// UpdateQuantity escribe solo cantidad, arreglo de variantes y updated_at.
	UpdateQuantity(ctx context.Context, rec *entity.StockRecord) error
}
