package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-release/internal/domain"
	"github.com/jhoicas/stock-release/internal/domain/entity"
	"github.com/jhoicas/stock-release/internal/domain/repository"
)

var _ repository.StockRecordRepository = (*StockRecordRepo)(nil)

// StockRecordRepo almacén de registros de stock sobre PostgreSQL. Cada fila es un documento
// de una partición; las variantes embebidas viven en una columna JSONB.
type StockRecordRepo struct {
	q Querier
}

// NewStockRecordRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockRecordRepository(q Querier) *StockRecordRepo {
	return &StockRecordRepo{q: q}
}

const stockRecordColumns = `
	partition_id, record_id, product_id, variant_id, is_variant, has_variants, name, category,
	shelf, row_name, column_index, quantity, restock_level, maximum_stock_level, unit_price,
	allow_negative, variants, version, updated_at`

// ListPartitions particiones aprovisionadas, en orden estable.
func (r *StockRecordRepo) ListPartitions(ctx context.Context) ([]entity.StoragePartition, error) {
	rows, err := r.q.Query(ctx, `SELECT id, name, category FROM storage_partitions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list partitions: %w", err)
	}
	defer rows.Close()
	var out []entity.StoragePartition
	for rows.Next() {
		var p entity.StoragePartition
		var category *string
		if err := rows.Scan(&p.ID, &p.Name, &category); err != nil {
			return nil, fmt.Errorf("scan partition: %w", err)
		}
		p.Category = derefString(category)
		out = append(out, p)
	}
	return out, rows.Err()
}

// FindFlatVariant documento de variante plana cuya clave es variantID.
func (r *StockRecordRepo) FindFlatVariant(ctx context.Context, partitionID, variantID string) (*entity.StockRecord, error) {
	query := `SELECT` + stockRecordColumns + `
		FROM stock_records WHERE partition_id = $1 AND record_id = $2 AND is_variant`
	return r.getOne(ctx, "find flat variant", query, partitionID, variantID)
}

// GetProduct documento base del producto (no variante plana).
func (r *StockRecordRepo) GetProduct(ctx context.Context, partitionID, productID string) (*entity.StockRecord, error) {
	query := `SELECT` + stockRecordColumns + `
		FROM stock_records WHERE partition_id = $1 AND record_id = $2 AND NOT is_variant`
	return r.getOne(ctx, "get product", query, partitionID, productID)
}

// ListProducts productos base de la partición.
func (r *StockRecordRepo) ListProducts(ctx context.Context, partitionID string) ([]*entity.StockRecord, error) {
	query := `SELECT` + stockRecordColumns + `
		FROM stock_records WHERE partition_id = $1 AND NOT is_variant ORDER BY record_id`
	rows, err := r.q.Query(ctx, query, partitionID)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	var out []*entity.StockRecord
	for rows.Next() {
		rec, err := scanStockRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// GetForUpdate obtiene el registro y bloquea la fila hasta el fin de la transacción (SELECT FOR UPDATE).
func (r *StockRecordRepo) GetForUpdate(ctx context.Context, ref entity.RecordRef) (*entity.StockRecord, error) {
	query := `SELECT` + stockRecordColumns + `
		FROM stock_records WHERE partition_id = $1 AND record_id = $2
		FOR UPDATE`
	return r.getOne(ctx, "get stock record for update", query, ref.PartitionID, ref.RecordID)
}

// UpdateQuantity escribe cantidad, variantes y updated_at; incrementa la versión.
func (r *StockRecordRepo) UpdateQuantity(ctx context.Context, rec *entity.StockRecord) error {
	variants, err := toJSON(rec.Variants)
	if err != nil {
		return err
	}
	query := `
		UPDATE stock_records
		SET quantity = $3, variants = $4::jsonb, updated_at = $5, version = version + 1
		WHERE partition_id = $1 AND record_id = $2`
	tag, err := r.q.Exec(ctx, query, rec.PartitionID, rec.RecordID, rec.Quantity, variants, rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update stock quantity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	rec.Version++
	return nil
}

// Upsert inserta o reemplaza un documento completo. Lo usan la carga inicial y los tests de integración.
func (r *StockRecordRepo) Upsert(ctx context.Context, rec *entity.StockRecord) error {
	variants, err := toJSON(rec.Variants)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO stock_records (` + stockRecordColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17::jsonb, $18, $19)
		ON CONFLICT (partition_id, record_id) DO UPDATE SET
			product_id = EXCLUDED.product_id, variant_id = EXCLUDED.variant_id,
			is_variant = EXCLUDED.is_variant, has_variants = EXCLUDED.has_variants,
			name = EXCLUDED.name, category = EXCLUDED.category, shelf = EXCLUDED.shelf,
			row_name = EXCLUDED.row_name, column_index = EXCLUDED.column_index,
			quantity = EXCLUDED.quantity, restock_level = EXCLUDED.restock_level,
			maximum_stock_level = EXCLUDED.maximum_stock_level, unit_price = EXCLUDED.unit_price,
			allow_negative = EXCLUDED.allow_negative, variants = EXCLUDED.variants,
			version = stock_records.version + 1, updated_at = EXCLUDED.updated_at`
	_, err = r.q.Exec(ctx, query,
		rec.PartitionID, rec.RecordID, rec.ProductID, nullString(rec.VariantID), rec.IsVariant, rec.HasVariants,
		rec.Name, nullString(rec.Category), nullString(rec.Shelf), nullString(rec.Row), rec.Column,
		rec.Quantity, rec.RestockLevel, rec.MaximumStockLevel, rec.UnitPrice,
		rec.AllowNegative, variants, rec.Version, rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert stock record: %w", err)
	}
	return nil
}

func (r *StockRecordRepo) getOne(ctx context.Context, op, query string, args ...any) (*entity.StockRecord, error) {
	rec, err := scanStockRecord(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return rec, nil
}

func scanStockRecord(row pgx.Row) (*entity.StockRecord, error) {
	var (
		rec                                 entity.StockRecord
		variantID, category, shelf, rowName *string
		variants                            []byte
	)
	err := row.Scan(
		&rec.PartitionID, &rec.RecordID, &rec.ProductID, &variantID, &rec.IsVariant, &rec.HasVariants,
		&rec.Name, &category, &shelf, &rowName, &rec.Column, &rec.Quantity,
		&rec.RestockLevel, &rec.MaximumStockLevel, &rec.UnitPrice, &rec.AllowNegative,
		&variants, &rec.Version, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	rec.VariantID = derefString(variantID)
	rec.Category = derefString(category)
	rec.Shelf = derefString(shelf)
	rec.Row = derefString(rowName)
	if rec.Variants, err = fromJSON[entity.Variant](variants); err != nil {
		return nil, err
	}
	return &rec, nil
}
