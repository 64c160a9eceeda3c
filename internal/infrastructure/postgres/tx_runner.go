package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/stock-release/internal/application/inventory"
	"github.com/jhoicas/stock-release/internal/domain"
	"github.com/jhoicas/stock-release/internal/domain/repository"
)

var _ inventory.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool       *pgxpool.Pool
	maxRetries int
	backoff    time.Duration
}

// NewTxRunner construye el runner con el pool. maxRetries acota los reintentos ante
// serialización o deadlock.
func NewTxRunner(pool *pgxpool.Pool, maxRetries int) *TxRunner {
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &TxRunner{pool: pool, maxRetries: maxRetries, backoff: 20 * time.Millisecond}
}

// RunRecord inicia una transacción, ejecuta fn con el repositorio de registros atado a la tx
// y hace Commit o Rollback. Si Postgres aborta por conflicto, fn se repite desde cero.
func (r *TxRunner) RunRecord(ctx context.Context, fn func(ctx context.Context, records repository.StockRecordRepository) error) error {
	var lastErr error
	for attempt := 1; attempt <= r.maxRetries; attempt++ {
		lastErr = r.runOnce(ctx, fn)
		if lastErr == nil || !isRetryable(lastErr) {
			return lastErr
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * r.backoff):
		}
	}
	return fmt.Errorf("transacción sin éxito tras %d intentos: %w: %w", r.maxRetries, domain.ErrTransactionConflict, lastErr)
}

func (r *TxRunner) runOnce(ctx context.Context, fn func(ctx context.Context, records repository.StockRecordRepository) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(ctx, NewStockRecordRepository(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
