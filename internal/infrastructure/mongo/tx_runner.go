package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"

	"github.com/jhoicas/stock-release/internal/application/inventory"
	"github.com/jhoicas/stock-release/internal/domain"
	"github.com/jhoicas/stock-release/internal/domain/repository"
)

var _ inventory.TxRunner = (*TxRunner)(nil)

// TxRunner transacciones multi-documento (requiere replica set). WithTransaction ya reintenta
// los errores transitorios; aquí se agregan los conflictos de versión.
type TxRunner struct {
	client     *mongo.Client
	records    *StockRecordRepo
	maxRetries int
}

// NewTxRunner construye el runner.
func NewTxRunner(client *mongo.Client, db *mongo.Database, maxRetries int) *TxRunner {
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &TxRunner{client: client, records: NewStockRecordRepository(db), maxRetries: maxRetries}
}

// RunRecord ejecuta fn en una sesión transaccional; el ctx entregado a fn es la sesión.
func (r *TxRunner) RunRecord(ctx context.Context, fn func(ctx context.Context, records repository.StockRecordRepository) error) error {
	txOpts := options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.Majority())

	var err error
	for attempt := 1; attempt <= r.maxRetries; attempt++ {
		err = r.runOnce(ctx, txOpts, fn)
		if err == nil || !errors.Is(err, errVersionConflict) {
			return err
		}
	}
	return fmt.Errorf("transacción sin éxito tras %d intentos: %w: %w", r.maxRetries, domain.ErrTransactionConflict, err)
}

func (r *TxRunner) runOnce(ctx context.Context, txOpts *options.TransactionOptions, fn func(ctx context.Context, records repository.StockRecordRepository) error) error {
	session, err := r.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc, r.records)
	}, txOpts)
	return err
}
