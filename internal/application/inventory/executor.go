package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/jhoicas/stock-release/internal/domain"
	"github.com/jhoicas/stock-release/internal/domain/entity"
	domaininv "github.com/jhoicas/stock-release/internal/domain/inventory"
	"github.com/jhoicas/stock-release/internal/domain/repository"
	"github.com/jhoicas/stock-release/pkg/logger"
	"github.com/jhoicas/stock-release/pkg/metrics"
)

// RecordContext contexto completo del registro tras un descuento confirmado.
type RecordContext struct {
	Record    *entity.StockRecord
	Handle    entity.StockHandle
	ReleaseID string
	Actor     entity.Actor
}

// RestockEvaluator decide y emite la reposición. Nunca devuelve error: los fallos se registran.
type RestockEvaluator interface {
	Evaluate(ctx context.Context, rc RecordContext, newQuantity int) *entity.RestockingRequest
}

// DeductionOptions parámetros de un descuento.
type DeductionOptions struct {
	AllowNegative bool
	ReleaseID     string
	Actor         entity.Actor
}

// DeductionResult resultado de un descuento confirmado.
type DeductionResult struct {
	Handle           entity.StockHandle
	Amount           int
	PreviousQuantity int
	NewQuantity      int
	Restock          *entity.RestockingRequest
}

// DeductionExecutor aplica cada descuento como una transacción atómica sobre un único registro.
type DeductionExecutor struct {
	txRunner  TxRunner
	evaluator RestockEvaluator
	log       *logger.Logger
	now       func() time.Time
}

// NewDeductionExecutor construye el ejecutor.
func NewDeductionExecutor(txRunner TxRunner, evaluator RestockEvaluator, log *logger.Logger) *DeductionExecutor {
	return &DeductionExecutor{
		txRunner:  txRunner,
		evaluator: evaluator,
		log:       log.Component("deduction_executor"),
		now:       time.Now,
	}
}

// Apply relee el registro dentro de la transacción, recalcula la cantidad y escribe solo el
// campo de cantidad (en variantes embebidas se reescribe el arreglo cambiando esa entrada).
// Tras el commit entrega el contexto al evaluador de reposición antes de volver.
func (e *DeductionExecutor) Apply(ctx context.Context, h entity.StockHandle, amount int, opts DeductionOptions) (*DeductionResult, error) {
	ctx, span := tracer.Start(ctx, "stock.deduct")
	defer span.End()
	span.SetAttributes(
		attribute.String("stock.ref", h.Ref.String()),
		attribute.String("stock.shape", string(h.Shape)),
		attribute.Int("stock.amount", amount),
	)

	var (
		committed *entity.StockRecord
		previous  int
		next      int
		index     int
	)
	err := e.txRunner.RunRecord(ctx, func(ctx context.Context, records repository.StockRecordRepository) error {
		rec, err := records.GetForUpdate(ctx, h.Ref)
		if err != nil {
			return err
		}
		if rec == nil {
			return &domain.StockError{Kind: domain.ErrNotFound, ProductID: h.Ref.RecordID, Checked: []string{h.Location}}
		}

		current, idx, err := currentQuantity(rec, h)
		if err != nil {
			return err
		}
		allowNegative := opts.AllowNegative || rec.AllowNegative
		newQty, err := domaininv.ComputeDeduction(current, amount, allowNegative)
		if err != nil {
			if errors.Is(err, domain.ErrInsufficientStock) {
				return &domain.StockError{
					Kind:      domain.ErrInsufficientStock,
					Cause:     domain.ErrTransactionConflict,
					ProductID: rec.ProductID,
					VariantID: h.VariantID,
					Name:      rec.Name,
					Requested: amount,
					Available: current,
					Shortfall: domain.Shortfall(amount, current),
					Locations: []domain.LocationQuantity{{Location: h.Location, Quantity: current}},
				}
			}
			return err
		}

		updated := rec.Clone()
		if idx >= 0 {
			updated.Variants[idx].Quantity = newQty
		} else {
			updated.Quantity = newQty
		}
		updated.UpdatedAt = e.now()
		if err := records.UpdateQuantity(ctx, updated); err != nil {
			return err
		}
		committed, previous, next, index = updated, current, newQty, idx
		return nil
	})
	if err != nil {
		result := "error"
		var se *domain.StockError
		if errors.As(err, &se) {
			result = "rejected"
		}
		metrics.DeductionsTotal.WithLabelValues(result, string(h.Shape)).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "descuento no aplicado")
		return nil, err
	}
	metrics.DeductionsTotal.WithLabelValues("committed", string(h.Shape)).Inc()

	h.VariantIndex = index
	h.Quantity = next
	h.Record = committed

	evt := e.log.Info()
	if next < 0 {
		metrics.NegativeStockTotal.Inc()
		evt = e.log.Warn().Bool("negative_allowance", true)
	}
	evt.
		Str("release_id", opts.ReleaseID).
		Str("partition", h.Ref.PartitionID).
		Str("record", h.Ref.RecordID).
		Str("product_id", committed.ProductID).
		Str("variant_id", h.VariantID).
		Int("previous", previous).
		Int("new", next).
		Msg("descuento de stock confirmado")

	res := &DeductionResult{Handle: h, Amount: amount, PreviousQuantity: previous, NewQuantity: next}
	res.Restock = e.evaluate(ctx, RecordContext{Record: committed, Handle: h, ReleaseID: opts.ReleaseID, Actor: opts.Actor}, next)
	return res, nil
}

// evaluate aísla el descuento ya confirmado de cualquier pánico del evaluador.
func (e *DeductionExecutor) evaluate(ctx context.Context, rc RecordContext, next int) (req *entity.RestockingRequest) {
	if e.evaluator == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			metrics.EvaluatorFailuresTotal.Inc()
			e.log.Error().Str("record", rc.Handle.Ref.String()).Interface("panic", r).Msg("evaluador de reposición falló")
			req = nil
		}
	}()
	return e.evaluator.Evaluate(ctx, rc, next)
}

// currentQuantity cantidad vigente del registro releído. Para variantes embebidas se vuelve a
// ubicar la entrada por id (el arreglo pudo reordenarse desde la resolución).
func currentQuantity(rec *entity.StockRecord, h entity.StockHandle) (int, int, error) {
	if h.Shape != entity.ShapeEmbeddedVariantBase {
		return rec.Quantity, -1, nil
	}
	if h.VariantIndex >= 0 && h.VariantIndex < len(rec.Variants) && rec.Variants[h.VariantIndex].ID == h.VariantID {
		return rec.Variants[h.VariantIndex].Quantity, h.VariantIndex, nil
	}
	idx, _ := domaininv.MatchVariant(rec.Variants, h.VariantID)
	if idx < 0 {
		return 0, -1, &domain.StockError{
			Kind:      domain.ErrVariantMismatch,
			ProductID: rec.ProductID,
			VariantID: h.VariantID,
			Name:      rec.Name,
			Checked:   []string{h.Location},
		}
	}
	return rec.Variants[idx].Quantity, idx, nil
}

// String útil en logs de diagnóstico.
func (r *DeductionResult) String() string {
	return fmt.Sprintf("%s: %d -> %d (-%d)", r.Handle.Location, r.PreviousQuantity, r.NewQuantity, r.Amount)
}
