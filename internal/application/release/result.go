package release

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-release/internal/application/inventory"
	"github.com/jhoicas/stock-release/internal/domain/entity"
)

// Phase estado de la máquina de una salida: Pending → Verifying → Deducting → Completed | Failed.
type Phase string

const (
	PhasePending   Phase = "pending"
	PhaseVerifying Phase = "verifying"
	PhaseDeducting Phase = "deducting"
	PhaseCompleted Phase = "completed"
	PhaseFailed    Phase = "failed"
)

// ItemOutcome resultado de un renglón. Deductions contiene lo ya confirmado en el almacén,
// incluso si el renglón falló en una ubicación posterior.
type ItemOutcome struct {
	Index      int
	Item       entity.ReleaseLineItem
	Strategy   string
	Deductions []*inventory.DeductionResult
	Restocks   []*entity.RestockingRequest
	Err        error
}

// Released cantidad efectivamente descontada para el renglón.
func (o ItemOutcome) Released() int {
	total := 0
	for _, d := range o.Deductions {
		total += d.Amount
	}
	return total
}

// PartialReleaseResult estado explícito de una salida: renglones exitosos, fallidos y no
// intentados. No hay compensación: lo confirmado queda aplicado y el llamador decide cómo
// conciliar.
type PartialReleaseResult struct {
	ReleaseID    string
	Phase        Phase
	Succeeded    []ItemOutcome
	Failed       []ItemOutcome
	NotAttempted []ItemOutcome
}

// Committed indica si hay descuentos confirmados en el almacén.
func (r *PartialReleaseResult) Committed() bool {
	for _, list := range [][]ItemOutcome{r.Succeeded, r.Failed} {
		for _, o := range list {
			if len(o.Deductions) > 0 {
				return true
			}
		}
	}
	return false
}

// Restocks todas las solicitudes de reposición emitidas durante la salida.
func (r *PartialReleaseResult) Restocks() []*entity.RestockingRequest {
	var out []*entity.RestockingRequest
	for _, list := range [][]ItemOutcome{r.Succeeded, r.Failed} {
		for _, o := range list {
			out = append(out, o.Restocks...)
		}
	}
	return out
}

// ReleasedItems snapshot desnormalizado de lo confirmado (exitosos y parciales de fallidos).
func (r *PartialReleaseResult) ReleasedItems() []entity.ReleasedItem {
	var out []entity.ReleasedItem
	for _, list := range [][]ItemOutcome{r.Succeeded, r.Failed} {
		for _, o := range list {
			if len(o.Deductions) == 0 {
				continue
			}
			out = append(out, snapshot(o))
		}
	}
	return out
}

func snapshot(o ItemOutcome) entity.ReleasedItem {
	qty := o.Released()
	item := entity.ReleasedItem{
		ProductID:  o.Item.ProductID,
		VariantID:  o.Item.VariantID,
		Name:       o.Item.Name,
		Quantity:   qty,
		UnitPrice:  o.Item.UnitPrice,
		TotalValue: o.Item.UnitPrice.Mul(decimal.NewFromInt(int64(qty))),
	}
	for _, d := range o.Deductions {
		item.Locations = append(item.Locations, entity.ReleasedLocation{
			PartitionID:      d.Handle.Ref.PartitionID,
			RecordID:         d.Handle.Ref.RecordID,
			Location:         d.Handle.Location,
			Amount:           d.Amount,
			PreviousQuantity: d.PreviousQuantity,
			NewQuantity:      d.NewQuantity,
		})
	}
	return item
}

// ReleaseError error consolidado de una salida abortada. Unwrap expone el error de inventario
// del renglón (NotFound, OutOfStock, InsufficientStock, VariantMismatch).
type ReleaseError struct {
	ReleaseID string
	Index     int
	Item      entity.ReleaseLineItem
	Err       error
	Result    *PartialReleaseResult
}

func (e *ReleaseError) Error() string {
	msg := fmt.Sprintf("salida %s abortada en el renglón %d (%s): %v", e.ReleaseID, e.Index+1, e.Item.Name, e.Err)
	if e.Result != nil && e.Result.Committed() {
		msg += fmt.Sprintf("; %d renglón(es) ya descontados quedan aplicados sin reversión", len(e.Result.ReleasedItems()))
	}
	return msg
}

func (e *ReleaseError) Unwrap() error { return e.Err }
