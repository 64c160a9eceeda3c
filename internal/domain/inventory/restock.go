package inventory

import "github.com/jhoicas/stock-release/internal/domain/entity"

// RestockPolicy valores por defecto de la regla de reposición.
type RestockPolicy struct {
	DefaultRestockLevel      int
	DefaultMaximumStockLevel int
	MinimumOrderQuantity     int
}

// DefaultRestockPolicy umbral 10, techo 100, pedido mínimo 50.
func DefaultRestockPolicy() RestockPolicy {
	return RestockPolicy{
		DefaultRestockLevel:      10,
		DefaultMaximumStockLevel: 100,
		MinimumOrderQuantity:     50,
	}
}

// RestockDecision resultado de evaluar la regla.
type RestockDecision struct {
	RestockLevel           int
	MaximumStockLevel      int
	SuggestedOrderQuantity int
	Priority               string
}

// Evaluate dispara cuando newQty <= restockLevel. Urgente si el stock llegó a cero.
// suggested = max(MinimumOrderQuantity, maximumStockLevel - newQty).
func (p RestockPolicy) Evaluate(newQty int, restockLevel, maximumStockLevel *int) (RestockDecision, bool) {
	level := p.DefaultRestockLevel
	if restockLevel != nil {
		level = *restockLevel
	}
	ceiling := p.DefaultMaximumStockLevel
	if maximumStockLevel != nil {
		ceiling = *maximumStockLevel
	}
	if newQty > level {
		return RestockDecision{}, false
	}

	priority := entity.RestockPriorityNormal
	if newQty <= 0 {
		priority = entity.RestockPriorityUrgent
	}
	return RestockDecision{
		RestockLevel:           level,
		MaximumStockLevel:      ceiling,
		SuggestedOrderQuantity: max(p.MinimumOrderQuantity, ceiling-newQty),
		Priority:               priority,
	}, true
}

// EffectiveThresholds umbrales del registro apuntado por el handle. Una variante embebida
// sin valores propios hereda los del producto padre.
func EffectiveThresholds(rec *entity.StockRecord, h entity.StockHandle) (restockLevel, maximumStockLevel *int) {
	restockLevel, maximumStockLevel = rec.RestockLevel, rec.MaximumStockLevel
	if h.Shape != entity.ShapeEmbeddedVariantBase || h.VariantIndex < 0 || h.VariantIndex >= len(rec.Variants) {
		return restockLevel, maximumStockLevel
	}
	v := rec.Variants[h.VariantIndex]
	if v.RestockLevel != nil {
		restockLevel = v.RestockLevel
	}
	if v.MaximumStockLevel != nil {
		maximumStockLevel = v.MaximumStockLevel
	}
	return restockLevel, maximumStockLevel
}
