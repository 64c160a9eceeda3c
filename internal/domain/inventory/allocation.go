package inventory

import (
	"sort"

	"github.com/jhoicas/stock-release/internal/domain"
	"github.com/jhoicas/stock-release/internal/domain/entity"
)

// Allocation porción de la cantidad pedida asignada a un registro localizado.
type Allocation struct {
	Handle entity.StockHandle
	Amount int
}

// Plan reparte requested entre los handles, agotando primero la ubicación con más stock.
// Con allowNegative (clase cotización) nunca falla por falta de stock: el remanente se
// carga a la última ubicación asignada, que puede quedar en negativo.
// Las asignaciones devueltas suman exactamente requested.
func Plan(requested int, handles []entity.StockHandle, allowNegative bool) ([]Allocation, error) {
	if requested <= 0 {
		return nil, domain.ErrInvalidInput
	}
	if len(handles) == 0 {
		return nil, &domain.StockError{Kind: domain.ErrNotFound, Requested: requested}
	}

	ordered := make([]entity.StockHandle, len(handles))
	copy(ordered, handles)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Quantity > ordered[j].Quantity })

	total := 0
	breakdown := make([]domain.LocationQuantity, 0, len(ordered))
	for _, h := range ordered {
		if h.Quantity > 0 {
			total += h.Quantity
		}
		breakdown = append(breakdown, domain.LocationQuantity{Location: h.Location, Quantity: h.Quantity})
	}

	if total < requested && !allowNegative {
		kind := domain.ErrInsufficientStock
		if total == 0 {
			kind = domain.ErrOutOfStock
		}
		return nil, &domain.StockError{
			Kind:      kind,
			Requested: requested,
			Available: total,
			Shortfall: domain.Shortfall(requested, total),
			Locations: breakdown,
		}
	}

	remaining := requested
	var out []Allocation
	for _, h := range ordered {
		if remaining == 0 {
			break
		}
		take := min(remaining, h.Quantity)
		if take <= 0 {
			continue
		}
		out = append(out, Allocation{Handle: h, Amount: take})
		remaining -= take
	}

	if remaining > 0 {
		if len(out) == 0 {
			out = append(out, Allocation{Handle: ordered[0]})
		}
		out[len(out)-1].Amount += remaining
	}
	return out, nil
}

// ComputeDeduction calcula la nueva cantidad de un registro ya releído dentro de la tx.
// Fuera de la clase cotización un resultado negativo aborta con ErrInsufficientStock.
func ComputeDeduction(current, amount int, allowNegative bool) (int, error) {
	if amount <= 0 {
		return current, domain.ErrInvalidInput
	}
	next := current - amount
	if next >= 0 || allowNegative {
		return next, nil
	}
	return max(0, next), domain.ErrInsufficientStock
}
