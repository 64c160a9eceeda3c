package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound            = errors.New("recurso no encontrado")
	ErrInvalidInput        = errors.New("entrada inválida")
	ErrUnauthorized        = errors.New("no autorizado")
	ErrForbidden           = errors.New("acceso denegado")
	ErrConflict            = errors.New("conflicto con el estado actual")
	ErrInsufficientStock   = errors.New("stock insuficiente")
	ErrOutOfStock          = errors.New("producto agotado")
	ErrVariantMismatch     = errors.New("variante no encontrada en el producto")
	ErrTransactionConflict = errors.New("el registro cambió durante la transacción")
)

// LocationQuantity cantidad disponible observada en una ubicación concreta.
type LocationQuantity struct {
	Location string `json:"location"`
	Quantity int    `json:"quantity"`
}

// StockError error tipado de inventario. Kind es uno de los sentinels de este paquete
// (ErrNotFound, ErrOutOfStock, ErrInsufficientStock, ErrVariantMismatch) y se expone vía
// errors.Is. Cause permite encadenar ErrTransactionConflict.
type StockError struct {
	Kind      error
	Cause     error
	ProductID string
	VariantID string
	Name      string
	Requested int
	Available int
	Shortfall int
	Locations []LocationQuantity
	Checked   []string
}

func (e *StockError) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	b.WriteString(": ")
	b.WriteString(e.productLabel())

	switch {
	case errors.Is(e.Kind, ErrInsufficientStock):
		fmt.Fprintf(&b, " (solicitado %d, disponible %d, faltante %d)", e.Requested, e.Available, e.Shortfall)
	case errors.Is(e.Kind, ErrOutOfStock):
		fmt.Fprintf(&b, " (solicitado %d, disponible 0)", e.Requested)
	}
	if len(e.Locations) > 0 {
		parts := make([]string, 0, len(e.Locations))
		for _, l := range e.Locations {
			parts = append(parts, fmt.Sprintf("%s=%d", l.Location, l.Quantity))
		}
		b.WriteString("; ubicaciones: ")
		b.WriteString(strings.Join(parts, ", "))
	}
	if len(e.Checked) > 0 {
		b.WriteString("; revisadas: ")
		b.WriteString(strings.Join(e.Checked, ", "))
	}
	return b.String()
}

func (e *StockError) productLabel() string {
	label := e.ProductID
	if e.VariantID != "" {
		label += "/" + e.VariantID
	}
	if e.Name != "" {
		label = fmt.Sprintf("%q [%s]", e.Name, label)
	}
	return label
}

// Unwrap permite errors.Is(err, domain.ErrInsufficientStock) y, si hay Cause, el conflicto de tx.
func (e *StockError) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Kind, e.Cause}
	}
	return []error{e.Kind}
}

// Shortfall devuelve el faltante cuando requested excede available (nunca negativo).
func Shortfall(requested, available int) int {
	if requested > available {
		return requested - available
	}
	return 0
}
