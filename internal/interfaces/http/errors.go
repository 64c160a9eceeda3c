package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-release/internal/application/dto"
	"github.com/jhoicas/stock-release/internal/domain"
)

// statusFor traduce errores de dominio a código HTTP y código de error de la API.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest, "VALIDATION"
	case errors.Is(err, domain.ErrUnauthorized):
		return fiber.StatusUnauthorized, "UNAUTHORIZED"
	case errors.Is(err, domain.ErrForbidden):
		return fiber.StatusForbidden, "FORBIDDEN"
	case errors.Is(err, domain.ErrVariantMismatch):
		return fiber.StatusConflict, "VARIANT_MISMATCH"
	case errors.Is(err, domain.ErrOutOfStock):
		return fiber.StatusConflict, "OUT_OF_STOCK"
	case errors.Is(err, domain.ErrInsufficientStock):
		return fiber.StatusConflict, "INSUFFICIENT_STOCK"
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrTransactionConflict):
		return fiber.StatusConflict, "CONFLICT"
	default:
		return fiber.StatusInternalServerError, "INTERNAL"
	}
}

func writeError(c *fiber.Ctx, err error) error {
	status, code := statusFor(err)
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: err.Error()})
}

func stockErrorDetail(err error) *dto.StockErrorDetail {
	var se *domain.StockError
	if !errors.As(err, &se) {
		return nil
	}
	d := &dto.StockErrorDetail{
		ProductID: se.ProductID,
		VariantID: se.VariantID,
		Name:      se.Name,
		Requested: se.Requested,
		Available: se.Available,
		Shortfall: se.Shortfall,
		Checked:   se.Checked,
	}
	for _, l := range se.Locations {
		d.Locations = append(d.Locations, dto.LocationQtyDTO{Location: l.Location, Quantity: l.Quantity})
	}
	return d
}
