package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-release/internal/application/dto"
	"github.com/jhoicas/stock-release/internal/application/inventory"
)

// StockHandler consultas de ubicación de stock (solo lectura).
type StockHandler struct {
	resolver *inventory.LocationResolver
}

// NewStockHandler construye el handler.
func NewStockHandler(resolver *inventory.LocationResolver) *StockHandler {
	return &StockHandler{resolver: resolver}
}

// Locate godoc
// @Summary      Localizar un producto o variante
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        product_id  query  string  false  "ID del producto"
// @Param        variant_id  query  string  false  "ID de la variante"
// @Param        name        query  string  false  "Nombre (solo cotizaciones)"
// @Param        location    query  string  false  "Pista de ubicación completa"
// @Param        partition   query  string  false  "Partición sugerida"
// @Success      200  {object}  dto.LocateResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/stock/locate [get]
func (h *StockHandler) Locate(c *fiber.Ctx) error {
	var in dto.LocateRequest
	if err := c.QueryParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	if in.ProductID == "" && in.VariantID == "" && !(in.Quotation && in.Name != "") {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "product_id o variant_id requerido"})
	}

	res, err := h.resolver.Resolve(c.UserContext(), inventory.LocateQuery{
		ProductID:        in.ProductID,
		VariantID:        in.VariantID,
		Name:             in.Name,
		Category:         in.Category,
		FullLocationHint: in.Location,
		PartitionHint:    in.Partition,
		Quotation:        in.Quotation,
	})
	if err != nil {
		return writeError(c, err)
	}

	out := dto.LocateResponse{
		Strategy: res.Strategy,
		Handles:  make([]dto.HandleDTO, 0, len(res.Handles)),
		Checked:  res.Checked,
	}
	for _, hd := range res.Handles {
		out.Total += hd.Quantity
		out.Handles = append(out.Handles, dto.HandleDTO{
			PartitionID: hd.Ref.PartitionID,
			RecordID:    hd.Ref.RecordID,
			Shape:       string(hd.Shape),
			VariantID:   hd.VariantID,
			Quantity:    hd.Quantity,
			Location:    hd.Location,
		})
	}
	for _, m := range res.Mismatches {
		out.Mismatches = append(out.Mismatches, m.String())
	}
	return c.JSON(out)
}
