package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-release/internal/application/dto"
	"github.com/jhoicas/stock-release/internal/application/release"
	"github.com/jhoicas/stock-release/internal/domain"
	"github.com/jhoicas/stock-release/internal/domain/entity"
)

// ReleaseHandler maneja la salida de transacciones de venta (protegido).
type ReleaseHandler struct {
	uc *release.ReleaseUseCase
}

// NewReleaseHandler construye el handler.
func NewReleaseHandler(uc *release.ReleaseUseCase) *ReleaseHandler {
	return &ReleaseHandler{uc: uc}
}

// Release godoc
// @Summary      Liberar una salida
// @Description  Localiza, planifica y descuenta cada renglón de la salida. Si un renglón falla
//
//	la salida se aborta; los renglones ya descontados quedan aplicados y se devuelven en result.
//
// @Tags         releases
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID de la salida"
// @Success      200  {object}  dto.ReleaseResponse
// @Failure      400  {object}  dto.ReleaseErrorResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ReleaseErrorResponse
// @Failure      409  {object}  dto.ReleaseErrorResponse
// @Router       /api/releases/{id}/release [post]
func (h *ReleaseHandler) Release(c *fiber.Ctx) error {
	actor := GetActor(c)
	if actor.UID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id requerido"})
	}

	result, err := h.uc.Release(c.UserContext(), id, actor)
	if err != nil {
		status, code := statusFor(err)
		if errors.Is(err, domain.ErrNotFound) && result == nil {
			return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: "salida no encontrada"})
		}
		resp := dto.ReleaseErrorResponse{
			ErrorResponse: dto.ErrorResponse{Code: code, Message: err.Error()},
			Detail:        stockErrorDetail(err),
		}
		if result != nil {
			r := toReleaseResponse(result)
			resp.Result = &r
		}
		return c.Status(status).JSON(resp)
	}
	return c.JSON(toReleaseResponse(result))
}

func toReleaseResponse(r *release.PartialReleaseResult) dto.ReleaseResponse {
	out := dto.ReleaseResponse{
		ReleaseID: r.ReleaseID,
		Phase:     string(r.Phase),
		Succeeded: make([]dto.ItemResultDTO, 0, len(r.Succeeded)),
		Committed: r.Committed(),
	}
	for _, o := range r.Succeeded {
		out.Succeeded = append(out.Succeeded, toItemResult(o))
	}
	for _, o := range r.Failed {
		out.Failed = append(out.Failed, toItemResult(o))
	}
	for _, o := range r.NotAttempted {
		out.NotAttempted = append(out.NotAttempted, toItemResult(o))
	}
	return out
}

func toItemResult(o release.ItemOutcome) dto.ItemResultDTO {
	item := dto.ItemResultDTO{
		Index:     o.Index,
		ProductID: o.Item.ProductID,
		VariantID: o.Item.VariantID,
		Name:      o.Item.Name,
		Requested: o.Item.Quantity,
		Released:  o.Released(),
		UnitPrice: o.Item.UnitPrice,
		Strategy:  o.Strategy,
	}
	if o.Err != nil {
		item.Error = o.Err.Error()
	}
	for _, d := range o.Deductions {
		item.Deductions = append(item.Deductions, dto.DeductionDTO{
			PartitionID:      d.Handle.Ref.PartitionID,
			RecordID:         d.Handle.Ref.RecordID,
			Location:         d.Handle.Location,
			Shape:            string(d.Handle.Shape),
			Amount:           d.Amount,
			PreviousQuantity: d.PreviousQuantity,
			NewQuantity:      d.NewQuantity,
		})
	}
	for _, rs := range o.Restocks {
		item.Restocks = append(item.Restocks, toRestockDTO(rs))
	}
	return item
}

func toRestockDTO(r *entity.RestockingRequest) dto.RestockDTO {
	return dto.RestockDTO{
		ID:                     r.ID,
		ProductID:              r.ProductID,
		VariantID:              r.VariantID,
		CurrentQuantity:        r.CurrentQuantity,
		RestockLevel:           r.RestockLevel,
		SuggestedOrderQuantity: r.SuggestedOrderQuantity,
		Priority:               r.Priority,
		Location:               r.Location,
	}
}
