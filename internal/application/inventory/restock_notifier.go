package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/stock-release/internal/domain/entity"
	domaininv "github.com/jhoicas/stock-release/internal/domain/inventory"
	"github.com/jhoicas/stock-release/internal/domain/repository"
	"github.com/jhoicas/stock-release/pkg/logger"
	"github.com/jhoicas/stock-release/pkg/metrics"
)

// NotifierConfig configuración explícita del notificador (roles destino y regla).
type NotifierConfig struct {
	Policy      domaininv.RestockPolicy
	TargetRoles []string
}

// DefaultNotifierConfig roles inventory_manager y admin con la regla por defecto.
func DefaultNotifierConfig() NotifierConfig {
	return NotifierConfig{
		Policy:      domaininv.DefaultRestockPolicy(),
		TargetRoles: []string{entity.RoleInventoryManager, entity.RoleAdmin},
	}
}

// RestockNotifier evalúa la regla de reposición y, si dispara, escribe la solicitud,
// la notificación para los roles configurados y publica el evento.
type RestockNotifier struct {
	restockRepo repository.RestockingRequestRepository
	notifRepo   repository.NotificationRepository
	publisher   EventPublisher
	cfg         NotifierConfig
	log         *logger.Logger
}

var _ RestockEvaluator = (*RestockNotifier)(nil)

// NewRestockNotifier construye el evaluador/notificador.
func NewRestockNotifier(
	restockRepo repository.RestockingRequestRepository,
	notifRepo repository.NotificationRepository,
	publisher EventPublisher,
	cfg NotifierConfig,
	log *logger.Logger,
) *RestockNotifier {
	if publisher == nil {
		publisher = NopPublisher{}
	}
	return &RestockNotifier{
		restockRepo: restockRepo,
		notifRepo:   notifRepo,
		publisher:   publisher,
		cfg:         cfg,
		log:         log.Component("restock_notifier"),
	}
}

// Evaluate devuelve la solicitud emitida o nil. Los errores de escritura se registran y no
// se propagan: el descuento que precede ya está confirmado.
func (n *RestockNotifier) Evaluate(ctx context.Context, rc RecordContext, newQuantity int) *entity.RestockingRequest {
	restockLevel, maxLevel := domaininv.EffectiveThresholds(rc.Record, rc.Handle)
	decision, ok := n.cfg.Policy.Evaluate(newQuantity, restockLevel, maxLevel)
	if !ok {
		return nil
	}

	now := time.Now()
	req := &entity.RestockingRequest{
		ID:                     uuid.New().String(),
		ProductID:              rc.Record.ProductID,
		VariantID:              rc.Handle.VariantID,
		ProductName:            productName(rc),
		CurrentQuantity:        newQuantity,
		RestockLevel:           decision.RestockLevel,
		MaximumStockLevel:      decision.MaximumStockLevel,
		SuggestedOrderQuantity: decision.SuggestedOrderQuantity,
		Priority:               decision.Priority,
		PartitionID:            rc.Handle.Ref.PartitionID,
		RecordID:               rc.Handle.Ref.RecordID,
		Location:               rc.Handle.Location,
		ReleaseID:              rc.ReleaseID,
		RequestedBy:            rc.Actor.UID,
		RequestedByName:        rc.Actor.DisplayName,
		CreatedAt:              now,
	}
	if err := n.restockRepo.Create(ctx, req); err != nil {
		metrics.EvaluatorFailuresTotal.Inc()
		n.log.Error().Err(err).Str("product_id", req.ProductID).Str("record", rc.Handle.Ref.String()).Msg("no se pudo registrar la solicitud de reposición")
		return nil
	}
	metrics.RestockRequestsTotal.WithLabelValues(req.Priority).Inc()

	notif := &entity.Notification{
		ID:       uuid.New().String(),
		Type:     entity.NotificationTypeRestockRequest,
		Priority: req.Priority,
		Title:    restockTitle(req),
		Message: fmt.Sprintf("%s quedó en %d unidades en %s (umbral %d). Pedido sugerido: %d.",
			req.ProductName, req.CurrentQuantity, req.Location, req.RestockLevel, req.SuggestedOrderQuantity),
		Details: map[string]any{
			"restockRequestId":       req.ID,
			"productId":              req.ProductID,
			"variantId":              req.VariantID,
			"currentQuantity":        req.CurrentQuantity,
			"restockLevel":           req.RestockLevel,
			"suggestedOrderQuantity": req.SuggestedOrderQuantity,
			"location":               req.Location,
			"releaseId":              req.ReleaseID,
		},
		TargetRoles: append([]string(nil), n.cfg.TargetRoles...),
		Status:      entity.NotificationStatusActive,
		CreatedBy:   rc.Actor.UID,
		CreatedAt:   now,
	}
	if err := n.notifRepo.Create(ctx, notif); err != nil {
		metrics.EvaluatorFailuresTotal.Inc()
		n.log.Error().Err(err).Str("restock_request_id", req.ID).Msg("no se pudo registrar la notificación de reposición")
	}

	if err := n.publisher.Publish(ctx, req.ProductID, Event{
		Type:       EventRestockRequested,
		OccurredAt: now,
		Payload:    notif.Details,
	}); err != nil {
		n.log.Warn().Err(err).Str("restock_request_id", req.ID).Msg("no se pudo publicar el evento de reposición")
	}

	n.log.Info().
		Str("product_id", req.ProductID).
		Str("variant_id", req.VariantID).
		Int("quantity", req.CurrentQuantity).
		Str("priority", req.Priority).
		Int("suggested", req.SuggestedOrderQuantity).
		Msg("solicitud de reposición emitida")
	return req
}

func productName(rc RecordContext) string {
	name := rc.Record.Name
	if rc.Handle.Shape == entity.ShapeEmbeddedVariantBase && rc.Handle.VariantIndex >= 0 && rc.Handle.VariantIndex < len(rc.Record.Variants) {
		if v := rc.Record.Variants[rc.Handle.VariantIndex]; v.Name != "" {
			name += " (" + v.Name + ")"
		}
	}
	if name == "" {
		name = rc.Record.ProductID
	}
	return name
}

func restockTitle(req *entity.RestockingRequest) string {
	if req.Priority == entity.RestockPriorityUrgent {
		return "Producto agotado: " + req.ProductName
	}
	return "Stock bajo: " + req.ProductName
}
