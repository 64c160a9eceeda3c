package release

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/jhoicas/stock-release/internal/application/inventory"
	"github.com/jhoicas/stock-release/internal/domain"
	"github.com/jhoicas/stock-release/internal/domain/entity"
	domaininv "github.com/jhoicas/stock-release/internal/domain/inventory"
	"github.com/jhoicas/stock-release/internal/domain/repository"
	"github.com/jhoicas/stock-release/pkg/logger"
	"github.com/jhoicas/stock-release/pkg/metrics"
)

var tracer = otel.Tracer("github.com/jhoicas/stock-release/internal/application/release")

// Resolver puerto del Location Resolver.
type Resolver interface {
	Resolve(ctx context.Context, q inventory.LocateQuery) (*inventory.Resolution, error)
}

// Deductor puerto del Deduction Executor.
type Deductor interface {
	Apply(ctx context.Context, h entity.StockHandle, amount int, opts inventory.DeductionOptions) (*inventory.DeductionResult, error)
}

// Repos repositorios que usa el orquestador.
type Repos struct {
	Releases      repository.ReleaseRepository
	Logs          repository.ReleaseLogRepository
	Movements     repository.StockMovementRepository
	Notifications repository.NotificationRepository
}

// ReleaseUseCase orquesta la salida completa de una transacción, renglón por renglón.
type ReleaseUseCase struct {
	repos       Repos
	resolver    Resolver
	deductor    Deductor
	publisher   inventory.EventPublisher
	notifyRoles []string
	log         *logger.Logger
}

// NewReleaseUseCase construye el orquestador. notifyRoles son los destinatarios de la
// notificación de salida completada.
func NewReleaseUseCase(
	repos Repos,
	resolver Resolver,
	deductor Deductor,
	publisher inventory.EventPublisher,
	notifyRoles []string,
	log *logger.Logger,
) *ReleaseUseCase {
	if publisher == nil {
		publisher = inventory.NopPublisher{}
	}
	return &ReleaseUseCase{
		repos:       repos,
		resolver:    resolver,
		deductor:    deductor,
		publisher:   publisher,
		notifyRoles: notifyRoles,
		log:         log.Component("release_orchestrator"),
	}
}

// Release procesa la salida de forma síncrona: por cada renglón resuelve, planifica y descuenta.
// Ante un error aborta sin revertir lo ya confirmado y devuelve el resultado parcial junto a
// un *ReleaseError. Siempre devuelve un resultado no nil cuando la salida existe.
func (uc *ReleaseUseCase) Release(ctx context.Context, releaseID string, actor entity.Actor) (*PartialReleaseResult, error) {
	start := time.Now()
	defer func() { metrics.ReleaseDuration.Observe(time.Since(start).Seconds()) }()

	ctx, span := tracer.Start(ctx, "release.run")
	defer span.End()
	span.SetAttributes(attribute.String("release.id", releaseID), attribute.String("actor.uid", actor.UID))

	// Claim es el único punto de entrada: dos llamadas simultáneas sobre la misma salida
	// no pueden descontar ambas.
	rel, err := uc.repos.Releases.Claim(ctx, releaseID)
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, fmt.Errorf("salida %s ya liberada o en proceso: %w", releaseID, err)
		}
		return nil, err
	}

	result := &PartialReleaseResult{ReleaseID: rel.ID, Phase: PhasePending}
	if err := validateItems(rel.Items); err != nil {
		result.Phase = PhaseFailed
		uc.unclaim(ctx, rel.ID)
		return result, err
	}

	for i, item := range rel.Items {
		outcome, err := uc.releaseItem(ctx, rel, i, item, actor, result)
		if err != nil {
			outcome.Err = err
			result.Failed = append(result.Failed, outcome)
			for j := i + 1; j < len(rel.Items); j++ {
				result.NotAttempted = append(result.NotAttempted, ItemOutcome{Index: j, Item: rel.Items[j]})
			}
			span.RecordError(err)
			span.SetStatus(codes.Error, "salida abortada")
			return result, uc.abort(ctx, rel, result, i, item, err)
		}
		result.Succeeded = append(result.Succeeded, outcome)
	}

	if err := uc.complete(ctx, rel, result, actor); err != nil {
		span.RecordError(err)
		return result, err
	}
	span.SetStatus(codes.Ok, "salida completada")
	return result, nil
}

func validateItems(items []entity.ReleaseLineItem) error {
	if len(items) == 0 {
		return fmt.Errorf("salida sin renglones: %w", domain.ErrInvalidInput)
	}
	for i, it := range items {
		if it.Quantity <= 0 {
			return fmt.Errorf("renglón %d con cantidad %d: %w", i+1, it.Quantity, domain.ErrInvalidInput)
		}
		if it.ProductID == "" && !(it.Quotation && it.Name != "") {
			return fmt.Errorf("renglón %d sin productId: %w", i+1, domain.ErrInvalidInput)
		}
	}
	return nil
}

// releaseItem Verifying (resolver + plan) y Deducting (una transacción por ubicación).
func (uc *ReleaseUseCase) releaseItem(
	ctx context.Context,
	rel *entity.Release,
	index int,
	item entity.ReleaseLineItem,
	actor entity.Actor,
	result *PartialReleaseResult,
) (ItemOutcome, error) {
	ctx, span := tracer.Start(ctx, "release.item")
	defer span.End()
	span.SetAttributes(
		attribute.Int("item.index", index),
		attribute.String("product.id", item.ProductID),
		attribute.Int("item.quantity", item.Quantity),
	)

	outcome := ItemOutcome{Index: index, Item: item}

	result.Phase = PhaseVerifying
	res, err := uc.resolver.Resolve(ctx, inventory.QueryFromItem(item))
	if err != nil {
		return outcome, err
	}
	outcome.Strategy = res.Strategy
	if len(res.Handles) == 0 {
		checked := res.Checked
		for _, m := range res.Mismatches {
			checked = append(checked, m.String()+" (variante no coincide)")
		}
		return outcome, &domain.StockError{
			Kind:      domain.ErrNotFound,
			ProductID: item.ProductID,
			VariantID: item.VariantID,
			Name:      item.Name,
			Requested: item.Quantity,
			Checked:   checked,
		}
	}

	allowNegative := item.Quotation
	available := 0
	for _, h := range res.Handles {
		if h.Record != nil && h.Record.AllowNegative {
			allowNegative = true
		}
		available += max(0, h.Quantity)
	}
	plan, err := domaininv.Plan(item.Quantity, res.Handles, allowNegative)
	if err != nil {
		return outcome, annotate(err, item, res.Checked)
	}
	if allowNegative && available < item.Quantity {
		uc.log.Warn().
			Str("release_id", rel.ID).
			Str("product_id", item.ProductID).
			Int("requested", item.Quantity).
			Int("available", available).
			Msg("producto de cotización sin stock suficiente; se permite inventario negativo")
	}

	result.Phase = PhaseDeducting
	for _, alloc := range plan {
		d, err := uc.deductor.Apply(ctx, alloc.Handle, alloc.Amount, inventory.DeductionOptions{
			AllowNegative: allowNegative,
			ReleaseID:     rel.ID,
			Actor:         actor,
		})
		if err != nil {
			return outcome, annotate(err, item, res.Checked)
		}
		outcome.Deductions = append(outcome.Deductions, d)
		if d.Restock != nil {
			outcome.Restocks = append(outcome.Restocks, d.Restock)
		}
		uc.log.Debug().Str("release_id", rel.ID).Str("deduction", d.String()).Msg("ubicación descontada")
	}
	return outcome, nil
}

// annotate completa la identidad del producto en errores de inventario.
func annotate(err error, item entity.ReleaseLineItem, checked []string) error {
	var se *domain.StockError
	if !errors.As(err, &se) {
		return err
	}
	if se.ProductID == "" {
		se.ProductID = item.ProductID
	}
	if se.VariantID == "" {
		se.VariantID = item.VariantID
	}
	if se.Name == "" {
		se.Name = item.Name
	}
	if se.Requested == 0 {
		se.Requested = item.Quantity
	}
	if len(se.Checked) == 0 {
		se.Checked = checked
	}
	return err
}

// abort deja constancia del estado parcial; no existe transacción compensatoria.
func (uc *ReleaseUseCase) abort(ctx context.Context, rel *entity.Release, result *PartialReleaseResult, index int, item entity.ReleaseLineItem, cause error) error {
	result.Phase = PhaseFailed
	label := "failed"
	if result.Committed() {
		label = "partial"
		now := time.Now()
		rel.Status = entity.ReleaseStatusPartiallyReleased
		rel.ReleasedItems = result.ReleasedItems()
		rel.UpdatedAt = now
		if err := uc.repos.Releases.MarkReleased(context.WithoutCancel(ctx), rel); err != nil {
			uc.log.Error().Err(err).Str("release_id", rel.ID).Msg("no se pudo registrar la salida parcial")
		}
	} else {
		uc.unclaim(ctx, rel.ID)
	}
	metrics.ReleasesTotal.WithLabelValues(label).Inc()

	uc.log.Warn().
		Err(cause).
		Str("release_id", rel.ID).
		Int("item", index+1).
		Int("succeeded", len(result.Succeeded)).
		Int("failed", len(result.Failed)).
		Int("not_attempted", len(result.NotAttempted)).
		Bool("committed", result.Committed()).
		Msg("salida abortada")

	return &ReleaseError{ReleaseID: rel.ID, Index: index, Item: item, Err: cause, Result: result}
}

// unclaim devuelve a pending una salida que no alcanzó a descontar nada.
func (uc *ReleaseUseCase) unclaim(ctx context.Context, id string) {
	if err := uc.repos.Releases.Unclaim(context.WithoutCancel(ctx), id); err != nil {
		uc.log.Error().Err(err).Str("release_id", id).Msg("no se pudo devolver la salida a pendiente")
	}
}

// complete marca la salida como liberada, escribe bitácora, movimientos y notificación.
// Las escrituras posteriores al cambio de estado se registran si fallan pero no revierten nada.
func (uc *ReleaseUseCase) complete(ctx context.Context, rel *entity.Release, result *PartialReleaseResult, actor entity.Actor) error {
	now := time.Now()
	items := result.ReleasedItems()

	rel.Status = entity.ReleaseStatusReleased
	rel.ReleasedItems = items
	rel.ReleasedBy = actor.UID
	rel.ReleasedAt = &now
	rel.UpdatedAt = now
	if err := uc.repos.Releases.MarkReleased(context.WithoutCancel(ctx), rel); err != nil {
		metrics.ReleasesTotal.WithLabelValues("partial").Inc()
		return fmt.Errorf("marcar salida %s como liberada: %w", rel.ID, err)
	}
	result.Phase = PhaseCompleted
	metrics.ReleasesTotal.WithLabelValues("completed").Inc()

	totalUnits := 0
	totalValue := decimal.Zero
	for _, it := range items {
		totalUnits += it.Quantity
		totalValue = totalValue.Add(it.TotalValue)
	}

	entry := &entity.ReleaseLog{
		ID:         uuid.New().String(),
		ReleaseID:  rel.ID,
		Items:      items,
		TotalUnits: totalUnits,
		TotalValue: totalValue,
		ActorUID:   actor.UID,
		ActorName:  actor.DisplayName,
		CreatedAt:  now,
	}
	if err := uc.repos.Logs.Create(ctx, entry); err != nil {
		uc.log.Error().Err(err).Str("release_id", rel.ID).Msg("no se pudo escribir la bitácora de salida")
	}

	for _, it := range items {
		mov := &entity.StockMovement{
			ID:         uuid.New().String(),
			Type:       entity.MovementTypeOutbound,
			Reason:     "release",
			ProductID:  it.ProductID,
			VariantID:  it.VariantID,
			Name:       it.Name,
			Quantity:   it.Quantity,
			UnitPrice:  it.UnitPrice,
			TotalValue: it.TotalValue,
			ReleaseID:  rel.ID,
			Locations:  it.Locations,
			CreatedBy:  actor.UID,
			CreatedAt:  now,
		}
		if err := uc.repos.Movements.Create(ctx, mov); err != nil {
			uc.log.Error().Err(err).Str("release_id", rel.ID).Str("product_id", it.ProductID).Msg("no se pudo escribir el movimiento de stock")
		}
	}

	details := map[string]any{
		"releaseId":  rel.ID,
		"reference":  rel.Reference,
		"items":      len(items),
		"totalUnits": totalUnits,
		"totalValue": totalValue.StringFixed(2),
		"releasedBy": actor.DisplayName,
	}
	notif := &entity.Notification{
		ID:          uuid.New().String(),
		Type:        entity.NotificationTypeReleaseComplete,
		Priority:    entity.RestockPriorityNormal,
		Title:       "Salida completada",
		Message:     fmt.Sprintf("Salida %s liberada: %d renglón(es), %d unidades.", displayRef(rel), len(items), totalUnits),
		Details:     details,
		TargetRoles: append([]string(nil), uc.notifyRoles...),
		Status:      entity.NotificationStatusActive,
		CreatedBy:   actor.UID,
		CreatedAt:   now,
	}
	if err := uc.repos.Notifications.Create(ctx, notif); err != nil {
		uc.log.Error().Err(err).Str("release_id", rel.ID).Msg("no se pudo registrar la notificación de salida")
	}

	if err := uc.publisher.Publish(ctx, rel.ID, inventory.Event{
		Type:       inventory.EventReleaseCompleted,
		OccurredAt: now,
		Payload:    details,
	}); err != nil {
		uc.log.Warn().Err(err).Str("release_id", rel.ID).Msg("no se pudo publicar el evento de salida")
	}

	uc.log.Info().
		Str("release_id", rel.ID).
		Str("actor", actor.UID).
		Int("items", len(items)).
		Int("units", totalUnits).
		Int("restocks", len(result.Restocks())).
		Msg("salida completada")
	return nil
}

func displayRef(rel *entity.Release) string {
	if rel.Reference != "" {
		return rel.Reference
	}
	return rel.ID
}
