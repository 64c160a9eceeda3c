package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-release/internal/domain"
	"github.com/jhoicas/stock-release/internal/domain/entity"
	"github.com/jhoicas/stock-release/internal/domain/repository"
)

var (
	_ repository.ReleaseRepository    = (*ReleaseRepo)(nil)
	_ repository.ReleaseLogRepository = (*ReleaseLogRepo)(nil)
)

// ReleaseRepo transacciones de salida sobre PostgreSQL (renglones en JSONB).
type ReleaseRepo struct {
	q Querier
}

// NewReleaseRepository construye el adaptador. Pasar pool o tx (Querier).
func NewReleaseRepository(q Querier) *ReleaseRepo {
	return &ReleaseRepo{q: q}
}

const releaseColumns = `id, reference, status, items, released_items, released_by, released_at, created_at, updated_at`

// GetByID obtiene una salida por ID.
func (r *ReleaseRepo) GetByID(ctx context.Context, id string) (*entity.Release, error) {
	rel, err := scanRelease(r.q.QueryRow(ctx, `SELECT `+releaseColumns+` FROM releases WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get release: %w", err)
	}
	return rel, nil
}

// Claim pasa la salida de pending a processing en una sola sentencia; solo un llamador gana.
func (r *ReleaseRepo) Claim(ctx context.Context, id string) (*entity.Release, error) {
	query := `
		UPDATE releases SET status = 'processing', updated_at = now()
		WHERE id = $1 AND status = 'pending'
		RETURNING ` + releaseColumns
	rel, err := scanRelease(r.q.QueryRow(ctx, query, id))
	if err == nil {
		return rel, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("claim release: %w", err)
	}
	cur, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if cur == nil {
		return nil, domain.ErrNotFound
	}
	return nil, domain.ErrConflict
}

// Unclaim devuelve a pending una salida tomada que no llegó a descontar nada.
func (r *ReleaseRepo) Unclaim(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `UPDATE releases SET status = 'pending', updated_at = now() WHERE id = $1 AND status = 'processing'`, id)
	if err != nil {
		return fmt.Errorf("unclaim release: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrConflict
	}
	return nil
}

func scanRelease(row pgx.Row) (*entity.Release, error) {
	var (
		rel                   entity.Release
		reference, releasedBy *string
		items, releasedItems  []byte
	)
	err := row.Scan(
		&rel.ID, &reference, &rel.Status, &items, &releasedItems, &releasedBy, &rel.ReleasedAt, &rel.CreatedAt, &rel.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	rel.Reference = derefString(reference)
	rel.ReleasedBy = derefString(releasedBy)
	if rel.Items, err = fromJSON[entity.ReleaseLineItem](items); err != nil {
		return nil, err
	}
	if rel.ReleasedItems, err = fromJSON[entity.ReleasedItem](releasedItems); err != nil {
		return nil, err
	}
	return &rel, nil
}

// MarkReleased cierra una salida tomada con estado, snapshot liberado y auditoría.
func (r *ReleaseRepo) MarkReleased(ctx context.Context, rel *entity.Release) error {
	snapshot, err := toJSON(rel.ReleasedItems)
	if err != nil {
		return err
	}
	query := `
		UPDATE releases
		SET status = $2, released_items = $3::jsonb, released_by = $4, released_at = $5, updated_at = $6
		WHERE id = $1 AND status = 'processing'`
	tag, err := r.q.Exec(ctx, query, rel.ID, rel.Status, snapshot, nullString(rel.ReleasedBy), rel.ReleasedAt, rel.UpdatedAt)
	if err != nil {
		return fmt.Errorf("mark release: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrConflict
	}
	return nil
}

// Create inserta una salida pendiente (carga de datos y tests de integración).
func (r *ReleaseRepo) Create(ctx context.Context, rel *entity.Release) error {
	items, err := toJSON(rel.Items)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO releases (id, reference, status, items, released_items, created_at, updated_at)
		VALUES ($1, $2, $3, $4::jsonb, '[]'::jsonb, $5, $6)`
	_, err = r.q.Exec(ctx, query, rel.ID, nullString(rel.Reference), rel.Status, items, rel.CreatedAt, rel.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("insert release: %w", err)
	}
	return nil
}

// ReleaseLogRepo bitácora resumen de salidas (append-only).
type ReleaseLogRepo struct {
	q Querier
}

// NewReleaseLogRepository construye el adaptador.
func NewReleaseLogRepository(q Querier) *ReleaseLogRepo {
	return &ReleaseLogRepo{q: q}
}

// Create persiste una entrada de bitácora.
func (r *ReleaseLogRepo) Create(ctx context.Context, l *entity.ReleaseLog) error {
	items, err := toJSON(l.Items)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO release_logs (id, release_id, items, total_units, total_value, actor_uid, actor_name, created_at)
		VALUES ($1, $2, $3::jsonb, $4, $5, $6, $7, $8)`
	_, err = r.q.Exec(ctx, query, l.ID, l.ReleaseID, items, l.TotalUnits, l.TotalValue, l.ActorUID, nullString(l.ActorName), l.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert release log: %w", err)
	}
	return nil
}
