// Package memory implementa los puertos de persistencia en proceso. Se usa con
// STORE_DRIVER=memory en desarrollo y como respaldo de los tests de casos de uso.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jhoicas/stock-release/internal/application/inventory"
	"github.com/jhoicas/stock-release/internal/domain"
	"github.com/jhoicas/stock-release/internal/domain/entity"
	"github.com/jhoicas/stock-release/internal/domain/repository"
)

// Store datos en memoria protegidos por un RWMutex. Las transacciones de registro se
// serializan con txMu y sus escrituras se aplican solo al confirmar.
type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex

	partitions    []entity.StoragePartition
	records       map[entity.RecordRef]*entity.StockRecord
	releases      map[string]*entity.Release
	releaseLogs   []*entity.ReleaseLog
	movements     []*entity.StockMovement
	restocks      []*entity.RestockingRequest
	notifications []*entity.Notification
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{
		records:  make(map[entity.RecordRef]*entity.StockRecord),
		releases: make(map[string]*entity.Release),
	}
}

// AddPartition registra una partición (aprovisionamiento externo).
func (s *Store) AddPartition(p entity.StoragePartition) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.partitions = append(s.partitions, p)
}

// PutRecord inserta o reemplaza un documento de stock.
func (s *Store) PutRecord(rec *entity.StockRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = time.Now()
	}
	s.records[rec.Ref()] = rec.Clone()
}

// Record copia del documento guardado, o nil.
func (s *Store) Record(ref entity.RecordRef) *entity.StockRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if rec, ok := s.records[ref]; ok {
		return rec.Clone()
	}
	return nil
}

// PutRelease inserta o reemplaza una salida.
func (s *Store) PutRelease(rel *entity.Release) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rel.Status == "" {
		rel.Status = entity.ReleaseStatusPending
	}
	s.releases[rel.ID] = cloneRelease(rel)
}

// Release copia de la salida guardada, o nil.
func (s *Store) Release(id string) *entity.Release {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if rel, ok := s.releases[id]; ok {
		return cloneRelease(rel)
	}
	return nil
}

// ReleaseLogs entradas de bitácora escritas.
func (s *Store) ReleaseLogs() []*entity.ReleaseLog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*entity.ReleaseLog(nil), s.releaseLogs...)
}

// StockMovements movimientos escritos.
func (s *Store) StockMovements() []*entity.StockMovement {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*entity.StockMovement(nil), s.movements...)
}

// RestockingRequests solicitudes de reposición escritas.
func (s *Store) RestockingRequests() []*entity.RestockingRequest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*entity.RestockingRequest(nil), s.restocks...)
}

// Notifications notificaciones escritas, en orden de creación.
func (s *Store) Notifications() []*entity.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*entity.Notification(nil), s.notifications...)
}

// Records repositorio de registros fuera de transacción.
func (s *Store) Records() repository.StockRecordRepository { return &recordRepo{s: s} }

// Releases repositorio de salidas.
func (s *Store) Releases() repository.ReleaseRepository { return releaseRepo{s: s} }

// ReleaseLogRepo repositorio de bitácora.
func (s *Store) ReleaseLogRepo() repository.ReleaseLogRepository { return releaseLogRepo{s: s} }

// MovementRepo repositorio de movimientos.
func (s *Store) MovementRepo() repository.StockMovementRepository { return movementRepo{s: s} }

// RestockRepo repositorio de solicitudes de reposición.
func (s *Store) RestockRepo() repository.RestockingRequestRepository { return restockRepo{s: s} }

// NotificationRepo repositorio de notificaciones.
func (s *Store) NotificationRepo() repository.NotificationRepository { return notificationRepo{s: s} }

// TxRunner runner de transacciones por registro.
func (s *Store) TxRunner() inventory.TxRunner { return txRunner{s: s} }

// ── stock records ─────────────────────────────────────────────────────────────

type recordRepo struct {
	s *Store
	// pending escrituras de la transacción en curso; nil fuera de transacción.
	pending map[entity.RecordRef]*entity.StockRecord
}

func (r *recordRepo) ListPartitions(context.Context) ([]entity.StoragePartition, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := append([]entity.StoragePartition(nil), r.s.partitions...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *recordRepo) FindFlatVariant(_ context.Context, partitionID, variantID string) (*entity.StockRecord, error) {
	rec := r.get(entity.RecordRef{PartitionID: partitionID, RecordID: variantID})
	if rec == nil || !rec.IsVariant {
		return nil, nil
	}
	return rec, nil
}

func (r *recordRepo) GetProduct(_ context.Context, partitionID, productID string) (*entity.StockRecord, error) {
	rec := r.get(entity.RecordRef{PartitionID: partitionID, RecordID: productID})
	if rec == nil || rec.IsVariant {
		return nil, nil
	}
	return rec, nil
}

func (r *recordRepo) ListProducts(_ context.Context, partitionID string) ([]*entity.StockRecord, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*entity.StockRecord
	for ref, rec := range r.s.records {
		if ref.PartitionID == partitionID && !rec.IsVariant {
			out = append(out, rec.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RecordID < out[j].RecordID })
	return out, nil
}

func (r *recordRepo) GetForUpdate(_ context.Context, ref entity.RecordRef) (*entity.StockRecord, error) {
	if rec, ok := r.pending[ref]; ok {
		return rec.Clone(), nil
	}
	return r.get(ref), nil
}

func (r *recordRepo) UpdateQuantity(_ context.Context, rec *entity.StockRecord) error {
	if r.get(rec.Ref()) == nil {
		return domain.ErrNotFound
	}
	rec.Version++
	if r.pending != nil {
		r.pending[rec.Ref()] = rec.Clone()
		return nil
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.records[rec.Ref()] = rec.Clone()
	return nil
}

func (r *recordRepo) get(ref entity.RecordRef) *entity.StockRecord {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if rec, ok := r.s.records[ref]; ok {
		return rec.Clone()
	}
	return nil
}

type txRunner struct{ s *Store }

// RunRecord serializa las transacciones: con un único escritor a la vez no hay conflictos
// que reintentar. Si fn falla las escrituras pendientes se descartan.
func (t txRunner) RunRecord(ctx context.Context, fn func(ctx context.Context, records repository.StockRecordRepository) error) error {
	t.s.txMu.Lock()
	defer t.s.txMu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	tx := &recordRepo{s: t.s, pending: make(map[entity.RecordRef]*entity.StockRecord)}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	for ref, rec := range tx.pending {
		t.s.records[ref] = rec
	}
	return nil
}

// ── releases ──────────────────────────────────────────────────────────────────

type releaseRepo struct{ s *Store }

func (r releaseRepo) GetByID(_ context.Context, id string) (*entity.Release, error) {
	return r.s.Release(id), nil
}

func (r releaseRepo) Claim(_ context.Context, id string) (*entity.Release, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.releases[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if cur.Status != entity.ReleaseStatusPending {
		return nil, domain.ErrConflict
	}
	cur.Status = entity.ReleaseStatusProcessing
	cur.UpdatedAt = time.Now()
	return cloneRelease(cur), nil
}

func (r releaseRepo) Unclaim(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.releases[id]
	if !ok {
		return domain.ErrNotFound
	}
	if cur.Status != entity.ReleaseStatusProcessing {
		return domain.ErrConflict
	}
	cur.Status = entity.ReleaseStatusPending
	cur.UpdatedAt = time.Now()
	return nil
}

func (r releaseRepo) MarkReleased(_ context.Context, rel *entity.Release) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.releases[rel.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if cur.Status != entity.ReleaseStatusProcessing {
		return domain.ErrConflict
	}
	r.s.releases[rel.ID] = cloneRelease(rel)
	return nil
}

type releaseLogRepo struct{ s *Store }

func (r releaseLogRepo) Create(_ context.Context, l *entity.ReleaseLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *l
	r.s.releaseLogs = append(r.s.releaseLogs, &cp)
	return nil
}

type movementRepo struct{ s *Store }

func (r movementRepo) Create(_ context.Context, m *entity.StockMovement) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *m
	r.s.movements = append(r.s.movements, &cp)
	return nil
}

func (r movementRepo) ListByRelease(_ context.Context, releaseID string) ([]*entity.StockMovement, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*entity.StockMovement
	for _, m := range r.s.movements {
		if m.ReleaseID == releaseID {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

type restockRepo struct{ s *Store }

func (r restockRepo) Create(_ context.Context, req *entity.RestockingRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *req
	r.s.restocks = append(r.s.restocks, &cp)
	return nil
}

type notificationRepo struct{ s *Store }

func (r notificationRepo) Create(_ context.Context, n *entity.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *n
	cp.TargetRoles = append([]string(nil), n.TargetRoles...)
	r.s.notifications = append(r.s.notifications, &cp)
	return nil
}

func (r notificationRepo) ListActiveByRole(_ context.Context, role string, limit, offset int) ([]*entity.Notification, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var matched []*entity.Notification
	for i := len(r.s.notifications) - 1; i >= 0; i-- {
		n := r.s.notifications[i]
		if n.Status == entity.NotificationStatusActive && n.TargetsRole(role) {
			cp := *n
			matched = append(matched, &cp)
		}
	}
	if offset >= len(matched) {
		return nil, nil
	}
	end := len(matched)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return matched[offset:end], nil
}

func (r notificationRepo) MarkRead(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, n := range r.s.notifications {
		if n.ID == id {
			now := time.Now()
			n.Status = entity.NotificationStatusRead
			n.ReadAt = &now
			return nil
		}
	}
	return domain.ErrNotFound
}

func cloneRelease(rel *entity.Release) *entity.Release {
	cp := *rel
	cp.Items = append([]entity.ReleaseLineItem(nil), rel.Items...)
	cp.ReleasedItems = append([]entity.ReleasedItem(nil), rel.ReleasedItems...)
	return &cp
}
