package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jhoicas/stock-release/internal/domain"
	"github.com/jhoicas/stock-release/internal/domain/entity"
	"github.com/jhoicas/stock-release/internal/domain/repository"
)

var (
	_ repository.StockRecordRepository       = (*StockRecordRepo)(nil)
	_ repository.ReleaseRepository           = (*ReleaseRepo)(nil)
	_ repository.ReleaseLogRepository        = (*ReleaseLogRepo)(nil)
	_ repository.StockMovementRepository     = (*StockMovementRepo)(nil)
	_ repository.RestockingRequestRepository = (*RestockingRequestRepo)(nil)
	_ repository.NotificationRepository      = (*NotificationRepo)(nil)
)

// errVersionConflict el documento cambió entre la lectura y la escritura de la transacción.
var errVersionConflict = errors.New("versión del registro cambió durante la transacción")

// StockRecordRepo registros de stock. Dentro de una transacción el ctx es la sesión.
type StockRecordRepo struct {
	db *mongo.Database
}

// NewStockRecordRepository construye el adaptador.
func NewStockRecordRepository(db *mongo.Database) *StockRecordRepo {
	return &StockRecordRepo{db: db}
}

func (r *StockRecordRepo) records() *mongo.Collection { return r.db.Collection(colStockRecords) }

// ListPartitions particiones aprovisionadas ordenadas por id.
func (r *StockRecordRepo) ListPartitions(ctx context.Context) ([]entity.StoragePartition, error) {
	cur, err := r.db.Collection(colPartitions).Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list partitions: %w", err)
	}
	var docs []partitionDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode partitions: %w", err)
	}
	out := make([]entity.StoragePartition, 0, len(docs))
	for _, d := range docs {
		out = append(out, entity.StoragePartition{ID: d.ID, Name: d.Name, Category: d.Category})
	}
	return out, nil
}

// FindFlatVariant documento de variante plana con clave variantID.
func (r *StockRecordRepo) FindFlatVariant(ctx context.Context, partitionID, variantID string) (*entity.StockRecord, error) {
	ref := entity.RecordRef{PartitionID: partitionID, RecordID: variantID}
	return r.findOne(ctx, "find flat variant", bson.D{{Key: "_id", Value: recordKey(ref)}, {Key: "is_variant", Value: true}})
}

// GetProduct documento base del producto.
func (r *StockRecordRepo) GetProduct(ctx context.Context, partitionID, productID string) (*entity.StockRecord, error) {
	ref := entity.RecordRef{PartitionID: partitionID, RecordID: productID}
	return r.findOne(ctx, "get product", bson.D{{Key: "_id", Value: recordKey(ref)}, {Key: "is_variant", Value: false}})
}

// ListProducts productos base de la partición.
func (r *StockRecordRepo) ListProducts(ctx context.Context, partitionID string) ([]*entity.StockRecord, error) {
	filter := bson.D{{Key: "partition_id", Value: partitionID}, {Key: "is_variant", Value: false}}
	cur, err := r.records().Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "record_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	var docs []stockRecordDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	out := make([]*entity.StockRecord, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toEntity())
	}
	return out, nil
}

// GetForUpdate lectura dentro de la sesión; el conflicto se detecta al escribir por versión.
func (r *StockRecordRepo) GetForUpdate(ctx context.Context, ref entity.RecordRef) (*entity.StockRecord, error) {
	return r.findOne(ctx, "get stock record for update", bson.D{{Key: "_id", Value: recordKey(ref)}})
}

// UpdateQuantity escribe cantidad, variantes y updated_at si la versión leída sigue vigente.
func (r *StockRecordRepo) UpdateQuantity(ctx context.Context, rec *entity.StockRecord) error {
	filter := bson.D{{Key: "_id", Value: recordKey(rec.Ref())}, {Key: "version", Value: rec.Version}}
	update := bson.D{
		{Key: "$set", Value: bson.D{
			{Key: "quantity", Value: rec.Quantity},
			{Key: "variants", Value: rec.Variants},
			{Key: "updated_at", Value: rec.UpdatedAt},
		}},
		{Key: "$inc", Value: bson.D{{Key: "version", Value: 1}}},
	}
	res, err := r.records().UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("update stock quantity: %w", err)
	}
	if res.MatchedCount == 0 {
		return errVersionConflict
	}
	rec.Version++
	return nil
}

// Upsert reemplaza el documento completo (carga de datos).
func (r *StockRecordRepo) Upsert(ctx context.Context, rec *entity.StockRecord) error {
	doc := toStockRecordDoc(rec)
	_, err := r.records().ReplaceOne(ctx, bson.D{{Key: "_id", Value: doc.ID}}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert stock record: %w", err)
	}
	return nil
}

// UpsertPartition registra o actualiza una partición.
func (r *StockRecordRepo) UpsertPartition(ctx context.Context, p entity.StoragePartition) error {
	doc := partitionDoc{ID: p.ID, Name: p.Name, Category: p.Category}
	_, err := r.db.Collection(colPartitions).ReplaceOne(ctx, bson.D{{Key: "_id", Value: p.ID}}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert partition: %w", err)
	}
	return nil
}

func (r *StockRecordRepo) findOne(ctx context.Context, op string, filter bson.D) (*entity.StockRecord, error) {
	var doc stockRecordDoc
	err := r.records().FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return doc.toEntity(), nil
}

// ReleaseRepo salidas.
type ReleaseRepo struct {
	col *mongo.Collection
}

// NewReleaseRepository construye el adaptador.
func NewReleaseRepository(db *mongo.Database) *ReleaseRepo {
	return &ReleaseRepo{col: db.Collection(colReleases)}
}

// GetByID obtiene una salida por ID.
func (r *ReleaseRepo) GetByID(ctx context.Context, id string) (*entity.Release, error) {
	var doc releaseDoc
	if err := r.col.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("get release: %w", err)
	}
	return doc.toEntity(), nil
}

// Claim pasa la salida de pending a processing con un único FindOneAndUpdate; solo un llamador gana.
func (r *ReleaseRepo) Claim(ctx context.Context, id string) (*entity.Release, error) {
	filter := bson.D{{Key: "_id", Value: id}, {Key: "status", Value: entity.ReleaseStatusPending}}
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "status", Value: entity.ReleaseStatusProcessing},
		{Key: "updated_at", Value: time.Now()},
	}}}
	var doc releaseDoc
	err := r.col.FindOneAndUpdate(ctx, filter, update, options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&doc)
	if err == nil {
		return doc.toEntity(), nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
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
	filter := bson.D{{Key: "_id", Value: id}, {Key: "status", Value: entity.ReleaseStatusProcessing}}
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "status", Value: entity.ReleaseStatusPending},
		{Key: "updated_at", Value: time.Now()},
	}}}
	res, err := r.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("unclaim release: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrConflict
	}
	return nil
}

// MarkReleased cierra una salida tomada con el snapshot liberado.
func (r *ReleaseRepo) MarkReleased(ctx context.Context, rel *entity.Release) error {
	filter := bson.D{{Key: "_id", Value: rel.ID}, {Key: "status", Value: entity.ReleaseStatusProcessing}}
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "status", Value: rel.Status},
		{Key: "released_items", Value: rel.ReleasedItems},
		{Key: "released_by", Value: rel.ReleasedBy},
		{Key: "released_at", Value: rel.ReleasedAt},
		{Key: "updated_at", Value: rel.UpdatedAt},
	}}}
	res, err := r.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("mark release: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrConflict
	}
	return nil
}

// Create inserta una salida pendiente.
func (r *ReleaseRepo) Create(ctx context.Context, rel *entity.Release) error {
	doc := releaseDoc{
		ID: rel.ID, Reference: rel.Reference, Status: rel.Status, Items: rel.Items,
		CreatedAt: rel.CreatedAt, UpdatedAt: rel.UpdatedAt,
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("insert release: %w", err)
	}
	return nil
}

// ReleaseLogRepo bitácora de salidas.
type ReleaseLogRepo struct {
	col *mongo.Collection
}

// NewReleaseLogRepository construye el adaptador.
func NewReleaseLogRepository(db *mongo.Database) *ReleaseLogRepo {
	return &ReleaseLogRepo{col: db.Collection(colReleaseLogs)}
}

// Create persiste una entrada.
func (r *ReleaseLogRepo) Create(ctx context.Context, l *entity.ReleaseLog) error {
	doc := releaseLogDoc{
		ID: l.ID, ReleaseID: l.ReleaseID, Items: l.Items, TotalUnits: l.TotalUnits,
		TotalValue: l.TotalValue, ActorUID: l.ActorUID, ActorName: l.ActorName, CreatedAt: l.CreatedAt,
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert release log: %w", err)
	}
	return nil
}

// StockMovementRepo movimientos de stock.
type StockMovementRepo struct {
	col *mongo.Collection
}

// NewStockMovementRepository construye el adaptador.
func NewStockMovementRepository(db *mongo.Database) *StockMovementRepo {
	return &StockMovementRepo{col: db.Collection(colMovements)}
}

// Create persiste un movimiento.
func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	doc := movementDoc{
		ID: m.ID, Type: m.Type, Reason: m.Reason, ProductID: m.ProductID, VariantID: m.VariantID,
		Name: m.Name, Quantity: m.Quantity, UnitPrice: m.UnitPrice, TotalValue: m.TotalValue,
		ReleaseID: m.ReleaseID, Locations: m.Locations, CreatedBy: m.CreatedBy, CreatedAt: m.CreatedAt,
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("create stock movement: %w", err)
	}
	return nil
}

// ListByRelease movimientos de una salida.
func (r *StockMovementRepo) ListByRelease(ctx context.Context, releaseID string) ([]*entity.StockMovement, error) {
	cur, err := r.col.Find(ctx, bson.D{{Key: "release_id", Value: releaseID}}, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list stock movements: %w", err)
	}
	var docs []movementDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode stock movements: %w", err)
	}
	out := make([]*entity.StockMovement, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toEntity())
	}
	return out, nil
}

// RestockingRequestRepo solicitudes de reposición.
type RestockingRequestRepo struct {
	col *mongo.Collection
}

// NewRestockingRequestRepository construye el adaptador.
func NewRestockingRequestRepository(db *mongo.Database) *RestockingRequestRepo {
	return &RestockingRequestRepo{col: db.Collection(colRestocks)}
}

// Create persiste una solicitud.
func (r *RestockingRequestRepo) Create(ctx context.Context, req *entity.RestockingRequest) error {
	doc := restockDoc{
		ID: req.ID, ProductID: req.ProductID, VariantID: req.VariantID, ProductName: req.ProductName,
		CurrentQuantity: req.CurrentQuantity, RestockLevel: req.RestockLevel,
		MaximumStockLevel: req.MaximumStockLevel, SuggestedOrderQuantity: req.SuggestedOrderQuantity,
		Priority: req.Priority, PartitionID: req.PartitionID, RecordID: req.RecordID, Location: req.Location,
		ReleaseID: req.ReleaseID, RequestedBy: req.RequestedBy, RequestedByName: req.RequestedByName,
		CreatedAt: req.CreatedAt,
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("create restocking request: %w", err)
	}
	return nil
}

// NotificationRepo notificaciones por rol.
type NotificationRepo struct {
	col *mongo.Collection
}

// NewNotificationRepository construye el adaptador.
func NewNotificationRepository(db *mongo.Database) *NotificationRepo {
	return &NotificationRepo{col: db.Collection(colNotifications)}
}

// Create persiste una notificación.
func (r *NotificationRepo) Create(ctx context.Context, n *entity.Notification) error {
	doc := notificationDoc{
		ID: n.ID, Type: n.Type, Priority: n.Priority, Title: n.Title, Message: n.Message,
		Details: n.Details, TargetRoles: n.TargetRoles, Status: n.Status, CreatedBy: n.CreatedBy,
		CreatedAt: n.CreatedAt,
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}

// ListActiveByRole activas para el rol, más recientes primero.
func (r *NotificationRepo) ListActiveByRole(ctx context.Context, role string, limit, offset int) ([]*entity.Notification, error) {
	filter := bson.D{{Key: "status", Value: entity.NotificationStatusActive}, {Key: "target_roles", Value: role}}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	var docs []notificationDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode notifications: %w", err)
	}
	out := make([]*entity.Notification, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toEntity())
	}
	return out, nil
}

// MarkRead marca una notificación como leída.
func (r *NotificationRepo) MarkRead(ctx context.Context, id string) error {
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "status", Value: entity.NotificationStatusRead},
		{Key: "read_at", Value: time.Now()},
	}}}
	res, err := r.col.UpdateOne(ctx, bson.D{{Key: "_id", Value: id}}, update)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}
