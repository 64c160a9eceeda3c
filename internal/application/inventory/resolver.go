package inventory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/jhoicas/stock-release/internal/domain/entity"
	domaininv "github.com/jhoicas/stock-release/internal/domain/inventory"
	"github.com/jhoicas/stock-release/internal/domain/repository"
	"github.com/jhoicas/stock-release/pkg/logger"
)

var tracer = otel.Tracer("github.com/jhoicas/stock-release/internal/application/inventory")

// Estrategias con las que se resolvió una ubicación.
const (
	StrategyFlatVariant = "flat_variant"
	StrategyHint        = "hint"
	StrategyScan        = "scan"
	StrategyQuotation   = "quotation"
)

// quotationMinSimilarity similitud mínima de nombre para aceptar un candidato de cotización.
const quotationMinSimilarity = 0.5

// LocateQuery datos de búsqueda de un producto/variante.
type LocateQuery struct {
	ProductID        string
	VariantID        string
	Name             string
	Category         string
	FullLocationHint string
	PartitionHint    string
	Quotation        bool
}

// QueryFromItem arma la consulta a partir de un renglón de salida.
func QueryFromItem(item entity.ReleaseLineItem) LocateQuery {
	return LocateQuery{
		ProductID:        item.ProductID,
		VariantID:        item.VariantID,
		Name:             item.Name,
		Category:         item.Category,
		FullLocationHint: item.LocationHint(),
		PartitionHint:    item.StorageLocation,
		Quotation:        item.Quotation,
	}
}

// Resolution resultado del resolver. Handles vacío significa "no localizado"; un producto
// localizado sin stock aparece como handle con cantidad cero.
type Resolution struct {
	Handles    []entity.StockHandle
	Strategy   string
	Checked    []string
	Mismatches []entity.RecordRef
}

func (r *Resolution) checked(loc string) {
	for _, c := range r.Checked {
		if c == loc {
			return
		}
	}
	r.Checked = append(r.Checked, loc)
}

// LocationResolver localiza todos los registros que pueden satisfacer un producto/variante
// en todas las particiones, con estrategias de más a menos específica.
type LocationResolver struct {
	records       repository.StockRecordRepository
	categoryTable map[string]string
	log           *logger.Logger
}

// NewLocationResolver construye el resolver. categoryTable es la tabla fija categoría→partición.
func NewLocationResolver(records repository.StockRecordRepository, categoryTable map[string]string, log *logger.Logger) *LocationResolver {
	return &LocationResolver{records: records, categoryTable: categoryTable, log: log.Component("location_resolver")}
}

// Resolve aplica en orden: variante plana, pista de ubicación, barrido completo y, para
// cotizaciones, similitud de nombre/categoría. Se detiene en la primera coincidencia definitiva.
func (r *LocationResolver) Resolve(ctx context.Context, q LocateQuery) (*Resolution, error) {
	ctx, span := tracer.Start(ctx, "stock.resolve")
	defer span.End()
	span.SetAttributes(
		attribute.String("product.id", q.ProductID),
		attribute.String("product.variant_id", q.VariantID),
	)

	partitions, err := r.records.ListPartitions(ctx)
	if err != nil {
		return nil, fmt.Errorf("listar particiones: %w", err)
	}
	ids := make([]string, 0, len(partitions))
	for _, p := range partitions {
		ids = append(ids, p.ID)
	}

	res := &Resolution{}

	// 1) Variante plana: registro autoritativo único, aunque tenga cantidad cero.
	if q.VariantID != "" {
		for _, pid := range ids {
			rec, err := r.records.FindFlatVariant(ctx, pid, q.VariantID)
			if err != nil {
				return nil, fmt.Errorf("buscar variante %s en %s: %w", q.VariantID, pid, err)
			}
			if rec == nil || !linked(rec.ProductID, q.ProductID) {
				continue
			}
			res.checked(rec.Location())
			res.Handles = []entity.StockHandle{{
				Ref:          rec.Ref(),
				Shape:        entity.ShapeFlatVariant,
				VariantID:    rec.RecordID,
				VariantIndex: -1,
				Quantity:     rec.Quantity,
				Location:     rec.Location(),
				Record:       rec,
			}}
			res.Strategy = StrategyFlatVariant
			span.SetAttributes(attribute.String("resolve.strategy", res.Strategy))
			return res, nil
		}
	}

	// 2) Pista de ubicación: lectura por clave en la partición sugerida.
	visited := make(map[entity.RecordRef]bool)
	if pid, ok := r.hintedPartition(q, ids); ok {
		rec, err := r.records.GetProduct(ctx, pid, q.ProductID)
		if err != nil {
			return nil, fmt.Errorf("leer producto %s en %s: %w", q.ProductID, pid, err)
		}
		res.checked(pid)
		if rec != nil {
			visited[rec.Ref()] = true
			if h, ok := r.handleFor(rec, q, res); ok {
				res.Handles = []entity.StockHandle{h}
				res.Strategy = StrategyHint
				span.SetAttributes(attribute.String("resolve.strategy", res.Strategy))
				return res, nil
			}
		}
	}

	// 3) Barrido de todas las particiones.
	var catalog []*entity.StockRecord
	for _, pid := range ids {
		products, err := r.records.ListProducts(ctx, pid)
		if err != nil {
			return nil, fmt.Errorf("listar productos de %s: %w", pid, err)
		}
		res.checked(pid)
		catalog = append(catalog, products...)
		for _, rec := range products {
			if visited[rec.Ref()] || domaininv.MatchID(rec.ProductID, q.ProductID) < domaininv.MatchNormalized {
				continue
			}
			visited[rec.Ref()] = true
			if h, ok := r.handleFor(rec, q, res); ok {
				res.Handles = append(res.Handles, h)
			}
		}
	}
	if len(res.Handles) > 0 {
		res.Strategy = StrategyScan
	} else if q.Quotation {
		res.Handles = r.quotationCandidates(catalog, q, res)
		if len(res.Handles) > 0 {
			res.Strategy = StrategyQuotation
		}
	}

	sort.SliceStable(res.Handles, func(i, j int) bool { return res.Handles[i].Quantity > res.Handles[j].Quantity })
	span.SetAttributes(
		attribute.String("resolve.strategy", res.Strategy),
		attribute.Int("resolve.handles", len(res.Handles)),
	)
	return res, nil
}

func (r *LocationResolver) hintedPartition(q LocateQuery, ids []string) (string, bool) {
	if q.PartitionHint != "" {
		n := domaininv.NormalizeID(q.PartitionHint)
		for _, id := range ids {
			if domaininv.NormalizeID(id) == n {
				return id, true
			}
		}
	}
	if q.FullLocationHint == "" {
		return "", false
	}
	return domaininv.ResolvePartition(q.FullLocationHint, ids, r.categoryTable)
}

// handleFor construye el handle según la forma del registro. Un producto con variantes
// embebidas donde la variante pedida no aparece no califica (se anota como mismatch).
func (r *LocationResolver) handleFor(rec *entity.StockRecord, q LocateQuery, res *Resolution) (entity.StockHandle, bool) {
	h := entity.StockHandle{
		Ref:          rec.Ref(),
		VariantIndex: -1,
		Location:     rec.Location(),
		Record:       rec,
	}
	shape := rec.Shape()
	switch {
	case shape.Kind == entity.ShapeFlatVariant:
		h.Shape = entity.ShapeFlatVariant
		h.VariantID = rec.RecordID
		h.Quantity = rec.Quantity
	case shape.Kind == entity.ShapeEmbeddedVariantBase && q.VariantID != "":
		idx, rank := domaininv.MatchVariant(shape.Variants, q.VariantID)
		if idx < 0 {
			res.Mismatches = append(res.Mismatches, rec.Ref())
			r.log.Warn().
				Str("product_id", q.ProductID).
				Str("variant_id", q.VariantID).
				Str("location", rec.Location()).
				Msg("producto con variantes sin la variante solicitada; ubicación descartada")
			return h, false
		}
		v := shape.Variants[idx]
		h.Shape = entity.ShapeEmbeddedVariantBase
		h.VariantID = v.ID
		h.VariantIndex = idx
		h.Quantity = v.Quantity
		h.Location = rec.Location() + " [" + v.ID + "]"
		if rank != domaininv.MatchExact {
			r.log.Debug().Str("search", q.VariantID).Str("matched", v.ID).Str("rank", rank.String()).Msg("variante resuelta por coincidencia aproximada")
		}
	default:
		// Sin variantes embebidas (o sin variante pedida): cantidad propia del producto.
		h.Shape = entity.ShapePlainBase
		h.Quantity = rec.Quantity
	}
	return h, true
}

// quotationCandidates último recurso para productos de cotización: entradas del catálogo
// con nombre (y opcionalmente categoría) parecidos. Solo se conservan las de mejor puntaje.
func (r *LocationResolver) quotationCandidates(catalog []*entity.StockRecord, q LocateQuery, res *Resolution) []entity.StockHandle {
	if q.Name == "" {
		return nil
	}
	best := 0.0
	var out []entity.StockHandle
	for _, rec := range catalog {
		score := domaininv.NameSimilarity(q.Name, rec.Name)
		if q.Category != "" && strings.EqualFold(strings.TrimSpace(q.Category), strings.TrimSpace(rec.Category)) {
			score += 0.25
		}
		if score < quotationMinSimilarity || score < best {
			continue
		}
		h, ok := r.handleFor(rec, LocateQuery{ProductID: rec.ProductID, Name: q.Name}, res)
		if !ok {
			continue
		}
		if score > best {
			best, out = score, nil
		}
		out = append(out, h)
	}
	if len(out) > 0 {
		r.log.Warn().
			Str("product_id", q.ProductID).
			Str("name", q.Name).
			Float64("score", best).
			Int("candidates", len(out)).
			Msg("producto de cotización resuelto por similitud de nombre")
	}
	return out
}

// linked valida el vínculo padre de una variante plana; sin productId pedido se acepta.
func linked(parentID, productID string) bool {
	if productID == "" {
		return true
	}
	return domaininv.MatchID(parentID, productID) >= domaininv.MatchNormalized
}
