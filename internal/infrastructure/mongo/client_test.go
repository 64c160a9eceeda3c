package mongo

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"

	"github.com/jhoicas/stock-release/internal/domain/entity"
)

type priced struct {
	Price decimal.Decimal `bson:"price"`
}

func TestDecimalCodec_GuardaComoDecimal128(t *testing.T) {
	reg := newRegistry()

	data, err := bson.MarshalWithRegistry(reg, priced{Price: decimal.RequireFromString("1234.50")})
	require.NoError(t, err)
	assert.Equal(t, bsontype.Decimal128, bson.Raw(data).Lookup("price").Type)

	var out priced
	require.NoError(t, bson.UnmarshalWithRegistry(reg, data, &out))
	assert.True(t, decimal.RequireFromString("1234.5").Equal(out.Price))
}

func TestDecimalCodec_LeeValoresLegados(t *testing.T) {
	reg := newRegistry()
	cases := map[string]any{
		"99.9": "99.90",
		"7":    int32(7),
		"42":   int64(42),
		"2.5":  2.5,
	}
	for want, stored := range cases {
		data, err := bson.Marshal(bson.D{{Key: "price", Value: stored}})
		require.NoError(t, err)

		var out priced
		require.NoError(t, bson.UnmarshalWithRegistry(reg, data, &out), "valor %v", stored)
		assert.True(t, decimal.RequireFromString(want).Equal(out.Price), "valor %v", stored)
	}
}

func TestStockRecordDoc_ClaveCompuesta(t *testing.T) {
	rec := &entity.StockRecord{
		PartitionID: "unit_01",
		RecordID:    "CAMISA",
		ProductID:   "CAMISA",
		HasVariants: true,
		Variants:    []entity.Variant{{ID: "ROJA", Quantity: 3}},
		Version:     4,
	}

	doc := toStockRecordDoc(rec)
	assert.Equal(t, "unit_01/CAMISA", doc.ID)

	back := doc.toEntity()
	assert.Equal(t, rec.Ref(), back.Ref())
	assert.Equal(t, entity.ShapeEmbeddedVariantBase, back.Shape().Kind)
	assert.Equal(t, int64(4), back.Version)
}
