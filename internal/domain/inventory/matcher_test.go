package inventory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/stock-release/internal/domain/entity"
	"github.com/jhoicas/stock-release/internal/domain/inventory"
)

func TestNormalizeID(t *testing.T) {
	assert.Equal(t, "cafenegro", inventory.NormalizeID("Café_Negro"))
	assert.Equal(t, "abc123", inventory.NormalizeID(" ABC-123 "))
	assert.Equal(t, "unit01", inventory.NormalizeID("unit.01"))
	assert.Equal(t, "", inventory.NormalizeID("-_-"))
}

func TestMatchID_PrioridadDeComparadores(t *testing.T) {
	tests := []struct {
		candidate, search string
		want              inventory.MatchRank
	}{
		{"ABC123", "ABC123", inventory.MatchExact},
		{"ABC-123", "abc 123", inventory.MatchNormalized},
		{"Café", "CAFE", inventory.MatchNormalized},
		{"ABC123-XL", "abc123", inventory.MatchSubstring},
		{"CAM-VERDE-XL", "verde-xl-algodon", inventory.MatchToken},
		{"CAM-VERDE-XL", "verde-azul-rojo", inventory.MatchNone},
		{"ABC", "XYZ", inventory.MatchNone},
		{"", "ABC", inventory.MatchNone},
	}
	for _, tt := range tests {
		t.Run(tt.candidate+"~"+tt.search, func(t *testing.T) {
			assert.Equal(t, tt.want, inventory.MatchID(tt.candidate, tt.search), "rango %s", inventory.MatchID(tt.candidate, tt.search))
		})
	}
}

func TestMatchID_UnSoloFragmentoNoAlcanzaParaToken(t *testing.T) {
	assert.Equal(t, inventory.MatchNone, inventory.MatchID("CAM-VERDE", "azul"))
}

func TestMatchVariant_ExactoGanaAunqueAparezcaDespues(t *testing.T) {
	variants := []entity.Variant{{ID: "red-xl"}, {ID: "RED"}}

	idx, rank := inventory.MatchVariant(variants, "RED")
	assert.Equal(t, 1, idx)
	assert.Equal(t, inventory.MatchExact, rank)
}

func TestMatchVariant_Normalizado(t *testing.T) {
	variants := []entity.Variant{{ID: "V-RED"}, {ID: "v-blue"}}

	idx, rank := inventory.MatchVariant(variants, "V_BLUE")
	assert.Equal(t, 1, idx)
	assert.Equal(t, inventory.MatchNormalized, rank)
}

func TestMatchVariant_TokenEligeElMejorPuntaje(t *testing.T) {
	variants := []entity.Variant{{ID: "CAM-VERDE-M"}, {ID: "CAM-VERDE-XL-ALGODON"}}

	idx, rank := inventory.MatchVariant(variants, "verde-xl-algodon-premium")
	assert.Equal(t, 1, idx)
	assert.Equal(t, inventory.MatchToken, rank)
}

func TestMatchVariant_SinCoincidencia(t *testing.T) {
	variants := []entity.Variant{{ID: "V-RED"}}

	idx, rank := inventory.MatchVariant(variants, "V-GREEN")
	assert.Equal(t, -1, idx)
	assert.Equal(t, inventory.MatchNone, rank)

	idx, _ = inventory.MatchVariant(variants, "")
	assert.Equal(t, -1, idx)
}

func TestMatchVariant_FragmentosQueNoDistinguenNoCuentan(t *testing.T) {
	// "v" es demasiado corto: V-GREEN no puede caer en V-RED
	idx, rank := inventory.MatchVariant([]entity.Variant{{ID: "V-RED"}, {ID: "V-BLUE"}}, "V-GREEN")
	assert.Equal(t, -1, idx)
	assert.Equal(t, inventory.MatchNone, rank)

	// "cam" está en todas las variantes, así que no identifica a ninguna
	idx, rank = inventory.MatchVariant([]entity.Variant{{ID: "CAM-ROJA-M"}, {ID: "CAM-AZUL-M"}}, "cam-verde-m")
	assert.Equal(t, -1, idx)
	assert.Equal(t, inventory.MatchNone, rank)
}

func TestNameSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, inventory.NameSimilarity("Camisa Roja", "camisa  ROJA"))
	assert.InDelta(t, 0.2, inventory.NameSimilarity("Camisa Roja Talla M", "Camisa Azul"), 1e-9)
	assert.Equal(t, 0.0, inventory.NameSimilarity("", "Camisa"))
}
