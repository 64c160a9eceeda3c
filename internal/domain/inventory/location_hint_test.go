package inventory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/stock-release/internal/domain/inventory"
)

func TestSplitLocationHint(t *testing.T) {
	assert.Equal(t, []string{"unit_01", "Shelf A", "Row 2", "3"}, inventory.SplitLocationHint("unit_01 - Shelf A - Row 2 - 3"))
	assert.Equal(t, []string{"unit_02", "Estante B"}, inventory.SplitLocationHint("unit_02 / Estante B"))
	assert.Empty(t, inventory.SplitLocationHint("  "))
}

func TestResolvePartition(t *testing.T) {
	partitions := []string{"unit_0", "unit_01", "unit_02", "unit_03"}
	categories := map[string]string{"electronica": "unit_03"}

	tests := []struct {
		name string
		hint string
		want string
		ok   bool
	}{
		{name: "primer segmento", hint: "unit_01 - Shelf A - Row 2", want: "unit_01", ok: true},
		{name: "segmento normalizado", hint: "UNIT-02 / Estante B", want: "unit_02", ok: true},
		{name: "prefijo más largo", hint: "unit02shelfA", want: "unit_02", ok: true},
		{name: "tabla de categorías", hint: "Electrónica - Estante 1", want: "unit_03", ok: true},
		{name: "sin coincidencia", hint: "bodega norte", ok: false},
		{name: "pista vacía", hint: "", ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := inventory.ResolvePartition(tt.hint, partitions, categories)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolvePartition_CategoriaFueraDeLasParticionesExistentes(t *testing.T) {
	_, ok := inventory.ResolvePartition("Ropa", []string{"unit_01"}, map[string]string{"ropa": "unit_09"})
	assert.False(t, ok)
}
