package inventory

import (
	"strings"
)

// SplitLocationHint separa una ruta tipo "unit_01 - Shelf A - Row 2 - 3" en segmentos.
func SplitLocationHint(hint string) []string {
	parts := strings.FieldsFunc(hint, func(r rune) bool {
		switch r {
		case '/', '>', '|', ',':
			return true
		}
		return false
	})
	var out []string
	for _, p := range parts {
		for _, s := range strings.Split(p, " - ") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

// ResolvePartition traduce una pista de ubicación a una partición candidata.
// Orden: primer segmento igual a una partición, prefijo más largo de la pista completa,
// y por último la tabla fija categoría→partición.
func ResolvePartition(hint string, partitions []string, categoryTable map[string]string) (string, bool) {
	segs := SplitLocationHint(hint)
	if len(segs) == 0 {
		return "", false
	}
	first := NormalizeID(segs[0])
	for _, p := range partitions {
		if NormalizeID(p) == first {
			return p, true
		}
	}

	whole := NormalizeID(hint)
	best := ""
	for _, p := range partitions {
		np := NormalizeID(p)
		if np != "" && strings.HasPrefix(whole, np) && len(np) > len(NormalizeID(best)) {
			best = p
		}
	}
	if best != "" {
		return best, true
	}

	for _, key := range []string{segs[0], hint} {
		if p, ok := lookupCategory(categoryTable, key); ok && (len(partitions) == 0 || contains(partitions, p)) {
			return p, true
		}
	}
	return "", false
}

func lookupCategory(table map[string]string, key string) (string, bool) {
	nk := NormalizeID(key)
	for cat, p := range table {
		if NormalizeID(cat) == nk {
			return p, true
		}
	}
	return "", false
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
