package inventory

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jhoicas/stock-release/internal/domain/entity"
	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MatchRank calidad de una coincidencia de ids; mayor es mejor.
type MatchRank int

const (
	MatchNone MatchRank = iota
	MatchToken
	MatchSubstring
	MatchNormalized
	MatchExact
)

func (r MatchRank) String() string {
	switch r {
	case MatchExact:
		return "exact"
	case MatchNormalized:
		return "normalized"
	case MatchSubstring:
		return "substring"
	case MatchToken:
		return "token"
	default:
		return "none"
	}
}

// NormalizeID forma canónica de un id: case folding, sin acentos y sin separadores.
func NormalizeID(id string) string {
	return strings.Map(func(r rune) rune {
		if isSeparator(r) {
			return -1
		}
		return r
	}, fold(id))
}

// fold aplica case folding y elimina marcas diacríticas. Caser y transformers no son
// seguros entre goroutines, por eso se crean por llamada.
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}
	return cases.Fold().String(strings.TrimSpace(stripped))
}

func isSeparator(r rune) bool {
	switch r {
	case '-', '_', '.', '/', '\\', ':', '#':
		return true
	}
	return unicode.IsSpace(r)
}

type comparator struct {
	rank MatchRank
	fn   func(candidate, search string) bool
}

// comparators en orden estricto de prioridad; la primera que acierta corta la búsqueda.
var comparators = []comparator{
	{MatchExact, func(c, s string) bool { return c == s }},
	{MatchNormalized, func(c, s string) bool {
		nc, ns := NormalizeID(c), NormalizeID(s)
		return nc != "" && nc == ns
	}},
	{MatchSubstring, func(c, s string) bool {
		nc, ns := NormalizeID(c), NormalizeID(s)
		if nc == "" || ns == "" {
			return false
		}
		return strings.Contains(nc, ns) || strings.Contains(ns, nc)
	}},
}

// MatchID compara un id candidato contra el buscado y devuelve el mejor rango que aplica.
func MatchID(candidate, search string) MatchRank {
	for _, c := range comparators {
		if c.fn(candidate, search) {
			return c.rank
		}
	}
	if tokenScore(NormalizeID(candidate), searchFragments(search), nil) > 0 {
		return MatchToken
	}
	return MatchNone
}

// MatchVariant busca el id dentro de las variantes embebidas: primero exacto en todas, luego
// normalizado, luego subcadena y por último coincidencia parcial por fragmentos.
// Devuelve -1 y MatchNone si nada coincide.
func MatchVariant(variants []entity.Variant, search string) (int, MatchRank) {
	if search == "" {
		return -1, MatchNone
	}
	for _, c := range comparators {
		for i, v := range variants {
			if c.fn(v.ID, search) {
				return i, c.rank
			}
		}
	}

	frags := searchFragments(search)
	shared := sharedFragments(variants, frags)
	best, bestScore := -1, 0
	for i, v := range variants {
		if score := tokenScore(NormalizeID(v.ID), frags, shared); score > bestScore {
			best, bestScore = i, score
		}
	}
	if best < 0 {
		return -1, MatchNone
	}
	return best, MatchToken
}

// minFragmentRunes largo mínimo de un fragmento útil; "v" o "p" aparecen en casi cualquier id.
const minFragmentRunes = 2

// searchFragments parte el id buscado por guiones y guiones bajos y descarta fragmentos cortos.
func searchFragments(search string) []string {
	raw := strings.FieldsFunc(search, func(r rune) bool { return r == '-' || r == '_' })
	frags := make([]string, 0, len(raw))
	for _, f := range raw {
		if n := NormalizeID(f); utf8.RuneCountInString(n) >= minFragmentRunes {
			frags = append(frags, n)
		}
	}
	return frags
}

// sharedFragments fragmentos presentes en todas las variantes: no distinguen a ninguna.
// Con una sola variante no hay con qué comparar y no se descarta nada.
func sharedFragments(variants []entity.Variant, frags []string) map[string]bool {
	if len(variants) < 2 {
		return nil
	}
	shared := make(map[string]bool)
	for _, f := range frags {
		all := true
		for _, v := range variants {
			if !strings.Contains(NormalizeID(v.ID), f) {
				all = false
				break
			}
		}
		if all {
			shared[f] = true
		}
	}
	return shared
}

// tokenScore cuántos fragmentos distintivos aparecen en el candidato. Se exigen al menos dos
// fragmentos, que coincida la mitad o más y que al menos uno no esté en shared; si no, 0.
func tokenScore(candidate string, frags []string, shared map[string]bool) int {
	if candidate == "" || len(frags) < 2 {
		return 0
	}
	hits, distinct := 0, 0
	for _, f := range frags {
		if strings.Contains(candidate, f) {
			hits++
			if !shared[f] {
				distinct++
			}
		}
	}
	if distinct == 0 || hits*2 < len(frags) {
		return 0
	}
	return distinct
}

// NameSimilarity similitud de Jaccard entre palabras normalizadas de dos nombres (0..1).
func NameSimilarity(a, b string) float64 {
	wa, wb := words(a), words(b)
	if len(wa) == 0 || len(wb) == 0 {
		return 0
	}
	inter := 0
	for w := range wa {
		if _, ok := wb[w]; ok {
			inter++
		}
	}
	union := len(wa) + len(wb) - inter
	return float64(inter) / float64(union)
}

func words(s string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, w := range strings.FieldsFunc(fold(s), isSeparator) {
		out[w] = struct{}{}
	}
	return out
}
