package ingest

import (
	"cmp"
	"slices"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize folds a header for comparison: lower case, no underscores, no
// whitespace and no diacritics. "Nom_Centro" and "nom centro" both become
// "nomcentro"; "Categoría" becomes "categoria".
func Normalize(s string) string {
	s = stripAccents(strings.ToLower(strings.TrimSpace(s)))

	return strings.Map(func(r rune) rune {
		if r == '_' || unicode.IsSpace(r) {
			return -1
		}

		return r
	}, s)
}

func stripAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}

	return out
}

// MatchKind tells how a field was bound to a header.
type MatchKind int

const (
	Unresolved MatchKind = iota
	Exact
	Approximate
)

func (k MatchKind) String() string {
	switch k {
	case Exact:
		return "exact"
	case Approximate:
		return "approximate"
	default:
		return "unresolved"
	}
}

func (k MatchKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Match is the resolution outcome of one field. Index is -1 when unresolved.
type Match struct {
	Field  Field     `json:"field"`
	Kind   MatchKind `json:"kind"`
	Index  int       `json:"index"`
	Header string    `json:"header,omitempty"`
}

func (m Match) Resolved() bool {
	return m.Kind != Unresolved
}

// Columns maps every schema field to its match. It is built once per sheet
// and only read afterwards.
type Columns map[Field]Match

// Resolve binds each schema field to a header. A header whose normalized form
// equals the field's wins outright; otherwise the first header containing it
// is taken as an approximate match.
func Resolve(headers []string, schema []Column) Columns {
	normalized := make([]string, len(headers))
	for i, h := range headers {
		normalized[i] = Normalize(h)
	}

	cols := make(Columns, len(schema))

	for _, c := range schema {
		cols[c.Field] = resolveOne(c, headers, normalized)
	}

	return cols
}

func resolveOne(c Column, headers, normalized []string) Match {
	want := Normalize(c.Header)
	if want == "" {
		return Match{Field: c.Field, Index: -1}
	}

	if i := slices.Index(normalized, want); i >= 0 {
		return Match{Field: c.Field, Kind: Exact, Index: i, Header: headers[i]}
	}

	for i, h := range normalized {
		if strings.Contains(h, want) {
			return Match{Field: c.Field, Kind: Approximate, Index: i, Header: headers[i]}
		}
	}

	return Match{Field: c.Field, Index: -1}
}

// Index returns the column position of f, or -1.
func (c Columns) Index(f Field) int {
	m, ok := c[f]
	if !ok || !m.Resolved() {
		return -1
	}

	return m.Index
}

// Has reports whether f resolved to a column.
func (c Columns) Has(f Field) bool {
	return c.Index(f) >= 0
}

// Missing returns the given fields that did not resolve, in argument order.
func (c Columns) Missing(fields ...Field) []Field {
	var out []Field

	for _, f := range fields {
		if !c.Has(f) {
			out = append(out, f)
		}
	}

	return out
}

// Approximate returns the fallback matches ordered by column position.
func (c Columns) Approximate() []Match {
	var out []Match

	for _, m := range c {
		if m.Kind == Approximate {
			out = append(out, m)
		}
	}

	slices.SortFunc(out, func(a, b Match) int {
		return cmp.Or(cmp.Compare(a.Index, b.Index), strings.Compare(string(a.Field), string(b.Field)))
	})

	return out
}

// cell returns the trimmed value of f in row, or "" when the field is
// unresolved or the row is short.
func (c Columns) cell(row []string, f Field) string {
	idx := c.Index(f)
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}
