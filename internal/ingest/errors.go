package ingest

import (
	"errors"
	"fmt"
	"strings"

	"github.com/schollz/closestmatch"
)

var (
	ErrNoRows         = errors.New("sheet has no data rows")
	ErrMissingColumns = errors.New("required columns not found")
)

// MissingColumnsError names the required fields a sheet lacks. Suggestions
// holds, per missing field, the closest header found in the sheet.
type MissingColumnsError struct {
	Fields      []Field
	Suggestions map[Field]string
}

func newMissingColumnsError(fields []Field, headers []string) *MissingColumnsError {
	e := &MissingColumnsError{
		Fields:      fields,
		Suggestions: make(map[Field]string),
	}

	candidates := make([]string, 0, len(headers))
	byNormalized := make(map[string]string, len(headers))

	for _, h := range headers {
		n := Normalize(h)
		if n == "" {
			continue
		}

		if _, dup := byNormalized[n]; !dup {
			byNormalized[n] = h
			candidates = append(candidates, n)
		}
	}

	if len(candidates) == 0 {
		return e
	}

	cm := closestmatch.New(candidates, []int{2, 3})

	for _, f := range fields {
		if best := cm.Closest(Normalize(headerOf(f))); best != "" {
			e.Suggestions[f] = byNormalized[best]
		}
	}

	return e
}

func (e *MissingColumnsError) Error() string {
	parts := make([]string, 0, len(e.Fields))

	for _, f := range e.Fields {
		p := fmt.Sprintf("%q", headerOf(f))
		if s, ok := e.Suggestions[f]; ok {
			p += fmt.Sprintf(" (closest header: %q)", s)
		}

		parts = append(parts, p)
	}

	return fmt.Sprintf("%s: %s", ErrMissingColumns, strings.Join(parts, ", "))
}

func (e *MissingColumnsError) Is(target error) bool {
	return target == ErrMissingColumns
}
