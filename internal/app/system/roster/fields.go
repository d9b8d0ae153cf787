// internal/app/system/roster/fields.go
package roster

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dalemusser/orgsync/internal/app/system/normalize"
	"github.com/dalemusser/orgsync/internal/domain/models"
)

// Internal field names that are not attributes.
const (
	FieldIdentity = "normalized_email"
	FieldManager  = "manager_id"
)

// Kind is how a field's raw text is coerced.
type Kind int

const (
	KindText Kind = iota
	KindIdentity
	KindManager
	KindDate
	KindInteger
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindIdentity:
		return "identity"
	case KindManager:
		return "manager"
	case KindDate:
		return "date"
	case KindInteger:
		return "integer"
	case KindBool:
		return "bool"
	default:
		return "text"
	}
}

// Schema assigns a Kind to internal field names. Fields not listed are text.
type Schema map[string]Kind

// DefaultSchema returns the kinds of the known employee fields.
func DefaultSchema() Schema {
	return Schema{
		FieldIdentity:       KindIdentity,
		FieldManager:        KindManager,
		models.AttrHireDate: KindDate,
		models.AttrSalary:   KindInteger,
		models.AttrIsActive: KindBool,
		models.AttrName:     KindText,
	}
}

// KindOf returns the kind of field, defaulting to text.
func (s Schema) KindOf(field string) Kind {
	if k, ok := s[field]; ok {
		return k
	}
	return KindText
}

// FieldMap translates external column headers to internal field names.
// Keys are compared case-insensitively.
type FieldMap map[string]string

// DefaultFieldMap is the column naming used by the roster export.
func DefaultFieldMap() FieldMap {
	return FieldMap{
		"email":     FieldIdentity,
		"manager":   FieldManager,
		"hire date": models.AttrHireDate,
	}
}

// Translate returns the internal name for header. Unmapped headers are
// lower-cased with inner whitespace replaced by "_".
func (m FieldMap) Translate(header string) string {
	h := strings.TrimSpace(strings.TrimPrefix(header, "\ufeff"))
	if f, ok := m[strings.ToLower(h)]; ok {
		return f
	}
	return normalize.Header(h)
}

var fieldNameRe = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// ParseFieldMap parses "Header=field" pairs separated by ";" and layers
// them over DefaultFieldMap. Empty input returns the defaults.
//
//	"Work Email=normalized_email; Reports To=manager_id; Start=hire_date"
func ParseFieldMap(s string) (FieldMap, error) {
	m := DefaultFieldMap()
	for _, pair := range strings.Split(s, ";") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		header, field, ok := strings.Cut(pair, "=")
		header = strings.ToLower(strings.TrimSpace(header))
		field = strings.TrimSpace(field)
		if !ok || header == "" {
			return nil, fmt.Errorf("field map: %q is not Header=field", pair)
		}
		if !fieldNameRe.MatchString(field) {
			return nil, fmt.Errorf("field map: bad field name %q", field)
		}
		m[header] = field
	}
	return m, nil
}
