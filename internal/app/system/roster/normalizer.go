// internal/app/system/roster/normalizer.go
package roster

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dalemusser/orgsync/internal/app/system/htmlsanitize"
	"github.com/dalemusser/orgsync/internal/app/system/inputval"
	"github.com/dalemusser/orgsync/internal/app/system/normalize"
	"github.com/dalemusser/orgsync/internal/domain/models"
)

// DefaultDateLayout is month/day/year, as exported by the HR system.
const DefaultDateLayout = "01/02/2006"

// Candidate is one typed roster record, ready for the upsert engine.
type Candidate struct {
	Line         int
	Email        string // normalized identity
	ManagerEmail string // normalized; "" means no manager
	// ManagerSet is false when the row had no manager cell at all, in which
	// case an existing employee keeps the manager it has.
	ManagerSet bool
	Attributes models.Attributes
}

// Normalizer turns raw header-keyed rows into Candidates.
type Normalizer struct {
	fields     FieldMap
	schema     Schema
	dateLayout string
}

// NewNormalizer returns a Normalizer. Nil or empty arguments fall back to
// DefaultFieldMap, DefaultSchema and DefaultDateLayout.
func NewNormalizer(fields FieldMap, schema Schema, dateLayout string) *Normalizer {
	if len(fields) == 0 {
		fields = DefaultFieldMap()
	}
	if len(schema) == 0 {
		schema = DefaultSchema()
	}
	if dateLayout == "" {
		dateLayout = DefaultDateLayout
	}
	return &Normalizer{fields: fields, schema: schema, dateLayout: dateLayout}
}

// Normalize converts one row. errs holds every per-field problem as
// "line N: field: reason". ok is false when the record cannot be stored
// (no identity, or an unparseable date); the caller must skip it.
//
// Empty cells are treated as absent. A bad integer or bool drops only that
// field. A malformed email is reported but still used. Dates are read
// first; a bad one ends the record with that single error.
func (n *Normalizer) Normalize(line int, raw map[string]string) (c Candidate, errs []string, ok bool) {
	c = Candidate{Line: line, Attributes: models.Attributes{}}
	ok = true

	fail := func(field, format string, args ...any) {
		errs = append(errs, fmt.Sprintf("line %d: %s: ", line, field)+fmt.Sprintf(format, args...))
	}

	type cell struct {
		header, field string
		kind          Kind
	}
	cells := make([]cell, 0, len(raw))
	for h := range raw {
		field := n.fields.Translate(h)
		if field == "" {
			continue
		}
		cells = append(cells, cell{header: h, field: field, kind: n.schema.KindOf(field)})
	}
	// Dates first, then header order, so error output does not depend on
	// column names.
	sort.Slice(cells, func(i, j int) bool {
		di, dj := cells[i].kind == KindDate, cells[j].kind == KindDate
		if di != dj {
			return di
		}
		return cells[i].header < cells[j].header
	})

	for _, cl := range cells {
		field, kind := cl.field, cl.kind
		v := strings.TrimSpace(raw[cl.header])

		if kind == KindManager {
			// An empty manager cell clears the manager.
			c.ManagerSet = true
			c.ManagerEmail = normalize.Email(v)
			continue
		}
		if v == "" {
			continue
		}

		switch kind {
		case KindIdentity:
			c.Email = normalize.Email(v)
			if !inputval.IsValidEmail(c.Email) {
				fail(field, "invalid email %q", c.Email)
			}
		case KindDate:
			t, err := time.Parse(n.dateLayout, v)
			if err != nil {
				fail(field, "invalid date %q (want %s)", v, n.dateLayout)
				return c, errs, false
			}
			c.Attributes[field] = t.UTC()
		case KindInteger:
			i, err := strconv.ParseInt(strings.ReplaceAll(v, ",", ""), 10, 64)
			if err != nil {
				fail(field, "not a whole number: %q", v)
				continue
			}
			c.Attributes[field] = i
		case KindBool:
			b, valid := parseBool(v)
			if !valid {
				fail(field, "not a yes/no value: %q", v)
				continue
			}
			c.Attributes[field] = b
		default:
			s := htmlsanitize.PlainText(v)
			if field == models.AttrName {
				s = normalize.Name(s)
			}
			if s != "" {
				c.Attributes[field] = s
			}
		}
	}

	if c.Email == "" {
		fail(FieldIdentity, "missing email")
		ok = false
	}
	if c.ManagerSet && c.ManagerEmail != "" && c.ManagerEmail == c.Email {
		fail(FieldManager, "employee cannot manage themselves")
		c.ManagerSet = false
		c.ManagerEmail = ""
	}
	return c, errs, ok
}

func parseBool(s string) (b, ok bool) {
	switch strings.ToLower(s) {
	case "true", "yes", "y", "1", "t":
		return true, true
	case "false", "no", "n", "0", "f":
		return false, true
	}
	return false, false
}
