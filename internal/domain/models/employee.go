// internal/domain/models/employee.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Attribute keys with a known type. Any other column from an upload is kept
// as a plain string under its normalized header name.
const (
	AttrName     = "name"
	AttrSalary   = "salary"
	AttrHireDate = "hire_date"
	AttrIsActive = "is_active"
)

// Employee is the canonical profile for one person, keyed by NormalizedEmail.
//
// NOTE:
//   - The chain of command is not embedded here. It lives in the
//     chain_of_command collection and is maintained by the hierarchy engine.
type Employee struct {
	ID              primitive.ObjectID `bson:"_id" json:"id"`
	NormalizedEmail string             `bson:"normalized_email" json:"email"`
	Manager         ManagerRef         `bson:"manager" json:"-"`
	Attributes      Attributes         `bson:"attributes" json:"attributes"`
	NameCI          string             `bson:"name_ci,omitempty" json:"-"` // lowercase, diacritics-stripped

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Attributes holds the typed, hierarchy-agnostic fields of an employee.
type Attributes map[string]any

// Name returns the display name, or "" if unset.
func (a Attributes) Name() string {
	s, _ := a[AttrName].(string)
	return s
}

// Salary returns the salary and whether it is set.
func (a Attributes) Salary() (int64, bool) {
	switch v := a[AttrSalary].(type) {
	case int64:
		return v, true
	case int32:
		return int64(v), true
	case int:
		return int64(v), true
	}
	return 0, false
}

// HireDate returns the hire date (UTC) and whether it is set.
// Values read back from MongoDB arrive as primitive.DateTime.
func (a Attributes) HireDate() (time.Time, bool) {
	switch v := a[AttrHireDate].(type) {
	case time.Time:
		return v.UTC(), true
	case primitive.DateTime:
		return v.Time().UTC(), true
	}
	return time.Time{}, false
}

// IsActive returns the active flag and whether it is set.
func (a Attributes) IsActive() (bool, bool) {
	b, ok := a[AttrIsActive].(bool)
	return b, ok
}

// Clone returns a shallow copy.
func (a Attributes) Clone() Attributes {
	out := make(Attributes, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}
