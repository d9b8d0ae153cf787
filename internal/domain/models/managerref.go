// internal/domain/models/managerref.go
package models

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ManagerKind identifies which state a ManagerRef is in.
type ManagerKind int

const (
	// ManagerNone means the employee has no manager (top of the hierarchy).
	ManagerNone ManagerKind = iota
	// ManagerResolved means the manager is a known employee _id.
	ManagerResolved
	// ManagerPending means the manager is a raw email that did not match any
	// employee when it was written. The reconciler retries these.
	ManagerPending
)

func (k ManagerKind) String() string {
	switch k {
	case ManagerResolved:
		return "resolved"
	case ManagerPending:
		return "pending"
	default:
		return "none"
	}
}

// ManagerRef is the manager link of an employee. Exactly one of the three
// states holds; the zero value is ManagerNone.
//
// Stored in MongoDB as:
//
//	null                      no manager
//	{ "id": ObjectId(...) }   resolved
//	{ "pending": "a@b.com" }  pending (forward reference)
//
// Queries use "manager.id" and "manager.pending".
type ManagerRef struct {
	kind    ManagerKind
	id      primitive.ObjectID
	pending string
}

// NoManager returns a ref with no manager.
func NoManager() ManagerRef { return ManagerRef{} }

// ResolvedManager returns a ref pointing at an existing employee.
func ResolvedManager(id primitive.ObjectID) ManagerRef {
	return ManagerRef{kind: ManagerResolved, id: id}
}

// PendingManager returns a forward reference to a not-yet-known employee.
// The email should already be normalized.
func PendingManager(email string) ManagerRef {
	if email == "" {
		return NoManager()
	}
	return ManagerRef{kind: ManagerPending, pending: email}
}

// Kind reports which state the ref is in.
func (m ManagerRef) Kind() ManagerKind { return m.kind }

// ID returns the resolved manager id. ok is false unless Kind is ManagerResolved.
func (m ManagerRef) ID() (id primitive.ObjectID, ok bool) {
	return m.id, m.kind == ManagerResolved
}

// Pending returns the unresolved manager email. ok is false unless Kind is
// ManagerPending.
func (m ManagerRef) Pending() (email string, ok bool) {
	return m.pending, m.kind == ManagerPending
}

// Equal reports whether two refs denote the same manager link.
func (m ManagerRef) Equal(o ManagerRef) bool {
	if m.kind != o.kind {
		return false
	}
	switch m.kind {
	case ManagerResolved:
		return m.id == o.id
	case ManagerPending:
		return m.pending == o.pending
	}
	return true
}

func (m ManagerRef) String() string {
	switch m.kind {
	case ManagerResolved:
		return "resolved(" + m.id.Hex() + ")"
	case ManagerPending:
		return "pending(" + m.pending + ")"
	}
	return "none"
}

type managerRefDoc struct {
	ID      *primitive.ObjectID `bson:"id,omitempty"`
	Pending string              `bson:"pending,omitempty"`
}

// MarshalBSONValue implements bson.ValueMarshaler.
func (m ManagerRef) MarshalBSONValue() (bsontype.Type, []byte, error) {
	var doc managerRefDoc
	switch m.kind {
	case ManagerResolved:
		id := m.id
		doc.ID = &id
	case ManagerPending:
		doc.Pending = m.pending
	default:
		return bsontype.Null, nil, nil
	}
	b, err := bson.Marshal(doc)
	if err != nil {
		return 0, nil, err
	}
	return bsontype.EmbeddedDocument, b, nil
}

// UnmarshalBSONValue implements bson.ValueUnmarshaler.
func (m *ManagerRef) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	switch t {
	case bsontype.Null, bsontype.Undefined, 0:
		*m = NoManager()
		return nil
	case bsontype.EmbeddedDocument:
	default:
		return fmt.Errorf("manager: unexpected bson type %s", t)
	}

	var doc managerRefDoc
	if err := bson.Unmarshal(data, &doc); err != nil {
		return err
	}
	switch {
	case doc.ID != nil && doc.Pending != "":
		return fmt.Errorf("manager: both id and pending set")
	case doc.ID != nil:
		*m = ResolvedManager(*doc.ID)
	case doc.Pending != "":
		*m = PendingManager(doc.Pending)
	default:
		*m = NoManager()
	}
	return nil
}
