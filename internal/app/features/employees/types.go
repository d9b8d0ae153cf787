// internal/app/features/employees/types.go
package employees

import (
	"time"

	"github.com/dalemusser/orgsync/internal/domain/models"
)

// personRef is a compact reference to another employee.
type personRef struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// managerView renders a ManagerRef. State is "none", "resolved" or
// "pending"; Email is the unresolved address when pending.
type managerView struct {
	State string `json:"state"`
	ID    string `json:"id,omitempty"`
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
}

type profileView struct {
	ID             string            `json:"id"`
	Email          string            `json:"email"`
	Attributes     models.Attributes `json:"attributes"`
	Manager        managerView       `json:"manager"`
	ChainOfCommand []personRef       `json:"chain_of_command"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

type reportsView struct {
	Email      string      `json:"email"`
	Direct     []personRef `json:"direct"`
	TotalUnder int64       `json:"total_under"`
}

func refOf(e models.Employee) personRef {
	return personRef{ID: e.ID.Hex(), Email: e.NormalizedEmail, Name: e.Attributes.Name()}
}
