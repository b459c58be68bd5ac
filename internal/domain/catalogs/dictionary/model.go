// Package dictionary provides the simple named catalogs: companies, departments,
// positions and suppliers. Each kind lives in its own table with a unique name.
package dictionary

import (
	"strings"

	"szafa/internal/core/apperror"
	"szafa/internal/core/id"
)

// Kind selects the dictionary.
type Kind string

const (
	KindCompany    Kind = "company"
	KindDepartment Kind = "department"
	KindPosition   Kind = "position"
	KindSupplier   Kind = "supplier"
)

// Kinds lists every dictionary kind.
var Kinds = []Kind{KindCompany, KindDepartment, KindPosition, KindSupplier}

// Valid reports whether k is a known dictionary.
func (k Kind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// MaxNameLength returns the column width of names for the kind.
func (k Kind) MaxNameLength() int {
	if k == KindDepartment {
		return 50
	}
	return 100
}

// Entry is one dictionary row.
type Entry struct {
	ID   id.ID  `db:"id" json:"id"`
	Kind Kind   `db:"-" json:"kind"`
	Name string `db:"name" json:"name"`
}

// Validate checks the entry.
func (e *Entry) Validate() error {
	if !e.Kind.Valid() {
		return apperror.NewValidation("unknown dictionary").WithDetail("kind", e.Kind)
	}
	e.Name = strings.TrimSpace(e.Name)
	if e.Name == "" {
		return apperror.NewValidation("name is required").WithDetail("field", "name")
	}
	if len(e.Name) > e.Kind.MaxNameLength() {
		return apperror.NewValidation("name is too long").WithDetail("field", "name")
	}
	return nil
}
