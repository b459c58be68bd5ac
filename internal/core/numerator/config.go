// Package numerator provides domain contracts for document auto-numbering.
//
// Numbers look like DW/2024/06/0007: prefix, year, zero-padded month and a per-month index.
// The index is derived from the highest number already stored in the scope, so there is no
// counter table and deleted documents leave gaps.
package numerator

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DocType identifies a numbered document kind; its value is the number prefix.
type DocType string

const (
	// DocTypeIssue is an outbound issuance to an employee (Dokument Wydania).
	DocTypeIssue DocType = "DW"
	// DocTypeReceipt is an inbound receipt from a supplier (Przyjęcie Zewnętrzne).
	DocTypeReceipt DocType = "PZ"
)

// Valid reports whether t is a known document type.
func (t DocType) Valid() bool {
	return t == DocTypeIssue || t == DocTypeReceipt
}

// IndexWidth is the minimum width of the numeric index.
const IndexWidth = 4

const separator = "/"

// Scope is the (type, year, month) window an index is unique within.
type Scope struct {
	DocType DocType
	Year    int
	Month   time.Month
}

// ScopeOf returns the scope a document issued on issueDate belongs to.
func ScopeOf(docType DocType, issueDate time.Time) Scope {
	return Scope{DocType: docType, Year: issueDate.Year(), Month: issueDate.Month()}
}

// Key is the number prefix shared by every document of the scope, e.g. "DW/2024/06".
func (s Scope) Key() string {
	return fmt.Sprintf("%s/%d/%02d", s.DocType, s.Year, int(s.Month))
}

// LikePattern matches every number of the scope in a SQL LIKE clause.
func (s Scope) LikePattern() string {
	return s.Key() + separator + "%"
}

// Format renders the number with the given index.
func (s Scope) Format(index int64) string {
	return fmt.Sprintf("%s%s%0*d", s.Key(), separator, IndexWidth, index)
}

// Parse splits a document number into its scope and index.
func Parse(number string) (Scope, int64, error) {
	parts := strings.Split(number, separator)
	if len(parts) != 4 {
		return Scope{}, 0, fmt.Errorf("invalid document number %q", number)
	}
	docType := DocType(parts[0])
	if !docType.Valid() {
		return Scope{}, 0, fmt.Errorf("invalid document number %q: unknown prefix", number)
	}
	year, err := strconv.Atoi(parts[1])
	if err != nil {
		return Scope{}, 0, fmt.Errorf("invalid document number %q: year: %w", number, err)
	}
	month, err := strconv.Atoi(parts[2])
	if err != nil || month < 1 || month > 12 {
		return Scope{}, 0, fmt.Errorf("invalid document number %q: month", number)
	}
	index, err := strconv.ParseInt(parts[3], 10, 64)
	if err != nil || index < 1 {
		return Scope{}, 0, fmt.Errorf("invalid document number %q: index", number)
	}
	return Scope{DocType: docType, Year: year, Month: time.Month(month)}, index, nil
}

// NextIndex returns the index following the highest one among numbers that belong to scope.
// Numbers from other scopes or unparseable ones are ignored.
func NextIndex(scope Scope, numbers []string) int64 {
	var maxIndex int64
	for _, n := range numbers {
		s, idx, err := Parse(n)
		if err != nil || s != scope {
			continue
		}
		if idx > maxIndex {
			maxIndex = idx
		}
	}
	return maxIndex + 1
}
