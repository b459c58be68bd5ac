// Package memory is an in-process storage adapter implementing every repository port and
// tx.Manager. Transactions are serialized and roll back by restoring a snapshot. It backs
// the domain tests and local runs without a database.
package memory

import (
	"bytes"
	"context"
	"errors"
	"maps"
	"slices"
	"sync"
	"time"

	"szafa/internal/core/id"
	"szafa/internal/core/numerator"
	"szafa/internal/core/tx"
	"szafa/internal/domain/catalogs/dictionary"
	"szafa/internal/domain/catalogs/product"
	"szafa/internal/domain/documents/issue"
	"szafa/internal/domain/documents/receipt"
	"szafa/internal/domain/employees"
	"szafa/internal/domain/pending"
	"szafa/internal/domain/registers/stock"
	"szafa/internal/domain/reports"
)

type balanceKey struct {
	productID id.ID
	size      string
}

type state struct {
	categories map[id.ID]product.Category
	products   map[id.ID]product.Product
	dict       map[dictionary.Kind]map[id.ID]dictionary.Entry

	employees map[id.ID]employees.Employee
	periods   map[id.ID]employees.Period

	issueDocs    map[id.ID]issue.Document
	issueItems   map[id.ID]issue.Item
	receiptDocs  map[id.ID]receipt.Document
	receiptItems map[id.ID]receipt.Item

	balances  map[balanceKey]stock.Balance
	movements []stock.Movement

	pendingProducts map[id.ID]pending.Product
	pendingDocs     map[id.ID]pending.ReceiptDocument
	pendingItems    map[id.ID]pending.ReceiptItem
}

func newState() *state {
	st := &state{
		categories:      map[id.ID]product.Category{},
		products:        map[id.ID]product.Product{},
		dict:            map[dictionary.Kind]map[id.ID]dictionary.Entry{},
		employees:       map[id.ID]employees.Employee{},
		periods:         map[id.ID]employees.Period{},
		issueDocs:       map[id.ID]issue.Document{},
		issueItems:      map[id.ID]issue.Item{},
		receiptDocs:     map[id.ID]receipt.Document{},
		receiptItems:    map[id.ID]receipt.Item{},
		balances:        map[balanceKey]stock.Balance{},
		pendingProducts: map[id.ID]pending.Product{},
		pendingDocs:     map[id.ID]pending.ReceiptDocument{},
		pendingItems:    map[id.ID]pending.ReceiptItem{},
	}
	for _, k := range dictionary.Kinds {
		st.dict[k] = map[id.ID]dictionary.Entry{}
	}
	return st
}

// clone copies every table. Rows are values and are replaced on update, never mutated
// in place, so a shallow copy per table is a full snapshot.
func (st *state) clone() *state {
	c := &state{
		categories:      maps.Clone(st.categories),
		products:        maps.Clone(st.products),
		dict:            make(map[dictionary.Kind]map[id.ID]dictionary.Entry, len(st.dict)),
		employees:       maps.Clone(st.employees),
		periods:         maps.Clone(st.periods),
		issueDocs:       maps.Clone(st.issueDocs),
		issueItems:      maps.Clone(st.issueItems),
		receiptDocs:     maps.Clone(st.receiptDocs),
		receiptItems:    maps.Clone(st.receiptItems),
		balances:        maps.Clone(st.balances),
		movements:       slices.Clone(st.movements),
		pendingProducts: maps.Clone(st.pendingProducts),
		pendingDocs:     maps.Clone(st.pendingDocs),
		pendingItems:    maps.Clone(st.pendingItems),
	}
	for k, v := range st.dict {
		c.dict[k] = maps.Clone(v)
	}
	return c
}

// Store holds all tables.
type Store struct {
	// txMu serializes transactions and writes outside transactions
	txMu sync.Mutex
	// mu guards data for individual reads and writes
	mu   sync.RWMutex
	data *state
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{data: newState()}
}

type (
	txKey       struct{}
	readOnlyKey struct{}
)

// ErrReadOnly is returned by writes attempted inside ReadOnly.
var ErrReadOnly = errors.New("memory: write in read-only transaction")

func (s *Store) inTx(ctx context.Context) bool {
	owner, _ := ctx.Value(txKey{}).(*Store)
	return owner == s
}

// RunInTransaction implements tx.Manager. Nested calls join the outer transaction.
func (s *Store) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if s.inTx(ctx) {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	snapshot := s.data.clone()
	s.mu.RUnlock()

	defer func() {
		if p := recover(); p != nil {
			s.restore(snapshot)
			panic(p)
		}
		if err != nil {
			s.restore(snapshot)
		}
	}()

	return fn(context.WithValue(ctx, txKey{}, s))
}

// ReadOnly implements tx.ReadOnlyManager. Inside an open transaction fn joins it;
// otherwise every write fn attempts fails with ErrReadOnly.
func (s *Store) ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.inTx(ctx) {
		return fn(ctx)
	}
	return fn(context.WithValue(ctx, readOnlyKey{}, true))
}

func (s *Store) restore(snapshot *state) {
	s.mu.Lock()
	s.data = snapshot
	s.mu.Unlock()
}

// write runs fn with exclusive access. Outside a transaction it also takes the
// transaction lock so a concurrent rollback cannot discard it.
func (s *Store) write(ctx context.Context, fn func(st *state) error) error {
	if readOnly, _ := ctx.Value(readOnlyKey{}).(bool); readOnly {
		return ErrReadOnly
	}
	if !s.inTx(ctx) {
		s.txMu.Lock()
		defer s.txMu.Unlock()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.data)
}

func (s *Store) read(fn func(st *state)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.data)
}

// Generator allocates document numbers from the numbers already stored. Callers run it
// inside a transaction, which is what serializes allocation.
type Generator struct {
	s *Store
}

// Numerator returns the store's number generator.
func (s *Store) Numerator() *Generator {
	return &Generator{s: s}
}

// NextNumber implements numerator.Generator.
func (g *Generator) NextNumber(ctx context.Context, docType numerator.DocType, issueDate time.Time) (string, error) {
	scope := numerator.ScopeOf(docType, issueDate)

	var numbers []string
	g.s.read(func(st *state) {
		switch docType {
		case numerator.DocTypeIssue:
			for _, d := range st.issueDocs {
				numbers = append(numbers, d.Number)
			}
		case numerator.DocTypeReceipt:
			for _, d := range st.receiptDocs {
				numbers = append(numbers, d.Number)
			}
		}
	})
	return scope.Format(numerator.NextIndex(scope, numbers)), nil
}

func compareIDs(a, b id.ID) int {
	return bytes.Compare(a[:], b[:])
}

func sortedValues[V any](m map[id.ID]V, key func(V) id.ID) []V {
	out := slices.Collect(maps.Values(m))
	slices.SortFunc(out, func(a, b V) int { return compareIDs(key(a), key(b)) })
	return out
}

func inRange(t time.Time, from, to *time.Time) bool {
	if from != nil && t.Before(*from) {
		return false
	}
	if to != nil && t.After(*to) {
		return false
	}
	return true
}

var (
	_ tx.ReadOnlyManager     = (*Store)(nil)
	_ numerator.Generator    = (*Generator)(nil)
	_ product.Repository     = (*ProductRepo)(nil)
	_ dictionary.Repository  = (*DictionaryRepo)(nil)
	_ employees.Repository   = (*EmployeeRepo)(nil)
	_ issue.Repository       = (*IssueRepo)(nil)
	_ receipt.Repository     = (*ReceiptRepo)(nil)
	_ stock.Repository       = (*StockRepo)(nil)
	_ pending.Repository     = (*PendingRepo)(nil)
	_ reports.Repository     = (*ReportRepo)(nil)
)
