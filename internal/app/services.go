// Package app assembles the domain services over a storage adapter.
package app

import (
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
	"szafa/internal/infrastructure/storage/memory"
	"szafa/internal/infrastructure/storage/postgres"
	"szafa/internal/infrastructure/storage/postgres/catalog_repo"
	"szafa/internal/infrastructure/storage/postgres/document_repo"
	"szafa/internal/infrastructure/storage/postgres/employee_repo"
	"szafa/internal/infrastructure/storage/postgres/register_repo"
	"szafa/internal/infrastructure/storage/postgres/report_repo"
)

// Storage is one storage adapter: its repositories, transaction manager and numbering.
type Storage struct {
	TxManager    tx.ReadOnlyManager
	Numerator    numerator.Generator
	Products     product.Repository
	Dictionaries dictionary.Repository
	Employees    employees.Repository
	Stock        stock.Repository
	Issues       issue.Repository
	Receipts     receipt.Repository
	Pending      pending.Repository
	Reports      reports.Repository
}

// PostgresStorage builds the PostgreSQL adapter.
func PostgresStorage(txm *postgres.TxManager, gen numerator.Generator) Storage {
	return Storage{
		TxManager:    txm,
		Numerator:    gen,
		Products:     catalog_repo.NewProductRepo(txm),
		Dictionaries: catalog_repo.NewDictionaryRepo(txm),
		Employees:    employee_repo.NewRepo(txm),
		Stock:        register_repo.NewStockRepo(txm),
		Issues:       document_repo.NewIssueRepo(txm),
		Receipts:     document_repo.NewReceiptRepo(txm),
		Pending:      document_repo.NewPendingRepo(txm),
		Reports:      report_repo.NewReportRepo(txm),
	}
}

// MemoryStorage builds the in-memory adapter.
func MemoryStorage(store *memory.Store) Storage {
	return Storage{
		TxManager:    store,
		Numerator:    store.Numerator(),
		Products:     store.Products(),
		Dictionaries: store.Dictionaries(),
		Employees:    store.Employees(),
		Stock:        store.Stock(),
		Issues:       store.Issues(),
		Receipts:     store.Receipts(),
		Pending:      store.Pending(),
		Reports:      store.Reports(),
	}
}

// Settings tune the services.
type Settings struct {
	Pending         pending.Config
	RelinkBatchSize int
}

// Services holds every domain service.
type Services struct {
	Dictionaries *dictionary.Service
	Products     *product.Service
	Employees    *employees.Service
	Stock        *stock.Service
	Issues       *issue.Service
	Receipts     *receipt.Service
	Pending      *pending.Service
	Reports      *reports.Service
}

// NewServices wires the services over st.
func NewServices(st Storage, settings Settings) *Services {
	dicts := dictionary.NewService(st.Dictionaries)
	products := product.NewService(st.Products, st.TxManager)
	ledger := stock.NewService(st.Stock, st.TxManager)
	emps := employees.NewService(st.Employees, st.TxManager, dicts, nil)
	issues := issue.NewService(st.Issues, products, emps, ledger, st.Numerator, st.TxManager)
	emps.SetDeactivator(issues)
	receipts := receipt.NewService(st.Receipts, products, dicts, ledger, st.Numerator, st.TxManager)

	relinker := pending.NewRelinker(st.Pending, products, st.TxManager, settings.RelinkBatchSize)
	staging := pending.NewService(
		st.Pending,
		products,
		pending.NewFirstTokenMatcher(dicts),
		dicts,
		receipts,
		relinker,
		st.TxManager,
		settings.Pending,
	)

	return &Services{
		Dictionaries: dicts,
		Products:     products,
		Employees:    emps,
		Stock:        ledger,
		Issues:       issues,
		Receipts:     receipts,
		Pending:      staging,
		Reports:      reports.NewService(st.Reports, st.TxManager),
	}
}
