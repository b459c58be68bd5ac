package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"szafa/internal/core/apperror"
	"szafa/internal/core/id"
	"szafa/internal/domain/catalogs/dictionary"
	"szafa/internal/infrastructure/storage/postgres"
)

// dictionaryTables maps each kind to its table. Every table has the columns id and name.
var dictionaryTables = map[dictionary.Kind]string{
	dictionary.KindCompany:    "companies",
	dictionary.KindDepartment: "departments",
	dictionary.KindPosition:   "positions",
	dictionary.KindSupplier:   "suppliers",
}

// DictionaryRepo implements dictionary.Repository.
type DictionaryRepo struct {
	txm *postgres.TxManager
}

// NewDictionaryRepo creates a new dictionary repository.
func NewDictionaryRepo(txm *postgres.TxManager) *DictionaryRepo {
	return &DictionaryRepo{txm: txm}
}

var _ dictionary.Repository = (*DictionaryRepo)(nil)

func tableFor(kind dictionary.Kind) (string, error) {
	table, ok := dictionaryTables[kind]
	if !ok {
		return "", apperror.NewValidation("unknown dictionary").WithDetail("kind", kind)
	}
	return table, nil
}

func (r *DictionaryRepo) Create(ctx context.Context, e *dictionary.Entry) error {
	table, err := tableFor(e.Kind)
	if err != nil {
		return err
	}
	_, err = r.txm.Exec(ctx, postgres.Builder().Insert(table).Columns("id", "name").Values(e.ID, e.Name))
	if err != nil {
		if apperror.IsDuplicate(err) {
			return apperror.NewDuplicate(string(e.Kind), "name", e.Name)
		}
		return fmt.Errorf("insert %s: %w", table, err)
	}
	return nil
}

func (r *DictionaryRepo) GetByID(ctx context.Context, kind dictionary.Kind, entryID id.ID) (*dictionary.Entry, error) {
	table, err := tableFor(kind)
	if err != nil {
		return nil, err
	}
	e := dictionary.Entry{Kind: kind}
	q := postgres.Builder().Select("id", "name").From(table).Where(squirrel.Eq{"id": entryID})
	if err := r.txm.Get(ctx, &e, q, string(kind), entryID); err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *DictionaryRepo) FindByName(ctx context.Context, kind dictionary.Kind, name string) (*dictionary.Entry, error) {
	table, err := tableFor(kind)
	if err != nil {
		return nil, err
	}
	e := dictionary.Entry{Kind: kind}
	q := postgres.Builder().Select("id", "name").From(table).
		Where(squirrel.Expr("lower(name) = lower(?)", name)).
		Limit(1)
	found, err := r.txm.Find(ctx, &e, q)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", kind, err)
	}
	if !found {
		return nil, nil
	}
	return &e, nil
}

func (r *DictionaryRepo) List(ctx context.Context, kind dictionary.Kind) ([]dictionary.Entry, error) {
	table, err := tableFor(kind)
	if err != nil {
		return nil, err
	}
	var out []dictionary.Entry
	if err := r.txm.Select(ctx, &out, postgres.Builder().Select("id", "name").From(table).OrderBy("name")); err != nil {
		return nil, fmt.Errorf("list %s: %w", kind, err)
	}
	for i := range out {
		out[i].Kind = kind
	}
	return out, nil
}

// Delete relies on the foreign keys: employees and receipt documents restrict the delete,
// staged deliveries lose their supplier or recipient.
func (r *DictionaryRepo) Delete(ctx context.Context, kind dictionary.Kind, entryID id.ID) error {
	table, err := tableFor(kind)
	if err != nil {
		return err
	}
	n, err := r.txm.Exec(ctx, postgres.Builder().Delete(table).Where(squirrel.Eq{"id": entryID}))
	if err != nil {
		return postgres.ForEntity(err, string(kind))
	}
	if n == 0 {
		return apperror.NewNotFound(string(kind), entryID)
	}
	return nil
}
