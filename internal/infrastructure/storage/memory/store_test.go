package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"szafa/internal/core/apperror"
	"szafa/internal/core/id"
	"szafa/internal/core/numerator"
	"szafa/internal/domain/catalogs/dictionary"
	"szafa/internal/domain/documents/issue"
)

func TestRunInTransaction_RollsBackNestedWork(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	dicts := s.Dictionaries()
	boom := errors.New("boom")

	err := s.RunInTransaction(ctx, func(ctx context.Context) error {
		require.NoError(t, dicts.Create(ctx, &dictionary.Entry{ID: id.New(), Kind: dictionary.KindSupplier, Name: "Acme"}))
		return s.RunInTransaction(ctx, func(ctx context.Context) error {
			require.NoError(t, dicts.Create(ctx, &dictionary.Entry{ID: id.New(), Kind: dictionary.KindSupplier, Name: "Beta"}))
			return boom
		})
	})
	assert.ErrorIs(t, err, boom)

	entries, err := dicts.List(ctx, dictionary.KindSupplier)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRunInTransaction_RestoresOnPanic(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	dicts := s.Dictionaries()

	assert.Panics(t, func() {
		_ = s.RunInTransaction(ctx, func(ctx context.Context) error {
			_ = dicts.Create(ctx, &dictionary.Entry{ID: id.New(), Kind: dictionary.KindCompany, Name: "Ceva 1"})
			panic("crash")
		})
	})

	entries, err := dicts.List(ctx, dictionary.KindCompany)
	require.NoError(t, err)
	assert.Empty(t, entries)

	// The store stays usable.
	require.NoError(t, dicts.Create(ctx, &dictionary.Entry{ID: id.New(), Kind: dictionary.KindCompany, Name: "Ceva 1"}))
}

func TestGenerator_NextNumberPerScope(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	june := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)

	n, err := s.Numerator().NextNumber(ctx, numerator.DocTypeIssue, june)
	require.NoError(t, err)
	assert.Equal(t, "DW/2024/06/0001", n)

	s.data.issueDocs[id.New()] = issue.Document{Number: "DW/2024/06/0007"}
	s.data.issueDocs[id.New()] = issue.Document{Number: "DW/2024/05/0042"}

	n, err = s.Numerator().NextNumber(ctx, numerator.DocTypeIssue, june)
	require.NoError(t, err)
	assert.Equal(t, "DW/2024/06/0008", n)

	n, err = s.Numerator().NextNumber(ctx, numerator.DocTypeReceipt, june)
	require.NoError(t, err)
	assert.Equal(t, "PZ/2024/06/0001", n)
}

func TestDictionaryCreate_DuplicateName(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	dicts := s.Dictionaries()

	require.NoError(t, dicts.Create(ctx, &dictionary.Entry{ID: id.New(), Kind: dictionary.KindSupplier, Name: "Acme"}))
	err := dicts.Create(ctx, &dictionary.Entry{ID: id.New(), Kind: dictionary.KindSupplier, Name: "Acme"})
	assert.True(t, apperror.IsDuplicate(err))
}

func TestReadOnly_RejectsWritesOutsideTransaction(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	dicts := s.Dictionaries()

	err := s.ReadOnly(ctx, func(ctx context.Context) error {
		return dicts.Create(ctx, &dictionary.Entry{ID: id.New(), Kind: dictionary.KindSupplier, Name: "Acme"})
	})
	assert.ErrorIs(t, err, ErrReadOnly)

	err = s.ReadOnly(ctx, func(ctx context.Context) error {
		return s.RunInTransaction(ctx, func(ctx context.Context) error {
			return dicts.Create(ctx, &dictionary.Entry{ID: id.New(), Kind: dictionary.KindSupplier, Name: "Beta"})
		})
	})
	assert.ErrorIs(t, err, ErrReadOnly)

	entries, err := dicts.List(ctx, dictionary.KindSupplier)
	require.NoError(t, err)
	assert.Empty(t, entries)

	// Inside a read-write transaction the read-only block joins it.
	require.NoError(t, s.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.ReadOnly(ctx, func(ctx context.Context) error {
			return dicts.Create(ctx, &dictionary.Entry{ID: id.New(), Kind: dictionary.KindSupplier, Name: "Gamma"})
		})
	}))
	entries, err = dicts.List(ctx, dictionary.KindSupplier)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
