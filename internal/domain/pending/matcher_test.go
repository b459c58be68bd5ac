package pending_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"szafa/internal/domain/catalogs/dictionary"
	"szafa/internal/domain/pending"
	"szafa/internal/infrastructure/storage/memory"
)

func TestFirstTokenMatcher(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	dicts := dictionary.NewService(store.Dictionaries())

	acme := &dictionary.Entry{Kind: dictionary.KindSupplier, Name: "Acme"}
	require.NoError(t, dicts.Create(ctx, acme))
	require.NoError(t, dicts.Create(ctx, &dictionary.Entry{Kind: dictionary.KindSupplier, Name: "Acme Logistics"}))

	m := pending.NewFirstTokenMatcher(dicts)

	got, err := m.Match(ctx, "ACME Sp. z o.o.")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, acme.ID, *got)

	for _, seller := range []string{"", "   ", "Acmex S.A.", "Logistics Acme"} {
		got, err := m.Match(ctx, seller)
		require.NoError(t, err)
		assert.Nil(t, got, seller)
	}
}
