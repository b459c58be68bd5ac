package numerator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"szafa/internal/core/apperror"
)

func TestScope_Format(t *testing.T) {
	scope := ScopeOf(DocTypeIssue, time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC))

	assert.Equal(t, "DW/2024/06", scope.Key())
	assert.Equal(t, "DW/2024/06/0001", scope.Format(1))
	assert.Equal(t, "DW/2024/06/12345", scope.Format(12345))
	assert.Equal(t, "DW/2024/06/%", scope.LikePattern())
}

func TestParse(t *testing.T) {
	scope, idx, err := Parse("PZ/2023/11/0042")
	require.NoError(t, err)
	assert.Equal(t, Scope{DocType: DocTypeReceipt, Year: 2023, Month: time.November}, scope)
	assert.Equal(t, int64(42), idx)

	for _, bad := range []string{"", "PZ/2023/11", "XX/2023/11/0001", "PZ/2023/13/0001", "PZ/2023/11/abc"} {
		_, _, err := Parse(bad)
		assert.Error(t, err, bad)
	}
}

func TestNextIndex_IgnoresOtherScopesAndGaps(t *testing.T) {
	scope := ScopeOf(DocTypeIssue, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	numbers := []string{
		"DW/2024/06/0001",
		"DW/2024/06/0007",
		"DW/2024/05/0099",
		"PZ/2024/06/0050",
		"garbage",
	}

	assert.Equal(t, int64(8), NextIndex(scope, numbers))
	assert.Equal(t, int64(1), NextIndex(scope, nil))
}

func TestWithRetry_RetriesOnlyDuplicates(t *testing.T) {
	ctx := context.Background()

	calls := 0
	err := WithRetry(ctx, 3, func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return apperror.NewDuplicate("issue_document", "document_number", "DW/2024/06/0001")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)

	calls = 0
	boom := errors.New("boom")
	err = WithRetry(ctx, 3, func(ctx context.Context) error {
		calls++
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)

	calls = 0
	err = WithRetry(ctx, 2, func(ctx context.Context) error {
		calls++
		return apperror.NewDuplicate("issue_document", "document_number", "x")
	})
	assert.True(t, apperror.IsDuplicate(err))
	assert.Equal(t, 2, calls)
}
