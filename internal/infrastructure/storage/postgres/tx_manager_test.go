package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOnComplete_OutsideTransactionRunsAtOnce(t *testing.T) {
	m := &TxManager{}
	ran := false
	m.OnComplete(context.Background(), func() { ran = true })
	assert.True(t, ran)
}

func TestOnComplete_DeferredUntilTransactionEnds(t *testing.T) {
	m := &TxManager{}
	tx := &Tx{}
	ctx := context.WithValue(context.Background(), txKey{}, tx)

	var order []string
	m.OnComplete(ctx, func() { order = append(order, "numbering lock") })
	m.OnComplete(ctx, func() { order = append(order, "second") })
	assert.Empty(t, order)

	tx.complete()
	assert.Equal(t, []string{"numbering lock", "second"}, order)

	tx.complete()
	assert.Len(t, order, 2, "callbacks run once")
}
