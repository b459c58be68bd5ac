package postgres

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPayloadCompression(t *testing.T) {
	raw := []byte(`{"items": [` + string(bytes.Repeat([]byte(`{"code": "X1", "price": "12,50"},`), 200)) + `{}]}`)

	stored, err := CompressPayload(raw)
	require.NoError(t, err)
	assert.Less(t, len(stored), len(raw))

	back, err := DecompressPayload(stored)
	require.NoError(t, err)
	assert.Equal(t, raw, back)
}

func TestPayloadCompression_Empty(t *testing.T) {
	stored, err := CompressPayload(nil)
	require.NoError(t, err)
	assert.Nil(t, stored)

	back, err := DecompressPayload(stored)
	require.NoError(t, err)
	assert.Nil(t, back)
}

func TestDecompressPayload_Garbage(t *testing.T) {
	_, err := DecompressPayload([]byte("not zstd"))
	assert.Error(t, err)
}
