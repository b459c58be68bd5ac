package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://szafa@localhost/szafa")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.AppPort)
	assert.Equal(t, 30*time.Second, cfg.DBStatementTimeout)
	assert.Equal(t, 3, cfg.NumberingRetries)
	assert.Equal(t, "Ceva 1", cfg.PendingRecipient)
	assert.Equal(t, "clothing", cfg.PendingDefaultCategory)
	assert.Empty(t, cfg.RedisAddr)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoad_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_RejectsZeroRetries(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://szafa@localhost/szafa")
	t.Setenv("NUMBERING_RETRIES", "0")

	_, err := Load()
	assert.ErrorContains(t, err, "NUMBERING_RETRIES")
}
