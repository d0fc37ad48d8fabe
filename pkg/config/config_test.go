package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Setenv("ENVIRONMENT", "test")

	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, ":memory:", cfg.DatabaseFilePath)
	assert.NotEmpty(t, cfg.JWTSecret)
	assert.Equal(t, 15, cfg.Settings.LoanPeriodDays)
}

func TestNewForTest(t *testing.T) {
	cfg := NewForTest()

	assert.Equal(t, ":memory:", cfg.DatabaseFilePath)
	assert.Equal(t, 0, cfg.ServerPort)
	assert.Equal(t, 15, cfg.Settings.LoanPeriodDays)
}
