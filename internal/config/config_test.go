package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "DATABASE_URL", "CORS_ORIGINS", "CURRENCY",
		"PAYMENTS_ENABLED", "SWEEP_INTERVAL", "CONFIRM_GRACE",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "usd", cfg.CurrencyCode)
	assert.True(t, cfg.PaymentsEnabled())
	assert.Equal(t, time.Minute, cfg.SweepInterval)
	assert.Equal(t, time.Hour, cfg.ConfirmGrace)
	assert.Len(t, cfg.CORSOrigins, 2)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("CURRENCY", "EUR")
	t.Setenv("PAYMENTS_ENABLED", "false")
	t.Setenv("SWEEP_INTERVAL", "30s")
	t.Setenv("CONFIRM_GRACE", "2h")
	t.Setenv("CORS_ORIGINS", "https://app.example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "eur", cfg.Currency())
	assert.False(t, cfg.PaymentsEnabled())
	assert.Equal(t, 30*time.Second, cfg.SweepInterval)
	assert.Equal(t, 2*time.Hour, cfg.ConfirmGrace)
	assert.Equal(t, []string{"https://app.example.com"}, cfg.CORSOrigins)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("PAYMENTS_ENABLED", "perhaps")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("PAYMENTS_ENABLED", "true")
	t.Setenv("SWEEP_INTERVAL", "often")
	_, err = Load()
	assert.Error(t, err)
}
