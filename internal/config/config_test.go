package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsAppliedWhenUnset(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	var cfg Configuration
	require.NoError(t, v.Unmarshal(&cfg))

	assert.Equal(t, 5, cfg.Billing.LeadDays)
	assert.Equal(t, 500, cfg.Billing.BatchSize)
	assert.Equal(t, "America/Bogota", cfg.Billing.Timezone)

	assert.Equal(t, "disable", cfg.Postgres.SSLMode)
	assert.Equal(t, 10, cfg.Postgres.MaxOpenConns)
	assert.Equal(t, 5, cfg.Postgres.MaxIdleConns)
	assert.Equal(t, 30, cfg.Postgres.ConnMaxLifetimeMinutes)

	assert.Equal(t, 3, cfg.PubSub.MaxRetries)
	assert.Equal(t, time.Second, cfg.PubSub.InitialInterval)
	assert.Equal(t, 30*time.Second, cfg.PubSub.MaxInterval)
	assert.Equal(t, 2.0, cfg.PubSub.Multiplier)
	assert.Equal(t, 5*time.Minute, cfg.PubSub.MaxElapsedTime)
}

func TestExplicitValuesOverrideDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("billing.leaddays", 2)
	v.Set("pubsub.maxretries", 7)

	var cfg Configuration
	require.NoError(t, v.Unmarshal(&cfg))

	assert.Equal(t, 2, cfg.Billing.LeadDays)
	assert.Equal(t, 7, cfg.PubSub.MaxRetries)
	assert.Equal(t, 500, cfg.Billing.BatchSize)
}

func TestLocationFallsBackToUTC(t *testing.T) {
	loc := BillingConfig{Timezone: "America/Bogota"}.Location()
	assert.Equal(t, "America/Bogota", loc.String())

	assert.Equal(t, time.UTC, BillingConfig{Timezone: "Not/AZone"}.Location())
}
