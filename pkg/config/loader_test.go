package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flaglab/flagkit/pkg/config"
)

type storeConfig struct {
	URL      string        `env:"TEST_STORE_URL" envDefault:"redis://localhost:6379/0"`
	TTL      time.Duration `env:"TEST_STORE_TTL" envDefault:"720h"`
	Capacity int           `env:"TEST_STORE_CAPACITY" envDefault:"10000"`
}

type requiredConfig struct {
	Token string `env:"TEST_REQUIRED_TOKEN,required"`
}

func TestLoad(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		var cfg storeConfig
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, "redis://localhost:6379/0", cfg.URL)
		assert.Equal(t, 720*time.Hour, cfg.TTL)
		assert.Equal(t, 10000, cfg.Capacity)
	})

	t.Run("EnvironmentOverrides", func(t *testing.T) {
		t.Setenv("TEST_STORE_URL", "redis://cache.internal:6380/1")
		t.Setenv("TEST_STORE_TTL", "1h")

		var cfg storeConfig
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, "redis://cache.internal:6380/1", cfg.URL)
		assert.Equal(t, time.Hour, cfg.TTL)
		assert.Equal(t, 10000, cfg.Capacity, "unset variables keep their defaults")
	})

	t.Run("MissingRequired", func(t *testing.T) {
		var cfg requiredConfig
		err := config.Load(&cfg)
		assert.ErrorIs(t, err, config.ErrParsingConfig)
	})

	t.Run("UnparsableValue", func(t *testing.T) {
		t.Setenv("TEST_STORE_TTL", "not-a-duration")

		var cfg storeConfig
		err := config.Load(&cfg)
		assert.ErrorIs(t, err, config.ErrParsingConfig)
	})

	t.Run("NilTarget", func(t *testing.T) {
		err := config.Load[storeConfig](nil)
		assert.ErrorIs(t, err, config.ErrNilPointer)
	})
}

func TestMustLoad(t *testing.T) {
	t.Run("PanicsOnFailure", func(t *testing.T) {
		assert.Panics(t, func() {
			var cfg requiredConfig
			config.MustLoad(&cfg)
		})
	})

	t.Run("PopulatesOnSuccess", func(t *testing.T) {
		t.Setenv("TEST_REQUIRED_TOKEN", "tok")

		var cfg requiredConfig
		assert.NotPanics(t, func() { config.MustLoad(&cfg) })
		assert.Equal(t, "tok", cfg.Token)
	})
}
