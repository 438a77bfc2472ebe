package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loopinhq/loopin/pkg/config"
)

type loaderTestConfig struct {
	Name    string        `env:"LOOPIN_TEST_NAME" envDefault:"default"`
	Timeout time.Duration `env:"LOOPIN_TEST_TIMEOUT" envDefault:"15s"`
}

type requiredTestConfig struct {
	Secret string `env:"LOOPIN_TEST_REQUIRED_SECRET,required"`
}

func TestLoad(t *testing.T) {
	config.ResetCache()
	t.Cleanup(config.ResetCache)

	t.Setenv("LOOPIN_TEST_NAME", "first")

	var cfg loaderTestConfig
	require.NoError(t, config.Load(&cfg))
	assert.Equal(t, "first", cfg.Name)
	assert.Equal(t, 15*time.Second, cfg.Timeout)

	t.Setenv("LOOPIN_TEST_NAME", "second")

	var again loaderTestConfig
	require.NoError(t, config.Load(&again))
	assert.Equal(t, "first", again.Name, "second load is served from cache")

	config.ResetCache()
	require.NoError(t, config.Load(&again))
	assert.Equal(t, "second", again.Name)
}

func TestLoad_Errors(t *testing.T) {
	config.ResetCache()
	t.Cleanup(config.ResetCache)

	assert.ErrorIs(t, config.Load[loaderTestConfig](nil), config.ErrNilPointer)

	var cfg requiredTestConfig
	err := config.Load(&cfg)
	assert.ErrorIs(t, err, config.ErrParsingConfig)

	assert.Panics(t, func() { config.MustLoad(&requiredTestConfig{}) })
}

func TestParse(t *testing.T) {
	t.Setenv("LOOPIN_TEST_TIMEOUT", "2m")

	var cfg loaderTestConfig
	require.NoError(t, config.Parse(&cfg))
	assert.Equal(t, 2*time.Minute, cfg.Timeout)
	assert.Equal(t, "default", cfg.Name)
}
