package app

import (
	"testing"

	"sst_backend/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigReloadFansOutToCallbacks(t *testing.T) {
	a := &App{Config: &config.Config{}}

	var got *config.Config
	a.RegisterConfigCallback(func(cfg *config.Config) { got = cfg })

	next := &config.Config{}
	next.Reminder.DedupHours = 6
	a.applyConfig(next)

	require.NotNil(t, got)
	assert.Same(t, next, got)
	assert.Same(t, next, a.CurrentConfig())
}
