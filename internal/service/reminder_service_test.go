package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSetDedupWindowNormalizesAndApplies(t *testing.T) {
	s := NewReminderService(nil, nil, nil, nil, nil, nil, 0, nil)
	// Unset config falls back to the 24h default.
	assert.Equal(t, 24*time.Hour, s.dedup())

	s.SetDedupWindow(6 * time.Hour)
	assert.Equal(t, 6*time.Hour, s.dedup())

	s.SetDedupWindow(-time.Hour)
	assert.Equal(t, 24*time.Hour, s.dedup())
}
