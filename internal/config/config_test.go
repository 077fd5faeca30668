package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUploadMaxPerDay(t *testing.T) {
	t.Run("default", func(t *testing.T) {
		t.Setenv("UPLOAD_MAX_PER_DAY", "")
		assert.Equal(t, 300, New().UploadMaxPerDay)
	})

	t.Run("override", func(t *testing.T) {
		t.Setenv("UPLOAD_MAX_PER_DAY", "50")
		assert.Equal(t, 50, New().UploadMaxPerDay)
	})

	t.Run("independent of upload concurrency", func(t *testing.T) {
		t.Setenv("UPLOAD_CONCURRENCY", "8")
		t.Setenv("UPLOAD_MAX_PER_DAY", "")
		cfg := New()
		assert.Equal(t, 8, cfg.UploadConcurrency)
		assert.Equal(t, 300, cfg.UploadMaxPerDay)
	})
}
