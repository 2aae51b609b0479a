package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig(t *testing.T) {
	t.Run("デフォルト値", func(t *testing.T) {
		for _, key := range []string{"GEMINI_MODEL", "IMAGE_GEMINI_MODEL", "STICKER_HISTORY_DB", "STICKER_OUTPUT_DIR", "WHITE_THRESHOLD", "RATE_INTERVAL"} {
			t.Setenv(key, "")
			os.Unsetenv(key)
		}
		cfg := LoadConfig()
		assert.Equal(t, DefaultModel, cfg.GeminiModel)
		assert.Equal(t, DefaultImageModel, cfg.GeminiImageModel)
		assert.Equal(t, DefaultHistoryDB, cfg.HistoryDB)
		assert.Equal(t, DefaultOutputDir, cfg.OutputDir)
		assert.Equal(t, uint8(230), cfg.WhiteThreshold)
		assert.Equal(t, time.Duration(0), cfg.RateInterval)
	})

	t.Run("環境変数で上書き", func(t *testing.T) {
		t.Setenv("GEMINI_API_KEY", "test-key")
		t.Setenv("IMAGE_GEMINI_MODEL", "custom-image")
		t.Setenv("WHITE_THRESHOLD", "240")
		t.Setenv("RATE_INTERVAL", "1500ms")
		t.Setenv("STICKER_OUTPUT_DIR", "gs://bucket/out")

		cfg := LoadConfig()
		assert.Equal(t, "test-key", cfg.GeminiAPIKey)
		assert.Equal(t, "custom-image", cfg.GeminiImageModel)
		assert.Equal(t, uint8(240), cfg.WhiteThreshold)
		assert.Equal(t, 1500*time.Millisecond, cfg.RateInterval)
		assert.Equal(t, "gs://bucket/out", cfg.OutputDir)
	})

	t.Run("不正な値はデフォルトに戻す", func(t *testing.T) {
		t.Setenv("WHITE_THRESHOLD", "300")
		t.Setenv("RATE_INTERVAL", "soon")

		cfg := LoadConfig()
		assert.Equal(t, DefaultWhiteThreshold, cfg.WhiteThreshold)
		assert.Equal(t, DefaultRateInterval, cfg.RateInterval)
	})
}
