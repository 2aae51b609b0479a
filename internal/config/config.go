package config

import (
	"log/slog"
	"strconv"
	"time"

	"github.com/shouni/go-utils/envutil"

	"github.com/shouni/gemini-sticker-kit/pkg/imgutil"
)

// デフォルト値の定義なのだ
const (
	DefaultModel          = "gemini-2.5-flash"
	DefaultImageModel     = "gemini-2.5-flash-image"
	DefaultHTTPTimeout    = 30 * time.Second
	DefaultCacheTTL       = 30 * time.Minute
	DefaultHistoryDB      = "output/history.db"
	DefaultOutputDir      = "output/images"
	DefaultRateInterval   = 0 * time.Second // 0 はペース制御なし
	DefaultCount          = 1
	DefaultTemperature    = float32(0.7)
	DefaultWhiteThreshold = imgutil.DefaultWhiteThreshold
)

// Config はアプリケーション全体の環境設定を保持する構造体なのだ。
type Config struct {
	GeminiAPIKey     string
	GeminiModel      string
	GeminiImageModel string
	HistoryDB        string
	OutputDir        string
	PresetFile       string
	WhiteThreshold   uint8
	RateInterval     time.Duration

	Options GenerateOptions
}

// LoadConfig は環境変数から設定を読み込み、構造体を返すのだ！
// 数値として解釈できない値はデフォルト値に戻して警告します。
func LoadConfig() *Config {
	return &Config{
		GeminiAPIKey:     envutil.GetEnv("GEMINI_API_KEY", ""),
		GeminiModel:      envutil.GetEnv("GEMINI_MODEL", DefaultModel),
		GeminiImageModel: envutil.GetEnv("IMAGE_GEMINI_MODEL", DefaultImageModel),
		HistoryDB:        envutil.GetEnv("STICKER_HISTORY_DB", DefaultHistoryDB),
		OutputDir:        envutil.GetEnv("STICKER_OUTPUT_DIR", DefaultOutputDir),
		PresetFile:       envutil.GetEnv("STICKER_PRESET_FILE", ""),
		WhiteThreshold:   parseThreshold(envutil.GetEnv("WHITE_THRESHOLD", "")),
		RateInterval:     parseInterval(envutil.GetEnv("RATE_INTERVAL", "")),
	}
}

func parseThreshold(raw string) uint8 {
	if raw == "" {
		return DefaultWhiteThreshold
	}
	v, err := strconv.ParseUint(raw, 10, 8)
	if err != nil {
		slog.Warn("WHITE_THRESHOLD が不正なためデフォルト値を使います", "value", raw, "default", DefaultWhiteThreshold)
		return DefaultWhiteThreshold
	}
	return uint8(v)
}

func parseInterval(raw string) time.Duration {
	if raw == "" {
		return DefaultRateInterval
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 {
		slog.Warn("RATE_INTERVAL が不正なためペース制御を無効にします", "value", raw)
		return DefaultRateInterval
	}
	return d
}

// GenerateOptions は CLI フラグから渡される実行時のパラメータなのだ。
type GenerateOptions struct {
	// 生成内容
	Prompt       string // --prompt
	Style        string // --style
	Kind         string // --type: sticker / print
	Count        int    // --count
	ReferenceURL string // --reference: 参照画像（ローカル / http(s) / gs://）

	// モックアップ
	DesignID    string // --design: 履歴のデザイン ID
	Preset      string // --preset
	Description string // --description
	CustomModel string // --custom-model: 持ち込み写真

	// 出力
	OutputDir string // --output-dir（ローカル or gs://...）

	// AIモデル
	AIModel    string // --model: テキスト生成用
	ImageModel string // --image-model: 画像生成用

	// 実行制御
	HTTPTimeout time.Duration // --http-timeout
	Verbose     bool          // --verbose
}
