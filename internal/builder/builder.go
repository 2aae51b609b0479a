package builder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/shouni/go-gemini-client/pkg/gemini"
	"github.com/shouni/go-http-kit/pkg/httpkit"
	"github.com/shouni/go-remote-io/pkg/gcsfactory"
	"github.com/shouni/go-remote-io/pkg/remoteio"
	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/shouni/gemini-sticker-kit/internal/config"
	"github.com/shouni/gemini-sticker-kit/pkg/adapters"
	"github.com/shouni/gemini-sticker-kit/pkg/conversation"
	"github.com/shouni/gemini-sticker-kit/pkg/generator"
	"github.com/shouni/gemini-sticker-kit/pkg/history"
	"github.com/shouni/gemini-sticker-kit/pkg/preset"
	"github.com/shouni/gemini-sticker-kit/pkg/retry"
)

// BuildAppContext は設定を元に全コンポーネントを組み立てるのだ。
func BuildAppContext(ctx context.Context, cfg *config.Config) (*AppContext, error) {
	opts := cfg.Options

	timeout := opts.HTTPTimeout
	if timeout <= 0 {
		timeout = config.DefaultHTTPTimeout
	}
	httpClient := httpkit.New(timeout)

	aiClient, err := InitializeAIClient(ctx, cfg.GeminiAPIKey)
	if err != nil {
		return nil, err
	}

	gcsFactory, err := gcsfactory.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client factory: %w", err)
	}
	reader, err := gcsFactory.InputReader()
	if err != nil {
		return nil, err
	}
	writer, err := gcsFactory.OutputWriter()
	if err != nil {
		return nil, err
	}

	imageModel := firstNonEmpty(opts.ImageModel, cfg.GeminiImageModel)
	textModel := firstNonEmpty(opts.AIModel, cfg.GeminiModel)

	core, err := InitializeImageCore(httpClient, reader)
	if err != nil {
		return nil, err
	}
	imageAdapter, err := adapters.NewGeminiImageAdapter(core, aiClient, imageModel)
	if err != nil {
		return nil, fmt.Errorf("画像アダプターの初期化に失敗しました: %w", err)
	}
	textAdapter, err := adapters.NewGeminiTextAdapter(aiClient, textModel)
	if err != nil {
		return nil, fmt.Errorf("テキストアダプターの初期化に失敗しました: %w", err)
	}

	orchestrator, err := InitializeOrchestrator(imageAdapter, cfg.WhiteThreshold, cfg.RateInterval)
	if err != nil {
		return nil, err
	}
	refiner, err := generator.NewRefiner(textAdapter)
	if err != nil {
		return nil, err
	}
	compositor, err := generator.NewCompositor(imageAdapter, retry.DefaultPolicy())
	if err != nil {
		return nil, err
	}

	presets, err := InitializePresets(cfg.PresetFile)
	if err != nil {
		return nil, err
	}

	store, err := history.NewSQLiteStore(cfg.HistoryDB)
	if err != nil {
		return nil, fmt.Errorf("履歴データベースの初期化に失敗しました: %w", err)
	}

	exporter, err := history.NewExporter(writer, firstNonEmpty(opts.OutputDir, cfg.OutputDir))
	if err != nil {
		store.Close()
		return nil, err
	}

	controller, err := conversation.NewController(orchestrator, refiner, compositor,
		conversation.WithHistory(store),
		conversation.WithPresets(presets),
	)
	if err != nil {
		store.Close()
		return nil, err
	}

	slog.DebugContext(ctx, "アプリケーションを初期化しました",
		"image_model", imageModel,
		"text_model", textModel,
		"history_db", cfg.HistoryDB,
		"rate_interval", cfg.RateInterval)

	return &AppContext{
		Config:     cfg,
		Options:    opts,
		Reader:     reader,
		Writer:     writer,
		Generator:  orchestrator,
		Compositor: compositor,
		Controller: controller,
		History:    store,
		Exporter:   exporter,
		Presets:    presets,
	}, nil
}

// InitializeAIClient は gemini クライアントを初期化します。
// MaxRetries を指定しないので、クライアント自身の再試行（既定で1回、タイムアウトや EOF が対象）が
// retry.Invoke の下で走ります。1回の Synthesize は最大2回の通信になり、
// retry.Policy が再試行するのは分類後の RateLimited だけなのだ。
func InitializeAIClient(ctx context.Context, apiKey string) (gemini.GenerativeModel, error) {
	clientConfig := gemini.Config{
		APIKey:      apiKey,
		Temperature: genai.Ptr(config.DefaultTemperature),
	}
	aiClient, err := gemini.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("AIクライアントの初期化に失敗しました: %w", err)
	}
	return aiClient, nil
}

// InitializeImageCore は参照画像のキャッシュ付きで画像処理コアを生成します。
func InitializeImageCore(httpClient httpkit.ClientInterface, reader remoteio.InputReader) (*adapters.GeminiImageCore, error) {
	imgCache := cache.New(config.DefaultCacheTTL, 2*config.DefaultCacheTTL)
	return adapters.NewGeminiImageCore(httpClient, reader, imgCache, config.DefaultCacheTTL)
}

// InitializeOrchestrator は生成オーケストレーターを組み立てます。interval が正ならリクエスト開始の間隔を空けるのだ。
func InitializeOrchestrator(client generator.GenerationClient, threshold uint8, interval time.Duration) (*generator.Orchestrator, error) {
	opts := []generator.OrchestratorOption{
		generator.WithWhiteThreshold(threshold),
	}
	if interval > 0 {
		opts = append(opts, generator.WithRateLimiter(rate.NewLimiter(rate.Every(interval), 1)))
	}
	return generator.NewOrchestrator(client, opts...)
}

// InitializePresets は path が空なら組み込みのプリセットを、そうでなければ YAML ファイルを読み込みます。
func InitializePresets(path string) (*preset.Catalog, error) {
	if path == "" {
		return preset.Default()
	}
	return preset.LoadFile(path)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
