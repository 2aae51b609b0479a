package adapters

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shouni/go-gemini-client/pkg/gemini"

	"github.com/shouni/gemini-sticker-kit/pkg/domain"
)

// GeminiImageAdapter は Gemini の画像モデルで SynthesisRequest を実行するアダプター層です。
type GeminiImageAdapter struct {
	imgCore  *GeminiImageCore       // 参照画像の取得と応答の解析
	aiClient gemini.GenerativeModel // 通信クライアント
	model    string                 // 使用するモデル名
}

// NewGeminiImageAdapter は GeminiImageCore と依存関係を注入して初期化します。
func NewGeminiImageAdapter(core *GeminiImageCore, aiClient gemini.GenerativeModel, modelName string) (*GeminiImageAdapter, error) {
	if core == nil {
		return nil, fmt.Errorf("core (GeminiImageCore) is required")
	}
	if aiClient == nil {
		return nil, fmt.Errorf("aiClient (gemini.GenerativeModel) is required")
	}
	if modelName == "" {
		return nil, fmt.Errorf("modelName is required")
	}
	return &GeminiImageAdapter{
		imgCore:  core,
		aiClient: aiClient,
		model:    modelName,
	}, nil
}

// Synthesize は1回だけ画像生成を実行します。再試行は呼び出し側の責務なのだ。
// 返すエラーは domain の分類（RateLimited / InvalidRequest / Unavailable）でラップされています。
func (a *GeminiImageAdapter) Synthesize(ctx context.Context, req domain.SynthesisRequest) (*domain.ImageData, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	parts, err := a.imgCore.ToParts(ctx, req.Parts)
	if err != nil {
		return nil, err
	}
	slog.DebugContext(ctx, "Gemini画像生成リクエストを送信します",
		"model", a.model,
		"parts", len(parts),
		"aspect_ratio", req.AspectRatio)

	opts := gemini.GenerateOptions{
		AspectRatio: string(req.AspectRatio),
	}

	resp, err := a.aiClient.GenerateWithParts(ctx, a.model, parts, opts)
	if err != nil {
		return nil, ClassifyError(fmt.Errorf("Gemini画像生成エラー: %w", err))
	}

	return a.imgCore.ParseToResponse(resp)
}
