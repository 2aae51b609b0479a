package generator

import (
	"context"

	"github.com/shouni/gemini-sticker-kit/pkg/domain"
)

// GenerationClient は画像合成プロバイダの窓口です。
// 失敗時は domain.ErrRateLimited / ErrInvalidRequest / ErrUnavailable のいずれかに分類されたエラーを返します。
type GenerationClient interface {
	Synthesize(ctx context.Context, req domain.SynthesisRequest) (*domain.ImageData, error)
}

// TextCompletionClient はテキスト生成プロバイダの窓口です。エラー分類は GenerationClient と同じです。
type TextCompletionClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// DesignGenerator はデザインの一括生成を行います。
type DesignGenerator interface {
	Generate(ctx context.Context, req DesignRequest) ([]domain.Design, error)
}

// PromptRefiner はユーザーの修正指示を取り込んだプロンプトを返します。失敗しても常に使えるプロンプトを返します。
type PromptRefiner interface {
	Refine(ctx context.Context, currentPrompt, instruction string) string
}

// MockupCompositor はデザインをモデル写真や商品に合成します。
type MockupCompositor interface {
	Composite(ctx context.Context, req CompositeRequest) (*domain.Design, error)
}
