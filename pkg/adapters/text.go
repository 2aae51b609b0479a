package adapters

import (
	"context"
	"fmt"

	"github.com/shouni/go-gemini-client/pkg/gemini"
)

// GeminiTextAdapter はテキストモデルでプロンプトの書き換え等を行うアダプターです。
type GeminiTextAdapter struct {
	aiClient gemini.GenerativeModel
	model    string
}

// NewGeminiTextAdapter は依存関係を注入してアダプターのインスタンスを作成します。
func NewGeminiTextAdapter(aiClient gemini.GenerativeModel, modelName string) (*GeminiTextAdapter, error) {
	if aiClient == nil {
		return nil, fmt.Errorf("aiClient (gemini.GenerativeModel) is required")
	}
	if modelName == "" {
		return nil, fmt.Errorf("modelName is required")
	}
	return &GeminiTextAdapter{aiClient: aiClient, model: modelName}, nil
}

// Complete は prompt を送信し、応答テキストをそのまま返します。
func (a *GeminiTextAdapter) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := a.aiClient.GenerateContent(ctx, a.model, prompt)
	if err != nil {
		return "", ClassifyError(fmt.Errorf("Geminiテキスト生成エラー: %w", err))
	}
	if resp == nil || resp.RawResponse == nil {
		return "", nil
	}
	return resp.RawResponse.Text(), nil
}
