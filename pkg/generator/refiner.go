package generator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Refiner はテキストモデルでプロンプトを書き換えます。
// 可用性を優先し、テキストモデルが失敗しても素朴な連結で必ずプロンプトを返すのだ。
type Refiner struct {
	client TextCompletionClient
}

// NewRefiner は TextCompletionClient を注入して Refiner を初期化します。
func NewRefiner(client TextCompletionClient) (*Refiner, error) {
	if client == nil {
		return nil, fmt.Errorf("client (TextCompletionClient) is required")
	}
	return &Refiner{client: client}, nil
}

// Refine は currentPrompt に instruction を反映した新しいプロンプトを返します。
// 失敗時は currentPrompt + " " + instruction、空の応答なら currentPrompt をそのまま返します。
func (r *Refiner) Refine(ctx context.Context, currentPrompt, instruction string) string {
	text, err := r.client.Complete(ctx, BuildRefinePrompt(currentPrompt, instruction))
	if err != nil {
		slog.WarnContext(ctx, "プロンプトの書き換えに失敗しました。連結したプロンプトで続行します", "error", err)
		return currentPrompt + " " + instruction
	}

	refined := strings.Trim(strings.TrimSpace(text), `"`)
	if refined == "" {
		return currentPrompt
	}
	return refined
}
