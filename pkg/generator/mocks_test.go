package generator

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"github.com/shouni/gemini-sticker-kit/pkg/domain"
	"github.com/shouni/gemini-sticker-kit/pkg/retry"
)

// --- Mocks ---

// mockGenerationClient は GenerationClient のテスト用モックなのだ。
type mockGenerationClient struct {
	synthesizeFunc func(ctx context.Context, call int, req domain.SynthesisRequest) (*domain.ImageData, error)
	requests       []domain.SynthesisRequest
}

func (m *mockGenerationClient) Synthesize(ctx context.Context, req domain.SynthesisRequest) (*domain.ImageData, error) {
	m.requests = append(m.requests, req)
	if m.synthesizeFunc != nil {
		return m.synthesizeFunc(ctx, len(m.requests), req)
	}
	return nil, domain.ErrNoImageReturned
}

// mockTextClient は TextCompletionClient のテスト用モックなのだ。
type mockTextClient struct {
	completeFunc func(ctx context.Context, prompt string) (string, error)
	prompts      []string
}

func (m *mockTextClient) Complete(ctx context.Context, prompt string) (string, error) {
	m.prompts = append(m.prompts, prompt)
	if m.completeFunc != nil {
		return m.completeFunc(ctx, prompt)
	}
	return "", nil
}

// --- Helpers ---

// noWaitPolicy は待機せずに再試行する方針なのだ。
func noWaitPolicy() retry.Policy {
	p := retry.DefaultPolicy()
	p.Sleep = func(context.Context, time.Duration) error { return nil }
	return p
}

// stickerPNG は白背景の中央に赤い点がある PNG を作るのだ。
func stickerPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.SetNRGBA(x, y, color.NRGBA{255, 255, 255, 255})
		}
	}
	img.SetNRGBA(4, 4, color.NRGBA{220, 20, 60, 255})
	buf := new(bytes.Buffer)
	if err := png.Encode(buf, img); err != nil {
		t.Fatalf("failed to encode fixture: %v", err)
	}
	return buf.Bytes()
}

func textOf(req domain.SynthesisRequest) string {
	for _, p := range req.Parts {
		if p.Text != "" {
			return p.Text
		}
	}
	return ""
}
