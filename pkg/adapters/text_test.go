package adapters

import (
	"context"
	"testing"

	"github.com/shouni/go-gemini-client/pkg/gemini"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/shouni/gemini-sticker-kit/pkg/domain"
)

func TestGeminiTextAdapter_Complete(t *testing.T) {
	ctx := context.Background()

	t.Run("応答テキストを返すのだ", func(t *testing.T) {
		var gotPrompt string
		ai := &mockAIClient{
			generateContentFunc: func(ctx context.Context, model string, prompt string) (*gemini.Response, error) {
				gotPrompt = prompt
				return &gemini.Response{
					RawResponse: &genai.GenerateContentResponse{
						Candidates: []*genai.Candidate{{
							Content: &genai.Content{Parts: []*genai.Part{{Text: "a blue fox"}}},
						}},
					},
				}, nil
			},
		}
		a, err := NewGeminiTextAdapter(ai, "gemini-text-test")
		require.NoError(t, err)

		got, err := a.Complete(ctx, "rewrite this")
		require.NoError(t, err)
		assert.Equal(t, "a blue fox", got)
		assert.Equal(t, "rewrite this", gotPrompt)
	})

	t.Run("エラーは分類して返すのだ", func(t *testing.T) {
		ai := &mockAIClient{
			generateContentFunc: func(ctx context.Context, model string, prompt string) (*gemini.Response, error) {
				return nil, genai.APIError{Code: 400, Status: "INVALID_ARGUMENT"}
			},
		}
		a, err := NewGeminiTextAdapter(ai, "gemini-text-test")
		require.NoError(t, err)

		_, err = a.Complete(ctx, "rewrite this")
		assert.ErrorIs(t, err, domain.ErrInvalidRequest)
	})

	t.Run("空の応答は空文字なのだ", func(t *testing.T) {
		a, err := NewGeminiTextAdapter(&mockAIClient{}, "gemini-text-test")
		require.NoError(t, err)

		got, err := a.Complete(ctx, "rewrite this")
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}
