package adapters

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/shouni/go-gemini-client/pkg/gemini"
	"github.com/stretchr/testify/assert"
	"google.golang.org/genai"

	"github.com/shouni/gemini-sticker-kit/pkg/domain"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"APIError 429", genai.APIError{Code: 429}, domain.ErrRateLimited},
		{"RESOURCE_EXHAUSTED", genai.APIError{Code: 200, Status: "RESOURCE_EXHAUSTED"}, domain.ErrRateLimited},
		{"ラップされた APIError", fmt.Errorf("call failed: %w", genai.APIError{Code: 429}), domain.ErrRateLimited},
		{"APIError 400", genai.APIError{Code: 400, Status: "INVALID_ARGUMENT"}, domain.ErrInvalidRequest},
		{"APIError 403", genai.APIError{Code: 403}, domain.ErrInvalidRequest},
		{"APIError 500", genai.APIError{Code: 500, Status: "INTERNAL"}, domain.ErrUnavailable},
		{"APIError 503", genai.APIError{Code: 503}, domain.ErrUnavailable},
		{"メッセージに quota", errors.New("Quota exceeded for model"), domain.ErrRateLimited},
		{"メッセージに 429", errors.New("unexpected status 429"), domain.ErrRateLimited},
		{"不明なエラー", errors.New("EOF"), domain.ErrUnavailable},
		{"タイムアウト", context.DeadlineExceeded, domain.ErrUnavailable},
		{"安全フィルターで停止", fmt.Errorf("Gemini画像生成エラー: %w", &gemini.APIResponseError{}), domain.ErrInvalidRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyError(tt.err)
			assert.ErrorIs(t, got, tt.want)
			assert.Contains(t, got.Error(), tt.err.Error(), "原因のメッセージが残ること")
		})
	}

	t.Run("分類済みはそのまま", func(t *testing.T) {
		err := domain.Classify(domain.ErrInvalidRequest, errors.New("429 in text"))
		assert.Equal(t, err, ClassifyError(err))
	})

	t.Run("nil", func(t *testing.T) {
		assert.NoError(t, ClassifyError(nil))
	})
}
