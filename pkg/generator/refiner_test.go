package generator

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefiner_Refine(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		response string
		err      error
		want     string
	}{
		{name: "書き換え結果を返す", response: "a blue fox", want: "a blue fox"},
		{name: "前後の空白と引用符を取り除く", response: "  \"a blue fox in the snow\"\n", want: "a blue fox in the snow"},
		{name: "空の応答なら元のプロンプト", response: "   ", want: "a red fox"},
		{name: "失敗時は素朴に連結する", err: errors.New("boom"), want: "a red fox make it blue"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &mockTextClient{
				completeFunc: func(ctx context.Context, prompt string) (string, error) {
					return tt.response, tt.err
				},
			}
			r, err := NewRefiner(client)
			require.NoError(t, err)

			got := r.Refine(ctx, "a red fox", "make it blue")
			assert.Equal(t, tt.want, got)

			require.Len(t, client.prompts, 1)
			assert.Contains(t, client.prompts[0], `Original Prompt: "a red fox"`)
			assert.Contains(t, client.prompts[0], `User Change Request: "make it blue"`)
		})
	}
}

func TestNewRefiner(t *testing.T) {
	_, err := NewRefiner(nil)
	assert.Error(t, err)
}
