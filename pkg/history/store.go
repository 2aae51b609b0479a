// Package history は生成済みデザインの追記専用ログと、その書き出しを提供します。
package history

import (
	"context"
	"errors"

	"github.com/shouni/gemini-sticker-kit/pkg/domain"
)

// ErrNotFound は指定した ID のデザインが履歴に無い場合のエラーです。
var ErrNotFound = errors.New("design not found in history")

// Store は生成済みデザインの追記専用ストアです。LoadAll は追記順に返します。
type Store interface {
	Append(ctx context.Context, d domain.Design) error
	LoadAll(ctx context.Context) ([]domain.Design, error)
	Get(ctx context.Context, id string) (domain.Design, error)
}
