// Package retry はレート制限エラーに対する指数バックオフ付きの再試行を提供します。
package retry

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/shouni/gemini-sticker-kit/pkg/domain"
)

const (
	DefaultBase       = 2 * time.Second
	DefaultJitter     = 1 * time.Second
	DefaultMaxRetries = 3
)

// Policy は再試行の方針です。Sleep と Jitter を差し替えるとテストで時間を進めずに検証できます。
type Policy struct {
	Base       time.Duration
	Jitter     time.Duration
	MaxRetries int

	// Sleep は d だけ待機します。nil の場合はコンテキストを尊重するタイマー待機になります。
	Sleep func(ctx context.Context, d time.Duration) error
	// RandomJitter は [0, max) の一様乱数を返します。nil の場合は math/rand/v2 を使います。
	RandomJitter func(max time.Duration) time.Duration
	// Retryable は再試行してよいエラーかを判定します。nil の場合は domain.IsRetryable です。
	Retryable func(err error) bool
}

// DefaultPolicy は base=2s, jitter=1s, 最大3回の再試行（合計4回）の方針を返すのだ。
func DefaultPolicy() Policy {
	return Policy{
		Base:       DefaultBase,
		Jitter:     DefaultJitter,
		MaxRetries: DefaultMaxRetries,
	}
}

// Delay は k 回目（0始まり）の再試行前の待機時間 base*2^k + jitter を返します。
func (p Policy) Delay(k int) time.Duration {
	d := p.Base << k
	if p.Jitter > 0 {
		d += p.randomJitter(p.Jitter)
	}
	return d
}

func (p Policy) randomJitter(max time.Duration) time.Duration {
	if p.RandomJitter != nil {
		return p.RandomJitter(max)
	}
	return time.Duration(rand.Int64N(int64(max)))
}

func (p Policy) sleep(ctx context.Context, d time.Duration) error {
	if p.Sleep != nil {
		return p.Sleep(ctx, d)
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (p Policy) retryable(err error) bool {
	if p.Retryable != nil {
		return p.Retryable(err)
	}
	return domain.IsRetryable(err)
}

// Invoke は op を実行し、レート制限エラーのときだけ Policy に従って再試行します。
// それ以外のエラーは即座に返します。上限に達した場合は最後のエラーを返します。
func Invoke[T any](ctx context.Context, p Policy, op func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	maxRetries := max(p.MaxRetries, 0)

	for attempt := 0; ; attempt++ {
		v, err := op(ctx)
		if err == nil {
			return v, nil
		}
		if !p.retryable(err) || attempt >= maxRetries {
			return zero, err
		}

		delay := p.Delay(attempt)
		slog.WarnContext(ctx, "レート制限に達しました。待機してから再試行します",
			"attempt", attempt+1,
			"max_retries", maxRetries,
			"delay", delay.Round(time.Millisecond),
			"error", err)

		if sErr := p.sleep(ctx, delay); sErr != nil {
			return zero, errors.Join(sErr, err)
		}
	}
}
