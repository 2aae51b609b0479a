package domain

import (
	"errors"
	"fmt"
)

// 画像生成まわりのエラー分類。分類済みエラーは fmt.Errorf("%w: %w", 分類, 原因) で作るので
// errors.Is で分類と原因の両方を判定できます。
var (
	// ErrRateLimited はクォータ超過。リトライ対象です。
	ErrRateLimited = errors.New("rate limited")
	// ErrInvalidRequest は呼び出し側やプロンプトの不備。リトライしません。
	ErrInvalidRequest = errors.New("invalid request")
	// ErrUnavailable はプロバイダ側の失敗。1回の呼び出しの中ではリトライしません。
	ErrUnavailable = errors.New("provider unavailable")
	// ErrNoImageReturned は応答に画像が含まれていなかった場合。Unavailable として扱います。
	ErrNoImageReturned = fmt.Errorf("%w: no image returned", ErrUnavailable)
	// ErrSessionBusy は処理中のセッションに次の指示が来た場合。
	ErrSessionBusy = errors.New("session is processing another instruction")
)

// ErrorKind はエラー分類のラベルです。
type ErrorKind string

const (
	KindRateLimited     ErrorKind = "RateLimited"
	KindInvalidRequest  ErrorKind = "InvalidRequest"
	KindUnavailable     ErrorKind = "Unavailable"
	KindNoImageReturned ErrorKind = "NoImageReturned"
	KindUnknown         ErrorKind = "Unknown"
)

// Classify は err を分類 kind でラップします。err が既に kind に分類済みならそのまま返すのだ。
func Classify(kind, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, kind) {
		return err
	}
	return fmt.Errorf("%w: %w", kind, err)
}

// KindOf はエラーの分類ラベルを返します。
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrRateLimited):
		return KindRateLimited
	case errors.Is(err, ErrInvalidRequest):
		return KindInvalidRequest
	case errors.Is(err, ErrNoImageReturned):
		return KindNoImageReturned
	case errors.Is(err, ErrUnavailable):
		return KindUnavailable
	default:
		return KindUnknown
	}
}

// IsRetryable は RetryingInvoker が再試行してよいエラーかどうかを返します。
func IsRetryable(err error) bool {
	return errors.Is(err, ErrRateLimited)
}
