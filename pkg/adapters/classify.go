package adapters

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/shouni/go-gemini-client/pkg/gemini"
	"google.golang.org/genai"

	"github.com/shouni/gemini-sticker-kit/pkg/domain"
)

// ClassifyError はプロバイダのエラーを domain の分類でラップします。
// 429 / RESOURCE_EXHAUSTED はレート制限、4xx の入力不備は InvalidRequest、それ以外は Unavailable です。
// 安全フィルターなどで応答が止められた場合は、クライアントが *gemini.APIResponseError を返すので InvalidRequest にするのだ。
func ClassifyError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrRateLimited) || errors.Is(err, domain.ErrInvalidRequest) || errors.Is(err, domain.ErrUnavailable) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return domain.Classify(domain.ErrUnavailable, err)
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return domain.Classify(classifyAPIError(apiErr.Code, apiErr.Status), err)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return domain.Classify(classifyAPIError(apiErrPtr.Code, apiErrPtr.Status), err)
	}

	var respErr *gemini.APIResponseError
	if errors.As(err, &respErr) {
		return domain.Classify(domain.ErrInvalidRequest, err)
	}

	// ラップされて型が失われている場合はメッセージで判定するのだ
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "429"), strings.Contains(msg, "resource_exhausted"), strings.Contains(msg, "quota"):
		return domain.Classify(domain.ErrRateLimited, err)
	case strings.Contains(msg, "invalid_argument"), strings.Contains(msg, "permission_denied"):
		return domain.Classify(domain.ErrInvalidRequest, err)
	}
	return domain.Classify(domain.ErrUnavailable, err)
}

func classifyAPIError(code int, status string) error {
	switch {
	case code == http.StatusTooManyRequests, strings.Contains(status, "RESOURCE_EXHAUSTED"):
		return domain.ErrRateLimited
	case code == http.StatusBadRequest, code == http.StatusUnauthorized, code == http.StatusForbidden, code == http.StatusNotFound,
		strings.Contains(status, "INVALID_ARGUMENT"), strings.Contains(status, "PERMISSION_DENIED"):
		return domain.ErrInvalidRequest
	default:
		return domain.ErrUnavailable
	}
}
