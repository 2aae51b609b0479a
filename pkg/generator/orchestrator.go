package generator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/shouni/gemini-sticker-kit/pkg/domain"
	"github.com/shouni/gemini-sticker-kit/pkg/imgutil"
	"github.com/shouni/gemini-sticker-kit/pkg/retry"
)

// DesignAspectRatio はステッカー・プリント生成時の縦横比です。
const DesignAspectRatio = domain.AspectSquare

// DesignRequest はユーザーの「作成」操作1回分の要求です。
type DesignRequest struct {
	Prompt       string
	Style        domain.Style
	Kind         domain.DesignKind
	Count        int
	Reference    *domain.ImageData // 任意。構図・画風の参考画像
	ReferenceURL string            // 任意。http(s) または gs:// の参考画像
}

// Orchestrator は Count 件の生成リクエストを順番に実行し、成功した画像の背景を除去して Design にします。
// レート制限を避けるため、リクエストは並列にしません。
type Orchestrator struct {
	client    GenerationClient
	policy    retry.Policy
	limiter   *rate.Limiter
	threshold uint8
	now       func() time.Time
	newID     func() string
}

// OrchestratorOption は Orchestrator の任意設定です。
type OrchestratorOption func(*Orchestrator)

// WithRetryPolicy は再試行方針を差し替えます。
func WithRetryPolicy(p retry.Policy) OrchestratorOption {
	return func(o *Orchestrator) { o.policy = p }
}

// WithRateLimiter はリクエスト開始の間隔を制御するリミッターを設定します。
func WithRateLimiter(l *rate.Limiter) OrchestratorOption {
	return func(o *Orchestrator) { o.limiter = l }
}

// WithWhiteThreshold は背景除去の閾値を設定します。
func WithWhiteThreshold(th uint8) OrchestratorOption {
	return func(o *Orchestrator) { o.threshold = th }
}

// WithClock は作成日時の取得元を差し替えます。
func WithClock(now func() time.Time) OrchestratorOption {
	return func(o *Orchestrator) { o.now = now }
}

// WithIDGenerator は Design ID の採番を差し替えます。
func WithIDGenerator(newID func() string) OrchestratorOption {
	return func(o *Orchestrator) { o.newID = newID }
}

// NewOrchestrator は GenerationClient を注入して Orchestrator を初期化します。
func NewOrchestrator(client GenerationClient, opts ...OrchestratorOption) (*Orchestrator, error) {
	if client == nil {
		return nil, fmt.Errorf("client (GenerationClient) is required")
	}
	o := &Orchestrator{
		client:    client,
		policy:    retry.DefaultPolicy(),
		threshold: imgutil.DefaultWhiteThreshold,
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// Generate はデザインを Count 件生成します。
// 一部が失敗しても成功分を返し、全件失敗したときだけ最後のエラーを返します。
func (o *Orchestrator) Generate(ctx context.Context, req DesignRequest) ([]domain.Design, error) {
	synth, err := o.buildRequest(req)
	if err != nil {
		return nil, err
	}

	count := max(req.Count, 1)
	designs := make([]domain.Design, 0, count)
	var lastErr error

	for i := 0; i < count; i++ {
		logger := slog.With("index", i+1, "count", count, "kind", req.Kind)

		if o.limiter != nil {
			if err := o.limiter.Wait(ctx); err != nil {
				lastErr = err
				break
			}
		}

		img, err := retry.Invoke(ctx, o.policy, func(ctx context.Context) (*domain.ImageData, error) {
			return o.client.Synthesize(ctx, synth)
		})
		if err != nil {
			lastErr = err
			logger.WarnContext(ctx, "画像生成に失敗しました。次のリクエストに進みます", "error", err, "error_kind", domain.KindOf(err))
			if ctx.Err() != nil {
				break
			}
			continue
		}

		designs = append(designs, domain.Design{
			ID:        o.newID(),
			Prompt:    req.Prompt,
			Style:     req.Style,
			Kind:      req.Kind,
			Image:     o.postProcess(ctx, req.Kind, *img),
			CreatedAt: o.now(),
		})
		logger.InfoContext(ctx, "画像生成が完了しました")
	}

	if len(designs) == 0 {
		if lastErr == nil {
			lastErr = domain.ErrNoImageReturned
		}
		return nil, fmt.Errorf("デザインを1件も生成できませんでした: %w", lastErr)
	}
	return designs, nil
}

func (o *Orchestrator) buildRequest(req DesignRequest) (domain.SynthesisRequest, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return domain.SynthesisRequest{}, fmt.Errorf("%w: prompt is empty", domain.ErrInvalidRequest)
	}
	if !req.Kind.Mattable() {
		return domain.SynthesisRequest{}, fmt.Errorf("%w: design kind %q cannot be generated directly", domain.ErrInvalidRequest, req.Kind)
	}

	withRef := req.Reference != nil || req.ReferenceURL != ""
	parts := make([]domain.PromptPart, 0, 2)
	if req.Reference != nil {
		parts = append(parts, domain.ImagePart(*req.Reference))
	} else if req.ReferenceURL != "" {
		parts = append(parts, domain.PromptPart{ImageURL: req.ReferenceURL})
	}
	parts = append(parts, domain.TextPart(BuildDesignPrompt(req.Prompt, req.Style, req.Kind, withRef)))

	synth := domain.SynthesisRequest{Parts: parts, AspectRatio: DesignAspectRatio}
	return synth, synth.Validate()
}

// postProcess はステッカー・プリントの背景を透過するのだ。デコードできない画像はそのまま使います。
func (o *Orchestrator) postProcess(ctx context.Context, kind domain.DesignKind, img domain.ImageData) domain.ImageData {
	if !kind.Mattable() {
		return img
	}
	matted, err := imgutil.RemoveBackground(img.Data, o.threshold)
	if err != nil {
		slog.WarnContext(ctx, "背景除去に失敗したため元の画像を使用します", "mime_type", img.MimeType, "error", err)
		return img
	}
	return *matted
}
