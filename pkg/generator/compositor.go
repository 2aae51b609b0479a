package generator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shouni/gemini-sticker-kit/pkg/domain"
	"github.com/shouni/gemini-sticker-kit/pkg/retry"
)

const (
	// CustomModelAspectRatio は持ち込み写真に合成する場合の縦横比です。
	CustomModelAspectRatio = domain.AspectSquare
	// SceneAspectRatio は撮影シーンを生成する場合の縦横比です。
	SceneAspectRatio = domain.AspectPortrait
)

// CompositeRequest はモックアップ合成の要求です。
type CompositeRequest struct {
	Base             domain.Design     // 合成するデザイン。変更されません
	ModelDescription string            // 撮影シーンやモデルの説明
	CustomModel      *domain.ImageData // 任意。ユーザーが持ち込んだモデル写真
}

// Compositor はデザインをモデル写真や商品写真に合成し、新しい mockup の Design を返します。
type Compositor struct {
	client GenerationClient
	policy retry.Policy
	now    func() time.Time
	newID  func() string
}

// NewCompositor は GenerationClient を注入して Compositor を初期化します。
func NewCompositor(client GenerationClient, policy retry.Policy) (*Compositor, error) {
	if client == nil {
		return nil, fmt.Errorf("client (GenerationClient) is required")
	}
	return &Compositor{
		client: client,
		policy: policy,
		now:    time.Now,
		newID:  uuid.NewString,
	}, nil
}

// Composite はデザインを合成します。結果の画像は合成済み写真なので背景除去はしません。
func (c *Compositor) Composite(ctx context.Context, req CompositeRequest) (*domain.Design, error) {
	if len(req.Base.Image.Data) == 0 {
		return nil, fmt.Errorf("%w: base design has no image", domain.ErrInvalidRequest)
	}
	if req.CustomModel == nil && strings.TrimSpace(req.ModelDescription) == "" {
		return nil, fmt.Errorf("%w: model description is empty", domain.ErrInvalidRequest)
	}

	synth := c.buildRequest(req)
	if err := synth.Validate(); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "モックアップ合成を開始します",
		"base_id", req.Base.ID,
		"custom_model", req.CustomModel != nil,
		"aspect_ratio", synth.AspectRatio)

	img, err := retry.Invoke(ctx, c.policy, func(ctx context.Context) (*domain.ImageData, error) {
		return c.client.Synthesize(ctx, synth)
	})
	if err != nil {
		return nil, fmt.Errorf("モックアップの合成に失敗しました: %w", err)
	}

	return &domain.Design{
		ID:        c.newID(),
		Prompt:    req.ModelDescription,
		Style:     req.Base.Style,
		Kind:      domain.KindMockup,
		Image:     *img,
		CreatedAt: c.now(),
	}, nil
}

func (c *Compositor) buildRequest(req CompositeRequest) domain.SynthesisRequest {
	parts := []domain.PromptPart{domain.ImagePart(req.Base.Image.Clone())}
	ratio := SceneAspectRatio
	if req.CustomModel != nil {
		parts = append(parts, domain.ImagePart(*req.CustomModel))
		ratio = CustomModelAspectRatio
	}
	parts = append(parts, domain.TextPart(BuildMockupPrompt(req.ModelDescription, req.CustomModel != nil)))

	return domain.SynthesisRequest{Parts: parts, AspectRatio: ratio}
}
