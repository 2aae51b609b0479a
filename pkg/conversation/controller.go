// Package conversation はチャットでの修正指示をデザイン編集とモックアップ編集に振り分ける状態機械です。
package conversation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shouni/gemini-sticker-kit/pkg/domain"
	"github.com/shouni/gemini-sticker-kit/pkg/generator"
	"github.com/shouni/gemini-sticker-kit/pkg/history"
	"github.com/shouni/gemini-sticker-kit/pkg/preset"
)

// Controller は生成・書き換え・合成の各コンポーネントを束ね、Session を進めます。
// Controller 自体は状態を持たないので、複数のセッションで共有できます。
type Controller struct {
	generator  generator.DesignGenerator
	refiner    generator.PromptRefiner
	compositor generator.MockupCompositor
	history    history.Store
	presets    *preset.Catalog
	now        func() time.Time
	newID      func() string
}

// Option は Controller の任意設定です。
type Option func(*Controller)

// WithHistory は生成物の追記先を設定します。未設定なら履歴には残しません。
func WithHistory(store history.Store) Option {
	return func(c *Controller) { c.history = store }
}

// WithPresets はモックアップのプリセット一覧を設定します。
func WithPresets(catalog *preset.Catalog) Option {
	return func(c *Controller) { c.presets = catalog }
}

// WithClock は発言日時の取得元を差し替えます。
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithIDGenerator は発言 ID の採番を差し替えます。
func WithIDGenerator(newID func() string) Option {
	return func(c *Controller) { c.newID = newID }
}

// NewController は依存関係を注入して Controller を初期化します。
func NewController(gen generator.DesignGenerator, refiner generator.PromptRefiner, compositor generator.MockupCompositor, opts ...Option) (*Controller, error) {
	if gen == nil {
		return nil, fmt.Errorf("generator (DesignGenerator) is required")
	}
	if refiner == nil {
		return nil, fmt.Errorf("refiner (PromptRefiner) is required")
	}
	if compositor == nil {
		return nil, fmt.Errorf("compositor (MockupCompositor) is required")
	}
	c := &Controller{
		generator:  gen,
		refiner:    refiner,
		compositor: compositor,
		now:        time.Now,
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Create はデザインを一括生成して履歴に追記し、最初の1件を開いたセッションを返します。
// 参照画像はこの1回の生成にだけ使い、セッションには引き継ぎません。
func (c *Controller) Create(ctx context.Context, req generator.DesignRequest) (*Session, []domain.Design, error) {
	designs, err := c.generator.Generate(ctx, req)
	if err != nil {
		return nil, nil, err
	}
	for _, d := range designs {
		c.record(ctx, d)
	}
	return c.Open(designs[0]), designs, nil
}

// Open は既存のデザインを開き、モックアップの状態を捨てて新しいトランスクリプトを始めます。
func (c *Controller) Open(d domain.Design) *Session {
	d.Image = d.Image.Clone()
	s := &Session{
		state:        StateIdle,
		design:       d,
		designPrompt: d.Prompt,
		view:         domain.ViewDesign,
	}
	s.appendTurn(c.assistantTurn(openReply(d), &d.Image, d.Prompt))
	return s
}

// TryOnPreset はプリセット ID（またはラベル）の説明文でモックアップを合成します。
func (c *Controller) TryOnPreset(ctx context.Context, s *Session, presetKey string) (domain.ConversationTurn, error) {
	if c.presets == nil {
		return domain.ConversationTurn{}, fmt.Errorf("%w: no preset catalog configured", domain.ErrInvalidRequest)
	}
	p, ok := c.presets.Find(presetKey)
	if !ok {
		return domain.ConversationTurn{}, fmt.Errorf("%w: unknown preset %q", domain.ErrInvalidRequest, presetKey)
	}
	return c.TryOn(ctx, s, p.Description, nil)
}

// TryOn は編集中のデザインをモックアップに合成し、表示をモックアップに切り替えます。
// custom がある場合は持ち込み写真に合成します。失敗時はお詫びの発言を追加して表示をデザインに戻すのだ。
// 返すエラーは受け付けなかった場合（処理中・入力不備）だけです。
func (c *Controller) TryOn(ctx context.Context, s *Session, description string, custom *domain.ImageData) (domain.ConversationTurn, error) {
	description = strings.TrimSpace(description)
	if description == "" && custom != nil {
		description = preset.CustomModelDescription
	}
	if description == "" {
		return domain.ConversationTurn{}, fmt.Errorf("%w: model description is empty", domain.ErrInvalidRequest)
	}
	if !s.busy.CompareAndSwap(false, true) {
		return domain.ConversationTurn{}, domain.ErrSessionBusy
	}
	defer s.busy.Store(false)

	s.mu.Lock()
	s.state = StateAwaitingMockupEdit
	base := s.design
	s.mu.Unlock()

	mockup, err := c.compositor.Composite(ctx, generator.CompositeRequest{
		Base:             base,
		ModelDescription: description,
		CustomModel:      custom,
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateIdle

	if err != nil {
		slog.WarnContext(ctx, "モックアップの合成に失敗しました", "design_id", base.ID, "error", err, "error_kind", domain.KindOf(err))
		s.view = domain.ViewDesign
		turn := c.assistantTurn(mockupFailedReply, nil, "")
		s.appendTurn(turn)
		return turn, nil
	}

	c.record(ctx, *mockup)
	s.mockup = mockup
	s.mockupPrompt = description
	s.view = domain.ViewMockup
	turn := c.assistantTurn(fmt.Sprintf(tryOnReplyFmt, description), &mockup.Image, description)
	s.appendTurn(turn)
	return turn, nil
}

// Send はユーザーの修正指示を1件処理し、アシスタントの返答を返します。
// 表示中の成果物によってデザインの再生成かモックアップの再合成かを決めます。
// 失敗はお詫びの発言として返し、編集中の画像は変更しません。
func (c *Controller) Send(ctx context.Context, s *Session, instruction string) (domain.ConversationTurn, error) {
	instruction = strings.TrimSpace(instruction)
	if instruction == "" {
		return domain.ConversationTurn{}, fmt.Errorf("%w: instruction is empty", domain.ErrInvalidRequest)
	}
	if !s.busy.CompareAndSwap(false, true) {
		return domain.ConversationTurn{}, domain.ErrSessionBusy
	}
	defer s.busy.Store(false)

	s.mu.Lock()
	s.appendTurn(domain.ConversationTurn{
		ID:        c.newID(),
		Role:      domain.RoleUser,
		Text:      instruction,
		CreatedAt: c.now(),
	})
	state := s.route()
	s.state = state
	current, designPrompt, mockupPrompt := s.design, s.designPrompt, s.mockupPrompt
	s.mu.Unlock()

	logger := slog.With("state", state.String(), "design_id", current.ID)
	logger.InfoContext(ctx, "修正指示を処理します")

	var turn domain.ConversationTurn
	var apply func()
	var err error
	switch state {
	case StateAwaitingMockupEdit:
		turn, apply, err = c.editMockup(ctx, s, current, mockupPrompt, instruction)
	default:
		turn, apply, err = c.editDesign(ctx, s, current, designPrompt, instruction)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateIdle

	if err != nil {
		logger.WarnContext(ctx, "修正指示の処理に失敗しました", "error", err, "error_kind", domain.KindOf(err))
		turn = c.assistantTurn(editFailedReply, nil, "")
		s.appendTurn(turn)
		return turn, nil
	}

	apply()
	s.appendTurn(turn)
	return turn, nil
}

// editDesign はプロンプトを書き換えてデザインを1件だけ再生成します。種類と画風は編集中のデザインを引き継ぎます。
func (c *Controller) editDesign(ctx context.Context, s *Session, current domain.Design, prompt, instruction string) (domain.ConversationTurn, func(), error) {
	refined := c.refiner.Refine(ctx, prompt, instruction)

	kind := current.Kind
	if !kind.Mattable() {
		kind = domain.KindSticker
	}
	designs, err := c.generator.Generate(ctx, generator.DesignRequest{
		Prompt: refined,
		Style:  current.Style,
		Kind:   kind,
		Count:  1,
	})
	if err != nil {
		return domain.ConversationTurn{}, nil, err
	}

	edited := designs[0]
	c.record(ctx, edited)
	turn := c.assistantTurn(designEditReply, &edited.Image, refined)
	apply := func() {
		s.design = edited
		s.designPrompt = refined
		s.view = domain.ViewDesign
	}
	return turn, apply, nil
}

// editMockup は説明文を書き換えて、編集中のデザインを変えずに再合成します。
func (c *Controller) editMockup(ctx context.Context, s *Session, base domain.Design, description, instruction string) (domain.ConversationTurn, func(), error) {
	refined := c.refiner.Refine(ctx, description, instruction)

	mockup, err := c.compositor.Composite(ctx, generator.CompositeRequest{
		Base:             base,
		ModelDescription: refined,
	})
	if err != nil {
		return domain.ConversationTurn{}, nil, err
	}

	c.record(ctx, *mockup)
	turn := c.assistantTurn(fmt.Sprintf(mockupEditReplyFmt, refined), &mockup.Image, refined)
	apply := func() {
		s.mockup = mockup
		s.mockupPrompt = refined
		s.view = domain.ViewMockup
	}
	return turn, apply, nil
}

// ShowDesign は表示をデザインに切り替えます。
func (c *Controller) ShowDesign(s *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view = domain.ViewDesign
}

// ShowMockup は表示をモックアップに切り替えます。まだ合成していなければエラーです。
func (c *Controller) ShowMockup(s *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mockup == nil {
		return fmt.Errorf("%w: no mockup has been generated yet", domain.ErrInvalidRequest)
	}
	s.view = domain.ViewMockup
	return nil
}

func (c *Controller) assistantTurn(text string, attachment *domain.ImageData, related string) domain.ConversationTurn {
	var img *domain.ImageData
	if attachment != nil {
		cloned := attachment.Clone()
		img = &cloned
	}
	return domain.ConversationTurn{
		ID:            c.newID(),
		Role:          domain.RoleAssistant,
		Text:          text,
		Attachment:    img,
		RelatedPrompt: related,
		CreatedAt:     c.now(),
	}
}

// record は履歴への追記を試みます。失敗してもセッションは続行するのだ。
func (c *Controller) record(ctx context.Context, d domain.Design) {
	if c.history == nil {
		return
	}
	if err := c.history.Append(ctx, d); err != nil {
		slog.WarnContext(ctx, "履歴への追記に失敗しました", "id", d.ID, "kind", d.Kind, "error", err)
	}
}
