package conversation

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/shouni/gemini-sticker-kit/pkg/domain"
	"github.com/shouni/gemini-sticker-kit/pkg/generator"
	"github.com/shouni/gemini-sticker-kit/pkg/preset"
	"github.com/shouni/gemini-sticker-kit/pkg/retry"
)

// --- Mocks ---

// fakeImageClient は GenerationClient のテスト用モックなのだ。
// 既定ではデザインには白背景の PNG、モックアップには連番のバイト列を返します。
type fakeImageClient struct {
	mu             sync.Mutex
	requests       []domain.SynthesisRequest
	mockups        int
	synthesizeFunc func(ctx context.Context, req domain.SynthesisRequest) (*domain.ImageData, error)
	designPNG      []byte
}

func (f *fakeImageClient) Synthesize(ctx context.Context, req domain.SynthesisRequest) (*domain.ImageData, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	fn := f.synthesizeFunc
	f.mu.Unlock()

	if fn != nil {
		return fn(ctx, req)
	}
	return f.defaultImage(req), nil
}

func (f *fakeImageClient) defaultImage(req domain.SynthesisRequest) *domain.ImageData {
	if isMockupRequest(req) {
		f.mu.Lock()
		f.mockups++
		n := f.mockups
		f.mu.Unlock()
		return &domain.ImageData{Data: []byte(fmt.Sprintf("mockup-photo-%d", n)), MimeType: "image/jpeg"}
	}
	return &domain.ImageData{Data: f.designPNG, MimeType: "image/png"}
}

func (f *fakeImageClient) lastRequest(t *testing.T) domain.SynthesisRequest {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.requests)
	return f.requests[len(f.requests)-1]
}

func (f *fakeImageClient) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func (f *fakeImageClient) fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.synthesizeFunc = func(ctx context.Context, req domain.SynthesisRequest) (*domain.ImageData, error) {
		return nil, err
	}
}

func isMockupRequest(req domain.SynthesisRequest) bool {
	for _, p := range req.Parts {
		if p.Image != nil {
			return true
		}
	}
	return false
}

// fakeTextClient は TextCompletionClient のテスト用モックなのだ。
type fakeTextClient struct {
	mu           sync.Mutex
	prompts      []string
	completeFunc func(ctx context.Context, prompt string) (string, error)
}

func (f *fakeTextClient) Complete(ctx context.Context, prompt string) (string, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	fn := f.completeFunc
	f.mu.Unlock()
	if fn != nil {
		return fn(ctx, prompt)
	}
	return "", nil
}

func (f *fakeTextClient) reply(text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.completeFunc = func(ctx context.Context, prompt string) (string, error) { return text, nil }
}

// memoryStore は history.Store のテスト用実装なのだ。
type memoryStore struct {
	mu      sync.Mutex
	designs []domain.Design
	err     error
}

func (m *memoryStore) Append(ctx context.Context, d domain.Design) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.designs = append(m.designs, d)
	return nil
}

func (m *memoryStore) LoadAll(ctx context.Context) ([]domain.Design, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Design(nil), m.designs...), nil
}

func (m *memoryStore) Get(ctx context.Context, id string) (domain.Design, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.designs {
		if d.ID == id {
			return d, nil
		}
	}
	return domain.Design{}, fmt.Errorf("not found: %s", id)
}

// --- Harness ---

type harness struct {
	ctrl    *Controller
	images  *fakeImageClient
	text    *fakeTextClient
	history *memoryStore
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	policy := retry.DefaultPolicy()
	policy.Sleep = func(context.Context, time.Duration) error { return nil }

	images := &fakeImageClient{designPNG: designFixture(t)}
	text := &fakeTextClient{}
	store := &memoryStore{}

	ids := 0
	orch, err := generator.NewOrchestrator(images,
		generator.WithRetryPolicy(policy),
		generator.WithIDGenerator(func() string { ids++; return fmt.Sprintf("design-%03d", ids) }),
	)
	require.NoError(t, err)
	refiner, err := generator.NewRefiner(text)
	require.NoError(t, err)
	compositor, err := generator.NewCompositor(images, policy)
	require.NoError(t, err)
	presets, err := preset.Default()
	require.NoError(t, err)

	ctrl, err := NewController(orch, refiner, compositor, WithHistory(store), WithPresets(presets))
	require.NoError(t, err)

	return &harness{ctrl: ctrl, images: images, text: text, history: store}
}

// designFixture は白背景の中央に色の付いた被写体がある PNG を作るのだ。
func designFixture(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 6, 6))
	for y := 0; y < 6; y++ {
		for x := 0; x < 6; x++ {
			img.SetNRGBA(x, y, color.NRGBA{255, 255, 255, 255})
		}
	}
	img.SetNRGBA(2, 2, color.NRGBA{30, 144, 255, 255})
	img.SetNRGBA(3, 3, color.NRGBA{30, 144, 255, 255})
	buf := new(bytes.Buffer)
	if err := png.Encode(buf, img); err != nil {
		t.Fatalf("failed to encode fixture: %v", err)
	}
	return buf.Bytes()
}

func textOf(req domain.SynthesisRequest) string {
	for _, p := range req.Parts {
		if p.Text != "" {
			return p.Text
		}
	}
	return ""
}
