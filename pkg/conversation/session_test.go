package conversation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shouni/gemini-sticker-kit/pkg/domain"
)

func TestSession_route(t *testing.T) {
	mockup := &domain.Design{ID: "m1", Kind: domain.KindMockup}

	tests := []struct {
		name    string
		session *Session
		want    State
	}{
		{"デザイン表示", &Session{view: domain.ViewDesign}, StateAwaitingDesignEdit},
		{"モックアップ表示で説明文あり", &Session{view: domain.ViewMockup, mockup: mockup, mockupPrompt: "hoodie"}, StateAwaitingMockupEdit},
		{"モックアップ表示だが説明文なし", &Session{view: domain.ViewMockup, mockup: mockup}, StateAwaitingDesignEdit},
		{"デザイン表示で説明文あり", &Session{view: domain.ViewDesign, mockup: mockup, mockupPrompt: "hoodie"}, StateAwaitingDesignEdit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.session.route())
		})
	}
}

func TestSession_ActiveImage(t *testing.T) {
	s := &Session{
		design: domain.Design{Image: domain.ImageData{Data: []byte("design")}},
		mockup: &domain.Design{Image: domain.ImageData{Data: []byte("mockup")}},
		view:   domain.ViewDesign,
	}
	assert.Equal(t, []byte("design"), s.ActiveImage().Data)

	s.view = domain.ViewMockup
	assert.Equal(t, []byte("mockup"), s.ActiveImage().Data)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "Idle", StateIdle.String())
	assert.Equal(t, "AwaitingDesignEdit", StateAwaitingDesignEdit.String())
	assert.Equal(t, "AwaitingMockupEdit", StateAwaitingMockupEdit.String())
}
