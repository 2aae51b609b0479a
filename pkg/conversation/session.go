package conversation

import (
	"sync"
	"sync/atomic"

	"github.com/shouni/gemini-sticker-kit/pkg/domain"
)

// State はセッションが今どの指示を処理しているかを表します。
type State int

const (
	StateIdle State = iota
	StateAwaitingDesignEdit
	StateAwaitingMockupEdit
)

func (s State) String() string {
	switch s {
	case StateAwaitingDesignEdit:
		return "AwaitingDesignEdit"
	case StateAwaitingMockupEdit:
		return "AwaitingMockupEdit"
	default:
		return "Idle"
	}
}

// Session は1ユーザーが1つのデザインを編集している間の状態です。
// フィールドは Controller だけが更新し、読み出しはアクセサ経由で行います。
type Session struct {
	mu   sync.Mutex
	busy atomic.Bool

	state        State
	design       domain.Design // 編集対象のデザイン（最新の編集結果）
	designPrompt string
	mockup       *domain.Design
	mockupPrompt string
	view         domain.ViewMode
	transcript   []domain.ConversationTurn
}

// route は次の指示をどちらの編集として扱うかを決めるのだ。
// モックアップ表示中で、かつ合成に使った説明文がある場合だけモックアップの編集です。
func (s *Session) route() State {
	if s.view == domain.ViewMockup && s.mockupPrompt != "" && s.mockup != nil {
		return StateAwaitingMockupEdit
	}
	return StateAwaitingDesignEdit
}

func (s *Session) appendTurn(t domain.ConversationTurn) {
	s.transcript = append(s.transcript, t)
}

// ActiveDesign は編集対象のデザインを返します。
func (s *Session) ActiveDesign() domain.Design {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.design
}

// Mockup は直近のモックアップを返します。無ければ nil です。
func (s *Session) Mockup() *domain.Design {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mockup == nil {
		return nil
	}
	m := *s.mockup
	return &m
}

// DesignPrompt はデザイン編集で使う現在のプロンプトです。
func (s *Session) DesignPrompt() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.designPrompt
}

// MockupPrompt はモックアップ編集で使う現在の説明文です。
func (s *Session) MockupPrompt() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mockupPrompt
}

// View は表示中の成果物です。
func (s *Session) View() domain.ViewMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// State は処理中の状態です。
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Busy は指示を処理中かどうかを返します。
func (s *Session) Busy() bool {
	return s.busy.Load()
}

// Transcript はチャット履歴のコピーを返します。
func (s *Session) Transcript() []domain.ConversationTurn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.ConversationTurn(nil), s.transcript...)
}

// ActiveImage は表示中の画像を返します。
func (s *Session) ActiveImage() domain.ImageData {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.view == domain.ViewMockup && s.mockup != nil {
		return s.mockup.Image
	}
	return s.design.Image
}
