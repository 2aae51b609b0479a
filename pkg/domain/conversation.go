package domain

import "time"

// Role はチャットの発言者です。
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ConversationTurn はチャットの1発言です。トランスクリプトは追記のみで、書き換えません。
type ConversationTurn struct {
	ID            string     `json:"id"`
	Role          Role       `json:"role"`
	Text          string     `json:"text"`
	Attachment    *ImageData `json:"attachment,omitempty"`
	RelatedPrompt string     `json:"related_prompt,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// ViewMode は今どちらの成果物を表示・編集しているかを表します。
type ViewMode string

const (
	ViewDesign ViewMode = "design"
	ViewMockup ViewMode = "mockup"
)
