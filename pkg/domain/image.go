package domain

import (
	"fmt"
	"strings"
)

// AspectRatio は画像生成時に指定できる縦横比です。
type AspectRatio string

const (
	AspectSquare    AspectRatio = "1:1"
	AspectPortrait  AspectRatio = "3:4"
	AspectLandscape AspectRatio = "4:3"
	AspectStory     AspectRatio = "9:16"
	AspectWide      AspectRatio = "16:9"
)

// Valid は縦横比が既知の値かどうかを返します。
func (a AspectRatio) Valid() bool {
	switch a {
	case AspectSquare, AspectPortrait, AspectLandscape, AspectStory, AspectWide:
		return true
	}
	return false
}

// ImageData は画像のバイト列と MIME タイプの組です。MIME タイプは常にバイト列と一緒に運びます。
type ImageData struct {
	Data     []byte `json:"data"`
	MimeType string `json:"mime_type"`
}

// Clone はバイト列を複製した ImageData を返すのだ。
func (d ImageData) Clone() ImageData {
	buf := make([]byte, len(d.Data))
	copy(buf, d.Data)
	return ImageData{Data: buf, MimeType: d.MimeType}
}

// PromptPart は合成リクエストを構成する1要素です。Text / Image / ImageURL のいずれか1つだけを持ちます。
type PromptPart struct {
	Text     string
	Image    *ImageData
	ImageURL string
}

// TextPart はテキストのみのパーツを作るのだ。
func TextPart(text string) PromptPart { return PromptPart{Text: text} }

// ImagePart はインライン画像のパーツを作るのだ。
func ImagePart(img ImageData) PromptPart { return PromptPart{Image: &img} }

// SynthesisRequest は画像合成プロバイダへの1回分の要求です。
type SynthesisRequest struct {
	Parts       []PromptPart
	AspectRatio AspectRatio
}

// Validate はリクエストの事前条件を検証します。
func (r SynthesisRequest) Validate() error {
	if len(r.Parts) == 0 {
		return fmt.Errorf("%w: request has no parts", ErrInvalidRequest)
	}
	hasText := false
	for i, p := range r.Parts {
		set := 0
		if p.Text != "" {
			set++
			if strings.TrimSpace(p.Text) != "" {
				hasText = true
			}
		}
		if p.Image != nil {
			set++
		}
		if p.ImageURL != "" {
			set++
		}
		if set != 1 {
			return fmt.Errorf("%w: part %d must carry exactly one of text, image or image url", ErrInvalidRequest, i)
		}
	}
	if !hasText {
		return fmt.Errorf("%w: prompt text is empty", ErrInvalidRequest)
	}
	if !r.AspectRatio.Valid() {
		return fmt.Errorf("%w: unsupported aspect ratio %q", ErrInvalidRequest, r.AspectRatio)
	}
	return nil
}
