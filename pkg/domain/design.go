package domain

import (
	"fmt"
	"strings"
	"time"
)

// DesignKind はデザインの種類です。
type DesignKind string

const (
	KindSticker DesignKind = "sticker"
	KindPrint   DesignKind = "print"
	KindMockup  DesignKind = "mockup"
)

// Mattable は背景除去の対象となる種類かどうかを返すのだ。モックアップは合成済み写真なので対象外。
func (k DesignKind) Mattable() bool {
	return k == KindSticker || k == KindPrint
}

// Label は画面やチャットに出す呼び名です。
func (k DesignKind) Label() string {
	switch k {
	case KindPrint:
		return "fashion print"
	case KindMockup:
		return "virtual try-on"
	default:
		return "sticker"
	}
}

// ParseDesignKind は文字列から DesignKind を解決します。
func ParseDesignKind(s string) (DesignKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "sticker":
		return KindSticker, nil
	case "print", "fashion", "fashion print":
		return KindPrint, nil
	case "mockup", "try-on", "virtual try-on":
		return KindMockup, nil
	}
	return "", fmt.Errorf("%w: unknown design kind %q", ErrInvalidRequest, s)
}

// Style はデザインの画風です。値はプロンプトにそのまま埋め込まれます。
type Style string

const (
	StyleKawaii      Style = "Kawaii / Cute"
	StyleVintage     Style = "Vintage / Retro"
	StylePixel       Style = "Pixel Art"
	StyleHolographic Style = "Holographic"
	StyleWatercolor  Style = "Watercolor"
	StylePopArt      Style = "Pop Art"
	StyleMinimalist  Style = "Minimalist"
	Style3DClay      Style = "3D Clay Render"

	StyleStreetwear  Style = "Streetwear / Urban"
	StyleY2K         Style = "Y2K / Cyber"
	StyleLuxury      Style = "Luxury / High-End"
	StyleGothic      Style = "Gothic / Dark"
	StyleAcidGraphic Style = "Acid Graphic / Rave"
	StyleVaporwave   Style = "Vaporwave"
	StyleCottagecore Style = "Cottagecore"
)

// Styles は選択可能な画風の一覧です（表示順）。
var Styles = []Style{
	StyleKawaii, StyleVintage, StylePixel, StyleHolographic, StyleWatercolor, StylePopArt,
	StyleMinimalist, Style3DClay, StyleStreetwear, StyleY2K, StyleLuxury, StyleGothic,
	StyleAcidGraphic, StyleVaporwave, StyleCottagecore,
}

// Key は "Kawaii / Cute" -> "kawaii" のような短いキーを返すのだ。
func (s Style) Key() string {
	head, _, _ := strings.Cut(string(s), " / ")
	return strings.ReplaceAll(strings.ToLower(head), " ", "-")
}

// ParseStyle はラベルまたは短いキーから Style を解決します。空文字は Kawaii として扱います。
func ParseStyle(s string) (Style, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return StyleKawaii, nil
	}
	for _, st := range Styles {
		if strings.EqualFold(string(st), s) || strings.EqualFold(st.Key(), s) {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: unknown style %q", ErrInvalidRequest, s)
}

// Design は確定したクリエイティブ資産です。
// ID と画像は作成後に変更しません。編集は常に新しい Design を作ります。
type Design struct {
	ID        string     `json:"id"`
	Prompt    string     `json:"prompt"`
	Style     Style      `json:"style"`
	Kind      DesignKind `json:"type"`
	Image     ImageData  `json:"image"`
	CreatedAt time.Time  `json:"created_at"`
}

// ShortID はファイル名などに使う先頭8文字の ID です。
func (d Design) ShortID() string {
	if len(d.ID) <= 8 {
		return d.ID
	}
	return d.ID[:8]
}
