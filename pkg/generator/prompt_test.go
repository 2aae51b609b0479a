package generator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shouni/gemini-sticker-kit/pkg/domain"
)

func TestBuildDesignPrompt(t *testing.T) {
	t.Run("sticker", func(t *testing.T) {
		got := BuildDesignPrompt("a cat", domain.StyleKawaii, domain.KindSticker, false)
		assert.True(t, strings.HasPrefix(got, "Generate a single distinct die-cut sticker"))
		assert.Contains(t, got, "Subject: a cat")
		assert.Contains(t, got, "Style: Kawaii / Cute")
		assert.NotContains(t, got, "REFERENCE IMAGE")
	})

	t.Run("print", func(t *testing.T) {
		got := BuildDesignPrompt("a cat", domain.StyleStreetwear, domain.KindPrint, false)
		assert.Contains(t, got, "Fashion Style/Aesthetic: Streetwear / Urban")
		assert.Contains(t, got, "NO die-cut white borders")
	})

	t.Run("参照画像付き sticker", func(t *testing.T) {
		got := BuildDesignPrompt("a cat", domain.StylePixel, domain.KindSticker, true)
		assert.True(t, strings.HasPrefix(got, "REFERENCE IMAGE INSTRUCTIONS:"))
		assert.Contains(t, got, "creatively reimagine it as a vector sticker")
		assert.Less(t, strings.Index(got, "REFERENCE"), strings.Index(got, "Subject: a cat"))
	})
}

func TestBuildMockupPrompt(t *testing.T) {
	assert.Equal(t, CustomModelInstruction, BuildMockupPrompt("ignored", true))
	assert.Contains(t, BuildMockupPrompt("A cap placed on a desk", false), "Target Scene Description: A cap placed on a desk")
}
