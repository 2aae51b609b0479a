package generator

import (
	"fmt"
	"strings"

	"github.com/shouni/gemini-sticker-kit/pkg/domain"
)

const (
	// StickerBody はステッカー生成時の作画指示です。
	StickerBody = `Generate a single distinct die-cut sticker illustration.
Subject: %s
Style: %s

Visual Requirements:
- A SINGLE isolated sticker element centered on the canvas.
- Strong, clear white outline (die-cut border) surrounding the subject.
- Pure white background (flat lighting).
- Vector-like quality, sharp details.
- Margin of white space around edges.`

	// PrintBody はアパレル用プリント生成時の作画指示です。
	PrintBody = `Generate a professional graphic print design suitable for clothing (T-shirts, hoodies, streetwear).
Subject: %s
Fashion Style/Aesthetic: %s

Visual Requirements:
- Create a high-quality, standalone graphic placement print.
- NO die-cut white borders (unlike stickers). This is for direct-to-garment printing.
- Composition: Centralized, balanced, and aesthetically pleasing for apparel.
- Background: Pure white (to be removed later).
- Style execution: Incorporate modern fashion trends, typography (if applicable to style), and professional illustration techniques suitable for the requested style (e.g., if Streetwear, make it bold and edgy; if Luxury, make it minimal and elegant).
- Ensure high contrast and vibrant colors or stylized monochrome depending on the style.`

	// ReferencePrefix は参照画像を「構図・画風の参考」として扱わせるための前置きです。
	// プロバイダの出力の忠実度に直結するので、参照画像付きのリクエストでは必ず本文の前に置きます。
	ReferencePrefix = `REFERENCE IMAGE INSTRUCTIONS:
- Use the attached image as the PRIMARY VISUAL REFERENCE.
- Adopt the composition, pose, or subject matter from the reference image, but adapt it to match the requested STYLE [%s].
- Do not just copy the image; creatively reimagine it as a %s.

`

	// CustomModelInstruction は持ち込み写真への合成指示です。
	CustomModelInstruction = `Task: Realistic Virtual Try-On / Product Compositing.

Input 1: A graphic design/print.
Input 2: A photo of a person or object (The Target).

Instructions:
1. Apply Input 1 (the graphic) onto the clothing or main surface of the subject in Input 2.
2. PRESERVE the content, lighting, pose, and background of Input 2 exactly. Do not change the model or scene.
3. The graphic must conform to the folds, lighting, and texture of the fabric in Input 2.
4. Blend it realistically as if it was printed on the material.
5. Output the final photo.`

	// SceneInstruction は撮影シーンを生成させる合成指示です。
	SceneInstruction = `Generate a high-quality, photorealistic fashion photography shot.

Target Scene Description: %s

Instructions:
1. The "Subject" in the description MUST be wearing/using the product (e.g., t-shirt, hoodie, bag, cap).
2. The INPUT IMAGE provided serves as a graphic print/decal. Apply this graphic onto the product.
3. COMPOSITION: Ensure the graphic is clearly visible, centered, and follows the fabric folds/texture realistically.
4. COLOR: If the description specifies a clothing color (e.g. "black hoodie"), use it. If not, default to white.
5. LIGHTING: Use professional studio or lifestyle lighting as appropriate for the scene.
6. Do NOT generate the graphic as a floating sticker; it must be printed ON the material.`

	// RefineInstruction はプロンプト書き換えタスクです。
	RefineInstruction = `Task: Rewrite an image generation prompt based on user feedback.

Original Prompt: "%s"
User Change Request: "%s"

Instructions:
1. Keep the core subject and style of the Original Prompt unless the user explicitly asks to change it.
2. Integrate the User Change Request naturally into the description.
3. Return ONLY the new prompt string. Do not add explanations.`
)

// BuildDesignPrompt は種類に応じた作画指示を組み立てます。参照画像がある場合は前置きを付けるのだ。
func BuildDesignPrompt(prompt string, style domain.Style, kind domain.DesignKind, withReference bool) string {
	var sb strings.Builder
	if withReference {
		target := "vector sticker"
		if kind == domain.KindPrint {
			target = "fashion graphic print"
		}
		sb.WriteString(fmt.Sprintf(ReferencePrefix, style, target))
	}

	body := StickerBody
	if kind == domain.KindPrint {
		body = PrintBody
	}
	sb.WriteString(fmt.Sprintf(body, prompt, style))
	return sb.String()
}

// BuildMockupPrompt は合成モードに応じた指示を返します。
func BuildMockupPrompt(modelDescription string, customModel bool) string {
	if customModel {
		return CustomModelInstruction
	}
	return fmt.Sprintf(SceneInstruction, modelDescription)
}

// BuildRefinePrompt はテキストモデルに渡す書き換え依頼文を作ります。
func BuildRefinePrompt(currentPrompt, instruction string) string {
	return fmt.Sprintf(RefineInstruction, currentPrompt, instruction)
}
