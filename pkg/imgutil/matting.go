package imgutil

import (
	"fmt"

	"github.com/shouni/gemini-sticker-kit/pkg/domain"
)

// DefaultWhiteThreshold は「ほぼ白」とみなす各チャンネルの下限（この値は含まない）です。
const DefaultWhiteThreshold uint8 = 230

// PNGMimeType は背景除去後の出力形式です。
const PNGMimeType = "image/png"

type point struct{ x, y int }

// Matte は画像の外周から「ほぼ白」のピクセルを4近傍で塗りつぶし、到達したピクセルのアルファを 0 にします。
// 外周から到達できない内側の白（ハイライトや目など）は残ります。入力バッファは変更せず、新しいバッファを返します。
func Matte(buf PixelBuffer, threshold uint8) (*PixelBuffer, error) {
	if err := buf.Validate(); err != nil {
		return nil, err
	}

	out := buf.Clone()
	w, h := out.Width, out.Height
	if w == 0 || h == 0 {
		return out, nil
	}

	pix := out.Pix
	isWhite := func(x, y int) bool {
		i := (y*w + x) * 4
		return pix[i] > threshold && pix[i+1] > threshold && pix[i+2] > threshold
	}

	visited := make([]bool, w*h)
	stack := make([]point, 0, 2*(w+h))
	push := func(x, y int) {
		if !visited[y*w+x] && isWhite(x, y) {
			stack = append(stack, point{x, y})
		}
	}

	for x := 0; x < w; x++ {
		push(x, 0)
		push(x, h-1)
	}
	for y := 0; y < h; y++ {
		push(0, y)
		push(w-1, y)
	}

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		v := p.y*w + p.x
		if visited[v] {
			continue
		}
		visited[v] = true
		pix[v*4+3] = 0

		if p.x+1 < w {
			push(p.x+1, p.y)
		}
		if p.x-1 >= 0 {
			push(p.x-1, p.y)
		}
		if p.y+1 < h {
			push(p.x, p.y+1)
		}
		if p.y-1 >= 0 {
			push(p.x, p.y-1)
		}
	}

	return out, nil
}

// RemoveBackground は生成画像をデコードして背景を透過し、PNG として返します。
func RemoveBackground(data []byte, threshold uint8) (*domain.ImageData, error) {
	buf, err := Decode(data)
	if err != nil {
		return nil, err
	}
	matted, err := Matte(*buf, threshold)
	if err != nil {
		return nil, err
	}
	encoded, err := matted.EncodePNG()
	if err != nil {
		return nil, fmt.Errorf("PNGエンコードに失敗しました: %w", err)
	}
	return &domain.ImageData{Data: encoded, MimeType: PNGMimeType}, nil
}
