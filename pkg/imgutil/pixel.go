package imgutil

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"math"
)

// ErrInvalidBufferShape はピクセルバッファの長さと幅・高さが整合しない場合のエラーです。
// 呼び出し側のプログラミングミスを表すので、ユーザーには見せません。
var ErrInvalidBufferShape = errors.New("invalid pixel buffer shape")

// PixelBuffer はデコード済みの RGBA 画像です。
// Pix は行優先・1ピクセル4バイト（R, G, B, A）で、アルファは乗算されていません。
type PixelBuffer struct {
	Width  int
	Height int
	Pix    []byte
}

// NewPixelBuffer は全ピクセルが 0 のバッファを確保します。
func NewPixelBuffer(width, height int) *PixelBuffer {
	return &PixelBuffer{Width: width, Height: height, Pix: make([]byte, width*height*4)}
}

// Validate は長さが Width×Height×4 と一致するか検証するのだ。
func (b PixelBuffer) Validate() error {
	if b.Width < 0 || b.Height < 0 {
		return fmt.Errorf("%w: negative size %dx%d", ErrInvalidBufferShape, b.Width, b.Height)
	}
	if b.Width != 0 && b.Height > (math.MaxInt/4)/b.Width {
		return fmt.Errorf("%w: size %dx%d is too large", ErrInvalidBufferShape, b.Width, b.Height)
	}
	if len(b.Pix)%4 != 0 {
		return fmt.Errorf("%w: length %d is not a multiple of 4", ErrInvalidBufferShape, len(b.Pix))
	}
	if len(b.Pix) != b.Width*b.Height*4 {
		return fmt.Errorf("%w: length %d does not match %dx%d", ErrInvalidBufferShape, len(b.Pix), b.Width, b.Height)
	}
	return nil
}

// Clone はバッファの深いコピーを返します。
func (b PixelBuffer) Clone() *PixelBuffer {
	pix := make([]byte, len(b.Pix))
	copy(pix, b.Pix)
	return &PixelBuffer{Width: b.Width, Height: b.Height, Pix: pix}
}

// Offset は (x, y) の先頭バイト位置を返します。
func (b PixelBuffer) Offset(x, y int) int {
	return (y*b.Width + x) * 4
}

// FromImage は任意の image.Image を非乗算 RGBA のバッファに変換します。
func FromImage(img image.Image) *PixelBuffer {
	bounds := img.Bounds()
	nrgba, ok := img.(*image.NRGBA)
	if !ok || nrgba.Stride != bounds.Dx()*4 || bounds.Min != (image.Point{}) {
		nrgba = image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(nrgba, nrgba.Bounds(), img, bounds.Min, draw.Src)
	}
	buf := NewPixelBuffer(bounds.Dx(), bounds.Dy())
	copy(buf.Pix, nrgba.Pix)
	return buf
}

// Image はバッファを image.NRGBA として返すのだ。Pix は共有しません。
func (b PixelBuffer) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, b.Width, b.Height))
	copy(img.Pix, b.Pix)
	return img
}

// Decode は PNG / JPEG / GIF のバイト列を PixelBuffer にデコードします。
func Decode(data []byte) (*PixelBuffer, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("画像のデコードに失敗しました: %w", err)
	}
	return FromImage(img), nil
}

// EncodePNG はバッファを PNG にエンコードします。
func (b PixelBuffer) EncodePNG() ([]byte, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	buf := new(bytes.Buffer)
	if err := png.Encode(buf, b.Image()); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
