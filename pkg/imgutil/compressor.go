package imgutil

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
)

// CompressToJPEG は参照画像（PNG, GIF, JPEG等）をJPEG形式に圧縮します。
// 透過部分は白で塗りつぶしてから圧縮するので、生成済みデザインの受け渡しには使いません。
func CompressToJPEG(data []byte, quality int) ([]byte, error) {
	buf, err := Decode(data)
	if err != nil {
		return nil, err
	}

	src := buf.Image()
	flat := image.NewRGBA(src.Bounds())
	draw.Draw(flat, flat.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	draw.Draw(flat, flat.Bounds(), src, image.Point{}, draw.Over)

	out := new(bytes.Buffer)
	if err := jpeg.Encode(out, flat, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
