package history

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/shouni/go-remote-io/pkg/remoteio"
	"github.com/shouni/go-utils/urlpath"

	"github.com/shouni/gemini-sticker-kit/pkg/domain"
)

// Exporter はデザインの画像をローカルや GCS に書き出します。
type Exporter struct {
	writer    remoteio.OutputWriter
	outputDir string
}

// NewExporter は OutputWriter と出力先ディレクトリ（ローカルパスまたは gs://）を受け取ります。
func NewExporter(writer remoteio.OutputWriter, outputDir string) (*Exporter, error) {
	if writer == nil {
		return nil, fmt.Errorf("OutputWriter は必須です")
	}
	if outputDir == "" {
		return nil, fmt.Errorf("outputDir は必須です")
	}
	return &Exporter{writer: writer, outputDir: outputDir}, nil
}

// FileName は "sticker-<ID先頭8文字>.png" 形式のファイル名を返すのだ。
func FileName(d domain.Design) string {
	return fmt.Sprintf("sticker-%s%s", d.ShortID(), extensionOf(d.Image.MimeType))
}

// Export は Design の画像を書き出し、書き出し先のパスを返します。
func (e *Exporter) Export(ctx context.Context, d domain.Design) (string, error) {
	if len(d.Image.Data) == 0 {
		return "", fmt.Errorf("%w: design %s has no image", domain.ErrInvalidRequest, d.ID)
	}

	finalPath, err := urlpath.ResolvePath(e.outputDir, FileName(d))
	if err != nil {
		return "", fmt.Errorf("画像保存パスの生成に失敗しました: %w", err)
	}

	mimeType := d.Image.MimeType
	if mimeType == "" {
		mimeType = "image/png"
	}
	if err := e.writer.Write(ctx, finalPath, bytes.NewReader(d.Image.Data), mimeType); err != nil {
		return "", fmt.Errorf("画像の保存に失敗しました (path: %s): %w", finalPath, err)
	}

	slog.InfoContext(ctx, "デザインを書き出しました", "id", d.ID, "path", finalPath)
	return finalPath, nil
}

func extensionOf(mimeType string) string {
	preferred := map[string]string{"image/png": ".png", "image/jpeg": ".jpg", "image/webp": ".webp"}
	if ext, ok := preferred[mimeType]; ok {
		return ext
	}
	return ".png"
}
