package history

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/shouni/go-remote-io/pkg/remoteio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shouni/gemini-sticker-kit/pkg/domain"
)

// mockWriter は remoteio.OutputWriter のテスト用モックなのだ。
type mockWriter struct {
	remoteio.OutputWriter
	path        string
	contentType string
	data        []byte
	err         error
}

func (m *mockWriter) Write(ctx context.Context, path string, r io.Reader, contentType string) error {
	if m.err != nil {
		return m.err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.path, m.contentType, m.data = path, contentType, data
	return nil
}

func TestFileName(t *testing.T) {
	d := domain.Design{ID: "0123456789abcdef", Image: domain.ImageData{MimeType: "image/png"}}
	assert.Equal(t, "sticker-01234567.png", FileName(d))

	d.Image.MimeType = "image/jpeg"
	assert.Equal(t, "sticker-01234567.jpg", FileName(d))
}

func TestExporter_Export(t *testing.T) {
	ctx := context.Background()
	d := design("abcdef12-3456-7890", domain.KindSticker, time.Now())

	t.Run("ローカルに書き出すのだ", func(t *testing.T) {
		w := &mockWriter{}
		e, err := NewExporter(w, "output/images")
		require.NoError(t, err)

		path, err := e.Export(ctx, d)
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(path, "sticker-abcdef12.png"), path)
		assert.Contains(t, path, "output")
		assert.Equal(t, path, w.path)
		assert.Equal(t, "image/png", w.contentType)
		assert.Equal(t, d.Image.Data, w.data)
	})

	t.Run("GCS に書き出すのだ", func(t *testing.T) {
		w := &mockWriter{}
		e, err := NewExporter(w, "gs://bucket/stickers")
		require.NoError(t, err)

		path, err := e.Export(ctx, d)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(path, "gs://bucket/stickers"), path)
		assert.True(t, strings.HasSuffix(path, "sticker-abcdef12.png"), path)
	})

	t.Run("書き込み失敗", func(t *testing.T) {
		e, err := NewExporter(&mockWriter{err: errors.New("permission denied")}, "out")
		require.NoError(t, err)

		_, err = e.Export(ctx, d)
		assert.ErrorContains(t, err, "permission denied")
	})

	t.Run("画像のないデザイン", func(t *testing.T) {
		e, err := NewExporter(&mockWriter{}, "out")
		require.NoError(t, err)

		_, err = e.Export(ctx, domain.Design{ID: "empty"})
		assert.ErrorIs(t, err, domain.ErrInvalidRequest)
	})
}

func TestNewExporter(t *testing.T) {
	_, err := NewExporter(nil, "out")
	assert.Error(t, err)
	_, err = NewExporter(&mockWriter{}, "")
	assert.Error(t, err)
}
