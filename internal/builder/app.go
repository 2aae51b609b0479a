package builder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/shouni/go-remote-io/pkg/remoteio"

	"github.com/shouni/gemini-sticker-kit/internal/config"
	"github.com/shouni/gemini-sticker-kit/pkg/conversation"
	"github.com/shouni/gemini-sticker-kit/pkg/domain"
	"github.com/shouni/gemini-sticker-kit/pkg/generator"
	"github.com/shouni/gemini-sticker-kit/pkg/history"
	"github.com/shouni/gemini-sticker-kit/pkg/preset"
)

// AppContext は、アプリケーション実行に必要な共通コンテキストを保持する
// これを各コマンドに渡すことで、依存関係の注入を簡素化します。
type AppContext struct {
	Config     *config.Config          // 環境変数から読み込まれた設定
	Options    config.GenerateOptions  // コマンドラインから渡された実行時の設定
	Reader     remoteio.InputReader    // 参照画像や持ち込み写真の読み込み元（ローカル / gs://）
	Writer     remoteio.OutputWriter   // 生成画像の書き出し先
	Generator  *generator.Orchestrator // デザインの一括生成
	Compositor *generator.Compositor   // モックアップ合成
	Controller *conversation.Controller
	History    *history.SQLiteStore
	Exporter   *history.Exporter
	Presets    *preset.Catalog
}

// Close は保持しているリソースを解放します。
func (a *AppContext) Close() error {
	var errs []error
	if a.History != nil {
		errs = append(errs, a.History.Close())
	}
	return errors.Join(errs...)
}

// LoadImage はローカルパスまたは gs:// の画像を読み込みます。
func (a *AppContext) LoadImage(ctx context.Context, uri string) (*domain.ImageData, error) {
	rc, err := a.Reader.Open(ctx, uri)
	if err != nil {
		return nil, fmt.Errorf("画像の読み込みに失敗しました (path: %s): %w", uri, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("画像の読み込みに失敗しました (path: %s): %w", uri, err)
	}
	return &domain.ImageData{Data: data, MimeType: http.DetectContentType(data)}, nil
}
