package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shouni/gemini-sticker-kit/internal/builder"
	"github.com/shouni/gemini-sticker-kit/internal/config"
)

// opts はコマンドラインフラグの値を受け取る実行時オプションなのだ。
var opts config.GenerateOptions

var rootCmd = &cobra.Command{
	Use:   "sticker-kit",
	Short: "AI でステッカーやファッションプリントを作り、モックアップに合成するのだ。",
	Long: `テキストの説明から背景を抜いたステッカー / プリント画像を生成し、
チャットで修正したり、モデル写真に合成して着用イメージを確認したりできるのだ。`,
	SilenceUsage:      true,
	PersistentPreRunE: preRunAppE,
}

func init() {
	addAppFlags(rootCmd)
	rootCmd.AddCommand(createCmd, mockupCmd, chatCmd, historyCmd)
}

// addAppFlags は、アプリケーション全般に適用されるグローバルフラグを定義するのだ。
func addAppFlags(rootCmd *cobra.Command) {
	// --- 生成結果の出力設定 ---
	rootCmd.PersistentFlags().StringVarP(&opts.OutputDir, "output-dir", "o", "", "生成画像を保存するディレクトリ（ローカル or gs://...）なのだ。未指定なら STICKER_OUTPUT_DIR を使うのだ。")

	// --- AIモデル・挙動設定 ---
	rootCmd.PersistentFlags().StringVar(&opts.AIModel, "model", "", "プロンプト修正に使う Gemini モデル名なのだ。")
	rootCmd.PersistentFlags().StringVar(&opts.ImageModel, "image-model", "", "画像生成に使う Gemini モデル名なのだ。")
	rootCmd.PersistentFlags().DurationVar(&opts.HTTPTimeout, "http-timeout", config.DefaultHTTPTimeout, "参照画像取得のタイムアウトなのだ。")
	rootCmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "デバッグログを出力するのだ。")
}

// preRunAppE は、コマンド実行前にロガーの設定と環境変数の必須チェックを行うのだ。
func preRunAppE(cmd *cobra.Command, args []string) error {
	level := slog.LevelInfo
	if opts.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	// 一覧表示は API を呼ばないのでキーがなくても動くのだ
	if cmd == historyListCmd {
		return nil
	}
	if os.Getenv("GEMINI_API_KEY") == "" {
		return fmt.Errorf("エラー: 環境変数 GEMINI_API_KEY が設定されていません。Gemini APIの利用には必須なのだ")
	}
	return nil
}

// runWithApp は設定を読み込んで AppContext を組み立て、fn を実行してから後始末をするのだ。
func runWithApp(ctx context.Context, fn func(ctx context.Context, app *builder.AppContext) error) error {
	cfg := config.LoadConfig()
	cfg.Options = opts

	app, err := builder.BuildAppContext(ctx, cfg)
	if err != nil {
		return fmt.Errorf("アプリケーションの初期化に失敗したのだ: %w", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			slog.WarnContext(ctx, "リソースの解放に失敗しました", "error", err)
		}
	}()

	return fn(ctx, app)
}

// Execute は、アプリケーションのメインエントリポイントなのだ。
// Ctrl-C で進行中の生成リクエストをキャンセルできるのだよ。
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
