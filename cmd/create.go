package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shouni/gemini-sticker-kit/internal/builder"
	"github.com/shouni/gemini-sticker-kit/internal/config"
	"github.com/shouni/gemini-sticker-kit/pkg/domain"
	"github.com/shouni/gemini-sticker-kit/pkg/generator"
)

// createCmd は、説明文からデザインを生成して書き出すのだ。
var createCmd = &cobra.Command{
	Use:   "create",
	Short: "説明文からステッカー / プリントを生成するのだ。",
	Long: `プロンプトと画風からデザインを --count 枚生成し、白背景を抜いて PNG で保存するのだ。
一部の生成が失敗しても、成功した分だけ保存するのだよ。`,
	RunE: createCommand,
}

func init() {
	createCmd.Flags().StringVarP(&opts.Prompt, "prompt", "p", "", "デザインの説明なのだ。（必須）")
	createCmd.Flags().StringVarP(&opts.Style, "style", "s", string(domain.StyleKawaii), "画風なのだ。（例: kawaii, vintage, pixel）")
	createCmd.Flags().StringVarP(&opts.Kind, "type", "t", string(domain.KindSticker), "デザインの種類なのだ。（sticker / print）")
	createCmd.Flags().IntVarP(&opts.Count, "count", "n", config.DefaultCount, "生成する枚数なのだ。")
	createCmd.Flags().StringVarP(&opts.ReferenceURL, "reference", "r", "", "構図や画風の参考画像なのだ。（ローカル / http(s) / gs://）")
}

func createCommand(cmd *cobra.Command, args []string) error {
	if strings.TrimSpace(opts.Prompt) == "" {
		return fmt.Errorf("デザインの説明（--prompt）を指定してほしいのだ")
	}

	return runWithApp(cmd.Context(), func(ctx context.Context, app *builder.AppContext) error {
		req, err := buildDesignRequest(ctx, app)
		if err != nil {
			return err
		}

		slog.InfoContext(ctx, "デザイン生成を開始するのだ！",
			"style", req.Style, "type", req.Kind, "count", req.Count)

		_, designs, err := app.Controller.Create(ctx, req)
		if err != nil {
			return fmt.Errorf("デザインの生成に失敗したのだ: %w", err)
		}

		for _, d := range designs {
			path, err := app.Exporter.Export(ctx, d)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", d.ID, path)
		}
		slog.InfoContext(ctx, "デザイン生成が完了したのだ！", "generated", len(designs), "requested", req.Count)
		return nil
	})
}

// buildDesignRequest はフラグの値から DesignRequest を作るのだ。
// ローカルの参考画像は読み込んでバイト列で渡し、URL はそのまま渡すのだ。
func buildDesignRequest(ctx context.Context, app *builder.AppContext) (generator.DesignRequest, error) {
	style, err := domain.ParseStyle(opts.Style)
	if err != nil {
		return generator.DesignRequest{}, err
	}
	kind, err := domain.ParseDesignKind(opts.Kind)
	if err != nil {
		return generator.DesignRequest{}, err
	}
	if !kind.Mattable() {
		return generator.DesignRequest{}, fmt.Errorf("%w: --type には sticker か print を指定してほしいのだ", domain.ErrInvalidRequest)
	}

	req := generator.DesignRequest{
		Prompt: opts.Prompt,
		Style:  style,
		Kind:   kind,
		Count:  opts.Count,
	}

	switch ref := opts.ReferenceURL; {
	case ref == "":
	case isRemote(ref):
		req.ReferenceURL = ref
	default:
		img, err := app.LoadImage(ctx, ref)
		if err != nil {
			return generator.DesignRequest{}, err
		}
		req.Reference = img
	}
	return req, nil
}

func isRemote(uri string) bool {
	return strings.HasPrefix(uri, "http://") || strings.HasPrefix(uri, "https://") || strings.HasPrefix(uri, "gs://")
}
