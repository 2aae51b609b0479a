package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shouni/gemini-sticker-kit/internal/builder"
	"github.com/shouni/gemini-sticker-kit/pkg/conversation"
	"github.com/shouni/gemini-sticker-kit/pkg/domain"
)

// mockupCmd は、履歴のデザインをモデル写真や商品に合成するのだ。
var mockupCmd = &cobra.Command{
	Use:   "mockup",
	Short: "保存済みのデザインでモックアップを合成するのだ。",
	Long: `履歴に保存したデザインを、プリセットのモデル / 商品、自由な説明文、
または持ち込んだモデル写真に合成して保存するのだ。`,
	RunE: mockupCommand,
}

func init() {
	mockupCmd.Flags().StringVarP(&opts.DesignID, "design", "d", "", "合成するデザインの ID なのだ。（必須）")
	mockupCmd.Flags().StringVar(&opts.Preset, "preset", "", "プリセットの ID またはラベルなのだ。（例: f-tee, hoodie）")
	mockupCmd.Flags().StringVar(&opts.Description, "description", "", "モデルや撮影シーンの説明なのだ。")
	mockupCmd.Flags().StringVar(&opts.CustomModel, "custom-model", "", "合成先のモデル写真なのだ。（ローカル / gs://）")
}

func mockupCommand(cmd *cobra.Command, args []string) error {
	if opts.DesignID == "" {
		return fmt.Errorf("デザインの ID（--design）を指定してほしいのだ")
	}
	if opts.Preset == "" && strings.TrimSpace(opts.Description) == "" && opts.CustomModel == "" {
		return fmt.Errorf("--preset / --description / --custom-model のどれかを指定してほしいのだ")
	}

	return runWithApp(cmd.Context(), func(ctx context.Context, app *builder.AppContext) error {
		d, err := app.History.Get(ctx, opts.DesignID)
		if err != nil {
			return fmt.Errorf("デザインが見つからないのだ (id: %s): %w", opts.DesignID, err)
		}

		s := app.Controller.Open(d)
		turn, err := tryOn(ctx, app, s, opts.Preset, opts.Description, opts.CustomModel)
		if err != nil {
			return err
		}

		mockup := s.Mockup()
		if mockup == nil || s.View() != domain.ViewMockup {
			return fmt.Errorf("%w: %s", domain.ErrUnavailable, turn.Text)
		}

		path, err := app.Exporter.Export(ctx, *mockup)
		if err != nil {
			return err
		}
		slog.InfoContext(ctx, "モックアップを保存したのだ！", "design_id", d.ID, "mockup_id", mockup.ID)
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", mockup.ID, path)
		return nil
	})
}

// tryOn はプリセット、持ち込み写真、説明文の順に優先して合成を依頼するのだ。
func tryOn(ctx context.Context, app *builder.AppContext, s *conversation.Session, presetKey, description, customModel string) (domain.ConversationTurn, error) {
	if presetKey != "" {
		return app.Controller.TryOnPreset(ctx, s, presetKey)
	}
	if customModel != "" {
		img, err := app.LoadImage(ctx, customModel)
		if err != nil {
			return domain.ConversationTurn{}, err
		}
		return app.Controller.TryOn(ctx, s, description, img)
	}
	return app.Controller.TryOn(ctx, s, description, nil)
}
