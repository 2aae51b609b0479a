package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shouni/gemini-sticker-kit/internal/builder"
	"github.com/shouni/gemini-sticker-kit/pkg/conversation"
	"github.com/shouni/gemini-sticker-kit/pkg/domain"
)

// chatCmd は、デザインをチャットで修正する対話モードなのだ。
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "デザインやモックアップをチャットで修正するのだ。",
	Long: `履歴のデザイン（--design）を開くか、--prompt から新しく生成して、
修正指示を1行ずつ送るのだ。画像が更新されるたびに出力先へ保存するのだよ。

  :design          デザインの表示に戻る
  :mockup          最後のモックアップを表示する
  :tryon <preset>  プリセットで着用イメージを合成する
  :presets         プリセットの一覧
  :quit            終了`,
	RunE: chatCommand,
}

func init() {
	chatCmd.Flags().StringVarP(&opts.DesignID, "design", "d", "", "開くデザインの ID なのだ。")
	chatCmd.Flags().StringVarP(&opts.Prompt, "prompt", "p", "", "新しく生成するデザインの説明なのだ。")
	chatCmd.Flags().StringVarP(&opts.Style, "style", "s", string(domain.StyleKawaii), "新しく生成するときの画風なのだ。")
	chatCmd.Flags().StringVarP(&opts.Kind, "type", "t", string(domain.KindSticker), "新しく生成するときの種類なのだ。（sticker / print）")
}

func chatCommand(cmd *cobra.Command, args []string) error {
	if opts.DesignID == "" && strings.TrimSpace(opts.Prompt) == "" {
		return fmt.Errorf("--design か --prompt のどちらかを指定してほしいのだ")
	}

	return runWithApp(cmd.Context(), func(ctx context.Context, app *builder.AppContext) error {
		s, err := openSession(ctx, app)
		if err != nil {
			return err
		}
		r := &chatREPL{app: app, session: s, out: cmd.OutOrStdout()}
		r.printLastTurn(ctx)
		return r.run(ctx, cmd.InOrStdin())
	})
}

func openSession(ctx context.Context, app *builder.AppContext) (*conversation.Session, error) {
	if opts.DesignID != "" {
		d, err := app.History.Get(ctx, opts.DesignID)
		if err != nil {
			return nil, fmt.Errorf("デザインが見つからないのだ (id: %s): %w", opts.DesignID, err)
		}
		return app.Controller.Open(d), nil
	}

	opts.Count = 1
	req, err := buildDesignRequest(ctx, app)
	if err != nil {
		return nil, err
	}
	s, _, err := app.Controller.Create(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("デザインの生成に失敗したのだ: %w", err)
	}
	return s, nil
}

type chatREPL struct {
	app     *builder.AppContext
	session *conversation.Session
	out     io.Writer
}

func (r *chatREPL) run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(r.out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(r.out)
			return scanner.Err()
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		quit, err := r.handle(ctx, line)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			fmt.Fprintf(r.out, "! %v\n", err)
		}
		if quit {
			return nil
		}
	}
}

// handle は1行の入力を処理するのだ。コロン始まりはコマンド、それ以外は修正指示なのだ。
func (r *chatREPL) handle(ctx context.Context, line string) (bool, error) {
	command, arg, _ := strings.Cut(line, " ")
	switch command {
	case ":quit", ":q", ":exit":
		return true, nil
	case ":design":
		r.app.Controller.ShowDesign(r.session)
		fmt.Fprintf(r.out, "[design] %s\n", r.session.ActiveDesign().ID)
	case ":mockup":
		if err := r.app.Controller.ShowMockup(r.session); err != nil {
			return false, err
		}
		fmt.Fprintf(r.out, "[mockup] %s\n", r.session.Mockup().ID)
	case ":presets":
		for _, p := range r.app.Presets.All() {
			fmt.Fprintf(r.out, "  %-8s %s\n", p.ID, p.Label)
		}
	case ":tryon":
		if _, err := r.app.Controller.TryOnPreset(ctx, r.session, strings.TrimSpace(arg)); err != nil {
			return false, err
		}
		r.printLastTurn(ctx)
	default:
		if _, err := r.app.Controller.Send(ctx, r.session, line); err != nil {
			return false, err
		}
		r.printLastTurn(ctx)
	}
	return false, nil
}

// printLastTurn は最後の返答を表示し、画像付きなら表示中の成果物を保存するのだ。
func (r *chatREPL) printLastTurn(ctx context.Context) {
	transcript := r.session.Transcript()
	if len(transcript) == 0 {
		return
	}
	turn := transcript[len(transcript)-1]
	fmt.Fprintln(r.out, turn.Text)
	if turn.Attachment == nil {
		return
	}

	target := r.session.ActiveDesign()
	if r.session.View() == domain.ViewMockup {
		if m := r.session.Mockup(); m != nil {
			target = *m
		}
	}
	path, err := r.app.Exporter.Export(ctx, target)
	if err != nil {
		fmt.Fprintf(r.out, "! %v\n", err)
		return
	}
	fmt.Fprintf(r.out, "  -> %s\n", path)
}
