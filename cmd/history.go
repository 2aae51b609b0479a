package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shouni/gemini-sticker-kit/internal/builder"
	"github.com/shouni/gemini-sticker-kit/internal/config"
	"github.com/shouni/gemini-sticker-kit/pkg/history"
)

// historyCmd は、保存済みデザインの一覧と書き出しを行うのだ。
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "保存済みのデザインを扱うのだ。",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "保存済みのデザインを古い順に一覧表示するのだ。",
	Args:  cobra.NoArgs,
	RunE:  historyListCommand,
}

var historyExportCmd = &cobra.Command{
	Use:   "export <design-id>...",
	Short: "保存済みのデザインを画像として書き出すのだ。",
	Args:  cobra.MinimumNArgs(1),
	RunE:  historyExportCommand,
}

func init() {
	historyCmd.AddCommand(historyListCmd, historyExportCmd)
}

// withStore は履歴データベースだけを開くのだ。一覧表示に Gemini クライアントは要らないのだ。
func withStore(ctx context.Context, fn func(store *history.SQLiteStore) error) error {
	cfg := config.LoadConfig()
	store, err := history.NewSQLiteStore(cfg.HistoryDB)
	if err != nil {
		return fmt.Errorf("履歴データベースを開けなかったのだ: %w", err)
	}
	defer store.Close()
	return fn(store)
}

func historyListCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	return withStore(ctx, func(store *history.SQLiteStore) error {
		designs, err := store.LoadAll(ctx)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTYPE\tSTYLE\tCREATED\tPROMPT")
		for _, d := range designs {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				d.ID, d.Kind, d.Style.Key(), d.CreatedAt.Local().Format("2006-01-02 15:04"), truncate(d.Prompt, 48))
		}
		return w.Flush()
	})
}

func historyExportCommand(cmd *cobra.Command, args []string) error {
	return runWithApp(cmd.Context(), func(ctx context.Context, app *builder.AppContext) error {
		for _, id := range args {
			d, err := app.History.Get(ctx, id)
			if err != nil {
				return fmt.Errorf("デザインが見つからないのだ (id: %s): %w", id, err)
			}
			path, err := app.Exporter.Export(ctx, d)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", d.ID, path)
		}
		return nil
	})
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
