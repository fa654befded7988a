package main

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/abelbrown/artscroll/internal/store"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Recently shown artworks",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			recent, err := st.Recent(limit)
			if err != nil {
				return fmt.Errorf("read history: %w", err)
			}
			if len(recent) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No artworks shown yet.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderHistory(recent, stdoutIsTerminal()))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of artworks to list")
	return cmd
}

func renderHistory(recent []store.Shown, fancy bool) string {
	rows := make([][]string, 0, len(recent))
	for _, sh := range recent {
		rows = append(rows, []string{
			strconv.FormatInt(int64(sh.Item.ID), 10),
			truncate(sh.Item.DisplayTitle(), 40),
			truncate(sh.Item.Artist(), 24),
			sh.Item.ObjectDate,
			humanize.Time(sh.ShownAt),
		})
	}
	return renderTable(
		[]string{"ID", "Title", "Artist", "Date", "Shown"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft},
		fancy,
	)
}
