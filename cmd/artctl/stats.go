package main

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Shown history and event statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			st, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			stats, err := st.Stats()
			if err != nil {
				return fmt.Errorf("read history stats: %w", err)
			}

			fmt.Fprintf(out, "Artworks shown:        %s\n", humanize.Comma(int64(stats.Count)))
			if stats.Count > 0 {
				fmt.Fprintf(out, "First shown:           %s (%s)\n", stats.First.Local().Format(time.DateTime), humanize.Time(stats.First))
				fmt.Fprintf(out, "Last shown:            %s (%s)\n", stats.Last.Local().Format(time.DateTime), humanize.Time(stats.Last))
			}

			logPath, err := ctx.eventLogPath()
			if err != nil {
				return err
			}
			f, err := os.Open(logPath)
			if err != nil {
				fmt.Fprintf(out, "\nNo event log at %s\n", logPath)
				return nil
			}
			defer f.Close()

			if info, err := f.Stat(); err == nil {
				fmt.Fprintf(out, "\nEvent log:             %s (%s)\n", logPath, humanize.Bytes(uint64(info.Size())))
			}

			counts, err := kindHistogram(f)
			if err != nil {
				return fmt.Errorf("read event log: %w", err)
			}
			fmt.Fprintln(out, renderHistogram(counts, stdoutIsTerminal()))
			return nil
		},
	}
}

// renderHistogram renders event counts sorted by descending count, then kind.
func renderHistogram(counts map[string]int, fancy bool) string {
	kinds := make([]string, 0, len(counts))
	for k := range counts {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool {
		if counts[kinds[i]] != counts[kinds[j]] {
			return counts[kinds[i]] > counts[kinds[j]]
		}
		return kinds[i] < kinds[j]
	})

	rows := make([][]string, 0, len(kinds))
	for _, k := range kinds {
		rows = append(rows, []string{k, strconv.Itoa(counts[k])})
	}
	return renderTable([]string{"Kind", "Events"}, rows, []columnAlignment{alignLeft, alignRight}, fancy)
}
