// Command artctl inspects and maintains artscroll's local state.
//
// Usage:
//
//	artctl stats            Shown history and event statistics
//	artctl history          Recently shown artworks
//	artctl events           JSONL event log viewer
//	artctl probe            Sample the catalog and report acceptance
//	artctl reset            Forget shown history
//	artctl config           Print or initialize the config file
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmd := newRootCommand()
	if err := cmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
