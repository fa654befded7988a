package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/abelbrown/artscroll/internal/catalog"
)

// lookuper is the subset of catalog.Client probe needs.
type lookuper interface {
	FetchIDPool(ctx context.Context) ([]catalog.ItemID, error)
	Lookup(ctx context.Context, id catalog.ItemID) (catalog.Item, error)
}

// probeResult is the outcome for one sampled id.
type probeResult struct {
	ID     catalog.ItemID
	Title  string
	Reason string // "accepted" or the rejection cause
}

// probeSummary tallies a probe run.
type probeSummary struct {
	PoolSize int
	Results  []probeResult
	Reasons  map[string]int
	Elapsed  time.Duration
}

func newProbeCommand(ctx *commandContext) *cobra.Command {
	var (
		samples     int
		concurrency int
		verbose     bool
	)

	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Sample the catalog and report how many candidates would be accepted",
		RunE: func(cmd *cobra.Command, args []string) error {
			if samples < 0 {
				return fmt.Errorf("--samples must be >= 0, got %d", samples)
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			client := catalog.NewClient(cfg.ClientOptions())

			sum, err := runProbe(cmd.Context(), client, samples, concurrency, rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 1)))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fancy := stdoutIsTerminal()
			fmt.Fprintf(out, "Catalog pool:  %d ids\n", sum.PoolSize)
			fmt.Fprintf(out, "Sampled:       %d in %s\n\n", len(sum.Results), sum.Elapsed.Round(time.Millisecond))
			fmt.Fprintln(out, renderReasons(sum, fancy))

			if verbose {
				rows := make([][]string, 0, len(sum.Results))
				for _, r := range sum.Results {
					rows = append(rows, []string{strconv.FormatInt(int64(r.ID), 10), truncate(r.Title, 40), r.Reason})
				}
				fmt.Fprintln(out)
				fmt.Fprintln(out, renderTable([]string{"ID", "Title", "Result"}, rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft}, fancy))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&samples, "samples", "n", 30, "Number of random ids to look up")
	cmd.Flags().IntVar(&concurrency, "concurrency", 4, "Concurrent lookups")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "List every sampled id")
	return cmd
}

// runProbe samples n ids from the catalog pool and classifies each lookup.
func runProbe(ctx context.Context, c lookuper, n, concurrency int, rng *rand.Rand) (probeSummary, error) {
	if n < 0 {
		return probeSummary{}, fmt.Errorf("samples must be >= 0, got %d", n)
	}
	start := time.Now()
	ids, err := c.FetchIDPool(ctx)
	if err != nil {
		return probeSummary{}, fmt.Errorf("fetch id pool: %w", err)
	}

	poolSize := len(ids)
	rng.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
	if n < len(ids) {
		ids = ids[:n]
	}

	results := make([]probeResult, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(concurrency, 1))
	for i, id := range ids {
		g.Go(func() error {
			item, err := c.Lookup(gctx, id)
			results[i] = probeResult{ID: id, Title: item.Title, Reason: classify(err)}
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return probeSummary{}, err
	}

	sum := probeSummary{
		PoolSize: poolSize,
		Results:  results,
		Reasons:  make(map[string]int),
		Elapsed:  time.Since(start),
	}
	for _, r := range results {
		sum.Reasons[r.Reason]++
	}
	return sum, nil
}

func classify(err error) string {
	switch {
	case err == nil:
		return "accepted"
	case errors.Is(err, catalog.ErrNotFound):
		return "not found"
	case errors.Is(err, catalog.ErrNoImage):
		return "no image"
	case errors.Is(err, catalog.ErrIneligible):
		return "not public domain"
	case errors.Is(err, catalog.ErrNetwork):
		return "network error"
	default:
		return "error"
	}
}

func renderReasons(sum probeSummary, fancy bool) string {
	order := []string{"accepted", "no image", "not public domain", "not found", "network error", "error"}
	total := len(sum.Results)
	rows := make([][]string, 0, len(order))
	for _, reason := range order {
		n := sum.Reasons[reason]
		if n == 0 {
			continue
		}
		pct := float64(n) / float64(total) * 100
		rows = append(rows, []string{reason, strconv.Itoa(n), fmt.Sprintf("%.0f%%", pct)})
	}
	return renderTable([]string{"Result", "Count", "Share"}, rows,
		[]columnAlignment{alignLeft, alignRight, alignRight}, fancy)
}
