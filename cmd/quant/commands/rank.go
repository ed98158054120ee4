package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"QuantEngine/internal/model"
	"QuantEngine/internal/scheduler"
)

var (
	rankProvider string
	rankTopN     int
)

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Evaluate the universe once and print the ranking",
	Long: `Fetches bars for every ticker, scores them, and prints the ranked
table with the top N selection and equal-weight allocation.

Example:
  quant rank
  quant rank --provider mock --top 5`,
	RunE: runRank,
}

func init() {
	rootCmd.AddCommand(rankCmd)
	rankCmd.Flags().StringVar(&rankProvider, "provider", "", "override data_source.provider")
	rankCmd.Flags().IntVar(&rankTopN, "top", 0, "override engine.top_n")
}

func runRank(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if rankProvider != "" {
		cfg.DataSource.Provider = rankProvider
	}
	if rankTopN > 0 {
		cfg.Engine.TopN = rankTopN
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	col, err := newCollector(cfg)
	if err != nil {
		return err
	}
	rec := newRecorder(cfg)
	defer rec.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	sched := scheduler.NewScheduler(ctx, col, cfg.Universe, newSession(cfg), nil, rec, cfg.Engine.MoveFactor)
	c, err := sched.RunCycle(ctx)
	if c == nil {
		return err
	}
	printRanking(cmd.OutOrStdout(), c)
	if errors.Is(err, scheduler.ErrNothingScored) {
		return err
	}
	return nil
}

func printRanking(w io.Writer, c *model.Cycle) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "═══════════════════════════════════════════════════════════")
	fmt.Fprintf(w, "  Factor Ranking  %s\n", c.FinishedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintln(w, "───────────────────────────────────────────────────────────")
	if c.Err != nil {
		fmt.Fprintf(w, "  ⚠️  %v\n", c.Err)
	} else {
		fmt.Fprintf(w, "  %-3s %-9s %5s %10s %7s  %s\n", "#", "Ticker", "Score", "Price", "RSI", "Trend Mom Vol Str")
		for i, r := range c.Ranked {
			b := r.Breakdown
			fmt.Fprintf(w, "  %-3d %-9s %5d %10.2f %7.2f  %-5s %-3s %-3s %s\n",
				i+1, r.Ticker, r.Score, r.LastPrice, b.RSI14,
				mark(b.Trend), mark(b.Momentum), mark(b.Volatility), mark(b.Strength))
		}
		fmt.Fprintln(w, "───────────────────────────────────────────────────────────")
		fmt.Fprintln(w, "  🏆 Top Portfolio Selections")
		for _, a := range c.Allocations {
			fmt.Fprintf(w, "     %-9s $%s\n", a.Ticker, model.FormatMoney(a.Amount))
		}
		fmt.Fprintf(w, "  Equal Allocation per Stock: $%s\n", model.FormatMoney(c.PerPosition))
	}
	if len(c.Skipped) > 0 {
		skipped := make([]string, 0, len(c.Skipped))
		for t, reason := range c.Skipped {
			skipped = append(skipped, fmt.Sprintf("%s (%s)", t, reason))
		}
		sort.Strings(skipped)
		fmt.Fprintf(w, "  Skipped: %s\n", strings.Join(skipped, ", "))
	}
	fmt.Fprintln(w, "═══════════════════════════════════════════════════════════")
}

func mark(pass bool) string {
	if pass {
		return "✓"
	}
	return "·"
}
