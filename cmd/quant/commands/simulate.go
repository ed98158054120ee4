package commands

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"QuantEngine/internal/model"
	"QuantEngine/internal/session"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate MOVE...",
	Short: "Apply a sequence of gains and losses and print risk metrics",
	Long: `Each MOVE is "gain" or "loss", optionally followed by ":factor".
Without a factor engine.move_factor is used.

Example:
  quant simulate gain loss
  quant simulate gain:0.02 loss:0.015 gain`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSimulate,
}

func init() {
	rootCmd.AddCommand(simulateCmd)
}

type move struct {
	dir    session.Direction
	factor float64
}

func parseMoves(args []string, defaultFactor float64) ([]move, error) {
	moves := make([]move, 0, len(args))
	for _, arg := range args {
		name, factorText, hasFactor := strings.Cut(arg, ":")
		dir, err := session.ParseDirection(name)
		if err != nil {
			return nil, err
		}
		factor := defaultFactor
		if hasFactor {
			factor, err = strconv.ParseFloat(factorText, 64)
			if err != nil {
				return nil, fmt.Errorf("move %q: invalid factor: %w", arg, err)
			}
		}
		moves = append(moves, move{dir: dir, factor: factor})
	}
	return moves, nil
}

func runSimulate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	moves, err := parseMoves(args, cfg.Engine.MoveFactor)
	if err != nil {
		return err
	}
	sess := newSession(cfg)
	return simulate(cmd.OutOrStdout(), sess, moves)
}

func simulate(w io.Writer, sess *session.Session, moves []move) error {
	fmt.Fprintf(w, "  start     $%s\n", model.FormatMoney(sess.Portfolio.Capital()))
	for _, m := range moves {
		capital, err := sess.Simulate(m.dir, m.factor)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "  %-4s %4.2f%% $%s\n", m.dir, m.factor*100, model.FormatMoney(capital))
	}

	snap, ok := sess.Portfolio.Analyze()
	fmt.Fprintln(w, "───────────────────────────────────────────────────────────")
	if !ok {
		fmt.Fprintln(w, "  Not enough history yet")
		return nil
	}
	fmt.Fprintf(w, "  Sharpe Ratio: %.2f\n", snap.Sharpe)
	fmt.Fprintf(w, "  Max Drawdown: %s%%\n", decimal.NewFromFloat(snap.MaxDrawdown*100).StringFixed(2))
	return nil
}
