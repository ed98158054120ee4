package notifier

import (
	"fmt"
	"html"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"QuantEngine/internal/model"
	"QuantEngine/internal/portfolio"
	"QuantEngine/internal/risk"
)

// curvePoints is how many trailing equity points the sparkline shows.
const curvePoints = 30

// FormatRanking formats a cycle's ranking table, selection and allocation.
func FormatRanking(c *model.Cycle) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("🏆 <b>Factor Ranking</b> | %s\n\n", c.FinishedAt.Format("2006-01-02 15:04")))
	if c.Err != nil {
		b.WriteString(fmt.Sprintf("⚠️ %s\n", html.EscapeString(c.Err.Error())))
		writeSkipped(&b, c.Skipped)
		return b.String()
	}

	b.WriteString("<pre>\n")
	b.WriteString(fmt.Sprintf("%-3s %-9s %5s %10s  %s\n", "#", "Ticker", "Score", "Price", "T M V S"))
	for i, rec := range c.Ranked {
		b.WriteString(fmt.Sprintf("%-3d %-9s %5d %10.2f  %s\n",
			i+1, html.EscapeString(rec.Ticker), rec.Score, rec.LastPrice, gateMarks(rec.Breakdown)))
	}
	b.WriteString("</pre>\n")

	b.WriteString(FormatAllocation(c))
	writeSkipped(&b, c.Skipped)
	return b.String()
}

// FormatAllocation lists the selected tickers and the equal-weight amount.
func FormatAllocation(c *model.Cycle) string {
	if len(c.Allocations) == 0 {
		return "💰 No allocation this cycle\n"
	}
	var b strings.Builder
	b.WriteString("💰 <b>Top Portfolio Selections</b>\n")
	for _, a := range c.Allocations {
		b.WriteString(fmt.Sprintf("  %s: $%s\n", html.EscapeString(a.Ticker), model.FormatMoney(a.Amount)))
	}
	b.WriteString(fmt.Sprintf("Equal Allocation per Stock: $%s\n", model.FormatMoney(c.PerPosition)))
	return b.String()
}

func writeSkipped(b *strings.Builder, skipped map[string]string) {
	if len(skipped) == 0 {
		return
	}
	tickers := make([]string, 0, len(skipped))
	for t := range skipped {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)
	b.WriteString(fmt.Sprintf("\n⏭ Skipped %d: %s\n", len(tickers), html.EscapeString(strings.Join(tickers, ", "))))
}

func gateMarks(b model.FactorBreakdown) string {
	marks := make([]string, 0, 4)
	for _, pass := range []bool{b.Trend, b.Momentum, b.Volatility, b.Strength} {
		if pass {
			marks = append(marks, "✓")
		} else {
			marks = append(marks, "·")
		}
	}
	return strings.Join(marks, " ")
}

// FormatRisk formats risk metrics, or a notice when the history is too short.
func FormatRisk(snap risk.Snapshot, ok bool) string {
	if !ok {
		return "📉 <b>Risk</b>\nNot enough history yet: simulate at least one gain or loss."
	}
	return fmt.Sprintf("📉 <b>Risk</b> (%d returns)\nSharpe Ratio: %.2f\nMax Drawdown: %.2f%%",
		snap.Returns, snap.Sharpe, snap.MaxDrawdown*100)
}

// FormatPortfolio formats current capital and the equity curve.
func FormatPortfolio(st portfolio.State) string {
	var b strings.Builder
	b.WriteString("📈 <b>Portfolio Equity Curve</b>\n\n")
	b.WriteString(fmt.Sprintf("Capital: $%s\n", model.FormatMoney(st.Capital)))
	if len(st.EquityHistory) > 0 {
		start := st.EquityHistory[0]
		if !start.IsZero() {
			change := st.Capital.Sub(start).Div(start).Mul(decimal.NewFromInt(100))
			b.WriteString(fmt.Sprintf("Change: %s%%\n", signed(change.StringFixed(2))))
		}
	}
	b.WriteString(fmt.Sprintf("Points: %d\n", len(st.EquityHistory)))
	if len(st.EquityHistory) > 1 {
		b.WriteString(fmt.Sprintf("<code>%s</code>\n", Sparkline(st.EquityFloats(), curvePoints)))
	}
	return b.String()
}

// FormatMove confirms a simulated gain or loss.
func FormatMove(direction string, factor float64, capital decimal.Decimal) string {
	icon := "🟢"
	if direction == "loss" {
		icon = "🔴"
	}
	return fmt.Sprintf("%s Simulated %.2f%% %s\nCapital: $%s", icon, factor*100, direction, model.FormatMoney(capital))
}

// FormatHelp lists the chat commands.
func FormatHelp() string {
	return "<b>Commands</b>\n" +
		"/rank - run an evaluation now and show the ranking\n" +
		"/portfolio - capital and equity curve\n" +
		"/gain [factor] - simulate a portfolio gain\n" +
		"/loss [factor] - simulate a portfolio loss\n" +
		"/risk - Sharpe ratio and max drawdown\n" +
		"/reset - restart from initial capital\n" +
		"/help - this message"
}

var sparkBlocks = []rune("▁▂▃▄▅▆▇█")

// Sparkline renders the last limit values as block characters scaled
// between their minimum and maximum.
func Sparkline(values []float64, limit int) string {
	if limit > 0 && len(values) > limit {
		values = values[len(values)-limit:]
	}
	if len(values) == 0 {
		return ""
	}
	lo, hi := values[0], values[0]
	for _, v := range values {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	out := make([]rune, len(values))
	for i, v := range values {
		idx := 0
		if hi > lo {
			idx = int((v - lo) / (hi - lo) * float64(len(sparkBlocks)-1))
		}
		out[i] = sparkBlocks[idx]
	}
	return string(out)
}

func signed(s string) string {
	if strings.HasPrefix(s, "-") {
		return s
	}
	return "+" + s
}
