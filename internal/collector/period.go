package collector

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"QuantEngine/internal/model"
)

// lookbackStart returns the earliest time covered by a Yahoo-style period
// string ("5d", "1mo", "6mo", "1y") ending at end.
func lookbackStart(period string, end time.Time) (time.Time, error) {
	p := strings.TrimSpace(strings.ToLower(period))
	unitAt := strings.IndexFunc(p, func(r rune) bool { return r < '0' || r > '9' })
	if unitAt <= 0 {
		return time.Time{}, fmt.Errorf("invalid lookback period %q", period)
	}
	n, err := strconv.Atoi(p[:unitAt])
	if err != nil || n <= 0 {
		return time.Time{}, fmt.Errorf("invalid lookback period %q", period)
	}
	switch p[unitAt:] {
	case "d":
		return end.AddDate(0, 0, -n), nil
	case "wk":
		return end.AddDate(0, 0, -7*n), nil
	case "mo":
		return end.AddDate(0, -n, 0), nil
	case "y":
		return end.AddDate(-n, 0, 0), nil
	default:
		return time.Time{}, fmt.Errorf("invalid lookback unit in %q", period)
	}
}

// tradingDays estimates the number of daily bars inside a lookback period.
func tradingDays(period string) int {
	end := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	start, err := lookbackStart(period, end)
	if err != nil {
		return 0
	}
	days := int(end.Sub(start).Hours() / 24)
	return days * 5 / 7
}

// trimToLookback keeps the bars inside the period ending at the last bar.
func trimToLookback(bars []model.OHLCV, period string) []model.OHLCV {
	if len(bars) == 0 || period == "" {
		return bars
	}
	start, err := lookbackStart(period, bars[len(bars)-1].Time)
	if err != nil {
		return bars
	}
	i := sort.Search(len(bars), func(i int) bool { return !bars[i].Time.Before(start) })
	return bars[i:]
}
