package scheduler

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"QuantEngine/internal/notifier"
	"QuantEngine/internal/session"
)

// HandleCommand processes a chat command and returns the reply.
func (s *Scheduler) HandleCommand(ctx context.Context, text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return notifier.FormatHelp()
	}
	// Group chats send "/rank@BotName".
	cmd := strings.ToLower(strings.SplitN(fields[0], "@", 2)[0])
	args := fields[1:]

	switch cmd {
	case "/rank":
		c, err := s.RunCycle(ctx)
		if c == nil {
			return fmt.Sprintf("❌ Evaluation failed: %v", err)
		}
		return notifier.FormatRanking(c)
	case "/gain", "/loss":
		return s.simulate(strings.TrimPrefix(cmd, "/"), args)
	case "/risk":
		return notifier.FormatRisk(s.Session.Portfolio.Analyze())
	case "/portfolio":
		return notifier.FormatPortfolio(s.Session.Portfolio.State())
	case "/reset":
		s.Session.Reset()
		return "♻️ Portfolio reset\n" + notifier.FormatPortfolio(s.Session.Portfolio.State())
	default:
		return notifier.FormatHelp()
	}
}

func (s *Scheduler) simulate(direction string, args []string) string {
	dir, err := session.ParseDirection(direction)
	if err != nil {
		return fmt.Sprintf("❌ %v", err)
	}
	factor := s.MoveFactor
	if len(args) > 0 {
		f, err := strconv.ParseFloat(strings.TrimSuffix(args[0], "%"), 64)
		if err != nil {
			return fmt.Sprintf("❌ invalid factor %q", args[0])
		}
		if strings.HasSuffix(args[0], "%") {
			f /= 100
		}
		factor = f
	}
	capital, err := s.Session.Simulate(dir, factor)
	if err != nil {
		return fmt.Sprintf("❌ %v", err)
	}
	return notifier.FormatMove(string(dir), factor, capital)
}
