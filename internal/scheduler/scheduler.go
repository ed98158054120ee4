package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"QuantEngine/internal/collector"
	"QuantEngine/internal/model"
	"QuantEngine/internal/notifier"
	"QuantEngine/internal/recorder"
	"QuantEngine/internal/session"
	"QuantEngine/internal/strategy"
)

// ErrNothingScored is reported on a cycle where no ticker produced a score.
var ErrNothingScored = errors.New("no stocks scored")

// Evaluator scores a universe. *collector.Collector implements it.
type Evaluator interface {
	Evaluate(ctx context.Context, universe []string) collector.Result
}

// Notifier delivers formatted messages. *notifier.TelegramNotifier implements it.
type Notifier interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Scheduler runs evaluation cycles on a cron trigger and on demand, and
// answers chat commands against the session.
type Scheduler struct {
	Cron       *cron.Cron
	Evaluator  Evaluator
	Universe   []string
	Session    *session.Session
	Notifier   Notifier // nil disables notifications
	Recorder   recorder.Recorder
	MoveFactor float64
	Ctx        context.Context

	runMu sync.Mutex
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, ev Evaluator, universe []string, sess *session.Session, n Notifier, rec recorder.Recorder, moveFactor float64) *Scheduler {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Scheduler{
		Cron: cron.New(
			cron.WithSeconds(),
			cron.WithLogger(cronLogger{}),
			cron.WithChain(cron.Recover(cronLogger{}), cron.SkipIfStillRunning(cronLogger{})),
		),
		Evaluator:  ev,
		Universe:   universe,
		Session:    sess,
		Notifier:   n,
		Recorder:   rec,
		MoveFactor: moveFactor,
		Ctx:        ctx,
	}
}

// Register schedules the refresh cycle. Expressions take a seconds field or a
// descriptor such as "@every 60s".
func (s *Scheduler) Register(refreshCron string) error {
	if _, err := s.Cron.AddFunc(refreshCron, s.refreshTask); err != nil {
		return fmt.Errorf("register refresh task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Info().Int("universe", len(s.Universe)).Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for a running cycle to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Info().Msg("scheduler stopped")
}

func (s *Scheduler) refreshTask() {
	prev := s.Session.Latest()
	c, err := s.RunCycle(s.Ctx)
	if err != nil && !errors.Is(err, ErrNothingScored) {
		return
	}
	if selectionChanged(prev, c) {
		s.trySend(notifier.FormatRanking(c))
	}
}

// RunCycle evaluates the universe, ranks it, selects the top N and splits the
// current capital across them. The cycle is published to the session and
// recorded even when nothing could be ranked; in that case the returned error
// wraps ErrNothingScored.
func (s *Scheduler) RunCycle(ctx context.Context) (*model.Cycle, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	c := &model.Cycle{ID: uuid.NewString(), StartedAt: time.Now()}
	logger := log.With().Str("cycle_id", c.ID).Logger()
	logger.Info().Int("universe", len(s.Universe)).Msg("evaluation cycle started")

	res := s.Evaluator.Evaluate(ctx, s.Universe)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("evaluation cancelled: %w", err)
	}
	c.Skipped = res.Skipped

	ranked, err := strategy.Rank(res.Records)
	switch {
	case errors.Is(err, strategy.ErrEmptyUniverse):
		c.Err = fmt.Errorf("%w: %d tickers skipped", ErrNothingScored, len(res.Skipped))
	case err != nil:
		c.Err = err
	default:
		c.Ranked = ranked
		c.Selected = strategy.SelectTop(ranked, s.Session.TopN())
		c.Allocations, c.PerPosition, c.Err = strategy.BuildAllocations(c.Selected, s.Session.Portfolio.Capital())
	}
	c.FinishedAt = time.Now()

	s.Session.Publish(c)
	if err := s.Recorder.RecordCycle(c); err != nil {
		logger.Error().Err(err).Msg("record cycle")
	}

	if c.Err != nil {
		logger.Warn().Err(c.Err).Msg("evaluation cycle produced no ranking")
		return c, c.Err
	}
	logger.Info().
		Int("ranked", len(c.Ranked)).
		Int("skipped", len(c.Skipped)).
		Strs("selected", tickers(c.Selected)).
		Str("per_position", model.FormatMoney(c.PerPosition)).
		Dur("took", c.FinishedAt.Sub(c.StartedAt)).
		Msg("evaluation cycle finished")
	return c, nil
}

func selectionChanged(prev, next *model.Cycle) bool {
	if next == nil {
		return false
	}
	if prev == nil {
		return true
	}
	if (prev.Err == nil) != (next.Err == nil) {
		return true
	}
	a, b := tickers(prev.Selected), tickers(next.Selected)
	if len(a) != len(b) {
		return true
	}
	for i := range a {
		if a[i] != b[i] {
			return true
		}
	}
	return false
}

func tickers(recs []model.ScoreRecord) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.Ticker
	}
	return out
}

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Error().Err(err).Msg("send notification")
	}
}

// cronLogger routes cron's own logging through zerolog.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	log.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	log.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}
