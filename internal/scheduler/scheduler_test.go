package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"QuantEngine/internal/collector"
	"QuantEngine/internal/model"
	"QuantEngine/internal/recorder"
	"QuantEngine/internal/session"
)

type fakeNotifier struct {
	mu   sync.Mutex
	sent []string
}

func (f *fakeNotifier) SendWithRetry(_ context.Context, text string, _ int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, text)
	return nil
}

type memRecorder struct {
	recorder.NoopRecorder
	cycles []*model.Cycle
}

func (m *memRecorder) RecordCycle(c *model.Cycle) error {
	m.cycles = append(m.cycles, c)
	return nil
}

func newTestScheduler(t *testing.T, fetcher collector.Fetcher, universe []string) (*Scheduler, *fakeNotifier, *memRecorder) {
	t.Helper()
	col := collector.NewCollector(fetcher, collector.Options{Workers: 2})
	sess := session.New(decimal.NewFromInt(100000), 3)
	n := &fakeNotifier{}
	rec := &memRecorder{}
	return NewScheduler(context.Background(), col, universe, sess, n, rec, 0.01), n, rec
}

func TestRunCycle_SelectsAndAllocates(t *testing.T) {
	s, _, rec := newTestScheduler(t, &collector.MockFetcher{Price: 100}, []string{"RY.TO", "TD.TO", "BNS.TO", "CM.TO"})

	c, err := s.RunCycle(context.Background())
	require.NoError(t, err)
	require.Len(t, c.Ranked, 4)
	assert.Equal(t, []string{"RY.TO", "TD.TO", "BNS.TO"}, tickers(c.Selected), "equal scores keep universe order")
	require.Len(t, c.Allocations, 3)
	assert.Equal(t, "33333.33", model.FormatMoney(c.PerPosition))
	assert.Same(t, c, s.Session.Latest())
	assert.Len(t, rec.cycles, 1)
}

func TestRunCycle_FewerScoredThanTopN(t *testing.T) {
	fetcher := &collector.MockFetcher{
		Price:  100,
		Errors: map[string]error{"SU.TO": errors.New("timeout")},
	}
	s, _, _ := newTestScheduler(t, fetcher, []string{"SU.TO", "RY.TO", "TD.TO"})

	c, err := s.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"RY.TO", "TD.TO"}, tickers(c.Selected))
	assert.Equal(t, "50000.00", model.FormatMoney(c.PerPosition))
	assert.Contains(t, c.Skipped, "SU.TO")
}

func TestRunCycle_NothingScored(t *testing.T) {
	s, _, rec := newTestScheduler(t, &collector.MockFetcher{}, []string{"RY.TO", "TD.TO"})

	c, err := s.RunCycle(context.Background())
	require.ErrorIs(t, err, ErrNothingScored)
	require.NotNil(t, c)
	assert.Empty(t, c.Selected)
	assert.Len(t, c.Skipped, 2)
	assert.Same(t, c, s.Session.Latest())
	assert.Len(t, rec.cycles, 1)
}

func TestRunCycle_UsesCurrentCapital(t *testing.T) {
	s, _, _ := newTestScheduler(t, &collector.MockFetcher{Price: 100}, []string{"RY.TO"})
	_, err := s.Session.Simulate(session.Gain, 0.5)
	require.NoError(t, err)

	c, err := s.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "150000.00", model.FormatMoney(c.PerPosition))
}

func TestRefreshTask_NotifiesOnlyOnSelectionChange(t *testing.T) {
	fetcher := &collector.MockFetcher{Price: 100}
	s, n, _ := newTestScheduler(t, fetcher, []string{"RY.TO", "TD.TO"})

	s.refreshTask()
	s.refreshTask()
	assert.Len(t, n.sent, 1)

	fetcher.Errors = map[string]error{"RY.TO": errors.New("gone")}
	s.refreshTask()
	assert.Len(t, n.sent, 2)
}

func TestRegister_RejectsBadSpec(t *testing.T) {
	s, _, _ := newTestScheduler(t, &collector.MockFetcher{}, nil)
	assert.Error(t, s.Register("every minute"))
	assert.NoError(t, s.Register("@every 60s"))
	assert.NoError(t, s.Register("0 */5 * * * *"))
}
