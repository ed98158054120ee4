package recorder

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"QuantEngine/internal/model"
)

func openTemp(t *testing.T) *SQLiteRecorder {
	t.Helper()
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "quant.db"))
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return r
}

func sampleCycle(id string, started time.Time) *model.Cycle {
	ranked := []model.ScoreRecord{
		{Ticker: "RY.TO", Score: 80, LastPrice: 140.5, Breakdown: model.FactorBreakdown{Trend: true, Momentum: true, Strength: true}},
		{Ticker: "TD.TO", Score: 55, LastPrice: 80.1, Breakdown: model.FactorBreakdown{Trend: true, Strength: true}},
		{Ticker: "SU.TO", Score: 0, LastPrice: 50},
	}
	per := decimal.NewFromInt(50000)
	return &model.Cycle{
		ID:         id,
		StartedAt:  started,
		FinishedAt: started.Add(2 * time.Second),
		Ranked:     ranked,
		Selected:   ranked[:2],
		Allocations: []model.Allocation{
			{Ticker: "RY.TO", Amount: per},
			{Ticker: "TD.TO", Amount: per},
		},
		PerPosition: per,
		Skipped:     map[string]string{"SHOP.TO": "no data"},
	}
}

func TestSQLiteRecorder_RecordAndRead(t *testing.T) {
	r := openTemp(t)
	base := time.Date(2024, 5, 1, 14, 0, 0, 0, time.UTC)

	require.NoError(t, r.RecordCycle(sampleCycle("first", base)))
	require.NoError(t, r.RecordCycle(sampleCycle("second", base.Add(time.Minute))))

	cycles, err := r.RecentCycles(10)
	require.NoError(t, err)
	require.Len(t, cycles, 2)

	latest := cycles[0]
	assert.Equal(t, "second", latest.ID)
	assert.Equal(t, 3, latest.Ranked)
	assert.Equal(t, 1, latest.Skipped)
	assert.Equal(t, "50000", latest.PerPosition)
	assert.Equal(t, []string{"RY.TO", "TD.TO"}, latest.Selected)
	assert.Empty(t, latest.Error)

	var rows int
	require.NoError(t, r.db.QueryRow(`SELECT COUNT(*) FROM cycle_scores WHERE cycle_id = ?`, "first").Scan(&rows))
	assert.Equal(t, 3, rows)

	cycles, err = r.RecentCycles(1)
	require.NoError(t, err)
	assert.Len(t, cycles, 1)
}

func TestSQLiteRecorder_FailedCycle(t *testing.T) {
	r := openTemp(t)
	c := &model.Cycle{
		ID:         "empty",
		StartedAt:  time.Now(),
		FinishedAt: time.Now(),
		Skipped:    map[string]string{"RY.TO": "insufficient data"},
		Err:        errors.New("no stocks scored"),
	}
	require.NoError(t, r.RecordCycle(c))

	cycles, err := r.RecentCycles(5)
	require.NoError(t, err)
	require.Len(t, cycles, 1)
	assert.Equal(t, "no stocks scored", cycles[0].Error)
	assert.Nil(t, cycles[0].Selected)
	assert.Equal(t, 0, cycles[0].Ranked)
}

func TestSQLiteRecorder_DuplicateIDRollsBack(t *testing.T) {
	r := openTemp(t)
	c := sampleCycle("dup", time.Now())
	require.NoError(t, r.RecordCycle(c))
	assert.Error(t, r.RecordCycle(c))

	var rows int
	require.NoError(t, r.db.QueryRow(`SELECT COUNT(*) FROM cycle_scores`).Scan(&rows))
	assert.Equal(t, 3, rows)
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NewNoopRecorder()
	assert.NoError(t, r.RecordCycle(&model.Cycle{}))
	cycles, err := r.RecentCycles(3)
	assert.NoError(t, err)
	assert.Empty(t, cycles)
	assert.NoError(t, r.Close())
}
