package recorder

import (
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"QuantEngine/internal/model"
)

// SQLiteRecorder persists ranking cycles to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets dashboards read while the engine writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS cycles (
			id           TEXT PRIMARY KEY,
			started_at   INTEGER NOT NULL,
			finished_at  INTEGER NOT NULL,
			ranked       INTEGER NOT NULL,
			skipped      INTEGER NOT NULL,
			per_position TEXT,
			error        TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_cycles_started ON cycles(started_at)`,

		`CREATE TABLE IF NOT EXISTS cycle_scores (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			cycle_id    TEXT NOT NULL REFERENCES cycles(id),
			position    INTEGER NOT NULL,
			ticker      TEXT NOT NULL,
			score       INTEGER NOT NULL,
			last_price  REAL,
			trend       INTEGER,
			momentum    INTEGER,
			volatility  INTEGER,
			strength    INTEGER,
			ema20       REAL,
			ema50       REAL,
			rsi14       REAL,
			atr14       REAL,
			selected    INTEGER NOT NULL,
			allocation  TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_scores_cycle ON cycle_scores(cycle_id)`,
		`CREATE INDEX IF NOT EXISTS idx_scores_ticker ON cycle_scores(ticker)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordCycle stores the cycle header and one row per ranked ticker in a
// single transaction.
func (r *SQLiteRecorder) RecordCycle(c *model.Cycle) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var errText sql.NullString
	if c.Err != nil {
		errText = sql.NullString{String: c.Err.Error(), Valid: true}
	}
	if _, err := tx.Exec(`INSERT INTO cycles
		(id, started_at, finished_at, ranked, skipped, per_position, error)
		VALUES (?,?,?,?,?,?,?)`,
		c.ID, c.StartedAt.Unix(), c.FinishedAt.Unix(), len(c.Ranked), len(c.Skipped),
		c.PerPosition.String(), errText,
	); err != nil {
		return fmt.Errorf("insert cycle: %w", err)
	}

	amounts := make(map[string]string, len(c.Allocations))
	for _, a := range c.Allocations {
		amounts[a.Ticker] = a.Amount.String()
	}
	for i, rec := range c.Ranked {
		amount, selected := amounts[rec.Ticker]
		b := rec.Breakdown
		if _, err := tx.Exec(`INSERT INTO cycle_scores
			(cycle_id, position, ticker, score, last_price, trend, momentum, volatility, strength,
			 ema20, ema50, rsi14, atr14, selected, allocation)
			VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
			c.ID, i+1, rec.Ticker, rec.Score, rec.LastPrice,
			b.Trend, b.Momentum, b.Volatility, b.Strength,
			b.EMA20, b.EMA50, b.RSI14, b.ATR14,
			selected, nullIfEmpty(amount),
		); err != nil {
			return fmt.Errorf("insert score %s: %w", rec.Ticker, err)
		}
	}
	return tx.Commit()
}

// RecentCycles returns up to limit cycles, newest first.
func (r *SQLiteRecorder) RecentCycles(limit int) ([]CycleSummary, error) {
	rows, err := r.db.Query(`SELECT c.id, c.started_at, c.finished_at, c.ranked, c.skipped,
			COALESCE(c.per_position, ''), COALESCE(c.error, ''),
			COALESCE((SELECT GROUP_CONCAT(ticker, ',') FROM
				(SELECT ticker FROM cycle_scores s WHERE s.cycle_id = c.id AND s.selected = 1 ORDER BY s.position)), '')
		FROM cycles c ORDER BY c.started_at DESC, c.rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query cycles: %w", err)
	}
	defer rows.Close()

	var out []CycleSummary
	for rows.Next() {
		var (
			s               CycleSummary
			started, finish int64
			selected        string
		)
		if err := rows.Scan(&s.ID, &started, &finish, &s.Ranked, &s.Skipped,
			&s.PerPosition, &s.Error, &selected); err != nil {
			return nil, fmt.Errorf("scan cycle: %w", err)
		}
		s.StartedAt = time.Unix(started, 0)
		s.FinishedAt = time.Unix(finish, 0)
		if selected != "" {
			s.Selected = strings.Split(selected, ",")
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	log.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}

func nullIfEmpty(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
