package usage

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// History is the durable archive of finished usage days. The live day
// stays in the JSON stats file; on rollover the displaced day is
// upserted here so totals survive beyond the current date.
type History struct {
	db        *sql.DB
	mu        sync.Mutex
	closeOnce sync.Once

	insertStmt *sql.Stmt
	daysStmt   *sql.Stmt
	pruneStmt  *sql.Stmt
}

// DayTotal is the aggregated usage of one archived day.
type DayTotal struct {
	Day          string
	InputTokens  int64
	OutputTokens int64
	Cost         float64
}

// NewHistory opens (and if needed creates) the history database.
func NewHistory(dbPath string) (*History, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("history db path cannot be empty")
	}

	// modernc.org/sqlite applies pragmas via _pragma=name(value) DSN
	// parameters.
	dsn := fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	// SQLite only supports a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	h := &History{db: db}
	if err := h.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize history schema: %w", err)
	}
	if err := h.prepareStatements(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare history statements: %w", err)
	}

	return h, nil
}

func (h *History) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS usage_days (
		day TEXT NOT NULL,
		provider TEXT NOT NULL,
		input_tokens INTEGER NOT NULL,
		output_tokens INTEGER NOT NULL,
		cost REAL NOT NULL,
		archived_at INTEGER NOT NULL,
		PRIMARY KEY (day, provider)
	);

	CREATE INDEX IF NOT EXISTS idx_usage_days_day ON usage_days(day);
	`
	_, err := h.db.Exec(schema)
	return err
}

func (h *History) prepareStatements() error {
	var err error

	h.insertStmt, err = h.db.Prepare(`
		INSERT INTO usage_days (day, provider, input_tokens, output_tokens, cost, archived_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (day, provider) DO UPDATE SET
			input_tokens = input_tokens + excluded.input_tokens,
			output_tokens = output_tokens + excluded.output_tokens,
			cost = cost + excluded.cost,
			archived_at = excluded.archived_at
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert statement: %w", err)
	}

	h.daysStmt, err = h.db.Prepare(`
		SELECT day, SUM(input_tokens), SUM(output_tokens), SUM(cost)
		FROM usage_days
		GROUP BY day
		ORDER BY day DESC
		LIMIT ?
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare days statement: %w", err)
	}

	h.pruneStmt, err = h.db.Prepare(`
		DELETE FROM usage_days
		WHERE day < ?
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare prune statement: %w", err)
	}

	return nil
}

// ArchiveDay upserts one finished day. Re-archiving the same day adds
// onto the stored counters, so a crash between archive and stats-file
// reset cannot lose usage.
func (h *History) ArchiveDay(ctx context.Context, day string, counters map[string]*Counters) error {
	if day == "" {
		return fmt.Errorf("day cannot be empty")
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	now := time.Now().Unix()
	for providerID, c := range counters {
		_, err := h.insertStmt.ExecContext(ctx,
			day, providerID, c.InputTokens, c.OutputTokens, c.Cost, now)
		if err != nil {
			return fmt.Errorf("failed to archive day %s for %s: %w", day, providerID, err)
		}
	}
	return nil
}

// Days returns up to limit archived days, newest first, aggregated
// across providers.
func (h *History) Days(ctx context.Context, limit int) ([]DayTotal, error) {
	if limit <= 0 {
		limit = 30
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	rows, err := h.daysStmt.QueryContext(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query usage days: %w", err)
	}
	defer rows.Close()

	var days []DayTotal
	for rows.Next() {
		var d DayTotal
		if err := rows.Scan(&d.Day, &d.InputTokens, &d.OutputTokens, &d.Cost); err != nil {
			return nil, fmt.Errorf("failed to scan usage day: %w", err)
		}
		days = append(days, d)
	}
	return days, rows.Err()
}

// PruneBefore deletes archived days older than cutoff and reports how
// many rows were removed.
func (h *History) PruneBefore(ctx context.Context, cutoff time.Time) (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	result, err := h.pruneStmt.ExecContext(ctx, cutoff.Format(dayFormat))
	if err != nil {
		return 0, fmt.Errorf("failed to prune usage history: %w", err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(deleted), nil
}

// Close releases the database. Close is idempotent.
func (h *History) Close() error {
	var closeErr error
	h.closeOnce.Do(func() {
		if h.insertStmt != nil {
			h.insertStmt.Close()
		}
		if h.daysStmt != nil {
			h.daysStmt.Close()
		}
		if h.pruneStmt != nil {
			h.pruneStmt.Close()
		}
		if h.db != nil {
			_, _ = h.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
			closeErr = h.db.Close()
		}
	})
	return closeErr
}
