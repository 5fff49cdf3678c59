package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"BookTriage/internal/domain"
	"BookTriage/internal/ports"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	transitionsTable = "transitions"
	timeLayout       = "2006-01-02T15:04:05.000000000Z07:00"
)

const schema = `CREATE TABLE IF NOT EXISTS transitions (
    id TEXT PRIMARY KEY,
    run_id TEXT NOT NULL,
    stage TEXT NOT NULL,
    post_id TEXT NOT NULL,
    from_partition TEXT NOT NULL,
    to_partition TEXT NOT NULL,
    outcome TEXT NOT NULL,
    recorded_at TEXT NOT NULL
)`

const indexDDL = `CREATE INDEX IF NOT EXISTS transitions_post_id ON transitions (post_id)`

// SQLLedger appends move attempts to a transitions table.
type SQLLedger struct {
	db      *sql.DB
	builder sq.StatementBuilderType
	now     func() time.Time
}

var _ ports.TransitionLedger = (*SQLLedger)(nil)

// Open connects to the ledger database and ensures its schema.
func Open(ctx context.Context, driver, dsn string) (*SQLLedger, error) {
	if driver != DriverSQLite && driver != DriverPostgres {
		return nil, fmt.Errorf("unsupported ledger driver %q", driver)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	if driver == DriverSQLite {
		// Every sqlite connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}

	ledger := NewSQLLedger(db, driver)
	if err := ledger.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return ledger, nil
}

// NewSQLLedger wires an existing sql.DB.
func NewSQLLedger(db *sql.DB, driver string) *SQLLedger {
	builder := sq.StatementBuilder.PlaceholderFormat(sq.Question)
	if driver == DriverPostgres {
		builder = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	}
	return &SQLLedger{
		db:      db,
		builder: builder,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Migrate creates the transitions table when missing.
func (l *SQLLedger) Migrate(ctx context.Context) error {
	if l.db == nil {
		return nil
	}
	if _, err := l.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create transitions table: %w", err)
	}
	if _, err := l.db.ExecContext(ctx, indexDDL); err != nil {
		return fmt.Errorf("create transitions index: %w", err)
	}
	return nil
}

// Record inserts a transition, assigning an ID and timestamp when unset.
func (l *SQLLedger) Record(ctx context.Context, t domain.Transition) error {
	if l.db == nil {
		return nil
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.RecordedAt.IsZero() {
		t.RecordedAt = l.now()
	}

	query, args, err := l.builder.
		Insert(transitionsTable).
		Columns("id", "run_id", "stage", "post_id", "from_partition", "to_partition", "outcome", "recorded_at").
		Values(t.ID, t.RunID, string(t.Stage), t.PostID, string(t.From), string(t.To), string(t.Outcome),
			t.RecordedAt.UTC().Format(timeLayout)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := l.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert transition %s: %w", t.PostID, err)
	}
	return nil
}

// History returns every recorded transition for a post, oldest first.
func (l *SQLLedger) History(ctx context.Context, postID string) ([]domain.Transition, error) {
	if l.db == nil {
		return nil, nil
	}

	query, args, err := l.builder.
		Select("id", "run_id", "stage", "post_id", "from_partition", "to_partition", "outcome", "recorded_at").
		From(transitionsTable).
		Where(sq.Eq{"post_id": postID}).
		OrderBy("recorded_at", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}

	var result []domain.Transition
	for rows.Next() {
		var (
			t                        domain.Transition
			stage, from, to, outcome string
			recordedAt               string
		)
		if err := rows.Scan(&t.ID, &t.RunID, &stage, &t.PostID, &from, &to, &outcome, &recordedAt); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan transition: %w", err)
		}
		t.Stage = domain.Stage(stage)
		t.From = domain.Partition(from)
		t.To = domain.Partition(to)
		t.Outcome = domain.MoveOutcome(outcome)
		if t.RecordedAt, err = time.Parse(timeLayout, recordedAt); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("parse recorded_at: %w", err)
		}
		result = append(result, t)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("rows iteration: %w", rowsErr)
	}

	if closeErr := rows.Close(); closeErr != nil {
		return nil, fmt.Errorf("close rows: %w", closeErr)
	}

	return result, nil
}

// Close releases the database handle.
func (l *SQLLedger) Close() error {
	if l.db == nil {
		return nil
	}
	return l.db.Close()
}
