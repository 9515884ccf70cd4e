// Package storage persists the send history in SQLite and answers the
// eligibility queries the planner needs.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"

	"ContentPlanner/internal/domain"
	"ContentPlanner/internal/ports"
)

const dateLayout = "2006-01-02"

// SQLiteLedger implements the history ledger over an embedded SQLite file.
type SQLiteLedger struct {
	db *sql.DB
}

var _ ports.HistoryLedger = (*SQLiteLedger)(nil)

// Open opens (or creates) the ledger database and applies the schema.
func Open(path string) (*SQLiteLedger, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set wal mode: %w", err)
	}

	ledger := &SQLiteLedger{db: db}
	if err := ledger.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate ledger: %w", err)
	}
	return ledger, nil
}

// Close releases the underlying connection.
func (l *SQLiteLedger) Close() error {
	return l.db.Close()
}

func (l *SQLiteLedger) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS message_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		message_id INTEGER NOT NULL,
		message_title TEXT NOT NULL,
		sent_date DATE NOT NULL,
		sent_datetime TIMESTAMP NOT NULL,
		channel_id INTEGER NOT NULL,
		success BOOLEAN NOT NULL,
		error_message TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_message_id ON message_history(message_id);
	CREATE INDEX IF NOT EXISTS idx_sent_date ON message_history(sent_date);
	`
	_, err := l.db.Exec(schema)
	return err
}

// LastSentDate returns the date of the most recent successful send for the
// item, or nil if it was never sent.
func (l *SQLiteLedger) LastSentDate(ctx context.Context, itemID int) (*time.Time, error) {
	query, args, err := sq.Select("MAX(sent_date)").
		From("message_history").
		Where(sq.Eq{"message_id": itemID, "success": true}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build last-sent query: %w", err)
	}

	var raw sql.NullString
	if err := l.db.QueryRowContext(ctx, query, args...).Scan(&raw); err != nil {
		return nil, fmt.Errorf("query last sent: %w", err)
	}
	if !raw.Valid || raw.String == "" {
		return nil, nil
	}

	parsed, err := time.Parse(dateLayout, raw.String)
	if err != nil {
		return nil, fmt.Errorf("parse sent_date %q: %w", raw.String, err)
	}
	return &parsed, nil
}

// TodaySentIDs lists the items successfully sent on the given day.
func (l *SQLiteLedger) TodaySentIDs(ctx context.Context, today time.Time) ([]int, error) {
	query, args, err := sq.Select("DISTINCT message_id").
		From("message_history").
		Where(sq.Eq{"sent_date": today.Format(dateLayout), "success": true}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build today-sent query: %w", err)
	}

	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query today sent: %w", err)
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan message id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return ids, nil
}

// LogSent appends one delivery attempt to the history.
func (l *SQLiteLedger) LogSent(ctx context.Context, rec domain.SendRecord) error {
	query, args, err := sq.Insert("message_history").
		Columns("message_id", "message_title", "sent_date", "sent_datetime",
			"channel_id", "success", "error_message").
		Values(rec.ItemID, rec.Title, rec.SentAt.Format(dateLayout),
			rec.SentAt.Format("2006-01-02 15:04:05"), rec.Channel,
			rec.Success, rec.ErrorMsg).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := l.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert send record: %w", err)
	}
	return nil
}

// Stats aggregates the history for one item.
func (l *SQLiteLedger) Stats(ctx context.Context, itemID int) (domain.SendStats, error) {
	query, args, err := sq.Select(
		"COUNT(CASE WHEN success = 1 THEN 1 END)",
		"MAX(CASE WHEN success = 1 THEN sent_date END)",
		"COUNT(CASE WHEN success = 0 THEN 1 END)").
		From("message_history").
		Where(sq.Eq{"message_id": itemID}).
		ToSql()
	if err != nil {
		return domain.SendStats{}, fmt.Errorf("build stats query: %w", err)
	}

	var (
		stats domain.SendStats
		last  sql.NullString
	)
	if err := l.db.QueryRowContext(ctx, query, args...).Scan(&stats.TotalSent, &last, &stats.Errors); err != nil {
		return domain.SendStats{}, fmt.Errorf("query stats: %w", err)
	}
	if last.Valid && last.String != "" {
		parsed, err := time.Parse(dateLayout, last.String)
		if err != nil {
			return domain.SendStats{}, fmt.Errorf("parse sent_date %q: %w", last.String, err)
		}
		stats.LastSent = &parsed
	}
	return stats, nil
}
