package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Journal records fault intents. Record commits before returning, so with
// the storage layer's durability pragmas the row outlives the recipe that
// follows it.
type Journal struct {
	db *sql.DB
}

func New(db *sql.DB) *Journal {
	return &Journal{db: db}
}

// Record inserts one intent and returns its ID once the row is durable.
func (j *Journal) Record(ctx context.Context, in Intent) (string, error) {
	if in.Label == "" {
		return "", fmt.Errorf("label is empty")
	}
	if in.Source == "" {
		return "", fmt.Errorf("source is empty")
	}
	if in.RawLen < 0 {
		return "", fmt.Errorf("raw_len is negative")
	}

	id := uuid.NewString()
	now := time.Now().UTC().Format(time.RFC3339Nano)

	var principal any
	if in.Principal != "" {
		principal = in.Principal
	}

	_, err := j.db.ExecContext(ctx, `
INSERT INTO fault_intents(id, label, kind, source, principal, raw_len, armed, created_at)
VALUES(?, ?, ?, ?, ?, ?, ?, ?);
`, id, in.Label, in.Kind, in.Source, principal, in.RawLen, in.Armed, now)
	if err != nil {
		return "", fmt.Errorf("record intent: %w", err)
	}
	return id, nil
}

// Last returns the most recent intent, or (nil, nil) when nothing has been
// recorded yet.
func (j *Journal) Last(ctx context.Context) (*Entry, error) {
	row := j.db.QueryRowContext(ctx, `
SELECT id, label, kind, source, principal, raw_len, armed, created_at
FROM fault_intents
ORDER BY created_at DESC, rowid DESC
LIMIT 1;
`)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load last intent: %w", err)
	}
	return e, nil
}

// Recent returns up to n intents, newest first.
func (j *Journal) Recent(ctx context.Context, n int) ([]Entry, error) {
	if n <= 0 {
		n = 10
	}
	rows, err := j.db.QueryContext(ctx, `
SELECT id, label, kind, source, principal, raw_len, armed, created_at
FROM fault_intents
ORDER BY created_at DESC, rowid DESC
LIMIT ?;
`, n)
	if err != nil {
		return nil, fmt.Errorf("load recent intents: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan intent: %w", err)
		}
		out = append(out, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate intents: %w", err)
	}
	return out, nil
}

// Count reports how many intents have been recorded over the journal's life.
func (j *Journal) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := j.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM fault_intents;`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count intents: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*Entry, error) {
	var (
		e          Entry
		principal  sql.NullString
		createdAtS string
	)
	if err := row.Scan(&e.ID, &e.Label, &e.Kind, &e.Source, &principal, &e.RawLen, &e.Armed, &createdAtS); err != nil {
		return nil, err
	}
	if principal.Valid {
		e.Principal = &principal.String
	}
	if t, err := time.Parse(time.RFC3339Nano, createdAtS); err == nil {
		e.CreatedAt = t
	}
	return &e, nil
}
