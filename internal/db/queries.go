package db

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

// Queries holds the ledger queries.
type Queries struct {
	db DBTX
}

// New creates queries bound to db.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// GenerationRun is one recorded run of the prompt generator.
type GenerationRun struct {
	ID          string
	OutputPath  string
	PromptCount int64
	Seed        uint64
	ShortCount  int64
	MediumCount int64
	LongCount   int64
	HugeCount   int64
	CreatedAt   time.Time
}

// InsertRunParams are the values recorded for a generator run.
type InsertRunParams struct {
	OutputPath  string
	PromptCount int64
	Seed        uint64
	ShortCount  int64
	MediumCount int64
	LongCount   int64
	HugeCount   int64
}

const insertRun = `
INSERT INTO generation_runs (
    id, output_path, prompt_count, seed,
    short_count, medium_count, long_count, huge_count, created_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING id, output_path, prompt_count, seed,
    short_count, medium_count, long_count, huge_count, created_at
`

// InsertRun records a run and returns the stored row.
func (q *Queries) InsertRun(ctx context.Context, arg InsertRunParams) (GenerationRun, error) {
	row := q.db.QueryRowContext(ctx, insertRun,
		uuid.NewString(),
		arg.OutputPath,
		arg.PromptCount,
		// Seeds span the full uint64 range; SQLite integers are signed.
		strconv.FormatUint(arg.Seed, 10),
		arg.ShortCount,
		arg.MediumCount,
		arg.LongCount,
		arg.HugeCount,
		time.Now().UTC(),
	)
	return scanRun(row)
}

const listRecentRuns = `
SELECT id, output_path, prompt_count, seed,
    short_count, medium_count, long_count, huge_count, created_at
FROM generation_runs
ORDER BY created_at DESC, rowid DESC
LIMIT ?
`

// ListRecentRuns returns up to limit runs, newest first.
func (q *Queries) ListRecentRuns(ctx context.Context, limit int64) ([]GenerationRun, error) {
	rows, err := q.db.QueryContext(ctx, listRecentRuns, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []GenerationRun
	for rows.Next() {
		i, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const countRuns = `SELECT COUNT(*) FROM generation_runs`

// CountRuns returns the number of recorded runs.
func (q *Queries) CountRuns(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countRuns).Scan(&count)
	return count, err
}

const sumPrompts = `
SELECT COALESCE(SUM(prompt_count), 0),
    COALESCE(SUM(short_count), 0),
    COALESCE(SUM(medium_count), 0),
    COALESCE(SUM(long_count), 0),
    COALESCE(SUM(huge_count), 0)
FROM generation_runs
`

// PromptTotals sums prompt counts across all runs.
type PromptTotals struct {
	Prompts int64
	Short   int64
	Medium  int64
	Long    int64
	Huge    int64
}

// SumPrompts returns prompt totals across all runs.
func (q *Queries) SumPrompts(ctx context.Context) (PromptTotals, error) {
	var t PromptTotals
	err := q.db.QueryRowContext(ctx, sumPrompts).Scan(
		&t.Prompts,
		&t.Short,
		&t.Medium,
		&t.Long,
		&t.Huge,
	)
	return t, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (GenerationRun, error) {
	var (
		i    GenerationRun
		seed string
	)
	err := s.Scan(
		&i.ID,
		&i.OutputPath,
		&i.PromptCount,
		&seed,
		&i.ShortCount,
		&i.MediumCount,
		&i.LongCount,
		&i.HugeCount,
		&i.CreatedAt,
	)
	if err != nil {
		return i, err
	}
	i.Seed, err = strconv.ParseUint(seed, 10, 64)
	if err != nil {
		return i, fmt.Errorf("parse seed %q: %w", seed, err)
	}
	return i, nil
}
