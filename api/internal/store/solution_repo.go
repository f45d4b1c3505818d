// Package store is the Postgres-backed cache of raw engine answers, keyed by
// query hash. It exists to save quota on repeated identical questions; the
// service runs fine without it when no DSN is configured.
package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"solvesnap/api/internal/util"
)

var ErrNotFound = sql.ErrNoRows

// QueryHash is the cache key for one engine+model+language+question+image
// combination. NUL joins keep adjacent fields from colliding.
func QueryHash(engine, model, language, question, imageDataURL string) string {
	key := strings.Join([]string{engine, model, language, question, imageDataURL}, "\x00")
	return util.SHA256Hex([]byte(key))
}

type SolutionRepo struct{ DB *sql.DB }

func NewSolutionRepo(db *sql.DB) *SolutionRepo { return &SolutionRepo{DB: db} }

type SolutionRow struct {
	ID        int64
	CreatedAt time.Time
	QueryHash string
	Engine    string
	Model     string
	Language  string
	Question  string
	RawAnswer string
}

// EnsureSchema creates the cache table when it does not exist yet.
func (r *SolutionRepo) EnsureSchema(ctx context.Context) error {
	const q = `
create table if not exists solutions (
  id bigserial primary key,
  created_at timestamptz not null default now(),
  query_hash text not null,
  engine text not null,
  model text not null,
  language text not null default '',
  question text not null default '',
  raw_answer text not null,
  unique (query_hash, engine, model)
)`
	_, err := r.DB.ExecContext(ctx, q)
	return err
}

// FindByHash returns the freshest cached answer for (query_hash, engine,
// model). When maxAge > 0 a stale row counts as not found.
func (r *SolutionRepo) FindByHash(ctx context.Context, queryHash, engine, model string, maxAge time.Duration) (*SolutionRow, error) {
	const q = `
select id, created_at, query_hash, engine, model,
       coalesce(language,'') as language,
       coalesce(question,'') as question,
       raw_answer
from solutions
where query_hash = $1 and engine = $2 and model = $3
order by created_at desc
limit 1`
	row := r.DB.QueryRowContext(ctx, q, queryHash, engine, model)

	var out SolutionRow
	if err := row.Scan(&out.ID, &out.CreatedAt, &out.QueryHash, &out.Engine, &out.Model,
		&out.Language, &out.Question, &out.RawAnswer); err != nil {
		return nil, err
	}
	if maxAge > 0 && time.Since(out.CreatedAt) > maxAge {
		return nil, ErrNotFound
	}
	return &out, nil
}

// Upsert stores a raw answer, replacing any previous answer for the same key.
func (r *SolutionRepo) Upsert(ctx context.Context, row SolutionRow) error {
	const q = `
insert into solutions (query_hash, engine, model, language, question, raw_answer)
values ($1,$2,$3,$4,$5,$6)
on conflict (query_hash, engine, model) do update
set language = excluded.language,
    question = excluded.question,
    raw_answer = excluded.raw_answer,
    created_at = now()`
	_, err := r.DB.ExecContext(ctx, q,
		row.QueryHash, row.Engine, row.Model, row.Language, row.Question, row.RawAnswer)
	return err
}

// PurgeOlderThan drops old cache rows so the table does not grow unbounded.
func (r *SolutionRepo) PurgeOlderThan(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		return 0, errors.New("olderThan must be > 0")
	}
	cutoff := time.Now().Add(-olderThan)
	const q = `delete from solutions where created_at < $1`
	res, err := r.DB.ExecContext(ctx, q, cutoff)
	if err != nil {
		return 0, err
	}
	aff, _ := res.RowsAffected()
	return aff, nil
}
