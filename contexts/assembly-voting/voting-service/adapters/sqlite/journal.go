package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"quorum/contexts/assembly-voting/voting-service/domain/entities"
	"quorum/contexts/assembly-voting/voting-service/ports"
)

const schema = `
CREATE TABLE IF NOT EXISTS result_journal (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	target TEXT NOT NULL,
	method TEXT NOT NULL,
	yes INTEGER NOT NULL,
	no INTEGER NOT NULL,
	abstain INTEGER NOT NULL,
	candidate_votes TEXT NOT NULL DEFAULT '',
	valid_votes INTEGER NOT NULL,
	invalid_votes INTEGER NOT NULL,
	cast_votes INTEGER NOT NULL,
	recorded_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_result_journal_target ON result_journal(target);
`

// Journal is the append-only audit log of finalized aggregates, kept in a
// local sqlite file so results survive host restarts independently of the
// primary database.
type Journal struct {
	db *sql.DB
}

func Open(ctx context.Context, path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create journal dir: %w", err)
	}
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close() //nolint:errcheck
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if err := os.Chmod(path, 0o600); err != nil && !errors.Is(err, os.ErrNotExist) {
		db.Close() //nolint:errcheck
		return nil, fmt.Errorf("chmod journal path: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close() //nolint:errcheck
		return nil, fmt.Errorf("apply journal schema: %w", err)
	}
	return &Journal{db: db}, nil
}

func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	return j.db.Close()
}

func (j *Journal) AppendResult(ctx context.Context, result entities.AggregateResult) error {
	candidateVotes := ""
	if len(result.CandidateVotes) > 0 {
		payload, err := json.Marshal(result.CandidateVotes)
		if err != nil {
			return fmt.Errorf("encode candidate votes: %w", err)
		}
		candidateVotes = string(payload)
	}
	_, err := j.db.ExecContext(ctx, `
INSERT INTO result_journal(target, method, yes, no, abstain, candidate_votes, valid_votes, invalid_votes, cast_votes, recorded_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		result.Target,
		string(result.Method),
		result.Yes,
		result.No,
		result.Abstain,
		candidateVotes,
		result.ValidVotes,
		result.InvalidVotes,
		result.CastVotes,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("append result: %w", err)
	}
	return nil
}

// ListResults returns the journaled aggregates for a target, oldest first.
func (j *Journal) ListResults(ctx context.Context, target string) ([]entities.AggregateResult, error) {
	rows, err := j.db.QueryContext(ctx, `
SELECT target, method, yes, no, abstain, candidate_votes, valid_votes, invalid_votes, cast_votes
FROM result_journal
WHERE target = ?
ORDER BY id ASC`, target)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	items := make([]entities.AggregateResult, 0)
	for rows.Next() {
		var result entities.AggregateResult
		var method, candidateVotes string
		if err := rows.Scan(
			&result.Target,
			&method,
			&result.Yes,
			&result.No,
			&result.Abstain,
			&candidateVotes,
			&result.ValidVotes,
			&result.InvalidVotes,
			&result.CastVotes,
		); err != nil {
			return nil, fmt.Errorf("scan result row: %w", err)
		}
		result.Method = entities.PollMethod(method)
		if candidateVotes != "" {
			if err := json.Unmarshal([]byte(candidateVotes), &result.CandidateVotes); err != nil {
				return nil, fmt.Errorf("decode candidate votes: %w", err)
			}
		}
		items = append(items, result)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate result rows: %w", err)
	}
	return items, nil
}

var _ ports.ResultJournal = (*Journal)(nil)
