package n8nstatus

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Store provides read-only access to the execution and workflow tables of an
// n8n SQLite database. Each query opens the file for the duration of the
// call and closes it before returning, so a Store holds no open handles
// between calls.
type Store struct {
	path   string
	logger *slog.Logger
}

// NewStore creates a store for the database at path. No I/O happens until
// the first query.
func NewStore(path string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{path: path, logger: logger}
}

// open opens the database read-only and verifies the expected schema is
// present. Callers own the returned handle and must close it.
func (s *Store) open(ctx context.Context) (*sql.DB, error) {
	if _, err := os.Stat(s.path); err != nil {
		return nil, NewStorageError(s.path, err)
	}

	db, err := sql.Open("sqlite", "file:"+s.path+"?mode=ro")
	if err != nil {
		return nil, NewStorageError(s.path, err)
	}

	if err := s.checkSchema(ctx, db); err != nil {
		db.Close()
		return nil, NewStorageError(s.path, err)
	}
	return db, nil
}

// checkSchema confirms the execution and workflow tables exist. This is also
// the first real read, so it surfaces "file is not a database" for paths
// that exist but hold something else.
func (s *Store) checkSchema(ctx context.Context, db *sql.DB) error {
	const query = `
		SELECT COUNT(*) FROM sqlite_master
		WHERE type = 'table' AND name IN ('execution_entity', 'workflow_entity')
	`
	var count int
	if err := db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return fmt.Errorf("failed to inspect schema: %w", err)
	}
	if count != 2 {
		return fmt.Errorf("missing execution_entity/workflow_entity tables (not an n8n database?)")
	}
	return nil
}

const executionColumns = `
	e.id, e.workflowId, w.name, e.startedAt, e.stoppedAt,
	e.finished, e.status, e.mode, e.retryOf
`

// FetchExecutions returns execution records matching the criteria, most
// recent first. When criteria.ID is set every other filter is ignored and at
// most one record is returned; a miss yields an empty result, not an error.
// A non-positive limit yields an empty result.
func (s *Store) FetchExecutions(ctx context.Context, criteria FilterCriteria) ([]ExecutionRecord, error) {
	if criteria.ID == "" && criteria.Limit <= 0 {
		return nil, nil
	}

	db, err := s.open(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	query, args := buildQuery(criteria)
	s.logger.Debug("querying executions", "path", s.path, "criteria", fmt.Sprintf("%+v", criteria))

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, NewStorageError(s.path, fmt.Errorf("query failed: %w", err))
	}
	defer rows.Close()

	records, err := scanExecutions(rows)
	if err != nil {
		return nil, NewStorageError(s.path, err)
	}
	return records, nil
}

// buildQuery composes the SQL for a criteria set. The workflow join is a
// LEFT JOIN so executions of deleted workflows are still returned, with a
// NULL name. Status-class toggles mirror the Classify rules: the backend's
// own terminal tokens take precedence over the finished/stoppedAt shape.
func buildQuery(criteria FilterCriteria) (string, []any) {
	var (
		where = []string{"e.startedAt IS NOT NULL"}
		args  []any
	)

	if criteria.ID != "" {
		query := fmt.Sprintf(`
			SELECT %s
			FROM execution_entity e
			LEFT JOIN workflow_entity w ON e.workflowId = w.id
			WHERE e.id = ?
			LIMIT 1
		`, executionColumns)
		return query, []any{criteria.ID}
	}

	if criteria.WorkflowNameSubstring != "" {
		// instr on the lowered name: case-insensitive, matches anywhere, and
		// NULL names (deleted workflows) never match.
		where = append(where, "instr(lower(w.name), lower(?)) > 0")
		args = append(args, criteria.WorkflowNameSubstring)
	}
	if criteria.ErrorsOnly {
		where = append(where, "e.status IN ('error', 'crashed')")
	}
	if criteria.RunningOnly {
		where = append(where, "e.finished = 0 AND e.stoppedAt IS NULL AND (e.status IS NULL OR e.status NOT IN ('canceled', 'crashed'))")
	}
	if criteria.WaitingOnly {
		where = append(where, "e.finished = 0 AND e.stoppedAt IS NOT NULL AND (e.status IS NULL OR e.status NOT IN ('canceled', 'crashed'))")
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM execution_entity e
		LEFT JOIN workflow_entity w ON e.workflowId = w.id
		WHERE %s
		ORDER BY e.startedAt DESC
		LIMIT ?
	`, executionColumns, strings.Join(where, " AND "))
	args = append(args, criteria.Limit)
	return query, args
}

// scanExecutions scans rows into ExecutionRecord structs.
func scanExecutions(rows *sql.Rows) ([]ExecutionRecord, error) {
	var records []ExecutionRecord

	for rows.Next() {
		var (
			rec        ExecutionRecord
			workflowID sql.NullString
			name       sql.NullString
			startedAt  sql.NullString
			stoppedAt  sql.NullString
			finished   sql.NullBool
			status     sql.NullString
			mode       sql.NullString
			retryOf    sql.NullString
		)
		err := rows.Scan(
			&rec.ID,
			&workflowID,
			&name,
			&startedAt,
			&stoppedAt,
			&finished,
			&status,
			&mode,
			&retryOf,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan execution row: %w", err)
		}

		rec.WorkflowID = workflowID.String
		if name.Valid {
			rec.WorkflowName = &name.String
		}
		rec.Finished = finished.Bool
		rec.StartedAt = parseTimestamp(startedAt.String)
		if stoppedAt.Valid {
			if t := parseTimestamp(stoppedAt.String); !t.IsZero() {
				rec.StoppedAt = &t
			}
		}
		rec.Status = status.String
		rec.Mode = mode.String
		if retryOf.Valid && retryOf.String != "" {
			rec.RetryOf = &retryOf.String
		}

		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating execution rows: %w", err)
	}
	return records, nil
}

// timestampLayouts covers the formats n8n has written across versions:
// space-separated with or without fractional seconds, and ISO 8601.
var timestampLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999",
	"2006-01-02 15:04:05",
	time.RFC3339Nano,
	time.RFC3339,
}

// parseTimestamp parses a stored timestamp, returning the zero time when the
// value fits no known layout. Malformed timestamps are a classification
// concern, not an error.
func parseTimestamp(value string) time.Time {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}
