package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"codescope/internal/ir"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

type SQLiteStore struct {
	db    *sql.DB
	newID func() string
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates or opens a SQLite database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	s := &SQLiteStore{db: db, newID: uuid.NewString}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init schema: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			repo_name TEXT,
			repo_path TEXT,
			branch TEXT,
			commit_hash TEXT,
			analyzed_at INTEGER,
			files_analyzed INTEGER,
			maintainability REAL,
			duplication REAL,
			payload JSON
		);`,
		`CREATE TABLE IF NOT EXISTS examples (
			run_id TEXT,
			id TEXT,
			category TEXT,
			title TEXT,
			filepath TEXT,
			start_line INTEGER,
			end_line INTEGER,
			language TEXT,
			complexity TEXT,
			content JSON,
			PRIMARY KEY (run_id, id)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_repo ON runs(repo_path, analyzed_at);`,
		`CREATE INDEX IF NOT EXISTS idx_examples_file ON examples(run_id, filepath);`,
	}

	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return err
		}
	}
	return nil
}

// --- RunStore Implementation ---

func (s *SQLiteStore) SaveAnalysis(ctx context.Context, a *ir.CodebaseAnalysis) (string, error) {
	if a == nil {
		return "", errors.New("nil analysis")
	}
	payload, err := json.Marshal(a)
	if err != nil {
		return "", fmt.Errorf("encode analysis: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	id := s.newID()
	repo := a.Repository
	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, repo_name, repo_path, branch, commit_hash, analyzed_at, files_analyzed, maintainability, duplication, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, id, repo.Name, repo.Path, repo.Branch, repo.Commit, a.AnalyzedAt.UnixNano(),
		a.Quality.FilesAnalyzed, a.Quality.MaintainabilityIndex, a.Quality.DuplicateCodePercentage, payload)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	// Examples are denormalized for per-file lookups.
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO examples (run_id, id, category, title, filepath, start_line, end_line, language, complexity, content)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, id) DO NOTHING
	`)
	if err != nil {
		return "", err
	}
	defer stmt.Close()

	for _, c := range ir.Categories {
		for _, ex := range a.Examples[c] {
			content, err := json.Marshal(ex)
			if err != nil {
				return "", fmt.Errorf("encode example %s: %w", ex.ID, err)
			}
			if _, err := stmt.ExecContext(ctx, id, ex.ID, ex.Category, ex.Title, ex.FilePath,
				ex.StartLine, ex.EndLine, ex.Language, ex.Complexity, content); err != nil {
				return "", fmt.Errorf("insert example: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return id, nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context, repoPath string, limit int) ([]RunSummary, error) {
	query := "SELECT id, repo_name, repo_path, branch, commit_hash, analyzed_at, files_analyzed, maintainability, duplication FROM runs"
	var args []any
	if repoPath != "" {
		query += " WHERE repo_path = ?"
		args = append(args, repoPath)
	}
	query += " ORDER BY analyzed_at DESC, rowid DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	runs := []RunSummary{}
	for rows.Next() {
		var r RunSummary
		var at int64
		if err := rows.Scan(&r.ID, &r.RepoName, &r.RepoPath, &r.Branch, &r.Commit, &at,
			&r.FilesAnalyzed, &r.Maintainability, &r.Duplication); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		r.AnalyzedAt = time.Unix(0, at).UTC()
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

func (s *SQLiteStore) LoadAnalysis(ctx context.Context, id string) (*ir.CodebaseAnalysis, error) {
	row := s.db.QueryRowContext(ctx, "SELECT payload FROM runs WHERE id = ?", id)

	var payload []byte
	if err := row.Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", id, ErrRunNotFound)
		}
		return nil, err
	}

	var a ir.CodebaseAnalysis
	if err := json.Unmarshal(payload, &a); err != nil {
		return nil, fmt.Errorf("decode run %s: %w", id, err)
	}
	return &a, nil
}

func (s *SQLiteStore) DeleteRun(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, "DELETE FROM runs WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%s: %w", id, ErrRunNotFound)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM examples WHERE run_id = ?", id); err != nil {
		return err
	}
	return tx.Commit()
}

// --- ExampleStore Implementation ---

func (s *SQLiteStore) FindExamplesByFile(ctx context.Context, runID, filePath string) ([]ir.CodeExample, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT content FROM examples WHERE run_id = ? AND filepath = ? ORDER BY start_line, id", runID, filePath)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var examples []ir.CodeExample
	for rows.Next() {
		var content []byte
		if err := rows.Scan(&content); err != nil {
			return nil, err
		}
		var ex ir.CodeExample
		if err := json.Unmarshal(content, &ex); err != nil {
			return nil, fmt.Errorf("decode example of run %s: %w", runID, err)
		}
		examples = append(examples, ex)
	}
	return examples, rows.Err()
}
