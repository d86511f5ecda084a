package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pgvector/pgvector-go"

	"github.com/vkadam-18/LVDI-2D/internal/model"
)

// PostgresRepository handles database operations
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(dsn string, maxConn, maxIdleConn int) (*PostgresRepository, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(maxConn)
	db.SetMaxIdleConns(maxIdleConn)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(2 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{db: db}, nil
}

// NewPostgresRepositoryFromDB wraps an existing connection
func NewPostgresRepositoryFromDB(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Close closes the database connection
func (r *PostgresRepository) Close() error {
	return r.db.Close()
}

// Ping checks the connection
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

var schemaStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS vector`,
	`CREATE TABLE IF NOT EXISTS pivot_tables (
		version    TEXT NOT NULL,
		name       TEXT NOT NULL,
		columns    JSONB NOT NULL,
		rows       JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (version, name)
	)`,
	`CREATE TABLE IF NOT EXISTS query_logs (
		id               UUID PRIMARY KEY,
		version          TEXT NOT NULL,
		query            TEXT NOT NULL,
		route            TEXT NOT NULL,
		kind             TEXT NOT NULL,
		intent           JSONB,
		answer           TEXT,
		embedding        vector,
		response_time_ms INTEGER,
		helpful          BOOLEAN,
		feedback_comment TEXT,
		created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS query_logs_version_idx ON query_logs (version)`,
}

// Migrate creates the tables the service needs
func (r *PostgresRepository) Migrate(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to migrate schema: %w", err)
		}
	}
	return nil
}

type pivotRow struct {
	Name    string            `db:"name"`
	Columns model.JSONColumns `db:"columns"`
	Rows    model.JSONRows    `db:"rows"`
}

// LoadTables reads every pivot table stored for a version
func (r *PostgresRepository) LoadTables(ctx context.Context, version string) (*model.TableSet, error) {
	version = model.NormalizeVersion(version)

	var rows []pivotRow
	query := `SELECT name, columns, rows FROM pivot_tables WHERE version = $1 ORDER BY name`
	if err := r.db.SelectContext(ctx, &rows, query, version); err != nil {
		return nil, fmt.Errorf("failed to load pivot tables: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no pivot tables stored for version %s", version)
	}

	set := model.NewTableSet(version)
	for _, row := range rows {
		set.Add(&model.Table{
			Name:    row.Name,
			Columns: []string(row.Columns),
			Rows:    row.Rows.Strings(),
		})
	}
	return set, nil
}

// SaveTables upserts every table of a set
func (r *PostgresRepository) SaveTables(ctx context.Context, set *model.TableSet) (int, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PreparexContext(ctx, `
		INSERT INTO pivot_tables (version, name, columns, rows, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (version, name) DO UPDATE
		SET columns = EXCLUDED.columns, rows = EXCLUDED.rows, updated_at = NOW()
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	saved := 0
	for _, group := range []map[string]*model.Table{set.OneD, set.TwoD} {
		for name, t := range group {
			if _, err := stmt.ExecContext(ctx, set.Version, name, model.JSONColumns(t.Columns), model.RowsFromStrings(t.Rows)); err != nil {
				return 0, fmt.Errorf("failed to save table %s: %w", name, err)
			}
			saved++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return saved, nil
}

// LogQuery stores one ask
func (r *PostgresRepository) LogQuery(ctx context.Context, entry *model.QueryLog) error {
	var intent any
	if entry.Intent != nil {
		b, err := json.Marshal(entry.Intent)
		if err != nil {
			return fmt.Errorf("failed to encode intent: %w", err)
		}
		intent = string(b)
	}

	var embedding any
	if len(entry.Embedding) > 0 {
		embedding = pgvector.NewVector(entry.Embedding)
	}

	query := `
		INSERT INTO query_logs (id, version, query, route, kind, intent, answer, embedding, response_time_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.ExecContext(ctx, query,
		entry.ID, entry.Version, entry.Query, entry.Route, entry.Kind,
		intent, entry.Answer, embedding, entry.ResponseMs, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to log query: %w", err)
	}
	return nil
}

// FindSimilarIntent returns the intent of the closest earlier text answer
// within maxDistance (cosine), or nil when there is none
func (r *PostgresRepository) FindSimilarIntent(ctx context.Context, embedding []float32, maxDistance float64, version string) (*model.Intent, error) {
	var row struct {
		Intent   []byte  `db:"intent"`
		Distance float64 `db:"distance"`
	}

	query := `
		SELECT intent, embedding <=> $1 AS distance
		FROM query_logs
		WHERE version = $2 AND kind = $3 AND intent IS NOT NULL AND embedding IS NOT NULL
		ORDER BY embedding <=> $1
		LIMIT 1
	`
	err := r.db.GetContext(ctx, &row, query, pgvector.NewVector(embedding), version, model.KindText)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to search query logs: %w", err)
	}
	if row.Distance > maxDistance {
		return nil, nil
	}

	var intent model.Intent
	if err := json.Unmarshal(row.Intent, &intent); err != nil {
		return nil, fmt.Errorf("failed to decode cached intent: %w", err)
	}
	return &intent, nil
}

// LogFeedback records whether an answer helped
func (r *PostgresRepository) LogFeedback(ctx context.Context, askID string, helpful bool, comment string) error {
	query := `
		UPDATE query_logs
		SET helpful = $2, feedback_comment = NULLIF($3, '')
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query, askID, helpful, comment)
	if err != nil {
		return fmt.Errorf("failed to log feedback: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to log feedback: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", model.ErrAskNotFound, askID)
	}
	return nil
}
