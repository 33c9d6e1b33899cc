package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pgvector/pgvector-go"

	"github.com/metakai1/landsearch/internal/model"
)

// PostgresRepository is the land plot store. Plot metadata lives in a JSONB
// column queried through compiled predicates; the descriptive text is derived
// from the metadata at write time.
type PostgresRepository struct {
	db      *sqlx.DB
	agentID string
}

// NewPostgresRepository creates a new PostgreSQL repository. agentID is the
// deployment's record-ownership identifier, injected rather than compiled in
// so multiple tenants can share a schema.
func NewPostgresRepository(dsn string, agentID string, maxConn, maxIdleConn int) (*PostgresRepository, error) {
	// Disable prepared statement caching to avoid "unnamed prepared statement does not exist" errors
	if !strings.Contains(dsn, "?") {
		dsn += "?prefer_simple_protocol=true"
	} else {
		dsn += "&prefer_simple_protocol=true"
	}

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

	return &PostgresRepository{db: db, agentID: agentID}, nil
}

// Close closes the database connection.
func (r *PostgresRepository) Close() error {
	return r.db.Close()
}

// schemaDDL bootstraps the land plot tables. The pgvector extension must be
// provisioned before land_plots: the embedding column's vector type does not
// exist without it and table creation fails on a fresh database.
const schemaDDL = `
		CREATE EXTENSION IF NOT EXISTS vector;
		CREATE TABLE IF NOT EXISTS land_plots (
			id UUID PRIMARY KEY,
			agent_id UUID NOT NULL,
			description TEXT NOT NULL,
			metadata JSONB NOT NULL,
			embedding vector(1024),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_land_plots_metadata ON land_plots USING GIN (metadata);
		CREATE TABLE IF NOT EXISTS search_logs (
			id BIGSERIAL PRIMARY KEY,
			query TEXT,
			params JSONB,
			result_count INT NOT NULL,
			response_time_ms INT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
	`

// EnsureSchema creates the land plot tables if they do not exist.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schemaDDL); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}

// landPlotRow is the scan target for land_plots rows.
type landPlotRow struct {
	ID          string    `db:"id"`
	Description string    `db:"description"`
	Metadata    []byte    `db:"metadata"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (row *landPlotRow) toRecord() (model.PropertyRecord, error) {
	record := model.PropertyRecord{
		ID:          row.ID,
		Description: row.Description,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
	if err := json.Unmarshal(row.Metadata, &record.Metadata); err != nil {
		return model.PropertyRecord{}, fmt.Errorf("failed to decode metadata for %s: %w", row.ID, err)
	}
	return record, nil
}

// CreateProperty stores a land plot, replacing any existing record with the
// same id wholesale. Distance categories are rederived from meters and the
// descriptive text regenerated, so stored records can never drift from their
// metadata. Transient NFT data is stripped before persisting.
func (r *PostgresRepository) CreateProperty(ctx context.Context, record *model.PropertyRecord) error {
	metadata := record.Metadata
	metadata.NFTData = nil
	metadata.NormalizeDistances()

	if err := metadata.Validate(); err != nil {
		return fmt.Errorf("invalid property metadata: %w", err)
	}

	record.Metadata = metadata
	record.Description = metadata.Describe()

	payload, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}

	query := `
		INSERT INTO land_plots (id, agent_id, description, metadata)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			description = EXCLUDED.description,
			metadata = EXCLUDED.metadata,
			updated_at = NOW()
	`
	if _, err := r.db.ExecContext(ctx, query, record.ID, r.agentID, record.Description, payload); err != nil {
		return fmt.Errorf("failed to store property %s: %w", record.ID, err)
	}
	return nil
}

// GetPropertyByID retrieves a single land plot, or nil when absent.
func (r *PostgresRepository) GetPropertyByID(ctx context.Context, id string) (*model.PropertyRecord, error) {
	var row landPlotRow
	query := `
		SELECT id, description, metadata, created_at, updated_at
		FROM land_plots
		WHERE id = $1 AND agent_id = $2
	`
	err := r.db.GetContext(ctx, &row, query, id, r.agentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get property: %w", err)
	}

	record, err := row.toRecord()
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// SearchByMetadata compiles the search parameters and runs the resulting
// predicate against the store. Compilation failures (InvalidParamsError)
// propagate untouched; query failures are wrapped in SearchExecutionError.
func (r *PostgresRepository) SearchByMetadata(ctx context.Context, params *model.SearchParams, opts *model.SearchOptions) ([]model.PropertyRecord, error) {
	compiled, err := CompileSearchQuery(params, opts)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT id, description, metadata, created_at, updated_at
		FROM land_plots
		WHERE agent_id = $%d AND %s
		ORDER BY %s
	`, compiled.NextIndex, compiled.Where, compiled.OrderBy)
	args := append(compiled.Args, r.agentID)

	var rows []landPlotRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, &model.SearchExecutionError{Err: err}
	}

	records := make([]model.PropertyRecord, 0, len(rows))
	for i := range rows {
		record, err := rows[i].toRecord()
		if err != nil {
			return nil, &model.SearchExecutionError{Err: err}
		}
		records = append(records, record)
	}
	return records, nil
}

// UpdateEmbedding updates the embedding vector for a land plot.
func (r *PostgresRepository) UpdateEmbedding(ctx context.Context, id string, embedding []float32) error {
	vec := pgvector.NewVector(embedding)
	query := `UPDATE land_plots SET embedding = $1, updated_at = NOW() WHERE id = $2 AND agent_id = $3`
	if _, err := r.db.ExecContext(ctx, query, vec, id, r.agentID); err != nil {
		return fmt.Errorf("failed to update embedding: %w", err)
	}
	return nil
}

// VectorSearch performs semantic similarity search over the embedding column.
// The metadata-filter path is the only wired search; this stays unimplemented
// until the embedding pipeline is revived.
func (r *PostgresRepository) VectorSearch(ctx context.Context, queryEmbedding []float32, limit int) ([]model.PropertyRecord, error) {
	return nil, fmt.Errorf("vector search not implemented")
}

// LogSearch records a search query for later analysis.
func (r *PostgresRepository) LogSearch(ctx context.Context, query string, params *model.SearchParams, resultCount int, responseTimeMs int) error {
	payload, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("failed to encode search params: %w", err)
	}

	logQuery := `
		INSERT INTO search_logs (query, params, result_count, response_time_ms)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := r.db.ExecContext(ctx, logQuery, query, payload, resultCount, responseTimeMs); err != nil {
		return fmt.Errorf("failed to log search: %w", err)
	}
	return nil
}
