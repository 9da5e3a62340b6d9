package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/pgvector/pgvector-go"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/markdave123-py/ragstore/internal/config"
	"github.com/markdave123-py/ragstore/internal/core"
	"github.com/markdave123-py/ragstore/internal/models"
)

type DatabaseClient struct {
	db *sql.DB
}

func NewDatabaseClient(ctx context.Context, cfg *config.Config) (core.DbClient, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database client configuration is nil")
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}

	dsn := cfg.DatabaseURL
	if cfg.SslCertPath != "" {
		u, err := url.Parse(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid DATABASE_URL: %w", err)
		}
		q := u.Query()
		q.Set("sslmode", "verify-ca")
		q.Set("sslrootcert", cfg.SslCertPath)
		u.RawQuery = q.Encode()
		dsn = u.String()
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// Sensible pool settings for an API service; adjust as needed.
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(10 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := EnsureBootstrapped(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: %w", err)
	}

	return &DatabaseClient{db: db}, nil
}

func (c *DatabaseClient) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// Users

func (c *DatabaseClient) CreateUser(ctx context.Context, user *models.User) error {
	if user == nil {
		return errors.New("nil user")
	}
	const q = `
		INSERT INTO users (id, email, password_hash, created_at)
		VALUES ($1, $2, $3, COALESCE($4, now()))
	`
	_, err := c.db.ExecContext(ctx, q, user.ID, user.Email, user.PasswordHash, user.CreatedAt)
	return err
}

func (c *DatabaseClient) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const q = `
		SELECT id, email, password_hash, created_at
		FROM users WHERE email = $1
	`
	var u models.User
	err := c.db.QueryRowContext(ctx, q, email).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Projects

// GetOrCreateProject runs a single upsert against the unique project_id key.
// DO UPDATE on conflict keeps RETURNING populated for the existing row, so a
// losing concurrent insert falls through to a read of the winner's row.
func (c *DatabaseClient) GetOrCreateProject(ctx context.Context, projectID string) (*models.Project, error) {
	if projectID == "" {
		return nil, errors.New("empty project id")
	}
	const q = `
		INSERT INTO projects (project_id)
		VALUES ($1)
		ON CONFLICT (project_id) DO UPDATE SET updated_at = now()
		RETURNING id, project_id, created_at, updated_at
	`
	var p models.Project
	if err := c.db.QueryRowContext(ctx, q, projectID).Scan(&p.ID, &p.ProjectID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, fmt.Errorf("get-or-create project %q: %w", projectID, err)
	}
	return &p, nil
}

// Assets

func (c *DatabaseClient) CreateAsset(ctx context.Context, asset *models.Asset) error {
	if asset == nil {
		return errors.New("nil asset")
	}
	const q = `
		INSERT INTO assets (asset_project_id, asset_name, asset_type, asset_size, asset_content_type)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	return c.db.QueryRowContext(ctx, q,
		asset.ProjectID, asset.Name, asset.Type, asset.Size, asset.ContentType,
	).Scan(&asset.ID, &asset.CreatedAt)
}

func (c *DatabaseClient) GetAssetByName(ctx context.Context, projectRef int64, name string) (*models.Asset, error) {
	const q = `
		SELECT id, asset_project_id, asset_name, asset_type, asset_size, asset_content_type, created_at
		FROM assets
		WHERE asset_project_id = $1 AND asset_name = $2
	`
	var a models.Asset
	err := c.db.QueryRowContext(ctx, q, projectRef, name).Scan(
		&a.ID, &a.ProjectID, &a.Name, &a.Type, &a.Size, &a.ContentType, &a.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (c *DatabaseClient) ListProjectAssets(ctx context.Context, projectRef int64, assetType string) ([]models.Asset, error) {
	const q = `
		SELECT id, asset_project_id, asset_name, asset_type, asset_size, asset_content_type, created_at
		FROM assets
		WHERE asset_project_id = $1 AND asset_type = $2
		ORDER BY created_at ASC
	`
	rows, err := c.db.QueryContext(ctx, q, projectRef, assetType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Asset
	for rows.Next() {
		var a models.Asset
		if err := rows.Scan(&a.ID, &a.ProjectID, &a.Name, &a.Type, &a.Size, &a.ContentType, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Chunks

// InsertChunks inserts one asset's chunk batch in a single transaction and
// returns the number of rows written.
func (c *DatabaseClient) InsertChunks(ctx context.Context, chunks []models.DataChunk) (int, error) {
	if len(chunks) == 0 {
		return 0, nil
	}
	tx, err := c.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return 0, err
	}

	const q = `
		INSERT INTO chunks (chunk_project_id, chunk_asset_id, chunk_order, chunk_text, chunk_metadata)
		VALUES ($1, $2, $3, $4, $5)
	`
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		_ = tx.Rollback()
		return 0, err
	}
	defer stmt.Close()

	for i := range chunks {
		ch := &chunks[i]
		meta, err := json.Marshal(ch.Metadata)
		if err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("marshal chunk metadata: %w", err)
		}
		if _, err := stmt.ExecContext(ctx,
			ch.ProjectID, ch.AssetID, ch.Order, ch.Text, meta,
		); err != nil {
			_ = tx.Rollback()
			return 0, err
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(chunks), nil
}

// DeleteProjectChunks removes every chunk scoped to the project. This is the
// reset path; it must finish before a fresh processing pass writes new rows.
func (c *DatabaseClient) DeleteProjectChunks(ctx context.Context, projectRef int64) (int64, error) {
	const q = `DELETE FROM chunks WHERE chunk_project_id = $1`
	res, err := c.db.ExecContext(ctx, q, projectRef)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (c *DatabaseClient) ListProjectChunks(ctx context.Context, projectRef int64) ([]models.DataChunk, error) {
	const q = `
		SELECT id, chunk_project_id, chunk_asset_id, chunk_order, chunk_text, chunk_metadata, created_at
		FROM chunks
		WHERE chunk_project_id = $1
		ORDER BY chunk_asset_id ASC, chunk_order ASC
	`
	rows, err := c.db.QueryContext(ctx, q, projectRef)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.DataChunk
	for rows.Next() {
		var (
			ch   models.DataChunk
			meta []byte
		)
		if err := rows.Scan(&ch.ID, &ch.ProjectID, &ch.AssetID, &ch.Order, &ch.Text, &meta, &ch.CreatedAt); err != nil {
			return nil, err
		}
		if len(meta) > 0 {
			if err := json.Unmarshal(meta, &ch.Metadata); err != nil {
				return nil, fmt.Errorf("unmarshal chunk metadata: %w", err)
			}
		}
		out = append(out, ch)
	}
	return out, rows.Err()
}

// UpdateChunkEmbedding stores the vector produced by the embedding provider.
func (c *DatabaseClient) UpdateChunkEmbedding(ctx context.Context, chunkID int64, embedding []float32) error {
	const q = `UPDATE chunks SET embedding = $2 WHERE id = $1`
	res, err := c.db.ExecContext(ctx, q, chunkID, pgvector.NewVector(embedding))
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("chunk not found: %d", chunkID)
	}
	return nil
}
