package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore persists state in PostgreSQL for server deployments: one row per
// fixed key in a small kv table.
//
//	CREATE TABLE IF NOT EXISTS draft_state (
//	    key        TEXT PRIMARY KEY,
//	    value      JSONB NOT NULL,
//	    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
//	);
type PGStore struct {
	pool *pgxpool.Pool
	ctx  context.Context
}

// ConnectPG establishes a connection pool and verifies it.
func ConnectPG(ctx context.Context, databaseURL string) (*PGStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &PGStore{pool: pool, ctx: ctx}, nil
}

// Close closes the connection pool.
func (p *PGStore) Close() {
	if p.pool != nil {
		p.pool.Close()
	}
}

// Load reads the three fixed keys. Missing rows leave zero values.
func (p *PGStore) Load() (*State, error) {
	var state State
	targets := map[string]any{
		KeyApplications:    &state.Applications,
		KeyApplicantInfo:   &state.ApplicantInfo,
		KeyGeneratorOutput: &state.GeneratorOutput,
	}

	for key, target := range targets {
		var value []byte
		err := p.pool.QueryRow(p.ctx,
			`SELECT value FROM draft_state WHERE key = $1`, key,
		).Scan(&value)
		if err == pgx.ErrNoRows {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load state key %q: %w", key, err)
		}
		if err := json.Unmarshal(value, target); err != nil {
			return nil, fmt.Errorf("failed to decode state key %q: %w", key, err)
		}
	}
	return &state, nil
}

// Save upserts the three fixed keys in one transaction so a crash never
// leaves the keys from different mutations mixed.
func (p *PGStore) Save(state *State) error {
	entries := map[string]any{
		KeyApplications:    state.Applications,
		KeyApplicantInfo:   state.ApplicantInfo,
		KeyGeneratorOutput: state.GeneratorOutput,
	}

	tx, err := p.pool.Begin(p.ctx)
	if err != nil {
		return fmt.Errorf("failed to begin state save: %w", err)
	}
	defer tx.Rollback(p.ctx) //nolint:errcheck // rollback after commit is a no-op

	for key, value := range entries {
		jsonBytes, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("failed to marshal state key %q: %w", key, err)
		}
		_, err = tx.Exec(p.ctx,
			`INSERT INTO draft_state (key, value)
			 VALUES ($1, $2)
			 ON CONFLICT (key) DO UPDATE SET value = $2, updated_at = NOW()`,
			key, jsonBytes,
		)
		if err != nil {
			return fmt.Errorf("failed to save state key %q: %w", key, err)
		}
	}

	if err := tx.Commit(p.ctx); err != nil {
		return fmt.Errorf("failed to commit state save: %w", err)
	}
	return nil
}
