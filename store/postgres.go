package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pliqo-backend/config"
)

// Postgres keeps the whole document as one JSONB row and rewrites it on
// every mutation, matching the read-before-use / write-after-mutate
// contract. A process-local mutex serializes writers; the deployment
// runs a single instance, like the store it replaces.
type Postgres struct {
	mu   sync.Mutex
	pool *pgxpool.Pool
}

func OpenPostgres(ctx context.Context, cfg *config.Config) (*Postgres, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBSSLMode)

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	s := &Postgres{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// migrate bootstraps the schema and applies document defaults exactly
// once, at open time.
func (s *Postgres) migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS app_state (
            id INTEGER PRIMARY KEY CHECK (id = 1),
            doc JSONB NOT NULL,
            updated_at TIMESTAMP DEFAULT NOW()
        );
    `)
	if err != nil {
		return fmt.Errorf("failed to create app_state table: %w", err)
	}

	d, err := s.load(ctx)
	if err != nil {
		return err
	}
	applyDefaults(d)
	return s.save(ctx, d)
}

func (s *Postgres) load(ctx context.Context) (*Data, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT doc FROM app_state WHERE id = 1`).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		// First start: empty document.
		return &Data{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load app_state document: %w", err)
	}
	d := &Data{}
	if err := json.Unmarshal(raw, d); err != nil {
		return nil, fmt.Errorf("corrupt app_state document: %w", err)
	}
	return d, nil
}

func (s *Postgres) save(ctx context.Context, d *Data) error {
	raw, err := json.Marshal(d)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `
        INSERT INTO app_state (id, doc, updated_at) VALUES (1, $1, NOW())
        ON CONFLICT (id) DO UPDATE SET doc = EXCLUDED.doc, updated_at = NOW()
    `, raw)
	return err
}

func (s *Postgres) Read(ctx context.Context) (*Data, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

func (s *Postgres) Update(ctx context.Context, fn func(*Data) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, err := s.load(ctx)
	if err != nil {
		return err
	}
	if err := fn(d); err != nil {
		return err
	}
	return s.save(ctx, d)
}

func (s *Postgres) Close() {
	s.pool.Close()
}
