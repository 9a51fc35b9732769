package sequence

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"sync/atomic"

	"github.com/redis/go-redis/v9"
)

// Source hands out increasing invoice numbers, starting at 1.
// Implementations are safe for concurrent use.
type Source interface {
	Next(ctx context.Context) (int64, error)
}

// Memory is a process-local counter
type Memory struct {
	n atomic.Int64
}

// NewMemory returns a counter whose first Next returns start+1
func NewMemory(start int64) *Memory {
	m := &Memory{}
	m.n.Store(start)
	return m
}

func (m *Memory) Next(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return m.n.Add(1), nil
}

var identifier = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// Postgres draws numbers from a database sequence, so every API replica
// shares one counter
type Postgres struct {
	db   *sql.DB
	name string
}

// NewPostgres creates the sequence if it does not exist yet
func NewPostgres(ctx context.Context, db *sql.DB, name string) (*Postgres, error) {
	if !identifier.MatchString(name) {
		return nil, fmt.Errorf("invalid sequence name %q", name)
	}
	if _, err := db.ExecContext(ctx, `CREATE SEQUENCE IF NOT EXISTS `+name+` START WITH 1`); err != nil {
		return nil, fmt.Errorf("failed to create sequence %s: %w", name, err)
	}
	return &Postgres{db: db, name: name}, nil
}

func (p *Postgres) Next(ctx context.Context) (int64, error) {
	var n int64
	if err := p.db.QueryRowContext(ctx, `SELECT nextval($1)`, p.name).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to advance sequence %s: %w", p.name, err)
	}
	return n, nil
}

// Redis uses INCR on a single key
type Redis struct {
	client *redis.Client
	key    string
}

func NewRedis(client *redis.Client, key string) *Redis {
	return &Redis{client: client, key: key}
}

func (r *Redis) Next(ctx context.Context) (int64, error) {
	n, err := r.client.Incr(ctx, r.key).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to increment %s: %w", r.key, err)
	}
	return n, nil
}

// Close releases the underlying client
func (r *Redis) Close() error {
	return r.client.Close()
}
