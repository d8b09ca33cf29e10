package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const pingTimeout = 5 * time.Second

// Config holds all required info for initializing the redis client
type Config struct {
	Host     string
	Port     string
	Database int
	Username string
	Password string
}

func getDefaultConfig() *Config {
	return &Config{
		Host: "localhost",
		Port: "6379",
	}
}

// RedisDB owns a single redis client shared by the repositories built on it
type RedisDB struct {
	cfg    *Config
	client redis.UniversalClient
}

// NewRedisDB creates an unconnected RedisDB. A nil config means localhost:6379.
func NewRedisDB(cfg *Config) *RedisDB {
	if cfg == nil {
		cfg = getDefaultConfig()
	}
	return &RedisDB{cfg: cfg}
}

// NewRedisDBFromClient wraps an existing client, e.g. one pointed at miniredis
func NewRedisDBFromClient(client redis.UniversalClient) *RedisDB {
	return &RedisDB{client: client}
}

// Connect creates the client and verifies the server answers a ping
func (r *RedisDB) Connect(ctx context.Context) error {
	if r.client != nil {
		return fmt.Errorf("redis already connected")
	}

	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:    []string{fmt.Sprintf("%s:%s", r.cfg.Host, r.cfg.Port)},
		Username: r.cfg.Username,
		Password: r.cfg.Password,
		DB:       r.cfg.Database,
	})

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return fmt.Errorf("ping failed: %w", err)
	}

	r.client = client
	return nil
}

// Client returns the underlying client, nil before Connect
func (r *RedisDB) Client() redis.UniversalClient {
	return r.client
}

// Ping verifies the server is still reachable
func (r *RedisDB) Ping(ctx context.Context) error {
	if r.client == nil {
		return fmt.Errorf("redis not connected")
	}
	return r.client.Ping(ctx).Err()
}

// Close disconnects from the redis server
func (r *RedisDB) Close() error {
	if r.client == nil {
		return nil
	}
	err := r.client.Close()
	r.client = nil
	return err
}

// pipelineKey is the key type for storing a MULTI/EXEC pipeline in context
type pipelineKey struct{}

// WithPipeline returns a new context with the pipeline attached
func WithPipeline(ctx context.Context, pipe redis.Pipeliner) context.Context {
	return context.WithValue(ctx, pipelineKey{}, pipe)
}

// GetPipeline retrieves the pipeline from context if it exists
func GetPipeline(ctx context.Context) (redis.Pipeliner, bool) {
	pipe, ok := ctx.Value(pipelineKey{}).(redis.Pipeliner)
	return pipe, ok
}

// GetCmdable returns the queued pipeline from ctx, or client when there is none.
// Commands issued on a pipeline only run when the transaction commits, so
// their results must not be read inside fn.
func GetCmdable(ctx context.Context, client redis.Cmdable) redis.Cmdable {
	if pipe, ok := GetPipeline(ctx); ok {
		return pipe
	}
	return client
}

// RunInTransaction queues every write made with the ctx passed to fn and
// sends them as one MULTI/EXEC block. A nested call reuses the outer pipeline.
func (r *RedisDB) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := GetPipeline(ctx); ok {
		return fn(ctx)
	}

	if r.client == nil {
		return fmt.Errorf("redis not connected")
	}

	pipe := r.client.TxPipeline()
	if err := fn(WithPipeline(ctx, pipe)); err != nil {
		pipe.Discard()
		return err
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
