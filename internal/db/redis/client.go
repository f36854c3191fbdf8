package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/facilitydex/internal/db"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

// ErrModuleMissing reports a server without the search or JSON capability.
var ErrModuleMissing = errors.New("redis: search and JSON modules are required")

const (
	clientName   = "facilitydex"
	probeKey     = "facilitydex:probe"
	minPrefix    = "1"
	pollInterval = 100 * time.Millisecond
)

// Config holds connection parameters for a Redis store.
type Config struct {
	Addrs    []string
	Username string
	Password string
	DB       int
}

// Store implements db.Store over rueidis. The server must be Redis 8+ or
// Redis Stack: indexes are FT.CREATE ON JSON and queries are FT.AGGREGATE.
type Store struct {
	client rueidis.Client
}

// NewStore creates a Redis store via rueidis.
func NewStore(cfg Config) (*Store, error) {
	if len(cfg.Addrs) == 0 {
		return nil, errors.New("addrs is required")
	}

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  cfg.Addrs,
		Username:     cfg.Username,
		Password:     cfg.Password,
		SelectDB:     cfg.DB,
		ClientName:   clientName,
		DisableCache: true,
		AlwaysRESP2:  true, // FT.AGGREGATE rows are parsed as flat RESP2 arrays
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return &Store{client: client}, nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.do(ctx, s.b().Ping().Build()).Error(); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Close shuts down the client.
func (s *Store) Close() {
	s.client.Close()
}

// WaitForReady polls Ping until the server answers, then checks that it can
// serve JSON indexes and lowers MINPREFIX so one-letter prefixes expand.
// A missing module fails at once instead of waiting out the timeout.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for database: %w", ctx.Err())
		case <-ticker.C:
			if err := s.Ping(ctx); err != nil {
				continue
			}
			if err := s.checkModules(ctx); err != nil {
				return err
			}
			return s.configureSearch(ctx)
		}
	}
}

// checkModules issues one harmless command per required module.
func (s *Store) checkModules(ctx context.Context) error {
	probes := []rueidis.Completed{
		s.b().FtList().Build(),
		s.b().JsonType().Key(probeKey).Build(),
	}
	for _, cmd := range probes {
		err := s.do(ctx, cmd).Error()
		if err == nil || rueidis.IsRedisNil(err) {
			continue
		}
		if isRedisErr(err, "unknown command") {
			return fmt.Errorf("%w: %s", ErrModuleMissing, cmd.Commands()[0])
		}
		return fmt.Errorf("probe %s: %w", cmd.Commands()[0], err)
	}
	return nil
}

// configureSearch applies server-wide search settings the query builder
// depends on.
func (s *Store) configureSearch(ctx context.Context) error {
	cmd := s.b().Arbitrary("FT.CONFIG", "SET").Args("MINPREFIX", minPrefix).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("set MINPREFIX: %w", err)
	}
	return nil
}

func (s *Store) do(ctx context.Context, cmd rueidis.Completed) rueidis.RedisResult {
	return s.client.Do(ctx, cmd)
}

func (s *Store) b() rueidis.Builder {
	return s.client.B()
}

// isRedisErr checks if err is a Redis server error containing substr (case-insensitive).
func isRedisErr(err error, substr string) bool {
	re, ok := rueidis.IsRedisErr(err)
	if !ok {
		return false
	}
	return strings.Contains(strings.ToLower(re.Error()), strings.ToLower(substr))
}
