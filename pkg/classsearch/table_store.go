package classsearch

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

// TableStore keeps department tables between lookups. A store never fails: errors degrade to misses
type TableStore interface {
	Get(ctx context.Context, department string) ([]Row, bool)
	Set(ctx context.Context, department string, rows []Row)
}

type memoryTableStore struct {
	mu     sync.RWMutex
	tables map[string][]Row
}

func NewMemoryTableStore() TableStore {
	return &memoryTableStore{tables: make(map[string][]Row)}
}

func (store *memoryTableStore) Get(_ context.Context, department string) ([]Row, bool) {
	store.mu.RLock()
	defer store.mu.RUnlock()
	rows, ok := store.tables[department]
	return rows, ok
}

func (store *memoryTableStore) Set(_ context.Context, department string, rows []Row) {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.tables[department] = rows
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// RedisTableStore shares department tables between processes. The first Redis error disables the store
type RedisTableStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	logger zerolog.Logger

	mu       sync.RWMutex
	disabled bool
}

// NewRedisTableStore connects to Redis. Keys are scoped by term so tables of different terms never mix.
// An unreachable server yields a disabled store that always misses
func NewRedisTableStore(config RedisConfig, term string, logger zerolog.Logger) *RedisTableStore {
	store := &RedisTableStore{
		prefix: "classscheduler:table:" + term + ":",
		ttl:    config.TTL,
		logger: logger.With().Str("component", "table_store").Logger(),
	}

	client := redis.NewClient(&redis.Options{
		Addr:         config.Addr,
		Password:     config.Password,
		DB:           config.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn().Err(err).Msg("Redis table store unavailable, running without shared cache")
		_ = client.Close()
		store.disabled = true
		return store
	}

	logger.Info().Str("addr", config.Addr).Msg("Redis table store initialized")
	store.client = client
	return store
}

func (store *RedisTableStore) Close() error {
	if store.client != nil {
		return store.client.Close()
	}
	return nil
}

func (store *RedisTableStore) IsAvailable() bool {
	store.mu.RLock()
	defer store.mu.RUnlock()
	return !store.disabled && store.client != nil
}

func (store *RedisTableStore) Get(ctx context.Context, department string) ([]Row, bool) {
	if !store.IsAvailable() {
		return nil, false
	}

	data, err := store.client.Get(ctx, store.prefix+department).Bytes()
	if err == redis.Nil {
		return nil, false
	} else if err != nil {
		store.handleError(err, "get")
		return nil, false
	}

	var rows []Row
	if err := json.Unmarshal(data, &rows); err != nil {
		store.logger.Debug().Err(err).Str("department", department).Msg("failed to unmarshal cached table")
		return nil, false
	}
	return lo.Ternary(rows == nil, []Row{}, rows), true
}

func (store *RedisTableStore) Set(ctx context.Context, department string, rows []Row) {
	if !store.IsAvailable() {
		return
	}

	data, err := json.Marshal(rows)
	if err != nil {
		store.logger.Debug().Err(err).Str("department", department).Msg("failed to marshal table")
		return
	}
	if err := store.client.Set(ctx, store.prefix+department, data, store.ttl).Err(); err != nil {
		store.handleError(err, "set")
	}
}

func (store *RedisTableStore) handleError(err error, operation string) {
	store.logger.Debug().Err(err).Str("operation", operation).Msg("table store operation failed")

	store.mu.Lock()
	store.disabled = true
	store.mu.Unlock()
	store.logger.Warn().Msg("disabling table store due to Redis error")
}
