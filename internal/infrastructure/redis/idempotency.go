package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/rack-inventory/pkg/config"
	"github.com/redis/go-redis/v9"
)

const (
	keyNamespace      = "rack"
	idempotencyPrefix = "idempotency"
)

// ErrNotFound la clave no existe (envuelve redis.Nil para no filtrar el tipo del driver).
var ErrNotFound = errors.New("clave de idempotencia no encontrada")

type cmdable interface {
	Ping(ctx context.Context) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	SetNX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// IdempotencyStore guarda respuestas por Idempotency-Key con TTL.
type IdempotencyStore struct {
	store cmdable
	raw   *redis.Client
	ttl   time.Duration
}

// NewIdempotencyStore conecta a Redis (REDIS_URL o REDIS_ADDR) y verifica con PING.
func NewIdempotencyStore(ctx context.Context, cfg config.RedisConfig) (*IdempotencyStore, error) {
	opts, err := optionsFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	raw := redis.NewClient(opts)
	if err := raw.Ping(ctx).Err(); err != nil {
		_ = raw.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &IdempotencyStore{store: raw, raw: raw, ttl: cfg.IdempotencyTTL}, nil
}

func optionsFromConfig(cfg config.RedisConfig) (*redis.Options, error) {
	if cfg.URL == "" && cfg.Addr == "" {
		return nil, errors.New("redis: se requiere REDIS_URL o REDIS_ADDR")
	}
	if cfg.URL != "" {
		opts, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		if opts.DB == 0 {
			opts.DB = cfg.DB
		}
		return opts, nil
	}
	return &redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}, nil
}

// TTL duración con la que se guardan los registros.
func (s *IdempotencyStore) TTL() time.Duration {
	return s.ttl
}

// Key construye la clave namespaced rack:idempotency:<scope>:<id>.
func (s *IdempotencyStore) Key(scope, id string) string {
	parts := []string{keyNamespace, idempotencyPrefix}
	for _, p := range []string{scope, id} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ":")
}

// Get devuelve el registro guardado o ErrNotFound.
func (s *IdempotencyStore) Get(ctx context.Context, key string) (string, error) {
	v, err := s.store.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redis get: %w", err)
	}
	return v, nil
}

// SetNX reserva la clave solo si no existe. Devuelve false si otro request ganó.
func (s *IdempotencyStore) SetNX(ctx context.Context, key, value string) (bool, error) {
	ok, err := s.store.SetNX(ctx, key, value, s.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx: %w", err)
	}
	return ok, nil
}

// Set sobrescribe el registro con el mismo TTL (respuesta final sobre la reserva).
func (s *IdempotencyStore) Set(ctx context.Context, key, value string) error {
	if err := s.store.Set(ctx, key, value, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Del elimina claves; libera la reserva cuando el handler falla o responde 5xx.
func (s *IdempotencyStore) Del(ctx context.Context, keys ...string) error {
	if err := s.store.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Ping verifica la conexión (health check).
func (s *IdempotencyStore) Ping(ctx context.Context) error {
	return s.store.Ping(ctx).Err()
}

// Close cierra el cliente subyacente.
func (s *IdempotencyStore) Close() error {
	if s.raw == nil {
		return nil
	}
	return s.raw.Close()
}
