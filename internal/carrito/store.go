package carrito

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Store keeps one cart per user between requests.
type Store interface {
	// Get returns the user's cart, or an empty one.
	Get(ctx context.Context, usuarioID uuid.UUID) (*Carrito, error)
	Save(ctx context.Context, usuarioID uuid.UUID, c *Carrito) error
	Delete(ctx context.Context, usuarioID uuid.UUID) error
}

// ── Memory ────────────────────────────────────────────────────────────────────

// MemoryStore is a process-local Store, used in tests and when Redis is absent.
type MemoryStore struct {
	mu    sync.Mutex
	carts map[uuid.UUID]*Carrito
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{carts: make(map[uuid.UUID]*Carrito)}
}

func (s *MemoryStore) Get(_ context.Context, usuarioID uuid.UUID) (*Carrito, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.carts[usuarioID]; ok {
		return c.Clone(), nil
	}
	return &Carrito{}, nil
}

func (s *MemoryStore) Save(_ context.Context, usuarioID uuid.UUID, c *Carrito) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[usuarioID] = c.Clone()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, usuarioID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, usuarioID)
	return nil
}

// ── Redis ─────────────────────────────────────────────────────────────────────

// RedisStore keeps carts as JSON under carrito:<usuario_id>. Every save
// renews the TTL, so abandoned carts expire on their own.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func redisKey(usuarioID uuid.UUID) string { return "carrito:" + usuarioID.String() }

func (s *RedisStore) Get(ctx context.Context, usuarioID uuid.UUID) (*Carrito, error) {
	raw, err := s.rdb.Get(ctx, redisKey(usuarioID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return &Carrito{}, nil
	}
	if err != nil {
		return nil, err
	}
	var c Carrito
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *RedisStore) Save(ctx context.Context, usuarioID uuid.UUID, c *Carrito) error {
	if c.Vacio() {
		return s.Delete(ctx, usuarioID)
	}
	payload, err := json.Marshal(c)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, redisKey(usuarioID), payload, s.ttl).Err()
}

func (s *RedisStore) Delete(ctx context.Context, usuarioID uuid.UUID) error {
	return s.rdb.Del(ctx, redisKey(usuarioID)).Err()
}
