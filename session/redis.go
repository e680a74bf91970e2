package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hupe1980/trademesh/core"
)

// RedisConfig holds Redis connection configuration for the session
// store.
type RedisConfig struct {
	// Addr is the Redis server address (host:port).
	Addr string
	// Password is the Redis password (optional).
	Password string
	// DB is the Redis database number.
	DB int
	// Prefix is the key prefix for all session keys
	// (default: "trademesh:session:").
	Prefix string
	// TTL is the session expiry duration (0 = never expire).
	TTL time.Duration
	// PoolSize is the connection pool size (default: 10).
	PoolSize int
}

// RedisStore implements Store on Redis, suitable for sharing run records
// across processes. Session metadata and state live in a JSON value;
// the message log is an append-only Redis list.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration

	mu     sync.RWMutex
	closed bool
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(cfg RedisConfig) (*RedisStore, error) {
	if cfg.Addr == "" {
		return nil, errors.New("redis address is required")
	}

	poolSize := cfg.PoolSize
	if poolSize <= 0 {
		poolSize = 10
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: poolSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return NewRedisStoreFromClient(client, cfg.Prefix, cfg.TTL), nil
}

// NewRedisStoreFromClient wraps an existing client. Useful for testing
// with miniredis.
func NewRedisStoreFromClient(client *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	if prefix == "" {
		prefix = "trademesh:session:"
	}
	return &RedisStore{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (s *RedisStore) metaKey(id string) string     { return s.prefix + "meta:" + id }
func (s *RedisStore) messagesKey(id string) string { return s.prefix + "messages:" + id }
func (s *RedisStore) indexKey() string             { return s.prefix + "index" }

// redisMeta is the JSON value stored under the meta key: the session
// minus its message log.
type redisMeta struct {
	ID        string         `json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	State     map[string]any `json:"state"`
}

func (s *RedisStore) checkOpen() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrStoreClosed
	}
	return nil
}

// Create stores a new empty session.
func (s *RedisStore) Create(ctx context.Context, id string) (*Session, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	sess := New(id)
	if err := s.saveMeta(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Get loads a session including its message log.
func (s *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	data, err := s.client.Get(ctx, s.metaKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	var meta redisMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("unmarshal session meta: %w", err)
	}

	raw, err := s.client.LRange(ctx, s.messagesKey(id), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("load messages: %w", err)
	}

	messages := make([]core.Message, 0, len(raw))
	for _, d := range raw {
		var msg core.Message
		if err := json.Unmarshal([]byte(d), &msg); err != nil {
			return nil, fmt.Errorf("unmarshal message: %w", err)
		}
		messages = append(messages, msg)
	}

	return &Session{
		ID:        meta.ID,
		CreatedAt: meta.CreatedAt,
		UpdatedAt: meta.UpdatedAt,
		Messages:  messages,
		State:     meta.State,
	}, nil
}

// AppendMessage pushes a message onto the session's log, creating the
// session lazily.
func (s *RedisStore) AppendMessage(ctx context.Context, id string, msg core.Message) error {
	if err := s.checkOpen(); err != nil {
		return err
	}

	if err := s.ensureMeta(ctx, id); err != nil {
		return err
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	if err := s.client.RPush(ctx, s.messagesKey(id), data).Err(); err != nil {
		return fmt.Errorf("append message: %w", err)
	}

	if s.ttl > 0 {
		// TTL refresh failure is non-fatal; next append retries.
		_ = s.client.Expire(ctx, s.messagesKey(id), s.ttl).Err()
	}
	return nil
}

// SetState stores a state value on the session, creating it lazily.
func (s *RedisStore) SetState(ctx context.Context, id string, key string, value any) error {
	if err := s.checkOpen(); err != nil {
		return err
	}

	sess, err := s.loadMeta(ctx, id)
	if err != nil {
		if !errors.Is(err, ErrSessionNotFound) {
			return err
		}
		sess = New(id)
	}

	sess.SetState(key, value)
	return s.saveMeta(ctx, sess)
}

// List returns the indexed session IDs.
func (s *RedisStore) List(ctx context.Context) ([]string, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	ids, err := s.client.SMembers(ctx, s.indexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return ids, nil
}

// Delete removes the session's keys and index entry.
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.checkOpen(); err != nil {
		return err
	}

	pipe := s.client.Pipeline()
	pipe.Del(ctx, s.metaKey(id))
	pipe.Del(ctx, s.messagesKey(id))
	pipe.SRem(ctx, s.indexKey(), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Ping checks the Redis connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	return s.client.Ping(ctx).Err()
}

// Close releases the connection pool.
func (s *RedisStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.client.Close()
}

func (s *RedisStore) loadMeta(ctx context.Context, id string) (*Session, error) {
	data, err := s.client.Get(ctx, s.metaKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	var meta redisMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("unmarshal session meta: %w", err)
	}

	return &Session{
		ID:        meta.ID,
		CreatedAt: meta.CreatedAt,
		UpdatedAt: meta.UpdatedAt,
		State:     meta.State,
	}, nil
}

func (s *RedisStore) saveMeta(ctx context.Context, sess *Session) error {
	data, err := json.Marshal(redisMeta{
		ID:        sess.ID,
		CreatedAt: sess.CreatedAt,
		UpdatedAt: sess.UpdatedAt,
		State:     sess.State,
	})
	if err != nil {
		return fmt.Errorf("marshal session meta: %w", err)
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, s.metaKey(sess.ID), data, s.ttl)
	pipe.SAdd(ctx, s.indexKey(), sess.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// ensureMeta creates the meta record when the session does not exist
// yet.
func (s *RedisStore) ensureMeta(ctx context.Context, id string) error {
	exists, err := s.client.Exists(ctx, s.metaKey(id)).Result()
	if err != nil {
		return fmt.Errorf("check session: %w", err)
	}
	if exists > 0 {
		return nil
	}
	return s.saveMeta(ctx, New(id))
}
