package visitor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"

	"github.com/angelmondragon/phoneshop-backend/pkg/enums"
	redisclient "github.com/angelmondragon/phoneshop-backend/pkg/redis"
)

// Store loads and persists visitor session state.
type Store interface {
	Load(ctx context.Context, sessionID string) (*State, error)
	Save(ctx context.Context, state *State) error
	Delete(ctx context.Context, sessionID string) error
}

type kvStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

type sessionKeyer interface {
	VisitorSessionKey(sessionID string) string
}

// RedisStore keeps each session as one JSON document with a sliding TTL.
type RedisStore struct {
	kv    kvStore
	keyer sessionKeyer
	ttl   time.Duration
}

// NewRedisStore constructs a session store backed by Redis.
func NewRedisStore(client *redisclient.Client, ttl time.Duration) (*RedisStore, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("session ttl must be positive")
	}
	return &RedisStore{kv: client, keyer: client, ttl: ttl}, nil
}

// NewSessionID mints an opaque session identifier.
func NewSessionID() string {
	return uuid.NewString()
}

// ValidSessionID reports whether id looks like a session id minted by NewSessionID.
func ValidSessionID(id string) bool {
	_, err := uuid.Parse(strings.TrimSpace(id))
	return err == nil
}

// Load returns the stored state, or a fresh empty one when none exists.
func (s *RedisStore) Load(ctx context.Context, sessionID string) (*State, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, fmt.Errorf("session id is required")
	}
	raw, err := s.kv.Get(ctx, s.keyer.VisitorSessionKey(sessionID))
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return NewState(sessionID), nil
		}
		return nil, fmt.Errorf("load session: %w", err)
	}

	state := NewState(sessionID)
	if err := json.Unmarshal([]byte(raw), state); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	state.ID = sessionID
	if state.Cart == nil {
		state.Cart = []CartEntry{}
	}
	if !state.PendingState.IsValid() {
		state.PendingState = enums.PendingIntentStateIdle
	}
	return state, nil
}

func (s *RedisStore) Save(ctx context.Context, state *State) error {
	if state == nil || strings.TrimSpace(state.ID) == "" {
		return fmt.Errorf("session state with id is required")
	}
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.kv.Set(ctx, s.keyer.VisitorSessionKey(state.ID), string(payload), s.ttl); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return nil
	}
	return s.kv.Del(ctx, s.keyer.VisitorSessionKey(sessionID))
}
