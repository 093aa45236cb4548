// Package prefs persists per-caller dashboard filter preferences.
package prefs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/unclebandit/attestation-tracker/internal/dashboard"
)

// Prefs is what survives a dashboard instance being rebuilt. Selection is
// never stored.
type Prefs struct {
	Query    dashboard.Query `json:"query"`
	TeamOnly bool            `json:"team_only"`
}

type Store interface {
	Load(ctx context.Context, email string, campaignID int64) (Prefs, bool, error)
	Save(ctx context.Context, email string, campaignID int64, p Prefs) error
}

func key(email string, campaignID int64) string {
	return "attestation:prefs:" + strings.ToLower(email) + ":" + strconv.FormatInt(campaignID, 10)
}

// RedisStore keeps preferences in redis with a sliding TTL.
type RedisStore struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisStore(addr, password string, db int) *RedisStore {
	return &RedisStore{
		Client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
		TTL: 30 * 24 * time.Hour,
	}
}

// Ping checks connectivity.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.Client.Ping(ctx).Err()
}

func (s *RedisStore) Load(ctx context.Context, email string, campaignID int64) (Prefs, bool, error) {
	raw, err := s.Client.Get(ctx, key(email, campaignID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Prefs{}, false, nil
	}
	if err != nil {
		return Prefs{}, false, fmt.Errorf("load prefs: %w", err)
	}
	var p Prefs
	if err := json.Unmarshal(raw, &p); err != nil {
		return Prefs{}, false, fmt.Errorf("decode prefs: %w", err)
	}
	return p, true, nil
}

func (s *RedisStore) Save(ctx context.Context, email string, campaignID int64, p Prefs) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode prefs: %w", err)
	}
	if err := s.Client.Set(ctx, key(email, campaignID), raw, s.TTL).Err(); err != nil {
		return fmt.Errorf("save prefs: %w", err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.Client.Close()
}

// MemoryStore is used when no redis is configured.
type MemoryStore struct {
	mu    sync.Mutex
	prefs map[string]Prefs
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{prefs: map[string]Prefs{}}
}

func (s *MemoryStore) Load(_ context.Context, email string, campaignID int64) (Prefs, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.prefs[key(email, campaignID)]
	return p, ok, nil
}

func (s *MemoryStore) Save(_ context.Context, email string, campaignID int64, p Prefs) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prefs[key(email, campaignID)] = p
	return nil
}

var (
	_ Store = (*RedisStore)(nil)
	_ Store = (*MemoryStore)(nil)
)
