package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fittrack/web/pkg"

	"github.com/coocood/freecache"
)

const memoryStoreSize = 16 * 1024 * 1024

// MemoryStore keeps credentials in process memory. Used in development and tests,
// sessions do not survive a restart.
type MemoryStore struct {
	cache          *freecache.Cache
	ttl            time.Duration
	RandStringFunc func(s int) (string, error)
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return newMemoryStore(freecache.NewCache(memoryStoreSize), ttl)
}

func newMemoryStore(cache *freecache.Cache, ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		cache:          cache,
		ttl:            ttl,
		RandStringFunc: pkg.GenerateRandomString,
	}
}

func (s *MemoryStore) Save(_ context.Context, cred *Credential) (string, error) {
	if cred.Empty() {
		return "", ErrNoCredential
	}

	sid, err := s.RandStringFunc(sidLength)
	if err != nil {
		return "", fmt.Errorf("generate session id: %w", err)
	}

	credJson, err := json.Marshal(cred)
	if err != nil {
		return "", fmt.Errorf("marshal credential: %w", err)
	}

	if err := s.cache.Set([]byte(sid), credJson, int(s.ttl.Seconds())); err != nil {
		return "", fmt.Errorf("store credential: %w", err)
	}

	return sid, nil
}

func (s *MemoryStore) Credential(_ context.Context, sid string) (*Credential, error) {
	credJson, err := s.cache.Get([]byte(sid))
	if err != nil {
		if errors.Is(err, freecache.ErrNotFound) {
			return nil, ErrNoCredential
		}
		return nil, fmt.Errorf("get credential: %w", err)
	}

	var cred Credential
	if err := json.Unmarshal(credJson, &cred); err != nil {
		return nil, fmt.Errorf("unmarshal credential: %w", err)
	}

	return &cred, nil
}

func (s *MemoryStore) Clear(_ context.Context, sid string) error {
	s.cache.Del([]byte(sid))
	return nil
}

func (s *MemoryStore) Len() int64 {
	return s.cache.EntryCount()
}
