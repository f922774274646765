package session

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fittrack/web/pkg"

	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/blake2b"
)

const (
	sessionKeyPrefix = "fittrack-session||"
	sessionsSetKey   = "fittrack-sessions"
	sidLength        = 35
)

type RedisStore struct {
	redisClient *redis.Client
	ttl         time.Duration
	// ability to inject random string generator func for session ids (for unit and dev testing)
	RandStringFunc func(s int) (string, error)
}

func NewRedisStore(ttl time.Duration, redisClient *redis.Client) *RedisStore {
	return &RedisStore{
		ttl:            ttl,
		redisClient:    redisClient,
		RandStringFunc: pkg.GenerateRandomString,
	}
}

// sessionKey never stores the raw session id in redis.
func sessionKey(sid string) string {
	sum := blake2b.Sum256([]byte(sid))
	return sessionKeyPrefix + hex.EncodeToString(sum[:])
}

func (s *RedisStore) Save(ctx context.Context, cred *Credential) (string, error) {
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

	key := sessionKey(sid)
	if err := s.redisClient.Set(ctx, key, string(credJson), s.ttl).Err(); err != nil {
		return "", fmt.Errorf("store credential: %w", err)
	}

	// add key to the set of sessions, used by the cleaner
	if err := s.redisClient.SAdd(ctx, sessionsSetKey, key).Err(); err != nil {
		// an unregistered key would never be cleaned, drop it now
		if delErr := s.redisClient.Del(ctx, key).Err(); delErr != nil {
			log.Errorf("session store, remove unregistered session: %s", delErr)
		}
		return "", fmt.Errorf("register session: %w", err)
	}

	return sid, nil
}

func (s *RedisStore) Credential(ctx context.Context, sid string) (*Credential, error) {
	cmd := s.redisClient.Get(ctx, sessionKey(sid))
	if err := cmd.Err(); err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNoCredential
		}
		return nil, fmt.Errorf("get credential: %w", err)
	}

	var cred Credential
	if err := json.Unmarshal([]byte(cmd.Val()), &cred); err != nil {
		return nil, fmt.Errorf("unmarshal credential: %w", err)
	}
	if cred.Empty() {
		return nil, ErrNoCredential
	}

	return &cred, nil
}

func (s *RedisStore) Clear(ctx context.Context, sid string) error {
	key := sessionKey(sid)
	if err := s.redisClient.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("delete credential: %w", err)
	}

	// remove key from the set of sessions
	if err := s.redisClient.SRem(ctx, sessionsSetKey, key).Err(); err != nil {
		return fmt.Errorf("unregister session: %w", err)
	}

	return nil
}

// ScanAndClean will run through all sessions, and remove the ones that expired
// or are older than the TTL. Returns the number of removed sessions.
func (s *RedisStore) ScanAndClean(ctx context.Context) int {
	cmd := s.redisClient.SMembers(ctx, sessionsSetKey)
	if err := cmd.Err(); err != nil {
		log.Errorf("!!! session store, scan and clean, get sessions: %s", err)
		return 0
	}

	keys := cmd.Val()
	if len(keys) == 0 {
		log.Debugln("=> session store, scan and clean abort, no sessions")
		return 0
	}

	log.Debugf("=> session store, scan and clean [%d sessions] start ...", len(keys))
	var toRemove []string
	for _, key := range keys {
		getCmd := s.redisClient.Get(ctx, key)
		if err := getCmd.Err(); err != nil {
			if errors.Is(err, redis.Nil) {
				// expired by redis already, only the set entry is left
				toRemove = append(toRemove, key)
				continue
			}
			log.Errorf("=> session store, scan and clean key %s: %s", key, err)
			continue
		}

		var cred Credential
		if err := json.Unmarshal([]byte(getCmd.Val()), &cred); err != nil {
			log.Errorf("=> session store, scan and clean key %s: %s", key, err)
			toRemove = append(toRemove, key)
			continue
		}

		if time.Since(cred.CreatedAt) > s.ttl {
			toRemove = append(toRemove, key)
		}
	}

	removed := 0
	for _, key := range toRemove {
		if err := s.redisClient.Del(ctx, key).Err(); err != nil {
			log.Errorf("=> session store, clean key %s: %s", key, err)
			continue
		}
		if err := s.redisClient.SRem(ctx, sessionsSetKey, key).Err(); err != nil {
			log.Errorf("=> session store, clean key %s: %s", key, err)
			continue
		}
		removed++
	}

	return removed
}
