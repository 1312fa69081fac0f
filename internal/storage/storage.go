package storage

import (
	"encoding/json"
	"fmt"
	"log"
	"time"
)

// Keys shared by the session store and the gateway.
const (
	KeyAccessToken      = "accessToken"
	KeyUserInfo         = "userInfo"
	KeyUserProgress     = "userProgress"
	KeyUserAchievements = "userAchievements"
	KeyStudyHistory     = "studyHistory"
	KeyLocale           = "locale"
)

// opTimeout bounds a single backend round trip. Storage calls are synchronous
// from the caller's point of view.
const opTimeout = 3 * time.Second

// Storage is a durable string-keyed, string-valued store. Implementations are
// safe for concurrent use; concurrent writers race with last-write-wins.
type Storage interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Remove(keys ...string) error
	Close() error
}

// Open returns the backend selected by driver.
func Open(driver, dsn string) (Storage, error) {
	switch driver {
	case "memory":
		return NewMemory(), nil
	case "sqlite":
		return NewSQLite(dsn)
	case "postgres":
		return NewPostgres(dsn)
	case "redis":
		return NewRedis(dsn)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", driver)
	}
}

// GetJSON decodes the value under key into v. Missing, corrupt or non-JSON
// values are reported as absent.
func GetJSON(s Storage, key string, v any) bool {
	raw, ok := s.Get(key)
	if !ok || raw == "" {
		return false
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		log.Printf("[storage] ignoring corrupt value under %q: %v", key, err)
		return false
	}
	return true
}

func SetJSON(s Storage, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %q: %w", key, err)
	}
	return s.Set(key, string(data))
}
