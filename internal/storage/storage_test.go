package storage

import (
	"path/filepath"
	"testing"
)

func backends(t *testing.T) map[string]Storage {
	t.Helper()

	sqlite, err := NewSQLite(filepath.Join(t.TempDir(), "kv.db"))
	if err != nil {
		t.Fatalf("NewSQLite() failed: %v", err)
	}
	t.Cleanup(func() { sqlite.Close() })

	return map[string]Storage{
		"memory": NewMemory(),
		"sqlite": sqlite,
	}
}

func TestStorageRoundTrip(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if _, ok := s.Get(KeyAccessToken); ok {
				t.Fatal("empty storage should report the key as absent")
			}

			if err := s.Set(KeyAccessToken, "first"); err != nil {
				t.Fatalf("Set() failed: %v", err)
			}
			if err := s.Set(KeyAccessToken, "second"); err != nil {
				t.Fatalf("Set() overwrite failed: %v", err)
			}
			if got, ok := s.Get(KeyAccessToken); !ok || got != "second" {
				t.Fatalf("Get() = %q, %v; want last write", got, ok)
			}

			if err := s.Set(KeyLocale, "ru"); err != nil {
				t.Fatalf("Set() failed: %v", err)
			}
			if err := s.Remove(KeyAccessToken, KeyLocale, "missing"); err != nil {
				t.Fatalf("Remove() failed: %v", err)
			}
			if _, ok := s.Get(KeyAccessToken); ok {
				t.Error("token should be gone after Remove")
			}
			if _, ok := s.Get(KeyLocale); ok {
				t.Error("locale should be gone after Remove")
			}
		})
	}
}

func TestGetJSONTreatsCorruptValuesAsAbsent(t *testing.T) {
	s := NewMemory()
	s.Set(KeyUserInfo, "{not json")

	var v map[string]any
	if GetJSON(s, KeyUserInfo, &v) {
		t.Fatal("corrupt value must be reported as absent")
	}

	if err := SetJSON(s, KeyUserInfo, map[string]int{"points": 7}); err != nil {
		t.Fatalf("SetJSON() failed: %v", err)
	}
	var got map[string]int
	if !GetJSON(s, KeyUserInfo, &got) || got["points"] != 7 {
		t.Fatalf("GetJSON() = %v", got)
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	if _, err := Open("etcd", ""); err == nil {
		t.Fatal("expected an error for an unknown driver")
	}
}
