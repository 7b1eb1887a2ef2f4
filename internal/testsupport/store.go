package testsupport

import (
	"context"
	"testing"

	"mediaorg/internal/config"
	"mediaorg/internal/store"
)

// MustOpenStore opens a store.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		st.Close()
	})
	return st
}

// MustAddHash records a checksum mapping or fails the test.
func MustAddHash(t testing.TB, st *store.Store, checksum, path string) {
	t.Helper()

	if err := st.AddHash(context.Background(), checksum, path); err != nil {
		t.Fatalf("store.AddHash: %v", err)
	}
}
