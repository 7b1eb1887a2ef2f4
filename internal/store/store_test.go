package store_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	_ "modernc.org/sqlite"

	"mediaorg/internal/store"
	"mediaorg/internal/testsupport"
)

func TestOpenCreatesSchema(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	if st.Path() != cfg.Paths.Database {
		t.Fatalf("expected path %q, got %q", cfg.Paths.Database, st.Path())
	}
	// Reopening an existing database must pass the version check.
	st.Close()
	again, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	again.Close()
}

func TestOpenRejectsSchemaMismatch(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "old.db")
	st, err := store.OpenPath(dbPath)
	if err != nil {
		t.Fatalf("OpenPath: %v", err)
	}
	st.Close()

	raw, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	if _, err := raw.Exec("UPDATE schema_version SET version = 99"); err != nil {
		t.Fatalf("bump version: %v", err)
	}
	raw.Close()

	if _, err := store.OpenPath(dbPath); !errors.Is(err, store.ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}

func TestHashLifecycle(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	if _, ok, err := st.CheckHash(ctx, "abc"); err != nil || ok {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}
	testsupport.MustAddHash(t, st, "abc", "/library/a.jpg")
	testsupport.MustAddHash(t, st, "abc", "/library/b.jpg")
	testsupport.MustAddHash(t, st, "def", "/library/c.jpg")

	path, ok, err := st.CheckHash(ctx, "abc")
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if path != "/library/b.jpg" {
		t.Fatalf("expected latest path, got %q", path)
	}

	if err := st.RemoveHash(ctx, "abc"); err != nil {
		t.Fatalf("RemoveHash: %v", err)
	}
	entries, err := st.Hashes(ctx)
	if err != nil {
		t.Fatalf("Hashes: %v", err)
	}
	if len(entries) != 1 || entries[0].Checksum != "def" {
		t.Fatalf("unexpected entries %#v", entries)
	}

	n, err := st.RemoveHashByPath(ctx, "/library/c.jpg")
	if err != nil || n != 1 {
		t.Fatalf("RemoveHashByPath n=%d err=%v", n, err)
	}
	if err := st.AddHash(ctx, " ", "/x"); err == nil {
		t.Fatal("expected error for empty checksum")
	}
}

func TestResetHashes(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	testsupport.MustAddHash(t, st, "a", "/a")
	testsupport.MustAddHash(t, st, "b", "/b")
	if err := st.ResetHashes(context.Background()); err != nil {
		t.Fatalf("ResetHashes: %v", err)
	}
	entries, err := st.Hashes(context.Background())
	if err != nil {
		t.Fatalf("Hashes: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty table, got %d", len(entries))
	}
}

func TestPluginEntriesAreScopedPerPlugin(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	if err := st.PutPluginEntry(ctx, "googlephotos", "/a.jpg", `{"album":"x"}`); err != nil {
		t.Fatalf("PutPluginEntry: %v", err)
	}
	if err := st.PutPluginEntry(ctx, "other", "/a.jpg", "v"); err != nil {
		t.Fatalf("PutPluginEntry: %v", err)
	}
	entries, err := st.PluginEntries(ctx, "googlephotos")
	if err != nil {
		t.Fatalf("PluginEntries: %v", err)
	}
	if len(entries) != 1 || entries[0].Value != `{"album":"x"}` {
		t.Fatalf("unexpected entries %#v", entries)
	}
	if err := st.PutPluginEntry(ctx, "", "k", "v"); err == nil {
		t.Fatal("expected error for empty plugin name")
	}
}

func TestTakePluginEntryClaimsOnce(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	if err := st.PutPluginEntry(ctx, "googlephotos", "/a.jpg", "payload"); err != nil {
		t.Fatalf("PutPluginEntry: %v", err)
	}

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		claims int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			entry, ok, err := st.TakePluginEntry(ctx, "googlephotos", "/a.jpg")
			if err != nil {
				t.Errorf("TakePluginEntry: %v", err)
				return
			}
			if ok {
				if entry.Value != "payload" {
					t.Errorf("unexpected value %q", entry.Value)
				}
				mu.Lock()
				claims++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if claims != 1 {
		t.Fatalf("expected exactly one claim, got %d", claims)
	}
	entries, err := st.PluginEntries(ctx, "googlephotos")
	if err != nil {
		t.Fatalf("PluginEntries: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected queue drained, got %d", len(entries))
	}
}

func TestNearestPlaceWithinRadius(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	sunnyvale := store.Place{Latitude: 37.3688, Longitude: -122.0363, Fields: map[string]string{"city": "Sunnyvale"}}
	sf := store.Place{Latitude: 37.7749, Longitude: -122.4194, Fields: map[string]string{"city": "San Francisco"}}
	for _, p := range []store.Place{sunnyvale, sf} {
		if err := st.SavePlace(ctx, p); err != nil {
			t.Fatalf("SavePlace: %v", err)
		}
	}

	got, ok, err := st.NearestPlace(ctx, 37.37, -122.04, 3)
	if err != nil || !ok {
		t.Fatalf("expected hit, ok=%v err=%v", ok, err)
	}
	if got.Fields["city"] != "Sunnyvale" {
		t.Fatalf("expected Sunnyvale, got %#v", got.Fields)
	}

	if _, ok, err := st.NearestPlace(ctx, 40.7128, -74.0060, 3); err != nil || ok {
		t.Fatalf("expected miss for New York, ok=%v err=%v", ok, err)
	}
}

func TestDistance(t *testing.T) {
	d := store.Distance(37.3688, -122.0363, 37.7749, -122.4194)
	if d < 50 || d > 60 {
		t.Fatalf("expected roughly 56km, got %.2f", d)
	}
	if store.Distance(1, 1, 1, 1) != 0 {
		t.Fatal("expected zero distance for identical points")
	}
}

func TestReplaceHashes(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	testsupport.MustAddHash(t, st, "stale", "/old")
	ctx := context.Background()

	err := st.ReplaceHashes(ctx, []store.HashEntry{
		{Checksum: "a", Path: "/a"},
		{Checksum: "", Path: "/skipped"},
		{Checksum: "b", Path: "/b"},
	})
	if err != nil {
		t.Fatalf("ReplaceHashes: %v", err)
	}
	entries, err := st.Hashes(ctx)
	if err != nil {
		t.Fatalf("Hashes: %v", err)
	}
	if len(entries) != 2 || entries[0].Path != "/a" || entries[1].Path != "/b" {
		t.Fatalf("unexpected entries %#v", entries)
	}
}
