package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/matzehuels/ladderkit/pkg/ladder/edit"
	"github.com/matzehuels/ladderkit/pkg/ladder/laddertest"
)

func testStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	s, err := New(laddertest.Chain(t, "a"), time.Hour, edit.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Set(ctx, s); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := store.Get(ctx, s.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil {
		t.Fatal("stored session not found")
	}
	if diff := cmp.Diff(s.Snapshot(), got.Snapshot(), cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("rung (-want +got):\n%s", diff)
	}

	if err := store.Delete(ctx, s.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got, _ := store.Get(ctx, s.ID); got != nil {
		t.Error("session still present after Delete")
	}

	missing, err := store.Get(ctx, "does-not-exist")
	if err != nil || missing != nil {
		t.Errorf("Get(missing) = %v, %v", missing, err)
	}
	if _, err := store.Get(ctx, "../escape"); err == nil {
		t.Error("Get accepted an unsafe id")
	}
}

func TestMemoryStore(t *testing.T) {
	testStore(t, NewMemoryStore())
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	s, _ := New(nil, time.Hour, edit.Options{})
	s.ExpiresAt = time.Now().Add(-time.Minute)
	store.Set(ctx, s)

	if got, _ := store.Get(ctx, s.ID); got != nil {
		t.Error("expired session returned")
	}
	if err := store.Cleanup(ctx); err != nil {
		t.Fatal(err)
	}
	if store.Len() != 0 {
		t.Errorf("Len after Cleanup = %d", store.Len())
	}
}

func TestFileStore(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	testStore(t, store)
}

func TestFileStoreCleanup(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	live, _ := New(nil, time.Hour, edit.Options{})
	dead, _ := New(nil, time.Hour, edit.Options{})
	dead.ExpiresAt = time.Now().Add(-time.Minute)
	store.Set(ctx, live)
	store.Set(ctx, dead)

	if err := store.Cleanup(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, dead.ID+".json")); !os.IsNotExist(err) {
		t.Error("expired session file kept")
	}
	if _, err := os.Stat(filepath.Join(dir, live.ID+".json")); err != nil {
		t.Errorf("live session file: %v", err)
	}
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("LADDERKIT_TEST_REDIS")
	if addr == "" {
		t.Skip("LADDERKIT_TEST_REDIS not set")
	}
	store, err := NewRedisStore(context.Background(), RedisConfig{Addr: addr, Prefix: "ladderkit:test:"})
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	testStore(t, store)
}
