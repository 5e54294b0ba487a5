package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func testSnapshots(t *testing.T, ttl time.Duration) (*Snapshots, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewSnapshots(client, ttl), mr
}

func TestSnapshotsRoundTrip(t *testing.T) {
	snaps, _ := testSnapshots(t, time.Minute)
	ctx := context.Background()

	if _, ok := snaps.Get(ctx, "dashboard"); ok {
		t.Fatal("expected a miss on an empty cache")
	}
	snaps.Set(ctx, "dashboard", []byte(`{"projects":[]}`))
	payload, ok := snaps.Get(ctx, "dashboard")
	if !ok || string(payload) != `{"projects":[]}` {
		t.Fatalf("unexpected cache payload: %q ok=%v", payload, ok)
	}
}

func TestSnapshotsExpire(t *testing.T) {
	snaps, mr := testSnapshots(t, time.Second)
	ctx := context.Background()

	snaps.Set(ctx, "dashboard", []byte("stale"))
	mr.FastForward(2 * time.Second)
	if _, ok := snaps.Get(ctx, "dashboard"); ok {
		t.Fatal("expected the snapshot to expire")
	}
}

func TestSnapshotsInvalidate(t *testing.T) {
	snaps, _ := testSnapshots(t, time.Minute)
	ctx := context.Background()

	snaps.Set(ctx, "dashboard", []byte("x"))
	snaps.Invalidate(ctx, "dashboard")
	if _, ok := snaps.Get(ctx, "dashboard"); ok {
		t.Fatal("expected the snapshot to be gone")
	}
}

func TestSnapshotsNilClient(t *testing.T) {
	var snaps *Snapshots
	ctx := context.Background()

	snaps.Set(ctx, "dashboard", []byte("x"))
	if _, ok := snaps.Get(ctx, "dashboard"); ok {
		t.Fatal("a nil cache must always miss")
	}
}
