package draft

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/go-cmp/cmp"

	"curriculum/api/internal/curriculum"
)

func setupTestRedis(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	s := miniredis.RunT(t)
	store, err := NewRedisStore("redis://"+s.Addr(), ttl)
	if err != nil {
		t.Fatalf("failed to create redis store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store, s
}

func sampleTree() curriculum.Tree {
	return curriculum.Tree{{
		ID:    "ses_1",
		Title: "Session 1",
		Modules: []*curriculum.Module{{
			ID:    "mod_1",
			Title: "Module 1",
			Units: []*curriculum.Unit{},
		}},
	}}
}

func TestNewRedisStore(t *testing.T) {
	store, _ := setupTestRedis(t, time.Hour)
	if err := store.Ping(context.Background()); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
	if _, err := NewRedisStore("not-a-url", time.Hour); err == nil {
		t.Error("expected parse error for invalid url")
	}
}

func TestSaveAndLoad(t *testing.T) {
	store, _ := setupTestRedis(t, time.Hour)
	ctx := context.Background()

	in := Draft{
		ProjectID:   "prj_1",
		BaseVersion: 3,
		Sessions:    sampleTree(),
		Strategy:    curriculum.Strategy{TargetAudience: "Interns"},
	}
	if err := store.Save(ctx, in); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	out, err := store.Load(ctx, "prj_1")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if out.SavedAt.IsZero() {
		t.Error("SavedAt should be stamped on save")
	}
	out.SavedAt = time.Time{}
	if diff := cmp.Diff(in, out); diff != "" {
		t.Errorf("draft mismatch (-want +got):\n%s", diff)
	}
}

func TestDraftExpires(t *testing.T) {
	store, s := setupTestRedis(t, time.Minute)
	ctx := context.Background()

	if err := store.Save(ctx, Draft{ProjectID: "prj_1", Sessions: sampleTree()}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	s.FastForward(2 * time.Minute)

	if _, err := store.Load(ctx, "prj_1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load() error = %v, want ErrNotFound", err)
	}
}

func TestDiscard(t *testing.T) {
	store, _ := setupTestRedis(t, time.Hour)
	ctx := context.Background()

	if err := store.Save(ctx, Draft{ProjectID: "prj_1"}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := store.Save(ctx, Draft{ProjectID: "prj_2"}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := store.Discard(ctx, "prj_1"); err != nil {
		t.Fatalf("Discard failed: %v", err)
	}
	if _, err := store.Load(ctx, "prj_1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load() after discard error = %v, want ErrNotFound", err)
	}
	if d, err := store.Load(ctx, "prj_2"); err != nil || d.Sessions == nil {
		t.Errorf("prj_2 should survive: %+v, %v", d, err)
	}
	if err := store.Discard(ctx, "missing"); err != nil {
		t.Errorf("Discard of missing draft failed: %v", err)
	}
}

func TestSaveRequiresProjectID(t *testing.T) {
	store, _ := setupTestRedis(t, time.Hour)
	if err := store.Save(context.Background(), Draft{}); err == nil {
		t.Error("expected error for draft without project id")
	}
}
