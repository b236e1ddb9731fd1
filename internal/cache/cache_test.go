package cache_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/raysh454/web2api/internal/cache"
	"github.com/raysh454/web2api/internal/synth"
	"github.com/raysh454/web2api/internal/testutil"
)

func openStore(t *testing.T) *cache.Store {
	t.Helper()
	store, err := cache.Open(filepath.Join(t.TempDir(), "nested", "cache.db"), &testutil.DummyLogger{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_GetPut(t *testing.T) {
	t.Parallel()
	store := openStore(t)
	ctx := context.Background()

	if _, ok, err := store.Get(ctx, "missing"); ok || err != nil {
		t.Fatalf("Get(missing) = ok %v, err %v", ok, err)
	}
	if err := store.Put(ctx, "ns", "k", "v1"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := store.Put(ctx, "ns", "k", "v2"); err != nil {
		t.Fatalf("Put overwrite: %v", err)
	}
	v, ok, err := store.Get(ctx, "k")
	if err != nil || !ok || v != "v2" {
		t.Errorf("Get(k) = %q, %v, %v", v, ok, err)
	}
	if n, _ := store.Len(ctx, "ns"); n != 1 {
		t.Errorf("Len(ns) = %d", n)
	}
}

func TestStore_EmptyValueIsAHit(t *testing.T) {
	t.Parallel()
	store := openStore(t)
	ctx := context.Background()
	if err := store.Put(ctx, "ns", "k", ""); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if v, ok, _ := store.Get(ctx, "k"); !ok || v != "" {
		t.Errorf("Get = %q, %v", v, ok)
	}
}

func TestStore_PersistsAcrossOpen(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "cache.db")
	ctx := context.Background()

	s1, err := cache.Open(path, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s1.Put(ctx, "ns", "k", "kept"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	s1.Close()

	s2, err := cache.Open(path, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close()
	if v, ok, _ := s2.Get(ctx, "k"); !ok || v != "kept" {
		t.Errorf("after reopen Get = %q, %v", v, ok)
	}
}

func TestKey(t *testing.T) {
	t.Parallel()
	if cache.Key("ab", "c") == cache.Key("a", "bc") {
		t.Error("keys of different part splits collide")
	}
	if cache.Key("a", "b") != cache.Key("a", "b") {
		t.Error("key is not stable")
	}
	if len(cache.Key()) != 64 {
		t.Error("expected hex sha256")
	}
}

func TestWrap_ServesHitsAndSkipsErrors(t *testing.T) {
	t.Parallel()
	store := openStore(t)
	var calls atomic.Int32
	fail := atomic.Bool{}
	next := synth.GeneratorFunc(func(_ context.Context, req synth.Request) (string, error) {
		calls.Add(1)
		if fail.Load() {
			return "", errors.New("backend down")
		}
		return "generated for " + req.Prompt.User, nil
	})
	gen := cache.Wrap(next, store, "openai/m")
	ctx := context.Background()
	req := synth.Request{Prompt: synth.Prompt{System: "s", User: "u1"}, Language: "go"}

	first, err := gen.Generate(ctx, req)
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	second, err := gen.Generate(ctx, req)
	if err != nil || second != first {
		t.Fatalf("second = %q, %v", second, err)
	}
	if calls.Load() != 1 {
		t.Errorf("backend called %d times, want 1", calls.Load())
	}

	// Different language misses.
	req.Language = "python"
	if _, err := gen.Generate(ctx, req); err != nil {
		t.Fatalf("python: %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("backend called %d times, want 2", calls.Load())
	}

	// Failures are not cached.
	fail.Store(true)
	req.Prompt.User = "u2"
	if _, err := gen.Generate(ctx, req); err == nil {
		t.Fatal("expected backend error")
	}
	fail.Store(false)
	if out, err := gen.Generate(ctx, req); err != nil || out != "generated for u2" {
		t.Errorf("after recovery = %q, %v", out, err)
	}
}

func TestWrap_NamespacesAreIsolated(t *testing.T) {
	t.Parallel()
	store := openStore(t)
	gen := func(answer string) synth.Generator {
		return synth.GeneratorFunc(func(context.Context, synth.Request) (string, error) { return answer, nil })
	}
	req := synth.Request{Prompt: synth.Prompt{User: "same"}}
	ctx := context.Background()

	a, _ := cache.Wrap(gen("from a"), store, "a").Generate(ctx, req)
	b, _ := cache.Wrap(gen("from b"), store, "b").Generate(ctx, req)
	if a != "from a" || b != "from b" {
		t.Errorf("namespaces leaked: a=%q b=%q", a, b)
	}
}

func TestWrap_NilStore(t *testing.T) {
	t.Parallel()
	next := synth.GeneratorFunc(func(context.Context, synth.Request) (string, error) { return "x", nil })
	if got := cache.Wrap(next, nil, "ns"); got == nil {
		t.Fatal("Wrap returned nil")
	}
}

func TestOpen_ExpandsHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(t.TempDir())

	store, err := cache.Open("~/web2api/cache.db", nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	want := filepath.Join(home, "web2api", "cache.db")
	if store.Path() != want {
		t.Errorf("Path() = %s, want %s", store.Path(), want)
	}
	if _, err := os.Stat(want); err != nil {
		t.Errorf("database not created under home: %v", err)
	}
	if _, err := os.Stat("~"); !os.IsNotExist(err) {
		t.Errorf("literal ~ directory created in working dir (stat err %v)", err)
	}
}
