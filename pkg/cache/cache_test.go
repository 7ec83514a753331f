package cache

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit || data != nil {
		t.Error("NullCache should not store data")
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}

	if _, hit, err := c.Get(ctx, "missing"); err != nil || hit {
		t.Errorf("Get(missing) = hit %v, err %v, want miss", hit, err)
	}

	if err := c.Set(ctx, "k", []byte("v"), time.Hour); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "k")
	if err != nil || !hit || string(data) != "v" {
		t.Errorf("Get(k) = %q, %v, %v, want v, true, nil", data, hit, err)
	}

	if err := c.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("Get after Delete should miss")
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete(missing) error: %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())

	if err := c.Set(ctx, "k", []byte("v"), time.Nanosecond); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("expired entry should miss")
	}
	if _, err := os.Stat(c.path("k")); !os.IsNotExist(err) {
		t.Error("expired entry should be removed")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())

	path := c.path("k")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "k"); hit || err != nil {
		t.Errorf("Get(corrupt) = hit %v, err %v, want miss", hit, err)
	}
}

func TestFileCacheStatsClear(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())

	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte(k), 0); err != nil {
			t.Fatal(err)
		}
	}
	n, size, err := c.Stats()
	if err != nil {
		t.Fatalf("Stats error: %v", err)
	}
	if n != 3 || size == 0 {
		t.Errorf("Stats() = %d entries, %d bytes, want 3 entries", n, size)
	}

	removed, err := c.Clear()
	if err != nil {
		t.Fatalf("Clear error: %v", err)
	}
	if removed != 3 {
		t.Errorf("Clear() = %d, want 3", removed)
	}
	if n, _, _ := c.Stats(); n != 0 {
		t.Errorf("Stats() after Clear = %d entries, want 0", n)
	}
}

func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())

	type payload struct{ Sites []string }
	if err := SetJSON(ctx, c, "k", payload{Sites: []string{"S1"}}, time.Hour); err != nil {
		t.Fatalf("SetJSON error: %v", err)
	}
	var got payload
	hit, err := GetJSON(ctx, c, "k", &got)
	if err != nil || !hit {
		t.Fatalf("GetJSON = %v, %v", hit, err)
	}
	if len(got.Sites) != 1 || got.Sites[0] != "S1" {
		t.Errorf("GetJSON decoded %+v", got)
	}

	_ = c.Set(ctx, "bad", []byte("[1,2"), time.Hour)
	if hit, err := GetJSON(ctx, c, "bad", &got); hit || err != nil {
		t.Errorf("GetJSON(bad) = %v, %v, want miss", hit, err)
	}
	if _, hit, _ := c.Get(ctx, "bad"); hit {
		t.Error("undecodable entry should be deleted")
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	if h1 != Hash([]byte("hello")) {
		t.Error("Hash should be deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length = %d, want 64", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	lk1 := k.LayoutKey("cfg", LayoutKeyOpts{Seed: 1})
	lk2 := k.LayoutKey("cfg", LayoutKeyOpts{Seed: 2})
	if lk1 == lk2 {
		t.Error("different seeds should produce different layout keys")
	}
	if !strings.HasPrefix(lk1, "layout:") {
		t.Errorf("LayoutKey = %s, want layout: prefix", lk1)
	}
	if k.LayoutKey("cfg", LayoutKeyOpts{Seed: 1, Sites: []string{"S1"}}) == lk1 {
		t.Error("site selection should change the layout key")
	}

	ak1 := k.ArtifactKey("h", ArtifactKeyOpts{Kind: "cellmap", Format: "svg"})
	ak2 := k.ArtifactKey("h", ArtifactKeyOpts{Kind: "tree", Format: "svg"})
	if ak1 == ak2 {
		t.Error("different artifact kinds should produce different keys")
	}
}

func TestScopedKeyer(t *testing.T) {
	inner := NewDefaultKeyer()
	scoped := NewScopedKeyer(inner, "api:")

	opts := LayoutKeyOpts{Seed: 42}
	if got, want := scoped.LayoutKey("cfg", opts), "api:"+inner.LayoutKey("cfg", opts); got != want {
		t.Errorf("LayoutKey = %s, want %s", got, want)
	}
	if got := NewScopedKeyer(nil, "p:").ArtifactKey("h", ArtifactKeyOpts{}); !strings.HasPrefix(got, "p:artifact:") {
		t.Errorf("ArtifactKey with nil inner = %s", got)
	}
}

func TestKeyerUnencodable(t *testing.T) {
	opts := ArtifactKeyOpts{Kind: "cellmap", Format: "png", Scale: math.NaN()}
	if got := NewDefaultKeyer().ArtifactKey("h", opts); got != "" {
		t.Errorf("ArtifactKey(NaN scale) = %q, want empty", got)
	}
	if got := NewScopedKeyer(nil, "api:").ArtifactKey("h", opts); got != "" {
		t.Errorf("scoped ArtifactKey(NaN scale) = %q, want empty", got)
	}
}

func TestRetryWithBackoff(t *testing.T) {
	ctx := context.Background()
	fast := Backoff{Attempts: 3, Delay: time.Millisecond}

	calls := 0
	errFatal := errors.New("fatal")
	err := RetryWithBackoff(ctx, fast, func() error {
		calls++
		return errFatal
	})
	if err != errFatal || calls != 1 {
		t.Errorf("non-retryable: err = %v, calls = %d, want fatal, 1", err, calls)
	}

	calls = 0
	err = RetryWithBackoff(ctx, fast, func() error {
		calls++
		if calls < 2 {
			return Retryable(ErrNetwork)
		}
		return nil
	})
	if err != nil || calls != 2 {
		t.Errorf("retry once: err = %v, calls = %d, want nil, 2", err, calls)
	}

	calls = 0
	err = RetryWithBackoff(ctx, fast, func() error {
		calls++
		return Retryable(ErrNetwork)
	})
	if !errors.Is(err, ErrNetwork) || calls != 3 {
		t.Errorf("exhausted: err = %v, calls = %d, want ErrNetwork, 3", err, calls)
	}
}

func TestRetryWithBackoffContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := RetryWithBackoff(ctx, Backoff{Attempts: 3, Delay: time.Hour}, func() error {
		return Retryable(ErrNetwork)
	})
	if err != context.Canceled {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestRetryable(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should return nil")
	}
	err := Retryable(ErrNetwork)
	if !IsRetryable(err) || err.Error() != ErrNetwork.Error() {
		t.Errorf("Retryable(ErrNetwork) = %v", err)
	}
	if IsRetryable(ErrNetwork) {
		t.Error("unwrapped error should not be retryable")
	}
}
