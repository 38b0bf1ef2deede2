package store

import (
	"context"
	"path/filepath"
	"testing"
)

func TestStoreRoundTrip(t *testing.T) {
	st, err := Open(filepath.Join(t.TempDir(), "nested", "liftkit.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})

	ctx := context.Background()
	if _, ok, err := st.Get(ctx, "timerState"); err != nil || ok {
		t.Fatalf("expected missing key, got ok=%v err=%v", ok, err)
	}
	if err := st.Set(ctx, "timerState", `{"mode":"countdown"}`); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := st.Set(ctx, "timerState", `{"mode":"stopwatch"}`); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	value, ok, err := st.Get(ctx, "timerState")
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if value != `{"mode":"stopwatch"}` {
		t.Fatalf("unexpected value %q", value)
	}
	if err := st.Set(ctx, "plateWeight", `{}`); err != nil {
		t.Fatalf("set: %v", err)
	}
	keys, err := st.Keys(ctx)
	if err != nil {
		t.Fatalf("keys: %v", err)
	}
	if len(keys) != 2 || keys[0] != "plateWeight" || keys[1] != "timerState" {
		t.Fatalf("unexpected keys %v", keys)
	}
	if err := st.Delete(ctx, "timerState"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := st.Delete(ctx, "timerState"); err != nil {
		t.Fatalf("delete missing: %v", err)
	}
	if _, ok, _ := st.Get(ctx, "timerState"); ok {
		t.Fatalf("expected key to be deleted")
	}
}

func TestMemoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	if err := m.Set(ctx, "k", "v"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if v, ok, _ := m.Get(ctx, "k"); !ok || v != "v" {
		t.Fatalf("unexpected get: %q %v", v, ok)
	}
	_ = m.Delete(ctx, "k")
	if _, ok, _ := m.Get(ctx, "k"); ok {
		t.Fatalf("expected key to be deleted")
	}
}
