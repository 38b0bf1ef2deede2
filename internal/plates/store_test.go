package plates

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/verte-zerg/liftkit/internal/store"
)

func TestInventoryStorePersistsEdits(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "liftkit.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})

	ctx := context.Background()
	inv := NewInventoryStore(st, zerolog.Nop())
	if err := inv.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	if inv.Get(Standard, 45) != 8 || inv.Get(Fractional, 0.25) != 2 {
		t.Fatalf("expected default counts")
	}
	if err := inv.Set(ctx, Standard, 35, 4); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := inv.Set(ctx, Fractional, 0.75, 6); err != nil {
		t.Fatalf("set: %v", err)
	}
	inv.SetFractional(ctx, true)
	inv.SetTarget(ctx, 185.5)

	raw, ok, err := st.Get(ctx, KeyStandard)
	if err != nil || !ok {
		t.Fatalf("expected standard inventory to be saved: ok=%v err=%v", ok, err)
	}
	if raw == "" {
		t.Fatalf("expected non-empty inventory JSON")
	}

	reloaded := NewInventoryStore(st, zerolog.Nop())
	if err := reloaded.Load(ctx); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Get(Standard, 35) != 4 {
		t.Fatalf("expected 4 x 35, got %d", reloaded.Get(Standard, 35))
	}
	if reloaded.Get(Fractional, 0.75) != 6 {
		t.Fatalf("expected 6 x 0.75, got %d", reloaded.Get(Fractional, 0.75))
	}
	if !reloaded.Fractional() {
		t.Fatalf("expected fractional flag to persist")
	}
	if reloaded.Target() != 185.5 {
		t.Fatalf("expected target 185.5, got %v", reloaded.Target())
	}
	if reloaded.MaxTotal(45) != 510+140+2+4.5+1+0.5 {
		t.Fatalf("unexpected max total %v", reloaded.MaxTotal(45))
	}
}

func TestInventoryStoreSetValidation(t *testing.T) {
	ctx := context.Background()
	inv := NewInventoryStore(store.NewMemory(), zerolog.Nop())
	if err := inv.Set(ctx, Standard, 20, 2); !errors.Is(err, ErrUnknownDenomination) {
		t.Fatalf("expected ErrUnknownDenomination, got %v", err)
	}
	if err := inv.Set(ctx, Standard, 0.75, 2); !errors.Is(err, ErrUnknownDenomination) {
		t.Fatalf("fractional weight must not be accepted as standard, got %v", err)
	}
	if err := inv.Set(ctx, Standard, 10, -3); err != nil {
		t.Fatalf("set: %v", err)
	}
	if inv.Get(Standard, 10) != 0 {
		t.Fatalf("negative counts should be clamped to 0")
	}
}

func TestInventoryStoreLoadsLegacyValues(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()
	_ = kv.Set(ctx, KeyStandard, `{"45":"6","35":0,"25":2,"10":"4","5":2,"2-5":"3","bogus":9}`)
	_ = kv.Set(ctx, KeyFractional, `not json`)
	_ = kv.Set(ctx, KeyUseFractional, `true`)

	inv := NewInventoryStore(kv, zerolog.Nop())
	if err := inv.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	if inv.Get(Standard, 45) != 6 || inv.Get(Standard, 2.5) != 3 || inv.Get(Standard, 10) != 4 {
		t.Fatalf("unexpected standard inventory: %v", inv.Inventory(Standard))
	}
	if len(inv.Inventory(Standard)) != len(standardPlates) {
		t.Fatalf("unknown keys must be dropped: %v", inv.Inventory(Standard))
	}
	if inv.Get(Fractional, 1) != 2 {
		t.Fatalf("malformed fractional inventory should fall back to defaults")
	}
	if !inv.Fractional() {
		t.Fatalf("expected fractional flag")
	}
}

func TestInventoryStoreClearAll(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()
	inv := NewInventoryStore(kv, zerolog.Nop())
	_ = inv.Set(ctx, Standard, 45, 20)
	inv.SetFractional(ctx, true)
	inv.SetTarget(ctx, 315)

	inv.ClearAll(ctx)
	if inv.Get(Standard, 45) != 8 || inv.Fractional() || inv.Target() != 0 {
		t.Fatalf("expected defaults after clear")
	}
	for _, key := range []string{KeyStandard, KeyFractional, KeyUseFractional, KeyTarget} {
		if _, ok, _ := kv.Get(ctx, key); ok {
			t.Fatalf("expected %s to be removed", key)
		}
	}
}

func TestInventoryStoreRequest(t *testing.T) {
	inv := NewInventoryStore(store.NewMemory(), zerolog.Nop())
	req := inv.Request(225, 45)
	req.Standard[45] = 0
	if inv.Get(Standard, 45) != 8 {
		t.Fatalf("request must carry a copy of the inventory")
	}
	res, err := Solve(inv.Request(225, 45))
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	if res.Remainder != 0 {
		t.Fatalf("expected exact solve, got %+v", res)
	}
}
