package plates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/verte-zerg/liftkit/internal/store"
)

// Storage keys for the calculator.
const (
	KeyStandard      = "plateWeight"
	KeyFractional    = "fractionalPlateWeight"
	KeyUseFractional = "useFractionalWeights"
	KeyTarget        = "workoutAmount"
)

// ErrUnknownDenomination is returned when editing a plate weight that is not part of the fixed set.
var ErrUnknownDenomination = errors.New("unknown plate weight")

// InventoryStore holds both inventories, the fractional flag and the last target,
// and writes every change straight back to the KV store.
type InventoryStore struct {
	kv  store.KV
	log zerolog.Logger

	standard      Inventory
	fractional    Inventory
	useFractional bool
	target        float64
}

// NewInventoryStore returns a store populated with defaults. Call Load to read persisted values.
func NewInventoryStore(kv store.KV, log zerolog.Logger) *InventoryStore {
	return &InventoryStore{
		kv:         kv,
		log:        log,
		standard:   DefaultInventory(Standard),
		fractional: DefaultInventory(Fractional),
	}
}

// Load replaces in-memory values with persisted ones. Malformed values fall back to defaults.
func (s *InventoryStore) Load(ctx context.Context) error {
	if value, ok, err := s.kv.Get(ctx, KeyStandard); err != nil {
		return fmt.Errorf("failed to read plate inventory: %w", err)
	} else if ok {
		inv, derr := decodeInventory(Standard, value)
		if derr != nil {
			s.log.Warn().Err(derr).Str("key", KeyStandard).Msg("ignoring malformed plate inventory")
			inv = DefaultInventory(Standard)
		}
		s.standard = inv
	}

	if value, ok, err := s.kv.Get(ctx, KeyFractional); err != nil {
		return fmt.Errorf("failed to read fractional inventory: %w", err)
	} else if ok {
		inv, derr := decodeInventory(Fractional, value)
		if derr != nil {
			s.log.Warn().Err(derr).Str("key", KeyFractional).Msg("ignoring malformed plate inventory")
			inv = DefaultInventory(Fractional)
		}
		s.fractional = inv
	}

	if value, ok, err := s.kv.Get(ctx, KeyUseFractional); err != nil {
		return fmt.Errorf("failed to read fractional flag: %w", err)
	} else if ok {
		var flag bool
		if derr := json.Unmarshal([]byte(value), &flag); derr != nil {
			s.log.Warn().Err(derr).Str("key", KeyUseFractional).Msg("ignoring malformed fractional flag")
			flag = false
		}
		s.useFractional = flag
	}

	if value, ok, err := s.kv.Get(ctx, KeyTarget); err != nil {
		return fmt.Errorf("failed to read target: %w", err)
	} else if ok {
		target, derr := strconv.ParseFloat(value, 64)
		if derr != nil || target < 0 {
			s.log.Warn().Str("key", KeyTarget).Str("value", value).Msg("ignoring malformed target")
			target = 0
		}
		s.target = target
	}
	return nil
}

// Save writes both inventories and the fractional flag.
func (s *InventoryStore) Save(ctx context.Context) error {
	if err := s.saveInventory(ctx, Standard); err != nil {
		return err
	}
	if err := s.saveInventory(ctx, Fractional); err != nil {
		return err
	}
	return s.saveFlag(ctx)
}

func (s *InventoryStore) saveInventory(ctx context.Context, kind Kind) error {
	key := KeyStandard
	inv := s.standard
	if kind == Fractional {
		key = KeyFractional
		inv = s.fractional
	}
	value, err := encodeInventory(inv)
	if err != nil {
		return fmt.Errorf("failed to encode %s inventory: %w", kind, err)
	}
	if err := s.kv.Set(ctx, key, value); err != nil {
		return fmt.Errorf("failed to save %s inventory: %w", kind, err)
	}
	return nil
}

func (s *InventoryStore) saveFlag(ctx context.Context) error {
	if err := s.kv.Set(ctx, KeyUseFractional, strconv.FormatBool(s.useFractional)); err != nil {
		return fmt.Errorf("failed to save fractional flag: %w", err)
	}
	return nil
}

// Get returns the count for weight, or 0 when it is not tracked.
func (s *InventoryStore) Get(kind Kind, weight float64) int {
	return s.inventory(kind)[weight]
}

// Set updates a single count and persists the inventory. Negative counts are stored as 0.
// Persistence failures are logged, not returned.
func (s *InventoryStore) Set(ctx context.Context, kind Kind, weight float64, n int) error {
	if !IsDenomination(kind, weight) {
		return fmt.Errorf("%w: %s (%s)", ErrUnknownDenomination, FormatWeight(weight), kind)
	}
	if n < 0 {
		n = 0
	}
	s.inventory(kind)[weight] = n
	if err := s.saveInventory(ctx, kind); err != nil {
		s.log.Warn().Err(err).Msg("inventory change kept in memory only")
	}
	return nil
}

// Inventory returns a copy of the inventory for kind.
func (s *InventoryStore) Inventory(kind Kind) Inventory {
	return s.inventory(kind).Clone()
}

func (s *InventoryStore) inventory(kind Kind) Inventory {
	if kind == Fractional {
		return s.fractional
	}
	return s.standard
}

// Fractional reports whether fractional plates take part in solves.
func (s *InventoryStore) Fractional() bool {
	return s.useFractional
}

// SetFractional toggles fractional plates and persists the flag.
func (s *InventoryStore) SetFractional(ctx context.Context, on bool) {
	s.useFractional = on
	if err := s.saveFlag(ctx); err != nil {
		s.log.Warn().Err(err).Msg("fractional flag kept in memory only")
	}
}

// Target returns the last remembered target load, or 0.
func (s *InventoryStore) Target() float64 {
	return s.target
}

// SetTarget remembers a target load. Non-positive values are held in memory but not persisted.
func (s *InventoryStore) SetTarget(ctx context.Context, target float64) {
	s.target = target
	if target <= 0 {
		return
	}
	if err := s.kv.Set(ctx, KeyTarget, strconv.FormatFloat(target, 'f', -1, 64)); err != nil {
		s.log.Warn().Err(err).Msg("target kept in memory only")
	}
}

// ClearTarget forgets the remembered target.
func (s *InventoryStore) ClearTarget(ctx context.Context) {
	s.target = 0
	if err := s.kv.Delete(ctx, KeyTarget); err != nil {
		s.log.Warn().Err(err).Msg("failed to clear target")
	}
}

// ClearAll restores default inventories, disables fractional plates and forgets the target.
func (s *InventoryStore) ClearAll(ctx context.Context) {
	s.standard = DefaultInventory(Standard)
	s.fractional = DefaultInventory(Fractional)
	s.useFractional = false
	for _, key := range []string{KeyStandard, KeyFractional, KeyUseFractional} {
		if err := s.kv.Delete(ctx, key); err != nil {
			s.log.Warn().Err(err).Str("key", key).Msg("failed to clear saved value")
		}
	}
	s.ClearTarget(ctx)
}

// Request builds a solver request from the current inventory.
func (s *InventoryStore) Request(target, bar float64) Request {
	return Request{
		Target:        target,
		Bar:           bar,
		Standard:      s.Inventory(Standard),
		Fractional:    s.Inventory(Fractional),
		UseFractional: s.useFractional,
	}
}

// MaxTotal is the heaviest load reachable with bar and the current inventory.
func (s *InventoryStore) MaxTotal(bar float64) float64 {
	return MaxTotal(bar, s.standard, s.fractional, s.useFractional)
}
