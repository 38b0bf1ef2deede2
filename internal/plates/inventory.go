// Package plates computes barbell plate loads and tracks the plate inventory.
package plates

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Kind selects one of the two plate inventories.
type Kind int

const (
	// Standard plates are always used.
	Standard Kind = iota
	// Fractional plates are used only when the fractional flag is on.
	Fractional
)

func (k Kind) String() string {
	if k == Fractional {
		return "fractional"
	}
	return "standard"
}

var (
	standardPlates   = []float64{45, 35, 25, 10, 5, 2.5}
	fractionalPlates = []float64{1, 0.75, 0.5, 0.25}
)

// Denominations returns the fixed plate weights for kind in descending order.
func Denominations(kind Kind) []float64 {
	if kind == Fractional {
		return append([]float64(nil), fractionalPlates...)
	}
	return append([]float64(nil), standardPlates...)
}

// Inventory maps a plate weight to the number of plates owned.
type Inventory map[float64]int

// DefaultInventory returns the starting counts for kind.
func DefaultInventory(kind Kind) Inventory {
	if kind == Fractional {
		return Inventory{1: 2, 0.75: 2, 0.5: 2, 0.25: 2}
	}
	return Inventory{45: 8, 35: 0, 25: 2, 10: 4, 5: 2, 2.5: 2}
}

// Clone returns an independent copy.
func (inv Inventory) Clone() Inventory {
	out := make(Inventory, len(inv))
	for k, v := range inv {
		out[k] = v
	}
	return out
}

// Total returns the summed weight of every plate in the inventory.
func (inv Inventory) Total() float64 {
	var units int64
	for weight, count := range inv {
		if count > 0 {
			units += toUnits(weight) * int64(count)
		}
	}
	return fromUnits(units)
}

// IsDenomination reports whether weight is one of the fixed plates for kind.
func IsDenomination(kind Kind, weight float64) bool {
	for _, d := range Denominations(kind) {
		if d == weight {
			return true
		}
	}
	return false
}

// FormatWeight renders a weight without trailing zeros.
func FormatWeight(weight float64) string {
	return strconv.FormatFloat(weight, 'f', -1, 64)
}

// ParseWeight accepts "2.5" as well as the storage form "2-5".
func ParseWeight(value string) (float64, error) {
	value = strings.TrimSpace(strings.ReplaceAll(value, "-", "."))
	weight, err := strconv.ParseFloat(value, 64)
	if err != nil || !Finite(weight) {
		return 0, fmt.Errorf("invalid plate weight %q", value)
	}
	return weight, nil
}

func storageKey(weight float64) string {
	return strings.ReplaceAll(FormatWeight(weight), ".", "-")
}

// count accepts a JSON number or a numeric string.
type count int

func (c *count) UnmarshalJSON(data []byte) error {
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*c = count(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	s = strings.TrimSpace(s)
	if s == "" {
		*c = 0
		return nil
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid plate count %q", s)
	}
	*c = count(n)
	return nil
}

func encodeInventory(inv Inventory) (string, error) {
	raw := make(map[string]int, len(inv))
	for weight, n := range inv {
		raw[storageKey(weight)] = n
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// decodeInventory overlays stored counts on the defaults for kind. Unknown keys are dropped.
func decodeInventory(kind Kind, value string) (Inventory, error) {
	var raw map[string]count
	if err := json.Unmarshal([]byte(value), &raw); err != nil {
		return nil, err
	}
	inv := DefaultInventory(kind)
	for key, n := range raw {
		weight, err := ParseWeight(key)
		if err != nil || !IsDenomination(kind, weight) {
			continue
		}
		if n < 0 {
			n = 0
		}
		inv[weight] = int(n)
	}
	return inv, nil
}
