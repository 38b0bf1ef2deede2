package plates

import (
	"errors"
	"math"
)

var (
	// ErrBelowMinimum is returned when the target is lighter than the empty bar.
	ErrBelowMinimum = errors.New("target is below the bar weight")
	// ErrExceedsAvailable is returned when the inventory cannot reach the target.
	ErrExceedsAvailable = errors.New("target exceeds the available plates")
	// ErrInvalidWeight is returned for NaN or infinite weights.
	ErrInvalidWeight = errors.New("weight must be a finite number")
)

// Weights are handled in thousandths so repeated subtraction cannot drift.
const unitScale = 1000

// roundUpStep is added to the achieved load when the remainder is too large to ignore.
const roundUpStep = 5

func toUnits(v float64) int64 {
	return int64(math.Round(v * unitScale))
}

// Finite reports whether v can be used as a weight.
func Finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func fromUnits(u int64) float64 {
	return float64(u) / unitScale
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Request describes a single solve.
type Request struct {
	Target        float64
	Bar           float64
	Standard      Inventory
	Fractional    Inventory
	UseFractional bool
}

// Load is the number of plates of one weight placed on each side of the bar.
type Load struct {
	Weight    float64
	PerSide   int
	Available int
}

// Result is the outcome of a solve.
type Result struct {
	Loads         []Load
	PerSideTarget float64
	// Remainder is the unreachable part of the target in total-load terms.
	Remainder float64
	Achieved  float64
	// Rounded suggests the next loadable total when the remainder exceeds 2.
	Rounded float64
}

// Used returns only the loads with at least one plate per side.
func (r Result) Used() []Load {
	var out []Load
	for _, l := range r.Loads {
		if l.PerSide > 0 {
			out = append(out, l)
		}
	}
	return out
}

// PerSideWeight sums the plates on one side.
func (r Result) PerSideWeight() float64 {
	var units int64
	for _, l := range r.Loads {
		units += toUnits(l.Weight) * int64(l.PerSide)
	}
	return fromUnits(units)
}

// PlatesTotal sums the weight of every plate that takes part in a solve.
func PlatesTotal(standard, fractional Inventory, useFractional bool) float64 {
	total := toUnits(standard.Total())
	if useFractional {
		total += toUnits(fractional.Total())
	}
	return fromUnits(total)
}

// MaxTotal is the heaviest load the bar and inventory can reach.
func MaxTotal(bar float64, standard, fractional Inventory, useFractional bool) float64 {
	return fromUnits(toUnits(bar) + toUnits(PlatesTotal(standard, fractional, useFractional)))
}

// Solve distributes plates greedily, heaviest first, across both sides of the bar.
// Plates are drawn in pairs, so at most half of each count is placed per side.
func Solve(req Request) (Result, error) {
	if !Finite(req.Target) || !Finite(req.Bar) {
		return Result{}, ErrInvalidWeight
	}
	if toUnits(req.Target) < toUnits(req.Bar) {
		return Result{}, ErrBelowMinimum
	}
	if toUnits(req.Target) > toUnits(MaxTotal(req.Bar, req.Standard, req.Fractional, req.UseFractional)) {
		return Result{}, ErrExceedsAvailable
	}

	// remaining is tracked for both sides together; one plate per side costs 2*weight.
	remaining := toUnits(req.Target) - toUnits(req.Bar)
	res := Result{PerSideTarget: fromUnits(remaining) / 2}

	remaining = fill(&res, standardPlates, req.Standard, remaining)
	if req.UseFractional {
		remaining = fill(&res, fractionalPlates, req.Fractional, remaining)
	}

	res.Remainder = round2(fromUnits(remaining))
	res.Achieved = round2(req.Target - res.Remainder)
	res.Rounded = res.Achieved
	if res.Remainder > 2 {
		res.Rounded = round2(res.Achieved + roundUpStep)
	}
	return res, nil
}

func fill(res *Result, denominations []float64, inv Inventory, remaining int64) int64 {
	for _, weight := range denominations {
		available := inv[weight]
		pair := 2 * toUnits(weight)
		perSide := 0
		if available > 0 && pair <= remaining {
			perSide = int(remaining / pair)
			if limit := available / 2; perSide > limit {
				perSide = limit
			}
			remaining -= int64(perSide) * pair
		}
		res.Loads = append(res.Loads, Load{Weight: weight, PerSide: perSide, Available: available})
	}
	return remaining
}
