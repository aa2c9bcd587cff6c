package simulation

import "github.com/fincast/fincast/internal/domain"

// InsolvencyTolerance is the residual deficit, in dollars, below which a path
// is still considered solvent after liquidation.
const InsolvencyTolerance = 100.0

// cashCeilingMonths and cashFloorMonths bound the optional surplus sweep.
const cashCeilingMonths = 6.0

// CoverDeficit resolves a cash deficit by selling liquid assets in
// declaration order, draining each to zero before moving to the next. The
// cash account itself and illiquid or real-property holdings are never
// touched. Returns the unresolved remainder, zero when fully covered.
func CoverDeficit(port *domain.Portfolio, deficit float64) float64 {
	remaining := deficit
	cash := port.Cash()

	for _, a := range port.Assets {
		if remaining <= 0 {
			break
		}
		if a == cash || !a.Liquid {
			continue
		}

		if a.Value >= remaining {
			a.Value -= remaining
			remaining = 0
		} else {
			remaining -= a.Value
			a.Value = 0
		}
	}

	return remaining
}

// SweepExcessCash moves cash above six months of burn into the first liquid
// investment account. No-op when no such account exists.
func SweepExcessCash(port *domain.Portfolio, monthlyBurn float64) {
	cash := port.Cash()
	if cash == nil {
		return
	}

	ceiling := cashCeilingMonths * monthlyBurn
	if cash.Value <= ceiling {
		return
	}

	for _, a := range port.Assets {
		if a == cash || !a.Liquid {
			continue
		}
		surplus := cash.Value - ceiling
		a.Value += surplus
		cash.Value -= surplus
		return
	}
}
