package planning

import (
	"fmt"
	"math"
)

// FilingStatus selects the federal bracket table.
type FilingStatus string

const (
	FilingSingle FilingStatus = "single"
	FilingJoint  FilingStatus = "joint"
)

// FICARate covers Social Security and Medicare, kept flat for simplicity
// (ignores the SS wage cap, a conservative estimate).
const FICARate = 0.0765

type taxBracket struct {
	rate float64
	cap  float64
}

// 2026 estimated federal brackets; the last cap is unbounded.
var federalBrackets = map[FilingStatus][]taxBracket{
	FilingSingle: {
		{0.10, 11_925},
		{0.12, 48_475},
		{0.22, 103_350},
		{0.24, 197_300},
		{0.32, 250_525},
		{0.35, 626_350},
		{0.37, math.Inf(1)},
	},
	FilingJoint: {
		{0.10, 23_850},
		{0.12, 96_950},
		{0.22, 206_700},
		{0.24, 394_600},
		{0.32, 501_050},
		{0.35, 751_600},
		{0.37, math.Inf(1)},
	},
}

var standardDeduction = map[FilingStatus]float64{
	FilingSingle: 14_600,
	FilingJoint:  29_200,
}

// AnnualNet returns annual income net of federal tax and FICA. State tax is
// not modeled; add a flat percentage on top if needed.
func AnnualNet(gross float64, status FilingStatus) (float64, error) {
	brackets, ok := federalBrackets[status]
	if !ok {
		return 0, fmt.Errorf("unknown filing status %q", status)
	}

	taxable := math.Max(0, gross-standardDeduction[status])

	federalTax := 0.0
	previousCap := 0.0
	for _, b := range brackets {
		if taxable <= previousCap {
			break
		}
		taxableInBracket := math.Min(taxable, b.cap) - previousCap
		federalTax += taxableInBracket * b.rate
		previousCap = b.cap
	}

	return gross - federalTax - gross*FICARate, nil
}

// EffectiveTaxRate converts the bracket math into the flat rate the
// transition engine consumes.
func EffectiveTaxRate(gross float64, status FilingStatus) (float64, error) {
	if gross <= 0 {
		return 0, nil
	}
	net, err := AnnualNet(gross, status)
	if err != nil {
		return 0, err
	}
	return 1.0 - net/gross, nil
}

// MarginalNetDelta returns the annual net-income change from a gross salary
// delta, evaluated against the household's current gross so progressive
// bracket effects land on the marginal dollars.
func MarginalNetDelta(currentGross, grossDelta float64, status FilingStatus) (float64, error) {
	before, err := AnnualNet(currentGross, status)
	if err != nil {
		return 0, err
	}
	after, err := AnnualNet(currentGross+grossDelta, status)
	if err != nil {
		return 0, err
	}
	return after - before, nil
}
