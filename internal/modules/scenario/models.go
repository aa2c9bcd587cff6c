package scenario

import "fmt"

// Factor indices into the correlation matrix.
// Order: market, inflation, interest rates, housing, salary.
const (
	factorMarket = iota
	factorInflation
	factorRates
	factorHousing
	factorSalary
	numFactors
)

// Config holds the immutable economic assumptions for one generated batch.
// It is passed into the generator explicitly so paths stay reproducible and
// testable in isolation.
type Config struct {
	// Initial levels (annual rates).
	BaseInflation    float64 `json:"base_inflation"`
	BaseInterestRate float64 `json:"base_interest_rate"`

	// Equity market drift and diffusion (annual).
	ExpectedMarketReturn float64 `json:"expected_market_return"`
	MarketVolatility     float64 `json:"market_volatility"`

	// Real salary growth above inflation (annual).
	SalaryMerit float64 `json:"salary_merit"`

	// Unforeseen-expense shock: Bernoulli probability per month and the
	// uniform dollar-magnitude range.
	ShockProbability float64 `json:"shock_probability"`
	ShockMin         float64 `json:"shock_min"`
	ShockMax         float64 `json:"shock_max"`

	Seed uint64 `json:"seed"`

	// Correlation overrides the default factor correlation matrix when set.
	// Must be 5x5, symmetric and positive definite.
	Correlation [][]float64 `json:"correlation,omitempty"`
}

// DefaultConfig returns baseline economic assumptions.
func DefaultConfig() Config {
	return Config{
		BaseInflation:        0.03,
		BaseInterestRate:     0.04,
		ExpectedMarketReturn: 0.07,
		MarketVolatility:     0.15,
		SalaryMerit:          0.01,
		ShockProbability:     0.01,
		ShockMin:             5000,
		ShockMax:             20000,
		Seed:                 42,
	}
}

// Validate reports configuration errors before any generation work.
func (c *Config) Validate() error {
	if c.MarketVolatility < 0 {
		return fmt.Errorf("market volatility must be >= 0, got %f", c.MarketVolatility)
	}
	if c.ShockProbability < 0 || c.ShockProbability > 1 {
		return fmt.Errorf("shock probability must be in [0, 1], got %f", c.ShockProbability)
	}
	if c.ShockMin > c.ShockMax {
		return fmt.Errorf("shock range is inverted: min %f > max %f", c.ShockMin, c.ShockMax)
	}
	if c.Correlation != nil {
		if len(c.Correlation) != numFactors {
			return fmt.Errorf("correlation matrix must be %dx%d, got %d rows", numFactors, numFactors, len(c.Correlation))
		}
		for i, row := range c.Correlation {
			if len(row) != numFactors {
				return fmt.Errorf("correlation matrix row %d has %d columns, expected %d", i, len(row), numFactors)
			}
		}
	}
	return nil
}

// ScenarioSet holds generated factor paths, one value per [month][path].
//
// MarketReturns, HousingGrowth and SalaryGrowth are monthly rates;
// Inflation and InterestRates are annual levels. ShockAmounts is the dollar
// magnitude of the unforeseen-expense shock, zero for shock-free months.
type ScenarioSet struct {
	Months int
	Paths  int

	MarketReturns [][]float64
	Inflation     [][]float64
	InterestRates [][]float64
	HousingGrowth [][]float64
	SalaryGrowth  [][]float64
	ShockAmounts  [][]float64
}

// PathScenario is one path's column through the scenario set, indexed by
// month. This is the slice of economic data a single simulated path consumes.
type PathScenario struct {
	MarketReturns []float64
	Inflation     []float64
	InterestRates []float64
	HousingGrowth []float64
	SalaryGrowth  []float64
	ShockAmounts  []float64
}

// Path extracts path p as a contiguous per-month series.
func (s *ScenarioSet) Path(p int) *PathScenario {
	out := &PathScenario{
		MarketReturns: make([]float64, s.Months),
		Inflation:     make([]float64, s.Months),
		InterestRates: make([]float64, s.Months),
		HousingGrowth: make([]float64, s.Months),
		SalaryGrowth:  make([]float64, s.Months),
		ShockAmounts:  make([]float64, s.Months),
	}

	for t := 0; t < s.Months; t++ {
		out.MarketReturns[t] = s.MarketReturns[t][p]
		out.Inflation[t] = s.Inflation[t][p]
		out.InterestRates[t] = s.InterestRates[t][p]
		out.HousingGrowth[t] = s.HousingGrowth[t][p]
		out.SalaryGrowth[t] = s.SalaryGrowth[t][p]
		out.ShockAmounts[t] = s.ShockAmounts[t][p]
	}

	return out
}

// FlatPath returns a constant-factor path, useful for deterministic analysis
// and tests.
func FlatPath(months int, marketReturn, inflation, interestRate, housingGrowth, salaryGrowth float64) *PathScenario {
	out := &PathScenario{
		MarketReturns: make([]float64, months),
		Inflation:     make([]float64, months),
		InterestRates: make([]float64, months),
		HousingGrowth: make([]float64, months),
		SalaryGrowth:  make([]float64, months),
		ShockAmounts:  make([]float64, months),
	}

	for t := 0; t < months; t++ {
		out.MarketReturns[t] = marketReturn
		out.Inflation[t] = inflation
		out.InterestRates[t] = interestRate
		out.HousingGrowth[t] = housingGrowth
		out.SalaryGrowth[t] = salaryGrowth
	}

	return out
}
