package scenario

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// One time step per month.
const dt = 1.0 / 12.0

// Mean-reversion parameters for the Ornstein-Uhlenbeck factors:
// speed of reversion (kappa), long-run mean (theta), volatility (sigma).
const (
	kappaInflation = 0.5
	thetaInflation = 0.03
	volInflation   = 0.01

	kappaRates = 0.3
	thetaRates = 0.04
	volRates   = 0.015

	// Housing: inflation plus real growth plus its own noise.
	housingRealGrowth = 0.01
	volHousing        = 0.05

	// Salary noise around inflation + merit.
	volSalary = 0.02
)

// defaultCorrelation is the factor correlation structure, ordered
// [market, inflation, rates, housing, salary].
var defaultCorrelation = []float64{
	1.0, -0.2, -0.3, 0.4, 0.1,
	-0.2, 1.0, 0.6, 0.3, 0.7,
	-0.3, 0.6, 1.0, -0.2, 0.2,
	0.4, 0.3, -0.2, 1.0, 0.2,
	0.1, 0.7, 0.2, 0.2, 1.0,
}

// Generator produces internally consistent, cross-correlated monthly paths
// for the five economic factors. Correlation is induced by transforming
// independent standard-normal shocks through the Cholesky factor L of the
// correlation matrix (L·Lᵀ = corr).
type Generator struct {
	cfg  Config
	chol mat.Cholesky
	log  zerolog.Logger
}

// NewGenerator validates the configuration and factorizes the correlation
// matrix. A non-positive-definite matrix is a configuration error, not a
// runtime retry case.
func NewGenerator(cfg Config, log zerolog.Logger) (*Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scenario config: %w", err)
	}

	data := defaultCorrelation
	if cfg.Correlation != nil {
		data = make([]float64, 0, numFactors*numFactors)
		for _, row := range cfg.Correlation {
			data = append(data, row...)
		}
	}

	g := &Generator{
		cfg: cfg,
		log: log.With().Str("component", "scenario_generator").Logger(),
	}

	corr := mat.NewSymDense(numFactors, data)
	if ok := g.chol.Factorize(corr); !ok {
		return nil, fmt.Errorf("correlation matrix is not positive definite")
	}

	return g, nil
}

// Generate produces a full scenario set of shape [months][paths].
//
// Given the same seed, configuration and shapes the output is bit-for-bit
// reproducible: all draws come from a single seeded source consumed in a
// fixed order.
func (g *Generator) Generate(months, paths int) (*ScenarioSet, error) {
	if months <= 0 || paths <= 0 {
		return nil, fmt.Errorf("months and paths must be positive, got %d x %d", months, paths)
	}

	src := rand.NewPCG(g.cfg.Seed, g.cfg.Seed^0x9e3779b97f4a7c15)
	rng := rand.New(src)
	normal := distuv.Normal{Mu: 0, Sigma: 1, Src: src}
	shockSize := distuv.Uniform{Min: g.cfg.ShockMin, Max: g.cfg.ShockMax, Src: src}

	var lower mat.TriDense
	g.chol.LTo(&lower)

	set := &ScenarioSet{
		Months:        months,
		Paths:         paths,
		MarketReturns: newMatrix(months, paths),
		Inflation:     newMatrix(months, paths),
		InterestRates: newMatrix(months, paths),
		HousingGrowth: newMatrix(months, paths),
		SalaryGrowth:  newMatrix(months, paths),
		ShockAmounts:  newMatrix(months, paths),
	}

	// Mean-reverting levels carried per path.
	currInflation := make([]float64, paths)
	currRates := make([]float64, paths)
	for p := 0; p < paths; p++ {
		currInflation[p] = g.cfg.BaseInflation
		currRates[p] = g.cfg.BaseInterestRate
	}

	sqrtDt := math.Sqrt(dt)
	raw := make([]float64, numFactors)
	z := make([]float64, numFactors)

	for t := 0; t < months; t++ {
		for p := 0; p < paths; p++ {
			for i := range raw {
				raw[i] = normal.Rand()
			}
			correlate(&lower, raw, z)

			// Market: drift + diffusion step.
			set.MarketReturns[t][p] = g.cfg.ExpectedMarketReturn*dt +
				g.cfg.MarketVolatility*sqrtDt*z[factorMarket]

			// Inflation: Ornstein-Uhlenbeck discrete update.
			currInflation[p] += kappaInflation*(thetaInflation-currInflation[p])*dt +
				volInflation*sqrtDt*z[factorInflation]
			set.Inflation[t][p] = currInflation[p]

			// Interest rates: same update, floored at zero.
			currRates[p] += kappaRates*(thetaRates-currRates[p])*dt +
				volRates*sqrtDt*z[factorRates]
			set.InterestRates[t][p] = math.Max(currRates[p], 0.0)

			// Housing: current inflation plus real growth plus noise.
			set.HousingGrowth[t][p] = currInflation[p]*dt +
				housingRealGrowth*dt +
				volHousing*sqrtDt*z[factorHousing]

			// Salary: inflation plus merit increase plus noise.
			set.SalaryGrowth[t][p] = currInflation[p]*dt +
				g.cfg.SalaryMerit*dt +
				volSalary*sqrtDt*z[factorSalary]

			// Unforeseen expense: independent Bernoulli draw with a
			// uniformly sized dollar magnitude.
			if rng.Float64() < g.cfg.ShockProbability {
				set.ShockAmounts[t][p] = shockSize.Rand()
			}
		}
	}

	g.log.Debug().
		Int("months", months).
		Int("paths", paths).
		Uint64("seed", g.cfg.Seed).
		Msg("Generated economic scenario set")

	return set, nil
}

// correlate computes z = L·raw for the lower-triangular Cholesky factor.
func correlate(lower *mat.TriDense, raw, z []float64) {
	for i := 0; i < numFactors; i++ {
		sum := 0.0
		for j := 0; j <= i; j++ {
			sum += lower.At(i, j) * raw[j]
		}
		z[i] = sum
	}
}

func newMatrix(rows, cols int) [][]float64 {
	backing := make([]float64, rows*cols)
	out := make([][]float64, rows)
	for i := range out {
		out[i] = backing[i*cols : (i+1)*cols]
	}
	return out
}
