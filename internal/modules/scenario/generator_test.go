package scenario

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(seed uint64) Config {
	cfg := DefaultConfig()
	cfg.Seed = seed
	return cfg
}

func TestGenerateShapes(t *testing.T) {
	gen, err := NewGenerator(testConfig(1), zerolog.Nop())
	require.NoError(t, err)

	set, err := gen.Generate(24, 10)
	require.NoError(t, err)

	assert.Equal(t, 24, set.Months)
	assert.Equal(t, 10, set.Paths)

	for _, matrix := range [][][]float64{
		set.MarketReturns, set.Inflation, set.InterestRates,
		set.HousingGrowth, set.SalaryGrowth, set.ShockAmounts,
	} {
		require.Len(t, matrix, 24)
		for _, row := range matrix {
			require.Len(t, row, 10)
		}
	}
}

func TestGenerateReproducible(t *testing.T) {
	genA, err := NewGenerator(testConfig(99), zerolog.Nop())
	require.NoError(t, err)
	genB, err := NewGenerator(testConfig(99), zerolog.Nop())
	require.NoError(t, err)

	setA, err := genA.Generate(36, 20)
	require.NoError(t, err)
	setB, err := genB.Generate(36, 20)
	require.NoError(t, err)

	for t1 := 0; t1 < 36; t1++ {
		assert.Equal(t, setA.MarketReturns[t1], setB.MarketReturns[t1])
		assert.Equal(t, setA.Inflation[t1], setB.Inflation[t1])
		assert.Equal(t, setA.InterestRates[t1], setB.InterestRates[t1])
		assert.Equal(t, setA.ShockAmounts[t1], setB.ShockAmounts[t1])
	}
}

func TestGenerateSeedsDiffer(t *testing.T) {
	genA, err := NewGenerator(testConfig(1), zerolog.Nop())
	require.NoError(t, err)
	genB, err := NewGenerator(testConfig(2), zerolog.Nop())
	require.NoError(t, err)

	setA, err := genA.Generate(12, 5)
	require.NoError(t, err)
	setB, err := genB.Generate(12, 5)
	require.NoError(t, err)

	assert.NotEqual(t, setA.MarketReturns[0], setB.MarketReturns[0])
}

func TestInterestRatesNeverNegative(t *testing.T) {
	cfg := testConfig(7)
	cfg.BaseInterestRate = 0.001 // start near the floor

	gen, err := NewGenerator(cfg, zerolog.Nop())
	require.NoError(t, err)

	set, err := gen.Generate(120, 50)
	require.NoError(t, err)

	for _, row := range set.InterestRates {
		for _, rate := range row {
			assert.GreaterOrEqual(t, rate, 0.0)
		}
	}
}

func TestShockBounds(t *testing.T) {
	cfg := testConfig(3)
	cfg.ShockProbability = 1.0
	cfg.ShockMin = 5000
	cfg.ShockMax = 20000

	gen, err := NewGenerator(cfg, zerolog.Nop())
	require.NoError(t, err)

	set, err := gen.Generate(12, 10)
	require.NoError(t, err)

	for _, row := range set.ShockAmounts {
		for _, shock := range row {
			assert.GreaterOrEqual(t, shock, 5000.0)
			assert.LessOrEqual(t, shock, 20000.0)
		}
	}
}

func TestNoShocksAtZeroProbability(t *testing.T) {
	cfg := testConfig(3)
	cfg.ShockProbability = 0

	gen, err := NewGenerator(cfg, zerolog.Nop())
	require.NoError(t, err)

	set, err := gen.Generate(60, 10)
	require.NoError(t, err)

	for _, row := range set.ShockAmounts {
		for _, shock := range row {
			assert.Zero(t, shock)
		}
	}
}

func TestNonPositiveDefiniteCorrelation(t *testing.T) {
	cfg := testConfig(1)
	cfg.Correlation = [][]float64{
		{1.0, 1.5, 0, 0, 0}, // |corr| > 1 cannot be factorized
		{1.5, 1.0, 0, 0, 0},
		{0, 0, 1.0, 0, 0},
		{0, 0, 0, 1.0, 0},
		{0, 0, 0, 0, 1.0},
	}

	_, err := NewGenerator(cfg, zerolog.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "positive definite")
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults are valid", mutate: func(c *Config) {}},
		{name: "negative volatility", mutate: func(c *Config) { c.MarketVolatility = -0.1 }, wantErr: true},
		{name: "shock probability above one", mutate: func(c *Config) { c.ShockProbability = 1.5 }, wantErr: true},
		{name: "inverted shock range", mutate: func(c *Config) { c.ShockMin = 100; c.ShockMax = 50 }, wantErr: true},
		{name: "wrong correlation size", mutate: func(c *Config) { c.Correlation = [][]float64{{1}} }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPathExtraction(t *testing.T) {
	gen, err := NewGenerator(testConfig(5), zerolog.Nop())
	require.NoError(t, err)

	set, err := gen.Generate(12, 3)
	require.NoError(t, err)

	path := set.Path(1)
	require.Len(t, path.MarketReturns, 12)
	for tm := 0; tm < 12; tm++ {
		assert.Equal(t, set.MarketReturns[tm][1], path.MarketReturns[tm])
		assert.Equal(t, set.Inflation[tm][1], path.Inflation[tm])
	}
}
