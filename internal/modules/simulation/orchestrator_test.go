package simulation

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fincast/fincast/internal/domain"
	"github.com/fincast/fincast/internal/modules/scenario"
)

func testPortfolio() *domain.Portfolio {
	return &domain.Portfolio{
		Assets: []*domain.Asset{
			{Name: "Cash", Value: 30000, Liquid: true, MarketBeta: 0},
			{Name: "Stocks", Value: 100000, Liquid: true, MarketBeta: 1},
		},
		Incomes:        []*domain.IncomeStream{{Name: "Salary", Monthly: 6000}},
		EssentialSpend: 3000,
	}
}

func testBatchConfig(seed uint64) Config {
	scn := scenario.DefaultConfig()
	scn.Seed = seed
	return Config{
		Months:   60,
		Paths:    40,
		TaxRate:  0.25,
		Scenario: scn,
	}
}

func TestRunReproducible(t *testing.T) {
	orch := NewOrchestrator(zerolog.Nop())

	resA, err := orch.Run(testPortfolio(), testBatchConfig(42))
	require.NoError(t, err)
	resB, err := orch.Run(testPortfolio(), testBatchConfig(42))
	require.NoError(t, err)

	for tm := 0; tm < resA.Months; tm++ {
		require.Equal(t, resA.NetWorth[tm], resB.NetWorth[tm])
	}
	assert.Equal(t, resA.Failures, resB.Failures)
}

func TestRunWorkerCountInvariance(t *testing.T) {
	orch := NewOrchestrator(zerolog.Nop())

	cfgSerial := testBatchConfig(7)
	cfgSerial.Workers = 1
	cfgParallel := testBatchConfig(7)
	cfgParallel.Workers = 8

	resSerial, err := orch.Run(testPortfolio(), cfgSerial)
	require.NoError(t, err)
	resParallel, err := orch.Run(testPortfolio(), cfgParallel)
	require.NoError(t, err)

	for tm := 0; tm < resSerial.Months; tm++ {
		require.Equal(t, resSerial.NetWorth[tm], resParallel.NetWorth[tm])
	}
}

func TestRunBatchSeedOverridesScenarioSeed(t *testing.T) {
	orch := NewOrchestrator(zerolog.Nop())

	cfgA := testBatchConfig(1)
	cfgA.Seed = 123
	cfgB := testBatchConfig(2)
	cfgB.Seed = 123

	resA, err := orch.Run(testPortfolio(), cfgA)
	require.NoError(t, err)
	resB, err := orch.Run(testPortfolio(), cfgB)
	require.NoError(t, err)

	assert.Equal(t, resA.NetWorth[0], resB.NetWorth[0])
}

func TestRunValidation(t *testing.T) {
	orch := NewOrchestrator(zerolog.Nop())

	tests := []struct {
		name   string
		port   *domain.Portfolio
		mutate func(*Config)
	}{
		{name: "nil portfolio", port: nil, mutate: func(c *Config) {}},
		{name: "empty portfolio", port: &domain.Portfolio{}, mutate: func(c *Config) {}},
		{name: "zero months", port: testPortfolio(), mutate: func(c *Config) { c.Months = 0 }},
		{name: "zero paths", port: testPortfolio(), mutate: func(c *Config) { c.Paths = 0 }},
		{name: "tax rate of one", port: testPortfolio(), mutate: func(c *Config) { c.TaxRate = 1.0 }},
		{name: "negative rent", port: testPortfolio(), mutate: func(c *Config) { c.InitialRent = -1 }},
		{
			name: "invalid event",
			port: testPortfolio(),
			mutate: func(c *Config) {
				c.Events = []domain.ScheduledEvent{{Month: -1, Kind: domain.EventParamChange}}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testBatchConfig(1)
			tt.mutate(&cfg)
			_, err := orch.Run(tt.port, cfg)
			assert.Error(t, err)
		})
	}
}

func TestRunResultsShape(t *testing.T) {
	orch := NewOrchestrator(zerolog.Nop())

	cfg := testBatchConfig(11)
	cfg.RecordHistory = true

	res, err := orch.Run(testPortfolio(), cfg)
	require.NoError(t, err)

	assert.Equal(t, cfg.Months, res.Months)
	assert.Equal(t, cfg.Paths, res.Paths)
	require.Len(t, res.NetWorth, cfg.Months)
	require.Len(t, res.FinalNetWorth(), cfg.Paths)
	require.Len(t, res.Failures, cfg.Paths)
	require.Len(t, res.Histories, cfg.Paths)
	for _, history := range res.Histories {
		require.Len(t, history, cfg.Months)
	}

	bands := res.PercentileBands()
	require.Len(t, bands, cfg.Months)
	for _, band := range bands {
		assert.LessOrEqual(t, band.P5, band.P50)
		assert.LessOrEqual(t, band.P50, band.P95)
	}
}

func TestOutlookSummary(t *testing.T) {
	res := &Results{
		Months:   1,
		Paths:    4,
		NetWorth: [][]float64{{100, 200, 300, 400}},
		Failures: []bool{false, false, true, false},
	}

	outlook := res.Outlook()
	assert.InDelta(t, 0.75, outlook.SuccessRate, 1e-9)
	// Empirical quantile: the smallest value with cumulative weight >= 0.5.
	assert.InDelta(t, 200.0, outlook.MedianNetWorth, 1e-9)
}

func TestSuccessProbability(t *testing.T) {
	res := &Results{}
	assert.InDelta(t, 0.5, res.SuccessProbability([]float64{50, 150, 250, 90}, 100), 1e-9)
	assert.Zero(t, res.SuccessProbability(nil, 100))
}

func TestNetWorthAtClampsMonth(t *testing.T) {
	res := &Results{
		Months:   2,
		Paths:    1,
		NetWorth: [][]float64{{10}, {20}},
	}

	assert.Equal(t, []float64{10}, res.NetWorthAt(-5))
	assert.Equal(t, []float64{20}, res.NetWorthAt(99))
}
