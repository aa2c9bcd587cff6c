package simulation

import (
	"fmt"

	"github.com/fincast/fincast/internal/domain"
	"github.com/fincast/fincast/internal/modules/scenario"
	"github.com/fincast/fincast/pkg/formulas"
)

// Config describes one Monte Carlo batch. It is treated as immutable by the
// orchestrator; every path works on its own copy of the mutable parts.
type Config struct {
	Months int    `json:"months"`
	Paths  int    `json:"paths"`
	Seed   uint64 `json:"seed"`

	// Simplified effective tax rate applied to gross income.
	TaxRate float64 `json:"tax_rate"`

	// InitialRent is the base monthly rent, inflation-indexed like essential
	// spend. Zero when the household owns its home.
	InitialRent float64 `json:"initial_rent"`

	// SweepSurplus enables the optional cash-management variant: cash above
	// six months of burn is swept into the first liquid investment.
	SweepSurplus bool `json:"sweep_surplus"`

	Events []domain.ScheduledEvent `json:"events"`

	Scenario scenario.Config `json:"scenario"`

	// RecordHistory keeps full per-path step snapshots for time-sliced
	// metrics (goal horizon sampling, reporting).
	RecordHistory bool `json:"record_history"`

	// Workers bounds parallel path execution; zero means one worker per CPU.
	Workers int `json:"workers,omitempty"`
}

// Validate reports configuration errors. These fail fast, before any
// simulation work begins.
func (c *Config) Validate() error {
	if c.Months <= 0 {
		return fmt.Errorf("horizon must be positive, got %d months", c.Months)
	}
	if c.Paths <= 0 {
		return fmt.Errorf("path count must be positive, got %d", c.Paths)
	}
	if c.TaxRate < 0 || c.TaxRate >= 1 {
		return fmt.Errorf("tax rate must be in [0, 1), got %f", c.TaxRate)
	}
	if c.InitialRent < 0 {
		return fmt.Errorf("initial rent must be >= 0, got %f", c.InitialRent)
	}
	for i := range c.Events {
		if err := c.Events[i].Validate(); err != nil {
			return fmt.Errorf("event %d: %w", i, err)
		}
	}
	if err := c.Scenario.Validate(); err != nil {
		return err
	}
	return nil
}

// StepSnapshot records one path's state at the end of a month.
type StepSnapshot struct {
	Month       int     `json:"month"`
	Year        float64 `json:"year"`
	NetWorth    float64 `json:"net_worth"`
	Cash        float64 `json:"cash"`
	Investments float64 `json:"investments"`
	Debt        float64 `json:"debt"`
}

// PathResult is the outcome of advancing one path across the full horizon.
type PathResult struct {
	NetWorth      []float64
	Failed        bool
	FailureReason string
	History       []StepSnapshot
}

// Results aggregates a Monte Carlo batch: a [months][paths] net-worth matrix,
// a per-path failure vector and, optionally, full per-path histories.
type Results struct {
	Months int `json:"months"`
	Paths  int `json:"paths"`

	NetWorth  [][]float64      `json:"net_worth"`
	Failures  []bool           `json:"failures"`
	Histories [][]StepSnapshot `json:"histories,omitempty"`
}

// FinalNetWorth returns the last row of the matrix: one terminal net worth
// per path.
func (r *Results) FinalNetWorth() []float64 {
	return r.NetWorth[r.Months-1]
}

// NetWorthAt returns the per-path net worth at the given month, clamped to
// the simulated horizon.
func (r *Results) NetWorthAt(month int) []float64 {
	if month < 0 {
		month = 0
	}
	if month >= r.Months {
		month = r.Months - 1
	}
	return r.NetWorth[month]
}

// SuccessProbability is the fraction of paths whose value at the given month
// meets or exceeds target.
func (r *Results) SuccessProbability(values []float64, target float64) float64 {
	if len(values) == 0 {
		return 0
	}
	hits := 0
	for _, v := range values {
		if v >= target {
			hits++
		}
	}
	return float64(hits) / float64(len(values))
}

// Outlook is the aggregate summary exposed at the boundary.
type Outlook struct {
	SuccessRate    float64 `json:"success_rate"`
	MedianNetWorth float64 `json:"median_net_worth"`
	Pessimistic    float64 `json:"pessimistic_p5"`
	Optimistic     float64 `json:"optimistic_p95"`
}

// Outlook summarizes terminal outcomes across paths.
func (r *Results) Outlook() Outlook {
	final := r.FinalNetWorth()
	return Outlook{
		SuccessRate:    formulas.SuccessRate(r.Failures),
		MedianNetWorth: formulas.Median(final),
		Pessimistic:    formulas.Percentile(final, 5),
		Optimistic:     formulas.Percentile(final, 95),
	}
}

// Band is one month of the net-worth percentile envelope.
type Band struct {
	Month int     `json:"month"`
	P5    float64 `json:"p5"`
	P50   float64 `json:"p50"`
	P95   float64 `json:"p95"`
}

// PercentileBands computes the per-month percentile envelope used by
// reporting consumers.
func (r *Results) PercentileBands() []Band {
	bands := make([]Band, r.Months)
	for t := 0; t < r.Months; t++ {
		row := r.NetWorth[t]
		bands[t] = Band{
			Month: t,
			P5:    formulas.Percentile(row, 5),
			P50:   formulas.Median(row),
			P95:   formulas.Percentile(row, 95),
		}
	}
	return bands
}
