package simulation

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/rs/zerolog"

	"github.com/fincast/fincast/internal/domain"
	"github.com/fincast/fincast/internal/modules/scenario"
)

// Orchestrator runs N independent simulation paths and aggregates results.
// Paths share nothing mutable: each gets a deep-copied portfolio and its own
// column of the pregenerated scenario set, so execution order cannot affect
// the outcome and results are reproducible for a fixed seed.
type Orchestrator struct {
	log zerolog.Logger
}

// NewOrchestrator creates a Monte Carlo orchestrator.
func NewOrchestrator(log zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		log: log.With().Str("component", "orchestrator").Logger(),
	}
}

// Run executes the full batch. Configuration errors are returned before any
// simulation work; per-path insolvencies are absorbed into the results and
// never abort the batch.
func (o *Orchestrator) Run(initial *domain.Portfolio, cfg Config) (*Results, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid simulation config: %w", err)
	}
	if initial == nil || len(initial.Assets) == 0 {
		return nil, fmt.Errorf("initial portfolio must contain at least a cash account")
	}

	// The batch-level seed, when set, overrides the scenario seed.
	if cfg.Seed != 0 {
		cfg.Scenario.Seed = cfg.Seed
	}

	gen, err := scenario.NewGenerator(cfg.Scenario, o.log)
	if err != nil {
		return nil, err
	}
	set, err := gen.Generate(cfg.Months, cfg.Paths)
	if err != nil {
		return nil, err
	}

	results := &Results{
		Months:   cfg.Months,
		Paths:    cfg.Paths,
		NetWorth: make([][]float64, cfg.Months),
		Failures: make([]bool, cfg.Paths),
	}
	for t := range results.NetWorth {
		results.NetWorth[t] = make([]float64, cfg.Paths)
	}
	if cfg.RecordHistory {
		results.Histories = make([][]StepSnapshot, cfg.Paths)
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	var wg sync.WaitGroup
	sem := make(chan struct{}, workers)

	for p := 0; p < cfg.Paths; p++ {
		wg.Add(1)
		sem <- struct{}{}

		go func(p int) {
			defer wg.Done()
			defer func() { <-sem }()

			eng := newEngine(initial.Clone(), &cfg)
			pathResult := eng.run(set.Path(p), cfg.Months, cfg.RecordHistory)

			// Each goroutine writes only its own column and slot.
			for t := 0; t < cfg.Months; t++ {
				results.NetWorth[t][p] = pathResult.NetWorth[t]
			}
			results.Failures[p] = pathResult.Failed
			if cfg.RecordHistory {
				results.Histories[p] = pathResult.History
			}
		}(p)
	}

	wg.Wait()

	failures := 0
	for _, f := range results.Failures {
		if f {
			failures++
		}
	}
	o.log.Info().
		Int("paths", cfg.Paths).
		Int("months", cfg.Months).
		Int("failures", failures).
		Msg("Monte Carlo batch complete")

	return results, nil
}
