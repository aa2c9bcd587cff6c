package planning

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/fincast/fincast/internal/domain"
	"github.com/fincast/fincast/internal/modules/simulation"
	"github.com/fincast/fincast/pkg/formulas"
)

// defaultInnerPaths bounds the path count of nested simulation calls. The
// outer searches are numeric and tolerate the extra noise; full-size batches
// inside an optimization loop are wasted work.
const defaultInnerPaths = 200

// Service inverts the simulation: it wraps the orchestrator behind objective
// functions and searches lever values that satisfy probability-weighted
// targets. All inner evaluations pin the batch seed so each search sees a
// deterministic objective.
type Service struct {
	orch *simulation.Orchestrator
	log  zerolog.Logger
}

// NewService creates a planning service.
func NewService(orch *simulation.Orchestrator, log zerolog.Logger) *Service {
	return &Service{
		orch: orch,
		log:  log.With().Str("component", "planning").Logger(),
	}
}

// innerConfig derives a reduced-path configuration for nested runs. The seed
// is left untouched: identical for every inner evaluation of one search.
func innerConfig(cfg simulation.Config, paths int, recordHistory bool) simulation.Config {
	inner := cfg
	if paths <= 0 {
		paths = defaultInnerPaths
	}
	if paths < inner.Paths {
		inner.Paths = paths
	}
	inner.RecordHistory = recordHistory
	return inner
}

// evaluateSpendDelta runs a batch with the monthly essential spend shifted by
// delta dollars, floored at zero.
func (s *Service) evaluateSpendDelta(
	port *domain.Portfolio,
	cfg simulation.Config,
	delta float64,
) (*simulation.Results, error) {
	trial := port.Clone()
	trial.EssentialSpend = math.Max(0, trial.EssentialSpend+delta)
	return s.orch.Run(trial, cfg)
}

// ImpactResult compares outcomes with and without a candidate purchase.
type ImpactResult struct {
	MedianBase      float64 `json:"median_base"`
	MedianWith      float64 `json:"median_with_purchase"`
	MedianDelta     float64 `json:"median_delta"`
	FailureRateBase float64 `json:"failure_rate_base"`
	FailureRateWith float64 `json:"failure_rate_with_purchase"`
}

// PurchaseImpact runs reduced batches with and without the purchase scheduled
// at the given month and reports the difference in median terminal net worth
// and failure rate.
func (s *Service) PurchaseImpact(
	port *domain.Portfolio,
	cfg simulation.Config,
	purchase domain.PurchaseAsset,
	month int,
	innerPaths int,
) (*ImpactResult, error) {
	inner := innerConfig(cfg, innerPaths, false)

	base, err := s.orch.Run(port.Clone(), inner)
	if err != nil {
		return nil, fmt.Errorf("base scenario: %w", err)
	}

	withCfg := inner
	withCfg.Events = append(append([]domain.ScheduledEvent{}, inner.Events...), domain.ScheduledEvent{
		Month:    month,
		Kind:     domain.EventPurchaseAsset,
		Purchase: &purchase,
	})
	withPurchase, err := s.orch.Run(port.Clone(), withCfg)
	if err != nil {
		return nil, fmt.Errorf("purchase scenario: %w", err)
	}

	medianBase := formulas.Median(base.FinalNetWorth())
	medianWith := formulas.Median(withPurchase.FinalNetWorth())

	result := &ImpactResult{
		MedianBase:      medianBase,
		MedianWith:      medianWith,
		MedianDelta:     medianWith - medianBase,
		FailureRateBase: 1.0 - formulas.SuccessRate(base.Failures),
		FailureRateWith: 1.0 - formulas.SuccessRate(withPurchase.Failures),
	}

	s.log.Info().
		Float64("median_delta", result.MedianDelta).
		Float64("failure_rate_with", result.FailureRateWith).
		Msg("Purchase impact analysis complete")

	return result, nil
}
