package planning

import (
	"fmt"

	"github.com/fincast/fincast/internal/domain"
	"github.com/fincast/fincast/internal/modules/scenario"
	"github.com/fincast/fincast/internal/modules/simulation"
	"github.com/fincast/fincast/pkg/formulas"
)

// Factors the sensitivity analysis can perturb.
const (
	FactorInflation    = "inflation"
	FactorMarketReturn = "market_return"
	FactorInterestRate = "interest_rate"
	FactorSalaryMerit  = "salary_merit"
)

// DefaultPerturbation shifts a factor's mean by ±20%.
const DefaultPerturbation = 0.2

// FactorImpact is a finite-difference sensitivity estimate: the change in
// median terminal net worth between the up- and down-perturbed batches.
type FactorImpact struct {
	Factor     string  `json:"factor"`
	MedianUp   float64 `json:"median_up"`
	MedianDown float64 `json:"median_down"`
	Impact     float64 `json:"impact"`
}

// Sensitivity perturbs each named factor's mean up and down by the given
// fraction, reruns a reduced-path batch for each side, and reports the delta
// in median terminal net worth. This is a finite-difference estimate, not an
// analytic gradient; results jitter with the inner path count.
func (s *Service) Sensitivity(
	port *domain.Portfolio,
	cfg simulation.Config,
	factors []string,
	perturbation float64,
	innerPaths int,
) ([]FactorImpact, error) {
	if perturbation <= 0 {
		perturbation = DefaultPerturbation
	}
	if len(factors) == 0 {
		factors = []string{FactorInflation, FactorMarketReturn}
	}

	inner := innerConfig(cfg, innerPaths, false)

	impacts := make([]FactorImpact, 0, len(factors))
	for _, factor := range factors {
		up := inner
		down := inner

		var err error
		up.Scenario, err = perturbFactor(inner.Scenario, factor, 1.0+perturbation)
		if err != nil {
			return nil, err
		}
		down.Scenario, _ = perturbFactor(inner.Scenario, factor, 1.0-perturbation)

		medianUp, err := s.medianFinal(port, up)
		if err != nil {
			return nil, fmt.Errorf("factor %s up: %w", factor, err)
		}
		medianDown, err := s.medianFinal(port, down)
		if err != nil {
			return nil, fmt.Errorf("factor %s down: %w", factor, err)
		}

		impacts = append(impacts, FactorImpact{
			Factor:     factor,
			MedianUp:   medianUp,
			MedianDown: medianDown,
			Impact:     medianUp - medianDown,
		})
	}

	return impacts, nil
}

func (s *Service) medianFinal(port *domain.Portfolio, cfg simulation.Config) (float64, error) {
	res, err := s.orch.Run(port.Clone(), cfg)
	if err != nil {
		return 0, err
	}
	return formulas.Median(res.FinalNetWorth()), nil
}

func perturbFactor(cfg scenario.Config, factor string, multiplier float64) (scenario.Config, error) {
	out := cfg
	switch factor {
	case FactorInflation:
		out.BaseInflation *= multiplier
	case FactorMarketReturn:
		out.ExpectedMarketReturn *= multiplier
	case FactorInterestRate:
		out.BaseInterestRate *= multiplier
	case FactorSalaryMerit:
		out.SalaryMerit *= multiplier
	default:
		return out, fmt.Errorf("unknown sensitivity factor %q", factor)
	}
	return out, nil
}
