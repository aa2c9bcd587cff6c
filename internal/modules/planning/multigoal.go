package planning

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/optimize"

	"github.com/fincast/fincast/internal/domain"
	"github.com/fincast/fincast/internal/modules/simulation"
)

// Metrics a goal may be measured against.
const (
	MetricNetWorth = "net_worth"
	MetricCash     = "cash"
)

const (
	// regularizationWeight penalizes lever magnitude so the search prefers
	// the smallest lifestyle change among equally valid solutions.
	regularizationWeight = 1e-4
	regularizationScale  = 1000.0

	// goalsMetThreshold on the probability-shortfall sum, below which the
	// goals count as satisfied.
	goalsMetThreshold = 1e-3

	// coarseScanPoints seeds the minimizer from a grid over the bracket.
	coarseScanPoints = 21
)

// Goal is one probability-weighted target: a metric sampled at a horizon
// year must reach Target with at least Probability.
type Goal struct {
	Metric      string  `json:"metric"`
	Target      float64 `json:"target"`
	Probability float64 `json:"probability"`
	HorizonYear int     `json:"horizon_year"`
}

// Validate reports configuration errors on a single goal.
func (g *Goal) Validate() error {
	switch g.Metric {
	case MetricNetWorth, MetricCash:
	default:
		return fmt.Errorf("unknown goal metric %q", g.Metric)
	}
	if g.Probability <= 0 || g.Probability > 1 {
		return fmt.Errorf("goal probability must be in (0, 1], got %f", g.Probability)
	}
	if g.HorizonYear <= 0 {
		return fmt.Errorf("goal horizon year must be positive, got %d", g.HorizonYear)
	}
	return nil
}

// MultiGoalRequest searches one spend lever against several goals at once.
type MultiGoalRequest struct {
	Goals []Goal `json:"goals"`

	BracketLow  float64 `json:"bracket_low,omitempty"`
	BracketHigh float64 `json:"bracket_high,omitempty"`
	InnerPaths  int     `json:"inner_paths,omitempty"`
}

func (r *MultiGoalRequest) bracket() (float64, float64) {
	if r.BracketLow == 0 && r.BracketHigh == 0 {
		return DefaultBracketLow, DefaultBracketHigh
	}
	return r.BracketLow, r.BracketHigh
}

// Validate reports configuration errors.
func (r *MultiGoalRequest) Validate() error {
	if len(r.Goals) == 0 {
		return fmt.Errorf("at least one goal is required")
	}
	for i := range r.Goals {
		if err := r.Goals[i].Validate(); err != nil {
			return fmt.Errorf("goal %d: %w", i, err)
		}
	}
	lo, hi := r.bracket()
	if lo >= hi {
		return fmt.Errorf("search bracket is empty or inverted: [%f, %f]", lo, hi)
	}
	return nil
}

// MultiGoalResult reports the best lever found. When the goals cannot all be
// met the result is best-effort with a warning, not an error.
type MultiGoalResult struct {
	GoalsMet   bool      `json:"goals_met"`
	SpendDelta float64   `json:"spend_delta"`
	Penalty    float64   `json:"penalty"`
	Achieved   []float64 `json:"achieved_probabilities"`
	Warning    string    `json:"warning,omitempty"`
}

// SolveMultiGoal minimizes a scalar penalty over the spend lever:
//
//	penalty(delta) = Σ max(0, required − achieved)² + λ·(delta/scale)²
//
// with each goal's achieved probability measured against its metric at its
// horizon year. The objective is stochastic and non-differentiable, so a
// derivative-free minimizer (Nelder-Mead) refines the best point of a coarse
// grid scan. A near-zero shortfall at the optimum means the goals are met.
func (s *Service) SolveMultiGoal(
	port *domain.Portfolio,
	cfg simulation.Config,
	req MultiGoalRequest,
) (*MultiGoalResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	needCash := false
	for _, g := range req.Goals {
		if g.Metric == MetricCash {
			needCash = true
		}
	}
	inner := innerConfig(cfg, req.InnerPaths, needCash)
	lo, hi := req.bracket()

	shortfallAt := func(delta float64) (shortfall float64, achieved []float64, err error) {
		res, runErr := s.evaluateSpendDelta(port, inner, delta)
		if runErr != nil {
			return 0, nil, runErr
		}

		achieved = make([]float64, len(req.Goals))
		for i, g := range req.Goals {
			values := goalMetricValues(res, g)
			achieved[i] = res.SuccessProbability(values, g.Target)
			if miss := g.Probability - achieved[i]; miss > 0 {
				shortfall += miss * miss
			}
		}
		return shortfall, achieved, nil
	}

	clamp := func(x float64) float64 { return math.Min(hi, math.Max(lo, x)) }

	penaltyAt := func(delta float64) (float64, error) {
		shortfall, _, err := shortfallAt(delta)
		if err != nil {
			return 0, err
		}
		reg := delta / regularizationScale
		return shortfall + regularizationWeight*reg*reg, nil
	}

	// Coarse scan seeds the minimizer and doubles as a robust fallback.
	var runErr error
	bestDelta, bestPenalty := lo, math.Inf(1)
	for i := 0; i < coarseScanPoints; i++ {
		delta := lo + (hi-lo)*float64(i)/float64(coarseScanPoints-1)
		penalty, err := penaltyAt(delta)
		if err != nil {
			return nil, err
		}
		if penalty < bestPenalty {
			bestDelta, bestPenalty = delta, penalty
		}
	}

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			penalty, err := penaltyAt(clamp(x[0]))
			if err != nil {
				runErr = err
				return math.Inf(1)
			}
			return penalty
		},
	}

	if result, err := optimize.Minimize(problem, []float64{bestDelta}, nil, &optimize.NelderMead{}); err == nil && runErr == nil {
		refined := clamp(result.X[0])
		if result.F < bestPenalty {
			bestDelta, bestPenalty = refined, result.F
		}
	}
	if runErr != nil {
		return nil, runErr
	}

	shortfall, achieved, err := shortfallAt(bestDelta)
	if err != nil {
		return nil, err
	}

	out := &MultiGoalResult{
		GoalsMet:   shortfall < goalsMetThreshold,
		SpendDelta: bestDelta,
		Penalty:    bestPenalty,
		Achieved:   achieved,
	}
	if !out.GoalsMet {
		out.Warning = "goals not fully met within constraints; best-effort lever returned"
	}

	s.log.Info().
		Bool("goals_met", out.GoalsMet).
		Float64("spend_delta", out.SpendDelta).
		Float64("penalty", out.Penalty).
		Msg("Multi-goal search complete")

	return out, nil
}

// goalMetricValues samples the goal's metric per path at its horizon year.
func goalMetricValues(res *simulation.Results, g Goal) []float64 {
	month := g.HorizonYear*12 - 1
	if month >= res.Months {
		month = res.Months - 1
	}

	if g.Metric == MetricCash && res.Histories != nil {
		values := make([]float64, len(res.Histories))
		for p, history := range res.Histories {
			if month < len(history) {
				values[p] = history[month].Cash
			}
		}
		return values
	}

	return res.NetWorthAt(month)
}
