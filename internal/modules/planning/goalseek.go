package planning

import (
	"fmt"

	"github.com/fincast/fincast/internal/domain"
	"github.com/fincast/fincast/internal/modules/simulation"
)

// Default search bracket on the spend lever, in dollars per month.
// Negative deltas cut spend (save more), positive deltas add spend.
const (
	DefaultBracketLow  = -5000.0
	DefaultBracketHigh = 5000.0

	// bisectTolerance ends the search once the bracket narrows to this many
	// dollars on the lever.
	bisectTolerance     = 50.0
	maxBisectIterations = 40
)

// GoalSeekRequest asks: by how much must monthly essential spend change so
// that final net worth reaches TargetNetWorth with at least Probability?
type GoalSeekRequest struct {
	TargetNetWorth float64 `json:"target_net_worth"`
	Probability    float64 `json:"probability"`

	// Bracket bounds; both zero selects the defaults.
	BracketLow  float64 `json:"bracket_low,omitempty"`
	BracketHigh float64 `json:"bracket_high,omitempty"`

	InnerPaths int `json:"inner_paths,omitempty"`
}

func (r *GoalSeekRequest) bracket() (float64, float64) {
	if r.BracketLow == 0 && r.BracketHigh == 0 {
		return DefaultBracketLow, DefaultBracketHigh
	}
	return r.BracketLow, r.BracketHigh
}

// Validate reports configuration errors: these fail fast, unlike an
// unreachable goal which is an expected outcome.
func (r *GoalSeekRequest) Validate() error {
	if r.Probability <= 0 || r.Probability > 1 {
		return fmt.Errorf("required probability must be in (0, 1], got %f", r.Probability)
	}
	lo, hi := r.bracket()
	if lo >= hi {
		return fmt.Errorf("search bracket is empty or inverted: [%f, %f]", lo, hi)
	}
	return nil
}

// GoalSeekResult carries the resolved lever value or an explicit infeasible
// outcome plus the best value found. "Not achievable as asked" is an answer,
// never an error.
type GoalSeekResult struct {
	Feasible            bool    `json:"feasible"`
	SpendDelta          float64 `json:"spend_delta"`
	AchievedProbability float64 `json:"achieved_probability"`
	Iterations          int     `json:"iterations"`
	Message             string  `json:"message,omitempty"`
}

// SolveSpendTarget finds, by bisection over a bounded bracket, the largest
// spend delta that still reaches the target net worth at the required
// probability. Success probability is monotone non-increasing in the delta,
// so the bracket endpoints decide feasibility: if the objective does not
// change sign across the bracket the goal is reported unreachable (or free),
// with the best endpoint as the answer.
func (s *Service) SolveSpendTarget(
	port *domain.Portfolio,
	cfg simulation.Config,
	req GoalSeekRequest,
) (*GoalSeekResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	inner := innerConfig(cfg, req.InnerPaths, false)
	lo, hi := req.bracket()

	probAt := func(delta float64) (float64, error) {
		res, err := s.evaluateSpendDelta(port, inner, delta)
		if err != nil {
			return 0, err
		}
		return res.SuccessProbability(res.FinalNetWorth(), req.TargetNetWorth), nil
	}

	probLo, err := probAt(lo)
	if err != nil {
		return nil, err
	}
	probHi, err := probAt(hi)
	if err != nil {
		return nil, err
	}

	// Even the deepest cut in the bracket misses the target.
	if probLo < req.Probability {
		s.log.Info().
			Float64("target", req.TargetNetWorth).
			Float64("best_probability", probLo).
			Msg("Goal unreachable within bracket")
		return &GoalSeekResult{
			Feasible:            false,
			SpendDelta:          lo,
			AchievedProbability: probLo,
			Message:             "goal unreachable within constraints; best effort at bracket edge",
		}, nil
	}

	// The goal holds across the whole bracket; no spending change needed.
	if probHi >= req.Probability {
		return &GoalSeekResult{
			Feasible:            true,
			SpendDelta:          hi,
			AchievedProbability: probHi,
			Message:             "goal already met at the upper bracket edge",
		}, nil
	}

	// Invariant: prob(lo) >= required > prob(hi).
	iterations := 0
	achievedLo := probLo
	for i := 0; i < maxBisectIterations && hi-lo > bisectTolerance; i++ {
		mid := (lo + hi) / 2.0
		probMid, err := probAt(mid)
		if err != nil {
			return nil, err
		}

		if probMid >= req.Probability {
			lo = mid
			achievedLo = probMid
		} else {
			hi = mid
		}
		iterations = i + 1
	}

	s.log.Info().
		Float64("spend_delta", lo).
		Float64("achieved_probability", achievedLo).
		Int("iterations", iterations).
		Msg("Goal seek converged")

	return &GoalSeekResult{
		Feasible:            true,
		SpendDelta:          lo,
		AchievedProbability: achievedLo,
		Iterations:          iterations,
	}, nil
}
