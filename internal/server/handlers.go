package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/fincast/fincast/internal/domain"
	"github.com/fincast/fincast/internal/modules/planning"
	"github.com/fincast/fincast/internal/modules/runs"
	"github.com/fincast/fincast/internal/modules/scenario"
	"github.com/fincast/fincast/internal/modules/simulation"
)

// batchRequest is the shared request body for simulation-backed endpoints:
// an initial portfolio plus batch configuration. Years is a convenience
// alternative to Config.Months; omitted configuration falls back to server
// defaults.
type batchRequest struct {
	Portfolio *domain.Portfolio `json:"portfolio"`
	Years     int               `json:"years,omitempty"`
	Config    simulation.Config `json:"config"`

	// FilingStatus derives Config.TaxRate from the progressive bracket math
	// when the rate itself is not given.
	FilingStatus planning.FilingStatus `json:"filing_status,omitempty"`
}

// normalize fills defaults and returns the portfolio and effective config.
func (s *Server) normalize(req *batchRequest) (*domain.Portfolio, simulation.Config, error) {
	cfg := req.Config

	if req.Portfolio == nil || len(req.Portfolio.Assets) == 0 {
		return nil, cfg, errBadRequest("portfolio with at least a cash account is required")
	}

	// Decoding severs the pointer tie between a property and its mortgage
	// in the liability list; relink by name before any accounting runs.
	req.Portfolio.LinkMortgages()

	if cfg.Months == 0 {
		years := req.Years
		if years <= 0 {
			years = 30
		}
		cfg.Months = years * 12
	}
	if cfg.Paths == 0 {
		cfg.Paths = s.cfg.DefaultPaths
	}
	if cfg.Paths > s.cfg.MaxPaths {
		cfg.Paths = s.cfg.MaxPaths
	}
	if cfg.Workers == 0 {
		cfg.Workers = s.cfg.Workers
	}

	// An all-zero scenario block means "use baseline assumptions".
	if cfg.Scenario.MarketVolatility == 0 && cfg.Scenario.ExpectedMarketReturn == 0 {
		seed := cfg.Scenario.Seed
		cfg.Scenario = scenario.DefaultConfig()
		if seed != 0 {
			cfg.Scenario.Seed = seed
		}
	}

	if cfg.TaxRate == 0 && req.FilingStatus != "" {
		annualGross := 0.0
		for _, inc := range req.Portfolio.Incomes {
			annualGross += inc.Monthly * 12
		}
		rate, err := planning.EffectiveTaxRate(annualGross, req.FilingStatus)
		if err != nil {
			return nil, cfg, errBadRequest(err.Error())
		}
		cfg.TaxRate = rate
	}

	return req.Portfolio, cfg, nil
}

type simulateResponse struct {
	RunID   string             `json:"run_id,omitempty"`
	Outlook simulation.Outlook `json:"outlook"`
	Bands   []simulation.Band  `json:"bands"`
}

func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	port, cfg, err := s.normalize(&req)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	results, err := s.orch.Run(port, cfg)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	outlook := results.Outlook()
	resp := simulateResponse{
		Outlook: outlook,
		Bands:   results.PercentileBands(),
	}

	// Persist the run summary; a storage failure degrades to an unsaved run.
	if s.runs != nil {
		configJSON, _ := json.Marshal(cfg)
		run, err := s.runs.Create(&runs.Run{
			Months:         cfg.Months,
			Paths:          cfg.Paths,
			Seed:           cfg.Scenario.Seed,
			ConfigJSON:     string(configJSON),
			SuccessRate:    outlook.SuccessRate,
			MedianNetWorth: outlook.MedianNetWorth,
			Pessimistic:    outlook.Pessimistic,
			Optimistic:     outlook.Optimistic,
		})
		if err != nil {
			s.log.Error().Err(err).Msg("Failed to persist run summary")
		} else {
			resp.RunID = run.ID
		}
	}

	s.respondJSON(w, http.StatusOK, resp)
}

type goalSeekRequest struct {
	batchRequest
	Goal planning.GoalSeekRequest `json:"goal"`
}

func (s *Server) handleGoalSeek(w http.ResponseWriter, r *http.Request) {
	var req goalSeekRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	port, cfg, err := s.normalize(&req.batchRequest)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.planner.SolveSpendTarget(port, cfg, req.Goal)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, result)
}

type multiGoalRequest struct {
	batchRequest
	Goals planning.MultiGoalRequest `json:"goal_set"`
}

func (s *Server) handleMultiGoal(w http.ResponseWriter, r *http.Request) {
	var req multiGoalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	port, cfg, err := s.normalize(&req.batchRequest)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.planner.SolveMultiGoal(port, cfg, req.Goals)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, result)
}

type sensitivityRequest struct {
	batchRequest
	Factors      []string `json:"factors"`
	Perturbation float64  `json:"perturbation,omitempty"`
	InnerPaths   int      `json:"inner_paths,omitempty"`
}

func (s *Server) handleSensitivity(w http.ResponseWriter, r *http.Request) {
	var req sensitivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	port, cfg, err := s.normalize(&req.batchRequest)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	impacts, err := s.planner.Sensitivity(port, cfg, req.Factors, req.Perturbation, req.InnerPaths)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]any{"impacts": impacts})
}

type impactRequest struct {
	batchRequest
	Purchase   domain.PurchaseAsset `json:"purchase"`
	Month      int                  `json:"month"`
	InnerPaths int                  `json:"inner_paths,omitempty"`
}

func (s *Server) handleImpact(w http.ResponseWriter, r *http.Request) {
	var req impactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	port, cfg, err := s.normalize(&req.batchRequest)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.planner.PurchaseImpact(port, cfg, req.Purchase, req.Month, req.InnerPaths)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, result)
}

type taxNetRequest struct {
	Gross        float64               `json:"gross"`
	FilingStatus planning.FilingStatus `json:"filing_status"`
}

func (s *Server) handleTaxNet(w http.ResponseWriter, r *http.Request) {
	var req taxNetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Gross < 0 {
		s.respondError(w, http.StatusBadRequest, "gross income must be >= 0")
		return
	}

	net, err := planning.AnnualNet(req.Gross, req.FilingStatus)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	rate, _ := planning.EffectiveTaxRate(req.Gross, req.FilingStatus)

	s.respondJSON(w, http.StatusOK, map[string]any{
		"gross":          req.Gross,
		"annual_net":     net,
		"effective_rate": rate,
	})
}

func (s *Server) handleRecentRuns(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}

	if s.runs == nil {
		s.respondJSON(w, http.StatusOK, map[string]any{"runs": []runs.Run{}})
		return
	}

	recent, err := s.runs.GetRecent(limit)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if recent == nil {
		recent = []runs.Run{}
	}

	s.respondJSON(w, http.StatusOK, map[string]any{"runs": recent})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

type requestError string

func (e requestError) Error() string { return string(e) }

func errBadRequest(msg string) error { return requestError(msg) }

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode response")
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, msg string) {
	s.respondJSON(w, status, map[string]string{"error": msg})
}
