package simulation

import (
	"github.com/fincast/fincast/internal/domain"
	"github.com/fincast/fincast/internal/modules/scenario"
)

// engine advances a single path month by month. It owns the path's deep-copied
// portfolio and its mutable per-path parameters, so nothing it touches is
// shared across paths.
type engine struct {
	port *domain.Portfolio

	// Base (month-zero) levels; the cumulative inflation multiplier is
	// applied on top, never recomputed from scratch.
	spendBase float64
	rentBase  float64

	cumInflation float64

	taxRate      float64
	sweepSurplus bool

	events map[int][]domain.ScheduledEvent
}

func newEngine(port *domain.Portfolio, cfg *Config) *engine {
	return &engine{
		port:         port,
		spendBase:    port.EssentialSpend,
		rentBase:     cfg.InitialRent,
		cumInflation: 1.0,
		taxRate:      cfg.TaxRate,
		sweepSurplus: cfg.SweepSurplus,
		events:       eventsByMonth(cfg.Events, cfg.Months),
	}
}

// eventsByMonth indexes the schedule so each event fires at most once, at the
// exact month it names. Events beyond the horizon never fire.
func eventsByMonth(events []domain.ScheduledEvent, months int) map[int][]domain.ScheduledEvent {
	schedule := make(map[int][]domain.ScheduledEvent)
	for _, ev := range events {
		if ev.Month < months {
			schedule[ev.Month] = append(schedule[ev.Month], ev)
		}
	}
	return schedule
}

// run advances the path across the full horizon. After an insolvency the
// remaining months record zero net worth and the state stops advancing.
func (e *engine) run(path *scenario.PathScenario, months int, record bool) PathResult {
	result := PathResult{NetWorth: make([]float64, months)}
	if record {
		result.History = make([]StepSnapshot, 0, months)
	}

	for t := 0; t < months; t++ {
		if e.port.Failed {
			result.NetWorth[t] = 0
			if record {
				result.History = append(result.History, e.snapshot(t, 0))
			}
			continue
		}

		e.step(t, path)

		netWorth := e.port.NetWorth()
		if e.port.Failed {
			netWorth = 0
		}
		result.NetWorth[t] = netWorth
		if record {
			result.History = append(result.History, e.snapshot(t, netWorth))
		}
	}

	result.Failed = e.port.Failed
	result.FailureReason = e.port.FailureReason
	return result
}

// step advances the portfolio by one month. The order of operations is fixed:
// later steps depend on earlier ones within the same month.
func (e *engine) step(t int, path *scenario.PathScenario) {
	// 1. Scheduled events.
	for _, ev := range e.events[t] {
		e.applyEvent(ev)
	}

	// 2. Income, compounding with salary growth.
	grossIncome := 0.0
	for _, inc := range e.port.Incomes {
		inc.Grow(path.SalaryGrowth[t])
		grossIncome += inc.Monthly
	}

	// 3. Inflation-indexed spend and rent, via the cumulative multiplier.
	e.cumInflation *= 1.0 + path.Inflation[t]/12.0
	spend := e.spendBase * e.cumInflation
	rent := 0.0
	if e.rentBase > 0 {
		rent = e.rentBase * e.cumInflation
	}

	// 4. Debt service.
	debtService := 0.0
	for _, l := range e.port.Liabilities {
		interest, principal := l.Service(path.InterestRates[t])
		debtService += interest + principal
	}

	// 5. Property maintenance.
	maintenance := 0.0
	for _, prop := range e.port.Properties {
		maintenance += prop.MonthlyMaintenance()
	}

	// 6. Unforeseen-expense shock, inflation-adjusted.
	shock := 0.0
	if path.ShockAmounts[t] > 0 {
		shock = path.ShockAmounts[t] * e.cumInflation
	}

	// 7. Net cash flow.
	netCash := grossIncome*(1.0-e.taxRate) - (spend + rent + maintenance + debtService + shock)

	// 8. Asset growth: market/risk-free blend for financial assets, housing
	// factor for property.
	for _, a := range e.port.Assets {
		a.Grow(path.MarketReturns[t], path.InterestRates[t])
	}
	for _, prop := range e.port.Properties {
		prop.Grow(path.HousingGrowth[t])
	}

	// 9. Cash management. A deficit beyond what liquid assets can cover is
	// the model's single failure mode.
	cash := e.port.Cash()
	if cash == nil {
		return
	}
	cash.Value += netCash

	if cash.Value < 0 {
		deficit := -cash.Value
		cash.Value = 0
		remaining := CoverDeficit(e.port, deficit)
		if remaining > InsolvencyTolerance {
			e.port.Failed = true
			e.port.FailureReason = "insolvency"
		}
	} else if e.sweepSurplus {
		SweepExcessCash(e.port, e.monthlyBurn(spend, rent))
	}
}

// monthlyBurn approximates recurring monthly outflow for cash-ceiling sizing.
func (e *engine) monthlyBurn(spend, rent float64) float64 {
	burn := spend + rent
	for _, l := range e.port.Liabilities {
		burn += l.Payment
	}
	return burn
}

func (e *engine) applyEvent(ev domain.ScheduledEvent) {
	switch ev.Kind {
	case domain.EventPurchaseAsset:
		e.applyPurchase(ev.Purchase)
	case domain.EventParamChange:
		switch ev.ParamChange.Param {
		case domain.ParamEssentialSpend:
			e.spendBase = ev.ParamChange.Value
		case domain.ParamRent:
			e.rentBase = ev.ParamChange.Value
		}
	}
}

// applyPurchase spends the down payment from cash and adds the purchased
// holding. A zero down payment, zero financing purchase still adds the asset.
func (e *engine) applyPurchase(p *domain.PurchaseAsset) {
	if cash := e.port.Cash(); cash != nil {
		cash.Value -= p.DownPayment
	}

	loan := p.Value - p.DownPayment
	var mortgage *domain.Liability
	if loan > 0 {
		mortgage = &domain.Liability{
			Name:     "Loan-" + p.Name,
			Balance:  loan,
			Rate:     p.LoanRate,
			Payment:  p.MonthlyPayment,
			Mortgage: p.RealEstate,
		}
		e.port.Liabilities = append(e.port.Liabilities, mortgage)
	}

	if p.RealEstate {
		prop := &domain.RealProperty{
			Name:            p.Name,
			Value:           p.Value,
			MaintenanceRate: domain.DefaultMaintenanceRate,
			Mortgage:        mortgage,
		}
		e.port.Properties = append(e.port.Properties, prop)

		if p.PrimaryHome {
			e.rentBase = 0
		}
		return
	}

	e.port.Assets = append(e.port.Assets, &domain.Asset{
		Name:       p.Name,
		Value:      p.Value,
		Liquid:     false,
		MarketBeta: 0,
	})
}

func (e *engine) snapshot(month int, netWorth float64) StepSnapshot {
	cash := 0.0
	if c := e.port.Cash(); c != nil {
		cash = c.Value
	}

	investments := 0.0
	for i, a := range e.port.Assets {
		if i > 0 {
			investments += a.Value
		}
	}

	return StepSnapshot{
		Month:       month,
		Year:        float64(month) / 12.0,
		NetWorth:    netWorth,
		Cash:        cash,
		Investments: investments,
		Debt:        e.port.TotalDebt(),
	}
}
