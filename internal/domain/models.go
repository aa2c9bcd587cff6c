package domain

// Asset is a fungible financial holding. MarketBeta controls how much of the
// value co-moves with the equity market factor versus a risk-free rate
// (1.0 = pure stocks, 0.0 = pure cash).
type Asset struct {
	Name       string  `json:"name"`
	Value      float64 `json:"value"`
	Liquid     bool    `json:"liquid"`
	MarketBeta float64 `json:"market_beta"`
}

// Grow applies one month of blended growth. marketReturn is a monthly return,
// riskFreeRate an annual rate. Value never goes negative.
func (a *Asset) Grow(marketReturn, riskFreeRate float64) {
	rate := marketReturn*a.MarketBeta + (riskFreeRate/12.0)*(1.0-a.MarketBeta)
	a.Value *= 1.0 + rate
	if a.Value < 0 {
		a.Value = 0
	}
}

// Liability is an amortizing debt. Rate is the annual origination rate; when
// Floating is set, the path's stochastic interest-rate factor is used instead.
type Liability struct {
	Name     string  `json:"name"`
	Balance  float64 `json:"balance"`
	Rate     float64 `json:"rate"`
	Floating bool    `json:"floating"`
	Payment  float64 `json:"monthly_payment"`
	Mortgage bool    `json:"is_mortgage"`
}

// Service advances the liability by one month: interest accrues on the
// balance, the scheduled payment is split into interest and principal, and
// the balance decreases by the principal portion. The payment is clamped so
// it never exceeds balance + interest; the balance is floored at zero.
//
// marketRate is the path's annual interest-rate factor, used only for
// floating-rate debt. Returns the interest and principal portions paid.
func (l *Liability) Service(marketRate float64) (interest, principal float64) {
	rate := l.Rate
	if l.Floating {
		rate = marketRate
	}

	interest = l.Balance * rate / 12.0

	payment := l.Payment
	if payment > l.Balance+interest {
		payment = l.Balance + interest
	}

	principal = payment - interest
	l.Balance -= principal
	if l.Balance < 0 {
		l.Balance = 0
	}

	return interest, principal
}

// DefaultMaintenanceRate is the annual upkeep cost of real property as a
// fraction of its value.
const DefaultMaintenanceRate = 0.01

// RealProperty is an illiquid holding whose growth follows the housing factor
// and which costs a fixed annual percentage of its value in maintenance.
// Mortgage, when set, must be the same *Liability held in the owning
// portfolio's liability list; equity nets it out. Portfolios built from an
// external representation restore that shared pointer via LinkMortgages.
type RealProperty struct {
	Name            string     `json:"name"`
	Value           float64    `json:"value"`
	MaintenanceRate float64    `json:"maintenance_rate"`
	Mortgage        *Liability `json:"mortgage,omitempty"`
}

// Grow applies one month of housing appreciation.
func (p *RealProperty) Grow(housingGrowth float64) {
	p.Value *= 1.0 + housingGrowth
	if p.Value < 0 {
		p.Value = 0
	}
}

// MonthlyMaintenance returns this month's upkeep cost.
func (p *RealProperty) MonthlyMaintenance() float64 {
	return p.Value * p.MaintenanceRate / 12.0
}

// Equity returns value net of the outstanding mortgage balance.
func (p *RealProperty) Equity() float64 {
	if p.Mortgage != nil {
		return p.Value - p.Mortgage.Balance
	}
	return p.Value
}

// IncomeStream is a recurring gross monthly income that compounds with the
// salary-growth factor.
type IncomeStream struct {
	Name    string  `json:"name"`
	Monthly float64 `json:"monthly"`
}

// Grow applies one month of salary growth.
func (s *IncomeStream) Grow(salaryGrowth float64) {
	s.Monthly *= 1.0 + salaryGrowth
}

// Portfolio is the complete financial state of a household. By convention the
// first asset is the cash account. A portfolio is constructed once as the
// simulation's initial condition and deep-copied per path.
type Portfolio struct {
	Assets      []*Asset        `json:"assets"`
	Properties  []*RealProperty `json:"properties"`
	Liabilities []*Liability    `json:"liabilities"`
	Incomes     []*IncomeStream `json:"incomes"`

	// EssentialSpend is the inflation-indexed monthly non-discretionary
	// outflow, stored at its base (month-zero) level.
	EssentialSpend float64 `json:"essential_spend"`

	Failed        bool   `json:"failed"`
	FailureReason string `json:"failure_reason,omitempty"`
}

// Cash returns the cash account (first asset), or nil for an empty portfolio.
func (p *Portfolio) Cash() *Asset {
	if len(p.Assets) == 0 {
		return nil
	}
	return p.Assets[0]
}

// TotalAssets sums financial asset values, excluding property.
func (p *Portfolio) TotalAssets() float64 {
	total := 0.0
	for _, a := range p.Assets {
		total += a.Value
	}
	return total
}

// TotalDebt sums all outstanding liability balances, mortgages included.
func (p *Portfolio) TotalDebt() float64 {
	total := 0.0
	for _, l := range p.Liabilities {
		total += l.Balance
	}
	return total
}

// NetWorth is total asset value plus real-property equity minus non-mortgage
// debt. Mortgage balances are netted inside the equity term, so they are
// skipped here to avoid double counting.
func (p *Portfolio) NetWorth() float64 {
	mortgages := make(map[*Liability]bool, len(p.Properties))
	for _, prop := range p.Properties {
		if prop.Mortgage != nil {
			mortgages[prop.Mortgage] = true
		}
	}

	total := p.TotalAssets()
	for _, prop := range p.Properties {
		total += prop.Equity()
	}
	for _, l := range p.Liabilities {
		if !mortgages[l] {
			total -= l.Balance
		}
	}

	return total
}

// LinkMortgages reconciles property mortgages with the liability list after
// the portfolio is decoded from an external representation. The association is
// pointer identity, which decoding breaks: the same mortgage arrives as two
// separate values (counted twice), or only nested inside the property (never
// serviced). Matching by name restores the shared pointer; an unmatched
// nested mortgage is appended to the liability list so it amortizes and
// counts as debt.
func (p *Portfolio) LinkMortgages() {
	byName := make(map[string]*Liability, len(p.Liabilities))
	for _, l := range p.Liabilities {
		byName[l.Name] = l
	}

	for _, prop := range p.Properties {
		if prop.Mortgage == nil {
			continue
		}
		if linked, ok := byName[prop.Mortgage.Name]; ok {
			prop.Mortgage = linked
			continue
		}
		p.Liabilities = append(p.Liabilities, prop.Mortgage)
		byName[prop.Mortgage.Name] = prop.Mortgage
	}
}

// Clone returns an independent deep copy. Mortgage pointers are remapped so a
// cloned property references the cloned liability, never the original.
func (p *Portfolio) Clone() *Portfolio {
	clone := &Portfolio{
		Assets:         make([]*Asset, len(p.Assets)),
		Properties:     make([]*RealProperty, len(p.Properties)),
		Liabilities:    make([]*Liability, len(p.Liabilities)),
		Incomes:        make([]*IncomeStream, len(p.Incomes)),
		EssentialSpend: p.EssentialSpend,
		Failed:         p.Failed,
		FailureReason:  p.FailureReason,
	}

	for i, a := range p.Assets {
		copied := *a
		clone.Assets[i] = &copied
	}

	liabilityMap := make(map[*Liability]*Liability, len(p.Liabilities))
	for i, l := range p.Liabilities {
		copied := *l
		clone.Liabilities[i] = &copied
		liabilityMap[l] = &copied
	}

	for i, prop := range p.Properties {
		copied := *prop
		if prop.Mortgage != nil {
			if mapped, ok := liabilityMap[prop.Mortgage]; ok {
				copied.Mortgage = mapped
			} else {
				// Mortgage not tracked in the liability list; copy standalone.
				standalone := *prop.Mortgage
				copied.Mortgage = &standalone
			}
		}
		clone.Properties[i] = &copied
	}

	for i, s := range p.Incomes {
		copied := *s
		clone.Incomes[i] = &copied
	}

	return clone
}
