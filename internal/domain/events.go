package domain

import "fmt"

// EventKind identifies the effect of a scheduled event. The vocabulary is
// closed: new kinds require engine support, so this is a tagged variant set
// rather than open dispatch.
type EventKind string

const (
	EventPurchaseAsset EventKind = "purchase_asset"
	EventParamChange   EventKind = "param_change"
)

// Parameters a ParamChange event may overwrite.
const (
	ParamEssentialSpend = "essential_spend"
	ParamRent           = "rent"
)

// PurchaseAsset spends a down payment from cash and adds a new asset or
// real-property holding, optionally originating a liability for the financed
// remainder. A primary-home purchase zeroes future rent.
type PurchaseAsset struct {
	Name           string  `json:"name"`
	Value          float64 `json:"value"`
	DownPayment    float64 `json:"down_payment"`
	LoanRate       float64 `json:"rate"`
	MonthlyPayment float64 `json:"monthly_payment"`
	RealEstate     bool    `json:"is_real_estate"`
	PrimaryHome    bool    `json:"is_primary_home"`
}

// ParamChange overwrites a named scalar for all subsequent months of the path
// it fires on.
type ParamChange struct {
	Param string  `json:"param"`
	Value float64 `json:"value"`
}

// ScheduledEvent is a one-time, time-triggered mutation of portfolio state or
// configuration. Month counts whole months from simulation start. Exactly one
// payload matching Kind must be set.
type ScheduledEvent struct {
	Month       int            `json:"month"`
	Kind        EventKind      `json:"type"`
	Purchase    *PurchaseAsset `json:"purchase,omitempty"`
	ParamChange *ParamChange   `json:"param_change,omitempty"`
}

// Validate reports configuration errors: negative trigger month, unknown
// kind, or a payload/kind mismatch.
func (e *ScheduledEvent) Validate() error {
	if e.Month < 0 {
		return fmt.Errorf("event month must be >= 0, got %d", e.Month)
	}

	switch e.Kind {
	case EventPurchaseAsset:
		if e.Purchase == nil {
			return fmt.Errorf("purchase_asset event at month %d is missing its purchase payload", e.Month)
		}
		if e.Purchase.Value < 0 || e.Purchase.DownPayment < 0 {
			return fmt.Errorf("purchase_asset event at month %d has negative value or down payment", e.Month)
		}
		if e.Purchase.DownPayment > e.Purchase.Value {
			return fmt.Errorf("purchase_asset event at month %d has down payment exceeding value", e.Month)
		}
	case EventParamChange:
		if e.ParamChange == nil {
			return fmt.Errorf("param_change event at month %d is missing its param payload", e.Month)
		}
		switch e.ParamChange.Param {
		case ParamEssentialSpend, ParamRent:
		default:
			return fmt.Errorf("param_change event at month %d targets unknown parameter %q", e.Month, e.ParamChange.Param)
		}
	default:
		return fmt.Errorf("unknown event type %q at month %d", e.Kind, e.Month)
	}

	return nil
}
