package runs

import "time"

// Run is the stored summary of one API-triggered simulation batch. Only
// configuration and aggregates are persisted; the engine itself stays
// persistence-free.
type Run struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`

	Months int    `json:"months"`
	Paths  int    `json:"paths"`
	Seed   uint64 `json:"seed"`

	// ConfigJSON is the full request configuration, kept for rerunning.
	ConfigJSON string `json:"-"`

	SuccessRate    float64 `json:"success_rate"`
	MedianNetWorth float64 `json:"median_net_worth"`
	Pessimistic    float64 `json:"pessimistic_p5"`
	Optimistic     float64 `json:"optimistic_p95"`
}
