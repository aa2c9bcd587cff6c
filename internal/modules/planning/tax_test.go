package planning

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnnualNet(t *testing.T) {
	tests := []struct {
		name     string
		gross    float64
		status   FilingStatus
		expected float64
	}{
		{
			// Taxable 85400: 10% to 11925, 12% to 48475, 22% on the rest.
			// Federal 13702 + FICA 7650.
			name:     "single six figures",
			gross:    100000,
			status:   FilingSingle,
			expected: 78648.00,
		},
		{
			// Below the standard deduction only FICA applies.
			name:     "single below deduction",
			gross:    10000,
			status:   FilingSingle,
			expected: 9235.00,
		},
		{
			// Taxable 20800 stays inside the joint 10% bracket.
			name:     "joint low income",
			gross:    50000,
			status:   FilingJoint,
			expected: 44095.00,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			net, err := AnnualNet(tt.gross, tt.status)
			require.NoError(t, err)
			assert.InDelta(t, tt.expected, net, 0.01)
		})
	}
}

func TestAnnualNetUnknownStatus(t *testing.T) {
	_, err := AnnualNet(50000, "head_of_household")
	assert.Error(t, err)
}

func TestEffectiveTaxRate(t *testing.T) {
	rate, err := EffectiveTaxRate(100000, FilingSingle)
	require.NoError(t, err)
	assert.InDelta(t, 1.0-78648.0/100000.0, rate, 1e-6)

	zero, err := EffectiveTaxRate(0, FilingSingle)
	require.NoError(t, err)
	assert.Zero(t, zero)
}

func TestMarginalNetDelta(t *testing.T) {
	// A 10k raise at 100k gross lands entirely in the 22% bracket:
	// 10000 * (1 - 0.22 - 0.0765) = 7035.
	delta, err := MarginalNetDelta(100000, 10000, FilingSingle)
	require.NoError(t, err)
	assert.InDelta(t, 7035.00, delta, 0.01)
}
