package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDollarsToCents(t *testing.T) {
	tests := []struct {
		name    string
		in      float64
		want    int64
		wantErr bool
	}{
		{"whole dollars", 150, 15000, false},
		{"two decimals", 150.25, 15025, false},
		{"one decimal", 99.5, 9950, false},
		{"zero", 0, 0, false},
		{"cent", 0.01, 1, false},
		{"float artifact", 1.10, 110, false},
		{"repeated artifact", 19.99, 1999, false},
		{"three decimals", 1.005, 0, true},
		{"many decimals", 100.123456, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DollarsToCents(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCentsToDollars(t *testing.T) {
	assert.Equal(t, 150.25, CentsToDollars(15025))
	assert.Equal(t, 0.0, CentsToDollars(0))
	assert.Equal(t, -3.5, CentsToDollars(-350))
}
