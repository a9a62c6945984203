package revenue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parceldesk/internal/core/apperror"
	"parceldesk/internal/core/types"
)

func money(v int64) types.Money {
	return types.NewMoney(v)
}

func TestSplit(t *testing.T) {
	tests := []struct {
		name       string
		cost       int64
		tax        int64
		wantDriver int64
		wantOffice int64
	}{
		{
			// base=90000: 63000 + 27000 = base exactly
			name:       "clean split",
			cost:       100000,
			tax:        10000,
			wantDriver: 63000,
			wantOffice: 27000,
		},
		{
			name:       "zero base",
			cost:       5000,
			tax:        5000,
			wantDriver: 0,
			wantOffice: 0,
		},
		{
			// base=5000: 3500 rounds up to 4000, 1500 rounds up to 2000
			name:       "half rounds up on both shares",
			cost:       5000,
			tax:        0,
			wantDriver: 4000,
			wantOffice: 2000,
		},
		{
			// base=12000: 8400 -> 8000, 3600 -> 4000
			name:       "shares round in opposite directions",
			cost:       12000,
			tax:        0,
			wantDriver: 8000,
			wantOffice: 4000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shares, err := Split(money(tt.cost), money(tt.tax))
			require.NoError(t, err)

			assert.True(t, money(tt.wantDriver).Equal(shares.Driver),
				"driver share: want %d, got %s", tt.wantDriver, shares.Driver)
			assert.True(t, money(tt.wantOffice).Equal(shares.Office),
				"office share: want %d, got %s", tt.wantOffice, shares.Office)

			// Shares are always multiples of 1000.
			assert.True(t, shares.Driver.Mod(money(1000)).IsZero())
			assert.True(t, shares.Office.Mod(money(1000)).IsZero())
		})
	}
}

func TestSplit_ResidualTracksRoundingLoss(t *testing.T) {
	// base=5000: driver 4000 + office 2000 = 6000, residual -1000.
	shares, err := Split(money(5000), money(0))
	require.NoError(t, err)
	assert.True(t, money(-1000).Equal(shares.Residual()),
		"residual: got %s", shares.Residual())

	// Clean split leaves no residual.
	shares, err = Split(money(100000), money(10000))
	require.NoError(t, err)
	assert.True(t, shares.Residual().IsZero())
}

func TestSplit_RejectsNegativeBase(t *testing.T) {
	_, err := Split(money(1000), money(5000))
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeInvalidAmount))
}

func TestSplit_RejectsNegativeInputs(t *testing.T) {
	_, err := Split(money(-1), money(0))
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeInvalidAmount))

	_, err = Split(money(100), money(-1))
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeInvalidAmount))
}
