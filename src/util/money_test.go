package util

import (
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr error
	}{
		{name: "integer", raw: "50", want: "50"},
		{name: "decimal", raw: "4.50", want: "4.5"},
		{name: "negative", raw: "-20.25", want: "-20.25"},
		{name: "surrounding space", raw: "  12.5 ", want: "12.5"},
		{name: "leading dot", raw: ".5", want: "0.5"},
		{name: "negative leading dot", raw: "-.5", want: "-0.5"},
		{name: "exponent", raw: "1e3", want: "1000"},
		{name: "zero", raw: "0", want: "0"},
		{name: "empty", raw: "", wantErr: ErrEmptyAmount},
		{name: "blank", raw: "   ", wantErr: ErrEmptyAmount},
		{name: "word", raw: "abc", wantErr: ErrInvalidAmount},
		{name: "nan", raw: "NaN", wantErr: ErrInvalidAmount},
		{name: "inf", raw: "Inf", wantErr: ErrInvalidAmount},
		{name: "comma", raw: "4,50", wantErr: ErrInvalidAmount},
		{name: "huge", raw: "1e15", wantErr: ErrAmountTooBig},
		{name: "max scale", raw: "0.000000000001", want: "0.000000000001"},
		{name: "tiny exponent", raw: "1e-200000000", wantErr: ErrTooPrecise},
		{name: "too many places", raw: "1.0000000000001", wantErr: ErrTooPrecise},
		{name: "huge exponent", raw: "1e200000000", wantErr: ErrAmountTooBig},
		{name: "zero with tiny exponent", raw: "0e-200000000", want: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAmount(tt.raw)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s", got)
		})
	}
}

func TestParseAmount_ZeroIsNormalised(t *testing.T) {
	got, err := ParseAmount("0e-200000000")
	require.NoError(t, err)
	assert.Equal(t, "0", got.String())
}

func TestAmountFromRat(t *testing.T) {
	got, err := AmountFromRat(big.NewRat(-4501, 1000))
	require.NoError(t, err)
	assert.Equal(t, "-4.501", got.String())

	got, err = AmountFromRat(big.NewRat(25, 1))
	require.NoError(t, err)
	assert.Equal(t, "25", got.String())

	_, err = AmountFromRat(big.NewRat(1, 3))
	assert.ErrorIs(t, err, ErrTooPrecise)

	_, err = AmountFromRat(big.NewRat(1e13, 1))
	assert.ErrorIs(t, err, ErrAmountTooBig)
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "$4.50", FormatMoney(decimal.RequireFromString("4.5")))
	assert.Equal(t, "-$4.50", FormatMoney(decimal.RequireFromString("-4.5")))
	assert.Equal(t, "$0.00", FormatMoney(decimal.Zero))
}
