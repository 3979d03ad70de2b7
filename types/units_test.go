package types

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseUnits(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		decimals uint8
		want     string
		err      error
	}{
		{name: "whole tokens", value: "1000", decimals: 18, want: "1000000000000000000000"},
		{name: "fraction", value: "0.5", decimals: 6, want: "500000"},
		{name: "leading dot", value: ".25", decimals: 2, want: "25"},
		{name: "trailing zeros beyond decimals", value: "1.2300", decimals: 2, want: "123"},
		{name: "zero decimals", value: "42", decimals: 0, want: "42"},
		{name: "negative", value: "-1.5", decimals: 1, want: "-15"},
		{name: "zero", value: "0", decimals: 18, want: "0"},
		{name: "too precise", value: "0.001", decimals: 2, err: ErrTooPrecise},
		{name: "empty", value: " ", decimals: 18, err: ErrInvalidAmount},
		{name: "trailing dot", value: "5.", decimals: 18, want: "5000000000000000000"},
		{name: "only dot", value: ".", decimals: 18, err: ErrInvalidAmount},
		{name: "garbage", value: "1e18", decimals: 18, err: ErrInvalidAmount},
		{name: "only sign", value: "-", decimals: 18, err: ErrInvalidAmount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseUnits(tt.value, tt.decimals)
			if tt.err != nil {
				require.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got.String())
		})
	}
}

func TestFormatUnits(t *testing.T) {
	require.Equal(t, "1000", FormatUnits(MustParseUnits("1000", 18), 18))
	require.Equal(t, "0.000001", FormatUnits(BalanceFromUint64(1), 6))
	require.Equal(t, "12.5", FormatUnits(BalanceFromUint64(125), 1))
	require.Equal(t, "7", FormatUnits(BalanceFromUint64(7), 0))
	require.Equal(t, "-0.5", FormatUnits(NewBalance(big.NewInt(-5)), 1))
	require.Equal(t, "0", FormatUnits(Balance{}, 18))
}

func TestParseEther(t *testing.T) {
	b, err := ParseEther("1000")
	require.NoError(t, err)
	require.Equal(t, "1000 ETH", b.Ether())
}

func TestBalanceArithmetic(t *testing.T) {
	a := BalanceFromUint64(10)
	b := BalanceFromUint64(4)

	require.Equal(t, "14", a.Add(b).String())
	require.Equal(t, "6", a.Sub(b).String())
	require.Equal(t, "-6", a.Delta(b).String())
	require.True(t, a.GreaterThan(b))
	require.True(t, b.LessThan(a))
	require.True(t, Balance{}.Equal(BalanceFromUint64(0)))
	require.True(t, Balance{}.IsZero())
	require.Equal(t, "0.4", b.Units(1))
	require.Equal(t, "25", a.Mul(2.5).String())
	require.Equal(t, "2", b.Mul(0.5).String())
	require.True(t, Balance{}.Mul(3).IsZero())

	// the copy must not alias the source
	src := big.NewInt(3)
	c := NewBalance(src)
	src.SetInt64(9)
	require.Equal(t, "3", c.String())
}
