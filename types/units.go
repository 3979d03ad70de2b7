package types

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
)

const EtherDecimals uint8 = 18

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrTooPrecise    = errors.New("amount has more fractional digits than decimals")
)

// ParseUnits converts a decimal string such as "1000" or "0.5" into base units
// of a token with the given number of decimals.
func ParseUnits(value string, decimals uint8) (Balance, error) {
	s := strings.TrimSpace(value)
	if s == "" {
		return Balance{}, fmt.Errorf("%w: empty", ErrInvalidAmount)
	}
	neg := false
	switch s[0] {
	case '-':
		neg = true
		s = s[1:]
	case '+':
		s = s[1:]
	}
	// "5." and ".5" are both accepted, a lone "." is not.
	whole, frac, _ := strings.Cut(s, ".")
	if whole == "" && frac == "" {
		return Balance{}, fmt.Errorf("%w: %q", ErrInvalidAmount, value)
	}
	if !isDigits(whole) || !isDigits(frac) {
		return Balance{}, fmt.Errorf("%w: %q", ErrInvalidAmount, value)
	}
	frac = strings.TrimRight(frac, "0")
	if len(frac) > int(decimals) {
		return Balance{}, fmt.Errorf("%w: %q with %d decimals", ErrTooPrecise, value, decimals)
	}
	digits := whole + frac + strings.Repeat("0", int(decimals)-len(frac))
	if digits == "" {
		digits = "0"
	}
	out, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return Balance{}, fmt.Errorf("%w: %q", ErrInvalidAmount, value)
	}
	if neg {
		out.Neg(out)
	}
	return Balance{Int: out}, nil
}

// MustParseUnits is ParseUnits for constants; it panics on error.
func MustParseUnits(value string, decimals uint8) Balance {
	b, err := ParseUnits(value, decimals)
	if err != nil {
		panic(err)
	}
	return b
}

// ParseEther parses a native-asset amount with 18 decimals.
func ParseEther(value string) (Balance, error) {
	return ParseUnits(value, EtherDecimals)
}

// FormatUnits renders base units as a decimal string without trailing zeros.
func FormatUnits(b Balance, decimals uint8) string {
	v := b.big()
	neg := v.Sign() < 0
	digits := new(big.Int).Abs(v).String()
	if d := int(decimals); len(digits) <= d {
		digits = strings.Repeat("0", d-len(digits)+1) + digits
	}
	split := len(digits) - int(decimals)
	whole, frac := digits[:split], strings.TrimRight(digits[split:], "0")
	out := whole
	if frac != "" {
		out += "." + frac
	}
	if neg {
		out = "-" + out
	}
	return out
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
