package types

import (
	"math/big"
)

// Balance is an amount of base units of a token or of the native asset.
// The zero value is a zero balance.
type Balance struct {
	*big.Int
}

// NewBalance copies i into a new Balance. A nil i yields a zero balance.
func NewBalance(i *big.Int) Balance {
	if i == nil {
		return Balance{Int: new(big.Int)}
	}
	return Balance{Int: new(big.Int).Set(i)}
}

func BalanceFromUint64(v uint64) Balance {
	return Balance{Int: new(big.Int).SetUint64(v)}
}

func (b Balance) big() *big.Int {
	if b.Int == nil {
		return new(big.Int)
	}
	return b.Int
}

// Big returns a copy of the underlying integer.
func (b Balance) Big() *big.Int {
	return new(big.Int).Set(b.big())
}

func (b Balance) Add(other Balance) Balance {
	return Balance{Int: new(big.Int).Add(b.big(), other.big())}
}

func (b Balance) Sub(other Balance) Balance {
	return Balance{Int: new(big.Int).Sub(b.big(), other.big())}
}

// Mul scales the balance by f, truncating toward zero.
func (b Balance) Mul(f float64) Balance {
	scaled := new(big.Float).Mul(new(big.Float).SetInt(b.big()), big.NewFloat(f))
	out, _ := scaled.Int(nil)
	return Balance{Int: out}
}

// Delta returns other minus b, which is negative when other is smaller.
func (b Balance) Delta(other Balance) Balance {
	return other.Sub(b)
}

func (b Balance) Cmp(other Balance) int {
	return b.big().Cmp(other.big())
}

func (b Balance) IsZero() bool {
	return b.big().Sign() == 0
}

func (b Balance) GreaterThan(other Balance) bool {
	return b.Cmp(other) > 0
}

func (b Balance) LessThan(other Balance) bool {
	return b.Cmp(other) < 0
}

// Equal compares by value, treating a nil balance as zero.
func (b Balance) Equal(other Balance) bool {
	return b.Cmp(other) == 0
}

// Units renders the balance in whole units of a token with the given decimals.
func (b Balance) Units(decimals uint8) string {
	return FormatUnits(b, decimals)
}

// Ether renders the balance as a native-asset amount with 18 decimals.
func (b Balance) Ether() string {
	return FormatUnits(b, EtherDecimals) + " ETH"
}

// String renders the balance in base units.
func (b Balance) String() string {
	return b.big().String()
}
