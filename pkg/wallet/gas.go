package wallet

import (
	"math/big"
)

const (
	// DefaultPriorityMarkupPercent is added on top of the node's gas price to
	// get a transaction mined ahead of the crowd
	DefaultPriorityMarkupPercent = 20

	// NativeTransferGas is the intrinsic gas of a plain value transfer to an
	// externally owned account
	NativeTransferGas = 21000
)

// GasStrategy turns a node-suggested gas price into the price actually paid.
type GasStrategy struct {
	// MarkupPercent is added to the base price with integer arithmetic
	MarkupPercent int64

	// MaxGasPrice caps the marked-up price in wei. Nil means no cap.
	MaxGasPrice *big.Int
}

// DefaultGasStrategy returns a 20% markup with no cap.
func DefaultGasStrategy() *GasStrategy {
	return &GasStrategy{
		MarkupPercent: DefaultPriorityMarkupPercent,
	}
}

// PriorityPrice returns base + base*MarkupPercent/100, truncated toward zero,
// then clamped to MaxGasPrice. The second result reports whether the cap applied.
func (s *GasStrategy) PriorityPrice(base *big.Int) (*big.Int, bool) {
	markup := new(big.Int).Mul(base, big.NewInt(s.MarkupPercent))
	markup.Quo(markup, big.NewInt(100))
	price := new(big.Int).Add(base, markup)

	if s.MaxGasPrice != nil && price.Cmp(s.MaxGasPrice) > 0 {
		return new(big.Int).Set(s.MaxGasPrice), true
	}
	return price, false
}

// GasCost returns price * gasLimit.
func GasCost(price *big.Int, gasLimit uint64) *big.Int {
	return new(big.Int).Mul(price, new(big.Int).SetUint64(gasLimit))
}
