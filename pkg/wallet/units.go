package wallet

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// FormatEther renders a wei amount in ether (18 decimals) for log lines.
func FormatEther(wei *big.Int) string {
	if wei == nil {
		return "0"
	}
	return decimal.NewFromBigInt(wei, -18).String()
}

// FormatGwei renders a wei amount in gwei (9 decimals) for log lines.
func FormatGwei(wei *big.Int) string {
	if wei == nil {
		return "0"
	}
	return decimal.NewFromBigInt(wei, -9).String()
}
