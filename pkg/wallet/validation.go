package wallet

import (
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

var (
	// addressRegex checks for a "0x" prefix followed by exactly 40 hexadecimal characters.
	addressRegex = regexp.MustCompile("^0x[0-9a-fA-F]{40}$")
)

// ValidateAddress checks the format of an EVM address and, when it is
// mixed-case, its EIP-55 checksum. The zero address is rejected since funds
// sent there are burned.
//
// Example:
//
//	if err := ValidateAddress("0x742d35Cc6634C0532925a3b844Bc454e4438f44e"); err != nil {
//	    log.Fatal(err)
//	}
func ValidateAddress(address string) error {
	if !addressRegex.MatchString(address) {
		return NewWalletError(ErrCodeInvalidAddress, "invalid address format", nil, address)
	}

	addr := common.HexToAddress(address)

	// Mixed-case input must match its checksum form
	lower := strings.ToLower(address)
	if address != lower && address != "0x"+strings.ToUpper(lower[2:]) && address != addr.Hex() {
		return NewWalletError(ErrCodeInvalidAddress, "invalid address checksum", nil, address)
	}

	if addr == (common.Address{}) {
		return NewWalletError(ErrCodeInvalidAddress, "zero address", nil, address)
	}
	return nil
}
