package wallet

import (
	"crypto/ecdsa"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// KeyManager holds the signing key of the rescued account and the address
// derived from it.
type KeyManager struct {
	privateKey *ecdsa.PrivateKey
	address    common.Address
}

// NewKeyManager creates a key manager from a hex-encoded private key.
// The key may carry a 0x prefix and surrounding whitespace.
//
// Example:
//
//	km, err := NewKeyManager(os.Getenv("PRIVATE_KEY"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	address := km.GetAddress()
func NewKeyManager(privateKeyHex string) (*KeyManager, error) {
	privateKeyHex = strings.TrimPrefix(strings.TrimSpace(privateKeyHex), "0x")
	if privateKeyHex == "" {
		return nil, fmt.Errorf("private key cannot be empty")
	}

	privateKey, err := crypto.HexToECDSA(privateKeyHex)
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}

	publicKeyECDSA, ok := privateKey.Public().(*ecdsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("error casting public key to ECDSA")
	}

	return &KeyManager{
		privateKey: privateKey,
		address:    crypto.PubkeyToAddress(*publicKeyECDSA),
	}, nil
}

// GetAddress returns the address associated with this key manager.
func (km *KeyManager) GetAddress() common.Address {
	return km.address
}
