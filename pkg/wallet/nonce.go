package wallet

import (
	"context"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// nonceSource is the part of the backend the nonce manager reads from.
type nonceSource interface {
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
}

// NonceManager hands out nonces for the wallet account. It starts from the
// node's pending nonce and skips nonces that were handed out but not yet
// released, so two sends never share a nonce.
type NonceManager struct {
	pending map[uint64]time.Time // nonce -> when it was issued
	mu      sync.Mutex
}

func newNonceManager() *NonceManager {
	return &NonceManager{
		pending: make(map[uint64]time.Time),
	}
}

// GetNonce returns the next available nonce for account.
func (nm *NonceManager) GetNonce(ctx context.Context, source nonceSource, account common.Address) (uint64, error) {
	nm.mu.Lock()
	defer nm.mu.Unlock()

	nonce, err := source.PendingNonceAt(ctx, account)
	if err != nil {
		return 0, NewWalletError(ErrCodeRPCError, "failed to get nonce", err, "nonce")
	}

	for {
		if _, isPending := nm.pending[nonce]; !isPending {
			nm.pending[nonce] = time.Now()
			return nonce, nil
		}
		nonce++
	}
}

// ReleaseNonce makes nonce available again. Call it once the transaction
// using it was broadcast (the node then accounts for it) or failed to send.
func (nm *NonceManager) ReleaseNonce(nonce uint64) {
	nm.mu.Lock()
	defer nm.mu.Unlock()

	delete(nm.pending, nonce)
}
