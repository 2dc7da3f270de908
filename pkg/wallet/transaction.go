package wallet

import (
	"context"
	"errors"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/sirupsen/logrus"
)

// TransactionStatus represents the status of a mined transaction.
type TransactionStatus struct {
	// Hash is the unique transaction identifier
	Hash common.Hash

	// Status indicates transaction success (1) or failure (0)
	Status uint64

	// BlockNumber is the block height where transaction was mined
	BlockNumber *big.Int

	// GasUsed is the actual amount of gas consumed
	GasUsed uint64

	// EffectiveGasPrice is the actual gas price paid
	EffectiveGasPrice *big.Int

	// Confirmations counts BlockNumber itself plus the blocks on top of it
	Confirmations uint64

	// State tracks the current transaction state
	State TransactionState

	// Timestamp when the status was last updated
	Timestamp time.Time
}

// TransactionState represents the possible states of a transaction
type TransactionState int

const (
	// TxStatePending indicates transaction is waiting to be mined
	TxStatePending TransactionState = iota

	// TxStateConfirmed indicates transaction was successfully mined
	TxStateConfirmed

	// TxStateFailed indicates transaction was mined but reverted
	TxStateFailed
)

// String returns a lower-case name for log fields.
func (s TransactionState) String() string {
	switch s {
	case TxStatePending:
		return "pending"
	case TxStateConfirmed:
		return "confirmed"
	case TxStateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// SendNative signs and broadcasts a legacy value transfer with an explicit
// gas price and gas limit. It returns once the node accepted the transaction;
// use WaitForReceipt to wait for it to be mined.
//
// Example:
//
//	hash, err := client.SendNative(ctx, recipient, amount, gasPrice, 21000)
//	if err != nil {
//	    return err
//	}
//	status, err := client.WaitForReceipt(ctx, hash)
func (c *Client) SendNative(ctx context.Context, to common.Address, value, gasPrice *big.Int, gasLimit uint64) (common.Hash, error) {
	nonce, err := c.nonceManager.GetNonce(ctx, c.backend, c.Address())
	if err != nil {
		return common.Hash{}, err
	}
	defer c.nonceManager.ReleaseNonce(nonce)

	tx := types.NewTransaction(nonce, to, value, gasLimit, gasPrice, nil)

	signedTx, err := types.SignTx(tx, types.NewEIP155Signer(c.chainID), c.keyManager.privateKey)
	if err != nil {
		return common.Hash{}, NewWalletError(ErrCodeTransactionFailed, "failed to sign transaction", err, "send_native")
	}

	if err := c.backend.SendTransaction(ctx, signedTx); err != nil {
		return common.Hash{}, NewWalletError(ErrCodeTransactionFailed, "failed to send transaction", err, "send_native")
	}

	c.log.WithFields(logrus.Fields{
		"tx_hash":   signedTx.Hash().Hex(),
		"to":        to.Hex(),
		"value":     value.String(),
		"gas_price": gasPrice.String(),
		"gas_limit": gasLimit,
		"nonce":     nonce,
	}).Debug("Broadcast native transfer")

	return signedTx.Hash(), nil
}

// WaitForReceipt polls for the receipt of hash until it has MinConfirmations
// confirmations, the inclusion block being the first. The wait is bounded by ReceiptTimeout, which surfaces as
// ErrCodeConfirmationTimeout. Up to MaxRetries consecutive RPC failures are
// tolerated. A reverted transaction returns its status together with an
// ErrCodeTransactionReverted error.
func (c *Client) WaitForReceipt(ctx context.Context, hash common.Hash) (*TransactionStatus, error) {
	ticker := time.NewTicker(c.config.ReceiptPollInterval)
	defer ticker.Stop()

	timeout := time.NewTimer(c.config.ReceiptTimeout)
	defer timeout.Stop()

	failures := 0
	for {
		status, err := c.checkReceipt(ctx, hash)
		switch {
		case err == nil && status != nil:
			if status.State == TxStateFailed {
				return status, NewWalletError(ErrCodeTransactionReverted, "transaction reverted", nil, hash.Hex())
			}
			return status, nil
		case err != nil:
			failures++
			c.log.WithFields(logrus.Fields{
				"tx_hash": hash.Hex(),
				"attempt": failures,
				"error":   err,
			}).Debug("Receipt lookup failed")
			if failures > c.config.MaxRetries {
				return nil, NewWalletError(ErrCodeRPCError, "failed to look up receipt", err, hash.Hex())
			}
		default:
			failures = 0
		}

		select {
		case <-ctx.Done():
			return nil, NewWalletError(ErrCodeTimeout, "context cancelled while waiting for receipt", ctx.Err(), hash.Hex())
		case <-timeout.C:
			return nil, NewWalletError(ErrCodeConfirmationTimeout, "timeout waiting for receipt", nil, hash.Hex())
		case <-ticker.C:
		}
	}
}

// checkReceipt returns (nil, nil) while the transaction is unmined or not yet
// confirmed deep enough.
func (c *Client) checkReceipt(ctx context.Context, hash common.Hash) (*TransactionStatus, error) {
	receipt, err := c.backend.TransactionReceipt(ctx, hash)
	if errors.Is(err, ethereum.NotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	currentBlock, err := c.backend.BlockNumber(ctx)
	if err != nil {
		return nil, err
	}

	// the inclusion block counts as the first confirmation
	var confirmations uint64
	if mined := receipt.BlockNumber.Uint64(); currentBlock >= mined {
		confirmations = currentBlock - mined + 1
	}
	if confirmations < c.config.MinConfirmations {
		return nil, nil
	}

	state := TxStateConfirmed
	if receipt.Status == types.ReceiptStatusFailed {
		state = TxStateFailed
	}

	return &TransactionStatus{
		Hash:              hash,
		Status:            receipt.Status,
		BlockNumber:       receipt.BlockNumber,
		GasUsed:           receipt.GasUsed,
		EffectiveGasPrice: receipt.EffectiveGasPrice,
		Confirmations:     confirmations,
		State:             state,
		Timestamp:         time.Now(),
	}, nil
}
