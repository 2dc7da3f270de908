// Package wallet provides the single-account EVM wallet used by the rescue bot:
// key handling, balance and block reads, native transfers, contract calls and
// bounded confirmation waits.
package wallet

import (
	"errors"
	"fmt"
)

// Error codes for wallet operations
const (
	// ErrCodeInvalidAddress indicates an invalid blockchain address format
	ErrCodeInvalidAddress = "INVALID_ADDRESS"
	// ErrCodeInvalidPrivateKey indicates an invalid or malformed private key
	ErrCodeInvalidPrivateKey = "INVALID_PRIVATE_KEY"
	// ErrCodeTransactionFailed indicates a transaction could not be signed or broadcast
	ErrCodeTransactionFailed = "TRANSACTION_FAILED"
	// ErrCodeTransactionReverted indicates a mined transaction has receipt status 0
	ErrCodeTransactionReverted = "TRANSACTION_REVERTED"
	// ErrCodeRPCError indicates an RPC connection or call failed
	ErrCodeRPCError = "RPC_ERROR"
	// ErrCodeTimeout indicates the caller's context ended while waiting
	ErrCodeTimeout = "TIMEOUT"
	// ErrCodeConfirmationTimeout indicates no confirmed receipt within ReceiptTimeout
	ErrCodeConfirmationTimeout = "CONFIRMATION_TIMEOUT"
	// ErrCodeInvalidABI indicates invalid or malformed contract ABI
	ErrCodeInvalidABI = "INVALID_ABI"
	// ErrCodeContractError indicates contract interaction failed
	ErrCodeContractError = "CONTRACT_ERROR"
	// ErrCodeChainMismatch indicates the node reports a different chain id than configured
	ErrCodeChainMismatch = "CHAIN_MISMATCH"
)

// WalletError represents a wallet-specific error with additional context
// about the error type, message, underlying error and the operation that failed.
type WalletError struct {
	Code    string // Error code identifying the type of error
	Message string // Human readable error message
	Err     error  // Underlying error if any
	Op      string // Operation where the error occurred
}

// Error formats the code, message, operation (if present) and underlying error.
func (e *WalletError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("[%s] %s during %s: %v", e.Code, e.Message, e.Op, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
}

// Unwrap returns the underlying error.
func (e *WalletError) Unwrap() error {
	return e.Err
}

// NewWalletError creates a new WalletError with the given parameters.
func NewWalletError(code string, message string, err error, op string) *WalletError {
	return &WalletError{
		Code:    code,
		Message: message,
		Err:     err,
		Op:      op,
	}
}

// IsWalletError reports whether err, or any error it wraps, is a WalletError
// with the given code.
func IsWalletError(err error, code string) bool {
	var we *WalletError
	if errors.As(err, &we) {
		return we.Code == code
	}
	return false
}
