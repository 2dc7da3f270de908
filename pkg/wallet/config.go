package wallet

import "time"

// Config holds the chain connection parameters for a wallet client.
// It controls how the client dials the node, how it waits for receipts and
// which chain it expects to be talking to.
type Config struct {
	// RPCURL is the HTTP(S) or WS endpoint of the chain node
	RPCURL string

	// ChainID is the expected chain id. Zero accepts whatever the node reports.
	ChainID int64

	// MaxRetries bounds dial attempts and consecutive RPC failures while
	// waiting for a receipt
	MaxRetries int

	// RetryDelay is the duration to wait between dial attempts
	RetryDelay time.Duration

	// ReceiptTimeout bounds how long WaitForReceipt blocks before giving up
	// with ErrCodeConfirmationTimeout
	ReceiptTimeout time.Duration

	// ReceiptPollInterval is how often the node is asked for a receipt
	ReceiptPollInterval time.Duration

	// MinConfirmations is the number of blocks, counting the one that
	// includes the transaction, before a receipt is reported as confirmed
	MinConfirmations uint64
}

// DefaultConfig returns a Config with the defaults used by the rescue bot:
//   - 3 retries with a 1 second delay
//   - a 5 minute receipt timeout polled every 2 seconds
//   - 1 confirmation, i.e. inclusion in a block
//
// RPCURL must still be set by the caller.
func DefaultConfig() Config {
	return Config{
		MaxRetries:          3,
		RetryDelay:          time.Second,
		ReceiptTimeout:      5 * time.Minute,
		ReceiptPollInterval: 2 * time.Second,
		MinConfirmations:    1,
	}
}

// withDefaults fills zero-valued fields from DefaultConfig.
func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.MaxRetries <= 0 {
		c.MaxRetries = def.MaxRetries
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = def.RetryDelay
	}
	if c.ReceiptTimeout <= 0 {
		c.ReceiptTimeout = def.ReceiptTimeout
	}
	if c.ReceiptPollInterval <= 0 {
		c.ReceiptPollInterval = def.ReceiptPollInterval
	}
	if c.MinConfirmations == 0 {
		c.MinConfirmations = def.MinConfirmations
	}
	return c
}
