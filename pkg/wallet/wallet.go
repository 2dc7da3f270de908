package wallet

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/sirupsen/logrus"
)

// Backend is the subset of a chain node connection the wallet needs.
// *ethclient.Client and the go-ethereum simulated client both satisfy it.
type Backend interface {
	bind.ContractBackend

	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	BlockNumber(ctx context.Context) (uint64, error)
	ChainID(ctx context.Context) (*big.Int, error)
}

// BlockSnapshot is the number and timestamp of a block as seen by one poll.
type BlockSnapshot struct {
	Number    uint64
	Timestamp uint64
}

// Client is the wallet of a single account on a single EVM chain. It signs
// with the account key, tracks pending nonces and waits for receipts.
type Client struct {
	backend      Backend
	config       Config
	chainID      *big.Int
	keyManager   *KeyManager
	nonceManager *NonceManager
	closeOnce    sync.Once
	log          *logrus.Logger
}

// NewClient dials config.RPCURL, retrying per config, and returns a wallet
// client for privateKey.
//
// Example:
//
//	cfg := DefaultConfig()
//	cfg.RPCURL = "https://rpc.ankr.com/bsc"
//	client, err := NewClient(ctx, logger, cfg, privateKey)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
func NewClient(ctx context.Context, log *logrus.Logger, config Config, privateKey string) (*Client, error) {
	if log == nil {
		log = logrus.New()
	}
	config = config.withDefaults()

	ethClient, err := dialWithRetry(ctx, log, config)
	if err != nil {
		return nil, NewWalletError(ErrCodeRPCError, "failed to connect to node", err, "dial")
	}

	client, err := NewClientWithBackend(ctx, log, config, ethClient, privateKey)
	if err != nil {
		ethClient.Close()
		return nil, err
	}
	return client, nil
}

// NewClientWithBackend builds a wallet client on an existing backend. It
// resolves the chain id once and checks it against config.ChainID when set.
func NewClientWithBackend(ctx context.Context, log *logrus.Logger, config Config, backend Backend, privateKey string) (*Client, error) {
	if log == nil {
		log = logrus.New()
	}
	config = config.withDefaults()

	keyManager, err := NewKeyManager(privateKey)
	if err != nil {
		return nil, NewWalletError(ErrCodeInvalidPrivateKey, "failed to initialize key manager", err, "init")
	}

	chainID, err := backend.ChainID(ctx)
	if err != nil {
		return nil, NewWalletError(ErrCodeRPCError, "failed to get chain ID", err, "init")
	}
	if config.ChainID != 0 && chainID.Cmp(big.NewInt(config.ChainID)) != 0 {
		return nil, NewWalletError(
			ErrCodeChainMismatch,
			fmt.Sprintf("node reports chain %s, expected %d", chainID, config.ChainID),
			nil,
			"init",
		)
	}

	log.WithFields(logrus.Fields{
		"chain_id": chainID.String(),
		"address":  keyManager.GetAddress().Hex(),
	}).Info("Wallet client ready")

	return &Client{
		backend:      backend,
		config:       config,
		chainID:      chainID,
		keyManager:   keyManager,
		nonceManager: newNonceManager(),
		log:          log,
	}, nil
}

// Address returns the address of the account this client signs for.
func (c *Client) Address() common.Address {
	return c.keyManager.GetAddress()
}

// ChainID returns the chain id resolved at construction.
func (c *Client) ChainID() *big.Int {
	return new(big.Int).Set(c.chainID)
}

// Backend exposes the underlying node connection.
func (c *Client) Backend() Backend {
	return c.backend
}

// LatestBlock returns the number and timestamp of the latest block header.
func (c *Client) LatestBlock(ctx context.Context) (*BlockSnapshot, error) {
	header, err := c.backend.HeaderByNumber(ctx, nil)
	if err != nil {
		return nil, NewWalletError(ErrCodeRPCError, "failed to fetch latest block", err, "latest_block")
	}

	return &BlockSnapshot{
		Number:    header.Number.Uint64(),
		Timestamp: header.Time,
	}, nil
}

// NativeBalance retrieves the native currency balance of address in wei.
func (c *Client) NativeBalance(ctx context.Context, address common.Address) (*big.Int, error) {
	balance, err := c.backend.BalanceAt(ctx, address, nil)
	if err != nil {
		return nil, NewWalletError(ErrCodeRPCError, "failed to get balance", err, "balance")
	}

	c.log.WithFields(logrus.Fields{
		"address": address.Hex(),
		"balance": balance.String(),
	}).Debug("Retrieved balance")

	return balance, nil
}

// SuggestGasPrice returns the node's current legacy gas price in wei.
func (c *Client) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	gasPrice, err := c.backend.SuggestGasPrice(ctx)
	if err != nil {
		return nil, NewWalletError(ErrCodeRPCError, "failed to get gas price", err, "gas_price")
	}

	c.log.WithFields(logrus.Fields{
		"gas_price_wei":  gasPrice.String(),
		"gas_price_gwei": FormatGwei(gasPrice),
	}).Debug("Fetched gas price")

	return gasPrice, nil
}

// dialWithRetry attempts to connect to the node, retrying failed attempts
// per config.
func dialWithRetry(ctx context.Context, log *logrus.Logger, config Config) (*ethclient.Client, error) {
	var client *ethclient.Client
	var err error

	for i := 0; i <= config.MaxRetries; i++ {
		client, err = ethclient.DialContext(ctx, config.RPCURL)
		if err == nil {
			return client, nil
		}

		if i < config.MaxRetries {
			log.WithFields(logrus.Fields{
				"attempt": i + 1,
				"error":   err,
			}).Debug("Retrying node connection")

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(config.RetryDelay):
			}
		}
	}

	return nil, fmt.Errorf("failed to connect after %d attempts: %w", config.MaxRetries+1, err)
}

// Close closes the node connection if the backend supports it.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		if closer, ok := c.backend.(interface{ Close() }); ok {
			closer.Close()
			c.log.Debug("Closed node connection")
		}
	})
}
