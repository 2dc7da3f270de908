// Package rescueconfig loads the bot's environment configuration and wires
// the rescue flow from it.
package rescueconfig

import (
	"fmt"
	"math/big"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/lisanmuaddib/stake-rescue/pkg/rescue"
	"github.com/lisanmuaddib/stake-rescue/pkg/wallet"
)

// Config is everything the rescue bot reads from its environment.
type Config struct {
	// Contracts and accounts
	StakingContractAddress string
	TokenContractAddress   string
	RecipientAddress       string
	PrivateKey             string

	// Chain connection
	RPCURL              string
	ChainID             int64
	RPCMaxRetries       int
	ReceiptTimeout      time.Duration
	ReceiptPollInterval time.Duration
	MinConfirmations    uint64

	// Trigger
	Deadline     uint64
	PollInterval time.Duration
	PollBackoff  time.Duration

	// Sweep pricing
	NativeTransferGasLimit uint64
	MaxGasPrice            *big.Int // wei, nil for no cap

	// Optional ABI files; empty uses the built-in ABIs
	StakingABIPath string
	TokenABIPath   string

	// Notifications, empty disables them
	NtfyURL string

	// Postgres URL of the run journal, empty disables it
	DatabaseURL string

	LogLevel  string
	LogFormat string
}

// Load reads .env (a missing file is fine) and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from getenv and validates it.
func FromEnv(getenv func(string) string) (*Config, error) {
	env := envReader{getenv: getenv}

	config := &Config{
		StakingContractAddress: strings.TrimSpace(getenv("STAKING_CONTRACT_ADDRESS")),
		TokenContractAddress:   strings.TrimSpace(getenv("TOKEN_CONTRACT_ADDRESS")),
		RecipientAddress:       strings.TrimSpace(getenv("RECIPIENT_ADDRESS")),
		PrivateKey:             getenv("PRIVATE_KEY"),

		RPCURL:              strings.TrimSpace(getenv("RPC_URL")),
		ChainID:             env.parseInt("CHAIN_ID", 0),
		RPCMaxRetries:       int(env.parseInt("RPC_MAX_RETRIES", 3)),
		ReceiptTimeout:      env.parseDuration("RECEIPT_TIMEOUT", 5*time.Minute),
		ReceiptPollInterval: env.parseDuration("RECEIPT_POLL_INTERVAL", 2*time.Second),
		MinConfirmations:    env.parseUint("MIN_CONFIRMATIONS", 1),

		Deadline:     env.parseUint("DEADLINE", 0),
		PollInterval: env.parseDuration("POLL_INTERVAL", rescue.DefaultPollInterval),

		NativeTransferGasLimit: env.parseUint("NATIVE_TRANSFER_GAS_LIMIT", wallet.NativeTransferGas),
		MaxGasPrice:            env.parseGwei("MAX_GAS_PRICE_GWEI"),

		StakingABIPath: getenv("STAKING_ABI_PATH"),
		TokenABIPath:   getenv("TOKEN_ABI_PATH"),

		NtfyURL:     strings.TrimSpace(getenv("NTFY_URL")),
		DatabaseURL: strings.TrimSpace(getenv("DATABASE_URL")),

		LogLevel:  getEnvOrDefault(getenv, "LOG_LEVEL", "info"),
		LogFormat: getEnvOrDefault(getenv, "LOG_FORMAT", "color"),
	}
	config.PollBackoff = env.parseDuration("POLL_BACKOFF", 10*config.PollInterval)

	if env.err != nil {
		return nil, env.err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks required values and ranges.
func (c *Config) Validate() error {
	addresses := []struct {
		name  string
		value string
	}{
		{"STAKING_CONTRACT_ADDRESS", c.StakingContractAddress},
		{"TOKEN_CONTRACT_ADDRESS", c.TokenContractAddress},
		{"RECIPIENT_ADDRESS", c.RecipientAddress},
	}
	for _, a := range addresses {
		if a.value == "" {
			return fmt.Errorf("%s is required", a.name)
		}
		if err := wallet.ValidateAddress(a.value); err != nil {
			return fmt.Errorf("%s: %w", a.name, err)
		}
	}

	if strings.TrimSpace(c.PrivateKey) == "" {
		return fmt.Errorf("PRIVATE_KEY is required")
	}
	if c.RPCURL == "" {
		return fmt.Errorf("RPC_URL is required")
	}
	if c.Deadline == 0 {
		return fmt.Errorf("DEADLINE is required")
	}

	if c.PollInterval <= 0 || c.PollBackoff <= 0 {
		return fmt.Errorf("poll interval and backoff must be positive")
	}
	if c.ReceiptTimeout <= 0 || c.ReceiptPollInterval <= 0 {
		return fmt.Errorf("receipt timeout and poll interval must be positive")
	}
	if c.RPCMaxRetries < 0 {
		return fmt.Errorf("RPC_MAX_RETRIES cannot be negative")
	}
	if c.MinConfirmations == 0 {
		return fmt.Errorf("MIN_CONFIRMATIONS must be at least 1")
	}
	if c.NativeTransferGasLimit < wallet.NativeTransferGas {
		return fmt.Errorf("NATIVE_TRANSFER_GAS_LIMIT must be at least %d", wallet.NativeTransferGas)
	}
	if c.MaxGasPrice != nil && c.MaxGasPrice.Sign() <= 0 {
		return fmt.Errorf("MAX_GAS_PRICE_GWEI must be positive")
	}

	switch c.LogFormat {
	case "color", "json":
	default:
		return fmt.Errorf("LOG_FORMAT must be color or json, got %q", c.LogFormat)
	}
	return nil
}

// WalletConfig returns the chain connection settings.
func (c *Config) WalletConfig() wallet.Config {
	config := wallet.DefaultConfig()
	config.RPCURL = c.RPCURL
	config.ChainID = c.ChainID
	config.MaxRetries = c.RPCMaxRetries
	config.ReceiptTimeout = c.ReceiptTimeout
	config.ReceiptPollInterval = c.ReceiptPollInterval
	config.MinConfirmations = c.MinConfirmations
	return config
}

// TriggerConfig returns the deadline and polling cadence.
func (c *Config) TriggerConfig() rescue.TriggerConfig {
	return rescue.TriggerConfig{
		Deadline:     c.Deadline,
		PollInterval: c.PollInterval,
		PollBackoff:  c.PollBackoff,
	}
}

// GasStrategy returns the sweep pricing strategy.
func (c *Config) GasStrategy() *wallet.GasStrategy {
	strategy := wallet.DefaultGasStrategy()
	strategy.MaxGasPrice = c.MaxGasPrice
	return strategy
}

// Recipient returns the recipient as an address. Call after Validate.
func (c *Config) Recipient() common.Address {
	return common.HexToAddress(c.RecipientAddress)
}

// LogFields summarizes the config without secrets.
func (c *Config) LogFields() logrus.Fields {
	fields := logrus.Fields{
		"staking_contract":   c.StakingContractAddress,
		"token_contract":     c.TokenContractAddress,
		"recipient":          c.RecipientAddress,
		"private_key_exists": c.PrivateKey != "",
		"deadline":           c.Deadline,
		"poll_interval":      c.PollInterval.String(),
		"gas_limit":          c.NativeTransferGasLimit,
		"min_confirmations":  c.MinConfirmations,
		"notifications":      c.NtfyURL != "",
		"journal":            c.DatabaseURL != "",
	}
	if c.MaxGasPrice != nil {
		fields["max_gas_price_gwei"] = wallet.FormatGwei(c.MaxGasPrice)
	}
	return fields
}

// envReader parses typed values and keeps the first parse error.
type envReader struct {
	getenv func(string) string
	err    error
}

func (r *envReader) fail(key string, value string, err error) {
	if r.err == nil {
		r.err = fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
}

func (r *envReader) parseUint(key string, def uint64) uint64 {
	value := strings.TrimSpace(r.getenv(key))
	if value == "" {
		return def
	}
	n, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		r.fail(key, value, err)
		return def
	}
	return n
}

func (r *envReader) parseInt(key string, def int64) int64 {
	value := strings.TrimSpace(r.getenv(key))
	if value == "" {
		return def
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		r.fail(key, value, err)
		return def
	}
	return n
}

func (r *envReader) parseDuration(key string, def time.Duration) time.Duration {
	value := strings.TrimSpace(r.getenv(key))
	if value == "" {
		return def
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		r.fail(key, value, err)
		return def
	}
	return d
}

// parseGwei parses a decimal gwei amount into wei. Fractions below one wei are truncated.
func (r *envReader) parseGwei(key string) *big.Int {
	value := strings.TrimSpace(r.getenv(key))
	if value == "" {
		return nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		r.fail(key, value, err)
		return nil
	}
	return d.Shift(9).BigInt()
}

// Helper function to get environment variable with default value
func getEnvOrDefault(getenv func(string) string, key, defaultValue string) string {
	if value := getenv(key); value != "" {
		return value
	}
	return defaultValue
}
