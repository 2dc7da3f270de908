package rescueconfig_test

import (
	"time"

	"github.com/lisanmuaddib/stake-rescue/internal/rescueconfig"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

const testKey = "b71c71a67e1177ad4e901695e1b4b9ee17ae16c6668d313eac2f96dbcda3f291"

func requiredEnv() map[string]string {
	return map[string]string{
		"STAKING_CONTRACT_ADDRESS": "0x3333333333333333333333333333333333333333",
		"TOKEN_CONTRACT_ADDRESS":   "0x4444444444444444444444444444444444444444",
		"RECIPIENT_ADDRESS":        "0x742d35Cc6634C0532925a3b844Bc454e4438f44e",
		"PRIVATE_KEY":              testKey,
		"RPC_URL":                  "http://127.0.0.1:8545",
		"DEADLINE":                 "1700000000",
	}
}

func lookup(env map[string]string) func(string) string {
	return func(key string) string { return env[key] }
}

var _ = Describe("FromEnv", func() {
	var env map[string]string

	BeforeEach(func() {
		env = requiredEnv()
	})

	It("applies defaults", func() {
		config, err := rescueconfig.FromEnv(lookup(env))
		Expect(err).NotTo(HaveOccurred())

		Expect(config.Deadline).To(Equal(uint64(1_700_000_000)))
		Expect(config.PollInterval).To(Equal(time.Second))
		Expect(config.PollBackoff).To(Equal(10 * time.Second))
		Expect(config.NativeTransferGasLimit).To(Equal(uint64(21000)))
		Expect(config.MaxGasPrice).To(BeNil())
		Expect(config.ReceiptTimeout).To(Equal(5 * time.Minute))
		Expect(config.ReceiptPollInterval).To(Equal(2 * time.Second))
		Expect(config.RPCMaxRetries).To(Equal(3))
		Expect(config.MinConfirmations).To(Equal(uint64(1)))
		Expect(config.WalletConfig().MinConfirmations).To(Equal(uint64(1)))
		Expect(config.ChainID).To(BeZero())
		Expect(config.NtfyURL).To(BeEmpty())
		Expect(config.LogLevel).To(Equal("info"))
		Expect(config.LogFormat).To(Equal("color"))
	})

	It("derives the backoff from a custom poll interval", func() {
		env["POLL_INTERVAL"] = "500ms"

		config, err := rescueconfig.FromEnv(lookup(env))
		Expect(err).NotTo(HaveOccurred())
		Expect(config.PollBackoff).To(Equal(5 * time.Second))
	})

	It("reads every optional setting", func() {
		env["POLL_INTERVAL"] = "2s"
		env["POLL_BACKOFF"] = "30s"
		env["NATIVE_TRANSFER_GAS_LIMIT"] = "55000"
		env["MAX_GAS_PRICE_GWEI"] = "7.5"
		env["CHAIN_ID"] = "56"
		env["RECEIPT_TIMEOUT"] = "90s"
		env["RECEIPT_POLL_INTERVAL"] = "3s"
		env["RPC_MAX_RETRIES"] = "5"
		env["MIN_CONFIRMATIONS"] = "3"
		env["NTFY_URL"] = "https://ntfy.sh/rescue"
		env["LOG_FORMAT"] = "json"

		config, err := rescueconfig.FromEnv(lookup(env))
		Expect(err).NotTo(HaveOccurred())

		Expect(config.PollBackoff).To(Equal(30 * time.Second))
		Expect(config.NativeTransferGasLimit).To(Equal(uint64(55000)))
		Expect(config.MaxGasPrice.String()).To(Equal("7500000000"))
		Expect(config.NtfyURL).To(Equal("https://ntfy.sh/rescue"))

		walletConfig := config.WalletConfig()
		Expect(walletConfig.ChainID).To(Equal(int64(56)))
		Expect(walletConfig.MaxRetries).To(Equal(5))
		Expect(walletConfig.ReceiptTimeout).To(Equal(90 * time.Second))
		Expect(walletConfig.ReceiptPollInterval).To(Equal(3 * time.Second))
		Expect(walletConfig.MinConfirmations).To(Equal(uint64(3)))

		triggerConfig := config.TriggerConfig()
		Expect(triggerConfig.Deadline).To(Equal(uint64(1_700_000_000)))
		Expect(triggerConfig.PollInterval).To(Equal(2 * time.Second))

		strategy := config.GasStrategy()
		Expect(strategy.MarkupPercent).To(Equal(int64(20)))
		Expect(strategy.MaxGasPrice.String()).To(Equal("7500000000"))
	})

	It("keeps the private key out of the log fields", func() {
		config, err := rescueconfig.FromEnv(lookup(env))
		Expect(err).NotTo(HaveOccurred())

		fields := config.LogFields()
		Expect(fields).To(HaveKeyWithValue("private_key_exists", true))
		for _, value := range fields {
			Expect(value).NotTo(Equal(testKey))
		}
	})

	DescribeTable("rejects missing required values",
		func(key, message string) {
			delete(env, key)
			_, err := rescueconfig.FromEnv(lookup(env))
			Expect(err).To(MatchError(ContainSubstring(message)))
		},
		Entry("staking contract", "STAKING_CONTRACT_ADDRESS", "STAKING_CONTRACT_ADDRESS is required"),
		Entry("token contract", "TOKEN_CONTRACT_ADDRESS", "TOKEN_CONTRACT_ADDRESS is required"),
		Entry("recipient", "RECIPIENT_ADDRESS", "RECIPIENT_ADDRESS is required"),
		Entry("private key", "PRIVATE_KEY", "PRIVATE_KEY is required"),
		Entry("rpc url", "RPC_URL", "RPC_URL is required"),
		Entry("deadline", "DEADLINE", "DEADLINE is required"),
	)

	DescribeTable("rejects malformed values",
		func(key, value, message string) {
			env[key] = value
			_, err := rescueconfig.FromEnv(lookup(env))
			Expect(err).To(MatchError(ContainSubstring(message)))
		},
		Entry("bad recipient checksum", "RECIPIENT_ADDRESS", "0x742d35CC6634C0532925a3b844Bc454e4438f44e", "invalid address checksum"),
		Entry("zero recipient", "RECIPIENT_ADDRESS", "0x0000000000000000000000000000000000000000", "zero address"),
		Entry("short token address", "TOKEN_CONTRACT_ADDRESS", "0x1234", "invalid address format"),
		Entry("non numeric deadline", "DEADLINE", "tomorrow", "invalid DEADLINE"),
		Entry("negative deadline", "DEADLINE", "-1", "invalid DEADLINE"),
		Entry("bad poll interval", "POLL_INTERVAL", "soon", "invalid POLL_INTERVAL"),
		Entry("zero poll interval", "POLL_INTERVAL", "0s", "poll interval and backoff must be positive"),
		Entry("gas limit below intrinsic gas", "NATIVE_TRANSFER_GAS_LIMIT", "20000", "at least 21000"),
		Entry("bad gas cap", "MAX_GAS_PRICE_GWEI", "lots", "invalid MAX_GAS_PRICE_GWEI"),
		Entry("zero gas cap", "MAX_GAS_PRICE_GWEI", "0", "MAX_GAS_PRICE_GWEI must be positive"),
		Entry("negative retries", "RPC_MAX_RETRIES", "-1", "cannot be negative"),
		Entry("zero confirmations", "MIN_CONFIRMATIONS", "0", "MIN_CONFIRMATIONS must be at least 1"),
		Entry("unknown log format", "LOG_FORMAT", "xml", "LOG_FORMAT must be color or json"),
	)
})
