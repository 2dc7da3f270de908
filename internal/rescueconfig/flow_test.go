package rescueconfig_test

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient/simulated"
	"github.com/sirupsen/logrus"

	"github.com/lisanmuaddib/stake-rescue/internal/rescueconfig"
	"github.com/lisanmuaddib/stake-rescue/pkg/wallet"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ConfigureFlow", func() {
	var (
		config *rescueconfig.Config
		client *wallet.Client
		logger *logrus.Logger
	)

	BeforeEach(func() {
		logger = logrus.New()
		logger.SetOutput(io.Discard)

		var err error
		config, err = rescueconfig.FromEnv(lookup(requiredEnv()))
		Expect(err).NotTo(HaveOccurred())

		sim := simulated.NewBackend(types.GenesisAlloc{})
		DeferCleanup(sim.Close)

		client, err = wallet.NewClientWithBackend(context.Background(), logger, config.WalletConfig(), sim.Client(), config.PrivateKey)
		Expect(err).NotTo(HaveOccurred())
	})

	It("builds the flow with the built-in ABIs", func() {
		flow, err := rescueconfig.ConfigureFlow(rescueconfig.FlowConfig{Client: client, Config: config, Logger: logger})
		Expect(err).NotTo(HaveOccurred())
		Expect(flow).NotTo(BeNil())
	})

	It("loads ABI files when configured", func() {
		dir := GinkgoT().TempDir()
		config.StakingABIPath = filepath.Join(dir, "staking.json")
		Expect(os.WriteFile(config.StakingABIPath, []byte(wallet.StakingABI), 0o600)).To(Succeed())

		_, err := rescueconfig.ConfigureFlow(rescueconfig.FlowConfig{Client: client, Config: config, Logger: logger})
		Expect(err).NotTo(HaveOccurred())
	})

	It("fails on a missing ABI file", func() {
		config.TokenABIPath = "/nonexistent/token.json"

		_, err := rescueconfig.ConfigureFlow(rescueconfig.FlowConfig{Client: client, Config: config, Logger: logger})
		Expect(wallet.IsWalletError(err, wallet.ErrCodeInvalidABI)).To(BeTrue())
	})

	It("fails when the staking ABI has no withdraw", func() {
		dir := GinkgoT().TempDir()
		config.StakingABIPath = filepath.Join(dir, "erc20.json")
		Expect(os.WriteFile(config.StakingABIPath, []byte(wallet.ERC20ABI), 0o600)).To(Succeed())

		_, err := rescueconfig.ConfigureFlow(rescueconfig.FlowConfig{Client: client, Config: config, Logger: logger})
		Expect(err).To(MatchError(ContainSubstring("ABI has no withdraw method")))
	})
})
