package rescue_test

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient/simulated"

	"github.com/lisanmuaddib/stake-rescue/pkg/rescue"
	"github.com/lisanmuaddib/stake-rescue/pkg/wallet"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

const simulatedKey = "b71c71a67e1177ad4e901695e1b4b9ee17ae16c6668d313eac2f96dbcda3f291"

var _ = Describe("Sweeper on a simulated chain", func() {
	var (
		ctx    context.Context
		sim    *simulated.Backend
		client *wallet.Client
	)

	BeforeEach(func() {
		ctx = context.Background()

		key, err := crypto.HexToECDSA(simulatedKey)
		Expect(err).NotTo(HaveOccurred())

		sim = simulated.NewBackend(types.GenesisAlloc{
			crypto.PubkeyToAddress(key.PublicKey): {Balance: big.NewInt(1_000_000_000_000_000)},
		})
		DeferCleanup(sim.Close)

		config := wallet.DefaultConfig()
		config.ReceiptPollInterval = 10 * time.Millisecond
		config.ReceiptTimeout = 10 * time.Second

		client, err = wallet.NewClientWithBackend(ctx, quietLogger(), config, sim.Client(), simulatedKey)
		Expect(err).NotTo(HaveOccurred())

		// the simulated chain only mines on Commit, so commit in the background
		// while the sweep waits for its receipt
		done := make(chan struct{})
		DeferCleanup(func() { close(done) })
		go func() {
			defer GinkgoRecover()
			ticker := time.NewTicker(20 * time.Millisecond)
			defer ticker.Stop()
			for {
				select {
				case <-done:
					return
				case <-ticker.C:
					sim.Commit()
				}
			}
		}()
	})

	It("empties the account into the recipient", func() {
		pricer := rescue.NewGasPricer(client, nil, 0, quietLogger())
		sweeper := rescue.NewSweeper(client, pricer, client.Address(), recipientAddr, quietLogger())

		outcome := sweeper.Run(ctx)
		Expect(outcome.Err).NotTo(HaveOccurred())
		Expect(outcome.Status).To(Equal(rescue.StatusSucceeded))

		remaining, err := client.NativeBalance(ctx, client.Address())
		Expect(err).NotTo(HaveOccurred())
		Expect(remaining.Sign()).To(BeZero())

		received, err := client.NativeBalance(ctx, recipientAddr)
		Expect(err).NotTo(HaveOccurred())
		Expect(received.String()).To(Equal(outcome.Amount.String()))
	})
})
