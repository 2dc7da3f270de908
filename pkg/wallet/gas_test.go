package wallet_test

import (
	"math/big"

	"github.com/lisanmuaddib/stake-rescue/pkg/wallet"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("GasStrategy", func() {
	It("adds 20% by default", func() {
		price, capped := wallet.DefaultGasStrategy().PriorityPrice(big.NewInt(5_000_000_000))
		Expect(capped).To(BeFalse())
		Expect(price.Int64()).To(Equal(int64(6_000_000_000)))
	})

	It("truncates the markup toward zero", func() {
		price, _ := wallet.DefaultGasStrategy().PriorityPrice(big.NewInt(9))
		Expect(price.Int64()).To(Equal(int64(10)))
	})

	It("does not modify the base price", func() {
		base := big.NewInt(100)
		_, _ = wallet.DefaultGasStrategy().PriorityPrice(base)
		Expect(base.Int64()).To(Equal(int64(100)))
	})

	It("clamps to the maximum", func() {
		strategy := &wallet.GasStrategy{MarkupPercent: 20, MaxGasPrice: big.NewInt(110)}
		price, capped := strategy.PriorityPrice(big.NewInt(100))
		Expect(capped).To(BeTrue())
		Expect(price.Int64()).To(Equal(int64(110)))
	})

	It("leaves prices under the maximum alone", func() {
		strategy := &wallet.GasStrategy{MarkupPercent: 20, MaxGasPrice: big.NewInt(1_000)}
		price, capped := strategy.PriorityPrice(big.NewInt(100))
		Expect(capped).To(BeFalse())
		Expect(price.Int64()).To(Equal(int64(120)))
	})

	It("multiplies price by limit", func() {
		Expect(wallet.GasCost(big.NewInt(6_000_000_000), wallet.NativeTransferGas).String()).
			To(Equal("126000000000000"))
	})
})

var _ = Describe("Units", func() {
	DescribeTable("FormatEther",
		func(wei *big.Int, expected string) {
			Expect(wallet.FormatEther(wei)).To(Equal(expected))
		},
		Entry("nil", nil, "0"),
		Entry("one ether", big.NewInt(1_000_000_000_000_000_000), "1"),
		Entry("sweep amount", big.NewInt(874_000_000_000_000), "0.000874"),
		Entry("negative", big.NewInt(-126_000_000_000_000), "-0.000126"),
	)

	It("formats gwei", func() {
		Expect(wallet.FormatGwei(big.NewInt(6_000_000_000))).To(Equal("6"))
		Expect(wallet.FormatGwei(big.NewInt(1_500_000_000))).To(Equal("1.5"))
	})
})
