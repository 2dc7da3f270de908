package rescue

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/lisanmuaddib/stake-rescue/pkg/wallet"
)

// GasPricer prices a native transfer from the node's current gas price.
// Every call queries the node again; base fees move block to block.
type GasPricer struct {
	fees     FeeSource
	strategy *wallet.GasStrategy
	gasLimit uint64
	logger   *logrus.Logger
}

// NewGasPricer creates a pricer. A nil strategy uses wallet.DefaultGasStrategy
// and a zero gasLimit uses wallet.NativeTransferGas.
func NewGasPricer(fees FeeSource, strategy *wallet.GasStrategy, gasLimit uint64, logger *logrus.Logger) *GasPricer {
	if strategy == nil {
		strategy = wallet.DefaultGasStrategy()
	}
	if gasLimit == 0 {
		gasLimit = wallet.NativeTransferGas
	}
	if logger == nil {
		logger = logrus.New()
	}

	return &GasPricer{
		fees:     fees,
		strategy: strategy,
		gasLimit: gasLimit,
		logger:   logger,
	}
}

// Estimate returns the marked-up gas price, the gas limit and their product.
func (p *GasPricer) Estimate(ctx context.Context) (*FeeEstimate, error) {
	base, err := p.fees.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get fee data: %w", err)
	}
	if base == nil || base.Sign() < 0 {
		return nil, fmt.Errorf("node returned invalid gas price %v", base)
	}

	priority, capped := p.strategy.PriorityPrice(base)
	estimate := &FeeEstimate{
		BaseGasPrice:     base,
		PriorityGasPrice: priority,
		GasLimit:         p.gasLimit,
		GasCost:          wallet.GasCost(priority, p.gasLimit),
	}

	log := p.logger.WithFields(logrus.Fields{
		"base_gas_price_gwei":     wallet.FormatGwei(base),
		"priority_gas_price_gwei": wallet.FormatGwei(priority),
		"gas_limit":               p.gasLimit,
		"gas_cost":                wallet.FormatEther(estimate.GasCost),
	})
	if capped {
		log.Warn("Priority gas price capped at configured maximum")
	}
	log.Info("Calculated priority gas price")

	return estimate, nil
}
