package rescue

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"

	"github.com/lisanmuaddib/stake-rescue/pkg/wallet"
)

// Sweeper moves the whole native balance, minus the transfer's own gas
// cost, to the recipient.
type Sweeper struct {
	wallet    NativeWallet
	pricer    *GasPricer
	owner     common.Address
	recipient common.Address
	logger    *logrus.Logger
}

// NewSweeper creates the native sweep step for owner's balance.
func NewSweeper(w NativeWallet, pricer *GasPricer, owner, recipient common.Address, logger *logrus.Logger) *Sweeper {
	if logger == nil {
		logger = logrus.New()
	}
	return &Sweeper{
		wallet:    w,
		pricer:    pricer,
		owner:     owner,
		recipient: recipient,
		logger:    logger,
	}
}

// Name implements Step
func (s *Sweeper) Name() string {
	return StepSweep
}

// SweepAmount returns balance - gasCost. It may be zero or negative.
func SweepAmount(balance, gasCost *big.Int) *big.Int {
	return new(big.Int).Sub(balance, gasCost)
}

// Run implements Step. An amount that does not cover gas is a skip, not a failure.
func (s *Sweeper) Run(ctx context.Context) StepOutcome {
	log := s.logger.WithField("step", StepSweep)
	log.Info("Transferring remaining native balance to secure wallet")

	balance, err := s.wallet.NativeBalance(ctx, s.owner)
	if err != nil {
		return failed(StepSweep, nil, fmt.Errorf("failed to read native balance: %w", err))
	}
	log.WithField("balance", wallet.FormatEther(balance)).Info("Wallet balance")

	fee, err := s.pricer.Estimate(ctx)
	if err != nil {
		return failed(StepSweep, nil, err)
	}

	amount := SweepAmount(balance, fee.GasCost)
	log = log.WithFields(logrus.Fields{
		"balance_wei":  balance.String(),
		"gas_cost_wei": fee.GasCost.String(),
		"amount":       wallet.FormatEther(amount),
	})

	if amount.Sign() <= 0 {
		log.Info("Insufficient balance to cover gas fees for transfer")
		return skipped(StepSweep, "insufficient balance", amount)
	}

	log.Info("Initiating transfer to secure wallet")
	hash, err := s.wallet.SendNative(ctx, s.recipient, amount, fee.PriorityGasPrice, fee.GasLimit)
	if err != nil {
		return failed(StepSweep, nil, fmt.Errorf("failed to send native transfer: %w", err))
	}

	return confirm(ctx, s.wallet, log, StepSweep, hash, amount)
}
