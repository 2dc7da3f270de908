package rescue

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// UnstakeStep calls withdraw() on the staking contract.
type UnstakeStep struct {
	staking  Staker
	receipts ReceiptWaiter
	logger   *logrus.Logger
}

// NewUnstakeStep creates the step that withdraws the staked tokens.
func NewUnstakeStep(staking Staker, receipts ReceiptWaiter, logger *logrus.Logger) *UnstakeStep {
	if logger == nil {
		logger = logrus.New()
	}
	return &UnstakeStep{
		staking:  staking,
		receipts: receipts,
		logger:   logger,
	}
}

// Name implements Step
func (s *UnstakeStep) Name() string {
	return StepUnstake
}

// Run implements Step
func (s *UnstakeStep) Run(ctx context.Context) StepOutcome {
	log := s.logger.WithField("step", StepUnstake)
	log.Info("Unstaking tokens")

	hash, err := s.staking.Withdraw(ctx)
	if err != nil {
		return failed(StepUnstake, nil, fmt.Errorf("withdraw failed: %w", err))
	}

	return confirm(ctx, s.receipts, log, StepUnstake, hash, nil)
}
