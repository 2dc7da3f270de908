package rescue

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"
)

// TokenTransferStep moves the owner's entire token balance to the recipient.
type TokenTransferStep struct {
	token     Token
	receipts  ReceiptWaiter
	owner     common.Address
	recipient common.Address
	logger    *logrus.Logger
}

// NewTokenTransferStep creates the step that moves owner's token balance to recipient.
func NewTokenTransferStep(token Token, receipts ReceiptWaiter, owner, recipient common.Address, logger *logrus.Logger) *TokenTransferStep {
	if logger == nil {
		logger = logrus.New()
	}
	return &TokenTransferStep{
		token:     token,
		receipts:  receipts,
		owner:     owner,
		recipient: recipient,
		logger:    logger,
	}
}

// Name implements Step
func (s *TokenTransferStep) Name() string {
	return StepTokenTransfer
}

// Run implements Step. A zero balance submits nothing.
func (s *TokenTransferStep) Run(ctx context.Context) StepOutcome {
	log := s.logger.WithField("step", StepTokenTransfer)

	balance, err := s.token.BalanceOf(ctx, s.owner)
	if err != nil {
		return failed(StepTokenTransfer, nil, fmt.Errorf("failed to read token balance: %w", err))
	}
	log = log.WithField("token_balance", balance.String())
	log.Info("Token balance")

	if balance.Sign() <= 0 {
		log.Info("No tokens to transfer")
		return skipped(StepTokenTransfer, "zero token balance", balance)
	}

	log.Info("Transferring tokens to secure wallet")
	hash, err := s.token.Transfer(ctx, s.recipient, balance)
	if err != nil {
		return failed(StepTokenTransfer, nil, fmt.Errorf("token transfer failed: %w", err))
	}

	return confirm(ctx, s.receipts, log, StepTokenTransfer, hash, balance)
}
