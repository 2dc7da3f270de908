package rescue

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"
)

// confirm waits for hash and turns the receipt into the step outcome.
func confirm(ctx context.Context, receipts ReceiptWaiter, log *logrus.Entry, step string, hash common.Hash, amount *big.Int) StepOutcome {
	log = log.WithField("tx_hash", hash.Hex())
	log.Info("Waiting for confirmation")

	status, err := receipts.WaitForReceipt(ctx, hash)
	if err != nil {
		return failed(step, &hash, fmt.Errorf("confirmation failed: %w", err))
	}

	log.WithFields(logrus.Fields{
		"block_number": status.BlockNumber,
		"gas_used":     status.GasUsed,
	}).Info("Transaction confirmed")

	return succeeded(step, hash, amount)
}
