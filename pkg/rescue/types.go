// Package rescue waits for a staking lock to expire on chain and then moves
// everything out of the account: it unstakes, transfers the token balance and
// sweeps the remaining native balance to a recipient wallet.
package rescue

import (
	"errors"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Step names
const (
	StepUnstake       = "unstake"
	StepTokenTransfer = "token_transfer"
	StepSweep         = "sweep"
)

var (
	// ErrFlowAborted wraps errors that escaped step-level handling.
	ErrFlowAborted = errors.New("transaction flow aborted")

	// ErrAlreadyExecuted is returned by Trigger.Run when the journal already
	// holds a run for the deadline.
	ErrAlreadyExecuted = errors.New("transaction flow already executed for this deadline")
)

// StepStatus is the result class of a step.
type StepStatus string

const (
	// StatusSucceeded means the step's transaction was confirmed
	StatusSucceeded StepStatus = "succeeded"
	// StatusSkipped means there was nothing to do, e.g. a zero balance
	StatusSkipped StepStatus = "skipped"
	// StatusFailed means submission, confirmation or a read failed
	StatusFailed StepStatus = "failed"
)

// StepOutcome is what one step did.
type StepOutcome struct {
	Step   string
	Status StepStatus

	// TxHash is set once a transaction was broadcast, even if it later failed
	TxHash *common.Hash

	// Amount is the token or wei amount moved (or that would have been)
	Amount *big.Int

	// Reason explains a skip
	Reason string

	Err error
}

func succeeded(step string, hash common.Hash, amount *big.Int) StepOutcome {
	return StepOutcome{Step: step, Status: StatusSucceeded, TxHash: &hash, Amount: amount}
}

func skipped(step, reason string, amount *big.Int) StepOutcome {
	return StepOutcome{Step: step, Status: StatusSkipped, Reason: reason, Amount: amount}
}

func failed(step string, hash *common.Hash, err error) StepOutcome {
	return StepOutcome{Step: step, Status: StatusFailed, TxHash: hash, Err: err}
}

// FlowReport collects the outcomes of one flow execution in step order.
type FlowReport struct {
	RunID      string
	Outcomes   []StepOutcome
	StartedAt  time.Time
	FinishedAt time.Time
}

// Outcome returns the outcome of the named step.
func (r *FlowReport) Outcome(step string) (StepOutcome, bool) {
	for _, o := range r.Outcomes {
		if o.Step == step {
			return o, true
		}
	}
	return StepOutcome{}, false
}

// Failed returns the outcomes with StatusFailed.
func (r *FlowReport) Failed() []StepOutcome {
	var out []StepOutcome
	for _, o := range r.Outcomes {
		if o.Status == StatusFailed {
			out = append(out, o)
		}
	}
	return out
}

// FeeEstimate is the price of a native transfer at the moment it was computed.
type FeeEstimate struct {
	// BaseGasPrice is the node's suggested gas price
	BaseGasPrice *big.Int

	// PriorityGasPrice is BaseGasPrice plus the markup, possibly capped
	PriorityGasPrice *big.Int

	// GasLimit is the fixed limit for the transfer
	GasLimit uint64

	// GasCost is PriorityGasPrice * GasLimit
	GasCost *big.Int
}
