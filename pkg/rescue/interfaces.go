package rescue

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/lisanmuaddib/stake-rescue/pkg/wallet"
)

// BlockSource reports the latest block seen by the node.
type BlockSource interface {
	LatestBlock(ctx context.Context) (*wallet.BlockSnapshot, error)
}

// FeeSource reports the node's current gas price in wei.
type FeeSource interface {
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
}

// ReceiptWaiter blocks until a transaction is mined and confirmed.
type ReceiptWaiter interface {
	WaitForReceipt(ctx context.Context, hash common.Hash) (*wallet.TransactionStatus, error)
}

// NativeWallet holds and moves the chain's native currency.
type NativeWallet interface {
	ReceiptWaiter
	NativeBalance(ctx context.Context, address common.Address) (*big.Int, error)
	SendNative(ctx context.Context, to common.Address, value, gasPrice *big.Int, gasLimit uint64) (common.Hash, error)
}

// ChainProvider is everything the rescue needs from the chain node.
// *wallet.Client implements it.
type ChainProvider interface {
	BlockSource
	FeeSource
	NativeWallet
}

// Staker releases staked tokens. *wallet.StakingContract implements it.
type Staker interface {
	Withdraw(ctx context.Context) (common.Hash, error)
}

// Token is an ERC20 the rescued account holds. *wallet.TokenContract implements it.
type Token interface {
	BalanceOf(ctx context.Context, account common.Address) (*big.Int, error)
	Transfer(ctx context.Context, to common.Address, amount *big.Int) (common.Hash, error)
}

// Notifier delivers a best-effort operator message. *notify.NtfyNotifier implements it.
type Notifier interface {
	Notify(ctx context.Context, message string) error
}

// Journal remembers executed flows across restarts. *journal.Store implements it.
type Journal interface {
	// CompletedRun reports whether a flow in which no step failed was
	// already recorded for deadline
	CompletedRun(ctx context.Context, deadline uint64) (runID string, found bool, err error)
	Record(ctx context.Context, deadline uint64, report *FlowReport) error
}

// Step is one action of the transaction flow.
type Step interface {
	// Name returns the unique identifier for this step
	Name() string
	// Run performs the step. Failures are reported in the outcome, not returned.
	Run(ctx context.Context) StepOutcome
}

// FlowExecutor runs the transaction flow once.
type FlowExecutor interface {
	Execute(ctx context.Context) (*FlowReport, error)
}
