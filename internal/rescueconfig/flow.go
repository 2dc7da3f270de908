package rescueconfig

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"

	"github.com/lisanmuaddib/stake-rescue/pkg/rescue"
	"github.com/lisanmuaddib/stake-rescue/pkg/wallet"
)

// FlowConfig holds what ConfigureFlow needs to build the rescue flow.
type FlowConfig struct {
	Client *wallet.Client
	Config *Config
	Logger *logrus.Logger
}

// ConfigureFlow binds the staking and token contracts and assembles the
// unstake, token transfer and sweep steps.
func ConfigureFlow(config FlowConfig) (*rescue.Flow, error) {
	stakingABI, err := loadABI(config.Config.StakingABIPath)
	if err != nil {
		return nil, err
	}
	tokenABI, err := loadABI(config.Config.TokenABIPath)
	if err != nil {
		return nil, err
	}

	staking, err := config.Client.NewStakingContract(common.HexToAddress(config.Config.StakingContractAddress), stakingABI)
	if err != nil {
		return nil, err
	}
	token, err := config.Client.NewTokenContract(common.HexToAddress(config.Config.TokenContractAddress), tokenABI)
	if err != nil {
		return nil, err
	}

	owner := config.Client.Address()
	recipient := config.Config.Recipient()
	pricer := rescue.NewGasPricer(config.Client, config.Config.GasStrategy(), config.Config.NativeTransferGasLimit, config.Logger)

	return rescue.NewRescueFlow(
		config.Logger,
		rescue.NewUnstakeStep(staking, config.Client, config.Logger),
		rescue.NewTokenTransferStep(token, config.Client, owner, recipient, config.Logger),
		rescue.NewSweeper(config.Client, pricer, owner, recipient, config.Logger),
	), nil
}

// loadABI returns the file's ABI, or "" for the built-in one when path is empty.
func loadABI(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	return wallet.LoadABI(path)
}
