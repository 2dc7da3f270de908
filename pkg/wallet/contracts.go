package wallet

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"
)

// ERC20ABI is the minimal ERC20 ABI needed to read a balance and transfer it.
const ERC20ABI = `[
	{
		"constant": true,
		"inputs": [{"name": "_owner", "type": "address"}],
		"name": "balanceOf",
		"outputs": [{"name": "balance", "type": "uint256"}],
		"type": "function"
	},
	{
		"constant": false,
		"inputs": [
			{"name": "_to", "type": "address"},
			{"name": "_value", "type": "uint256"}
		],
		"name": "transfer",
		"outputs": [{"name": "", "type": "bool"}],
		"type": "function"
	}
]`

// StakingABI is the minimal staking ABI: a parameterless withdraw.
const StakingABI = `[
	{
		"inputs": [],
		"name": "withdraw",
		"outputs": [{"name": "", "type": "bool"}],
		"stateMutability": "nonpayable",
		"type": "function"
	}
]`

// LoadABI reads an ABI from path. Both a bare JSON array and a compiler
// artifact object with an "abi" field are accepted.
func LoadABI(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", NewWalletError(ErrCodeInvalidABI, "failed to read ABI file", err, path)
	}

	trimmed := strings.TrimSpace(string(raw))
	if strings.HasPrefix(trimmed, "{") {
		var artifact struct {
			ABI json.RawMessage `json:"abi"`
		}
		if err := json.Unmarshal(raw, &artifact); err != nil {
			return "", NewWalletError(ErrCodeInvalidABI, "failed to decode ABI artifact", err, path)
		}
		if len(artifact.ABI) == 0 {
			return "", NewWalletError(ErrCodeInvalidABI, "artifact has no abi field", nil, path)
		}
		return string(artifact.ABI), nil
	}
	return trimmed, nil
}

// Contract is a contract bound to the wallet's backend and signing key.
type Contract struct {
	client  *Client
	address common.Address
	bound   *bind.BoundContract
}

// BindContract parses abiJSON and binds it at address. Every method in
// required must be present in the ABI.
func (c *Client) BindContract(address common.Address, abiJSON string, required ...string) (*Contract, error) {
	parsedABI, err := abi.JSON(strings.NewReader(abiJSON))
	if err != nil {
		return nil, NewWalletError(ErrCodeInvalidABI, "failed to parse ABI", err, address.Hex())
	}
	for _, method := range required {
		if _, ok := parsedABI.Methods[method]; !ok {
			return nil, NewWalletError(ErrCodeInvalidABI, fmt.Sprintf("ABI has no %s method", method), nil, address.Hex())
		}
	}

	return &Contract{
		client:  c,
		address: address,
		bound:   bind.NewBoundContract(address, parsedABI, c.backend, c.backend, c.backend),
	}, nil
}

// Address returns the contract address.
func (ct *Contract) Address() common.Address {
	return ct.address
}

// Call runs a read-only method and returns its outputs.
func (ct *Contract) Call(ctx context.Context, method string, args ...interface{}) ([]interface{}, error) {
	var out []interface{}
	opts := &bind.CallOpts{Context: ctx, From: ct.client.Address()}
	if err := ct.bound.Call(opts, &out, method, args...); err != nil {
		return nil, NewWalletError(ErrCodeContractError, "contract call failed", err, method)
	}
	return out, nil
}

// Transact signs and broadcasts a state-changing method call. Gas limit and
// gas price are estimated by the backend. It returns the transaction hash
// without waiting for it to be mined.
func (ct *Contract) Transact(ctx context.Context, method string, args ...interface{}) (common.Hash, error) {
	auth, err := bind.NewKeyedTransactorWithChainID(ct.client.keyManager.privateKey, ct.client.chainID)
	if err != nil {
		return common.Hash{}, NewWalletError(ErrCodeTransactionFailed, "failed to create transactor", err, method)
	}

	nonce, err := ct.client.nonceManager.GetNonce(ctx, ct.client.backend, ct.client.Address())
	if err != nil {
		return common.Hash{}, err
	}
	defer ct.client.nonceManager.ReleaseNonce(nonce)

	auth.Context = ctx
	auth.Nonce = new(big.Int).SetUint64(nonce)

	tx, err := ct.bound.Transact(auth, method, args...)
	if err != nil {
		return common.Hash{}, NewWalletError(ErrCodeContractError, "contract transaction failed", err, method)
	}

	ct.client.log.WithFields(logrus.Fields{
		"tx_hash":  tx.Hash().Hex(),
		"contract": ct.address.Hex(),
		"method":   method,
		"nonce":    nonce,
	}).Debug("Broadcast contract transaction")

	return tx.Hash(), nil
}

// TokenContract is an ERC20 token the wallet holds.
type TokenContract struct {
	*Contract
}

// NewTokenContract binds an ERC20 token at address. An empty abiJSON uses ERC20ABI.
func (c *Client) NewTokenContract(address common.Address, abiJSON string) (*TokenContract, error) {
	if abiJSON == "" {
		abiJSON = ERC20ABI
	}
	contract, err := c.BindContract(address, abiJSON, "balanceOf", "transfer")
	if err != nil {
		return nil, err
	}
	return &TokenContract{Contract: contract}, nil
}

// BalanceOf queries the token balance of account.
func (t *TokenContract) BalanceOf(ctx context.Context, account common.Address) (*big.Int, error) {
	out, err := t.Call(ctx, "balanceOf", account)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, NewWalletError(ErrCodeContractError, "no balance returned", nil, "balanceOf")
	}

	balance, ok := out[0].(*big.Int)
	if !ok {
		return nil, NewWalletError(ErrCodeContractError, "failed to convert balance to *big.Int", nil, "balanceOf")
	}
	return balance, nil
}

// Transfer sends amount tokens to to.
func (t *TokenContract) Transfer(ctx context.Context, to common.Address, amount *big.Int) (common.Hash, error) {
	return t.Transact(ctx, "transfer", to, amount)
}

// StakingContract is the staking contract the wallet's tokens are locked in.
type StakingContract struct {
	*Contract
}

// NewStakingContract binds a staking contract at address. An empty abiJSON uses StakingABI.
func (c *Client) NewStakingContract(address common.Address, abiJSON string) (*StakingContract, error) {
	if abiJSON == "" {
		abiJSON = StakingABI
	}
	contract, err := c.BindContract(address, abiJSON, "withdraw")
	if err != nil {
		return nil, err
	}
	return &StakingContract{Contract: contract}, nil
}

// Withdraw calls withdraw() to release the staked tokens.
func (s *StakingContract) Withdraw(ctx context.Context) (common.Hash, error) {
	return s.Transact(ctx, "withdraw")
}
