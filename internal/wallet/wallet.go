// Package wallet holds the fixed values the shell serves in place of a real
// wallet. Nothing here touches a chain; every value is configured up front
// and immutable for the lifetime of the process.
package wallet

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/ethshell/ethshell/internal/config"
)

// State is the read-only mock wallet state behind the bridge.
type State struct {
	chainID   *big.Int
	account   common.Address
	txHash    common.Hash
	signature hexutil.Bytes
}

// New validates the configured values and builds the state. Malformed values
// fail here, at startup, so request handling never has to.
func New(cfg config.WalletConfig) (*State, error) {
	if cfg.ChainID == 0 {
		return nil, fmt.Errorf("wallet: chain id must be non-zero")
	}
	if !common.IsHexAddress(cfg.Account) {
		return nil, fmt.Errorf("wallet: invalid account address %q", cfg.Account)
	}
	hash, err := hexutil.Decode(cfg.TxHash)
	if err != nil || len(hash) != common.HashLength {
		return nil, fmt.Errorf("wallet: invalid transaction hash %q", cfg.TxHash)
	}
	sig, err := hexutil.Decode(cfg.Signature)
	if err != nil || len(sig) != 65 {
		return nil, fmt.Errorf("wallet: invalid signature %q", cfg.Signature)
	}
	return &State{
		chainID:   new(big.Int).SetUint64(cfg.ChainID),
		account:   common.HexToAddress(cfg.Account),
		txHash:    common.BytesToHash(hash),
		signature: sig,
	}, nil
}

// ChainIDHex returns the chain id as a 0x-prefixed hex quantity, e.g. "0x1".
func (s *State) ChainIDHex() string {
	return hexutil.EncodeBig(s.chainID)
}

// NetworkVersion returns the chain id as a decimal string, the legacy
// net_version form.
func (s *State) NetworkVersion() string {
	return s.chainID.String()
}

// Accounts returns the one-element account list, checksummed.
func (s *State) Accounts() []string {
	return []string{s.account.Hex()}
}

// Address returns the mock account address.
func (s *State) Address() common.Address {
	return s.account
}

// TxHash returns the canned transaction hash.
func (s *State) TxHash() string {
	return s.txHash.Hex()
}

// Signature returns the canned personal_sign signature.
func (s *State) Signature() string {
	return s.signature.String()
}
