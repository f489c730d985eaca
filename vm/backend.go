// Copyright 2024 The evmcore Authors
// This file is part of the evmcore library.
//
// The evmcore library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The evmcore library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the evmcore library. If not, see <http://www.gnu.org/licenses/>.

package vm

import (
	"github.com/holiman/uint256"

	"github.com/coreband/evmcore/common"
)

// BasicAccount is the pre-transaction balance/nonce pair a host reports
// for an address the current substate chain has not yet staged.
type BasicAccount struct {
	Nonce   uint64
	Balance uint256.Int
}

// Backend is the host contract spec.md §6 requires: everything the
// StackExecutor needs to know about the chain and the account set that
// exists independently of the transaction currently executing. A host
// embeds this core by implementing Backend over its own state trie,
// block header and transaction context.
type Backend interface {
	// Block and transaction context.
	BlockHash(number uint64) common.Hash
	BlockNumber() uint64
	BlockTimestamp() uint64
	BlockCoinbase() common.Address
	BlockDifficulty() uint256.Int
	BlockGasLimit() uint64
	ChainID() uint256.Int
	Origin() common.Address
	GasPrice() uint256.Int
	GasLeft() uint64

	// Account queries, consulted only when no substate in the current
	// chain has already staged an answer.
	Basic(addr common.Address) BasicAccount
	Code(addr common.Address) []byte
	CodeSize(addr common.Address) int
	StorageAt(addr common.Address, key common.Hash) common.Hash
	Exists(addr common.Address) bool

	// Apply commits a top-level transaction's final account deltas,
	// deletions and logs. deleteEmpty mirrors EIP-161: accounts left
	// touched-but-empty (zero nonce, zero balance, no code) are removed
	// rather than persisted, when true.
	Apply(accounts map[common.Address]*Account, deletedAddrs []common.Address, logs []Log, deleteEmpty bool) error
}
