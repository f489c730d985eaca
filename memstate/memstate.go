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

// Package memstate is a reference vm.Backend for tests and cmd/evmrun:
// a fastcache-backed account/storage/code store with no persistence.
// Production hosts implement vm.Backend over their own trie or ledger;
// this package exists so the executor has somewhere to run without one.
package memstate

import (
	"encoding/binary"
	"sync"

	"github.com/VictoriaMetrics/fastcache"
	"github.com/holiman/uint256"

	"github.com/coreband/evmcore/common"
	"github.com/coreband/evmcore/vm"
)

// Backend is an in-memory implementation of vm.Backend. Account basics
// and code live in plain maps (small, hot, need exact struct fidelity);
// storage slots go through a fastcache.Cache, the same cache the
// teacher's own trie layer uses to absorb repeated-read pressure.
type Backend struct {
	mu sync.RWMutex

	basics map[common.Address]vm.BasicAccount
	code   map[common.Address][]byte
	store  *fastcache.Cache

	chainID    uint256.Int
	blockNum   uint64
	blockTime  uint64
	coinbase   common.Address
	difficulty uint256.Int
	gasLimit   uint64
	origin     common.Address
	gasPrice   uint256.Int
	hashes     map[uint64]common.Hash
}

// New builds an empty Backend with a storage cache sized maxBytes.
func New(maxBytes int) *Backend {
	return &Backend{
		basics: make(map[common.Address]vm.BasicAccount),
		code:   make(map[common.Address][]byte),
		store:  fastcache.New(maxBytes),
		hashes: make(map[uint64]common.Hash),
	}
}

// SetBlockContext configures the block/transaction context queries
// return; tests call this before running a transaction.
func (b *Backend) SetBlockContext(number, timestamp, gasLimit uint64, coinbase common.Address, difficulty, chainID uint256.Int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.blockNum, b.blockTime, b.gasLimit = number, timestamp, gasLimit
	b.coinbase, b.difficulty, b.chainID = coinbase, difficulty, chainID
}

// SetTxContext configures the per-transaction origin/gas price pair.
func (b *Backend) SetTxContext(origin common.Address, gasPrice uint256.Int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.origin, b.gasPrice = origin, gasPrice
}

// SetBlockHash seeds the historical hash returned for BLOCKHASH(number).
func (b *Backend) SetBlockHash(number uint64, hash common.Hash) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.hashes[number] = hash
}

// SetAccount seeds addr's pre-transaction nonce, balance and code.
func (b *Backend) SetAccount(addr common.Address, nonce uint64, balance uint256.Int, code []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.basics[addr] = vm.BasicAccount{Nonce: nonce, Balance: balance}
	if len(code) > 0 {
		b.code[addr] = code
	}
}

// SetStorage seeds a single storage slot for addr.
func (b *Backend) SetStorage(addr common.Address, key, value common.Hash) {
	b.store.Set(storageCacheKey(addr, key), value.Bytes())
}

func storageCacheKey(addr common.Address, key common.Hash) []byte {
	buf := make([]byte, 20+32)
	copy(buf[:20], addr.Bytes())
	copy(buf[20:], key.Bytes())
	return buf
}

func (b *Backend) BlockHash(number uint64) common.Hash {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.hashes[number]
}
func (b *Backend) BlockNumber() uint64            { return b.blockNum }
func (b *Backend) BlockTimestamp() uint64         { return b.blockTime }
func (b *Backend) BlockCoinbase() common.Address  { return b.coinbase }
func (b *Backend) BlockDifficulty() uint256.Int   { return b.difficulty }
func (b *Backend) BlockGasLimit() uint64          { return b.gasLimit }
func (b *Backend) ChainID() uint256.Int           { return b.chainID }
func (b *Backend) Origin() common.Address         { return b.origin }
func (b *Backend) GasPrice() uint256.Int          { return b.gasPrice }
func (b *Backend) GasLeft() uint64                { return ^uint64(0) }

func (b *Backend) Basic(addr common.Address) vm.BasicAccount {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.basics[addr]
}

func (b *Backend) Code(addr common.Address) []byte {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return common.CopyBytes(b.code[addr])
}

func (b *Backend) CodeSize(addr common.Address) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.code[addr])
}

func (b *Backend) StorageAt(addr common.Address, key common.Hash) common.Hash {
	var out [32]byte
	v, ok := b.store.HasGet(out[:0], storageCacheKey(addr, key))
	if !ok {
		return common.Hash{}
	}
	return common.BytesToHash(v)
}

func (b *Backend) Exists(addr common.Address) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if _, ok := b.basics[addr]; ok {
		return true
	}
	_, ok := b.code[addr]
	return ok
}

// Apply commits a transaction's staged accounts, deletions and logs.
// deleteEmpty drops any touched account left with zero nonce, zero
// balance and no code, per EIP-161.
func (b *Backend) Apply(accounts map[common.Address]*vm.Account, deleted []common.Address, logs []vm.Log, deleteEmpty bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for addr, acct := range accounts {
		if acct.Deleted {
			delete(b.basics, addr)
			delete(b.code, addr)
			continue
		}
		if deleteEmpty && acct.Nonce == 0 && acct.Balance.IsZero() && !acct.HasCode && len(b.code[addr]) == 0 {
			delete(b.basics, addr)
			delete(b.code, addr)
			continue
		}
		b.basics[addr] = vm.BasicAccount{Nonce: acct.Nonce, Balance: acct.Balance}
		if acct.HasCode {
			b.code[addr] = acct.Code
		}
		for k, v := range acct.Storage {
			b.store.Set(storageCacheKey(addr, k), v.Bytes())
		}
	}
	for _, addr := range deleted {
		delete(b.basics, addr)
		delete(b.code, addr)
	}
	_ = logs // a real host persists/emits these; memstate only commits account state
	return nil
}

// BlockHashFromUint64 returns a Hash whose low 8 bytes hold n big-endian
// and whose other bytes are zero, a convenient value to seed with
// SetBlockHash.
func BlockHashFromUint64(n uint64) common.Hash {
	var b [32]byte
	binary.BigEndian.PutUint64(b[24:], n)
	return common.BytesToHash(b[:])
}
