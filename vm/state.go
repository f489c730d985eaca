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
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/holiman/uint256"

	"github.com/coreband/evmcore/common"
)

// Account is one address's staged view within a Substate: the balance
// and nonce the executor has computed so far, any code it has written
// (CREATE/CREATE2 only stage code here; it is never mutated otherwise),
// and the storage slots touched during this substate's lifetime.
type Account struct {
	Nonce   uint64
	Balance uint256.Int
	Code    []byte
	HasCode bool

	Storage      map[common.Hash]common.Hash
	ResetStorage bool // true once this account's prior storage has been wiped (post CREATE-collision cleanup)

	Deleted bool
}

func newAccount() *Account {
	return &Account{Storage: make(map[common.Hash]common.Hash)}
}

// Substate is one level of the nested, copy-on-read account state
// described by spec.md §5: every address not yet staged here falls
// through to the parent substate, and ultimately to the Backend.
type Substate struct {
	parent *Substate

	accounts map[common.Address]*Account
	deletes  mapset.Set[common.Address]
	logs     []Log

	isStatic bool
	depth    int
}

// NewSubstate opens the root substate over a Backend-backed execution.
func NewSubstate(isStatic bool) *Substate {
	return &Substate{
		accounts: make(map[common.Address]*Account),
		deletes:  mapset.NewThreadUnsafeSet[common.Address](),
		isStatic: isStatic,
	}
}

// Enter opens a child substate for a nested CALL/CREATE, inheriting the
// static-context flag unless the child itself is upgrading into a
// STATICCALL (callers pass true explicitly in that case).
func (s *Substate) Enter(isStatic bool) *Substate {
	return &Substate{
		parent:   s,
		accounts: make(map[common.Address]*Account),
		deletes:  mapset.NewThreadUnsafeSet[common.Address](),
		isStatic: s.isStatic || isStatic,
		depth:    s.depth + 1,
	}
}

// IsStatic reports whether mutating opcodes must be rejected in this
// substate (spec.md §5's static-context propagation: once set by a
// STATICCALL, every descendant inherits it).
func (s *Substate) IsStatic() bool { return s.isStatic }

// Depth is the nested call depth of this substate, 0 at the root.
func (s *Substate) Depth() int { return s.depth }

// account returns the staged Account for addr if this substate (or an
// ancestor) has touched it, without creating one.
func (s *Substate) account(addr common.Address) (*Account, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if a, ok := cur.accounts[addr]; ok {
			return a, true
		}
	}
	return nil, false
}

// accountMut returns a mutable staged Account for addr local to this
// substate, copying forward from an ancestor (or creating empty) on
// first touch, matching the copy-on-write discipline of spec.md §5.
func (s *Substate) accountMut(addr common.Address, backend Backend) *Account {
	if a, ok := s.accounts[addr]; ok {
		return a
	}
	var fresh *Account
	if parentAcct, ok := s.account(addr); ok {
		fresh = cloneAccount(parentAcct)
	} else {
		fresh = newAccount()
		if backend != nil {
			basic := backend.Basic(addr)
			fresh.Nonce, fresh.Balance = basic.Nonce, basic.Balance
		}
	}
	s.accounts[addr] = fresh
	return fresh
}

func cloneAccount(a *Account) *Account {
	storage := make(map[common.Hash]common.Hash, len(a.Storage))
	for k, v := range a.Storage {
		storage[k] = v
	}
	code := a.Code
	return &Account{
		Nonce: a.Nonce, Balance: a.Balance, Code: code, HasCode: a.HasCode,
		Storage: storage, ResetStorage: a.ResetStorage, Deleted: a.Deleted,
	}
}

// CodeHash returns the EIP-1052 code hash for addr: keccak256 of its
// staged or Backend code, or the canonical empty hash whenever it holds
// no code. Config is not consulted here.
func (s *Substate) CodeHash(addr common.Address, backend Backend) common.Hash {
	if a, ok := s.account(addr); ok && a.HasCode {
		return common.Keccak256Hash(a.Code)
	}
	if backend != nil {
		if code := backend.Code(addr); len(code) > 0 {
			return common.Keccak256Hash(code)
		}
	}
	return emptyCodeHash
}

var emptyCodeHash = common.Keccak256Hash(nil)

// Storage reads slot key for addr, consulting this substate's own
// writes first, then the parent chain, then the Backend — the
// original_storage/storage split of spec.md §5.
func (s *Substate) Storage(addr common.Address, key common.Hash, backend Backend) common.Hash {
	for cur := s; cur != nil; cur = cur.parent {
		if a, ok := cur.accounts[addr]; ok {
			if v, ok := a.Storage[key]; ok {
				return v
			}
			if a.ResetStorage {
				return common.Hash{}
			}
		}
	}
	if backend != nil {
		return backend.StorageAt(addr, key)
	}
	return common.Hash{}
}

// OriginalStorage reads key as it stood before this transaction began,
// bypassing every substate's staged writes — used by SSTORE's
// stipend-refund accounting in a future metering layer and exposed now
// so that layer has a seam to attach to.
func (s *Substate) OriginalStorage(addr common.Address, key common.Hash, backend Backend) common.Hash {
	if backend != nil {
		return backend.StorageAt(addr, key)
	}
	return common.Hash{}
}

// SetStorage stages a write to slot key of addr local to this substate.
func (s *Substate) SetStorage(addr common.Address, key, value common.Hash, backend Backend) {
	a := s.accountMut(addr, backend)
	a.Storage[key] = value
}

// ResetStorageOf marks addr's storage as wiped from this point forward,
// used when CREATE/CREATE2 reuses an address that held storage from an
// earlier, now-destroyed contract in the same transaction.
func (s *Substate) ResetStorageOf(addr common.Address, backend Backend) {
	a := s.accountMut(addr, backend)
	a.Storage = make(map[common.Hash]common.Hash)
	a.ResetStorage = true
}

// Log appends an event to this substate's buffer. Logs are discarded
// wholesale if the substate they belong to is ultimately reverted.
func (s *Substate) Log(l Log) {
	s.logs = append(s.logs, l)
}

// Logs returns this substate's own buffered logs (not children's; the
// executor merges child logs upward explicitly on success).
func (s *Substate) Logs() []Log { return s.logs }

// MarkDeleted records addr as self-destructed within this substate.
func (s *Substate) MarkDeleted(addr common.Address) {
	s.deletes.Add(addr)
	s.accountMut(addr, nil).Deleted = true
}

// IsDeleted reports whether addr has been self-destructed anywhere in
// this substate or an ancestor.
func (s *Substate) IsDeleted(addr common.Address) bool {
	for cur := s; cur != nil; cur = cur.parent {
		if cur.deletes.Contains(addr) {
			return true
		}
	}
	return false
}

// MergeSucceeded folds a successfully-completed child substate's
// staged accounts, deletions and logs into its parent, per spec.md
// §5's Succeeded merge rule.
func (s *Substate) MergeSucceeded(child *Substate) {
	for addr, acct := range child.accounts {
		s.accounts[addr] = acct
	}
	for addr := range child.deletes.Iter() {
		s.deletes.Add(addr)
	}
	s.logs = append(s.logs, child.logs...)
}

// DiscardReverted drops a reverted child substate entirely: none of its
// staged accounts, deletions or logs are visible to the parent, per
// spec.md §5's Reverted/Failed merge rule. It exists only to document
// the symmetry with MergeSucceeded at call sites.
func (s *Substate) DiscardReverted(child *Substate) {
	_ = child
}
