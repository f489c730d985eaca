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
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/coreband/evmcore/common"
)

// Valids is an immutable per-code-blob bitmap: bit i is set iff byte i of
// the code is JUMPDEST and byte i does not fall inside a PUSH immediate.
type Valids []byte

// newValids performs the one left-to-right pass described in spec.md
// §4.2: skip PUSHn immediates, mark JUMPDEST positions, otherwise
// advance by one.
func newValids(code []byte) Valids {
	v := make(Valids, (len(code)+7)/8)
	for pc := 0; pc < len(code); {
		op := OpCode(code[pc])
		if op == JUMPDEST {
			v[pc/8] |= 1 << (pc % 8)
			pc++
			continue
		}
		if n, ok := op.IsPush(); ok {
			pc += n + 1
			continue
		}
		pc++
	}
	return v
}

// IsValid reports whether pc is a legal JUMP/JUMPI target.
func (v Valids) IsValid(pc uint64) bool {
	if pc >= uint64(len(v))*8 {
		return false
	}
	return v[pc/8]&(1<<(pc%8)) != 0
}

// validsCache caches Valids bitmaps keyed by keccak256(code), mirroring
// the teacher interpreter's jump-destination analysis cache so that code
// shared by many call frames (a deployed contract invoked repeatedly in
// one process lifetime) is only scanned once.
var validsCache, _ = lru.New[common.Hash, Valids](1024)

// validsFor returns the Valids bitmap for code, constructing and caching
// it on first use.
func validsFor(code []byte) Valids {
	if len(code) == 0 {
		return Valids{}
	}
	h := common.Keccak256Hash(code)
	if v, ok := validsCache.Get(h); ok {
		return v
	}
	v := newValids(code)
	validsCache.Add(h, v)
	return v
}
