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
	"golang.org/x/crypto/sha3"

	"github.com/holiman/uint256"

	"github.com/coreband/evmcore/common"
)

// toMemIndex reduces a word to a plain int suitable for indexing Memory,
// failing closed (errOutOfOffset) rather than wrapping when a memory
// offset or size would not fit in 64 bits. The Yellow Paper treats such
// an operand as addressing far beyond any realizable memory.
func toMemIndex(v *uint256.Int) (uint64, error) {
	if !v.IsUint64() {
		return 0, errOutOfOffset
	}
	return v.Uint64(), nil
}

func memWords(size uint64) uint64 {
	return (size + 31) / 32 * 32
}

// registerMemoryAndFlow wires memory access, control flow and the
// terminator opcodes (STOP/RETURN/REVERT/INVALID). JUMP/JUMPI consult
// the Machine's cached Valids bitmap rather than rescanning code.
func registerMemoryAndFlow() {
	op(SHA3, 2, 1, func(m *Machine) (opResult, error) {
		offset, size := m.stack.pop(), m.stack.peek()
		off, err := toMemIndex(&offset)
		if err != nil {
			return resNormal, err
		}
		sz, err := toMemIndex(size)
		if err != nil {
			return resNormal, err
		}
		if sz > 0 {
			m.memory.Resize(memWords(off + sz))
		}
		data := m.memory.GetPtr(int64(off), int64(sz))
		h := sha3.NewLegacyKeccak256()
		h.Write(data)
		size.SetBytes(h.Sum(nil))
		return resNormal, nil
	})

	op(POP, 1, 0, func(m *Machine) (opResult, error) {
		m.stack.pop()
		return resNormal, nil
	})

	op(MLOAD, 1, 1, func(m *Machine) (opResult, error) {
		offset := m.stack.peek()
		off, err := toMemIndex(offset)
		if err != nil {
			return resNormal, err
		}
		m.memory.Resize(memWords(off + 32))
		offset.SetBytes(m.memory.GetPtr(int64(off), 32))
		return resNormal, nil
	})

	op(MSTORE, 2, 0, func(m *Machine) (opResult, error) {
		offset, val := m.stack.pop(), m.stack.pop()
		off, err := toMemIndex(&offset)
		if err != nil {
			return resNormal, err
		}
		m.memory.Resize(memWords(off + 32))
		m.memory.Set32(off, &val)
		return resNormal, nil
	})

	op(MSTORE8, 2, 0, func(m *Machine) (opResult, error) {
		offset, val := m.stack.pop(), m.stack.pop()
		off, err := toMemIndex(&offset)
		if err != nil {
			return resNormal, err
		}
		m.memory.Resize(memWords(off + 1))
		m.memory.store[off] = byte(val.Uint64())
		return resNormal, nil
	})

	op(JUMP, 1, 0, func(m *Machine) (opResult, error) {
		dest := m.stack.pop()
		if !dest.IsUint64() || !m.valids.IsValid(dest.Uint64()) {
			return resNormal, errInvalidJump
		}
		m.pc = dest.Uint64()
		return resJumped, nil
	})

	op(JUMPI, 2, 0, func(m *Machine) (opResult, error) {
		dest, cond := m.stack.pop(), m.stack.pop()
		if cond.IsZero() {
			m.pc++
			return resJumped, nil
		}
		if !dest.IsUint64() || !m.valids.IsValid(dest.Uint64()) {
			return resNormal, errInvalidJump
		}
		m.pc = dest.Uint64()
		return resJumped, nil
	})

	op(PC, 0, 1, func(m *Machine) (opResult, error) {
		var v uint256.Int
		v.SetUint64(m.pc)
		return resNormal, m.stack.pushN(v)
	})

	op(MSIZE, 0, 1, func(m *Machine) (opResult, error) {
		var v uint256.Int
		v.SetUint64(uint64(m.memory.Len()))
		return resNormal, m.stack.pushN(v)
	})

	op(GAS, 0, 1, func(m *Machine) (opResult, error) {
		// This core reports no metering (spec.md Non-goals): GAS always
		// yields the maximum representable value so gas-aware contracts
		// never observe an artificial shortage.
		var v uint256.Int
		v.SetAllOne()
		return resNormal, m.stack.pushN(v)
	})

	op(JUMPDEST, 0, 0, func(m *Machine) (opResult, error) {
		return resNormal, nil
	})

	haltOp(STOP, 0, ExitStopped, func(m *Machine) (opResult, error) {
		return resHalt, nil
	})

	haltOp(RETURN, 2, ExitReturned, func(m *Machine) (opResult, error) {
		offset, size := m.stack.pop(), m.stack.pop()
		m.setReturnRange(offset, size)
		return resHalt, nil
	})

	gatedOp(REVERT, 2, 0, hasRevert, func(m *Machine) (opResult, error) {
		offset, size := m.stack.pop(), m.stack.pop()
		m.setReturnRange(offset, size)
		return resRevert, nil
	})

	op(INVALID, 0, 0, func(m *Machine) (opResult, error) {
		return resNormal, errDesignatedInvalid
	})
}

func hasRevert(cfg *Config) bool { return cfg.HasRevert }

// registerPushDupSwap wires PUSH1..PUSH32, DUP1..DUP16 and SWAP1..SWAP16.
func registerPushDupSwap() {
	for i := 0; i < 32; i++ {
		n := i + 1
		code := PUSH1 + OpCode(i)
		op(code, 0, 1, func(m *Machine) (opResult, error) {
			var v uint256.Int
			start := m.pc + 1
			end := start + uint64(n)
			if end > uint64(len(m.code)) {
				end = uint64(len(m.code))
			}
			if start > end {
				start = end
			}
			var buf [32]byte
			copy(buf[32-n:], m.code[start:end])
			v.SetBytes(buf[:])
			return resNormal, m.stack.pushN(v)
		})
	}
	for i := 1; i <= 16; i++ {
		n := i
		code := DUP1 + OpCode(i-1)
		op(code, n, n+1, func(m *Machine) (opResult, error) {
			v := *m.stack.Back(n - 1)
			return resNormal, m.stack.pushN(v)
		})
	}
	for i := 1; i <= 16; i++ {
		n := i
		code := SWAP1 + OpCode(i-1)
		op(code, n+1, n+1, func(m *Machine) (opResult, error) {
			m.stack.swap(n)
			return resNormal, nil
		})
	}
}

// registerLocalContext wires the opcodes answerable purely from the
// Machine's own immutable fields (code, data, call context, last return
// data) without a host round-trip.
func registerLocalContext() {
	op(ADDRESS, 0, 1, func(m *Machine) (opResult, error) {
		var v uint256.Int
		v.SetBytes(m.ctx.Address.Bytes())
		return resNormal, m.stack.pushN(v)
	})
	op(CALLER, 0, 1, func(m *Machine) (opResult, error) {
		var v uint256.Int
		v.SetBytes(m.ctx.Caller.Bytes())
		return resNormal, m.stack.pushN(v)
	})
	op(CALLVALUE, 0, 1, func(m *Machine) (opResult, error) {
		return resNormal, m.stack.pushN(m.ctx.ApparentValue)
	})
	op(CALLDATALOAD, 1, 1, func(m *Machine) (opResult, error) {
		offset := m.stack.peek()
		var buf [32]byte
		if offset.IsUint64() {
			off := offset.Uint64()
			if off < uint64(len(m.data)) {
				copy(buf[:], m.data[off:])
			}
		}
		offset.SetBytes(buf[:])
		return resNormal, nil
	})
	op(CALLDATASIZE, 0, 1, func(m *Machine) (opResult, error) {
		var v uint256.Int
		v.SetUint64(uint64(len(m.data)))
		return resNormal, m.stack.pushN(v)
	})
	op(CALLDATACOPY, 3, 0, func(m *Machine) (opResult, error) {
		destOffset, offset, size := m.stack.pop(), m.stack.pop(), m.stack.pop()
		return resNormal, memCopyFrom(m, m.data, &destOffset, &offset, &size)
	})
	op(CODESIZE, 0, 1, func(m *Machine) (opResult, error) {
		var v uint256.Int
		v.SetUint64(uint64(len(m.code)))
		return resNormal, m.stack.pushN(v)
	})
	op(CODECOPY, 3, 0, func(m *Machine) (opResult, error) {
		destOffset, offset, size := m.stack.pop(), m.stack.pop(), m.stack.pop()
		return resNormal, memCopyFrom(m, m.code, &destOffset, &offset, &size)
	})
	gatedOp(RETURNDATASIZE, 0, 1, hasReturnData, func(m *Machine) (opResult, error) {
		var v uint256.Int
		v.SetUint64(uint64(len(m.lastReturnData)))
		return resNormal, m.stack.pushN(v)
	})
	gatedOp(RETURNDATACOPY, 3, 0, hasReturnData, func(m *Machine) (opResult, error) {
		destOffset, offset, size := m.stack.pop(), m.stack.pop(), m.stack.pop()
		if !offset.IsUint64() || !size.IsUint64() {
			return resNormal, errOutOfOffset
		}
		off, sz := offset.Uint64(), size.Uint64()
		end := off + sz
		if end < off || end > uint64(len(m.lastReturnData)) {
			return resNormal, errOutOfOffset
		}
		return resNormal, memCopyFrom(m, m.lastReturnData, &destOffset, &offset, &size)
	})
}

func hasReturnData(cfg *Config) bool { return cfg.HasReturnData }

// memCopyFrom implements the *COPY family's shared semantics: copy size
// bytes of src starting at offset into memory at destOffset, zero-filling
// whatever part of the requested range falls past the end of src.
func memCopyFrom(m *Machine, src []byte, destOffset, offset, size *uint256.Int) error {
	destOff, err := toMemIndex(destOffset)
	if err != nil {
		return err
	}
	sz, err := toMemIndex(size)
	if err != nil {
		return err
	}
	if sz == 0 {
		return nil
	}
	m.memory.Resize(memWords(destOff + sz))

	buf := make([]byte, sz)
	if offset.IsUint64() {
		off := offset.Uint64()
		if off < uint64(len(src)) {
			copy(buf, common.CopyBytes(src[off:]))
		}
	}
	m.memory.Set(destOff, sz, buf)
	return nil
}
