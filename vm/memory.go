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
)

// Memory is the Machine's byte-addressable memory. Its length is always
// a multiple of 32; reads past the end implicitly zero-extend.
type Memory struct {
	store []byte
}

// NewMemory allocates an empty Memory.
func NewMemory() *Memory {
	return &Memory{}
}

// Len returns the current memory length.
func (m *Memory) Len() int { return len(m.store) }

// Resize grows the memory to size bytes, zero-filling the new region.
// size must already be a multiple of 32; callers round it up with
// memWords.
func (m *Memory) Resize(size uint64) {
	if uint64(m.Len()) < size {
		m.store = append(m.store, make([]byte, size-uint64(m.Len()))...)
	}
}

// Set writes value into memory starting at offset, which must already
// be within bounds (callers resize first).
func (m *Memory) Set(offset, size uint64, value []byte) {
	if size == 0 {
		return
	}
	if offset+size > uint64(len(m.store)) {
		panic("evmcore/vm: memory write out of bounds")
	}
	copy(m.store[offset:offset+size], value)
}

// Set32 writes val as a left-padded 32-byte word at offset.
func (m *Memory) Set32(offset uint64, val *uint256.Int) {
	if offset+32 > uint64(len(m.store)) {
		panic("evmcore/vm: memory write out of bounds")
	}
	b32 := val.Bytes32()
	copy(m.store[offset:offset+32], b32[:])
}

// GetCopy returns an independent copy of size bytes starting at offset.
// Reads past the allocated length are implicitly zero (the region was
// already zero-extended by Resize when the op that reads it was sized).
func (m *Memory) GetCopy(offset, size int64) []byte {
	if size == 0 {
		return nil
	}
	if int64(len(m.store)) > offset {
		cpy := make([]byte, size)
		copy(cpy, m.store[offset:])
		return cpy
	}
	return make([]byte, size)
}

// GetPtr returns a slice view (no copy) of size bytes starting at offset.
func (m *Memory) GetPtr(offset, size int64) []byte {
	if size == 0 {
		return nil
	}
	if int64(len(m.store)) > offset {
		return m.store[offset : offset+size]
	}
	return make([]byte, size)
}

// Data returns the full backing slice.
func (m *Memory) Data() []byte { return m.store }
