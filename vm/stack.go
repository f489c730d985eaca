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
	"sync"

	"github.com/holiman/uint256"

	"github.com/coreband/evmcore/params"
)

var stackPool = sync.Pool{
	New: func() interface{} {
		return &Stack{data: make([]uint256.Int, 0, 16)}
	},
}

// Stack is the Machine's 256-bit word stack, capped at params.StackLimit
// words. Index 0 of Data() is the bottom; the top of the stack is the
// last element, matching the teacher's push-to-the-end convention.
type Stack struct {
	data []uint256.Int
}

func newstack() *Stack {
	s := stackPool.Get().(*Stack)
	s.data = s.data[:0]
	return s
}

func returnStack(s *Stack) {
	stackPool.Put(s)
}

// Data returns the underlying slice, bottom first.
func (st *Stack) Data() []uint256.Int { return st.data }

func (st *Stack) len() int { return len(st.data) }

// push appends a word to the top of the stack. The caller must have
// already checked for overflow via the jump table's maxStack guard;
// pushN is the only method that enforces the limit itself.
func (st *Stack) push(d *uint256.Int) {
	st.data = append(st.data, *d)
}

// pushN attempts to push d, enforcing the 1024-word limit. On overflow
// the stack is left unchanged, matching spec.md §3's invariant.
func (st *Stack) pushN(d uint256.Int) error {
	if len(st.data) >= params.StackLimit {
		return &ErrStackOverflow{stackLen: len(st.data), limit: params.StackLimit}
	}
	st.data = append(st.data, d)
	return nil
}

func (st *Stack) pop() (ret uint256.Int) {
	ret = st.data[len(st.data)-1]
	st.data = st.data[:len(st.data)-1]
	return
}

func (st *Stack) peek() *uint256.Int {
	return &st.data[len(st.data)-1]
}

// Back returns the n'th element from the top, 0-indexed.
func (st *Stack) Back(n int) *uint256.Int {
	return &st.data[len(st.data)-n-1]
}

func (st *Stack) swap(n int) {
	top := len(st.data) - 1
	st.data[top], st.data[top-n] = st.data[top-n], st.data[top]
}

func (st *Stack) dup(n int) {
	st.push(&st.data[len(st.data)-n])
}

// checkStack validates the stack has enough items for minStack and not
// too many to push maxStack more without overflowing, returning
// StackUnderflow/StackOverflow per spec.md §3.
func (st *Stack) checkStack(minStack, maxStack int) error {
	if l := st.len(); l < minStack {
		return &ErrStackUnderflow{stackLen: l, required: minStack}
	} else if l > maxStack {
		return &ErrStackOverflow{stackLen: l, limit: maxStack}
	}
	return nil
}
