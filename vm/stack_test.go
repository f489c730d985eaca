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
	"testing"

	"github.com/holiman/uint256"

	"github.com/coreband/evmcore/params"
)

func TestStackPushPop(t *testing.T) {
	st := newstack()
	defer returnStack(st)

	v := uint256.NewInt(42)
	if err := st.pushN(*v); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := st.pop(); !got.Eq(v) {
		t.Fatalf("got %v, want %v", got.Uint64(), v.Uint64())
	}
}

func TestStackOverflow(t *testing.T) {
	st := newstack()
	defer returnStack(st)

	for i := 0; i < params.StackLimit; i++ {
		if err := st.pushN(*uint256.NewInt(uint64(i))); err != nil {
			t.Fatalf("unexpected overflow at %d: %v", i, err)
		}
	}
	if err := st.pushN(*uint256.NewInt(0)); err == nil {
		t.Fatalf("expected stack overflow past the limit")
	} else if _, ok := err.(*ErrStackOverflow); !ok {
		t.Fatalf("expected *ErrStackOverflow, got %T", err)
	}
}

func TestStackUnderflowCheck(t *testing.T) {
	st := newstack()
	defer returnStack(st)

	err := st.checkStack(1, params.StackLimit)
	if _, ok := err.(*ErrStackUnderflow); !ok {
		t.Fatalf("expected *ErrStackUnderflow on empty stack, got %T", err)
	}
}

func TestStackSwapAndDup(t *testing.T) {
	st := newstack()
	defer returnStack(st)

	st.push(uint256.NewInt(1))
	st.push(uint256.NewInt(2))
	st.swap(1)
	if top := st.peek(); !top.Eq(uint256.NewInt(1)) {
		t.Fatalf("swap(1) did not exchange the top two elements")
	}
	st.dup(1)
	if st.len() != 3 {
		t.Fatalf("dup(1) did not grow the stack")
	}
}
