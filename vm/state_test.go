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

	"github.com/coreband/evmcore/common"
)

var addrA = common.HexToAddress("0x00000000000000000000000000000000000aaa")
var keyOne = common.BytesToHash([]byte{1})
var valOne = common.BytesToHash([]byte{0xaa})

func TestSubstateChildSeesParentWrites(t *testing.T) {
	root := NewSubstate(false)
	root.SetStorage(addrA, keyOne, valOne, nil)

	child := root.Enter(false)
	if got := child.Storage(addrA, keyOne, nil); got != valOne {
		t.Fatalf("expected child to see parent's write, got %x", got)
	}
}

func TestSubstateChildWriteIsCopyOnWrite(t *testing.T) {
	root := NewSubstate(false)
	root.SetStorage(addrA, keyOne, valOne, nil)

	child := root.Enter(false)
	other := common.BytesToHash([]byte{0xbb})
	child.SetStorage(addrA, keyOne, other, nil)

	if got := root.Storage(addrA, keyOne, nil); got != valOne {
		t.Fatalf("expected the parent's own copy to be untouched, got %x", got)
	}
	if got := child.Storage(addrA, keyOne, nil); got != other {
		t.Fatalf("expected the child's write to stick locally, got %x", got)
	}
}

func TestDiscardRevertedDropsChildStorage(t *testing.T) {
	root := NewSubstate(false)
	child := root.Enter(false)
	child.SetStorage(addrA, keyOne, valOne, nil)

	root.DiscardReverted(child)
	if got := root.Storage(addrA, keyOne, nil); !got.IsZero() {
		t.Fatalf("expected a discarded child's writes to never reach the parent, got %x", got)
	}
}

func TestMergeSucceededFoldsChildIntoParent(t *testing.T) {
	root := NewSubstate(false)
	child := root.Enter(false)
	child.SetStorage(addrA, keyOne, valOne, nil)
	child.Log(Log{Address: addrA})
	beneficiary := common.HexToAddress("0x00000000000000000000000000000000000bbb")
	child.MarkDeleted(beneficiary)

	root.MergeSucceeded(child)

	if got := root.Storage(addrA, keyOne, nil); got != valOne {
		t.Fatalf("expected the merged write to be visible on the parent, got %x", got)
	}
	if len(root.Logs()) != 1 {
		t.Fatalf("expected the child's log to be folded into the parent, got %d", len(root.Logs()))
	}
	if !root.IsDeleted(beneficiary) {
		t.Fatalf("expected the child's deletion to be visible on the parent")
	}
}

func TestStaticContextIsInheritedByChildren(t *testing.T) {
	root := NewSubstate(true)
	child := root.Enter(false)
	if !child.IsStatic() {
		t.Fatalf("expected a STATICCALL ancestor to force every descendant static")
	}
}

func TestResetStorageOfHidesEarlierWrites(t *testing.T) {
	root := NewSubstate(false)
	root.SetStorage(addrA, keyOne, valOne, nil)
	root.ResetStorageOf(addrA, nil)

	if got := root.Storage(addrA, keyOne, nil); !got.IsZero() {
		t.Fatalf("expected storage to read as zero after ResetStorageOf, got %x", got)
	}
}
