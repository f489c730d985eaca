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

func TestValidsMarksOnlyRealJumpdests(t *testing.T) {
	// PUSH1 0x5b (JUMPDEST as push data, not an instruction) then a real
	// JUMPDEST at offset 2.
	code := []byte{byte(PUSH1), byte(JUMPDEST), byte(JUMPDEST)}
	v := newValids(code)

	if v.IsValid(1) {
		t.Fatalf("offset 1 is inside a PUSH1 immediate and must not be a valid jump target")
	}
	if !v.IsValid(2) {
		t.Fatalf("offset 2 is a real JUMPDEST and must be a valid jump target")
	}
}

func TestValidsOutOfRangeIsInvalid(t *testing.T) {
	v := newValids([]byte{byte(JUMPDEST)})
	if v.IsValid(100) {
		t.Fatalf("offsets past the end of code can never be valid jump targets")
	}
}

func TestValidsForIsCachedByCodeHash(t *testing.T) {
	code := []byte{byte(JUMPDEST)}
	a := validsFor(code)
	b := validsFor(code)
	if len(a) != len(b) {
		t.Fatalf("expected identical Valids for identical code")
	}
	if !validsCache.Contains(common.Keccak256Hash(code)) {
		t.Fatalf("expected validsFor to cache the bitmap under keccak256(code)")
	}
}
