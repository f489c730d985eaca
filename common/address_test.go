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

package common

import (
	"encoding/hex"
	"testing"
)

func TestCreateAddressIsDeterministic(t *testing.T) {
	sender := HexToAddress("0x111111111111111111111111111111111111111a")
	a := CreateAddress(sender, 0)
	b := CreateAddress(sender, 0)
	if a != b {
		t.Fatalf("CreateAddress not deterministic: %x != %x", a, b)
	}
	if c := CreateAddress(sender, 1); c == a {
		t.Fatalf("CreateAddress did not vary with nonce")
	}
}

func TestCreateAddress2IsDeterministic(t *testing.T) {
	sender := HexToAddress("0x222222222222222222222222222222222222222b")
	salt := BytesToHash([]byte("salt"))
	codeHash := Keccak256([]byte("init code"))

	a := CreateAddress2(sender, salt, codeHash)
	b := CreateAddress2(sender, salt, codeHash)
	if a != b {
		t.Fatalf("CreateAddress2 not deterministic")
	}

	otherSalt := BytesToHash([]byte("different salt"))
	if c := CreateAddress2(sender, otherSalt, codeHash); c == a {
		t.Fatalf("CreateAddress2 did not vary with salt")
	}
}

func TestHashRoundTrip(t *testing.T) {
	raw := Keccak256([]byte("hello"))
	h := BytesToHash(raw)
	if h.Hex() != "0x"+hex.EncodeToString(raw) {
		t.Fatalf("hash hex mismatch")
	}
}

func TestAddressTruncatesFromLeft(t *testing.T) {
	long := make([]byte, 32)
	for i := range long {
		long[i] = byte(i)
	}
	a := BytesToAddress(long)
	if a.Bytes()[0] != long[len(long)-AddressLength] {
		t.Fatalf("expected address to keep the trailing bytes of a long input")
	}
}
