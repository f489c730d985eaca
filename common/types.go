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

// Package common holds the value primitives shared by every layer of the
// execution core: 20-byte addresses, 32-byte words, and the small set of
// byte-slice helpers the interpreter and state layers lean on.
package common

import (
	"encoding/hex"
)

const (
	HashLength    = 32
	AddressLength = 20
)

// Hash represents the 32-byte output of Keccak256, and doubles as the
// general-purpose 32-byte word type used for storage keys/values.
type Hash [HashLength]byte

// BytesToHash converts b to a Hash, left-padding or truncating from the
// left as needed so the rightmost bytes of b become the rightmost bytes
// of the hash.
func BytesToHash(b []byte) Hash {
	var h Hash
	h.SetBytes(b)
	return h
}

// SetBytes sets the hash to the value of b, left-padding if b is shorter
// than HashLength and keeping only the trailing HashLength bytes otherwise.
func (h *Hash) SetBytes(b []byte) {
	if len(b) > HashLength {
		b = b[len(b)-HashLength:]
	}
	copy(h[HashLength-len(b):], b)
}

// Bytes returns the raw bytes of h.
func (h Hash) Bytes() []byte { return h[:] }

// IsZero reports whether h is the all-zero hash.
func (h Hash) IsZero() bool { return h == Hash{} }

func (h Hash) Hex() string { return "0x" + hex.EncodeToString(h[:]) }

func (h Hash) String() string { return h.Hex() }

// Address represents a 20-byte account or contract identifier.
type Address [AddressLength]byte

// BytesToAddress converts b to an Address, left-padding or truncating
// from the left as needed.
func BytesToAddress(b []byte) Address {
	var a Address
	a.SetBytes(b)
	return a
}

// HexToAddress decodes a 0x-prefixed or bare hex string into an Address.
func HexToAddress(s string) Address {
	return BytesToAddress(FromHex(s))
}

func (a *Address) SetBytes(b []byte) {
	if len(b) > AddressLength {
		b = b[len(b)-AddressLength:]
	}
	copy(a[AddressLength-len(b):], b)
}

func (a Address) Bytes() []byte { return a[:] }

func (a Address) Hash() Hash { return BytesToHash(a[:]) }

func (a Address) IsZero() bool { return a == Address{} }

func (a Address) Hex() string { return "0x" + hex.EncodeToString(a[:]) }

func (a Address) String() string { return a.Hex() }

// FromHex decodes a hex string, tolerating an optional 0x/0X prefix and
// an odd number of digits (implicitly zero-padded on the left).
func FromHex(s string) []byte {
	if has0xPrefix(s) {
		s = s[2:]
	}
	if len(s)%2 == 1 {
		s = "0" + s
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil
	}
	return b
}

func has0xPrefix(s string) bool {
	return len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}

// Addr1..Addr9 are the conventional precompile addresses 0x01..0x09,
// mirroring the teacher's common.AddrN constants used to key
// PrecompiledContracts.
var (
	Addr1 = BytesToAddress([]byte{1})
	Addr2 = BytesToAddress([]byte{2})
	Addr3 = BytesToAddress([]byte{3})
	Addr4 = BytesToAddress([]byte{4})
	Addr5 = BytesToAddress([]byte{5})
	Addr6 = BytesToAddress([]byte{6})
	Addr7 = BytesToAddress([]byte{7})
	Addr8 = BytesToAddress([]byte{8})
	Addr9 = BytesToAddress([]byte{9})
)

// CopyBytes returns an independent copy of b.
func CopyBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	c := make([]byte, len(b))
	copy(c, b)
	return c
}

// LeftPadBytes zero-pads b on the left up to size bytes.
func LeftPadBytes(b []byte, size int) []byte {
	if len(b) >= size {
		return b
	}
	out := make([]byte, size)
	copy(out[size-len(b):], b)
	return out
}

// RightPadBytes zero-pads b on the right up to size bytes.
func RightPadBytes(b []byte, size int) []byte {
	if len(b) >= size {
		return b
	}
	out := make([]byte, size)
	copy(out, b)
	return out
}
