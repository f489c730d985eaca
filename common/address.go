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
	"github.com/ethereum/go-ethereum/rlp"
	"golang.org/x/crypto/sha3"
)

// Keccak256 returns the Keccak256 digest of the concatenation of data.
func Keccak256(data ...[]byte) []byte {
	d := sha3.NewLegacyKeccak256()
	for _, b := range data {
		d.Write(b)
	}
	return d.Sum(nil)
}

// Keccak256Hash returns the Keccak256 digest of data as a Hash.
func Keccak256Hash(data ...[]byte) (h Hash) {
	d := sha3.NewLegacyKeccak256()
	for _, b := range data {
		d.Write(b)
	}
	d.Sum(h[:0])
	return h
}

// legacyRLP is the minimal [sender, nonce] list the Legacy address scheme
// RLP-encodes. nonce is a uint64, which rlp encodes with leading zero
// bytes stripped the way the Yellow Paper's RLP(U256) requires (empty
// byte string for zero).
type legacyRLP struct {
	Sender Address
	Nonce  uint64
}

// CreateAddress derives the address of a contract created via CREATE:
// the last 20 bytes of keccak256(RLP([sender, nonce])).
func CreateAddress(sender Address, nonce uint64) Address {
	enc, err := rlp.EncodeToBytes(legacyRLP{Sender: sender, Nonce: nonce})
	if err != nil {
		// rlp.EncodeToBytes only fails on unsupported types; the
		// struct above is fixed and always encodable.
		panic(err)
	}
	return BytesToAddress(Keccak256(enc)[12:])
}

// CreateAddress2 derives the address of a contract created via CREATE2:
// the last 20 bytes of keccak256(0xff || sender || salt || keccak256(initCode)).
func CreateAddress2(sender Address, salt Hash, initCodeHash []byte) Address {
	data := make([]byte, 0, 1+AddressLength+HashLength+HashLength)
	data = append(data, 0xff)
	data = append(data, sender.Bytes()...)
	data = append(data, salt.Bytes()...)
	data = append(data, initCodeHash...)
	return BytesToAddress(Keccak256(data)[12:])
}
