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

// Package hostargs defines the two small fixed-layout request structs a
// host-runtime entry point decodes off its own call buffer before
// invoking the executor: a plain function call, and a read-only view
// call. No third-party serialization library in the retrieval pack
// covers this host-specific wire format (see the module's DESIGN.md for
// why this is a hand-written codec rather than a borrowed dependency),
// so the layout is fixed-width and hand-written: 20-byte addresses, a
// 32-byte big-endian amount (view calls only), and the remaining bytes
// as input, with no length prefixes.
package hostargs

import (
	"encoding/binary"
	"errors"

	"github.com/coreband/evmcore/common"
)

var errShortBuffer = errors.New("hostargs: buffer too short")

// FunctionCallArgs is the argument layout for an ordinary, value-free
// contract call entry point: the target contract and the raw input.
type FunctionCallArgs struct {
	Contract common.Address
	Input    []byte
}

// Encode serializes a, in the layout Decode expects: 20-byte contract
// address followed by the raw input.
func (a FunctionCallArgs) Encode() []byte {
	buf := make([]byte, 20+len(a.Input))
	copy(buf[:20], a.Contract.Bytes())
	copy(buf[20:], a.Input)
	return buf
}

// DecodeFunctionCallArgs parses buf produced by Encode.
func DecodeFunctionCallArgs(buf []byte) (FunctionCallArgs, error) {
	if len(buf) < 20 {
		return FunctionCallArgs{}, errShortBuffer
	}
	return FunctionCallArgs{
		Contract: common.BytesToAddress(buf[:20]),
		Input:    common.CopyBytes(buf[20:]),
	}, nil
}

// ViewCallArgs is the argument layout for a read-only (no state commit)
// call entry point: sender, target, a big-endian 32-byte amount, and
// the raw input.
type ViewCallArgs struct {
	Sender  common.Address
	Address common.Address
	Amount  [32]byte // big-endian wei amount
	Input   []byte
}

// Encode serializes a, in the layout DecodeViewCallArgs expects.
func (a ViewCallArgs) Encode() []byte {
	buf := make([]byte, 20+20+32+len(a.Input))
	off := 0
	copy(buf[off:off+20], a.Sender.Bytes())
	off += 20
	copy(buf[off:off+20], a.Address.Bytes())
	off += 20
	copy(buf[off:off+32], a.Amount[:])
	off += 32
	copy(buf[off:], a.Input)
	return buf
}

// DecodeViewCallArgs parses buf produced by Encode.
func DecodeViewCallArgs(buf []byte) (ViewCallArgs, error) {
	const head = 20 + 20 + 32
	if len(buf) < head {
		return ViewCallArgs{}, errShortBuffer
	}
	var out ViewCallArgs
	out.Sender = common.BytesToAddress(buf[0:20])
	out.Address = common.BytesToAddress(buf[20:40])
	copy(out.Amount[:], buf[40:72])
	out.Input = common.CopyBytes(buf[72:])
	return out, nil
}

// AmountUint64 extracts the low 8 bytes of Amount, for hosts whose
// native balance unit fits a uint64; it panics if the high-order bytes
// are nonzero, matching the teacher's own "this should never happen on
// this chain" assertions for narrowing conversions.
func (a ViewCallArgs) AmountUint64() uint64 {
	for _, b := range a.Amount[:24] {
		if b != 0 {
			panic("hostargs: amount does not fit in uint64")
		}
	}
	return binary.BigEndian.Uint64(a.Amount[24:])
}
