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
	"encoding/hex"
	"strconv"

	"github.com/coreband/evmcore/common"
)

// Log is one LOG0..LOG4 event: up to four indexed topics plus an
// opaque data payload, addressed to the contract that emitted it.
type Log struct {
	Address common.Address
	Topics  []common.Hash
	Data    []byte
}

// Encode serializes a Log as a single leading topic-count byte followed
// by each 32-byte topic and the raw data, the wire form a host uses to
// hand logs back across its own boundary without depending on this
// package's types.
func (l Log) Encode() []byte {
	buf := make([]byte, 0, 1+32*len(l.Topics)+len(l.Data))
	buf = append(buf, byte(len(l.Topics)))
	for _, t := range l.Topics {
		buf = append(buf, t.Bytes()...)
	}
	buf = append(buf, l.Data...)
	return buf
}

// String renders a Log for human-facing diagnostics: lowercase hex
// throughout, matching the teacher's logging convention.
func (l Log) String() string {
	s := "address=" + l.Address.Hex()
	for i, t := range l.Topics {
		s += " topic" + strconv.Itoa(i) + "=" + t.Hex()
	}
	s += " data=" + hex.EncodeToString(l.Data)
	return s
}
