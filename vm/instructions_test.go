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
	"bytes"
	"testing"
)

func pushBytes(data []byte) []byte {
	return append([]byte{byte(PUSH1) + byte(len(data)-1)}, data...)
}

func TestSARHugeShiftOfNegativeYieldsAllOnes(t *testing.T) {
	value := bytes.Repeat([]byte{0xff}, 32) // -1
	code := append(pushBytes(value), pushBytes([]byte{0x01, 0x01})...) // shift = 257
	code = append(code, byte(SAR),
		byte(PUSH1), 0x00, byte(MSTORE),
		byte(PUSH1), 32, byte(PUSH1), 0x00, byte(RETURN))

	m := runToExit(t, code, nil)
	if !m.Exit().IsSucceed() {
		t.Fatalf("expected success, got %v", m.Exit())
	}
	want := bytes.Repeat([]byte{0xff}, 32)
	if !bytes.Equal(m.ReturnBytes(), want) {
		t.Fatalf("expected a huge shift of a negative operand to yield all-ones, got %x", m.ReturnBytes())
	}
}

func TestSARHugeShiftOfPositiveYieldsZero(t *testing.T) {
	value := append([]byte{0x7f}, bytes.Repeat([]byte{0xff}, 31)...) // max positive
	code := append(pushBytes(value), pushBytes([]byte{0x01, 0x01})...) // shift = 257
	code = append(code, byte(SAR),
		byte(PUSH1), 0x00, byte(MSTORE),
		byte(PUSH1), 32, byte(PUSH1), 0x00, byte(RETURN))

	m := runToExit(t, code, nil)
	if !m.Exit().IsSucceed() {
		t.Fatalf("expected success, got %v", m.Exit())
	}
	want := make([]byte, 32)
	if !bytes.Equal(m.ReturnBytes(), want) {
		t.Fatalf("expected a huge shift of a positive operand to yield zero, got %x", m.ReturnBytes())
	}
}
