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

func runToExit(t *testing.T, code, data []byte) *Machine {
	t.Helper()
	cfg := DefaultConfig()
	m := NewMachine(code, data, CallContext{}, &cfg)
	if k := m.run(); k != StepExit {
		t.Fatalf("expected the machine to reach a terminal exit without external opcodes, got %v", k)
	}
	return m
}

func TestTrivialReturn(t *testing.T) {
	// PUSH1 0x2a, PUSH1 0, MSTORE, PUSH1 32, PUSH1 0, RETURN
	code := []byte{
		byte(PUSH1), 0x2a,
		byte(PUSH1), 0x00,
		byte(MSTORE),
		byte(PUSH1), 32,
		byte(PUSH1), 0x00,
		byte(RETURN),
	}
	m := runToExit(t, code, nil)
	exit := m.Exit()
	if !exit.IsSucceed() {
		t.Fatalf("expected success, got %v", exit)
	}
	want := make([]byte, 32)
	want[31] = 0x2a
	if !bytes.Equal(m.ReturnBytes(), want) {
		t.Fatalf("return bytes mismatch: got %x", m.ReturnBytes())
	}
}

func TestRevertCarriesPayload(t *testing.T) {
	// PUSH1 0xff, PUSH1 0, MSTORE8, PUSH1 1, PUSH1 0, REVERT
	code := []byte{
		byte(PUSH1), 0xff,
		byte(PUSH1), 0x00,
		byte(MSTORE8),
		byte(PUSH1), 1,
		byte(PUSH1), 0x00,
		byte(REVERT),
	}
	m := runToExit(t, code, nil)
	if m.Exit().IsSucceed() {
		t.Fatalf("expected a revert, got success")
	}
	if _, ok := m.Exit().(ExitRevert); !ok {
		t.Fatalf("expected ExitRevert, got %T", m.Exit())
	}
	if !bytes.Equal(m.ReturnBytes(), []byte{0xff}) {
		t.Fatalf("expected the revert payload to survive, got %x", m.ReturnBytes())
	}
}

func TestInvalidJumpDestination(t *testing.T) {
	// JUMP to an offset that is not a JUMPDEST.
	code := []byte{byte(PUSH1), 0x05, byte(JUMP), byte(STOP), byte(STOP), byte(ADD)}
	m := runToExit(t, code, nil)
	exit, ok := m.Exit().(ExitError)
	if !ok || exit.Kind != ErrKindInvalidJump {
		t.Fatalf("expected ExitError{InvalidJump}, got %v", m.Exit())
	}
}

func TestJumpToRealJumpdestSucceeds(t *testing.T) {
	// PUSH1 4, JUMP, (pad), JUMPDEST, STOP
	code := []byte{byte(PUSH1), 0x04, byte(JUMP), byte(INVALID), byte(JUMPDEST), byte(STOP)}
	m := runToExit(t, code, nil)
	if !m.Exit().IsSucceed() {
		t.Fatalf("expected success jumping to a real JUMPDEST, got %v", m.Exit())
	}
}

func TestStackUnderflowSurfacesAsExitError(t *testing.T) {
	code := []byte{byte(ADD)} // needs two operands, stack is empty
	m := runToExit(t, code, nil)
	exit, ok := m.Exit().(ExitError)
	if !ok || exit.Kind != ErrKindStackUnderflow {
		t.Fatalf("expected ExitError{StackUnderflow}, got %v", m.Exit())
	}
}

func TestBalanceTrapsOut(t *testing.T) {
	code := []byte{byte(PUSH1), 0x01, byte(BALANCE)}
	cfg := DefaultConfig()
	m := NewMachine(code, nil, CallContext{}, &cfg)
	if k := m.run(); k != StepTrap {
		t.Fatalf("expected BALANCE to trap out to the executor, got %v", k)
	}
	if m.TrapOpcode() != BALANCE {
		t.Fatalf("expected trapOp BALANCE, got %v", m.TrapOpcode())
	}
}
