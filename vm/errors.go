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
	"errors"
	"fmt"
)

// Sentinel errors raised while stepping the Machine. step() converts
// each of these into the matching ExitError before returning it, the
// same way the teacher's interpreter loop turns errors.New sentinels
// into a terminal Run() result.
var (
	errWriteProtection = errors.New("evmcore: write protection")
	errInvalidJump      = errors.New("evmcore: invalid jump destination")
	errInvalidRange     = errors.New("evmcore: invalid memory range")
	errDesignatedInvalid = errors.New("evmcore: designated invalid (0xfe)")
	errOutOfOffset      = errors.New("evmcore: out of offset")
	errOutOfFund        = errors.New("evmcore: insufficient balance for transfer")
)

// ErrStackUnderflow is returned when an operation needs more items than
// the stack currently holds.
type ErrStackUnderflow struct {
	stackLen, required int
}

func (e *ErrStackUnderflow) Error() string {
	return fmt.Sprintf("stack underflow (%d <=> %d)", e.stackLen, e.required)
}

// ErrStackOverflow is returned when an operation would push the stack
// past its 1024-word limit.
type ErrStackOverflow struct {
	stackLen, limit int
}

func (e *ErrStackOverflow) Error() string {
	return fmt.Sprintf("stack limit reached %d (%d)", e.stackLen, e.limit)
}

// ErrInvalidOpCode describes an opcode with no enabled handler; errToExit
// maps it to ExitFatal{NotSupported}. Machine.step() does not return it:
// it exits undefined opcodes as ExitError{Other} and config-disabled ones
// as ExitFatal{NotSupported} directly.
type ErrInvalidOpCode struct {
	opcode OpCode
}

func (e *ErrInvalidOpCode) Error() string {
	return fmt.Sprintf("invalid opcode: %s", e.opcode)
}
