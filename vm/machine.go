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
	"github.com/holiman/uint256"

	"github.com/coreband/evmcore/common"
	"github.com/coreband/evmcore/params"
)

// StepKind tags the outcome of a single Machine.step().
type StepKind int

const (
	// StepContinue means step() already advanced pc itself (normal
	// instructions fall through to the next byte, or took a jump).
	StepContinue StepKind = iota
	// StepExit means the Machine has reached a terminal state; Exit()
	// returns the same reason on every subsequent step().
	StepExit
	// StepTrap means step() decoded an external opcode: pc has already
	// been advanced past it, and the stack operands for that opcode are
	// still on top of the stack, untouched, for the executor to read.
	StepTrap
)

// externalMinStack records how many operands each external opcode needs
// on the stack before it can trap out to the executor.
var externalMinStack = map[OpCode]int{
	BALANCE: 1, EXTCODESIZE: 1, EXTCODECOPY: 4, EXTCODEHASH: 1,
	BLOCKHASH: 1, SELFBALANCE: 0, CHAINID: 0,
	ORIGIN: 0, GASPRICE: 0, COINBASE: 0, TIMESTAMP: 0, NUMBER: 0, DIFFICULTY: 0, GASLIMIT: 0,
	SLOAD: 1, SSTORE: 2,
	LOG0: 2, LOG0 + 1: 3, LOG0 + 2: 4, LOG0 + 3: 5, LOG4: 6,
	CREATE: 3, CALL: 7, CALLCODE: 7, DELEGATECALL: 6, CREATE2: 4, STATICCALL: 6,
	SELFDESTRUCT: 1,
}

// CallContext is the (caller, address, apparent_value) triple of
// spec.md §3. ApparentValue is what CALLVALUE returns; it may differ
// from the value actually transferred for DELEGATECALL (inherited from
// the parent) and CALLCODE.
type CallContext struct {
	Caller        common.Address
	Address       common.Address
	ApparentValue uint256.Int
}

// Machine is the stepping interpreter of spec.md §4.1: an immutable code
// and call-data pair, a fallible program counter, a return range, a
// Valids bitmap, byte memory and a 256-bit word stack.
type Machine struct {
	code []byte
	data []byte

	pc   uint64
	exit ExitReason

	trapOp OpCode

	retStart uint256.Int
	retLen   uint256.Int
	hasRetRange bool

	returnBytes []byte

	valids Valids
	memory *Memory
	stack  *Stack

	cfg   *Config
	depth int

	ctx            CallContext
	lastReturnData []byte
}

// NewMachine constructs a Machine over the given immutable code and call
// data blobs, bound to the given call context. cfg gates which internal
// opcodes are enabled.
func NewMachine(code, data []byte, ctx CallContext, cfg *Config) *Machine {
	return &Machine{
		code:   code,
		data:   data,
		valids: validsFor(code),
		memory: NewMemory(),
		stack:  newstack(),
		cfg:    cfg,
		ctx:    ctx,
	}
}

// Context returns the machine's call context.
func (m *Machine) Context() CallContext { return m.ctx }

// SetDepth records the nested call depth this Machine is running at, for
// Config.Tracer's CaptureState calls. The executor sets this right after
// construction, from the Substate it opened for this frame.
func (m *Machine) SetDepth(depth int) { m.depth = depth }

// LastReturnData returns the return-data buffer of the most recently
// completed sub-call, as read by RETURNDATASIZE/RETURNDATACOPY.
func (m *Machine) LastReturnData() []byte { return m.lastReturnData }

// SetLastReturnData overwrites the return-data buffer; called by the
// executor immediately after servicing a CALL/CALLCODE/DELEGATECALL/
// STATICCALL/CREATE/CREATE2 trap.
func (m *Machine) SetLastReturnData(data []byte) { m.lastReturnData = common.CopyBytes(data) }

// Code returns the machine's immutable code blob.
func (m *Machine) Code() []byte { return m.code }

// Data returns the machine's immutable call data.
func (m *Machine) Data() []byte { return m.data }

// PC returns the current program counter. It is meaningless once Exit
// returns non-nil.
func (m *Machine) PC() uint64 { return m.pc }

// Stack returns the machine's evaluation stack.
func (m *Machine) Stack() *Stack { return m.stack }

// Memory returns the machine's byte memory.
func (m *Machine) Memory() *Memory { return m.memory }

// Exit returns the terminal exit reason, or nil if the machine is still
// running or currently trapped.
func (m *Machine) Exit() ExitReason { return m.exit }

// TrapOpcode returns the external opcode the last step() trapped on.
// Only meaningful immediately after a StepTrap result.
func (m *Machine) TrapOpcode() OpCode { return m.trapOp }

// ReturnBytes returns the bytes extracted from the return range on a
// terminal RETURN/REVERT, per spec.md §4.1's return-value extraction
// rules.
func (m *Machine) ReturnBytes() []byte { return m.returnBytes }

// PushResult lets the executor push a single word back onto the stack
// after servicing a trap (e.g. the result of SLOAD, or the 0/1/address
// pushed after a CALL/CREATE sub-execution), enforcing the stack limit.
func (m *Machine) PushResult(v uint256.Int) error {
	return m.stack.pushN(v)
}

// Release returns the machine's pooled stack for reuse once the call
// frame it belongs to has exited. The machine must not be stepped again
// afterward.
func (m *Machine) Release() {
	returnStack(m.stack)
}

// Fail lets the executor terminate the machine with an exit reason
// computed outside the step loop (e.g. a state write in a static context,
// or SELFDESTRUCT's terminal Suicided exit).
func (m *Machine) Fail(reason ExitReason) {
	m.exit = reason
}

// currentOp returns the opcode at pc, treating any pc past the end of
// code as an implicit STOP, matching the Yellow Paper's padding rule.
func (m *Machine) currentOp() OpCode {
	if m.pc >= uint64(len(m.code)) {
		return STOP
	}
	return OpCode(m.code[m.pc])
}

// exitWith finalizes the machine with reason and returns StepExit. Once
// set, every subsequent step() returns the same reason (spec.md §4.1).
func (m *Machine) exitWith(reason ExitReason) StepKind {
	m.exit = reason
	return StepExit
}

// trace invokes Config.Tracer.CaptureState when debugging is enabled,
// the same hook point the teacher's own interpreter loop calls out to
// after every executed instruction.
func (m *Machine) trace(op OpCode, err error) {
	if m.cfg.Debug && m.cfg.Tracer != nil {
		m.cfg.Tracer.CaptureState(m.pc, op, m.stack, m.memory, m.depth, err)
	}
}

// step decodes the byte at pc, classifies it, and executes exactly one
// of Continue/Jump/Exit/Trap as described in spec.md §4.1.
func (m *Machine) step() StepKind {
	if m.exit != nil {
		return StepExit
	}
	op := m.currentOp()

	if op.isExternal() {
		need := externalMinStack[op]
		err := m.stack.checkStack(need, params.StackLimit)
		m.trace(op, err)
		if err != nil {
			return m.exitWith(errToExit(err))
		}
		m.trapOp = op
		m.pc++
		return StepTrap
	}

	opFn, ok := internalOps[op]
	if !ok {
		err := ExitError{Kind: ErrKindOther, Msg: "invalid opcode: " + op.String()}
		m.trace(op, err)
		return m.exitWith(err)
	}
	if opFn.gate != nil && !opFn.gate(m.cfg) {
		err := ExitFatal{Kind: FatalKindNotSupported, Msg: "opcode disabled by config: " + op.String()}
		m.trace(op, err)
		return m.exitWith(err)
	}
	if err := m.stack.checkStack(opFn.minStack, opFn.maxStack); err != nil {
		m.trace(op, err)
		return m.exitWith(errToExit(err))
	}

	res, err := opFn.execute(m)
	m.trace(op, err)
	if err != nil {
		return m.exitWith(errToExit(err))
	}
	switch res {
	case resHalt:
		m.finalizeReturn()
		return m.exitWith(opFn.haltKind)
	case resRevert:
		m.finalizeReturn()
		return m.exitWith(ExitRevert(ExitReverted))
	case resJumped:
		return StepContinue
	default:
		n := 1
		if np, ok := op.IsPush(); ok {
			n += np
		}
		m.pc += uint64(n)
		return StepContinue
	}
}

// run loops step() until a terminal exit or a trap, mirroring spec.md
// §4.1's run().
func (m *Machine) run() StepKind {
	for {
		k := m.step()
		if k != StepContinue {
			return k
		}
	}
}

// setReturnRange records the memory slice that RETURN/REVERT will
// extract from once the opcode actually halts.
func (m *Machine) setReturnRange(start, length uint256.Int) {
	m.retStart, m.retLen = start, length
	m.hasRetRange = true
}

// finalizeReturn extracts the return bytes: a start that does not fit a
// uint64 yields an all-zero buffer of the requested length (empty when
// that length does not fit a uint64 either); when start+length overflows
// a uint64, it returns what memory holds from start onward, without
// zero-padding to the requested length; otherwise it returns the exact
// slice, zero-filled past the end of memory.
func (m *Machine) finalizeReturn() {
	if !m.hasRetRange {
		m.returnBytes = nil
		return
	}
	if !m.retStart.IsUint64() {
		// start > usize::MAX: spec.md §4.1 preserves this observable
		// behavior verbatim rather than treating it as an error.
		length := uint64(0)
		if m.retLen.IsUint64() {
			length = m.retLen.Uint64()
		}
		m.returnBytes = make([]byte, length)
		return
	}
	start := m.retStart.Uint64()
	length, lenOverflow := m.retLen.Uint64WithOverflow()
	end := start + length
	endOverflow := lenOverflow || end < start // uint64 addition overflow

	if endOverflow {
		// end > usize::MAX: return what memory holds from start, with no
		// zero-padding. The requested length can't be materialized as a
		// real byte slice; clamp to what memory actually has beyond start
		// rather than attempting an unbounded allocation.
		avail := uint64(m.memory.Len())
		if start >= avail {
			m.returnBytes = nil
			return
		}
		m.returnBytes = common.CopyBytes(m.memory.Data()[start:])
		return
	}
	m.returnBytes = m.memory.GetCopy(int64(start), int64(length))
}
