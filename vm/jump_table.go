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

import "github.com/coreband/evmcore/params"

// opResult is the outcome of a single internal opcode's execute func.
type opResult int

const (
	resNormal opResult = iota
	resJumped
	resHalt
	resRevert
)

type execFunc func(m *Machine) (opResult, error)

// operation describes one internal opcode: its handler, stack
// requirements and (for the rare config-gated opcode) the feature flag
// that must be set for it to run at all.
type operation struct {
	execute  execFunc
	minStack int
	maxStack int
	gate     func(*Config) bool
	haltKind ExitSucceed // only consulted when execute returns resHalt
}

// minStack/maxStack follow the teacher's stack_table.go convention:
// minStack is simply the pop count, maxStack is StackLimit adjusted by
// the net change (pops - pushes) so a push past the limit is caught
// before it happens.
func minStack(pops int) int { return pops }
func maxStack(pops, pushes int) int {
	return params.StackLimit + pops - pushes
}

// internalOps is the closed dispatch table for every opcode the Machine
// handles without trapping to the executor. Populated by init below via
// registerArith and registerBitwise (instructions_arith.go) and
// registerMemoryAndFlow, registerPushDupSwap and registerLocalContext
// (instructions_flow.go).
var internalOps = map[OpCode]*operation{}

func op(code OpCode, pops, pushes int, fn execFunc) {
	internalOps[code] = &operation{execute: fn, minStack: minStack(pops), maxStack: maxStack(pops, pushes)}
}

func gatedOp(code OpCode, pops, pushes int, gate func(*Config) bool, fn execFunc) {
	internalOps[code] = &operation{execute: fn, minStack: minStack(pops), maxStack: maxStack(pops, pushes), gate: gate}
}

func haltOp(code OpCode, pops int, kind ExitSucceed, fn execFunc) {
	internalOps[code] = &operation{execute: fn, minStack: minStack(pops), maxStack: maxStack(pops, 0), haltKind: kind}
}

func init() {
	registerArith()
	registerBitwise()
	registerMemoryAndFlow()
	registerPushDupSwap()
	registerLocalContext()
}
