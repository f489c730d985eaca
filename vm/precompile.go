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

import "github.com/coreband/evmcore/common"

// PrecompileContext carries the call-site information a precompile may
// need beyond its input: who is calling it and with what apparent value,
// mirroring the CallContext a Machine carries for ordinary contract code.
type PrecompileContext struct {
	Caller        common.Address
	Address       common.Address
	ApparentValue common.Hash
}

// PrecompileResult is a precompile's outcome in the same two-kind shape
// as a Machine's own terminal states: either it succeeded with output
// bytes, or it failed with an ExitError. A precompile is never a Revert
// or a Fatal — per spec.md §6, a host that wants stateful precompiles
// bottoms out in ExitError{Other} for internal failures instead.
type PrecompileResult struct {
	Succeed ExitSucceed
	Output  []byte
	Err     *ExitError
}

// PrecompileSet resolves an address to a precompiled contract. It
// returns ok=false for any address it does not recognize, letting the
// executor fall through to ordinary code execution (which will simply
// find no code and return an empty success).
type PrecompileSet interface {
	Run(addr common.Address, input []byte, ctx PrecompileContext) (res PrecompileResult, ok bool)
}

// NoPrecompiles is the empty PrecompileSet, used when a host wires none
// of the standard Ethereum precompiles (spec.md's Non-goals exclude
// shipping implementations of them as part of this core).
type NoPrecompiles struct{}

func (NoPrecompiles) Run(common.Address, []byte, PrecompileContext) (PrecompileResult, bool) {
	return PrecompileResult{}, false
}
