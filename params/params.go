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

// Package params collects the numeric constants the execution core's
// Config defaults to. Unlike the teacher's params package, none of these
// gate energy pricing — gas metering is out of scope for this core and
// every operation reports zero cost.
package params

const (
	// StackLimit is the maximum number of words the evaluation stack may
	// hold at once.
	StackLimit = 1024

	// CallCreateDepth is the default call_stack_limit: the maximum
	// nesting depth of CREATE/CALL/CALLCODE/DELEGATECALL/STATICCALL
	// sub-executions.
	CallCreateDepth = 1024

	// MaxCodeSize is the default create_contract_limit (Istanbul):
	// 0x6000 = 24576 bytes, the largest output RETURN-ed by init code
	// that may be installed as a contract's code.
	MaxCodeSize = 24576

	// MaxInitCodeSize bounds init_code length itself; unset (0) means
	// no limit is enforced by default, matching the spec's silence on
	// an init-code-size cap.
	MaxInitCodeSize = 0
)
