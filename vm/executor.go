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
	"github.com/coreband/evmcore/log"
)

// StackExecutor drives Machines to completion, servicing every trap a
// Machine raises by consulting the Backend and, for CALL/CREATE family
// traps, recursively opening a child Machine over a child Substate.
// This is the component the teacher's CVMInterpreter.Run loop does not
// have a counterpart for: where the teacher inlines state access
// directly into its single gas-metered loop, this core keeps the
// Machine free of any host dependency and isolates every host
// interaction here.
type StackExecutor struct {
	backend     Backend
	precompiles PrecompileSet
	cfg         *Config
	log         *log.Logger
}

// NewStackExecutor builds an executor bound to a host Backend, an
// optional precompile set (use NoPrecompiles{} for none) and a Config.
func NewStackExecutor(backend Backend, precompiles PrecompileSet, cfg *Config) *StackExecutor {
	if precompiles == nil {
		precompiles = NoPrecompiles{}
	}
	return &StackExecutor{backend: backend, precompiles: precompiles, cfg: cfg, log: log.Root.With("pkg", "vm.executor")}
}

// CallResult is the outcome of a top-level transact_call/transact_create.
type CallResult struct {
	Exit       ExitReason
	ReturnData []byte
	Address    common.Address // set only by transact_create/transact_create2
	Logs       []Log
	Accounts   map[common.Address]*Account
	Deleted    []common.Address
}

// TransactCall runs a top-level message call, per spec.md §6's
// transact_call. It opens the root substate, executes, and — on
// success — applies the resulting account deltas to the Backend.
func (ex *StackExecutor) TransactCall(caller, address common.Address, value uint256.Int, input []byte, isStatic bool) CallResult {
	root := NewSubstate(isStatic)
	exit, ret := ex.call(root, caller, address, address, value, input, nil, isStatic)
	return ex.finish(root, exit, ret, common.Address{})
}

// TransactCreate runs a top-level CREATE, per spec.md §6's
// transact_create: the new address is the legacy sender+nonce scheme.
func (ex *StackExecutor) TransactCreate(caller common.Address, value uint256.Int, initCode []byte) CallResult {
	root := NewSubstate(false)
	nonce := ex.nonceOf(root, caller)
	addr := common.CreateAddress(caller, nonce)
	exit, ret := ex.create(root, caller, addr, value, initCode)
	return ex.finish(root, exit, ret, addr)
}

// TransactCreate2 runs a top-level CREATE2, per spec.md §6: the new
// address is salted and content-addressed by the init code hash.
func (ex *StackExecutor) TransactCreate2(caller common.Address, value uint256.Int, initCode []byte, salt common.Hash) CallResult {
	root := NewSubstate(false)
	addr := common.CreateAddress2(caller, salt, common.Keccak256(initCode))
	exit, ret := ex.create(root, caller, addr, value, initCode)
	return ex.finish(root, exit, ret, addr)
}

func (ex *StackExecutor) finish(root *Substate, exit ExitReason, ret []byte, addr common.Address) CallResult {
	res := CallResult{Exit: exit, ReturnData: ret, Address: addr}
	if exit != nil && exit.IsSucceed() {
		res.Logs = root.Logs()
		res.Accounts = root.accounts
		res.Deleted = root.deletes.ToSlice()
		if ex.backend != nil {
			if err := ex.backend.Apply(res.Accounts, res.Deleted, res.Logs, !ex.cfg.EmptyConsideredExists); err != nil {
				res.Exit = ExitFatal{Kind: FatalKindOther, Msg: err.Error(), Inner: err}
			}
		}
	}
	return res
}

func (ex *StackExecutor) nonceOf(s *Substate, addr common.Address) uint64 {
	if a, ok := s.account(addr); ok {
		return a.Nonce
	}
	if ex.backend != nil {
		return ex.backend.Basic(addr).Nonce
	}
	return 0
}

func (ex *StackExecutor) balanceOf(s *Substate, addr common.Address) uint256.Int {
	if a, ok := s.account(addr); ok {
		return a.Balance
	}
	if ex.backend != nil {
		return ex.backend.Basic(addr).Balance
	}
	return uint256.Int{}
}

func (ex *StackExecutor) codeOf(s *Substate, addr common.Address) []byte {
	if a, ok := s.account(addr); ok && a.HasCode {
		return a.Code
	}
	if ex.backend != nil {
		return ex.backend.Code(addr)
	}
	return nil
}

func (ex *StackExecutor) exists(s *Substate, addr common.Address) bool {
	if a, ok := s.account(addr); ok {
		return !a.Deleted
	}
	if ex.backend != nil {
		return ex.backend.Exists(addr)
	}
	return false
}

// transferValue moves value from from to to within substate s, failing
// with ErrKindOutOfFund if from's staged balance can't cover it.
func (ex *StackExecutor) transferValue(s *Substate, from, to common.Address, value uint256.Int) error {
	if value.IsZero() {
		return nil
	}
	fromAcct := s.accountMut(from, ex.backend)
	if fromAcct.Balance.Lt(&value) {
		return errOutOfFund
	}
	fromAcct.Balance.Sub(&fromAcct.Balance, &value)
	toAcct := s.accountMut(to, ex.backend)
	toAcct.Balance.Add(&toAcct.Balance, &value)
	return nil
}

// call executes code at codeAddress with storage context address, per
// spec.md §6's 7-step CALL/CALLCODE/DELEGATECALL/STATICCALL algorithm.
// apparentValue is what CALLVALUE reports (it can differ from the value
// actually transferred, for DELEGATECALL/CALLCODE); transfer is nil
// when no value transfer happens (DELEGATECALL, CALLCODE, STATICCALL,
// or a zero-value CALL).
func (ex *StackExecutor) call(parent *Substate, caller, address, codeAddress common.Address, value uint256.Int, input []byte, transfer *transferSpec, isStatic bool) (ExitReason, []byte) {
	if parent.Depth() >= ex.cfg.CallStackLimit {
		return ExitError{Kind: ErrKindCallTooDeep}, nil
	}

	child := parent.Enter(isStatic)

	if res, ok := ex.precompiles.Run(codeAddress, input, PrecompileContext{Caller: caller, Address: address, ApparentValue: common.Hash(value.Bytes32())}); ok {
		if res.Err != nil {
			return *res.Err, nil
		}
		if transfer != nil {
			if err := ex.transferValue(child, transfer.from, transfer.to, transfer.value); err != nil {
				return errToExit(err), nil
			}
		}
		parent.MergeSucceeded(child)
		return res.Succeed, res.Output
	}

	if transfer != nil {
		if err := ex.transferValue(child, transfer.from, transfer.to, transfer.value); err != nil {
			return errToExit(err), nil
		}
	}

	code := ex.codeOf(child, codeAddress)
	ctx := CallContext{Caller: caller, Address: address, ApparentValue: value}
	exit, ret := ex.run(child, code, input, ctx)

	if exit != nil && exit.IsSucceed() {
		ex.log.Trace("substate merged", "depth", child.Depth(), "address", address.Hex())
		parent.MergeSucceeded(child)
	} else {
		ex.log.Trace("substate discarded", "depth", child.Depth(), "address", address.Hex(), "exit", exit)
	}
	return exit, ret
}

type transferSpec struct {
	from, to common.Address
	value    uint256.Int
}

// create executes the 11-step CREATE/CREATE2 algorithm of spec.md §6:
// collision check (after the nonce bump, per Istanbul ordering),
// value transfer, init code execution, and size-limited code deposit.
func (ex *StackExecutor) create(parent *Substate, caller, newAddr common.Address, value uint256.Int, initCode []byte) (ExitReason, []byte) {
	if parent.Depth() >= ex.cfg.CallStackLimit {
		return ExitError{Kind: ErrKindCallTooDeep}, nil
	}

	callerAcct := parent.accountMut(caller, ex.backend)
	callerAcct.Nonce++

	child := parent.Enter(false)

	if ex.accountCollides(child, newAddr) {
		return ExitError{Kind: ErrKindCreateCollision}, nil
	}
	if existing, ok := child.account(newAddr); ok && len(existing.Storage) > 0 {
		child.ResetStorageOf(newAddr, ex.backend)
	}

	newAcct := child.accountMut(newAddr, ex.backend)
	if ex.cfg.CreateIncreaseNonce {
		newAcct.Nonce = 1
	}

	if !value.IsZero() {
		if err := ex.transferValue(child, caller, newAddr, value); err != nil {
			return errToExit(err), nil
		}
	}

	ctx := CallContext{Caller: caller, Address: newAddr, ApparentValue: value}
	exit, ret := ex.run(child, initCode, nil, ctx)

	if exit == nil || !exit.IsSucceed() {
		return exit, ret
	}

	if len(ret) > ex.cfg.CreateContractLimit {
		return ExitError{Kind: ErrKindCreateContractLimit}, nil
	}

	deployed := child.accountMut(newAddr, ex.backend)
	deployed.Code = common.CopyBytes(ret)
	deployed.HasCode = true

	parent.MergeSucceeded(child)
	return ExitSucceed(ExitReturned), ret
}

// accountCollides reports whether newAddr already has code or a
// nonzero nonce, the EIP-684 collision condition CREATE/CREATE2 must
// reject.
func (ex *StackExecutor) accountCollides(s *Substate, addr common.Address) bool {
	if a, ok := s.account(addr); ok {
		return a.HasCode || a.Nonce != 0
	}
	if ex.backend == nil {
		return false
	}
	basic := ex.backend.Basic(addr)
	return basic.Nonce != 0 || ex.backend.CodeSize(addr) > 0
}

// run steps a fresh Machine over code/input to completion, servicing
// every trap it raises until the Machine reaches a terminal exit.
func (ex *StackExecutor) run(s *Substate, code, input []byte, ctx CallContext) (ExitReason, []byte) {
	m := NewMachine(code, input, ctx, ex.cfg)
	m.SetDepth(s.Depth())
	defer m.Release()

	for {
		switch m.run() {
		case StepExit:
			return m.Exit(), m.ReturnBytes()
		case StepTrap:
			ex.service(s, m)
			if m.Exit() != nil {
				return m.Exit(), m.ReturnBytes()
			}
		}
	}
}

// service handles one trapped external opcode: it reads the opcode's
// operands directly off the Machine's stack (step() left them there
// untouched), performs the host-facing effect, and either pushes a
// result back with Machine.PushResult or force-terminates the Machine
// with Machine.Fail.
func (ex *StackExecutor) service(s *Substate, m *Machine) {
	switch m.TrapOpcode() {
	case BALANCE:
		addr := popAddress(m.Stack())
		push(m, ex.balanceOf(s, addr))
	case EXTCODESIZE:
		addr := popAddress(m.Stack())
		push(m, *uint256.NewInt(uint64(len(ex.codeOf(s, addr)))))
	case EXTCODEHASH:
		if ex.failIfDisabled(m, ex.cfg.HasExtCodeHash, EXTCODEHASH) {
			return
		}
		addr := popAddress(m.Stack())
		if !ex.exists(s, addr) {
			push(m, uint256.Int{})
		} else {
			h := s.CodeHash(addr, ex.backend)
			var v uint256.Int
			v.SetBytes(h.Bytes())
			push(m, v)
		}
	case EXTCODECOPY:
		st := m.Stack()
		addr := popAddress(st)
		destOffset, offset, size := st.pop(), st.pop(), st.pop()
		code := ex.codeOf(s, addr)
		_ = memCopyFrom(m, code, &destOffset, &offset, &size)
	case BLOCKHASH:
		n := m.Stack().pop()
		var h common.Hash
		if ex.backend != nil && n.IsUint64() {
			h = ex.backend.BlockHash(n.Uint64())
		}
		var v uint256.Int
		v.SetBytes(h.Bytes())
		push(m, v)
	case SELFBALANCE:
		if ex.failIfDisabled(m, ex.cfg.HasSelfBalance, SELFBALANCE) {
			return
		}
		push(m, ex.balanceOf(s, m.Context().Address))
	case CHAINID:
		if ex.failIfDisabled(m, ex.cfg.HasChainID, CHAINID) {
			return
		}
		if ex.backend != nil {
			push(m, ex.backend.ChainID())
		} else {
			push(m, uint256.Int{})
		}
	case ORIGIN:
		pushAddr(m, ex.backendOrigin())
	case GASPRICE:
		if ex.backend != nil {
			push(m, ex.backend.GasPrice())
		} else {
			push(m, uint256.Int{})
		}
	case COINBASE:
		pushAddr(m, ex.backendCoinbase())
	case TIMESTAMP:
		push(m, *uint256.NewInt(ex.backendTimestamp()))
	case NUMBER:
		push(m, *uint256.NewInt(ex.backendNumber()))
	case DIFFICULTY:
		if ex.backend != nil {
			push(m, ex.backend.BlockDifficulty())
		} else {
			push(m, uint256.Int{})
		}
	case GASLIMIT:
		push(m, *uint256.NewInt(ex.backendGasLimit()))
	case SLOAD:
		key := common.Hash(m.Stack().pop().Bytes32())
		v := s.Storage(m.Context().Address, key, ex.backend)
		var out uint256.Int
		out.SetBytes(v.Bytes())
		push(m, out)
	case SSTORE:
		if s.IsStatic() {
			m.Fail(errToExit(errWriteProtection))
			return
		}
		st := m.Stack()
		key, val := common.Hash(st.pop().Bytes32()), common.Hash(st.pop().Bytes32())
		s.SetStorage(m.Context().Address, key, val, ex.backend)
	case LOG0, LOG0 + 1, LOG0 + 2, LOG0 + 3, LOG4:
		if s.IsStatic() {
			m.Fail(errToExit(errWriteProtection))
			return
		}
		ex.serviceLog(s, m)
	case CREATE:
		ex.serviceCreate(s, m, false)
	case CREATE2:
		if ex.failIfDisabled(m, ex.cfg.HasCreate2, CREATE2) {
			return
		}
		ex.serviceCreate(s, m, true)
	case CALL:
		ex.serviceCall(s, m, callKindCall)
	case CALLCODE:
		ex.serviceCall(s, m, callKindCallCode)
	case DELEGATECALL:
		if ex.failIfDisabled(m, ex.cfg.HasDelegateCall, DELEGATECALL) {
			return
		}
		ex.serviceCall(s, m, callKindDelegateCall)
	case STATICCALL:
		ex.serviceCall(s, m, callKindStaticCall)
	case SELFDESTRUCT:
		ex.serviceSelfDestruct(s, m)
	default:
		m.Fail(ExitFatal{Kind: FatalKindUnhandledInterrupt, Msg: m.TrapOpcode().String()})
	}
}

func (ex *StackExecutor) backendOrigin() common.Address {
	if ex.backend != nil {
		return ex.backend.Origin()
	}
	return common.Address{}
}
func (ex *StackExecutor) backendCoinbase() common.Address {
	if ex.backend != nil {
		return ex.backend.BlockCoinbase()
	}
	return common.Address{}
}
func (ex *StackExecutor) backendTimestamp() uint64 {
	if ex.backend != nil {
		return ex.backend.BlockTimestamp()
	}
	return 0
}
func (ex *StackExecutor) backendNumber() uint64 {
	if ex.backend != nil {
		return ex.backend.BlockNumber()
	}
	return 0
}
func (ex *StackExecutor) backendGasLimit() uint64 {
	if ex.backend != nil {
		return ex.backend.BlockGasLimit()
	}
	return 0
}

func popAddress(st *Stack) common.Address {
	w := st.pop()
	b := w.Bytes20()
	return common.Address(b)
}

func push(m *Machine, v uint256.Int) {
	if err := m.PushResult(v); err != nil {
		m.Fail(errToExit(err))
	}
}

func pushAddr(m *Machine, addr common.Address) {
	var v uint256.Int
	v.SetBytes(addr.Bytes())
	push(m, v)
}

// failIfDisabled terminates m with the same NotSupported fatal the
// internal jump table raises for a config-gated opcode (machine.go's
// step(), opFn.gate) and reports true, when enabled is false. External
// opcodes trap unconditionally in Machine.step() since op.isExternal()
// has no visibility into Config, so the hardfork gate for these has to
// be re-checked here before the executor services the trap.
func (ex *StackExecutor) failIfDisabled(m *Machine, enabled bool, op OpCode) bool {
	if enabled {
		return false
	}
	m.Fail(ExitFatal{Kind: FatalKindNotSupported, Msg: "opcode disabled by config: " + op.String()})
	return true
}

func (ex *StackExecutor) serviceLog(s *Substate, m *Machine) {
	n := int(m.TrapOpcode() - LOG0)
	st := m.Stack()
	offset, size := st.pop(), st.pop()
	topics := make([]common.Hash, n)
	for i := 0; i < n; i++ {
		topics[i] = common.Hash(st.pop().Bytes32())
	}
	off, err := toMemIndex(&offset)
	if err != nil {
		m.Fail(errToExit(err))
		return
	}
	sz, err := toMemIndex(&size)
	if err != nil {
		m.Fail(errToExit(err))
		return
	}
	if sz > 0 {
		m.Memory().Resize(memWords(off + sz))
	}
	data := common.CopyBytes(m.Memory().GetPtr(int64(off), int64(sz)))
	s.Log(Log{Address: m.Context().Address, Topics: topics, Data: data})
}

func (ex *StackExecutor) serviceCreate(s *Substate, m *Machine, isCreate2 bool) {
	st := m.Stack()
	value := st.pop()
	offset, size := st.pop(), st.pop()
	var salt uint256.Int
	if isCreate2 {
		salt = st.pop()
	}
	if s.IsStatic() {
		m.Fail(errToExit(errWriteProtection))
		return
	}
	off, err := toMemIndex(&offset)
	if err != nil {
		m.Fail(errToExit(err))
		return
	}
	sz, err := toMemIndex(&size)
	if err != nil {
		m.Fail(errToExit(err))
		return
	}
	if sz > 0 {
		m.Memory().Resize(memWords(off + sz))
	}
	initCode := common.CopyBytes(m.Memory().GetPtr(int64(off), int64(sz)))
	caller := m.Context().Address

	if ex.balanceOf(s, caller).Lt(&value) {
		push(m, uint256.Int{})
		m.SetLastReturnData(nil)
		return
	}

	var newAddr common.Address
	if isCreate2 {
		newAddr = common.CreateAddress2(caller, common.Hash(salt.Bytes32()), common.Keccak256(initCode))
	} else {
		newAddr = common.CreateAddress(caller, ex.nonceOf(s, caller))
	}

	exit, ret := ex.create(s, caller, newAddr, value, initCode)
	m.SetLastReturnData(ret)
	if exit != nil && exit.IsSucceed() {
		pushAddr(m, newAddr)
	} else {
		push(m, uint256.Int{})
	}
}

type callKind int

const (
	callKindCall callKind = iota
	callKindCallCode
	callKindDelegateCall
	callKindStaticCall
)

func (ex *StackExecutor) serviceCall(s *Substate, m *Machine, kind callKind) {
	st := m.Stack()
	_ = st.pop() // gas: this core does not meter, so the requested stipend is ignored
	addr := popAddress(st)

	var value uint256.Int
	if kind == callKindCall || kind == callKindCallCode {
		value = st.pop()
	}

	inOffset, inSize := st.pop(), st.pop()
	outOffset, outSize := st.pop(), st.pop()

	if kind == callKindCall && s.IsStatic() && !value.IsZero() {
		m.Fail(errToExit(errWriteProtection))
		return
	}

	inOff, err := toMemIndex(&inOffset)
	if err != nil {
		m.Fail(errToExit(err))
		return
	}
	inSz, err := toMemIndex(&inSize)
	if err != nil {
		m.Fail(errToExit(err))
		return
	}
	if inSz > 0 {
		m.Memory().Resize(memWords(inOff + inSz))
	}
	input := common.CopyBytes(m.Memory().GetPtr(int64(inOff), int64(inSz)))

	self := m.Context().Address
	var exit ExitReason
	var ret []byte

	switch kind {
	case callKindCall:
		if ex.balanceOf(s, self).Lt(&value) {
			push(m, uint256.Int{})
			m.SetLastReturnData(nil)
			ex.writeCallOutput(m, nil, &outOffset, &outSize)
			return
		}
		var transfer *transferSpec
		if !value.IsZero() {
			transfer = &transferSpec{from: self, to: addr, value: value}
		}
		exit, ret = ex.call(s, self, addr, addr, value, input, transfer, s.IsStatic())
	case callKindCallCode:
		if ex.balanceOf(s, self).Lt(&value) {
			push(m, uint256.Int{})
			m.SetLastReturnData(nil)
			ex.writeCallOutput(m, nil, &outOffset, &outSize)
			return
		}
		exit, ret = ex.call(s, self, self, addr, value, input, nil, s.IsStatic())
	case callKindDelegateCall:
		exit, ret = ex.call(s, m.Context().Caller, self, addr, m.Context().ApparentValue, input, nil, s.IsStatic())
	case callKindStaticCall:
		exit, ret = ex.call(s, self, addr, addr, uint256.Int{}, input, nil, true)
	}

	m.SetLastReturnData(ret)
	ex.writeCallOutput(m, ret, &outOffset, &outSize)
	if exit != nil && exit.IsSucceed() {
		push(m, *uint256.NewInt(1))
	} else {
		push(m, uint256.Int{})
	}
}

// writeCallOutput copies a completed sub-call's return data into the
// caller's requested output range, zero-filling anything past the
// actual return length, per the CALL family's shared output semantics.
func (ex *StackExecutor) writeCallOutput(m *Machine, ret []byte, outOffset, outSize *uint256.Int) {
	off, err := toMemIndex(outOffset)
	if err != nil {
		return
	}
	sz, err := toMemIndex(outSize)
	if err != nil || sz == 0 {
		return
	}
	m.Memory().Resize(memWords(off + sz))
	buf := make([]byte, sz)
	copy(buf, ret)
	m.Memory().Set(off, sz, buf)
}

func (ex *StackExecutor) serviceSelfDestruct(s *Substate, m *Machine) {
	if s.IsStatic() {
		m.Fail(errToExit(errWriteProtection))
		return
	}
	beneficiary := popAddress(m.Stack())
	self := m.Context().Address
	bal := ex.balanceOf(s, self)
	if !bal.IsZero() && beneficiary != self {
		if err := ex.transferValue(s, self, beneficiary, bal); err != nil {
			m.Fail(errToExit(err))
			return
		}
	}
	s.MarkDeleted(self)
	m.Fail(ExitSucceed(ExitSuicided))
}
