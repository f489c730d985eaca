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

package vm_test

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/coreband/evmcore/common"
	"github.com/coreband/evmcore/memstate"
	"github.com/coreband/evmcore/vm"
)

func newExecutor() (*vm.StackExecutor, *memstate.Backend) {
	backend := memstate.New(1024 * 1024)
	cfg := vm.DefaultConfig()
	return vm.NewStackExecutor(backend, vm.NoPrecompiles{}, &cfg), backend
}

var caller = common.HexToAddress("0x00000000000000000000000000000000000001")

func TestTransactCreateDeploysCode(t *testing.T) {
	ex, backend := newExecutor()
	backend.SetAccount(caller, 0, *uint256.NewInt(1_000_000), nil)

	// init code: PUSH1 1, PUSH1 0, MSTORE8, PUSH1 1, PUSH1 0, RETURN
	initCode := []byte{
		byte(vm.PUSH1), 0x01,
		byte(vm.PUSH1), 0x00,
		byte(vm.MSTORE8),
		byte(vm.PUSH1), 1,
		byte(vm.PUSH1), 0x00,
		byte(vm.RETURN),
	}

	res := ex.TransactCreate(caller, uint256.Int{}, initCode)
	require.True(t, res.Exit.IsSucceed(), "exit: %v", res.Exit)
	require.Equal(t, []byte{0x01}, res.ReturnData)
	require.False(t, res.Address.IsZero())

	deployed := backend.Code(res.Address)
	require.Equal(t, []byte{0x01}, deployed)
}

func TestCreateCollisionWhenTargetHasCode(t *testing.T) {
	ex, backend := newExecutor()
	backend.SetAccount(caller, 0, *uint256.NewInt(1_000_000), nil)

	// The address CREATE would derive for (caller, nonce=0) already has
	// code staged in the backend, so the creation must collide.
	collideAddr := common.CreateAddress(caller, 0)
	backend.SetAccount(collideAddr, 1, uint256.Int{}, []byte{byte(vm.STOP)})

	res := ex.TransactCreate(caller, uint256.Int{}, []byte{byte(vm.STOP)})
	exitErr, ok := res.Exit.(vm.ExitError)
	require.True(t, ok, "expected ExitError, got %T", res.Exit)
	require.Equal(t, vm.ErrKindCreateCollision, exitErr.Kind)
}

func TestDelegateCallSharesStorageOfCaller(t *testing.T) {
	ex, backend := newExecutor()
	backend.SetAccount(caller, 0, *uint256.NewInt(1_000_000), nil)

	library := common.HexToAddress("0x00000000000000000000000000000000000003")
	target := common.HexToAddress("0x00000000000000000000000000000000000004")

	// library code: SSTORE slot 0 := 0x7 then STOP.
	libraryCode := []byte{
		byte(vm.PUSH1), 0x07,
		byte(vm.PUSH1), 0x00,
		byte(vm.SSTORE),
		byte(vm.STOP),
	}
	backend.SetAccount(library, 0, uint256.Int{}, libraryCode)

	// target code: DELEGATECALL(gas, library, in=0,0, out=0,0); STOP.
	push20 := byte(vm.PUSH1) + 19
	targetCode := []byte{
		byte(vm.PUSH1), 0x00, // outSize
		byte(vm.PUSH1), 0x00, // outOffset
		byte(vm.PUSH1), 0x00, // inSize
		byte(vm.PUSH1), 0x00, // inOffset
		push20,
	}
	targetCode = append(targetCode, library.Bytes()...)
	targetCode = append(targetCode, byte(vm.PUSH1), 0xff, byte(vm.DELEGATECALL), byte(vm.POP), byte(vm.STOP))
	backend.SetAccount(target, 0, uint256.Int{}, targetCode)

	res := ex.TransactCall(caller, target, uint256.Int{}, nil, false)
	require.True(t, res.Exit.IsSucceed(), "exit: %v", res.Exit)

	// The write must have landed in target's storage, not library's.
	require.True(t, backend.StorageAt(library, common.Hash{}).IsZero())
	require.Equal(t, common.BytesToHash([]byte{0x07}), backend.StorageAt(target, common.Hash{}))
}

func TestSelfDestructSweepsBalanceToBeneficiary(t *testing.T) {
	ex, backend := newExecutor()
	backend.SetAccount(caller, 0, *uint256.NewInt(1_000_000), nil)

	victim := common.HexToAddress("0x00000000000000000000000000000000000005")
	beneficiary := common.HexToAddress("0x00000000000000000000000000000000000006")

	// victim code: SELFDESTRUCT(beneficiary)
	push20 := byte(vm.PUSH1) + 19
	code := append([]byte{push20}, beneficiary.Bytes()...)
	code = append(code, byte(vm.SELFDESTRUCT))
	backend.SetAccount(victim, 0, *uint256.NewInt(500), code)
	backend.SetAccount(beneficiary, 0, uint256.Int{}, nil)

	res := ex.TransactCall(caller, victim, uint256.Int{}, nil, false)
	require.True(t, res.Exit.IsSucceed(), "exit: %v", res.Exit)

	require.Equal(t, uint64(500), backend.Basic(beneficiary).Balance.Uint64())
}
