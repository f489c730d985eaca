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
	"io"
	"os"
	"reflect"
	"strings"

	"github.com/naoina/toml"

	"github.com/coreband/evmcore/params"
)

// Config is the flat, immutable per-hardfork policy record of spec.md
// §4.7. It is consumed at runtime by the Machine and the StackExecutor;
// every gas-related field is carried forward for a future metering layer
// and is not consulted for any safety decision today.
type Config struct {
	StackLimit        int  // stack_limit
	MemoryLimit       uint64 // memory_limit (advisory only)
	CallStackLimit    int  // call_stack_limit
	CreateContractLimit int // create_contract_limit

	CallStipend uint64 // call_stipend, gas forwarded with a value-bearing CALL

	HasDelegateCall      bool
	HasCreate2           bool
	HasRevert            bool
	HasReturnData        bool
	HasBitwiseShifting   bool
	HasChainID           bool
	HasSelfBalance       bool
	HasExtCodeHash       bool
	EmptyConsideredExists bool
	CreateIncreaseNonce  bool

	SstoreGasMetering      bool
	SstoreRevertUnderStipend bool

	Estimate bool // estimate flag, carried and loadable from TOML; not consulted by the Machine or StackExecutor

	Debug  bool
	Tracer Tracer
}

// DefaultConfig mirrors the Istanbul-era feature set: every feature flag
// introduced up to and including Istanbul is on, consistent with
// spec.md §4.7's named defaults (call_stack_limit 1024,
// create_contract_limit 0x6000).
func DefaultConfig() Config {
	return Config{
		StackLimit:           params.StackLimit,
		MemoryLimit:          0,
		CallStackLimit:       params.CallCreateDepth,
		CreateContractLimit:  params.MaxCodeSize,
		CallStipend:          2300,
		HasDelegateCall:      true,
		HasCreate2:           true,
		HasRevert:            true,
		HasReturnData:        true,
		HasBitwiseShifting:   true,
		HasChainID:           true,
		HasSelfBalance:       true,
		HasExtCodeHash:       true,
		EmptyConsideredExists: false,
		CreateIncreaseNonce:  true,
		SstoreGasMetering:    true,
		SstoreRevertUnderStipend: true,
	}
}

// configFile is the TOML-facing mirror of Config. Its TOML keys are the
// Go field names lower-cased with no separators (e.g. callstacklimit),
// per tomlSettings below.
type configFile struct {
	StackLimit              int
	MemoryLimit             uint64
	CallStackLimit          int
	CreateContractLimit     int
	CallStipend             uint64
	HasDelegateCall         bool
	HasCreate2              bool
	HasRevert               bool
	HasReturnData           bool
	HasBitwiseShifting      bool
	HasChainID              bool
	HasSelfBalance          bool
	HasExtCodeHash          bool
	EmptyConsideredExists   bool
	CreateIncreaseNonce     bool
	SstoreGasMetering       bool
	SstoreRevertUnderStipend bool
	Estimate                bool
}

// tomlSettings matches the field-name conventions the teacher's own
// node config loader uses: TOML keys are lower-cased field names.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string {
		return strings.ToLower(key)
	},
	FieldToKey: func(rt reflect.Type, field string) string {
		return strings.ToLower(field)
	},
}

// LoadTOML overlays a TOML-encoded feature table onto the Istanbul
// default, so a host can ship a small per-hardfork config file that only
// names the fields it wants to change. f is seeded from the default
// before decoding so naoina/toml, like encoding/json, only touches the
// keys actually present in r and leaves the rest at their default value.
func LoadTOML(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	f := configFile{
		StackLimit:              cfg.StackLimit,
		MemoryLimit:             cfg.MemoryLimit,
		CallStackLimit:          cfg.CallStackLimit,
		CreateContractLimit:     cfg.CreateContractLimit,
		CallStipend:             cfg.CallStipend,
		HasDelegateCall:         cfg.HasDelegateCall,
		HasCreate2:              cfg.HasCreate2,
		HasRevert:               cfg.HasRevert,
		HasReturnData:           cfg.HasReturnData,
		HasBitwiseShifting:      cfg.HasBitwiseShifting,
		HasChainID:              cfg.HasChainID,
		HasSelfBalance:          cfg.HasSelfBalance,
		HasExtCodeHash:          cfg.HasExtCodeHash,
		EmptyConsideredExists:   cfg.EmptyConsideredExists,
		CreateIncreaseNonce:     cfg.CreateIncreaseNonce,
		SstoreGasMetering:       cfg.SstoreGasMetering,
		SstoreRevertUnderStipend: cfg.SstoreRevertUnderStipend,
		Estimate:                cfg.Estimate,
	}
	if err := tomlSettings.NewDecoder(r).Decode(&f); err != nil {
		return Config{}, err
	}
	cfg.StackLimit = f.StackLimit
	cfg.MemoryLimit = f.MemoryLimit
	cfg.CallStackLimit = f.CallStackLimit
	cfg.CreateContractLimit = f.CreateContractLimit
	cfg.CallStipend = f.CallStipend
	cfg.HasDelegateCall = f.HasDelegateCall
	cfg.HasCreate2 = f.HasCreate2
	cfg.HasRevert = f.HasRevert
	cfg.HasReturnData = f.HasReturnData
	cfg.HasBitwiseShifting = f.HasBitwiseShifting
	cfg.HasChainID = f.HasChainID
	cfg.HasSelfBalance = f.HasSelfBalance
	cfg.HasExtCodeHash = f.HasExtCodeHash
	cfg.EmptyConsideredExists = f.EmptyConsideredExists
	cfg.CreateIncreaseNonce = f.CreateIncreaseNonce
	cfg.SstoreGasMetering = f.SstoreGasMetering
	cfg.SstoreRevertUnderStipend = f.SstoreRevertUnderStipend
	cfg.Estimate = f.Estimate
	return cfg, nil
}

// LoadTOMLFile is a convenience wrapper around LoadTOML for a path on
// disk, used by cmd/evmrun's --config flag.
func LoadTOMLFile(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer f.Close()
	return LoadTOML(f)
}

// Tracer is an optional opcode-level observer, invoked by the Machine's
// step loop when Config.Debug is set. It intentionally carries none of
// the teacher's gas-accounting parameters since this core reports zero
// cost for every operation.
type Tracer interface {
	CaptureState(pc uint64, op OpCode, stack *Stack, mem *Memory, depth int, err error)
}
