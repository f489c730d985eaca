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
	"strings"
	"testing"
)

func TestDefaultConfigIsIstanbul(t *testing.T) {
	cfg := DefaultConfig()
	if !cfg.HasCreate2 || !cfg.HasRevert || !cfg.HasReturnData || !cfg.HasBitwiseShifting {
		t.Fatalf("expected every Istanbul-era feature flag on by default, got %+v", cfg)
	}
	if cfg.CallStackLimit == 0 || cfg.CreateContractLimit == 0 {
		t.Fatalf("expected non-zero stack and contract size limits, got %+v", cfg)
	}
}

func TestLoadTOMLOverlaysFeatureFlags(t *testing.T) {
	doc := `
stacklimit = 512
memorylimit = 0
callstacklimit = 64
createcontractlimit = 24576
callstipend = 2300
hasdelegatecall = true
hascreate2 = false
hasrevert = true
hasreturndata = true
hasbitwiseshifting = false
haschainid = true
hasselfbalance = true
hasextcodehash = true
emptyconsideredexists = false
createincreasenonce = true
sstoregasmetering = false
sstorerevertunderstipend = false
estimate = true
`
	cfg, err := LoadTOML(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.CallStackLimit != 64 {
		t.Fatalf("expected call_stack_limit 64, got %d", cfg.CallStackLimit)
	}
	if cfg.HasCreate2 {
		t.Fatalf("expected has_create2 to be overridden to false")
	}
	if !cfg.Estimate {
		t.Fatalf("expected estimate to be overridden to true")
	}
}
