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
	"testing"

	"github.com/coreband/evmcore/params"
)

func TestErrToExitMapsSentinels(t *testing.T) {
	cases := []struct {
		err  error
		kind ExitErrorKind
	}{
		{errInvalidJump, ErrKindInvalidJump},
		{errInvalidRange, ErrKindInvalidRange},
		{errDesignatedInvalid, ErrKindDesignatedInvalid},
		{errOutOfOffset, ErrKindOutOfOffset},
		{errOutOfFund, ErrKindOutOfFund},
	}
	for _, c := range cases {
		exit, ok := errToExit(c.err).(ExitError)
		if !ok || exit.Kind != c.kind {
			t.Fatalf("errToExit(%v) = %v, want ExitError{%v}", c.err, errToExit(c.err), c.kind)
		}
	}
}

func TestErrToExitWrapsStackFaults(t *testing.T) {
	st := newstack()
	defer returnStack(st)

	err := st.checkStack(1, params.StackLimit)
	exit, ok := errToExit(err).(ExitError)
	if !ok || exit.Kind != ErrKindStackUnderflow {
		t.Fatalf("expected ExitError{StackUnderflow}, got %v", errToExit(err))
	}
}

func TestErrToExitPassesThroughExitReason(t *testing.T) {
	want := ExitError{Kind: ErrKindOther, Msg: "already an exit reason"}
	if got := errToExit(want); got != ExitReason(want) {
		t.Fatalf("expected errToExit to pass an existing ExitReason through unchanged, got %v", got)
	}
}

func TestExitFatalUnwrapsInner(t *testing.T) {
	inner := errInvalidJump
	fatal := ExitFatal{Kind: FatalKindCallErrorAsFatal, Inner: inner}
	if fatal.Unwrap() != inner {
		t.Fatalf("expected Unwrap to surface the inner error")
	}
}
