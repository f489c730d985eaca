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

// registerArith wires the Yellow Paper's unsigned-wraparound arithmetic
// opcodes. All of them push a single result in place of their operands,
// so they follow the pop-pop-push(peek) pattern the teacher's
// instructions.go uses throughout.
func registerArith() {
	op(ADD, 2, 1, func(m *Machine) (opResult, error) {
		x, y := m.stack.pop(), m.stack.peek()
		y.Add(&x, y)
		return resNormal, nil
	})
	op(SUB, 2, 1, func(m *Machine) (opResult, error) {
		x, y := m.stack.pop(), m.stack.peek()
		y.Sub(&x, y)
		return resNormal, nil
	})
	op(MUL, 2, 1, func(m *Machine) (opResult, error) {
		x, y := m.stack.pop(), m.stack.peek()
		y.Mul(&x, y)
		return resNormal, nil
	})
	op(DIV, 2, 1, func(m *Machine) (opResult, error) {
		x, y := m.stack.pop(), m.stack.peek()
		y.Div(&x, y) // uint256.Div returns 0 for y==0
		return resNormal, nil
	})
	op(SDIV, 2, 1, func(m *Machine) (opResult, error) {
		x, y := m.stack.pop(), m.stack.peek()
		y.SDiv(&x, y) // uint256.SDiv handles INT_MIN/-1 by returning INT_MIN
		return resNormal, nil
	})
	op(MOD, 2, 1, func(m *Machine) (opResult, error) {
		x, y := m.stack.pop(), m.stack.peek()
		y.Mod(&x, y)
		return resNormal, nil
	})
	op(SMOD, 2, 1, func(m *Machine) (opResult, error) {
		x, y := m.stack.pop(), m.stack.peek()
		y.SMod(&x, y)
		return resNormal, nil
	})
	op(ADDMOD, 3, 1, func(m *Machine) (opResult, error) {
		x, y, z := m.stack.pop(), m.stack.pop(), m.stack.peek()
		z.AddMod(&x, &y, z)
		return resNormal, nil
	})
	op(MULMOD, 3, 1, func(m *Machine) (opResult, error) {
		x, y, z := m.stack.pop(), m.stack.pop(), m.stack.peek()
		z.MulMod(&x, &y, z)
		return resNormal, nil
	})
	op(EXP, 2, 1, func(m *Machine) (opResult, error) {
		base, exponent := m.stack.pop(), m.stack.peek()
		exponent.Exp(&base, exponent) // repeated squaring, per spec.md §4.1
		return resNormal, nil
	})
	op(SIGNEXTEND, 2, 1, func(m *Machine) (opResult, error) {
		back, num := m.stack.pop(), m.stack.peek()
		num.ExtendSign(num, &back)
		return resNormal, nil
	})
}

// registerBitwise wires comparisons and bitwise operators. SHL/SHR/SAR
// are config-gated by HasBitwiseShifting (Constantinople's EIP-145).
func registerBitwise() {
	op(LT, 2, 1, func(m *Machine) (opResult, error) {
		x, y := m.stack.pop(), m.stack.peek()
		if x.Lt(y) {
			y.SetOne()
		} else {
			y.Clear()
		}
		return resNormal, nil
	})
	op(GT, 2, 1, func(m *Machine) (opResult, error) {
		x, y := m.stack.pop(), m.stack.peek()
		if x.Gt(y) {
			y.SetOne()
		} else {
			y.Clear()
		}
		return resNormal, nil
	})
	op(SLT, 2, 1, func(m *Machine) (opResult, error) {
		x, y := m.stack.pop(), m.stack.peek()
		if x.Slt(y) {
			y.SetOne()
		} else {
			y.Clear()
		}
		return resNormal, nil
	})
	op(SGT, 2, 1, func(m *Machine) (opResult, error) {
		x, y := m.stack.pop(), m.stack.peek()
		if x.Sgt(y) {
			y.SetOne()
		} else {
			y.Clear()
		}
		return resNormal, nil
	})
	op(EQ, 2, 1, func(m *Machine) (opResult, error) {
		x, y := m.stack.pop(), m.stack.peek()
		if x.Eq(y) {
			y.SetOne()
		} else {
			y.Clear()
		}
		return resNormal, nil
	})
	op(ISZERO, 1, 1, func(m *Machine) (opResult, error) {
		x := m.stack.peek()
		if x.IsZero() {
			x.SetOne()
		} else {
			x.Clear()
		}
		return resNormal, nil
	})
	op(AND, 2, 1, func(m *Machine) (opResult, error) {
		x, y := m.stack.pop(), m.stack.peek()
		y.And(&x, y)
		return resNormal, nil
	})
	op(OR, 2, 1, func(m *Machine) (opResult, error) {
		x, y := m.stack.pop(), m.stack.peek()
		y.Or(&x, y)
		return resNormal, nil
	})
	op(XOR, 2, 1, func(m *Machine) (opResult, error) {
		x, y := m.stack.pop(), m.stack.peek()
		y.Xor(&x, y)
		return resNormal, nil
	})
	op(NOT, 1, 1, func(m *Machine) (opResult, error) {
		x := m.stack.peek()
		x.Not(x)
		return resNormal, nil
	})
	op(BYTE, 2, 1, func(m *Machine) (opResult, error) {
		th, val := m.stack.pop(), m.stack.peek()
		val.Byte(&th) // uint256.Byte returns 0 for th >= 32
		return resNormal, nil
	})
	gatedOp(SHL, 2, 1, hasBitwiseShifting, func(m *Machine) (opResult, error) {
		shift, value := m.stack.pop(), m.stack.peek()
		if shift.LtUint64(256) {
			value.Lsh(value, uint(shift.Uint64()))
		} else {
			value.Clear()
		}
		return resNormal, nil
	})
	gatedOp(SHR, 2, 1, hasBitwiseShifting, func(m *Machine) (opResult, error) {
		shift, value := m.stack.pop(), m.stack.peek()
		if shift.LtUint64(256) {
			value.Rsh(value, uint(shift.Uint64()))
		} else {
			value.Clear()
		}
		return resNormal, nil
	})
	gatedOp(SAR, 2, 1, hasBitwiseShifting, func(m *Machine) (opResult, error) {
		shift, value := m.stack.pop(), m.stack.peek()
		if shift.GtUint64(256) {
			if value.Sign() >= 0 {
				value.Clear()
			} else {
				value.SetAllOne()
			}
			return resNormal, nil
		}
		value.SRsh(value, uint(shift.Uint64()))
		return resNormal, nil
	})
}

func hasBitwiseShifting(cfg *Config) bool { return cfg.HasBitwiseShifting }
