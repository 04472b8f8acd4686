package asm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	s, err := Decode(Record{
		"role":     "conditional_branch",
		"opcode":   "bnez",
		"operands": []any{"a0"},
		"target":   ".L2",
		"label":    ".L1",
	})
	require.NoError(t, err)
	assert.Equal(t, RoleBranch, s.Role())
	assert.Equal(t, ".L2", s.Target())
	assert.Equal(t, []string{".L1"}, s.Labels())
	assert.Equal(t, NewRegisterSet(A0), s.Uses())

	s, err = Decode(Record{"role": "plain", "opcode": "addi", "operands": "sp, sp, -16"})
	require.NoError(t, err)
	assert.Equal(t, []Operand{Reg(SP), Reg(SP), {Kind: OperandImmediate, Imm: -16, Width: 12}}, s.Operands())

	s, err = Decode(Record{"role": "other", "opcode": "li", "operands": []any{"a5", 42}})
	require.NoError(t, err)
	assert.Equal(t, Operand{Kind: OperandImmediate, Imm: 42, Width: 32}, s.Operands()[1])
}

func TestDecodeUnknownRole(t *testing.T) {
	for _, rec := range []Record{
		{"opcode": "add"},
		{"role": "teleport", "opcode": "add"},
		{"role": 3, "opcode": "add"},
	} {
		_, err := Decode(rec)
		assert.ErrorIs(t, err, ErrUnknownRole, "%v", rec)
	}
}

func TestDecodeMalformed(t *testing.T) {
	_, err := Decode(Record{"role": "jump", "opcode": "j"})
	assert.ErrorIs(t, err, ErrMalformedStatement)

	_, err = Decode(Record{"role": "plain", "opcode": 7})
	assert.ErrorIs(t, err, ErrMalformedStatement)

	_, err = Decode(Record{"role": "plain", "opcode": "add", "operands": map[string]any{"a": 1}})
	assert.ErrorIs(t, err, ErrMalformedStatement)
}

func TestParseOperand(t *testing.T) {
	tests := []struct {
		in   string
		want Operand
	}{
		{"a0", Reg(A0)},
		{"x31", Reg(T6)},
		{"r1", Reg(RA)},
		{"fp", Reg(S0)},
		{"-12", Imm(-12)},
		{"0x10", Imm(16)},
		{"8(sp)", Mem(SP, 8)},
		{"(a1)", Mem(A1, 0)},
		{"%lo(msg)(a5)", Operand{Kind: OperandMemory, Reg: A5, Symbol: "%lo(msg)"}},
		{"%hi(msg)", Sym("%hi(msg)")},
		{"printf", Sym("printf")},
	}
	for _, tt := range tests {
		got, err := ParseOperand(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
	_, err := ParseOperand("  ")
	assert.Error(t, err)
}

func TestParseRegister(t *testing.T) {
	r, err := ParseRegister("S11")
	require.NoError(t, err)
	assert.Equal(t, S11, r)
	assert.Equal(t, "s11", r.String())

	_, err = ParseRegister("x32")
	assert.Error(t, err)
	_, err = ParseRegister("q1")
	assert.Error(t, err)
}

func TestRegisterSet(t *testing.T) {
	s := NewRegisterSet(A0, T0, A0)
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, []Register{T0, A0}, s.Slice())
	assert.False(t, s.Remove(T0).Has(T0))
	assert.True(t, s.Union(NewRegisterSet(SP)).Has(SP))
	assert.Equal(t, "{a0,t0}", s.String())
}

func TestImmediateWidth(t *testing.T) {
	w, ok := ImmediateWidth("ADDI")
	assert.True(t, ok)
	assert.Equal(t, 12, w)
	w, ok = ImmediateWidth("lui")
	assert.True(t, ok)
	assert.Equal(t, 20, w)
	_, ok = ImmediateWidth("add")
	assert.False(t, ok)
}

func TestOperandWidths(t *testing.T) {
	s := MustNew(Spec{Role: RolePlain, Opcode: "addi", Operands: []Operand{Reg(A0), Reg(A0), Imm(4096)}})
	ops := s.Operands()
	assert.Equal(t, 0, ops[0].Width)
	assert.Equal(t, 12, ops[2].Width)
	assert.False(t, ops[2].Fits())

	s = MustNew(Spec{Role: RolePlain, Opcode: "ld", Operands: []Operand{Reg(A0), Mem(SP, -2048)}})
	assert.True(t, s.Operands()[1].Fits())

	s = MustNew(Spec{Role: RolePlain, Opcode: "lui", Operands: []Operand{Reg(A0), Imm(0xfffff)}})
	assert.True(t, s.Operands()[1].Fits())

	// unknown opcodes keep unknown widths
	s = MustNew(Spec{Role: RolePlain, Opcode: "czero.eqz", Operands: []Operand{Reg(A0), Imm(1 << 40)}})
	assert.Equal(t, 0, s.Operands()[1].Width)
	assert.True(t, s.Operands()[1].Fits())

	assert.True(t, Operand{Kind: OperandMemory, Symbol: "%lo(x)", Width: 12}.Fits())
	assert.False(t, Operand{Kind: OperandImmediate, Imm: -2049, Width: 12}.Fits())
}
