package asm

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// OperandKind discriminates the variants of Operand.
type OperandKind int

const (
	OperandRegister OperandKind = iota + 1
	OperandImmediate
	OperandMemory
	OperandSymbol
)

func (k OperandKind) String() string {
	switch k {
	case OperandRegister:
		return "register"
	case OperandImmediate:
		return "immediate"
	case OperandMemory:
		return "memory"
	case OperandSymbol:
		return "symbol"
	default:
		return "invalid"
	}
}

// Operand is one instruction argument. Immediates keep their raw magnitude;
// Width records the encoding field they belong to but is never applied.
type Operand struct {
	Kind   OperandKind
	Reg    Register // register operand, or base of a memory operand
	Imm    int64    // immediate value, or offset of a memory operand
	Symbol string   // symbolic immediate, or symbolic offset of a memory operand
	Width  int      // bits of the immediate field, 0 when unknown
}

// Reg builds a register operand.
func Reg(r Register) Operand {
	return Operand{Kind: OperandRegister, Reg: r}
}

// Imm builds an immediate operand.
func Imm(v int64) Operand {
	return Operand{Kind: OperandImmediate, Imm: v}
}

// Mem builds a memory operand of the form offset(base).
func Mem(base Register, offset int64) Operand {
	return Operand{Kind: OperandMemory, Reg: base, Imm: offset}
}

// Sym builds a symbolic operand.
func Sym(name string) Operand {
	return Operand{Kind: OperandSymbol, Symbol: name}
}

// Fits reports whether a numeric immediate or offset fits in Width bits,
// read as signed or unsigned. Operands of unknown width always fit.
func (o Operand) Fits() bool {
	if o.Width <= 0 || o.Width >= 64 || o.Symbol != "" {
		return true
	}
	switch o.Kind {
	case OperandImmediate, OperandMemory:
		return o.Imm >= -(int64(1)<<(o.Width-1)) && o.Imm < int64(1)<<o.Width
	}
	return true
}

func (o Operand) String() string {
	switch o.Kind {
	case OperandRegister:
		return o.Reg.String()
	case OperandImmediate:
		return strconv.FormatInt(o.Imm, 10)
	case OperandMemory:
		if o.Symbol != "" {
			return fmt.Sprintf("%s(%s)", o.Symbol, o.Reg)
		}
		return fmt.Sprintf("%d(%s)", o.Imm, o.Reg)
	case OperandSymbol:
		return o.Symbol
	default:
		return "?"
	}
}

var memoryOperandRegex = regexp.MustCompile(`^(.*)\(\s*([A-Za-z0-9]+)\s*\)$`)

// ParseOperand reads the textual form of an operand: a register name, a
// decimal or 0x-prefixed immediate, an offset(base) memory reference, or
// anything else as a symbol.
func ParseOperand(text string) (Operand, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return Operand{}, fmt.Errorf("empty operand")
	}
	if r, err := ParseRegister(s); err == nil {
		return Reg(r), nil
	}
	if v, err := strconv.ParseInt(s, 0, 64); err == nil {
		return Imm(v), nil
	}
	if m := memoryOperandRegex.FindStringSubmatch(s); m != nil {
		base, err := ParseRegister(m[2])
		if err != nil { // relocation such as %hi(sym)
			return Sym(s), nil
		}
		offset := strings.TrimSpace(m[1])
		if offset == "" {
			return Mem(base, 0), nil
		}
		if v, err := strconv.ParseInt(offset, 0, 64); err == nil {
			return Mem(base, v), nil
		}
		op := Mem(base, 0)
		op.Symbol = offset
		return op, nil
	}
	return Sym(s), nil
}
