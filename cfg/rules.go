package cfg

import (
	"fmt"
	"strings"

	"github.com/ChainSafe/asmflow/asm"
)

// ReturnRule decides whether a register-indirect jump is a procedure return.
// Treating every indirect jump as a return silently drops the edges of
// computed jumps such as jump tables.
type ReturnRule func(s *asm.Statement) bool

// ConventionReturns accepts every register-indirect jump as a return.
func ConventionReturns(*asm.Statement) bool {
	return true
}

// RISCVReturns only accepts the RISC-V return shapes: ret, jr ra and
// jalr zero, 0(ra) (also written jalr zero, ra, 0). The one operand jalr
// forms link ra and are calls.
func RISCVReturns(s *asm.Statement) bool {
	ops := s.Operands()
	switch strings.ToLower(s.Opcode()) {
	case "ret":
		return len(ops) == 0
	case "jr":
		return len(ops) == 1 && isReg(ops[0], asm.RA)
	case "jalr":
		switch len(ops) {
		case 2:
			return isReg(ops[0], asm.Zero) && isMem(ops[1], asm.RA)
		case 3:
			return isReg(ops[0], asm.Zero) && isReg(ops[1], asm.RA) &&
				ops[2].Kind == asm.OperandImmediate && ops[2].Imm == 0
		}
	}
	return false
}

func isReg(op asm.Operand, r asm.Register) bool {
	return op.Kind == asm.OperandRegister && op.Reg == r
}

func isMem(op asm.Operand, base asm.Register) bool {
	return op.Kind == asm.OperandMemory && op.Reg == base && op.Imm == 0 && op.Symbol == ""
}

// ReturnRuleFor selects a rule by name: "convention" (or empty) and "riscv".
func ReturnRuleFor(name string) (ReturnRule, error) {
	switch strings.ToLower(name) {
	case "", "convention":
		return ConventionReturns, nil
	case "riscv", "riscv64", "riscv32":
		return RISCVReturns, nil
	}
	return nil, fmt.Errorf("unsupported return rule: %s", name)
}
