// Package asm models assembler statements as typed values: roles, operands,
// labels and the registers each statement reads and writes.
package asm

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	// ErrMalformedStatement reports an invalid role, operand or target label combination.
	ErrMalformedStatement = errors.New("malformed statement")
	// ErrUnknownRole reports a record whose role does not select a statement variant.
	ErrUnknownRole = errors.New("unknown role")
)

// Role is the control-flow discriminant of a statement.
type Role int

const (
	RolePlain   Role = iota + 1 // straight-line instruction
	RoleLabeled                 // label-only pseudo statement
	RoleJump                    // unconditional direct jump
	RoleBranch                  // conditional direct branch
	RoleCall                    // direct call
	RoleReturn                  // register-indirect jump, a return by convention
)

var roleNames = map[Role]string{
	RolePlain:   "plain",
	RoleLabeled: "labeled",
	RoleJump:    "jump",
	RoleBranch:  "branch",
	RoleCall:    "call",
	RoleReturn:  "return",
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return fmt.Sprintf("role(%d)", int(r))
}

// Valid reports whether r is one of the declared roles.
func (r Role) Valid() bool {
	_, ok := roleNames[r]
	return ok
}

// IsControlTransfer reports whether a statement with this role ends a basic block.
func (r Role) IsControlTransfer() bool {
	switch r {
	case RoleJump, RoleBranch, RoleCall, RoleReturn:
		return true
	}
	return false
}

// IsDirect reports whether the role transfers control to a named label.
func (r Role) IsDirect() bool {
	return r == RoleJump || r == RoleBranch || r == RoleCall
}

// MarshalText encodes the role by name.
func (r Role) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownRole, int(r))
	}
	return []byte(r.String()), nil
}

// ParseRole maps a record role name to a Role.
func ParseRole(name string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "plain", "other":
		return RolePlain, nil
	case "labeled", "label":
		return RoleLabeled, nil
	case "jump", "unconditional_jump":
		return RoleJump, nil
	case "branch", "conditional_branch":
		return RoleBranch, nil
	case "call":
		return RoleCall, nil
	case "return", "ret", "return_like_indirect_jump":
		return RoleReturn, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownRole, name)
}

// Spec carries the constructor arguments of a Statement.
type Spec struct {
	Role     Role
	Opcode   string
	Operands []Operand
	Labels   []string
	Target   string
}

// Statement is one assembler statement. It is immutable after construction
// except for label annotation.
type Statement struct {
	role     Role
	opcode   string
	operands []Operand
	labels   []string
	target   string
	defs     RegisterSet
	uses     RegisterSet
}

// New validates spec and builds a Statement from it.
func New(spec Spec) (*Statement, error) {
	spec.Opcode = strings.TrimSpace(spec.Opcode)
	if err := validate(spec); err != nil {
		return nil, err
	}
	s := &Statement{
		role:     spec.Role,
		opcode:   spec.Opcode,
		operands: withWidths(spec.Opcode, spec.Operands),
		target:   spec.Target,
	}
	for _, l := range spec.Labels {
		s.AddLabel(l)
	}
	s.defs, s.uses = deriveRegisters(spec.Role, spec.Opcode, spec.Operands)
	return s, nil
}

// MustNew is like New but panics on invalid input.
func MustNew(spec Spec) *Statement {
	s, err := New(spec)
	if err != nil {
		panic(err)
	}
	return s
}

// Validate re-checks the construction invariants of s.
func Validate(s *Statement) error {
	if s == nil {
		return fmt.Errorf("%w: nil statement", ErrMalformedStatement)
	}
	return validate(Spec{
		Role:     s.role,
		Opcode:   s.opcode,
		Operands: s.operands,
		Labels:   s.labels,
		Target:   s.target,
	})
}

func validate(spec Spec) error {
	malformed := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrMalformedStatement, fmt.Sprintf(format, args...))
	}
	if !spec.Role.Valid() {
		return malformed("invalid role %d", int(spec.Role))
	}
	for _, l := range spec.Labels {
		if strings.TrimSpace(l) == "" {
			return malformed("empty label")
		}
	}
	switch {
	case spec.Role == RoleLabeled:
		if len(spec.Labels) == 0 {
			return malformed("labeled statement without a label")
		}
		if len(spec.Operands) > 0 {
			return malformed("labeled statement with operands")
		}
	case spec.Opcode == "":
		return malformed("%s statement without an opcode", spec.Role)
	}
	switch {
	case spec.Role.IsDirect() && spec.Target == "":
		return malformed("%s %q without a target label", spec.Role, spec.Opcode)
	case !spec.Role.IsDirect() && spec.Target != "":
		return malformed("%s %q cannot target label %q", spec.Role, spec.Opcode, spec.Target)
	}
	for i, op := range spec.Operands {
		switch op.Kind {
		case OperandRegister, OperandMemory:
			if !op.Reg.Valid() {
				return malformed("operand %d: invalid register %d", i, op.Reg)
			}
		case OperandImmediate:
		case OperandSymbol:
			if op.Symbol == "" {
				return malformed("operand %d: empty symbol", i)
			}
		default:
			return malformed("operand %d: invalid kind %d", i, int(op.Kind))
		}
	}
	return nil
}

// withWidths copies operands, tagging numeric immediates and offsets with the
// immediate field width of opcode.
func withWidths(opcode string, operands []Operand) []Operand {
	ops := slices.Clone(operands)
	w, ok := ImmediateWidth(opcode)
	if !ok {
		return ops
	}
	for i := range ops {
		if ops[i].Kind == OperandImmediate || ops[i].Kind == OperandMemory {
			ops[i].Width = w
		}
	}
	return ops
}

// deriveRegisters computes the written and read register sets from the
// opcode table, falling back on the role for opcodes outside of it.
func deriveRegisters(role Role, opcode string, operands []Operand) (defs, uses RegisterSet) {
	if role == RoleLabeled {
		return 0, 0
	}
	var regs []Register
	for _, op := range operands {
		switch op.Kind {
		case OperandRegister:
			regs = append(regs, op.Reg)
		case OperandMemory:
			uses = uses.Add(op.Reg)
		}
	}

	// jalr rs and jalr off(rs) link ra
	if strings.EqualFold(opcode, "jalr") && len(operands) == 1 {
		return NewRegisterSet(RA), uses.Union(NewRegisterSet(regs...))
	}

	writes := role == RolePlain && !strings.HasPrefix(opcode, ".")
	if info, ok := LookupOpcode(opcode); ok {
		writes = info.Writes
	}
	if writes && len(regs) > 0 {
		defs = defs.Add(regs[0])
		regs = regs[1:]
	}
	for _, r := range regs {
		uses = uses.Add(r)
	}

	switch role {
	case RoleCall:
		if defs.Empty() {
			defs = defs.Add(RA)
		}
	case RoleReturn:
		if uses.Empty() {
			uses = uses.Add(RA)
		}
	}
	return defs.Remove(Zero), uses
}

func (s *Statement) Role() Role             { return s.role }
func (s *Statement) Opcode() string         { return s.opcode }
func (s *Statement) Target() string         { return s.target }
func (s *Statement) Defs() RegisterSet      { return s.defs }
func (s *Statement) Uses() RegisterSet      { return s.uses }
func (s *Statement) Registers() RegisterSet { return s.defs.Union(s.uses) }

// IsInstruction reports whether s executes. Label-only statements and
// assembler directives do not.
func (s *Statement) IsInstruction() bool {
	return s.role != RoleLabeled && !strings.HasPrefix(s.opcode, ".")
}

// Operands returns a copy of the operand list.
func (s *Statement) Operands() []Operand {
	return slices.Clone(s.operands)
}

// Labels returns a copy of the labels attached to the statement.
func (s *Statement) Labels() []string {
	return slices.Clone(s.labels)
}

// HasLabel reports whether name is attached to the statement.
func (s *Statement) HasLabel(name string) bool {
	return slices.Contains(s.labels, name)
}

// AddLabel attaches a label. Attaching the same name twice has no effect.
func (s *Statement) AddLabel(name string) {
	name = strings.TrimSpace(name)
	if name == "" || s.HasLabel(name) {
		return
	}
	s.labels = append(s.labels, name)
}

// Clone returns a deep copy of s.
func (s *Statement) Clone() *Statement {
	c := *s
	c.operands = slices.Clone(s.operands)
	c.labels = slices.Clone(s.labels)
	return &c
}

func (s *Statement) String() string {
	var b strings.Builder
	for _, l := range s.labels {
		b.WriteString(l)
		b.WriteString(": ")
	}
	if s.role == RoleLabeled {
		return strings.TrimSpace(b.String())
	}
	b.WriteString(s.opcode)
	args := make([]string, 0, len(s.operands)+1)
	for _, op := range s.operands {
		args = append(args, op.String())
	}
	if s.target != "" {
		args = append(args, s.target)
	}
	if len(args) > 0 {
		b.WriteString(" ")
		b.WriteString(strings.Join(args, ", "))
	}
	return b.String()
}
