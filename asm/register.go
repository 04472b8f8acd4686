package asm

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Register identifies one of the 32 unprivileged RISC-V integer registers.
type Register uint8

// Integer register file, in encoding order.
const (
	Zero Register = iota
	RA
	SP
	GP
	TP
	T0
	T1
	T2
	S0
	S1
	A0
	A1
	A2
	A3
	A4
	A5
	A6
	A7
	S2
	S3
	S4
	S5
	S6
	S7
	S8
	S9
	S10
	S11
	T3
	T4
	T5
	T6
)

// NumRegisters is the size of the integer register file.
const NumRegisters = 32

var abiNames = [NumRegisters]string{
	"zero", "ra", "sp", "gp", "tp", "t0", "t1", "t2",
	"s0", "s1", "a0", "a1", "a2", "a3", "a4", "a5",
	"a6", "a7", "s2", "s3", "s4", "s5", "s6", "s7",
	"s8", "s9", "s10", "s11", "t3", "t4", "t5", "t6",
}

func (r Register) String() string {
	if int(r) < NumRegisters {
		return abiNames[r]
	}
	return fmt.Sprintf("reg(%d)", uint8(r))
}

// Valid reports whether r names a register of the integer file.
func (r Register) Valid() bool {
	return int(r) < NumRegisters
}

// ParseRegister accepts ABI names (a0, s11, fp), numeric names (x5) and the
// r-prefixed numeric alias (r5).
func ParseRegister(name string) (Register, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "fp" {
		return S0, nil
	}
	for i, abi := range abiNames {
		if n == abi {
			return Register(i), nil
		}
	}
	if len(n) > 1 && (n[0] == 'x' || n[0] == 'r') {
		idx, err := strconv.Atoi(n[1:])
		if err == nil && idx >= 0 && idx < NumRegisters {
			return Register(idx), nil
		}
	}
	return 0, fmt.Errorf("unknown register %q", name)
}

// RegisterSet is a set of registers backed by a bitmask.
type RegisterSet uint32

// NewRegisterSet builds a set from the given registers.
func NewRegisterSet(regs ...Register) RegisterSet {
	var s RegisterSet
	for _, r := range regs {
		s = s.Add(r)
	}
	return s
}

func (s RegisterSet) Add(r Register) RegisterSet {
	if !r.Valid() {
		return s
	}
	return s | 1<<r
}

func (s RegisterSet) Remove(r Register) RegisterSet {
	if !r.Valid() {
		return s
	}
	return s &^ (1 << r)
}

func (s RegisterSet) Has(r Register) bool {
	return r.Valid() && s&(1<<r) != 0
}

func (s RegisterSet) Union(o RegisterSet) RegisterSet {
	return s | o
}

func (s RegisterSet) Empty() bool {
	return s == 0
}

func (s RegisterSet) Len() int {
	n := 0
	for v := uint32(s); v != 0; v &= v - 1 {
		n++
	}
	return n
}

// Slice returns the members in encoding order.
func (s RegisterSet) Slice() []Register {
	regs := make([]Register, 0, s.Len())
	for r := Register(0); r < NumRegisters; r++ {
		if s.Has(r) {
			regs = append(regs, r)
		}
	}
	return regs
}

func (s RegisterSet) String() string {
	names := make([]string, 0, s.Len())
	for _, r := range s.Slice() {
		names = append(names, r.String())
	}
	slices.Sort(names)
	return "{" + strings.Join(names, ",") + "}"
}
