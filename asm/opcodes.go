package asm

import "strings"

// OpcodeInfo is the static register behaviour of an opcode: how many
// register operands it takes and whether the first one is written.
type OpcodeInfo struct {
	Registers int
	Writes    bool
}

var opcodeTable = map[string]OpcodeInfo{
	"lui": {1, true}, "auipc": {1, true}, "jal": {1, true}, "jalr": {2, true},
	"lb": {2, true}, "lh": {2, true}, "lw": {2, true}, "lbu": {2, true}, "lhu": {2, true},
	"lwu": {2, true}, "ld": {2, true}, "lr.w": {2, true}, "lr.d": {2, true},
	"addi": {2, true}, "slti": {2, true}, "sltiu": {2, true}, "xori": {2, true},
	"ori": {2, true}, "andi": {2, true}, "slli": {2, true}, "srli": {2, true},
	"srai": {2, true}, "addiw": {2, true}, "slliw": {2, true}, "srliw": {2, true},
	"sraiw": {2, true}, "sext.w": {2, true}, "mv": {2, true}, "not": {2, true},
	"neg": {2, true}, "negw": {2, true}, "seqz": {2, true}, "snez": {2, true},
	"add": {3, true}, "sub": {3, true}, "sll": {3, true}, "slt": {3, true},
	"sltu": {3, true}, "xor": {3, true}, "srl": {3, true}, "sra": {3, true},
	"or": {3, true}, "and": {3, true}, "addw": {3, true}, "subw": {3, true},
	"sllw": {3, true}, "srlw": {3, true}, "sraw": {3, true},
	"mul": {3, true}, "mulh": {3, true}, "mulhsu": {3, true}, "mulhu": {3, true},
	"div": {3, true}, "divu": {3, true}, "rem": {3, true}, "remu": {3, true},
	"mulw": {3, true}, "divw": {3, true}, "divuw": {3, true}, "remw": {3, true},
	"remuw": {3, true},
	"sc.w":  {3, true}, "sc.d": {3, true},
	"amoswap.w": {3, true}, "amoadd.w": {3, true}, "amoxor.w": {3, true},
	"amoor.w": {3, true}, "amoand.w": {3, true}, "amomin.w": {3, true},
	"amomax.w": {3, true}, "amominu.w": {3, true}, "amomaxu.w": {3, true},
	"amoswap.d": {3, true}, "amoadd.d": {3, true}, "amoxor.d": {3, true},
	"amoor.d": {3, true}, "amoand.d": {3, true}, "amomin.d": {3, true},
	"amomax.d": {3, true}, "amominu.d": {3, true}, "amomaxu.d": {3, true},
	"li": {1, true}, "la": {1, true},
	"jr": {1, false}, "j": {0, false}, "ret": {0, false}, "call": {0, false}, "tail": {0, false},
	"beq": {2, false}, "bne": {2, false}, "blt": {2, false}, "bge": {2, false},
	"ble": {2, false}, "bgt": {2, false}, "bltu": {2, false}, "bgeu": {2, false},
	"bgtu": {2, false}, "bleu": {2, false},
	"beqz": {1, false}, "bnez": {1, false}, "blez": {1, false}, "bgez": {1, false},
	"bltz": {1, false}, "bgtz": {1, false},
	"sb": {2, false}, "sh": {2, false}, "sw": {2, false}, "sd": {2, false},
	"nop": {0, false},
}

// immediate field width per instruction format
var immediateWidths = map[string]int{
	"i": 12, "s": 12, "b": 12, "u": 20, "j": 20, "li": 32,
}

var opcodeFormats = map[string]string{
	"addi": "i", "addiw": "i", "andi": "i", "ori": "i", "xori": "i", "slti": "i",
	"sltiu": "i", "slli": "i", "slliw": "i", "srli": "i", "srliw": "i", "srai": "i",
	"sraiw": "i", "lb": "i", "jalr": "i",
	"lbu": "s", "lh": "s", "lhu": "s", "lw": "s", "lwu": "s", "ld": "s",
	"sb": "s", "sh": "s", "sw": "s", "sd": "s",
	"beq": "b", "bne": "b", "blt": "b", "bge": "b", "ble": "b", "bgt": "b",
	"bltu": "b", "bgeu": "b", "bgtu": "b", "bleu": "b",
	"beqz": "b", "bnez": "b", "blez": "b", "bgez": "b", "bltz": "b", "bgtz": "b",
	"lui": "u", "auipc": "u",
	"jal": "j", "j": "j", "call": "j",
	"li": "li",
}

// LookupOpcode returns the register behaviour of a known opcode.
func LookupOpcode(opcode string) (OpcodeInfo, bool) {
	info, ok := opcodeTable[strings.ToLower(opcode)]
	return info, ok
}

// ImmediateWidth returns the bit width of the immediate field used by opcode.
// Immediates are not truncated to it.
func ImmediateWidth(opcode string) (int, bool) {
	format, ok := opcodeFormats[strings.ToLower(opcode)]
	if !ok {
		return 0, false
	}
	w, ok := immediateWidths[format]
	return w, ok
}
