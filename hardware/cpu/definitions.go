// This file is part of GoVector06.
//
// GoVector06 is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// GoVector06 is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with GoVector06.  If not, see <https://www.gnu.org/licenses/>.

package cpu

// Immutable program-lifetime tables describing the KR580VM80A (i8080)
// instruction set. The disassembler and the trace log share these with the
// interpreter.

// Well known opcodes.
const (
	OpcodeHLT  = 0x76
	OpcodePCHL = 0xe9
)

// MaxInstructionLen is the longest encoding in the instruction set.
const MaxInstructionLen = 3

// Mnemonics indexed by opcode. Undocumented opcodes appear as data bytes,
// which is how the disassembler shows them.
var Mnemonics = [256]string{
	"nop", "lxi b", "stax b", "inx b", "inr b", "dcr b", "mvi b", "rlc", "db 0x08", "dad b", "ldax b", "dcx b", "inr c", "dcr c", "mvi c", "rrc",
	"db 0x10", "lxi d", "stax d", "inx d", "inr d", "dcr d", "mvi d", "ral", "db 0x18", "dad d", "ldax d", "dcx d", "inr e", "dcr e", "mvi e", "rar",
	"db 0x20", "lxi h", "shld", "inx h", "inr h", "dcr h", "mvi h", "daa", "db 0x28", "dad h", "lhld", "dcx h", "inr l", "dcr l", "mvi l", "cma",
	"db 0x30", "lxi sp", "sta", "inx sp", "inr m", "dcr m", "mvi m", "stc", "db 0x38", "dad sp", "lda", "dcx sp", "inr a", "dcr a", "mvi a", "cmc",

	"mov b b", "mov b c", "mov b d", "mov b e", "mov b h", "mov b l", "mov b m", "mov b a", "mov c b", "mov c c", "mov c d", "mov c e", "mov c h", "mov c l", "mov c m", "mov c a",
	"mov d b", "mov d c", "mov d d", "mov d e", "mov d h", "mov d l", "mov d m", "mov d a", "mov e b", "mov e c", "mov e d", "mov e e", "mov e h", "mov e l", "mov e m", "mov e a",
	"mov h b", "mov h c", "mov h d", "mov h e", "mov h h", "mov h l", "mov h m", "mov h a", "mov l b", "mov l c", "mov l d", "mov l e", "mov l h", "mov l l", "mov l m", "mov l a",
	"mov m b", "mov m c", "mov m d", "mov m e", "mov m h", "mov m l", "hlt", "mov m a", "mov a b", "mov a c", "mov a d", "mov a e", "mov a h", "mov a l", "mov a m", "mov a a",

	"add b", "add c", "add d", "add e", "add h", "add l", "add m", "add a", "adc b", "adc c", "adc d", "adc e", "adc h", "adc l", "adc m", "adc a",
	"sub b", "sub c", "sub d", "sub e", "sub h", "sub l", "sub m", "sub a", "sbb b", "sbb c", "sbb d", "sbb e", "sbb h", "sbb l", "sbb m", "sbb a",
	"ana b", "ana c", "ana d", "ana e", "ana h", "ana l", "ana m", "ana a", "xra b", "xra c", "xra d", "xra e", "xra h", "xra l", "xra m", "xra a",
	"ora b", "ora c", "ora d", "ora e", "ora h", "ora l", "ora m", "ora a", "cmp b", "cmp c", "cmp d", "cmp e", "cmp h", "cmp l", "cmp m", "cmp a",

	"rnz", "pop b", "jnz", "jmp", "cnz", "push b", "adi", "rst 0x0", "rz", "ret", "jz", "db 0xCB", "cz", "call", "aci", "rst 0x1",
	"rnc", "pop d", "jnc", "out", "cnc", "push d", "sui", "rst 0x2", "rc", "db 0xD9", "jc", "in", "cc", "db 0xDD", "sbi", "rst 0x3",
	"rpo", "pop h", "jpo", "xthl", "cpo", "push h", "ani", "rst 0x4", "rpe", "pchl", "jpe", "xchg", "cpe", "db 0xED", "xri", "rst 0x5",
	"rp", "pop psw", "jp", "di", "cp", "push psw", "ori", "rst 0x6", "rm", "sphl", "jm", "ei", "cm", "db 0xFD", "cpi", "rst 0x7",
}

// Lengths indexed by opcode: the number of bytes in the encoding, 1 to 3.
// Undocumented opcodes are listed as single data bytes, matching Mnemonics.
var Lengths = [256]int{
	1, 3, 1, 1, 1, 1, 2, 1, 1, 1, 1, 1, 1, 1, 2, 1,
	1, 3, 1, 1, 1, 1, 2, 1, 1, 1, 1, 1, 1, 1, 2, 1,
	1, 3, 3, 1, 1, 1, 2, 1, 1, 1, 3, 1, 1, 1, 2, 1,
	1, 3, 3, 1, 1, 1, 2, 1, 1, 1, 3, 1, 1, 1, 2, 1,
	1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1,
	1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1,
	1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1,
	1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1,
	1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1,
	1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1,
	1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1,
	1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1,
	1, 1, 3, 3, 3, 1, 2, 1, 1, 1, 3, 1, 3, 3, 2, 1,
	1, 1, 3, 2, 3, 1, 2, 1, 1, 1, 3, 2, 3, 1, 2, 1,
	1, 1, 3, 1, 3, 1, 2, 1, 1, 1, 3, 1, 3, 1, 2, 1,
	1, 1, 3, 1, 3, 1, 2, 1, 1, 1, 3, 1, 3, 1, 2, 1,
}

// OpcodeType classifies an opcode for trace-log filtering. The values are
// ordered so that a filter of N admits every type <= N.
type OpcodeType int

// List of OpcodeType values.
const (
	OpcodeCall OpcodeType = iota
	OpcodeCondCall
	OpcodeRST
	OpcodePchl
	OpcodeJmp
	OpcodeCondJmp
	OpcodeRet
	OpcodeOther
)

// Types indexed by opcode.
var Types = [256]OpcodeType{}

func init() {
	for i := range Types {
		Types[i] = OpcodeOther
	}
	for op := 0xc0; op < 0x100; op += 8 {
		Types[op] = OpcodeRet      // rnz, rnc, ...
		Types[op+4] = OpcodeCondCall // cnz, cnc, ...
		Types[op+7] = OpcodeRST
	}
	for op := 0xc2; op < 0x100; op += 0x10 {
		Types[op] = OpcodeCondJmp // jnz, jc, ...
		Types[op+8] = OpcodeCondJmp
	}
	Types[0xc3] = OpcodeJmp
	Types[0xc9] = OpcodeRet
	Types[0xcd] = OpcodeCall
	Types[0xe9] = OpcodePchl
}

// cycle costs indexed by opcode. conditional calls and returns list the
// not-taken cost; the taken penalty is added by the interpreter.
var cycles = [256]int{
	4, 10, 7, 5, 5, 5, 7, 4, 4, 10, 7, 5, 5, 5, 7, 4,
	4, 10, 7, 5, 5, 5, 7, 4, 4, 10, 7, 5, 5, 5, 7, 4,
	4, 10, 16, 5, 5, 5, 7, 4, 4, 10, 16, 5, 5, 5, 7, 4,
	4, 10, 13, 5, 10, 10, 10, 4, 4, 10, 13, 5, 5, 5, 7, 4,
	5, 5, 5, 5, 5, 5, 7, 5, 5, 5, 5, 5, 5, 5, 7, 5,
	5, 5, 5, 5, 5, 5, 7, 5, 5, 5, 5, 5, 5, 5, 7, 5,
	5, 5, 5, 5, 5, 5, 7, 5, 5, 5, 5, 5, 5, 5, 7, 5,
	7, 7, 7, 7, 7, 7, 7, 7, 5, 5, 5, 5, 5, 5, 7, 5,
	4, 4, 4, 4, 4, 4, 7, 4, 4, 4, 4, 4, 4, 4, 7, 4,
	4, 4, 4, 4, 4, 4, 7, 4, 4, 4, 4, 4, 4, 4, 7, 4,
	4, 4, 4, 4, 4, 4, 7, 4, 4, 4, 4, 4, 4, 4, 7, 4,
	4, 4, 4, 4, 4, 4, 7, 4, 4, 4, 4, 4, 4, 4, 7, 4,
	5, 10, 10, 10, 11, 11, 7, 11, 5, 10, 10, 10, 11, 17, 7, 11,
	5, 10, 10, 10, 11, 11, 7, 11, 5, 10, 10, 10, 11, 17, 7, 11,
	5, 10, 10, 18, 11, 11, 7, 11, 5, 5, 10, 4, 11, 17, 7, 11,
	5, 10, 10, 4, 11, 11, 7, 11, 5, 5, 10, 4, 11, 17, 7, 11,
}

// penalty added to the base cycle cost when a conditional call or return is
// taken.
const takenPenalty = 6
