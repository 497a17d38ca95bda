package evm

import "fmt"

// OpCode is a single virtual machine instruction.
type OpCode byte

// The subset of instructions the code generators emit.
const (
	STOP         OpCode = 0x00
	ADD          OpCode = 0x01
	LT           OpCode = 0x10
	EQ           OpCode = 0x14
	ISZERO       OpCode = 0x15
	SHR          OpCode = 0x1c
	ADDRESS      OpCode = 0x30
	CALLVALUE    OpCode = 0x34
	CALLDATALOAD OpCode = 0x35
	CALLDATASIZE OpCode = 0x36
	CODECOPY     OpCode = 0x39
	POP          OpCode = 0x50
	MLOAD        OpCode = 0x51
	MSTORE       OpCode = 0x52
	SLOAD        OpCode = 0x54
	SSTORE       OpCode = 0x55
	JUMP         OpCode = 0x56
	JUMPI        OpCode = 0x57
	GAS          OpCode = 0x5a
	JUMPDEST     OpCode = 0x5b
	TLOAD        OpCode = 0x5c
	TSTORE       OpCode = 0x5d
	PUSH0        OpCode = 0x5f
	PUSH1        OpCode = 0x60
	PUSH2        OpCode = 0x61
	PUSH4        OpCode = 0x63
	PUSH20       OpCode = 0x73
	PUSH32       OpCode = 0x7f
	DUP1         OpCode = 0x80
	SWAP1        OpCode = 0x90
	CREATE       OpCode = 0xf0
	CALL         OpCode = 0xf1
	RETURN       OpCode = 0xf3
	DELEGATECALL OpCode = 0xf4
	REVERT       OpCode = 0xfd
	INVALID      OpCode = 0xfe
)

var opNames = map[OpCode]string{
	STOP:         "STOP",
	ADD:          "ADD",
	LT:           "LT",
	EQ:           "EQ",
	ISZERO:       "ISZERO",
	SHR:          "SHR",
	ADDRESS:      "ADDRESS",
	CALLVALUE:    "CALLVALUE",
	CALLDATALOAD: "CALLDATALOAD",
	CALLDATASIZE: "CALLDATASIZE",
	CODECOPY:     "CODECOPY",
	POP:          "POP",
	MLOAD:        "MLOAD",
	MSTORE:       "MSTORE",
	SLOAD:        "SLOAD",
	SSTORE:       "SSTORE",
	JUMP:         "JUMP",
	JUMPI:        "JUMPI",
	GAS:          "GAS",
	JUMPDEST:     "JUMPDEST",
	TLOAD:        "TLOAD",
	TSTORE:       "TSTORE",
	PUSH0:        "PUSH0",
	DUP1:         "DUP1",
	SWAP1:        "SWAP1",
	CREATE:       "CREATE",
	CALL:         "CALL",
	RETURN:       "RETURN",
	DELEGATECALL: "DELEGATECALL",
	REVERT:       "REVERT",
	INVALID:      "INVALID",
}

func (op OpCode) String() string {
	if op.IsPush() && op != PUSH0 {
		return fmt.Sprintf("PUSH%d", op.PushSize())
	}

	if name, ok := opNames[op]; ok {
		return name
	}

	return fmt.Sprintf("0x%02x", byte(op))
}

// IsPush returns whether the opcode is one of the PUSH instructions.
func (op OpCode) IsPush() bool {
	return op >= PUSH0 && op <= PUSH32
}

// PushSize returns the number of immediate bytes of a PUSH instruction.
func (op OpCode) PushSize() int {
	if !op.IsPush() {
		return 0
	}

	return int(op - PUSH0)
}

// PushN returns the PUSH instruction with n immediate bytes.
func PushN(n int) OpCode {
	return PUSH0 + OpCode(n)
}
