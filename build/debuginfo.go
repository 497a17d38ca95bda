package build

import (
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/unparalleled-js/solidity/evm"
)

// debugInstruction is a single instruction of an object along with the
// source location it was generated from.
type debugInstruction struct {
	Offset   int    `json:"offset"`
	Op       string `json:"op"`
	PushData string `json:"pushData,omitempty"`
	Start    int    `json:"start"`
	Length   int    `json:"length"`
	Source   int    `json:"source"`
	Jump     string `json:"jump"`
}

// buildDebugInfo walks the instructions of an object alongside its source
// map.  Data appended after the code, such as embedded objects and the
// metadata trailer, has no source map entries and is not listed.
func buildDebugInfo(obj *evm.Object, sourceMap string) (string, error) {
	entries, err := evm.DecompressSourceMap(sourceMap)
	if err != nil {
		return "", fmt.Errorf("malformed source map: %w", err)
	}

	instrs := make([]debugInstruction, 0, len(entries))

	pc := 0
	for _, e := range entries {
		if pc >= len(obj.Bytecode) {
			break
		}

		op := evm.OpCode(obj.Bytecode[pc])
		instr := debugInstruction{
			Offset: pc,
			Op:     op.String(),
			Start:  e.Start,
			Length: e.Length,
			Source: e.SourceIndex,
			Jump:   "-",
		}

		if e.Jump != 0 {
			instr.Jump = string(e.Jump)
		}

		pc++
		if n := op.PushSize(); n > 0 {
			end := min(pc+n, len(obj.Bytecode))
			instr.PushData = hexutil.Encode(obj.Bytecode[pc:end])
			pc = end
		}

		instrs = append(instrs, instr)
	}

	buff, err := json.Marshal(instrs)
	if err != nil {
		return "", err
	}

	return string(buff), nil
}
