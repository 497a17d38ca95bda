package codegen

import (
	"fmt"
	"strings"

	"github.com/llir/llvm/asm"
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/unparalleled-js/solidity/evm"
	"github.com/unparalleled-js/solidity/irgen"
)

// Assembler generates bytecode from the IR of a contract.
type Assembler struct{}

// NewAssembler creates a new IR assembler.
func NewAssembler() *Assembler {
	return &Assembler{}
}

// AssembleIR reads the IR of a contract and compiles it.
func (as *Assembler) AssembleIR(name, text string, in *evm.CodegenInput) (*evm.Compiled, error) {
	m, err := asm.ParseString(name, text)
	if err != nil {
		return nil, fmt.Errorf("invalid IR for `%s`: %w", name, err)
	}

	// generated IR always names its unit, even for an empty library
	if m.SourceFilename == "" {
		return nil, fmt.Errorf("invalid IR for `%s`: no source_filename", name)
	}

	prog := &program{name: name, library: true}

	for _, f := range m.Funcs {
		if len(f.Blocks) == 0 {
			// intrinsic declaration
			continue
		}

		fname := f.Name()
		r := &routine{name: fname, location: evm.NoLocation}

		switch {
		case fname == irgen.ConstructorName:
			prog.constructor = r
			prog.library = false
		case fname == irgen.FallbackName:
			prog.fallback = r
		case fname == irgen.ReceiveName:
			prog.receive = r
		case f.Linkage == enum.LinkageInternal || f.Linkage == enum.LinkagePrivate:
			prog.internals = append(prog.internals, r)
		case strings.HasSuffix(fname, ")"):
			r = newRoutine(fname)
			prog.functions = append(prog.functions, r)
		default:
			return nil, fmt.Errorf("unexpected function `%s` in IR of `%s`", fname, name)
		}

		_, void := f.Sig.RetType.(*types.VoidType)
		r.returns = !void
		r.actions, r.checkValue = readActions(f)
	}

	e := &emitter{in: in, prog: prog}
	return e.emit()
}

// readActions converts the intrinsic calls of a function into actions.
func readActions(f *ir.Func) (actions []action, checkValue bool) {
	for _, block := range f.Blocks {
		for _, inst := range block.Insts {
			call, ok := inst.(*ir.InstCall)
			if !ok {
				continue
			}

			callee, ok := call.Callee.(*ir.Func)
			if !ok {
				continue
			}

			cname := callee.Name()
			switch {
			case cname == irgen.CallValueCheck:
				checkValue = true
			case strings.HasPrefix(cname, irgen.LibraryPrefix):
				actions = append(actions, action{
					kind:     actionLibraryCall,
					target:   strings.TrimPrefix(cname, irgen.LibraryPrefix),
					location: evm.NoLocation,
				})
			case strings.HasPrefix(cname, irgen.CreatePrefix):
				actions = append(actions, action{
					kind:     actionCreate,
					target:   strings.TrimPrefix(cname, irgen.CreatePrefix),
					location: evm.NoLocation,
				})
			case strings.HasPrefix(cname, irgen.CodePrefix):
				actions = append(actions, action{
					kind:     actionCode,
					target:   strings.TrimPrefix(cname, irgen.CodePrefix),
					location: evm.NoLocation,
				})
			}
		}
	}

	return
}
