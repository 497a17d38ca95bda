package irgen

import (
	"fmt"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/unparalleled-js/solidity/ast"
	"github.com/unparalleled-js/solidity/common"
	"github.com/unparalleled-js/solidity/config"
	"github.com/unparalleled-js/solidity/evm"
)

// The names of the intrinsic functions and entry points through which the IR
// talks to the assembler.  Intrinsics are declared, never defined.
const (
	LibraryPrefix  = "library:"
	CreatePrefix   = "create:"
	CodePrefix     = "code:"
	CallValueCheck = "callvalue.check"
	InternalPrefix = "internal."

	ConstructorName = "constructor"
	FallbackName    = "fallback"
	ReceiveName     = "receive"
)

// wordType is the type of every value: a 256 bit machine word.
var wordType = types.NewInt(256)

// Generator converts analyzed contracts into LLVM IR.  Every contract becomes
// its own module.
type Generator struct{}

// NewGenerator creates a new IR generator.
func NewGenerator() *Generator {
	return &Generator{}
}

// GenerateIR generates the IR of a contract along with the utility code that
// accompanies it.
func (g *Generator) GenerateIR(cd *ast.ContractDefinition, settings *config.Settings) (string, []evm.GeneratedSource, error) {
	b := &builder{
		cd:         cd,
		settings:   settings,
		mod:        ir.NewModule(),
		intrinsics: make(map[string]*ir.Func),
	}
	b.mod.SourceFilename = cd.Source

	if err := b.genStorage(); err != nil {
		return "", nil, err
	}

	b.genContract()

	return b.mod.String(), b.genUtility(), nil
}

// builder holds the state of the generation of a single contract.
type builder struct {
	cd       *ast.ContractDefinition
	settings *config.Settings

	mod *ir.Module

	// intrinsics are the declared functions by name
	intrinsics map[string]*ir.Func

	// counter numbers the call results of the current function
	counter int
}

// genStorage declares a global per state variable.
func (b *builder) genStorage() error {
	for _, v := range b.cd.AllStateVariables() {
		if v.Constant || v.Immutable {
			continue
		}

		prefix := "storage."
		if v.Transient {
			if !b.settings.EVMVersion.SupportsTransientStorage() {
				return fmt.Errorf("transient storage is not supported by EVM version %s", b.settings.EVMVersion)
			}

			prefix = "transient."
		}

		b.mod.NewGlobalDef(prefix+v.Name, constant.NewInt(wordType, 0))
	}

	return nil
}

// genContract generates every entry point and internal function.
func (b *builder) genContract() {
	if b.cd.IsLibrary() {
		// library code is only ever reached through its external functions
		for _, fn := range b.cd.InterfaceFunctions() {
			b.genFunction(fn.Signature(), fn, enum.LinkageExternal)
		}

		return
	}

	ctor := b.genEntry(ConstructorName, nil, !b.cd.Constructor().IsPayable())
	b.genCalls(ctor, b.cd.InitializerCalls())
	ctor.Blocks[0].NewRet(nil)

	for _, fn := range b.cd.InterfaceFunctions() {
		b.genFunction(fn.Signature(), fn, enum.LinkageExternal)
	}

	if fn := b.cd.SpecialFunction(ast.FuncFallback); fn != nil {
		b.genFunction(FallbackName, fn, enum.LinkageExternal)
	}

	if fn := b.cd.SpecialFunction(ast.FuncReceive); fn != nil {
		b.genFunction(ReceiveName, fn, enum.LinkageExternal)
	}

	for _, fn := range b.cd.InternalFunctions() {
		b.genFunction(InternalPrefix+fn.Signature(), fn, enum.LinkageInternal)
	}
}

// genEntry creates a function with an entry block.  Non-payable entry points
// begin with a call value check.
func (b *builder) genEntry(name string, fn *ast.FunctionDefinition, checkValue bool) *ir.Func {
	var params []*ir.Param
	retType := types.Type(types.Void)

	if fn != nil {
		seen := make(map[string]bool)
		for i, p := range fn.Params {
			pname := "arg." + p.Name
			if p.Name == "" || seen[pname] {
				pname = fmt.Sprintf("arg%d", i)
			}
			seen[pname] = true

			params = append(params, ir.NewParam(pname, wordType))
		}

		if len(fn.Returns) > 0 {
			retType = wordType
		}
	}

	f := b.mod.NewFunc(name, retType, params...)
	f.NewBlock("entry")
	b.counter = 0

	if checkValue {
		b.call(f, CallValueCheck, types.Void)
	}

	return f
}

// genFunction generates a function body: its calls to other contracts and a
// zero result.
func (b *builder) genFunction(name string, fn *ast.FunctionDefinition, linkage enum.Linkage) {
	// internal functions never see call value
	f := b.genEntry(name, fn, linkage != enum.LinkageInternal && !fn.IsPayable())
	f.Linkage = linkage
	b.genCalls(f, fn.Calls)

	entry := f.Blocks[0]
	if len(fn.Returns) > 0 {
		entry.NewRet(constant.NewInt(wordType, 0))
	} else {
		entry.NewRet(nil)
	}
}

// genCalls generates a call to an intrinsic for every resolved reference.
func (b *builder) genCalls(f *ir.Func, refs []*ast.CallReference) {
	for _, ref := range refs {
		if ref.Resolved == nil {
			continue
		}

		fqn := ref.Resolved.FullyQualifiedName()
		switch ref.Kind {
		case ast.RefMemberCall:
			b.call(f, LibraryPrefix+fqn, wordType)
		case ast.RefCreation:
			b.call(f, CreatePrefix+fqn, wordType)
		case ast.RefCreationCode, ast.RefRuntimeCode:
			b.call(f, CodePrefix+fqn, wordType)
		}
	}
}

// call appends a call to an intrinsic, declaring it on first use.
func (b *builder) call(f *ir.Func, name string, retType types.Type) {
	callee, ok := b.intrinsics[name]
	if !ok {
		callee = b.mod.NewFunc(name, retType)
		b.intrinsics[name] = callee
	}

	inst := f.Blocks[0].NewCall(callee)
	if retType != types.Void {
		inst.SetName(fmt.Sprintf("r%d", b.counter))
		b.counter++
	}
}

// genUtility generates the selector table of the contract as a separate
// module.
func (b *builder) genUtility() []evm.GeneratedSource {
	fns := b.cd.InterfaceFunctions()
	if len(fns) == 0 {
		return nil
	}

	elems := make([]constant.Constant, len(fns))
	for i, fn := range fns {
		sel := common.Selector(fn.Signature())
		word := uint32(sel[0])<<24 | uint32(sel[1])<<16 | uint32(sel[2])<<8 | uint32(sel[3])
		elems[i] = constant.NewInt(types.I32, int64(int32(word)))
	}

	util := ir.NewModule()
	util.SourceFilename = "#utility.ll"
	util.NewGlobalDef("selectors", constant.NewArray(types.NewArray(uint64(len(elems)), types.I32), elems...))

	return []evm.GeneratedSource{{
		Name:     "#utility.ll",
		Language: "LLVM",
		Contents: util.String(),
	}}
}
