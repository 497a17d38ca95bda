package codegen

import (
	"fmt"
	"strings"

	"github.com/unparalleled-js/solidity/ast"
	"github.com/unparalleled-js/solidity/config"
	"github.com/unparalleled-js/solidity/evm"
)

// CodeGenerator generates bytecode directly from an analyzed contract.
type CodeGenerator struct{}

// NewCodeGenerator creates a new direct code generator.
func NewCodeGenerator() *CodeGenerator {
	return &CodeGenerator{}
}

// Generate compiles a deployable contract.
func (cg *CodeGenerator) Generate(cd *ast.ContractDefinition, in *evm.CodegenInput) (*evm.Compiled, error) {
	if !cd.CanBeDeployed() {
		return nil, fmt.Errorf("`%s` is abstract and cannot be compiled", cd.Name)
	}

	if err := checkStorage(cd, in.Settings); err != nil {
		return nil, err
	}

	loc := func(ref *ast.CallReference) evm.SourceLocation {
		return in.Locate(cd.Source, ref.Span)
	}

	prog := &program{name: cd.Name, library: cd.IsLibrary()}

	fnRoutine := func(r *routine, fn *ast.FunctionDefinition) *routine {
		r.checkValue = !fn.IsPayable()
		r.returns = len(fn.Returns) > 0
		r.location = in.Locate(cd.Source, fn.Span)

		for _, ref := range fn.Calls {
			if act, ok := toAction(ref); ok {
				act.location = loc(ref)
				r.actions = append(r.actions, act)
			}
		}

		return r
	}

	if !cd.IsLibrary() {
		ctor := cd.Constructor()
		prog.constructor = &routine{name: "constructor", checkValue: !ctor.IsPayable(), location: evm.NoLocation}
		if ctor != nil {
			prog.constructor.location = in.Locate(cd.Source, ctor.Span)
		}

		for _, ref := range cd.InitializerCalls() {
			if act, ok := toAction(ref); ok {
				act.location = loc(ref)
				prog.constructor.actions = append(prog.constructor.actions, act)
			}
		}

		if fn := cd.SpecialFunction(ast.FuncFallback); fn != nil {
			prog.fallback = fnRoutine(&routine{name: "fallback"}, fn)
		}

		if fn := cd.SpecialFunction(ast.FuncReceive); fn != nil {
			prog.receive = fnRoutine(&routine{name: "receive"}, fn)
		}
	}

	for _, fn := range cd.InterfaceFunctions() {
		prog.functions = append(prog.functions, fnRoutine(newRoutine(fn.Signature()), fn))
	}

	for _, fn := range cd.InternalFunctions() {
		r := fnRoutine(&routine{name: fn.Signature()}, fn)
		r.checkValue = false
		prog.internals = append(prog.internals, r)
	}

	e := &emitter{in: in, prog: prog, annotate: annotator(in)}
	return e.emit()
}

// toAction converts a resolved reference into an action.
func toAction(ref *ast.CallReference) (action, bool) {
	if ref.Resolved == nil {
		return action{}, false
	}

	act := action{target: ref.Resolved.FullyQualifiedName()}
	switch ref.Kind {
	case ast.RefMemberCall:
		act.kind = actionLibraryCall
	case ast.RefCreation:
		act.kind = actionCreate
	default:
		act.kind = actionCode
	}

	return act, true
}

// checkStorage verifies the target supports the storage the contract uses.
func checkStorage(cd *ast.ContractDefinition, settings *config.Settings) error {
	for _, v := range cd.AllStateVariables() {
		if v.Transient && !settings.EVMVersion.SupportsTransientStorage() {
			return fmt.Errorf("transient storage is not supported by EVM version %s", settings.EVMVersion)
		}
	}

	return nil
}

// annotator renders source locations in listings according to the debug info
// selection.
func annotator(in *evm.CodegenInput) func(evm.SourceLocation) string {
	dis := in.Settings.DebugInfo
	if !dis.Location {
		return nil
	}

	return func(loc evm.SourceLocation) string {
		if loc.SourceIndex < 0 {
			return ""
		}

		text := fmt.Sprintf("@src %d:%d:%d", loc.SourceIndex, loc.Start, loc.Start+loc.Length)
		if dis.Snippet {
			if snippet := in.Snippet(loc); snippet != "" {
				text += "  \"" + strings.ReplaceAll(snippet, "*/", "* /") + "\""
			}
		}

		return text
	}
}
