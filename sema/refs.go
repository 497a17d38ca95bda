package sema

import (
	"sort"

	"github.com/unparalleled-js/solidity/ast"
)

// resolveReferences binds the syntactic contract references of a contract and
// of everything it inherits to the libraries it must be linked against and the
// contracts whose code it embeds.
func (a *Analyzer) resolveReferences(cd *ast.ContractDefinition) {
	libs := make(map[*ast.ContractDefinition]struct{})
	creations := make(map[*ast.ContractDefinition]struct{})

	for _, base := range cd.Linearized {
		sc := a.scopes[base.Source]

		var refs []*ast.CallReference
		for _, v := range base.StateVariables {
			refs = append(refs, v.Calls...)
		}
		for _, fn := range base.Functions {
			refs = append(refs, fn.Calls...)
		}

		for _, ref := range refs {
			target, ok := sc.lookup(ref.Target)
			if !ok {
				// elementary types, structs and local variables
				continue
			}

			switch ref.Kind {
			case ast.RefMemberCall:
				if !target.IsLibrary() {
					continue
				}

				fn := findFunction(target, ref.Member)
				if fn == nil {
					a.errorf(base.Source, ref.Span, "member `%s` not found in library `%s`", ref.Member, target.Name)
					continue
				}

				// internal library functions are inlined into the caller
				if fn.Visibility.IsExternallyVisible() {
					libs[target] = struct{}{}
					ref.Resolved = target
				}
			case ast.RefCreation:
				switch {
				case target.IsLibrary():
					a.errorf(base.Source, ref.Span, "cannot instantiate library `%s`", target.Name)
				case !target.CanBeDeployed():
					a.errorf(base.Source, ref.Span, "cannot instantiate an interface or abstract contract `%s`", target.Name)
				default:
					creations[target] = struct{}{}
					ref.Resolved = target
				}
			case ast.RefCreationCode, ast.RefRuntimeCode:
				if !target.CanBeDeployed() {
					a.errorf(base.Source, ref.Span, "member `%s` not available for `%s`", ref.Member, target.Name)
					continue
				}

				creations[target] = struct{}{}
				ref.Resolved = target
			}
		}
	}

	cd.LibraryRefs = sortedDefs(libs)
	cd.CreationRefs = sortedDefs(creations)
}

// findFunction finds a function of a contract by name.
func findFunction(cd *ast.ContractDefinition, name string) *ast.FunctionDefinition {
	for _, fn := range cd.Functions {
		if fn.Kind == ast.FuncFunction && fn.Name == name {
			return fn
		}
	}

	return nil
}

func sortedDefs(set map[*ast.ContractDefinition]struct{}) []*ast.ContractDefinition {
	defs := make([]*ast.ContractDefinition, 0, len(set))
	for cd := range set {
		defs = append(defs, cd)
	}

	sort.Slice(defs, func(i, j int) bool {
		return defs[i].FullyQualifiedName() < defs[j].FullyQualifiedName()
	})

	return defs
}
