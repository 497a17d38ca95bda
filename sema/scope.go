package sema

import (
	"strings"

	"github.com/unparalleled-js/solidity/ast"
	"github.com/unparalleled-js/solidity/report"
)

// scope is the global scope of a single source unit: every contract name it
// can refer to and every unit alias it declares.
type scope struct {
	unit *ast.SourceUnit

	contracts map[string]*ast.ContractDefinition
	aliases   map[string]*scope
}

func newScope(su *ast.SourceUnit) *scope {
	sc := &scope{
		unit:      su,
		contracts: make(map[string]*ast.ContractDefinition),
		aliases:   make(map[string]*scope),
	}

	for _, cd := range su.Contracts {
		if _, ok := sc.contracts[cd.Name]; !ok {
			sc.contracts[cd.Name] = cd
		}
	}

	return sc
}

// lookup resolves a possibly dotted contract path such as `Utils.Math`.
func (sc *scope) lookup(path string) (*ast.ContractDefinition, bool) {
	if dot := strings.IndexByte(path, '.'); dot >= 0 {
		if alias, ok := sc.aliases[path[:dot]]; ok {
			return alias.lookup(path[dot+1:])
		}

		return nil, false
	}

	cd, ok := sc.contracts[path]
	return cd, ok
}

// buildScopes computes the scope of every unit.  A plain import brings every
// symbol visible in the imported unit into scope so scopes are computed as a
// fixpoint: import cycles are legal.
func buildScopes(units []*ast.SourceUnit, errorf func(string, *report.TextSpan, string, ...interface{})) map[string]*scope {
	scopes := make(map[string]*scope, len(units))
	for _, su := range units {
		scopes[su.Name] = newScope(su)
	}

	// unit aliases do not change during the fixpoint
	for _, su := range units {
		for _, imp := range su.Imports {
			if target, ok := scopes[imp.ResolvedName]; ok && imp.UnitAlias != "" {
				scopes[su.Name].aliases[imp.UnitAlias] = target
			}
		}
	}

	reported := make(map[*ast.ImportDirective]map[string]bool)
	for changed := true; changed; {
		changed = false

		for _, su := range units {
			sc := scopes[su.Name]

			for _, imp := range su.Imports {
				target, ok := scopes[imp.ResolvedName]
				if !ok || (imp.UnitAlias != "" && len(imp.Symbols) == 0) {
					continue
				}

				if len(imp.Symbols) == 0 {
					for name, cd := range target.contracts {
						if sc.declare(name, cd, imp, errorf, reported) {
							changed = true
						}
					}

					continue
				}

				for _, sym := range imp.Symbols {
					cd, ok := target.contracts[sym.Name]
					if !ok {
						if !reported[imp][sym.Name] {
							markReported(reported, imp, sym.Name)
							errorf(su.Name, imp.Span, "declaration `%s` not found in `%s`", sym.Name, imp.ResolvedName)
						}

						continue
					}

					if sc.declare(sym.LocalName(), cd, imp, errorf, reported) {
						changed = true
					}
				}
			}
		}
	}

	return scopes
}

// declare adds an imported contract to the scope.  It returns whether the
// scope changed.  Importing a different contract under an already used name
// is an error.
func (sc *scope) declare(
	name string,
	cd *ast.ContractDefinition,
	imp *ast.ImportDirective,
	errorf func(string, *report.TextSpan, string, ...interface{}),
	reported map[*ast.ImportDirective]map[string]bool,
) bool {
	if existing, ok := sc.contracts[name]; ok {
		if existing != cd && !reported[imp][name] {
			markReported(reported, imp, name)
			errorf(sc.unit.Name, imp.Span, "identifier `%s` already declared", name)
		}

		return false
	}

	sc.contracts[name] = cd
	return true
}

func markReported(reported map[*ast.ImportDirective]map[string]bool, imp *ast.ImportDirective, name string) {
	if reported[imp] == nil {
		reported[imp] = make(map[string]bool)
	}

	reported[imp][name] = true
}
