package ast

import (
	"strings"

	"github.com/unparalleled-js/solidity/report"
)

// SourceUnit is the parsed representation of a single source unit.
type SourceUnit struct {
	// Name is the source unit name the unit was registered under.
	Name string

	// ID is the index of the unit in the sorted list of all source names.  It
	// is assigned when imports are resolved.
	ID int

	// License is the SPDX license identifier if one was given.
	License string

	Pragmas   []*Pragma
	Imports   []*ImportDirective
	Contracts []*ContractDefinition
}

// Pragma is a `pragma name value;` directive.
type Pragma struct {
	Name  string
	Value string
	Span  *report.TextSpan
}

// ImportDirective is a single import statement.
type ImportDirective struct {
	// Path is the import path exactly as it appears in the source text.
	Path string

	// ResolvedName is the name of the imported unit after relative path
	// resolution and remapping.  It is set when the import closure is loaded.
	ResolvedName string

	// UnitAlias is the `as X` alias of `import "p" as X;` if present.
	UnitAlias string

	// Symbols is the list of symbols named by `import {a as b} from "p";`.
	Symbols []ImportedSymbol

	Span *report.TextSpan
}

// ImportedSymbol is a single symbol of a symbol import.
type ImportedSymbol struct {
	Name  string
	Alias string
}

// LocalName returns the name the imported symbol is known by.
func (is ImportedSymbol) LocalName() string {
	if is.Alias != "" {
		return is.Alias
	}

	return is.Name
}

// -----------------------------------------------------------------------------

// ContractKind distinguishes contracts from interfaces and libraries.
type ContractKind int

// Enumeration of contract kinds.
const (
	KindContract ContractKind = iota
	KindInterface
	KindLibrary
)

func (ck ContractKind) String() string {
	switch ck {
	case KindInterface:
		return "interface"
	case KindLibrary:
		return "library"
	default:
		return "contract"
	}
}

// ContractDefinition is a contract, interface or library.
type ContractDefinition struct {
	Name     string
	Kind     ContractKind
	Abstract bool

	// Source is the name of the owning source unit.
	Source string

	// BaseNames are the inheritance specifiers as written.
	BaseNames []string

	StateVariables []*VariableDeclaration
	Functions      []*FunctionDefinition
	Events         []*EventDefinition
	Errors         []*ErrorDefinition

	Docs *Natspec
	Span *report.TextSpan

	// The fields below are filled in by semantic analysis.

	// Linearized is the C3 linearization of the inheritance hierarchy, most
	// derived first (so it always starts with the contract itself).
	Linearized []*ContractDefinition

	// LibraryRefs are the libraries whose external functions are called and
	// which must therefore be linked.
	LibraryRefs []*ContractDefinition

	// CreationRefs are the contracts whose creation code is embedded: through
	// `new C` or `type(C).creationCode`.
	CreationRefs []*ContractDefinition
}

// FullyQualifiedName returns `source:Name`.
func (cd *ContractDefinition) FullyQualifiedName() string {
	return cd.Source + ":" + cd.Name
}

// CanBeDeployed returns whether the contract has code of its own.
func (cd *ContractDefinition) CanBeDeployed() bool {
	return cd.Kind != KindInterface && !cd.Abstract
}

// IsLibrary returns whether the definition is a library.
func (cd *ContractDefinition) IsLibrary() bool {
	return cd.Kind == KindLibrary
}

// Constructor returns the constructor of the contract itself, if any.
func (cd *ContractDefinition) Constructor() *FunctionDefinition {
	for _, fn := range cd.Functions {
		if fn.Kind == FuncConstructor {
			return fn
		}
	}

	return nil
}

// linearized returns the linearization or just the contract before analysis.
func (cd *ContractDefinition) linearized() []*ContractDefinition {
	if len(cd.Linearized) == 0 {
		return []*ContractDefinition{cd}
	}

	return cd.Linearized
}

// InterfaceFunctions returns every externally callable function of the
// contract including inherited ones and the getters of public state
// variables.  Overridden functions are only listed once, in their most derived
// form.
func (cd *ContractDefinition) InterfaceFunctions() []*FunctionDefinition {
	seen := make(map[string]struct{})
	var fns []*FunctionDefinition

	add := func(fn *FunctionDefinition) {
		sig := fn.Signature()
		if _, ok := seen[sig]; !ok {
			seen[sig] = struct{}{}
			fns = append(fns, fn)
		}
	}

	for _, base := range cd.linearized() {
		for _, fn := range base.Functions {
			if fn.Kind == FuncFunction && fn.Visibility.IsExternallyVisible() {
				add(fn)
			}
		}

		for _, v := range base.StateVariables {
			if v.Visibility == VisibilityPublic {
				add(Getter(v))
			}
		}
	}

	return fns
}

// InternalFunctions returns the implemented functions of the contract and its
// bases that are not part of its interface.  Overridden ones are skipped.
func (cd *ContractDefinition) InternalFunctions() []*FunctionDefinition {
	seen := make(map[string]struct{})
	var fns []*FunctionDefinition

	for _, base := range cd.linearized() {
		for _, fn := range base.Functions {
			if fn.Kind != FuncFunction || !fn.HasBody {
				continue
			}

			sig := fn.Signature()
			if _, ok := seen[sig]; ok {
				continue
			}
			seen[sig] = struct{}{}

			if !fn.Visibility.IsExternallyVisible() {
				fns = append(fns, fn)
			}
		}
	}

	return fns
}

// SpecialFunction returns the most derived fallback or receive function.
func (cd *ContractDefinition) SpecialFunction(kind FunctionKind) *FunctionDefinition {
	for _, base := range cd.linearized() {
		for _, fn := range base.Functions {
			if fn.Kind == kind {
				return fn
			}
		}
	}

	return nil
}

// InitializerCalls returns the references made while the contract is being
// deployed: in state variable initializers and in constructors, most base
// contract first.
func (cd *ContractDefinition) InitializerCalls() []*CallReference {
	lin := cd.linearized()

	var refs []*CallReference
	for i := len(lin) - 1; i >= 0; i-- {
		for _, v := range lin[i].StateVariables {
			refs = append(refs, v.Calls...)
		}

		if ctor := lin[i].Constructor(); ctor != nil {
			refs = append(refs, ctor.Calls...)
		}
	}

	return refs
}

// IsPayable returns whether the function accepts value.
func (fd *FunctionDefinition) IsPayable() bool {
	return fd != nil && (fd.Mutability == MutabilityPayable || fd.Kind == FuncReceive)
}

// AllStateVariables returns the state variables of the contract and its bases
// in storage order: the most base contract first.
func (cd *ContractDefinition) AllStateVariables() []*VariableDeclaration {
	lin := cd.linearized()

	var vars []*VariableDeclaration
	for i := len(lin) - 1; i >= 0; i-- {
		vars = append(vars, lin[i].StateVariables...)
	}

	return vars
}

// AllEvents returns every event of the contract and its bases.
func (cd *ContractDefinition) AllEvents() []*EventDefinition {
	seen := make(map[string]struct{})
	var events []*EventDefinition

	for _, base := range cd.linearized() {
		for _, ev := range base.Events {
			sig := ev.Signature()
			if _, ok := seen[sig]; !ok {
				seen[sig] = struct{}{}
				events = append(events, ev)
			}
		}
	}

	return events
}

// AllErrors returns every custom error of the contract and its bases.
func (cd *ContractDefinition) AllErrors() []*ErrorDefinition {
	seen := make(map[string]struct{})
	var errs []*ErrorDefinition

	for _, base := range cd.linearized() {
		for _, e := range base.Errors {
			sig := e.Signature()
			if _, ok := seen[sig]; !ok {
				seen[sig] = struct{}{}
				errs = append(errs, e)
			}
		}
	}

	return errs
}

// -----------------------------------------------------------------------------

// Visibility is the visibility of a function or state variable.
type Visibility int

// Enumeration of visibilities.
const (
	VisibilityDefault Visibility = iota
	VisibilityPublic
	VisibilityExternal
	VisibilityInternal
	VisibilityPrivate
)

var visibilityNames = [...]string{"default", "public", "external", "internal", "private"}

func (v Visibility) String() string {
	return visibilityNames[v]
}

// IsExternallyVisible returns whether the member is part of the interface.
func (v Visibility) IsExternallyVisible() bool {
	return v == VisibilityPublic || v == VisibilityExternal
}

// Mutability is the state mutability of a function.
type Mutability int

// Enumeration of state mutabilities.
const (
	MutabilityNonPayable Mutability = iota
	MutabilityPayable
	MutabilityView
	MutabilityPure
)

var mutabilityNames = [...]string{"nonpayable", "payable", "view", "pure"}

func (m Mutability) String() string {
	return mutabilityNames[m]
}

// FunctionKind distinguishes special functions.
type FunctionKind int

// Enumeration of function kinds.
const (
	FuncFunction FunctionKind = iota
	FuncConstructor
	FuncFallback
	FuncReceive
	FuncModifier
)

var functionKindNames = [...]string{"function", "constructor", "fallback", "receive", "modifier"}

func (fk FunctionKind) String() string {
	return functionKindNames[fk]
}

// VariableDeclaration is a state variable.
type VariableDeclaration struct {
	Name       string
	Type       string
	Visibility Visibility

	Constant  bool
	Immutable bool
	Transient bool

	// Calls are the references to other contracts in the initializer.
	Calls []*CallReference

	Docs *Natspec
	Span *report.TextSpan
}

// Parameter is a function, event or error parameter.
type Parameter struct {
	Name    string
	Type    string
	Indexed bool
}

// FunctionDefinition is a function, constructor, fallback, receive function or
// modifier.
type FunctionDefinition struct {
	Name       string
	Kind       FunctionKind
	Visibility Visibility
	Mutability Mutability

	Params  []*Parameter
	Returns []*Parameter

	Virtual  bool
	Override bool

	// HasBody is false for declarations without implementation.
	HasBody bool

	// Calls are the references to other contracts found in the body.
	Calls []*CallReference

	Docs *Natspec
	Span *report.TextSpan
}

// Signature returns the canonical signature `name(t1,t2)`.
func (fd *FunctionDefinition) Signature() string {
	return signature(fd.Name, fd.Params)
}

// CallReferenceKind is what a call reference does with its target.
type CallReferenceKind int

// Enumeration of reference kinds.
const (
	RefMemberCall   CallReferenceKind = iota // X.f(...)
	RefCreation                              // new X(...)
	RefCreationCode                          // type(X).creationCode
	RefRuntimeCode                           // type(X).runtimeCode
)

// CallReference is a syntactic reference to another contract found inside a
// function body.  Which of them are meaningful is decided by analysis.
type CallReference struct {
	Kind   CallReferenceKind
	Target string
	Member string
	Span   *report.TextSpan

	// Resolved is the library called or the contract created.  It is set by
	// analysis for the references that end up in the generated code.
	Resolved *ContractDefinition
}

// EventDefinition is an event.
type EventDefinition struct {
	Name      string
	Params    []*Parameter
	Anonymous bool

	Docs *Natspec
	Span *report.TextSpan
}

// Signature returns the canonical signature of the event.
func (ed *EventDefinition) Signature() string {
	return signature(ed.Name, ed.Params)
}

// ErrorDefinition is a custom error.
type ErrorDefinition struct {
	Name   string
	Params []*Parameter

	Docs *Natspec
	Span *report.TextSpan
}

// Signature returns the canonical signature of the error.
func (ed *ErrorDefinition) Signature() string {
	return signature(ed.Name, ed.Params)
}

func signature(name string, params []*Parameter) string {
	types := make([]string, len(params))
	for i, p := range params {
		types[i] = ABIType(p.Type)
	}

	return name + "(" + strings.Join(types, ",") + ")"
}

// CanonicalType converts an elementary type name into its canonical form:
// `uint` becomes `uint256`, `int` becomes `int256` and so on.
func CanonicalType(typ string) string {
	base, suffix := typ, ""
	if i := strings.IndexByte(typ, '['); i >= 0 {
		base, suffix = typ[:i], typ[i:]
	}

	switch base {
	case "uint":
		base = "uint256"
	case "int":
		base = "int256"
	case "byte":
		base = "bytes1"
	case "address payable":
		base = "address"
	}

	return base + suffix
}

// ABIType converts a type name into the type used in the contract interface.
// User defined types are contracts and therefore addresses.
func ABIType(typ string) string {
	base, suffix := typ, ""
	if i := strings.IndexByte(typ, '['); i >= 0 {
		base, suffix = typ[:i], typ[i:]
	}

	canon := CanonicalType(base)
	if !IsElementary(canon) {
		canon = "address"
	}

	return canon + suffix
}

// IsElementary returns whether a canonical type name is built in.
func IsElementary(typ string) bool {
	switch typ {
	case "address", "bool", "string", "bytes":
		return true
	}

	for _, prefix := range []string{"uint", "int", "bytes"} {
		if rest := strings.TrimPrefix(typ, prefix); rest != typ {
			return rest != "" && strings.Trim(rest, "0123456789") == ""
		}
	}

	return false
}
