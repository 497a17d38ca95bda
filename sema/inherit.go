package sema

import (
	"github.com/unparalleled-js/solidity/ast"
	"github.com/unparalleled-js/solidity/depm"
)

// resolveBases checks the inheritance specifiers of a contract.  The resolved
// direct bases are stored in the linearization slot temporarily, as
// [contract, bases...], until linearize replaces them.
func (a *Analyzer) resolveBases(cd *ast.ContractDefinition) {
	sc := a.scopes[cd.Source]
	direct := []*ast.ContractDefinition{cd}

	for _, name := range cd.BaseNames {
		base, ok := sc.lookup(name)
		if !ok {
			a.errorf(cd.Source, cd.Span, "identifier `%s` not found or not unique", name)
			continue
		}

		switch {
		case base == cd:
			a.errorf(cd.Source, cd.Span, "contract `%s` cannot inherit from itself", cd.Name)
			continue
		case base.IsLibrary():
			a.errorf(cd.Source, cd.Span, "libraries cannot be inherited from")
			continue
		case cd.IsLibrary():
			a.errorf(cd.Source, cd.Span, "library `%s` is not allowed to inherit", cd.Name)
			continue
		case cd.Kind == ast.KindInterface && base.Kind != ast.KindInterface:
			a.errorf(cd.Source, cd.Span, "interfaces can only inherit from other interfaces")
			continue
		}

		direct = append(direct, base)
	}

	cd.Linearized = direct
}

// directBases returns the bases stored by resolveBases.
func directBases(cd *ast.ContractDefinition) []*ast.ContractDefinition {
	if len(cd.Linearized) == 0 {
		return nil
	}

	return cd.Linearized[1:]
}

// linearize computes the C3 linearization of a contract.  Inheritance cycles
// and unlinearizable hierarchies are errors.
func (a *Analyzer) linearize(cd *ast.ContractDefinition) {
	search := depm.SearchGraph([]*ast.ContractDefinition{cd}, directBases)
	if len(search.Cycles) > 0 {
		// only members of the cycle report it
		for _, member := range search.Cycles[0] {
			if member == cd {
				a.errorf(cd.Source, cd.Span, "definition of base has to precede definition of derived contract `%s`", cd.Name)
			}
		}

		a.pendingLinearizations(cd, []*ast.ContractDefinition{cd})
		return
	}

	lin, ok := c3(cd, make(map[*ast.ContractDefinition][]*ast.ContractDefinition))
	if !ok {
		a.errorf(cd.Source, cd.Span, "linearization of inheritance graph of `%s` impossible", cd.Name)
		lin = []*ast.ContractDefinition{cd}
	}

	// direct bases of other contracts are still needed until every
	// linearization is done, so results are stored at the end
	a.pendingLinearizations(cd, lin)
}

// pendingLinearizations defers storing a linearization until every contract
// of the batch has been linearized.
func (a *Analyzer) pendingLinearizations(cd *ast.ContractDefinition, lin []*ast.ContractDefinition) {
	if a.linearized == nil {
		a.linearized = make(map[*ast.ContractDefinition][]*ast.ContractDefinition)
	}

	a.linearized[cd] = lin
}

// commitLinearizations stores every computed linearization.
func (a *Analyzer) commitLinearizations() {
	for cd, lin := range a.linearized {
		cd.Linearized = lin
	}

	a.linearized = nil
}

// c3 computes the linearization of cd: the contract itself followed by the
// merge of its bases' linearizations (the right-most base being the most
// derived, as written in `is A, B`) and the list of bases.
func c3(cd *ast.ContractDefinition, memo map[*ast.ContractDefinition][]*ast.ContractDefinition) ([]*ast.ContractDefinition, bool) {
	if lin, ok := memo[cd]; ok {
		return lin, true
	}

	bases := directBases(cd)

	var seqs [][]*ast.ContractDefinition
	for i := len(bases) - 1; i >= 0; i-- {
		lin, ok := c3(bases[i], memo)
		if !ok {
			return nil, false
		}

		seqs = append(seqs, append([]*ast.ContractDefinition(nil), lin...))
	}

	reversed := make([]*ast.ContractDefinition, len(bases))
	for i, b := range bases {
		reversed[len(bases)-1-i] = b
	}
	seqs = append(seqs, reversed)

	result := []*ast.ContractDefinition{cd}
	for {
		seqs = dropEmpty(seqs)
		if len(seqs) == 0 {
			break
		}

		var head *ast.ContractDefinition
		for _, seq := range seqs {
			candidate := seq[0]
			if !inTail(candidate, seqs) {
				head = candidate
				break
			}
		}

		if head == nil {
			return nil, false
		}

		result = append(result, head)
		for i, seq := range seqs {
			if seq[0] == head {
				seqs[i] = seq[1:]
			}
		}
	}

	memo[cd] = result
	return result, true
}

func dropEmpty(seqs [][]*ast.ContractDefinition) [][]*ast.ContractDefinition {
	out := seqs[:0]
	for _, seq := range seqs {
		if len(seq) > 0 {
			out = append(out, seq)
		}
	}

	return out
}

func inTail(cd *ast.ContractDefinition, seqs [][]*ast.ContractDefinition) bool {
	for _, seq := range seqs {
		for _, x := range seq[1:] {
			if x == cd {
				return true
			}
		}
	}

	return false
}
