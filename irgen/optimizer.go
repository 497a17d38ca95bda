package irgen

import (
	"fmt"

	"github.com/llir/llvm/asm"
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/enum"
	"github.com/unparalleled-js/solidity/config"
	"github.com/unparalleled-js/solidity/depm"
)

// Optimizer reparses generated IR into a fresh module and optimizes it.  The
// input text is never modified so the unoptimized IR stays available.
type Optimizer struct{}

// NewOptimizer creates a new IR optimizer.
func NewOptimizer() *Optimizer {
	return &Optimizer{}
}

// Optimize returns the optimized form of the IR of a contract.  When the
// optimizer is disabled the IR is only validated and normalized.
func (o *Optimizer) Optimize(name, text string, settings *config.Settings) (string, error) {
	m, err := asm.ParseString(name, text)
	if err != nil {
		return "", fmt.Errorf("invalid IR for `%s`: %w", name, err)
	}

	if settings.Optimizer.Enabled {
		eliminateDeadFunctions(m)
	}

	return m.String(), nil
}

// eliminateDeadFunctions removes every function not reachable from an
// exported definition.
func eliminateDeadFunctions(m *ir.Module) {
	var roots []*ir.Func
	for _, f := range m.Funcs {
		if len(f.Blocks) > 0 && f.Linkage != enum.LinkageInternal && f.Linkage != enum.LinkagePrivate {
			roots = append(roots, f)
		}
	}

	search := depm.SearchGraph(roots, callees)

	live := make(map[*ir.Func]struct{}, len(search.Order))
	for _, f := range search.Order {
		live[f] = struct{}{}
	}

	funcs := m.Funcs[:0]
	for _, f := range m.Funcs {
		if _, ok := live[f]; ok {
			funcs = append(funcs, f)
		}
	}

	m.Funcs = funcs
}

// callees returns the functions called directly by a function.
func callees(f *ir.Func) []*ir.Func {
	var out []*ir.Func
	for _, block := range f.Blocks {
		for _, inst := range block.Insts {
			if call, ok := inst.(*ir.InstCall); ok {
				if callee, ok := call.Callee.(*ir.Func); ok {
					out = append(out, callee)
				}
			}
		}
	}

	return out
}
