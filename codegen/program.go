package codegen

import (
	"encoding/binary"
	"fmt"

	"github.com/unparalleled-js/solidity/common"
	"github.com/unparalleled-js/solidity/config"
	"github.com/unparalleled-js/solidity/evm"
)

// actionKind is what a routine does with another contract.
type actionKind int

const (
	actionLibraryCall actionKind = iota
	actionCreate
	actionCode
)

// action is a single interaction of a routine with another contract.
type action struct {
	kind     actionKind
	target   string
	location evm.SourceLocation
}

// routine is a single entry point or internal function of the generated code.
type routine struct {
	name     string
	selector []byte

	// checkValue requests a revert when value is sent
	checkValue bool
	returns    bool

	actions  []action
	location evm.SourceLocation
}

// program is the route independent description of a contract's code.  Both
// the direct and the IR route build a program and emit it the same way.
type program struct {
	name string

	constructor *routine
	functions   []*routine
	fallback    *routine
	receive     *routine
	internals   []*routine

	// library is set for library contracts: they have no constructor logic
	// and reject plain value transfers
	library bool
}

// newRoutine creates a routine for an external function signature.
func newRoutine(signature string) *routine {
	sel := common.Selector(signature)
	return &routine{name: signature, selector: sel[:], location: evm.NoLocation}
}

// emitter turns a program into bytecode.
type emitter struct {
	in   *evm.CodegenInput
	prog *program

	// annotate renders debug comments for listings
	annotate func(evm.SourceLocation) string
}

func (e *emitter) settings() *config.Settings {
	return e.in.Settings
}

// pushZero pushes a zero word as cheaply as the target allows.
func (e *emitter) pushZero(a *evm.Assembly) {
	if e.settings().EVMVersion.HasPush0() {
		a.Op(evm.PUSH0)
	} else {
		a.PushUint(0)
	}
}

// revert appends an empty revert.
func (e *emitter) revert(a *evm.Assembly) {
	e.pushZero(a)
	a.Op(evm.DUP1, evm.REVERT)
}

// emit assembles the program into the creation and runtime objects.
func (e *emitter) emit() (*evm.Compiled, error) {
	runtime := e.newAssembly(e.prog.name + "_deployed")
	if err := e.emitRuntime(runtime); err != nil {
		return nil, err
	}

	if len(e.in.Metadata) > 0 {
		runtime.Trailer = append(append([]byte(nil), e.in.Metadata...), 0, 0)
		binary.BigEndian.PutUint16(runtime.Trailer[len(e.in.Metadata):], uint16(len(e.in.Metadata)))
	}

	runtimeObj, runtimeMap, err := runtime.Assemble()
	if err != nil {
		return nil, err
	}

	creation := e.newAssembly(e.prog.name)
	if err := e.emitCreation(creation, runtime, runtimeObj); err != nil {
		return nil, err
	}

	creationObj, creationMap, err := creation.Assemble()
	if err != nil {
		return nil, err
	}

	return &evm.Compiled{
		Creation:         creationObj,
		Runtime:          runtimeObj,
		Assembly:         creation.String(),
		SourceMap:        creationMap,
		RuntimeSourceMap: runtimeMap,
	}, nil
}

func (e *emitter) newAssembly(name string) *evm.Assembly {
	a := evm.NewAssembly(name)
	a.Annotate = e.annotate
	return a
}

// emitCreation generates the deployment code: the constructor followed by
// copying the runtime code into memory and returning it.
func (e *emitter) emitCreation(a *evm.Assembly, runtime *evm.Assembly, runtimeObj *evm.Object) error {
	subs := make(map[string]int)

	if ctor := e.prog.constructor; ctor != nil {
		a.SetLocation(ctor.location)
		if ctor.checkValue {
			e.emitValueCheck(a)
		}

		if err := e.emitActions(a, ctor, subs); err != nil {
			return err
		}
	}

	a.SetLocation(evm.NoLocation)
	idx := a.AddSubAssembly(runtime, runtimeObj)
	a.PushSubSize(idx)
	a.Op(evm.DUP1)
	a.PushSubOffset(idx)
	e.pushZero(a)
	a.Op(evm.CODECOPY)
	e.pushZero(a)
	a.Op(evm.RETURN)

	return nil
}

// emitRuntime generates the dispatcher followed by every routine.
func (e *emitter) emitRuntime(a *evm.Assembly) error {
	subs := make(map[string]int)
	tags := make(map[*routine]int)

	all := append([]*routine(nil), e.prog.functions...)
	for _, r := range []*routine{e.prog.fallback, e.prog.receive} {
		if r != nil {
			all = append(all, r)
		}
	}
	all = append(all, e.prog.internals...)

	for _, r := range all {
		tags[r] = a.NewTag()
	}

	noMatch := a.NewTag()

	if len(e.prog.functions) > 0 {
		a.PushUint(4)
		a.Op(evm.CALLDATASIZE, evm.LT)
		a.PushTag(noMatch)
		a.Jump(evm.JUMPI, 0)

		e.pushZero(a)
		a.Op(evm.CALLDATALOAD)
		a.PushUint(0xe0)
		a.Op(evm.SHR)

		for _, fn := range e.prog.functions {
			a.Op(evm.DUP1)
			a.Push(fn.selector)
			a.Op(evm.EQ)
			a.PushTag(tags[fn])
			a.Jump(evm.JUMPI, 0)
		}
	}

	a.AppendTag(noMatch)
	if r := e.prog.receive; r != nil {
		a.Op(evm.CALLDATASIZE, evm.ISZERO)
		a.PushTag(tags[r])
		a.Jump(evm.JUMPI, 0)
	}

	if r := e.prog.fallback; r != nil && !e.prog.library {
		a.PushTag(tags[r])
		a.Jump(evm.JUMP, 0)
	} else {
		e.revert(a)
	}

	for _, r := range all {
		a.SetLocation(r.location)
		a.AppendTag(tags[r])

		if r.checkValue {
			e.emitValueCheck(a)
		}

		if err := e.emitActions(a, r, subs); err != nil {
			return err
		}

		if r.returns {
			a.PushUint(0x20)
			e.pushZero(a)
			a.Op(evm.RETURN)
		} else {
			a.Op(evm.STOP)
		}
	}

	return nil
}

// emitValueCheck reverts if value was sent.
func (e *emitter) emitValueCheck(a *evm.Assembly) {
	ok := a.NewTag()

	a.Op(evm.CALLVALUE, evm.ISZERO)
	a.PushTag(ok)
	a.Jump(evm.JUMPI, 0)
	e.revert(a)
	a.AppendTag(ok)
}

// emitActions generates the interactions of a routine with other contracts.
// Embedded contracts become sub objects of the assembly, shared between
// routines through subs.
func (e *emitter) emitActions(a *evm.Assembly, r *routine, subs map[string]int) error {
	for _, act := range r.actions {
		a.SetLocation(act.location)

		switch act.kind {
		case actionLibraryCall:
			// delegatecall(gas, lib, 0, 0, 0, 0)
			for i := 0; i < 4; i++ {
				e.pushZero(a)
			}
			a.PushLibrary(act.target)
			a.Op(evm.GAS, evm.DELEGATECALL, evm.POP)
		case actionCreate, actionCode:
			idx, ok := subs[act.target]
			if !ok {
				dep, ok := e.in.Dependencies[act.target]
				if !ok {
					return fmt.Errorf("bytecode of `%s` is not available", act.target)
				}

				idx = a.AddSub(dep)
				subs[act.target] = idx
			}

			a.PushSubSize(idx)
			a.Op(evm.DUP1)
			a.PushSubOffset(idx)
			e.pushZero(a)
			a.Op(evm.CODECOPY)

			if act.kind == actionCreate {
				e.pushZero(a)
				e.pushZero(a)
				a.Op(evm.CREATE)
			}

			a.Op(evm.POP)
		}
	}

	a.SetLocation(r.location)
	return nil
}
