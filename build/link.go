package build

import (
	"github.com/ethereum/go-ethereum/common"
)

// link fills in the library addresses of every compiled contract.  Linking
// always starts from the unlinked objects so it can be repeated.
func (c *Compiler) link(order []string) {
	for _, fqn := range order {
		ct := c.contracts[fqn]
		if !ct.hasBytecode() {
			continue
		}

		ct.linkedCreation = ct.compiled.Creation.Link(c.settings.Libraries)
		ct.linkedRuntime = ct.compiled.Runtime.Link(c.settings.Libraries)
	}
}

// Relink links every compiled contract against a new library table without
// compiling anything again.  The table replaces the configured one.
func (c *Compiler) Relink(libs map[string]common.Address) error {
	if err := c.requireState("Relink", StateCompilationSuccessful); err != nil {
		return err
	}

	c.settings.Libraries = copyLibraries(libs)
	c.link(c.contractNames)
	return nil
}
