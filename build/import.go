package build

import (
	"errors"
	"sort"

	"github.com/unparalleled-js/solidity/depm"
	"github.com/unparalleled-js/solidity/report"
)

// Parse parses every registered unit and loads and parses everything they
// import, transitively, through the read callback.  Any parse or read error
// leaves the compiler in StateSourcesSet; the diagnostics are returned.
func (c *Compiler) Parse() error {
	if err := c.requireState("Parse", StateSourcesSet); err != nil {
		return err
	}

	if c.state >= StateParsed {
		return nil
	}

	c.reporter.BeginPhase("Parsing")
	defer c.reporter.EndPhase()

	failed := false

	// units are visited once each so import cycles are harmless
	queued := make(map[string]bool)
	pending := c.sources.Names()
	for _, name := range pending {
		queued[name] = true
	}

	for len(pending) > 0 {
		name := pending[0]
		pending = pending[1:]

		src, _ := c.sources.Get(name)
		if src.AST == nil {
			su, diags := c.analyzer.Parse(name, src.Content)
			c.reporter.ReportAll(diags)

			if su == nil || diags.HasErrors() {
				failed = true
				continue
			}

			su.Name = name
			src.AST = su
		}

		for _, imp := range src.AST.Imports {
			imp.ResolvedName = depm.ResolveImport(c.settings.Remappings, imp.Path, name)
			if queued[imp.ResolvedName] {
				continue
			}

			if _, ok := c.sources.Get(imp.ResolvedName); !ok {
				content, err := c.readCallback.Read(imp.ResolvedName, name)
				if err != nil {
					c.reporter.Report(&report.Diagnostic{
						Kind:     report.KindRead,
						Severity: report.SeverityError,
						Source:   name,
						Span:     imp.Span,
						Message:  err.Error(),
					})

					failed = true
					continue
				}

				c.sources.Add(depm.NewSource(imp.ResolvedName, content))
			}

			queued[imp.ResolvedName] = true
			pending = append(pending, imp.ResolvedName)
		}
	}

	if failed {
		return c.failure()
	}

	c.state = StateParsed
	return nil
}

// ResolveImports binds the units to each other and computes the source order
// in which imported units come first.
func (c *Compiler) ResolveImports() error {
	if err := c.requireState("ResolveImports", StateParsed); err != nil {
		return err
	}

	if c.state >= StateParsedAndImported {
		return nil
	}

	names := c.sources.Names()
	for id, name := range names {
		src, _ := c.sources.Get(name)
		src.AST.ID = id
	}

	search := depm.SearchGraph(names, func(name string) []string {
		src, _ := c.sources.Get(name)

		var deps []string
		for _, imp := range src.AST.Imports {
			deps = append(deps, imp.ResolvedName)
		}

		return deps
	})

	c.sourceOrder = c.sourceOrder[:0]
	for _, name := range search.Order {
		src, _ := c.sources.Get(name)
		c.sourceOrder = append(c.sourceOrder, src)
	}

	c.contracts = make(map[string]*contract)
	c.contractNames = nil
	for _, src := range c.sourceOrder {
		for _, cd := range src.AST.Contracts {
			fqn := cd.FullyQualifiedName()
			if _, ok := c.contracts[fqn]; ok {
				// reported by analysis
				continue
			}

			c.contracts[fqn] = c.newContract(cd)
			c.contractNames = append(c.contractNames, fqn)
		}
	}
	sort.Strings(c.contractNames)

	c.state = StateParsedAndImported
	return nil
}

// ParseAndAnalyze runs every stage up to analysis but never moves past
// stopAfter.
func (c *Compiler) ParseAndAnalyze(stopAfter State) error {
	if stopAfter < StateParsed {
		return c.requireState("ParseAndAnalyze", StateSourcesSet)
	}

	if err := c.Parse(); err != nil || stopAfter <= StateParsed {
		return err
	}

	if err := c.ResolveImports(); err != nil || stopAfter <= StateParsedAndImported {
		return err
	}

	return c.Analyze()
}

// failure returns the errors recorded so far.
func (c *Compiler) failure() error {
	var errs report.Diagnostics
	for _, d := range c.reporter.Diagnostics() {
		if d.IsError() {
			errs = append(errs, d)
		}
	}

	if len(errs) == 0 {
		return errors.New("compilation failed")
	}

	return errs
}
