package build

import (
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"github.com/unparalleled-js/solidity/config"
	"github.com/unparalleled-js/solidity/depm"
	"github.com/unparalleled-js/solidity/pipeline"
	"github.com/unparalleled-js/solidity/report"
)

// Compiler drives a set of source units through parsing, analysis, code
// generation and linking.  Every product is computed at most once per run and
// a run lasts until the compiler is reset.
//
// The stage methods (Parse, Analyze, Compile ...) must not be called
// concurrently with each other.  Queries are safe to call concurrently once
// the state they require has been reached.
type Compiler struct {
	settings config.Settings

	readCallback depm.ReadCallback
	reporter     *report.Reporter

	analyzer          Analyzer
	irGenerator       IRGenerator
	optimizer         Optimizer
	assembler         Assembler
	codeGenerator     CodeGenerator
	artifactGenerator ArtifactGenerator

	state State

	sources *depm.Registry

	// sourceOrder lists the units with imported units first
	sourceOrder []*depm.Source

	// contracts are keyed by fully qualified name
	contracts map[string]*contract

	// contractNames are the sorted fully qualified names
	contractNames []string
}

// NewCompiler creates a new compiler with default settings.
func NewCompiler(opts ...Option) *Compiler {
	c := &Compiler{
		settings: config.DefaultSettings(),
		sources:  depm.NewRegistry(),
	}

	for _, opt := range opts {
		opt(c)
	}

	c.defaultCollaborators()
	c.reporter.SetSourceLookup(func(name string) (string, bool) {
		if src, ok := c.sources.Get(name); ok {
			return src.Content, true
		}

		return "", false
	})

	return c
}

// State returns the current state of the compiler.
func (c *Compiler) State() State {
	return c.state
}

// Reporter returns the reporter collecting the diagnostics of the compiler.
func (c *Compiler) Reporter() *report.Reporter {
	return c.reporter
}

// Errors returns every diagnostic recorded since the last reset.
func (c *Compiler) Errors() report.Diagnostics {
	return c.reporter.Diagnostics()
}

// CompilationSuccessful returns whether every selected contract was compiled.
func (c *Compiler) CompilationSuccessful() bool {
	return c.state == StateCompilationSuccessful
}

// Reset discards every source unit and everything derived from them.  The
// settings are kept if keepSettings is set.
func (c *Compiler) Reset(keepSettings bool) {
	c.state = StateEmpty
	c.sources = depm.NewRegistry()
	c.sourceOrder = nil
	c.contracts = nil
	c.contractNames = nil
	c.reporter.Clear()

	if !keepSettings {
		c.settings = config.DefaultSettings()
	}
}

// -----------------------------------------------------------------------------

// Settings returns a copy of the current settings.
func (c *Compiler) Settings() config.Settings {
	s := c.settings
	s.Remappings = append([]depm.Remapping(nil), s.Remappings...)
	s.Selection = append(pipeline.Selection(nil), s.Selection...)
	s.Libraries = copyLibraries(s.Libraries)
	return s
}

// configure changes the settings.  Settings are fixed once parsing has begun.
func (c *Compiler) configure(op string, change func(s *config.Settings)) error {
	if c.state >= StateParsed {
		return &StateError{Op: op, Required: StateSourcesSet, Actual: c.state}
	}

	s := c.Settings()
	change(&s)

	if err := s.Validate(); err != nil {
		return &SettingsError{Err: err}
	}

	c.settings = s
	return nil
}

// SetSettings replaces all settings at once.
func (c *Compiler) SetSettings(s config.Settings) error {
	return c.configure("SetSettings", func(cur *config.Settings) {
		*cur = s
		cur.Libraries = copyLibraries(s.Libraries)
	})
}

// SetEVMVersion sets the targeted EVM version.
func (c *Compiler) SetEVMVersion(v config.EVMVersion) error {
	return c.configure("SetEVMVersion", func(s *config.Settings) {
		s.EVMVersion = v
	})
}

// SetEOFVersion sets the targeted object format version; zero for legacy.
func (c *Compiler) SetEOFVersion(v uint8) error {
	return c.configure("SetEOFVersion", func(s *config.Settings) {
		s.EOFVersion = v
	})
}

// SetOptimizer sets the optimizer settings.
func (c *Compiler) SetOptimizer(o config.OptimizerSettings) error {
	return c.configure("SetOptimizer", func(s *config.Settings) {
		s.Optimizer = o
	})
}

// SetViaIR chooses whether bytecode is generated through the IR.
func (c *Compiler) SetViaIR(viaIR bool) error {
	return c.configure("SetViaIR", func(s *config.Settings) {
		s.ViaIR = viaIR
	})
}

// SetMetadataHash sets the hash embedded into the metadata trailer.
func (c *Compiler) SetMetadataHash(h config.MetadataHash) error {
	return c.configure("SetMetadataHash", func(s *config.Settings) {
		s.MetadataHash = h
	})
}

// SetMetadataFormat sets what is appended to the runtime code.
func (c *Compiler) SetMetadataFormat(f config.MetadataFormat) error {
	return c.configure("SetMetadataFormat", func(s *config.Settings) {
		s.MetadataFormat = f
	})
}

// UseMetadataLiteralSources embeds source contents instead of hashes into the
// metadata.
func (c *Compiler) UseMetadataLiteralSources(literal bool) error {
	return c.configure("UseMetadataLiteralSources", func(s *config.Settings) {
		s.MetadataLiteralSources = literal
	})
}

// SetDebugInfo selects the annotations of the generated code.
func (c *Compiler) SetDebugInfo(dis config.DebugInfoSelection) error {
	return c.configure("SetDebugInfo", func(s *config.Settings) {
		s.DebugInfo = dis
	})
}

// SetRevertStrings sets how revert reason strings are treated.
func (c *Compiler) SetRevertStrings(rs config.RevertStrings) error {
	return c.configure("SetRevertStrings", func(s *config.Settings) {
		s.RevertStrings = rs
	})
}

// SetRemappings sets the import remappings.
func (c *Compiler) SetRemappings(remappings []depm.Remapping) error {
	return c.configure("SetRemappings", func(s *config.Settings) {
		s.Remappings = append([]depm.Remapping(nil), remappings...)
	})
}

// SetLibraries sets the library address table used for linking.  Use Relink
// to change it after compilation.
func (c *Compiler) SetLibraries(libs map[string]common.Address) error {
	return c.configure("SetLibraries", func(s *config.Settings) {
		s.Libraries = copyLibraries(libs)
	})
}

// SetSelection sets the rules choosing the products of each contract.
func (c *Compiler) SetSelection(sel pipeline.Selection) error {
	return c.configure("SetSelection", func(s *config.Settings) {
		s.Selection = append(pipeline.Selection(nil), sel...)
	})
}

// SetJobs bounds the number of contracts compiled concurrently.
func (c *Compiler) SetJobs(jobs int) error {
	return c.configure("SetJobs", func(s *config.Settings) {
		s.Jobs = jobs
	})
}

func copyLibraries(libs map[string]common.Address) map[string]common.Address {
	out := make(map[string]common.Address, len(libs))
	for name, addr := range libs {
		out[name] = addr
	}

	return out
}

// -----------------------------------------------------------------------------

// SetSources registers the source units of the run keyed by unit name.  Any
// state derived from earlier sources is discarded.  Sources can only be set
// before parsing; reset the compiler to start over.
func (c *Compiler) SetSources(sources map[string]string) error {
	if c.state > StateSourcesSet {
		return &StateError{Op: "SetSources", Required: StateSourcesSet, Actual: c.state}
	}

	if len(sources) == 0 {
		return &SettingsError{Err: errors.New("no source units given")}
	}

	c.sources = depm.NewRegistry()
	c.sourceOrder = nil
	c.contracts = nil
	c.contractNames = nil
	c.reporter.Clear()

	for name, content := range sources {
		c.sources.Add(depm.NewSource(name, content))
	}

	c.state = StateSourcesSet
	return nil
}

// requireState fails if the compiler has not reached a state.
func (c *Compiler) requireState(op string, required State) error {
	if c.state < required {
		return &StateError{Op: op, Required: required, Actual: c.state}
	}

	return nil
}
