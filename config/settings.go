package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/unparalleled-js/solidity/depm"
	"github.com/unparalleled-js/solidity/pipeline"
)

// MetadataHash selects how the metadata document is hashed before it is
// embedded into the runtime object.
type MetadataHash int

// Enumeration of metadata hash methods.
const (
	MetadataHashKeccak256 MetadataHash = iota
	MetadataHashBlake2b
	MetadataHashNone
)

// MetadataFormat selects what is appended to the runtime object.
type MetadataFormat int

// Enumeration of metadata formats.
const (
	MetadataWithReleaseVersionTag MetadataFormat = iota
	MetadataWithPrereleaseVersionTag
	NoMetadata
)

// RevertStrings selects how revert reasons generated by the compiler are
// treated.
type RevertStrings int

// Enumeration of revert string modes.
const (
	RevertStringsDefault RevertStrings = iota
	RevertStringsStrip
	RevertStringsDebug
	RevertStringsVerboseDebug
)

var metadataHashNames = map[string]MetadataHash{
	"keccak256": MetadataHashKeccak256,
	"blake2b":   MetadataHashBlake2b,
	"none":      MetadataHashNone,
}

var metadataFormatNames = map[string]MetadataFormat{
	"release":    MetadataWithReleaseVersionTag,
	"prerelease": MetadataWithPrereleaseVersionTag,
	"none":       NoMetadata,
}

var revertStringNames = map[string]RevertStrings{
	"default":      RevertStringsDefault,
	"strip":        RevertStringsStrip,
	"debug":        RevertStringsDebug,
	"verboseDebug": RevertStringsVerboseDebug,
}

func (mh MetadataHash) String() string {
	return nameOf(metadataHashNames, mh)
}

func (mf MetadataFormat) String() string {
	return nameOf(metadataFormatNames, mf)
}

func (rs RevertStrings) String() string {
	return nameOf(revertStringNames, rs)
}

func nameOf[T comparable](names map[string]T, v T) string {
	for name, x := range names {
		if x == v {
			return name
		}
	}

	return "unknown"
}

// OptimizerSettings configures the IR and bytecode optimizers.
type OptimizerSettings struct {
	Enabled bool

	// Runs is the estimated number of executions of each opcode over the
	// lifetime of the contract
	Runs uint
}

// DebugInfoSelection selects which debug annotations appear in the generated
// IR and assembly.
type DebugInfoSelection struct {
	Location bool
	Snippet  bool
	ASTID    bool
}

// DefaultDebugInfo annotates source locations only.
var DefaultDebugInfo = DebugInfoSelection{Location: true}

// ParseDebugInfo parses a list of debug-info component names.
func ParseDebugInfo(names []string) (DebugInfoSelection, error) {
	var dis DebugInfoSelection
	for _, name := range names {
		switch name {
		case "location":
			dis.Location = true
		case "snippet":
			dis.Snippet = true
		case "ast-id":
			dis.ASTID = true
		case "*":
			dis = DebugInfoSelection{Location: true, Snippet: true, ASTID: true}
		default:
			return dis, fmt.Errorf("unknown debug info component `%s`", name)
		}
	}

	if dis.Snippet && !dis.Location {
		return dis, errors.New("debug info component `snippet` requires `location`")
	}

	return dis, nil
}

// Settings is the complete set of options of a compiler run.  All settings
// must be fixed before parsing begins.
type Settings struct {
	EVMVersion EVMVersion

	// EOFVersion is the targeted object format version; zero means legacy
	// bytecode
	EOFVersion uint8

	Optimizer OptimizerSettings

	// ViaIR routes bytecode generation through the IR
	ViaIR bool

	MetadataHash           MetadataHash
	MetadataFormat         MetadataFormat
	MetadataLiteralSources bool

	DebugInfo     DebugInfoSelection
	RevertStrings RevertStrings

	// Remappings are applied in order to every import path
	Remappings []depm.Remapping

	// Libraries maps library names (`source:Name` or bare `Name`) to their
	// deployed addresses
	Libraries map[string]common.Address

	// Selection chooses the pipeline products of each contract
	Selection pipeline.Selection

	// Jobs bounds the number of contracts compiled concurrently; values below
	// two compile sequentially
	Jobs int
}

// DefaultSettings returns the settings of a fresh compiler.
func DefaultSettings() Settings {
	return Settings{
		EVMVersion: DefaultEVMVersion,
		Optimizer:  OptimizerSettings{Runs: 200},
		DebugInfo:  DefaultDebugInfo,
		Libraries:  make(map[string]common.Address),
		Jobs:       1,
	}
}

// Validate checks the settings for inconsistencies.
func (s *Settings) Validate() error {
	if s.EOFVersion != 0 {
		if s.EOFVersion != 1 {
			return fmt.Errorf("unsupported EOF version %d", s.EOFVersion)
		}

		if !s.EVMVersion.SupportsEOF() {
			return fmt.Errorf("EOF requires EVM version osaka or later; got %s", s.EVMVersion)
		}
	}

	if s.Optimizer.Enabled && s.Optimizer.Runs == 0 {
		return errors.New("optimizer runs must be positive when the optimizer is enabled")
	}

	if s.MetadataFormat == NoMetadata && s.MetadataHash != MetadataHashNone {
		// the hash would have nowhere to go
		s.MetadataHash = MetadataHashNone
	}

	for name := range s.Libraries {
		if strings.TrimSpace(name) == "" {
			return errors.New("library name must not be empty")
		}
	}

	return nil
}

// ParseLibraries converts a name to hex address map into a library address
// table.
func ParseLibraries(raw map[string]string) (map[string]common.Address, error) {
	libs := make(map[string]common.Address, len(raw))
	for name, addr := range raw {
		if !common.IsHexAddress(addr) {
			return nil, fmt.Errorf("invalid address `%s` for library `%s`", addr, name)
		}

		libs[name] = common.HexToAddress(addr)
	}

	return libs, nil
}
