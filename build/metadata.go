package build

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/fxamacker/cbor/v2"

	"github.com/unparalleled-js/solidity/artifacts"
	"github.com/unparalleled-js/solidity/common"
	"github.com/unparalleled-js/solidity/config"
	"github.com/unparalleled-js/solidity/depm"
)

// The metadata document describes how a contract was compiled so that the
// compilation can be reproduced and verified.  Its fields are declared in
// alphabetical order and every map is sorted on encoding which makes the
// document, and so its hash, deterministic.

type metadataDoc struct {
	Compiler metadataCompiler           `json:"compiler"`
	Language string                     `json:"language"`
	Output   metadataOutput             `json:"output"`
	Settings metadataSettings           `json:"settings"`
	Sources  map[string]*metadataSource `json:"sources"`
	Version  int                        `json:"version"`
}

type metadataCompiler struct {
	Version string `json:"version"`
}

type metadataOutput struct {
	ABI     artifacts.ABI      `json:"abi"`
	DevDoc  *artifacts.DevDoc  `json:"devdoc"`
	UserDoc *artifacts.UserDoc `json:"userdoc"`
}

type metadataSettings struct {
	CompilationTarget map[string]string `json:"compilationTarget"`
	EOFVersion        *uint8            `json:"eofVersion,omitempty"`
	EVMVersion        string            `json:"evmVersion"`
	Libraries         map[string]string `json:"libraries"`
	Metadata          metadataMetadata  `json:"metadata"`
	Optimizer         metadataOptimizer `json:"optimizer"`
	Remappings        []string          `json:"remappings"`
	ViaIR             bool              `json:"viaIR,omitempty"`
}

type metadataMetadata struct {
	BytecodeHash      string `json:"bytecodeHash"`
	UseLiteralContent bool   `json:"useLiteralContent,omitempty"`
}

type metadataOptimizer struct {
	Enabled bool `json:"enabled"`
	Runs    uint `json:"runs"`
}

type metadataSource struct {
	Content   string `json:"content,omitempty"`
	Keccak256 string `json:"keccak256"`
	License   string `json:"license,omitempty"`
}

// buildMetadata renders the metadata document of a contract as it is when
// compiled through the IR iff viaIR is set.
func (c *Compiler) buildMetadata(ct *contract, viaIR bool) (string, error) {
	abi, _ := ct.abi.Get()
	if abi == nil {
		abi = artifacts.ABI{}
	}

	devDoc, _ := ct.devDoc.Get()
	userDoc, _ := ct.userDoc.Get()

	s := &c.settings
	doc := metadataDoc{
		Compiler: metadataCompiler{
			Version: common.VersionString(s.MetadataFormat == config.MetadataWithPrereleaseVersionTag),
		},
		Language: "Solidity",
		Output: metadataOutput{
			ABI:     abi,
			DevDoc:  devDoc,
			UserDoc: userDoc,
		},
		Settings: metadataSettings{
			CompilationTarget: map[string]string{ct.def.Source: ct.def.Name},
			EVMVersion:        s.EVMVersion.String(),
			Libraries:         make(map[string]string, len(s.Libraries)),
			Metadata: metadataMetadata{
				BytecodeHash:      s.MetadataHash.String(),
				UseLiteralContent: s.MetadataLiteralSources,
			},
			Optimizer: metadataOptimizer{
				Enabled: s.Optimizer.Enabled,
				Runs:    s.Optimizer.Runs,
			},
			Remappings: make([]string, len(s.Remappings)),
			ViaIR:      viaIR,
		},
		Sources: make(map[string]*metadataSource),
		Version: 1,
	}

	if s.EOFVersion != 0 {
		eof := s.EOFVersion
		doc.Settings.EOFVersion = &eof
	}

	for name, addr := range s.Libraries {
		doc.Settings.Libraries[name] = addr.Hex()
	}

	for i, r := range s.Remappings {
		doc.Settings.Remappings[i] = r.String()
	}
	sort.Strings(doc.Settings.Remappings)

	for _, src := range c.importClosure(ct.def.Source) {
		hash := src.KeccakHash()
		ms := &metadataSource{
			Keccak256: hexutil.Encode(hash[:]),
			License:   src.AST.License,
		}

		if s.MetadataLiteralSources {
			ms.Content = src.Content
		}

		doc.Sources[src.Name] = ms
	}

	buff, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}

	return string(buff), nil
}

// importClosure returns a unit along with every unit it imports transitively.
func (c *Compiler) importClosure(name string) []*depm.Source {
	search := depm.SearchGraph([]string{name}, func(name string) []string {
		src, ok := c.sources.Get(name)
		if !ok {
			return nil
		}

		deps := make([]string, len(src.AST.Imports))
		for i, imp := range src.AST.Imports {
			deps[i] = imp.ResolvedName
		}

		return deps
	})

	var srcs []*depm.Source
	for _, name := range search.Order {
		if src, ok := c.sources.Get(name); ok {
			srcs = append(srcs, src)
		}
	}

	return srcs
}

// -----------------------------------------------------------------------------

// cborEncMode encodes the metadata trailer.  Core deterministic encoding sorts
// the map keys so equal metadata always yields equal bytes.
var cborEncMode = func() cbor.EncMode {
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}

	return em
}()

// buildCBORMetadata encodes the hash of the metadata document and the
// compiler version.  The result is appended to the runtime code followed by
// its length.
func (c *Compiler) buildCBORMetadata(ct *contract, viaIR bool) ([]byte, error) {
	s := &c.settings
	if s.MetadataFormat == config.NoMetadata {
		return nil, nil
	}

	fields := make(map[string]interface{})

	if s.MetadataHash != config.MetadataHashNone {
		meta, err := ct.metadata[viaIR].Get()
		if err != nil {
			return nil, err
		}

		switch s.MetadataHash {
		case config.MetadataHashKeccak256:
			hash := common.Keccak256([]byte(meta))
			fields["keccak256"] = hash[:]
		case config.MetadataHashBlake2b:
			hash := common.Blake2b256([]byte(meta))
			fields["blake2b"] = hash[:]
		}
	}

	if s.MetadataFormat == config.MetadataWithPrereleaseVersionTag {
		fields["solc"] = common.VersionString(true)
	} else {
		version, err := releaseBytes(common.CompilerVersion)
		if err != nil {
			return nil, err
		}

		fields["solc"] = version
	}

	return cborEncMode.Marshal(fields)
}

// releaseBytes encodes a `major.minor.patch` version as three bytes.
func releaseBytes(version string) ([]byte, error) {
	parts := strings.Split(version, ".")
	if len(parts) != 3 {
		return nil, fmt.Errorf("malformed compiler version `%s`", version)
	}

	out := make([]byte, 3)
	for i, part := range parts {
		n, err := strconv.ParseUint(part, 10, 8)
		if err != nil {
			return nil, fmt.Errorf("malformed compiler version `%s`: %w", version, err)
		}

		out[i] = byte(n)
	}

	return out, nil
}
