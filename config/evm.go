package config

import "fmt"

// EVMVersion is a target hard fork of the virtual machine.
type EVMVersion int

// Enumeration of supported EVM versions in release order.
const (
	EVMHomestead EVMVersion = iota
	EVMTangerineWhistle
	EVMSpuriousDragon
	EVMByzantium
	EVMConstantinople
	EVMPetersburg
	EVMIstanbul
	EVMBerlin
	EVMLondon
	EVMParis
	EVMShanghai
	EVMCancun
	EVMPrague
	EVMOsaka
)

// DefaultEVMVersion is used when no version is configured.
const DefaultEVMVersion = EVMCancun

// evmNames maps configuration names to EVM versions
var evmNames = map[string]EVMVersion{
	"homestead":        EVMHomestead,
	"tangerineWhistle": EVMTangerineWhistle,
	"spuriousDragon":   EVMSpuriousDragon,
	"byzantium":        EVMByzantium,
	"constantinople":   EVMConstantinople,
	"petersburg":       EVMPetersburg,
	"istanbul":         EVMIstanbul,
	"berlin":           EVMBerlin,
	"london":           EVMLondon,
	"paris":            EVMParis,
	"shanghai":         EVMShanghai,
	"cancun":           EVMCancun,
	"prague":           EVMPrague,
	"osaka":            EVMOsaka,
}

// ParseEVMVersion converts a configuration name into an EVM version.
func ParseEVMVersion(name string) (EVMVersion, error) {
	if v, ok := evmNames[name]; ok {
		return v, nil
	}

	return 0, fmt.Errorf("unknown EVM version `%s`", name)
}

func (v EVMVersion) String() string {
	for name, ev := range evmNames {
		if ev == v {
			return name
		}
	}

	return "unknown"
}

// HasPush0 returns whether the PUSH0 opcode is available.
func (v EVMVersion) HasPush0() bool {
	return v >= EVMShanghai
}

// SupportsTransientStorage returns whether TLOAD and TSTORE are available.
func (v EVMVersion) SupportsTransientStorage() bool {
	return v >= EVMCancun
}

// SupportsEOF returns whether the object format can be targeted.
func (v EVMVersion) SupportsEOF() bool {
	return v >= EVMOsaka
}
