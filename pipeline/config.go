package pipeline

import "strings"

// Config describes which products of the pipeline are wanted for a contract.
// The zero value requests nothing.
type Config struct {
	// IRCodegen requests the unoptimized IR.
	IRCodegen bool

	// IROptimization requests the optimized IR.  It implies IR generation.
	IROptimization bool

	// Bytecode requests the deployment and runtime objects.
	Bytecode bool
}

// Full requests every product.
var Full = Config{IRCodegen: true, IROptimization: true, Bytecode: true}

// Default is the configuration of a contract that no selection rule matches.
var Default = Config{Bytecode: true}

// Join combines two configurations facet by facet.  It is commutative,
// associative and idempotent with the zero Config as identity.
func (c Config) Join(other Config) Config {
	return Config{
		IRCodegen:      c.IRCodegen || other.IRCodegen,
		IROptimization: c.IROptimization || other.IROptimization,
		Bytecode:       c.Bytecode || other.Bytecode,
	}
}

// Empty returns whether nothing is requested.
func (c Config) Empty() bool {
	return !c.IRCodegen && !c.IROptimization && !c.Bytecode
}

// NeedIR returns whether IR has to be generated to satisfy the request when
// bytecode is produced via IR iff viaIR is set.
func (c Config) NeedIR(viaIR bool) bool {
	return c.IRCodegen || c.IROptimization || (c.Bytecode && viaIR)
}

// NeedIROptimization returns whether the IR has to be optimized.
func (c Config) NeedIROptimization(viaIR bool) bool {
	return c.IROptimization || (c.Bytecode && viaIR)
}

// NeedIRCodegenOnly returns whether only unoptimized IR is needed, ie. neither
// IR-routed bytecode nor optimized IR is requested.
func (c Config) NeedIRCodegenOnly(viaIR bool) bool {
	return !(c.Bytecode && viaIR) && !c.IROptimization
}

func (c Config) String() string {
	var facets []string
	if c.IRCodegen {
		facets = append(facets, "ir")
	}
	if c.IROptimization {
		facets = append(facets, "irOptimized")
	}
	if c.Bytecode {
		facets = append(facets, "bytecode")
	}

	return "{" + strings.Join(facets, ",") + "}"
}

// ParseOutputs builds a configuration from a list of output selector names as
// they appear in configuration files: `ir`, `irOptimized`, `bytecode`, `*`.
// Unknown names are reported as the second return value.
func ParseOutputs(names []string) (Config, []string) {
	var c Config
	var unknown []string

	for _, name := range names {
		switch name {
		case "ir":
			c.IRCodegen = true
		case "irOptimized":
			c.IROptimization = true
		case "bytecode", "evm.bytecode", "evm.deployedBytecode":
			c.Bytecode = true
		case "*":
			c = c.Join(Full)
		default:
			unknown = append(unknown, name)
		}
	}

	return c, unknown
}
