package common

const (
	SrcFileExtension = ".sol"
	ProjectFileName  = "solc.toml"
	CompilerVersion  = "0.8.29"

	// CompilerPrerelease is appended to the version tag in metadata when the
	// prerelease metadata format is selected
	CompilerPrerelease = "develop"
)

// VersionString returns the full version tag of the compiler
func VersionString(prerelease bool) string {
	if prerelease {
		return CompilerVersion + "-" + CompilerPrerelease
	}

	return CompilerVersion
}
