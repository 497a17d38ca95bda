package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml"
	"github.com/unparalleled-js/solidity/common"
	"github.com/unparalleled-js/solidity/depm"
	"github.com/unparalleled-js/solidity/pipeline"
)

// tomlProjectFile represents the project file as it is encoded in TOML
type tomlProjectFile struct {
	Project *tomlProject `toml:"project"`
}

// tomlProject represents a project as it is encoded in TOML
type tomlProject struct {
	Name          string            `toml:"name"`
	SourceDirs    []string          `toml:"sources"`
	IncludePaths  []string          `toml:"include-paths,omitempty"`
	AllowPaths    []string          `toml:"allow-paths,omitempty"`
	Remappings    []string          `toml:"remappings,omitempty"`
	Libraries     map[string]string `toml:"libraries,omitempty"`
	Selection     []*tomlSelect     `toml:"select,omitempty"`
	BuildProfiles []*tomlProfile    `toml:"profiles"`
	Version       string            `toml:"compiler-version"`
}

// tomlSelect represents a selection rule as it is encoded in TOML
type tomlSelect struct {
	Source   string   `toml:"source"`
	Contract string   `toml:"contract"`
	Outputs  []string `toml:"outputs"`
}

// tomlProfile represents a profile as it is encoded in TOML
type tomlProfile struct {
	Name           string   `toml:"name"`
	OutputPath     string   `toml:"output"`
	Format         string   `toml:"format"`
	EVMVersion     string   `toml:"evm-version"`
	EOFVersion     int      `toml:"eof-version,omitempty"`
	ViaIR          bool     `toml:"via-ir"`
	Optimize       bool     `toml:"optimize"`
	OptimizerRuns  int      `toml:"optimizer-runs,omitempty"`
	MetadataHash   string   `toml:"metadata-hash,omitempty"`
	MetadataFormat string   `toml:"metadata-format,omitempty"`
	LiteralSources bool     `toml:"literal-sources"`
	RevertStrings  string   `toml:"revert-strings,omitempty"`
	DebugInfo      []string `toml:"debug-info,omitempty"`
	Jobs           int      `toml:"jobs,omitempty"`
	DefaultProf    bool     `toml:"default"` // in absence of `--profile`, choose this profile
}

// Project is a loaded project: where its sources are and how to build them.
type Project struct {
	// Name is the name of the project
	Name string

	// Root is the directory enclosing the project file
	Root string

	// SourceDirs are the directories (relative to Root) whose source files
	// are compiled.  Source unit names are relative to Root.
	SourceDirs []string

	// IncludePaths are additional directories imports are looked up in
	IncludePaths []string

	// AllowPaths are additional directories the file reader may access
	AllowPaths []string

	// Profile is the name of the selected build profile
	Profile string

	// OutputPath is the directory artifacts are written to
	OutputPath string

	// OutputFormat is one of the enumerated formats (prefixed `Format`)
	OutputFormat int

	// Settings are the compiler settings of the selected profile
	Settings Settings
}

// Available Output Formats
const (
	FormatJSON = iota
	FormatYAML
)

// formatNames maps TOML format name strings to enumerated format values
var formatNames = map[string]int{
	"json": FormatJSON,
	"yaml": FormatYAML,
}

// LoadProject loads and validates a project and its build profile.  `path` is
// the path to the project directory and `selectedProfile` may be empty in
// which case the default profile is used.
func LoadProject(path, selectedProfile string) (*Project, error) {
	buff, err := os.ReadFile(filepath.Join(path, common.ProjectFileName))
	if err != nil {
		return nil, err
	}

	tpf := &tomlProjectFile{}
	if err := toml.Unmarshal(buff, tpf); err != nil {
		return nil, err
	}

	if tpf.Project == nil {
		return nil, errors.New("project file is missing the [project] table")
	}

	proj := &Project{Root: path}
	if err := validateProject(proj, tpf.Project); err != nil {
		return nil, err
	}

	prof, err := selectProfile(tpf.Project, selectedProfile)
	if err != nil {
		return nil, err
	}

	if err := convertProfile(proj, prof); err != nil {
		return nil, fmt.Errorf("profile `%s`: %s", prof.Name, err.Error())
	}

	if err := applyProjectSettings(proj, tpf.Project); err != nil {
		return nil, err
	}

	proj.Name = tpf.Project.Name
	proj.SourceDirs = tpf.Project.SourceDirs
	proj.IncludePaths = tpf.Project.IncludePaths
	proj.AllowPaths = tpf.Project.AllowPaths

	if err := proj.Settings.Validate(); err != nil {
		return nil, err
	}

	return proj, nil
}

// validateProject checks that the top level project contents are valid
func validateProject(proj *Project, tp *tomlProject) error {
	if tp.Name == "" {
		return fmt.Errorf("missing project name for project at %s", proj.Root)
	}

	if len(tp.SourceDirs) == 0 {
		return fmt.Errorf("project `%s` must list at least one source directory", tp.Name)
	}

	if tp.Version != "" && tp.Version != common.CompilerVersion {
		return fmt.Errorf("project `%s` requires compiler v%s (running v%s)", tp.Name, tp.Version, common.CompilerVersion)
	}

	return nil
}

// selectProfile picks the profile named `selectedProfile` or the default
// profile if no name is given
func selectProfile(tp *tomlProject, selectedProfile string) (*tomlProfile, error) {
	if len(tp.BuildProfiles) == 0 {
		return nil, fmt.Errorf("project `%s` must provide at least one build profile", tp.Name)
	}

	for _, prof := range tp.BuildProfiles {
		if selectedProfile != "" && prof.Name == selectedProfile {
			return prof, nil
		} else if selectedProfile == "" && prof.DefaultProf {
			return prof, nil
		}
	}

	if selectedProfile != "" {
		return nil, fmt.Errorf("project `%s` has no profile `%s`", tp.Name, selectedProfile)
	}

	return nil, fmt.Errorf("project `%s` does not specify a default profile; `--profile` argument is required", tp.Name)
}

// convertProfile converts a TOML build profile into project settings
func convertProfile(proj *Project, tprof *tomlProfile) error {
	if tprof.Name == "" {
		return errors.New("profile must specify a name")
	}

	if tprof.OutputPath == "" {
		return errors.New("profile must specify an output path")
	}

	proj.Profile = tprof.Name
	proj.OutputPath = tprof.OutputPath
	proj.Settings = DefaultSettings()
	s := &proj.Settings

	if tprof.Format == "" {
		proj.OutputFormat = FormatJSON
	} else if format, ok := formatNames[tprof.Format]; ok {
		proj.OutputFormat = format
	} else {
		return fmt.Errorf("%s is not a supported output format", tprof.Format)
	}

	if tprof.EVMVersion != "" {
		evm, err := ParseEVMVersion(tprof.EVMVersion)
		if err != nil {
			return err
		}

		s.EVMVersion = evm
	}

	if tprof.EOFVersion < 0 || tprof.EOFVersion > 255 {
		return fmt.Errorf("invalid EOF version %d", tprof.EOFVersion)
	}
	s.EOFVersion = uint8(tprof.EOFVersion)

	s.ViaIR = tprof.ViaIR
	s.Optimizer.Enabled = tprof.Optimize
	if tprof.OptimizerRuns > 0 {
		s.Optimizer.Runs = uint(tprof.OptimizerRuns)
	}

	if tprof.MetadataHash != "" {
		mh, ok := metadataHashNames[tprof.MetadataHash]
		if !ok {
			return fmt.Errorf("%s is not a supported metadata hash", tprof.MetadataHash)
		}

		s.MetadataHash = mh
	}

	if tprof.MetadataFormat != "" {
		mf, ok := metadataFormatNames[tprof.MetadataFormat]
		if !ok {
			return fmt.Errorf("%s is not a supported metadata format", tprof.MetadataFormat)
		}

		s.MetadataFormat = mf
	}

	if tprof.RevertStrings != "" {
		rs, ok := revertStringNames[tprof.RevertStrings]
		if !ok {
			return fmt.Errorf("%s is not a supported revert string mode", tprof.RevertStrings)
		}

		s.RevertStrings = rs
	}

	if len(tprof.DebugInfo) > 0 {
		dis, err := ParseDebugInfo(tprof.DebugInfo)
		if err != nil {
			return err
		}

		s.DebugInfo = dis
	}

	s.MetadataLiteralSources = tprof.LiteralSources
	if tprof.Jobs > 0 {
		s.Jobs = tprof.Jobs
	}

	return nil
}

// applyProjectSettings moves the profile independent settings over
func applyProjectSettings(proj *Project, tp *tomlProject) error {
	for _, text := range tp.Remappings {
		r, err := depm.ParseRemapping(text)
		if err != nil {
			return err
		}

		proj.Settings.Remappings = append(proj.Settings.Remappings, r)
	}

	libs, err := ParseLibraries(tp.Libraries)
	if err != nil {
		return err
	}
	proj.Settings.Libraries = libs

	for _, sel := range tp.Selection {
		cfg, unknown := pipeline.ParseOutputs(sel.Outputs)
		if len(unknown) > 0 {
			return fmt.Errorf("unknown outputs %v selected for `%s:%s`", unknown, sel.Source, sel.Contract)
		}

		proj.Settings.Selection = proj.Settings.Selection.Add(sel.Source, sel.Contract, cfg)
	}

	return nil
}

// -----------------------------------------------------------------------------

// InitProject creates a new project with the given name at the given path
func InitProject(name, path string) error {
	projFilePath := filepath.Join(path, common.ProjectFileName)

	_, err := os.Stat(projFilePath)
	if err == nil {
		return errors.New("project file already exists")
	}

	if !os.IsNotExist(err) {
		return fmt.Errorf("project file error: %s", err.Error())
	}

	if name == "" {
		return errors.New("project name must not be empty")
	}

	proj := &tomlProject{
		Name:       name,
		SourceDirs: []string{"contracts"},
		Version:    common.CompilerVersion,
		BuildProfiles: []*tomlProfile{
			newInitProfile(true),
			newInitProfile(false),
		},
	}

	f, err := os.Create(projFilePath)
	if err != nil {
		return fmt.Errorf("error creating project file: %s", err.Error())
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(&tomlProjectFile{Project: proj}); err != nil {
		return fmt.Errorf("error encoding TOML %s", err.Error())
	}

	return nil
}

// newInitProfile creates a new initial profile for a project
func newInitProfile(debug bool) *tomlProfile {
	prof := &tomlProfile{
		Format:     "json",
		EVMVersion: DefaultEVMVersion.String(),
		DebugInfo:  []string{"location"},
	}

	if debug {
		prof.Name = "debug"
		prof.OutputPath = "build/debug"
		prof.RevertStrings = "debug"
		prof.DefaultProf = true
	} else {
		prof.Name = "release"
		prof.OutputPath = "build/release"
		prof.Optimize = true
		prof.OptimizerRuns = 200
		prof.ViaIR = true
	}

	return prof
}
