package cmd

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ComedicChimera/olive"

	"github.com/unparalleled-js/solidity/build"
	"github.com/unparalleled-js/solidity/common"
	"github.com/unparalleled-js/solidity/config"
	"github.com/unparalleled-js/solidity/depm"
	"github.com/unparalleled-js/solidity/report"
)

// execBuildCommand builds a project and writes its artifacts.  It returns
// whether the build succeeded.
func execBuildCommand(result *olive.ArgParseResult, loglevel string) bool {
	relPath, _ := result.PrimaryArg()

	projPath, err := filepath.Abs(relPath)
	if err != nil {
		report.PrintErrorMessage("Path Error", err)
		return false
	}

	selectedProfile := ""
	if profArgVal, ok := result.Arguments["profile"]; ok {
		selectedProfile = profArgVal.(string)
	}

	proj, err := config.LoadProject(projPath, selectedProfile)
	if err != nil {
		report.PrintErrorMessage("Project Load Error", err)
		return false
	}

	if outArgVal, ok := result.Arguments["outpath"]; ok {
		proj.OutputPath = outArgVal.(string)
	}

	if formatArgVal, ok := result.Arguments["format"]; ok && formatArgVal.(string) == "yaml" {
		proj.OutputFormat = config.FormatYAML
	} else if ok {
		proj.OutputFormat = config.FormatJSON
	}

	sources, err := collectSources(proj)
	if err != nil {
		report.PrintErrorMessage("Source Error", err)
		return false
	}

	reader := depm.NewFileReader(proj.Root, proj.IncludePaths...)
	reader.AllowedDirectories = proj.AllowPaths

	c := build.NewCompiler(
		build.WithReadCallback(reader.Callback()),
		build.WithReporter(report.NewReporter(report.ParseLogLevel(loglevel))),
	)

	if err := c.SetSettings(proj.Settings); err != nil {
		report.PrintErrorMessage("Settings Error", err)
		return false
	}

	if err := c.SetSources(sources); err != nil {
		report.PrintErrorMessage("Source Error", err)
		return false
	}

	stopAfter := build.StateCompilationSuccessful
	if stopArgVal, ok := result.Arguments["stop-after"]; ok {
		stopAfter, _ = build.ParseState(stopArgVal.(string))
	}

	// the diagnostics have been displayed by the reporter
	if c.Compile(stopAfter) != nil {
		return false
	}

	// nothing to write without bytecode
	if stopAfter < build.StateCompilationSuccessful {
		return true
	}

	outDir := proj.OutputPath
	if !filepath.IsAbs(outDir) {
		outDir = filepath.Join(proj.Root, outDir)
	}

	if err := writeArtifacts(c, outDir, proj.OutputFormat); err != nil {
		report.PrintErrorMessage("Output Error", err)
		return false
	}

	return true
}

// collectSources loads every source file in the source directories of a
// project.  Unit names are slash separated paths relative to the project
// root.
func collectSources(proj *config.Project) (map[string]string, error) {
	sources := make(map[string]string)

	for _, dir := range proj.SourceDirs {
		err := filepath.WalkDir(filepath.Join(proj.Root, dir), func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			if d.IsDir() || filepath.Ext(path) != common.SrcFileExtension {
				return nil
			}

			rel, err := filepath.Rel(proj.Root, path)
			if err != nil {
				return err
			}

			buff, err := os.ReadFile(path)
			if err != nil {
				return err
			}

			sources[filepath.ToSlash(rel)] = string(buff)
			return nil
		})

		if err != nil {
			return nil, fmt.Errorf("failed to read source directory `%s`: %w", dir, err)
		}
	}

	if len(sources) == 0 {
		return nil, fmt.Errorf("project `%s` contains no source files", proj.Name)
	}

	return sources, nil
}
