package cmd

import (
	"os"
	"path/filepath"

	"github.com/ComedicChimera/olive"
	"github.com/mattn/go-isatty"
	"github.com/pterm/pterm"

	"github.com/unparalleled-js/solidity/common"
	"github.com/unparalleled-js/solidity/config"
	"github.com/unparalleled-js/solidity/report"
)

// Execute runs the `solc` application.
func Execute() {
	// colors only make sense on a terminal
	if fd := os.Stdout.Fd(); !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd) {
		pterm.DisableColor()
	}

	cli := olive.NewCLI("solc", "solc compiles contract projects", true)
	logLvlArg := cli.AddSelectorArg("loglevel", "ll", "the compiler log level", false, []string{"silent", "error", "warn", "verbose"})
	logLvlArg.SetDefaultValue("verbose")

	buildCmd := cli.AddSubcommand("build", "compile a project", true)
	buildCmd.AddPrimaryArg("project-path", "the path to the project directory", true)
	buildCmd.AddStringArg("profile", "p", "the name of the profile to build", false)
	buildCmd.AddStringArg("outpath", "o", "the directory artifacts are written to", false)
	buildCmd.AddSelectorArg("format", "f", "the artifact format", false, []string{"json", "yaml"})
	buildCmd.AddSelectorArg("stop-after", "sa", "the last stage to run", false, []string{"parsed", "analysis-successful"})

	initCmd := cli.AddSubcommand("init", "create a project file", true)
	initCmd.AddPrimaryArg("project-path", "the path to the project directory", true)

	cli.AddSubcommand("version", "print the compiler version", false)

	result, err := olive.ParseArgs(cli, os.Args)
	if err != nil {
		report.PrintErrorMessage("CLI Usage Error", err)
		os.Exit(1)
	}

	subcmdName, subResult, _ := result.Subcommand()
	switch subcmdName {
	case "build":
		if !execBuildCommand(subResult, result.Arguments["loglevel"].(string)) {
			os.Exit(1)
		}
	case "init":
		execInitCommand(subResult)
	case "version":
		report.PrintInfoMessage("Compiler Version", common.VersionString(false))
	}
}

// execInitCommand creates a project file in the given directory.  The project
// is named after the directory.
func execInitCommand(result *olive.ArgParseResult) {
	relPath, _ := result.PrimaryArg()

	path, err := filepath.Abs(relPath)
	if err != nil {
		report.PrintErrorMessage("Path Error", err)
		return
	}

	if err := config.InitProject(filepath.Base(path), path); err != nil {
		report.PrintErrorMessage("Project Init Error", err)
		return
	}

	report.PrintInfoMessage("Project Created", filepath.Join(path, common.ProjectFileName))
}
