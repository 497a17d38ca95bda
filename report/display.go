package report

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pterm/pterm"
	"github.com/unparalleled-js/solidity/common"
)

var (
	SuccessColorFG = pterm.FgLightGreen
	SuccessStyleBG = pterm.NewStyle(pterm.BgLightGreen, pterm.FgBlack)
	WarnColorFG    = pterm.FgYellow
	WarnStyleBG    = pterm.NewStyle(pterm.BgYellow, pterm.FgBlack)
	ErrorColorFG   = pterm.FgRed
	ErrorStyleBG   = pterm.NewStyle(pterm.BgRed, pterm.FgWhite)
	InfoColorFG    = pterm.FgLightBlue
	InfoStyleBG    = pterm.NewStyle(pterm.BgLightBlue, pterm.FgBlack)
)

// PrintErrorMessage prints a standard Go error to the console.
func PrintErrorMessage(tag string, err error) {
	ErrorStyleBG.Print(tag)
	ErrorColorFG.Println(" " + err.Error())
}

// PrintInfoMessage prints an informational message to the console.
func PrintInfoMessage(tag, msg string) {
	InfoStyleBG.Print(tag)
	InfoColorFG.Println(" " + msg)
}

// -----------------------------------------------------------------------------

// displayDiagnostic prints the banner, message and (if the source text is
// known) the highlighted code of a diagnostic.
func (r *Reporter) displayDiagnostic(d *Diagnostic) {
	fmt.Print("\n-- ")

	kindName := d.Kind.String()
	label := strings.ToUpper(kindName[:1]) + kindName[1:]
	if d.IsError() {
		ErrorStyleBG.Print(label + " Error")
		label += " Error"
	} else {
		WarnStyleBG.Print(label + " Warning")
		label += " Warning"
	}

	fmt.Print(" ")

	where := d.Source
	if where == "" {
		where = d.Contract
	}

	bannerLen := pterm.GetTerminalWidth() / 2
	if bannerLen > 50 {
		bannerLen = 50
	}
	dashCount := bannerLen - len(where) - len(label) - 1
	if dashCount < 1 {
		dashCount = 1
	}

	fmt.Print(strings.Repeat("-", dashCount) + " ")
	InfoColorFG.Println(where)

	fmt.Println(d.Message)
	if len(d.Members) > 0 {
		fmt.Println("involving: " + strings.Join(d.Members, " -> "))
	}

	if d.Span != nil && r.sourceText != nil {
		if text, ok := r.sourceText(d.Source); ok {
			displaySourceText(text, d.Span)
		}
	}
}

// displaySourceText displays the lines covered by a text span with the
// selected columns underlined.
func displaySourceText(text string, span *TextSpan) {
	allLines := strings.Split(text, "\n")
	if span.StartLine >= len(allLines) {
		return
	}

	end := span.EndLine
	if end >= len(allLines) {
		end = len(allLines) - 1
	}

	lines := make([]string, 0, end-span.StartLine+1)
	for _, line := range allLines[span.StartLine : end+1] {
		lines = append(lines, strings.ReplaceAll(line, "\t", "    "))
	}

	maxLineNumLen := len(strconv.Itoa(end + 1))
	lineNumFmtStr := "%-" + strconv.Itoa(maxLineNumLen) + "v | "

	fmt.Println()
	for i, line := range lines {
		InfoColorFG.Print(fmt.Sprintf(lineNumFmtStr, i+span.StartLine+1))
		fmt.Println(line)

		startCol := 0
		if i == 0 {
			startCol = span.StartCol
		}

		endCol := len(line)
		if i == len(lines)-1 && span.EndCol+1 < endCol {
			endCol = span.EndCol + 1
		}

		if endCol <= startCol {
			endCol = startCol + 1
		}

		fmt.Print(strings.Repeat(" ", maxLineNumLen), " | ")
		fmt.Print(strings.Repeat(" ", startCol))
		ErrorColorFG.Println(strings.Repeat("^", endCol-startCol))
	}

	fmt.Println()
}

// -----------------------------------------------------------------------------

// displayCompileHeader displays the compiler information before compilation.
func displayCompileHeader(target string, viaIR bool) {
	fmt.Print("solc ")
	InfoColorFG.Print("v" + common.CompilerVersion)
	fmt.Print(" -- evm: ")
	InfoColorFG.Println(target)

	if viaIR {
		fmt.Println("generating code via IR")
	}
}

const maxPhaseLength = len("Optimizing")

// phaseDisplay is the spinner of a running compilation phase.
type phaseDisplay struct {
	name    string
	spinner *pterm.SpinnerPrinter
	start   time.Time
}

func beginPhase(phase string) *phaseDisplay {
	pd := &phaseDisplay{
		name:    phase,
		spinner: pterm.DefaultSpinner.WithStyle(pterm.NewStyle(InfoColorFG)),
	}

	pd.spinner.SuccessPrinter = &pterm.PrefixPrinter{
		MessageStyle: pterm.NewStyle(pterm.FgDefault),
		Prefix: pterm.Prefix{
			Style: SuccessStyleBG,
			Text:  "Done",
		},
	}

	pd.spinner.FailPrinter = &pterm.PrefixPrinter{
		MessageStyle: pterm.NewStyle(pterm.FgDefault),
		Prefix: pterm.Prefix{
			Style: ErrorStyleBG,
			Text:  "Fail",
		},
	}

	pd.spinner.Start(pd.paddedName() + "...")
	pd.start = time.Now()
	return pd
}

func (pd *phaseDisplay) paddedName() string {
	pad := maxPhaseLength - len(pd.name) + 2
	if pad < 1 {
		pad = 1
	}

	return pd.name + strings.Repeat(" ", pad)
}

func (pd *phaseDisplay) end(success bool) {
	if success {
		pd.spinner.Success(
			pd.paddedName(),
			fmt.Sprintf("(%.3fs)", time.Since(pd.start).Seconds()),
		)
	} else {
		pd.spinner.Fail(pd.paddedName())
	}
}

// displayCompilationFinished displays a compilation finished message.
func displayCompilationFinished(success bool, errorCount, warningCount int) {
	fmt.Print("\n")

	if success {
		SuccessColorFG.Print("All done! ")
	} else {
		ErrorColorFG.Print("Oh no! ")
	}

	fmt.Print("(")

	switch errorCount {
	case 0:
		SuccessColorFG.Print(0)
		fmt.Print(" errors, ")
	case 1:
		ErrorColorFG.Print(1)
		fmt.Print(" error, ")
	default:
		ErrorColorFG.Print(errorCount)
		fmt.Print(" errors, ")
	}

	switch warningCount {
	case 0:
		SuccessColorFG.Print(0)
		fmt.Println(" warnings)")
	case 1:
		WarnColorFG.Print(1)
		fmt.Println(" warning)")
	default:
		WarnColorFG.Print(warningCount)
		fmt.Println(" warnings)")
	}
}
