package evm

import (
	"strings"

	"github.com/unparalleled-js/solidity/config"
	"github.com/unparalleled-js/solidity/report"
)

// Compiled is the output of a code generator for a single contract.
type Compiled struct {
	// Creation is the deployment object.  It embeds the runtime object.
	Creation *Object

	// Runtime is the code stored on chain after deployment.
	Runtime *Object

	// Assembly is a human readable listing of the generated assembly.
	Assembly string

	SourceMap        string
	RuntimeSourceMap string
}

// GeneratedSource is a utility routine synthesized by the compiler and listed
// alongside the contract so debuggers can map into it.
type GeneratedSource struct {
	Name     string `json:"name"`
	ID       int    `json:"id"`
	Language string `json:"language"`
	Contents string `json:"contents"`
}

// CodegenInput is everything a code generator needs besides the contract.
type CodegenInput struct {
	Settings *config.Settings

	// Dependencies maps the fully qualified names of contracts whose code is
	// embedded to their creation objects.  They are compiled first.
	Dependencies map[string]*Object

	// Metadata is the encoded metadata appended to the runtime code.  It may be
	// empty.
	Metadata []byte

	// Sources locates spans of each source unit by name.
	Sources map[string]*SourceLocator
}

// Locate converts a span of a source unit into a source location.
func (in *CodegenInput) Locate(source string, span *report.TextSpan) SourceLocation {
	if in == nil || span == nil {
		return NoLocation
	}

	sl, ok := in.Sources[source]
	if !ok {
		return NoLocation
	}

	return sl.Locate(span)
}

// Snippet returns the first line of source text covered by a location.
func (in *CodegenInput) Snippet(loc SourceLocation) string {
	for _, sl := range in.Sources {
		if sl.Index == loc.SourceIndex {
			return snippet(sl.content, loc)
		}
	}

	return ""
}

// -----------------------------------------------------------------------------

// SourceLocator converts line and column spans into byte offsets.
type SourceLocator struct {
	Index int

	content    string
	lineStarts []int
	size       int
}

// NewSourceLocator indexes the line starts of a source text.
func NewSourceLocator(index int, content string) *SourceLocator {
	sl := &SourceLocator{Index: index, content: content, lineStarts: []int{0}, size: len(content)}

	for i := 0; i < len(content); i++ {
		if content[i] == '\n' {
			sl.lineStarts = append(sl.lineStarts, i+1)
		}
	}

	return sl
}

func (sl *SourceLocator) offset(line, col int) int {
	if line >= len(sl.lineStarts) {
		return sl.size
	}

	off := sl.lineStarts[line] + col
	if off > sl.size {
		return sl.size
	}

	return off
}

// Locate converts an inclusive span into a source location.
func (sl *SourceLocator) Locate(span *report.TextSpan) SourceLocation {
	start := sl.offset(span.StartLine, span.StartCol)
	end := sl.offset(span.EndLine, span.EndCol) + 1
	if end > sl.size {
		end = sl.size
	}

	if end < start {
		end = start
	}

	return SourceLocation{Start: start, Length: end - start, SourceIndex: sl.Index}
}

func snippet(content string, loc SourceLocation) string {
	if loc.Start < 0 || loc.Start+loc.Length > len(content) {
		return ""
	}

	text := content[loc.Start : loc.Start+loc.Length]
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[:i] + "..."
	}

	return text
}
