package depm

import (
	"fmt"
	"path"
	"strings"
)

// Remapping rewrites import paths starting with Prefix to start with Target
// instead.  If Context is non-empty the remapping only applies to imports from
// units whose name starts with it.
type Remapping struct {
	Context string
	Prefix  string
	Target  string
}

func (r Remapping) String() string {
	if r.Context == "" {
		return r.Prefix + "=" + r.Target
	}

	return r.Context + ":" + r.Prefix + "=" + r.Target
}

// ParseRemapping parses a remapping of the form `[context:]prefix=target`.
func ParseRemapping(text string) (Remapping, error) {
	eq := strings.IndexByte(text, '=')
	if eq < 0 {
		return Remapping{}, fmt.Errorf("invalid remapping `%s`: missing `=`", text)
	}

	var r Remapping
	lhs := text[:eq]
	r.Target = text[eq+1:]

	if colon := strings.IndexByte(lhs, ':'); colon >= 0 {
		r.Context, r.Prefix = lhs[:colon], lhs[colon+1:]
	} else {
		r.Prefix = lhs
	}

	if r.Prefix == "" {
		return Remapping{}, fmt.Errorf("invalid remapping `%s`: empty prefix", text)
	}

	return r, nil
}

// ApplyRemapping rewrites an import path requested from the unit named
// `context`.  The remapping with the longest matching context wins, then the
// one with the longest matching prefix; among equally long matches the last
// one wins.
func ApplyRemapping(remappings []Remapping, importPath, context string) string {
	bestContext, bestPrefix := -1, -1
	best := -1

	for i, r := range remappings {
		if !strings.HasPrefix(context, r.Context) || !strings.HasPrefix(importPath, r.Prefix) {
			continue
		}

		if len(r.Context) < bestContext {
			continue
		}
		if len(r.Context) == bestContext && len(r.Prefix) < bestPrefix {
			continue
		}

		bestContext, bestPrefix = len(r.Context), len(r.Prefix)
		best = i
	}

	if best < 0 {
		return importPath
	}

	r := remappings[best]
	return r.Target + importPath[len(r.Prefix):]
}

// AbsoluteImportPath resolves `./` and `../` imports relative to the directory
// of the importing unit.  All other paths are returned unchanged.
func AbsoluteImportPath(importPath, importer string) string {
	if !strings.HasPrefix(importPath, "./") && !strings.HasPrefix(importPath, "../") {
		return importPath
	}

	dir := path.Dir(importer)
	if dir == "." {
		dir = ""
	}

	resolved := path.Clean(path.Join(dir, importPath))
	return strings.TrimPrefix(resolved, "./")
}

// ResolveImport applies relative path resolution and then remapping.
func ResolveImport(remappings []Remapping, importPath, importer string) string {
	return ApplyRemapping(remappings, AbsoluteImportPath(importPath, importer), importer)
}
