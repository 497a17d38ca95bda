package depm

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ReadKind is the kind of content requested from a read callback.
type ReadKind string

// Enumeration of read kinds.
const (
	ReadSource ReadKind = "source"
)

// ReadCallback loads the content of a source unit that is imported but was not
// supplied.  It returns an error if the unit cannot be found.
type ReadCallback func(kind ReadKind, name string) ([]byte, error)

// ErrNoCallback is returned when a unit is missing and no callback was given.
var ErrNoCallback = errors.New("no read callback provided")

// ReadError is a failure to load an imported unit.
type ReadError struct {
	// Name is the unit that was requested.
	Name string

	// Importer is the unit whose import caused the request.
	Importer string

	Err error
}

func (re *ReadError) Error() string {
	return fmt.Sprintf("source `%s` not found: %s", re.Name, re.Err)
}

func (re *ReadError) Unwrap() error {
	return re.Err
}

// Read invokes the callback and converts both errors and panics into read
// errors.
func (cb ReadCallback) Read(name, importer string) (content string, err error) {
	if cb == nil {
		return "", &ReadError{Name: name, Importer: importer, Err: ErrNoCallback}
	}

	defer func() {
		if x := recover(); x != nil {
			err = &ReadError{Name: name, Importer: importer, Err: fmt.Errorf("read callback panicked: %v", x)}
		}
	}()

	buff, cbErr := cb(ReadSource, name)
	if cbErr != nil {
		return "", &ReadError{Name: name, Importer: importer, Err: cbErr}
	}

	return string(buff), nil
}

// -----------------------------------------------------------------------------

// FileReader serves source units from the file system.  Unit names are
// interpreted relative to the base path and then to each include path.
type FileReader struct {
	BasePath     string
	IncludePaths []string

	// AllowedDirectories restricts which directories may be read from.  The
	// base path and the include paths are always allowed.
	AllowedDirectories []string
}

// NewFileReader creates a file reader rooted at basePath.
func NewFileReader(basePath string, includePaths ...string) *FileReader {
	return &FileReader{
		BasePath:     basePath,
		IncludePaths: includePaths,
	}
}

// ReadFile implements ReadCallback.
func (fr *FileReader) ReadFile(kind ReadKind, name string) ([]byte, error) {
	if kind != ReadSource {
		return nil, fmt.Errorf("unsupported read kind `%s`", kind)
	}

	roots := append([]string{fr.BasePath}, fr.IncludePaths...)

	var found []string
	for _, root := range roots {
		candidate := filepath.Join(root, filepath.FromSlash(name))
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			found = append(found, candidate)
		}
	}

	switch len(found) {
	case 0:
		return nil, os.ErrNotExist
	case 1:
	default:
		return nil, fmt.Errorf("ambiguous source unit name: found in %s", strings.Join(found, ", "))
	}

	if !fr.isAllowed(found[0], roots) {
		return nil, fmt.Errorf("%s is outside of the allowed directories", found[0])
	}

	return os.ReadFile(found[0])
}

func (fr *FileReader) isAllowed(path string, roots []string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}

	for _, dir := range append(roots, fr.AllowedDirectories...) {
		absDir, err := filepath.Abs(dir)
		if err != nil {
			continue
		}

		if rel, err := filepath.Rel(absDir, abs); err == nil && !strings.HasPrefix(rel, "..") {
			return true
		}
	}

	return false
}

// Callback returns the reader as a read callback.
func (fr *FileReader) Callback() ReadCallback {
	return fr.ReadFile
}
