package depm

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseRemapping(t *testing.T) {
	tests := []struct {
		text string
		want Remapping
		ok   bool
	}{
		{"@oz/=lib/openzeppelin/", Remapping{Prefix: "@oz/", Target: "lib/openzeppelin/"}, true},
		{"a.sol:x/=y/", Remapping{Context: "a.sol", Prefix: "x/", Target: "y/"}, true},
		{"x/=", Remapping{Prefix: "x/"}, true},
		{"nothing", Remapping{}, false},
		{"=y", Remapping{}, false},
	}

	for _, tc := range tests {
		got, err := ParseRemapping(tc.text)
		if (err == nil) != tc.ok {
			t.Errorf("ParseRemapping(%q) err = %v", tc.text, err)
			continue
		}
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Errorf("ParseRemapping(%q) (-want +got):\n%s", tc.text, diff)
		}
	}
}

func TestApplyRemappingLongestMatch(t *testing.T) {
	remappings := []Remapping{
		{Prefix: "lib/", Target: "vendor/"},
		{Prefix: "lib/math/", Target: "math/"},
		{Context: "test/", Prefix: "lib/", Target: "mocks/"},
	}

	tests := []struct {
		path, context, want string
	}{
		{"lib/a.sol", "main.sol", "vendor/a.sol"},
		{"lib/math/m.sol", "main.sol", "math/m.sol"},
		{"lib/math/m.sol", "test/t.sol", "mocks/math/m.sol"},
		{"other/x.sol", "main.sol", "other/x.sol"},
	}

	for _, tc := range tests {
		if got := ApplyRemapping(remappings, tc.path, tc.context); got != tc.want {
			t.Errorf("ApplyRemapping(%s, %s) = %s, want %s", tc.path, tc.context, got, tc.want)
		}
	}
}

func TestApplyRemappingLaterWinsTie(t *testing.T) {
	remappings := []Remapping{
		{Prefix: "x/", Target: "first/"},
		{Prefix: "x/", Target: "second/"},
	}

	if got := ApplyRemapping(remappings, "x/a.sol", ""); got != "second/a.sol" {
		t.Errorf("got %s", got)
	}
}

func TestAbsoluteImportPath(t *testing.T) {
	tests := []struct {
		path, importer, want string
	}{
		{"./b.sol", "dir/a.sol", "dir/b.sol"},
		{"../b.sol", "dir/sub/a.sol", "dir/b.sol"},
		{"./b.sol", "a.sol", "b.sol"},
		{"lib/b.sol", "dir/a.sol", "lib/b.sol"},
	}

	for _, tc := range tests {
		if got := AbsoluteImportPath(tc.path, tc.importer); got != tc.want {
			t.Errorf("AbsoluteImportPath(%s, %s) = %s, want %s", tc.path, tc.importer, got, tc.want)
		}
	}
}

func TestReadCallbackErrors(t *testing.T) {
	var none ReadCallback
	_, err := none.Read("a.sol", "b.sol")
	if !errors.Is(err, ErrNoCallback) {
		t.Errorf("nil callback err = %v", err)
	}

	panicky := ReadCallback(func(ReadKind, string) ([]byte, error) { panic("boom") })
	_, err = panicky.Read("a.sol", "b.sol")

	var re *ReadError
	if !errors.As(err, &re) || re.Importer != "b.sol" {
		t.Errorf("panicking callback err = %v", err)
	}
}

func TestFileReader(t *testing.T) {
	base := t.TempDir()
	include := t.TempDir()

	if err := os.MkdirAll(filepath.Join(base, "contracts"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(base, "contracts", "A.sol"), []byte("contract A {}"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(include, "L.sol"), []byte("library L {}"), 0o644); err != nil {
		t.Fatal(err)
	}

	fr := NewFileReader(base, include)
	read := fr.Callback()

	if got, err := read.Read("contracts/A.sol", ""); err != nil || got != "contract A {}" {
		t.Errorf("Read(A) = %q, %v", got, err)
	}
	if got, err := read.Read("L.sol", ""); err != nil || got != "library L {}" {
		t.Errorf("Read(L) = %q, %v", got, err)
	}
	if _, err := read.Read("missing.sol", ""); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Read(missing) err = %v", err)
	}
}

func TestSourceHashIsStable(t *testing.T) {
	src := NewSource("a.sol", "contract A {}")
	if src.KeccakHash() != src.KeccakHash() {
		t.Fatal("hash changed between calls")
	}
	if src.KeccakHash() == NewSource("b.sol", "contract B {}").KeccakHash() {
		t.Fatal("different content hashed equal")
	}
}
