package evm

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/unparalleled-js/solidity/report"
)

func TestAssembleTags(t *testing.T) {
	a := NewAssembly("test")
	tag := a.NewTag()
	a.PushTag(tag)
	a.Jump(JUMP, 0)
	a.AppendTag(tag)
	a.Op(STOP)

	obj, srcmap, err := a.Assemble()
	if err != nil {
		t.Fatal(err)
	}

	want := []byte{0x61, 0x00, 0x04, 0x56, 0x5b, 0x00}
	if diff := cmp.Diff(want, obj.Bytecode); diff != "" {
		t.Errorf("bytecode mismatch (-want +got):\n%s", diff)
	}

	if srcmap != "-1:-1:-1:-;;;" {
		t.Errorf("source map = %q", srcmap)
	}
}

func TestAssembleUndefinedTag(t *testing.T) {
	a := NewAssembly("test")
	a.PushTag(7)

	if _, _, err := a.Assemble(); err == nil {
		t.Error("expected an error for an undefined tag")
	}
}

func TestAssembleSubsAndLinkReferences(t *testing.T) {
	sub := libraryCaller()

	a := NewAssembly("test")
	idx := a.AddSub(sub)
	a.PushSubSize(idx)
	a.PushSubOffset(idx)
	a.Op(STOP)
	a.Trailer = []byte{0xca, 0xfe}

	obj, _, err := a.Assemble()
	if err != nil {
		t.Fatal(err)
	}

	size := byte(len(sub.Bytecode))
	wantHead := []byte{0x61, 0x00, size, 0x61, 0x00, 0x07, 0x00}
	if diff := cmp.Diff(wantHead, obj.Bytecode[:7]); diff != "" {
		t.Errorf("code mismatch (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff(map[int]string{8: "X.sol:X"}, obj.LinkReferences); diff != "" {
		t.Errorf("link references mismatch (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff([]byte{0xca, 0xfe}, obj.Bytecode[len(obj.Bytecode)-2:]); diff != "" {
		t.Errorf("trailer mismatch (-want +got):\n%s", diff)
	}
}

func TestAssemblePushLibrary(t *testing.T) {
	a := NewAssembly("test")
	a.Op(STOP)
	a.PushLibrary("L.sol:L")

	obj, _, err := a.Assemble()
	if err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff(map[int]string{2: "L.sol:L"}, obj.LinkReferences); diff != "" {
		t.Errorf("link references mismatch (-want +got):\n%s", diff)
	}

	if len(obj.Bytecode) != 22 {
		t.Errorf("len(code) = %d", len(obj.Bytecode))
	}
}

func TestCompressSourceMap(t *testing.T) {
	entries := []SourceMapEntry{
		{Start: 0, Length: 10, SourceIndex: 0, Jump: '-'},
		{Start: 0, Length: 10, SourceIndex: 0, Jump: '-'},
		{Start: 5, Length: 2, SourceIndex: 0, Jump: 'i'},
	}

	text := CompressSourceMap(entries)
	if text != "0:10:0:-;;5:2::i" {
		t.Fatalf("compressed = %q", text)
	}

	back, err := DecompressSourceMap(text)
	if err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff(entries, back); diff != "" {
		t.Errorf("decompressed mismatch (-want +got):\n%s", diff)
	}
}

func TestSourceLocator(t *testing.T) {
	sl := NewSourceLocator(2, "ab\ncdef\n")

	loc := sl.Locate(&report.TextSpan{StartLine: 1, StartCol: 1, EndLine: 1, EndCol: 2})
	if diff := cmp.Diff(SourceLocation{Start: 4, Length: 2, SourceIndex: 2}, loc); diff != "" {
		t.Errorf("location mismatch (-want +got):\n%s", diff)
	}
}
