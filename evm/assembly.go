package evm

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// ItemKind is the kind of an assembly item.
type ItemKind int

// Enumeration of assembly item kinds.
const (
	ItemOperation   ItemKind = iota // a plain instruction
	ItemPush                        // push an immediate value
	ItemTag                         // a jump destination
	ItemPushTag                     // push the position of a tag
	ItemPushLibrary                 // push the address of a library
	ItemPushSubSize                 // push the size of a sub assembly
	ItemPushSubOffset               // push the offset of a sub assembly
)

// SourceLocation is a byte range in a source unit.  A SourceIndex of -1 means
// the location is unknown.
type SourceLocation struct {
	Start       int
	Length      int
	SourceIndex int
}

// NoLocation is used for compiler generated code.
var NoLocation = SourceLocation{Start: -1, Length: -1, SourceIndex: -1}

// Item is a single element of an assembly.
type Item struct {
	Kind ItemKind
	Op   OpCode

	// Data is the immediate value of a push.
	Data []byte

	// Tag is the tag defined or referenced.
	Tag int

	// Library is the fully qualified library name of ItemPushLibrary.
	Library string

	// Sub is the index of the sub assembly referenced.
	Sub int

	// Jump is `i` or `o` for jumps into and out of functions.
	Jump byte

	Location SourceLocation
}

// Assembly is a list of items that can be turned into bytecode.  Sub
// assemblies are placed after the code in the order they were added.
type Assembly struct {
	Name  string
	Items []Item
	Subs  []*Object

	// Trailer is appended after the subs: eg. the encoded metadata.
	Trailer []byte

	// Annotate renders the comment shown in listings whenever the source
	// location changes.  Nothing is shown if it is nil.
	Annotate func(loc SourceLocation) string

	listings map[int]*Assembly

	nextTag  int
	location SourceLocation
}

// NewAssembly creates a new, empty assembly.
func NewAssembly(name string) *Assembly {
	return &Assembly{Name: name, location: NoLocation}
}

// SetLocation sets the source location attached to subsequently added items.
func (a *Assembly) SetLocation(loc SourceLocation) {
	a.location = loc
}

// Op appends an instruction.
func (a *Assembly) Op(ops ...OpCode) {
	for _, op := range ops {
		a.Items = append(a.Items, Item{Kind: ItemOperation, Op: op, Location: a.location})
	}
}

// Push appends the smallest push of an immediate value.
func (a *Assembly) Push(data []byte) {
	// strip leading zeros
	for len(data) > 1 && data[0] == 0 {
		data = data[1:]
	}

	a.Items = append(a.Items, Item{Kind: ItemPush, Data: data, Location: a.location})
}

// PushUint appends a push of a small integer.
func (a *Assembly) PushUint(v uint64) {
	buff := make([]byte, 8)
	binary.BigEndian.PutUint64(buff, v)
	a.Push(buff)
}

// NewTag allocates a new tag.
func (a *Assembly) NewTag() int {
	a.nextTag++
	return a.nextTag
}

// AppendTag places a tag at the current position.
func (a *Assembly) AppendTag(tag int) {
	a.Items = append(a.Items, Item{Kind: ItemTag, Tag: tag, Location: a.location})
}

// PushTag appends a push of the position of a tag.
func (a *Assembly) PushTag(tag int) {
	a.Items = append(a.Items, Item{Kind: ItemPushTag, Tag: tag, Location: a.location})
}

// Jump appends a jump with the given jump type.
func (a *Assembly) Jump(op OpCode, jumpType byte) {
	a.Items = append(a.Items, Item{Kind: ItemOperation, Op: op, Jump: jumpType, Location: a.location})
}

// PushLibrary appends a push of a library address to be linked later.
func (a *Assembly) PushLibrary(fullyQualified string) {
	a.Items = append(a.Items, Item{Kind: ItemPushLibrary, Library: fullyQualified, Location: a.location})
}

// AddSub adds a sub object and returns its index.
func (a *Assembly) AddSub(sub *Object) int {
	a.Subs = append(a.Subs, sub)
	return len(a.Subs) - 1
}

// AddSubAssembly adds an assembled sub assembly and keeps its listing.
func (a *Assembly) AddSubAssembly(sub *Assembly, obj *Object) int {
	idx := a.AddSub(obj)

	if a.listings == nil {
		a.listings = make(map[int]*Assembly)
	}
	a.listings[idx] = sub

	return idx
}

// PushSubSize appends a push of the size of a sub object.
func (a *Assembly) PushSubSize(sub int) {
	a.Items = append(a.Items, Item{Kind: ItemPushSubSize, Sub: sub, Location: a.location})
}

// PushSubOffset appends a push of the offset of a sub object.
func (a *Assembly) PushSubOffset(sub int) {
	a.Items = append(a.Items, Item{Kind: ItemPushSubOffset, Sub: sub, Location: a.location})
}

// -----------------------------------------------------------------------------

// size returns the number of bytes an item assembles to.  Tags, sizes and
// offsets always use two immediate bytes so sizes are known up front.
func (it *Item) size() int {
	switch it.Kind {
	case ItemOperation:
		return 1
	case ItemPush:
		return 1 + len(it.Data)
	case ItemTag:
		return 1
	case ItemPushTag, ItemPushSubSize, ItemPushSubOffset:
		return 3
	case ItemPushLibrary:
		return 1 + common.AddressLength
	}

	return 0
}

// Assemble converts the assembly into an object and its compressed source
// map.
func (a *Assembly) Assemble() (*Object, string, error) {
	tagPos := make(map[int]int)

	codeSize := 0
	for i := range a.Items {
		if a.Items[i].Kind == ItemTag {
			tagPos[a.Items[i].Tag] = codeSize
		}

		codeSize += a.Items[i].size()
	}

	subOffsets := make([]int, len(a.Subs))
	total := codeSize
	for i, sub := range a.Subs {
		subOffsets[i] = total
		total += len(sub.Bytecode)
	}

	if total > 0xffff {
		return nil, "", fmt.Errorf("assembly `%s` is too large: %d bytes", a.Name, total)
	}

	obj := NewObject(make([]byte, 0, total+len(a.Trailer)))
	var locations []SourceMapEntry

	put16 := func(op OpCode, v int) {
		obj.Bytecode = append(obj.Bytecode, byte(op), byte(v>>8), byte(v))
	}

	for _, it := range a.Items {
		locations = append(locations, SourceMapEntry{
			Start:       it.Location.Start,
			Length:      it.Location.Length,
			SourceIndex: it.Location.SourceIndex,
			Jump:        jumpOrDash(it.Jump),
		})

		switch it.Kind {
		case ItemOperation:
			obj.Bytecode = append(obj.Bytecode, byte(it.Op))
		case ItemPush:
			obj.Bytecode = append(obj.Bytecode, byte(PushN(len(it.Data))))
			obj.Bytecode = append(obj.Bytecode, it.Data...)
		case ItemTag:
			obj.Bytecode = append(obj.Bytecode, byte(JUMPDEST))
		case ItemPushTag:
			pos, ok := tagPos[it.Tag]
			if !ok {
				return nil, "", fmt.Errorf("undefined tag %d in assembly `%s`", it.Tag, a.Name)
			}

			put16(PUSH2, pos)
		case ItemPushSubSize:
			put16(PUSH2, len(a.Subs[it.Sub].Bytecode))
		case ItemPushSubOffset:
			put16(PUSH2, subOffsets[it.Sub])
		case ItemPushLibrary:
			obj.Bytecode = append(obj.Bytecode, byte(PUSH20))
			obj.LinkReferences[len(obj.Bytecode)] = it.Library
			obj.Bytecode = append(obj.Bytecode, make([]byte, common.AddressLength)...)
		}
	}

	for i, sub := range a.Subs {
		obj.Bytecode = append(obj.Bytecode, sub.Bytecode...)
		for offset, name := range sub.LinkReferences {
			obj.LinkReferences[subOffsets[i]+offset] = name
		}
	}

	obj.Bytecode = append(obj.Bytecode, a.Trailer...)
	return obj, CompressSourceMap(locations), nil
}

func jumpOrDash(j byte) byte {
	if j == 0 {
		return '-'
	}

	return j
}

// String renders the assembly as text.
func (a *Assembly) String() string {
	sb := &strings.Builder{}
	a.write(sb, "")
	return sb.String()
}

func (a *Assembly) write(sb *strings.Builder, indent string) {
	fmt.Fprintf(sb, "%s/* %s */\n", indent, a.Name)

	lastLoc := NoLocation
	for _, it := range a.Items {
		if a.Annotate != nil && it.Location != lastLoc {
			if text := a.Annotate(it.Location); text != "" {
				fmt.Fprintf(sb, "%s    /* %s */\n", indent, text)
			}

			lastLoc = it.Location
		}

		switch it.Kind {
		case ItemOperation:
			sb.WriteString(indent + "  " + strings.ToLower(it.Op.String()))
			if it.Jump != 0 {
				fmt.Fprintf(sb, "\t// %c", it.Jump)
			}
			sb.WriteString("\n")
		case ItemPush:
			fmt.Fprintf(sb, "%s  0x%s\n", indent, hex.EncodeToString(it.Data))
		case ItemTag:
			fmt.Fprintf(sb, "%stag_%d:\n", indent, it.Tag)
		case ItemPushTag:
			fmt.Fprintf(sb, "%s  tag_%d\n", indent, it.Tag)
		case ItemPushLibrary:
			fmt.Fprintf(sb, "%s  linkerSymbol(\"%s\")\n", indent, it.Library)
		case ItemPushSubSize:
			fmt.Fprintf(sb, "%s  dataSize(sub_%d)\n", indent, it.Sub)
		case ItemPushSubOffset:
			fmt.Fprintf(sb, "%s  dataOffset(sub_%d)\n", indent, it.Sub)
		}
	}

	for i, sub := range a.Subs {
		if listing, ok := a.listings[i]; ok {
			fmt.Fprintf(sb, "\n%ssub_%d: assembly {\n", indent, i)
			listing.write(sb, indent+"    ")
			fmt.Fprintf(sb, "%s}\n", indent)
		} else {
			fmt.Fprintf(sb, "\n%ssub_%d: 0x%s\n", indent, i, sub.ToHex())
		}
	}

	if len(a.Trailer) > 0 {
		fmt.Fprintf(sb, "%sauxdata: 0x%s\n", indent, hex.EncodeToString(a.Trailer))
	}
}
