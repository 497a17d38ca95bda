package evm

import (
	"strconv"
	"strings"
)

// SourceMapEntry is the source location of a single instruction.
type SourceMapEntry struct {
	Start       int
	Length      int
	SourceIndex int

	// Jump is `i`, `o` or `-`.
	Jump byte
}

// CompressSourceMap renders entries in the compressed `s:l:f:j;...` format in
// which every field equal to the previous entry's is left out.
func CompressSourceMap(entries []SourceMapEntry) string {
	sb := strings.Builder{}
	prev := SourceMapEntry{Start: -2, Length: -2, SourceIndex: -2}

	for i, e := range entries {
		if i > 0 {
			sb.WriteByte(';')
		}

		fields := []string{"", "", "", ""}
		if e.Start != prev.Start {
			fields[0] = strconv.Itoa(e.Start)
		}
		if e.Length != prev.Length {
			fields[1] = strconv.Itoa(e.Length)
		}
		if e.SourceIndex != prev.SourceIndex {
			fields[2] = strconv.Itoa(e.SourceIndex)
		}
		if e.Jump != prev.Jump {
			fields[3] = string(e.Jump)
		}

		// trailing empty fields are dropped along with their colons
		n := len(fields)
		for n > 0 && fields[n-1] == "" {
			n--
		}
		sb.WriteString(strings.Join(fields[:n], ":"))

		prev = e
	}

	return sb.String()
}

// DecompressSourceMap parses a compressed source map.
func DecompressSourceMap(text string) ([]SourceMapEntry, error) {
	if text == "" {
		return nil, nil
	}

	var entries []SourceMapEntry
	prev := SourceMapEntry{}

	for _, part := range strings.Split(text, ";") {
		e := prev
		for i, field := range strings.Split(part, ":") {
			if field == "" {
				continue
			}

			if i == 3 {
				e.Jump = field[0]
				continue
			}

			v, err := strconv.Atoi(field)
			if err != nil {
				return nil, err
			}

			switch i {
			case 0:
				e.Start = v
			case 1:
				e.Length = v
			case 2:
				e.SourceIndex = v
			}
		}

		entries = append(entries, e)
		prev = e
	}

	return entries, nil
}
