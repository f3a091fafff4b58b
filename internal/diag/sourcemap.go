package diag

import "sort"

// Position is a 1-indexed line/column pair, counted in UTF-8 bytes on the
// line (not runes) to match the workspace's byte-offset contract in the
// specification.
type Position struct {
	Line   int
	Column int
}

// SourceMap converts byte offsets into a file into line/column positions.
// One SourceMap is built per source file, grounded on the teacher's
// lexer.Position tracking but operating after the fact over the full text
// rather than incrementally during scanning, since lexing happens upstream
// of this module.
type SourceMap struct {
	file        string
	text        string
	lineOffsets []int // byte offset of the start of each line; lineOffsets[0] == 0
}

// NewSourceMap builds a SourceMap for the given file's source text.
func NewSourceMap(file, text string) *SourceMap {
	sm := &SourceMap{file: file, text: text, lineOffsets: []int{0}}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			sm.lineOffsets = append(sm.lineOffsets, i+1)
		}
	}
	return sm
}

// File returns the source file path this map was built from.
func (sm *SourceMap) File() string {
	return sm.file
}

// Position converts a byte offset to a 1-indexed line/column.
func (sm *SourceMap) Position(offset int) Position {
	if offset < 0 {
		offset = 0
	}
	if offset > len(sm.text) {
		offset = len(sm.text)
	}
	// Largest lineOffsets[i] <= offset.
	i := sort.Search(len(sm.lineOffsets), func(i int) bool {
		return sm.lineOffsets[i] > offset
	}) - 1
	if i < 0 {
		i = 0
	}
	return Position{Line: i + 1, Column: offset - sm.lineOffsets[i] + 1}
}

// Line returns the raw text of the given 1-indexed line, without its
// trailing newline. Returns "" for an out-of-range line.
func (sm *SourceMap) Line(lineNum int) string {
	if lineNum < 1 || lineNum > len(sm.lineOffsets) {
		return ""
	}
	start := sm.lineOffsets[lineNum-1]
	end := len(sm.text)
	if lineNum < len(sm.lineOffsets) {
		end = sm.lineOffsets[lineNum] - 1 // exclude the '\n'
	}
	if end < start {
		end = start
	}
	// Trim a trailing '\r' for CRLF sources.
	for end > start && sm.text[end-1] == '\r' {
		end--
	}
	return sm.text[start:end]
}

// LineCount returns the number of lines in the source text.
func (sm *SourceMap) LineCount() int {
	return len(sm.lineOffsets)
}
