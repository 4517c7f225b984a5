package ac3d

import (
	"bufio"
	"io"
	"strings"
)

// lineReader feeds the parser one non-blank line at a time while tracking
// physical line numbers for diagnostics. The dispatch loops occasionally
// read one line too far (an OBJECT block has no end marker other than the
// next token that is not its own); Unread puts that line back. One line of
// pushback is all the grammar ever needs.
type lineReader struct {
	scanner *bufio.Scanner
	lineNum int
	cur     string
	pushed  bool
}

func newLineReader(r io.Reader) *lineReader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &lineReader{scanner: sc}
}

// Next returns the next non-blank line with line endings stripped, or
// false at end of input. Blank lines are skipped but still counted.
func (lr *lineReader) Next() (string, bool) {
	if lr.pushed {
		lr.pushed = false
		return lr.cur, true
	}
	for lr.scanner.Scan() {
		lr.lineNum++
		line := strings.TrimRight(lr.scanner.Text(), "\r\n")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lr.cur = line
		return line, true
	}
	return "", false
}

// NextRaw returns the next physical line verbatim, without blank-line
// skipping or tokenization. Used for length-prefixed data payloads, which
// may contain embedded whitespace.
func (lr *lineReader) NextRaw() (string, bool) {
	if lr.pushed {
		lr.pushed = false
		return lr.cur, true
	}
	if !lr.scanner.Scan() {
		return "", false
	}
	lr.lineNum++
	lr.cur = strings.TrimRight(lr.scanner.Text(), "\r\n")
	return lr.cur, true
}

// Unread makes the most recently returned line reappear on the next call
// to Next or NextRaw.
func (lr *lineReader) Unread() {
	lr.pushed = true
}

// Line returns the physical line number of the most recently returned line.
func (lr *lineReader) Line() int {
	return lr.lineNum
}
