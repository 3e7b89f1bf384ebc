// Package rst repairs the reStructuredText produced by pandoc.
package rst

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"regexp"
	"strings"
	"unicode"

	"github.com/adnsv/dbrst/table"
	ufs "github.com/adnsv/go-utils/fs"
)

const (
	Header = ".. -*- coding: utf-8; mode: rst -*-\n"
	Footer = ""
)

// a backslash in front of inline markup characters
var reEscaped = regexp.MustCompile("\\\\[`|*_]")

var glyphs = strings.NewReplacer(
	"⋆", "*",
	"â‹†", "*", // ⋆ decoded as windows-1252
)

// Fix copies r to w, removing pandoc escapes and indenting the content of
// flat-tables bracketed by the table sentinels.
func Fix(r io.Reader, w io.Writer) error {
	bw := bufio.NewWriter(w)
	bw.WriteString(Header)

	indent := ""
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		line := glyphs.Replace(sc.Text())
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			bw.WriteString("\n")
			continue
		case trimmed == table.StartMark:
			indent += table.Block
			continue
		case trimmed == table.EndMark:
			indent = strings.TrimSuffix(indent, table.Block)
			continue
		}

		bw.WriteString(indent)
		switch {
		case !reEscaped.MatchString(line):
			bw.WriteString(line)
		case strings.HasPrefix(trimmed, "|"):
			bw.WriteString(compact(line))
		default:
			bw.WriteString(strings.ReplaceAll(line, "\\", ""))
		}
		bw.WriteString("\n")
	}
	if err := sc.Err(); err != nil {
		return err
	}
	bw.WriteString(Footer)
	return bw.Flush()
}

// compact drops the backslashes of a grid table line and gives their
// width back as spaces at the next whitespace, so cell borders stay
// aligned.
func compact(line string) string {
	var sb strings.Builder
	spaces := ""
	for _, c := range line {
		switch {
		case c == '\\':
			spaces += " "
		case unicode.IsSpace(c):
			sb.WriteString(spaces)
			sb.WriteRune(c)
			spaces = ""
		default:
			sb.WriteRune(c)
		}
	}
	return strings.TrimRightFunc(sb.String(), unicode.IsSpace)
}

// FixFile runs Fix on src and writes the result to dst unless dst already
// has that content.
func FixFile(src, dst string) error {
	f, err := os.Open(src)
	if err != nil {
		return err
	}
	defer f.Close()
	var out bytes.Buffer
	if err := Fix(f, &out); err != nil {
		return err
	}
	return ufs.WriteFileIfChanged(dst, out.Bytes())
}
