// Package table renders the directive text that surrounds a flattened table.
package table

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/adnsv/dbrst/xmltree"
	"github.com/beevik/etree"
)

// Block is one level of indentation in the generated markup.
const Block = "    "

// Sentinel lines bracketing the list content of a flat-table. They travel
// through the converter as raw markup and are consumed by the rst
// post-processor, which indents everything between them by one Block.
const (
	StartMark = ".. flat-table-start-mark"
	EndMark   = ".. flat-table-end-mark"
)

// Anchor renders a reST hyperlink target for id.
func Anchor(id string) string {
	return fmt.Sprintf("\n\n.. _`%s`:\n", id)
}

// Context carries the rendering parameters of one flattened table.
type Context struct {
	ID          string
	Title       string
	HeaderRows  int
	StubColumns int
	Widths      []int
}

// NewContext reads the id and the title of tbl. Row and column figures are
// filled in by the caller.
func NewContext(tbl *etree.Element) *Context {
	c := &Context{ID: xmltree.ID(tbl)}
	for _, tag := range []string{"title", "caption"} {
		if t := tbl.SelectElement(tag); t != nil {
			c.Title = strings.Join(strings.Fields(xmltree.TextContent(t)), " ")
			break
		}
	}
	return c
}

// Header renders the text injected in front of the table.
func (c *Context) Header(useWidths bool) string {
	var sb strings.Builder
	if c.ID != "" {
		sb.WriteString(Anchor(c.ID))
	} else {
		sb.WriteString("\n")
	}
	sb.WriteString("\n.. flat-table::")
	if c.Title != "" {
		sb.WriteString(" " + c.Title)
	}
	fmt.Fprintf(&sb, "\n%s:header-rows:  %d", Block, c.HeaderRows)
	fmt.Fprintf(&sb, "\n%s:stub-columns: %d", Block, c.StubColumns)
	if useWidths && len(c.Widths) > 0 {
		ww := make([]string, len(c.Widths))
		for i, w := range c.Widths {
			ww[i] = strconv.Itoa(w)
		}
		fmt.Fprintf(&sb, "\n%s:widths:       %s", Block, strings.Join(ww, " "))
	}
	sb.WriteString("\n" + Block)
	sb.WriteString("\n" + StartMark)
	return sb.String()
}

// Footer renders the text injected after the table.
func (c *Context) Footer() string {
	return "\n" + EndMark + "\n"
}
