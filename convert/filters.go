package convert

import (
	"strings"

	"github.com/adnsv/dbrst/pandoc"
	"github.com/adnsv/dbrst/table"
	"github.com/adnsv/dbrst/xmltree"
)

// InjectFilter turns the literal blocks injected by the hooks back into raw
// reStructuredText.
func InjectFilter() pandoc.Action {
	return func(t string, c interface{}) ([]interface{}, bool, error) {
		if t != "CodeBlock" {
			return nil, false, nil
		}
		cb, err := pandoc.LoadCodeBlock(c)
		if err != nil {
			return nil, false, err
		}
		if !cb.Attr.HasClass(xmltree.InjectLanguage) {
			return nil, false, nil
		}
		rb := &pandoc.RawBlock{Format: "rst", Text: cb.Text}
		return []interface{}{rb.Element()}, true, nil
	}
}

// MarkerCheck counts the table sentinels found in raw blocks.
type MarkerCheck struct {
	Start int
	End   int
}

func (m *MarkerCheck) Action() pandoc.Action {
	return func(t string, c interface{}) ([]interface{}, bool, error) {
		if t != "RawBlock" {
			return nil, false, nil
		}
		rb, err := pandoc.LoadRawBlock(c)
		if err != nil {
			return nil, false, err
		}
		m.Start += strings.Count(rb.Text, table.StartMark)
		m.End += strings.Count(rb.Text, table.EndMark)
		return nil, false, nil
	}
}

func (m *MarkerCheck) Balanced() bool {
	return m.Start == m.End
}
