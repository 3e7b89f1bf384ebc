package hooks

import (
	"path"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/adnsv/dbrst/files"
	"github.com/adnsv/dbrst/xmltree"
	"github.com/beevik/etree"
	"go.uber.org/zap"
)

// HTML2DBTable turns HTML table markup into DocBook: <tr> becomes <row>,
// <th> and <td> become <entry>.
func HTML2DBTable() *Hook {
	return &Hook{
		Name:     "html2db-table",
		Selector: AtRoot(),
		Func: func(node *etree.Element, pd *ParseData) (*etree.Element, error) {
			for _, tr := range xmltree.Descendants(node, "tr") {
				xmltree.ReplaceNode(tr, xmltree.CopyNode(tr, "row", true))
			}
			for _, c := range xmltree.Descendants(node, "") {
				if c.Tag == "th" || c.Tag == "td" {
					xmltree.ReplaceNode(c, xmltree.CopyNode(c, "entry", true))
				}
			}
			return node, nil
		},
	}
}

// FixBrokenTables repairs tables whose rows hold more entries than the
// tgroup declares: cols is raised to the widest header or body row and
// short rows are padded with empty entries. Only tables listed by id, or
// all tables of the listed documents ("<folder base>/<file without ext>"),
// are touched.
func FixBrokenTables(ids, fnames []string, log *zap.Logger) *Hook {
	return &Hook{
		Name:     "fix-broken-tables",
		Selector: OnTag("table"),
		Func: func(node *etree.Element, pd *ParseData) (*etree.Element, error) {
			key := path.Join(filepath.Base(pd.Folder), files.TrimExt(pd.FileName))
			if !slices.Contains(ids, xmltree.ID(node)) && !slices.Contains(fnames, key) {
				return node, nil
			}
			tgroup := node.SelectElement("tgroup")
			if tgroup == nil {
				return node, nil
			}

			cols := atoi(tgroup.SelectAttrValue("cols", ""))
			declared := cols
			var rows []*etree.Element
			for _, part := range []string{"thead", "tbody"} {
				if p := tgroup.SelectElement(part); p != nil {
					rows = append(rows, p.SelectElements("row")...)
				}
			}
			for _, row := range rows {
				if n := len(row.SelectElements("entry")); n > cols {
					cols = n
				}
			}
			if cols != declared {
				tgroup.CreateAttr("cols", strconv.Itoa(cols))
			}
			for _, row := range rows {
				for n := len(row.SelectElements("entry")); n < cols; n++ {
					row.CreateElement("entry")
				}
			}
			log.Debug("Repaired table", zap.String("table", xmltree.ID(node)),
				zap.Int("declared", declared), zap.Int("cols", cols))
			return node, nil
		},
	}
}

// IDTag pairs an element id with its new tag.
type IDTag struct {
	ID  string `yaml:"id"`
	Tag string `yaml:"tag"`
}

// ReplaceTag renames the first descendant carrying each id.
func ReplaceTag(pairs []IDTag) *Hook {
	return &Hook{
		Name:     "replace-tag",
		Selector: AtRoot(),
		Func: func(node *etree.Element, pd *ParseData) (*etree.Element, error) {
			for _, p := range pairs {
				if e := xmltree.FindByID(node, p.ID); e != nil {
					xmltree.ReplaceNode(e, xmltree.CopyNode(e, p.Tag, true))
				}
			}
			return node, nil
		},
	}
}

// DropUselessInformalTables replaces informal tables of a single column by
// a section holding the content of every cell as paragraphs.
func DropUselessInformalTables() *Hook {
	return &Hook{
		Name:     "drop-useless-informaltables",
		Selector: AtRoot(),
		Func: func(node *etree.Element, pd *ParseData) (*etree.Element, error) {
			for _, tbl := range xmltree.Descendants(node, "informaltable") {
				if !xmltree.Within(tbl, node) {
					continue
				}
				tbody := xmltree.Descendants(tbl, "tbody")
				if len(tbody) == 0 {
					continue
				}
				maxCols := 0
				for _, row := range xmltree.Descendants(tbody[0], "row") {
					maxCols = max(maxCols, len(xmltree.Descendants(row, "entry")))
				}
				if maxCols >= 2 {
					continue
				}
				section := etree.NewElement("section")
				for _, entry := range xmltree.Descendants(tbody[0], "entry") {
					for _, p := range entryParas(entry) {
						section.AddChild(p)
					}
				}
				xmltree.ReplaceNode(tbl, section)
			}
			return node, nil
		},
	}
}

func entryParas(entry *etree.Element) []*etree.Element {
	children := entry.ChildElements()
	if len(children) == 0 {
		if strings.TrimSpace(entry.Text()) == "" {
			return nil
		}
		return []*etree.Element{xmltree.CopyNode(entry, "para", true)}
	}
	// text around the child elements becomes paragraphs of its own
	var ret []*etree.Element
	var text strings.Builder
	flush := func() {
		if s := strings.TrimSpace(text.String()); s != "" {
			p := etree.NewElement("para")
			p.SetText(s)
			ret = append(ret, p)
		}
		text.Reset()
	}
	for _, t := range entry.Child {
		switch t := t.(type) {
		case *etree.CharData:
			text.WriteString(t.Data)
		case *etree.Element:
			flush()
			ret = append(ret, xmltree.CopyNode(t, "para", true))
		}
	}
	flush()
	return ret
}

func atoi(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}
