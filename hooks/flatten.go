package hooks

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/adnsv/dbrst/table"
	"github.com/adnsv/dbrst/xmltree"
	"github.com/beevik/etree"
	"go.uber.org/zap"
)

// colSpec is a parsed <colspec>. Ordinal is zero based; Width is nil when
// colwidth is missing or not a plain number.
type colSpec struct {
	Name    string
	Ordinal int
	Align   string
	Width   *int
}

type colSpecs struct {
	byName   map[string]colSpec
	byNumber map[int]colSpec
	spans    map[string]int // spanname -> extra columns
}

func parseColSpecs(tbl *etree.Element) *colSpecs {
	cs := &colSpecs{
		byName:   map[string]colSpec{},
		byNumber: map[int]colSpec{},
		spans:    map[string]int{},
	}
	for i, c := range xmltree.Descendants(tbl, "colspec") {
		spec := colSpec{
			Name:    c.SelectAttrValue("colname", ""),
			Ordinal: i,
			Align:   c.SelectAttrValue("align", ""),
		}
		if n, err := strconv.Atoi(c.SelectAttrValue("colnum", "")); err == nil && n > 0 {
			spec.Ordinal = n - 1
		}
		if a := c.SelectAttr("colwidth"); a != nil {
			w := strings.NewReplacer("*", "", "⋆", "").Replace(a.Value)
			if n, err := strconv.Atoi(strings.TrimSpace(w)); err == nil {
				spec.Width = &n
			}
		}
		cs.byName[spec.Name] = spec
		cs.byNumber[spec.Ordinal] = spec
	}
	for _, s := range xmltree.Descendants(tbl, "spanspec") {
		name := s.SelectAttrValue("spanname", "")
		if name == "" {
			continue
		}
		if w, ok := cs.span(s.SelectAttrValue("namest", ""), s.SelectAttrValue("nameend", "")); ok {
			cs.spans[name] = w
		}
	}
	return cs
}

func (cs *colSpecs) span(start, end string) (int, bool) {
	st, ok1 := cs.byName[start]
	en, ok2 := cs.byName[end]
	if start == "" || end == "" || !ok1 || !ok2 {
		return 0, false
	}
	return en.Ordinal - st.Ordinal, true
}

// colSpan returns the number of extra columns an entry covers.
func (cs *colSpecs) colSpan(entry *etree.Element) int {
	if n := cs.spans[entry.SelectAttrValue("spanname", "")]; n != 0 {
		return n
	}
	if n, ok := cs.span(entry.SelectAttrValue("namest", ""), entry.SelectAttrValue("nameend", "")); ok && n != 0 {
		return n
	}
	if n := atoi(entry.SelectAttrValue("colspan", "1")) - 1; n > 0 {
		return n
	}
	return 0
}

// rowSpan returns the number of extra rows an entry covers.
func rowSpan(entry *etree.Element) int {
	if n := atoi(entry.SelectAttrValue("morerows", "0")); n > 0 {
		return n
	}
	if n := atoi(entry.SelectAttrValue("rowspan", "1")) - 1; n > 0 {
		return n
	}
	return 0
}

// FlattenTables converts tables into a two level itemized list bracketed
// by injected flat-table directive text. ids selects the tables; nil means
// all of them.
func FlattenTables(ids []string, log *zap.Logger) *Hook {
	return &Hook{
		Name:     "flatten-tables",
		Selector: AtRoot(),
		Func: func(node *etree.Element, pd *ParseData) (*etree.Element, error) {
			tables := append(xmltree.Descendants(node, "table"), xmltree.Descendants(node, "informaltable")...)
			for _, tbl := range tables {
				if ids != nil && !slices.Contains(ids, xmltree.ID(tbl)) {
					continue
				}
				if !xmltree.Within(tbl, node) || tbl == node {
					continue
				}
				ctx := flattenTable(tbl)
				log.Debug("Flattened table", zap.String("file", pd.FileName), zap.String("table", ctx.ID),
					zap.Int("header-rows", ctx.HeaderRows), zap.Ints("widths", ctx.Widths))
			}
			return node, nil
		},
	}
}

// flattenTable replaces tbl in its parent and returns the rendering
// context it used.
func flattenTable(tbl *etree.Element) *table.Context {
	cs := parseColSpecs(tbl)

	maxCols := 0
	flat := etree.NewElement("itemizedlist")
	// rows of nested entrytbl elements are rows of their own
	for _, row := range xmltree.Descendants(tbl, "row") {
		item := flat.CreateElement("listitem")
		if id := xmltree.ID(row); id != "" {
			item.SetText(fmt.Sprintf(".. _`%s`:", id))
		} else {
			item.SetText(".. table row")
		}
		cells := item.CreateElement("itemizedlist")

		cols := 0
		for _, entry := range xmltree.Descendants(row, "entry") {
			cols++
			cell := cells.CreateElement("listitem")
			if id := xmltree.RemoveID(entry); id != "" {
				anchor := cell.CreateElement("para")
				anchor.SetText(fmt.Sprintf(".. _`%s`:\n\n", id))
			}

			para := xmltree.CopyNode(entry, "para", false)
			if n := cs.colSpan(entry); n != 0 {
				para.SetText(fmt.Sprintf(":cspan:`%d` ", n) + para.Text())
				cols += n
			}
			if n := rowSpan(entry); n != 0 {
				para.SetText(fmt.Sprintf(":rspan:`%d` ", n) + para.Text())
			}
			cell.AddChild(para)
		}
		maxCols = max(maxCols, cols)
	}

	ctx := table.NewContext(tbl)
	for _, thead := range xmltree.Descendants(tbl, "thead") {
		ctx.HeaderRows += len(thead.SelectElements("row"))
	}
	if tbl.SelectAttrValue("rowheader", "") == "firstcol" {
		ctx.StubColumns = 1
	}
	useWidths := false
	for i := 0; i < maxCols; i++ {
		w := 1
		if spec, ok := cs.byNumber[i]; ok && spec.Width != nil {
			w = *spec.Width
		}
		ctx.Widths = append(ctx.Widths, w)
		if w != ctx.Widths[0] {
			useWidths = true
		}
	}
	if len(cs.byName) > maxCols {
		// more colspecs than columns: the colspecs are not trustworthy
		useWidths = false
	}

	xmltree.InsertBefore(tbl, xmltree.NewInjectBlock(ctx.Header(useWidths)))
	xmltree.InsertAfter(tbl, xmltree.NewInjectBlock(ctx.Footer()))
	xmltree.ReplaceNode(tbl, flat)
	return ctx
}
