// Package xmltree holds the tree editing primitives the hooks are built on.
//
// All primitives work on github.com/beevik/etree elements. Text and tail
// text are character data tokens inside the parent, so moving an element
// never drags its tail along.
package xmltree

import (
	"sort"
	"strings"

	"github.com/beevik/etree"
)

// IsRoot reports whether e is the top element of its tree: it has no parent
// or its parent is the anonymous element of an etree.Document.
func IsRoot(e *etree.Element) bool {
	p := e.Parent()
	return p == nil || (p.Tag == "" && p.Space == "" && p.Parent() == nil)
}

// ID returns the id (or xml:id) attribute of e, or "".
func ID(e *etree.Element) string {
	return e.SelectAttrValue("id", "")
}

// RemoveID drops the id (or xml:id) attribute of e and returns its value.
func RemoveID(e *etree.Element) string {
	a := e.SelectAttr("id")
	if a == nil {
		return ""
	}
	v := a.Value
	e.RemoveAttr(a.FullKey())
	return v
}

func isID(a etree.Attr) bool {
	return a.Key == "id"
}

// CopyNode returns a new element named tag with the attributes of src (same
// order) and all of src's content moved into it. The id attribute is moved
// only when moveID is set, in which case src loses it; otherwise it stays
// on src.
func CopyNode(src *etree.Element, tag string, moveID bool) *etree.Element {
	dst := etree.NewElement(tag)
	for _, a := range src.Attr {
		if isID(a) && !moveID {
			continue
		}
		dst.CreateAttr(a.FullKey(), a.Value)
	}
	if moveID {
		RemoveID(src)
	}
	for len(src.Child) > 0 {
		dst.AddChild(src.Child[0])
	}
	return dst
}

// ReplaceNode puts n at the position of old. The tail text of old stays in
// place and now follows n. ReplaceNode panics when old is detached.
func ReplaceNode(old, n *etree.Element) {
	p := old.Parent()
	if p == nil {
		panic("xmltree: ReplaceNode on a detached element <" + old.Tag + ">")
	}
	if n.Parent() != nil {
		n.Parent().RemoveChild(n)
	}
	i := old.Index()
	p.RemoveChildAt(i)
	p.InsertChildAt(i, n)
}

// InsertBefore puts t right before ref.
func InsertBefore(ref *etree.Element, t etree.Token) {
	p := ref.Parent()
	if p == nil {
		panic("xmltree: InsertBefore on a detached element <" + ref.Tag + ">")
	}
	p.InsertChildAt(ref.Index(), t)
}

// InsertAfter puts t right after ref, ahead of ref's tail text.
func InsertAfter(ref *etree.Element, t etree.Token) {
	p := ref.Parent()
	if p == nil {
		panic("xmltree: InsertAfter on a detached element <" + ref.Tag + ">")
	}
	p.InsertChildAt(ref.Index()+1, t)
}

// Descendants returns the elements below e (e excluded) named tag, in
// document order. An empty tag matches every element.
func Descendants(e *etree.Element, tag string) []*etree.Element {
	var ret []*etree.Element
	var walk func(p *etree.Element)
	walk = func(p *etree.Element) {
		for _, c := range p.ChildElements() {
			if tag == "" || c.Tag == tag {
				ret = append(ret, c)
			}
			walk(c)
		}
	}
	walk(e)
	return ret
}

// InDocumentOrder sorts elems (all below root) in document order. The
// etree path engine collects descendants breadth first.
func InDocumentOrder(root *etree.Element, elems []*etree.Element) []*etree.Element {
	pos := map[*etree.Element]int{root: 0}
	for i, e := range Descendants(root, "") {
		pos[e] = i + 1
	}
	ret := append([]*etree.Element(nil), elems...)
	sort.SliceStable(ret, func(i, j int) bool {
		return pos[ret[i]] < pos[ret[j]]
	})
	return ret
}

// FindByID returns the first element below root carrying id, in document
// order. root itself is not considered.
func FindByID(root *etree.Element, id string) *etree.Element {
	for _, e := range Descendants(root, "") {
		if ID(e) == id {
			return e
		}
	}
	return nil
}

// Within reports whether e is root or one of its descendants.
func Within(e, root *etree.Element) bool {
	for ; e != nil; e = e.Parent() {
		if e == root {
			return true
		}
	}
	return false
}

// TextContent concatenates all character data below e.
func TextContent(e *etree.Element) string {
	var sb strings.Builder
	var walk func(p *etree.Element)
	walk = func(p *etree.Element) {
		for _, t := range p.Child {
			switch t := t.(type) {
			case *etree.CharData:
				sb.WriteString(t.Data)
			case *etree.Element:
				walk(t)
			}
		}
	}
	walk(e)
	return sb.String()
}

// PrecedingSiblings counts the elements, comments and processing
// instructions before e in its parent. The XML declaration is not counted.
func PrecedingSiblings(e *etree.Element) int {
	p := e.Parent()
	if p == nil {
		return 0
	}
	n := 0
	for _, t := range p.Child[:e.Index()] {
		switch t := t.(type) {
		case *etree.Element, *etree.Comment:
			n++
		case *etree.ProcInst:
			if t.Target != "xml" {
				n++
			}
		}
	}
	return n
}
