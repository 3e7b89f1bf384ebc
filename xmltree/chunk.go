package xmltree

import (
	"fmt"
	"path"
	"path/filepath"

	"github.com/beevik/etree"
)

// ChunkAttr marks the root element of a fragment written by ChunkNode.
const ChunkAttr = "chunkNode"

// InjectLanguage is the language of the literal blocks that carry raw
// reStructuredText through the converter.
const InjectLanguage = "dbrst-inject"

// ChunkNode moves elem into its own document stored at folder/target and
// leaves an entity placeholder named name in its place. The placeholder is
// returned. ChunkNode panics when elem is detached.
func ChunkNode(elem *etree.Element, folder, target, name string) (*etree.Element, error) {
	if elem.Parent() == nil {
		panic("xmltree: ChunkNode on a detached element <" + elem.Tag + ">")
	}
	ref := NewEntityRef(name, target)
	ReplaceNode(elem, ref)
	elem.CreateAttr(ChunkAttr, name)

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="utf-8"`)
	doc.CreateText("\n")
	doc.SetRoot(elem)
	if err := WriteFile(doc, filepath.Join(folder, filepath.FromSlash(target))); err != nil {
		return ref, fmt.Errorf("chunk %s: %w", name, err)
	}
	return ref, nil
}

// ExpandEntities replaces every placeholder below root by the root element
// of the fragment it refers to, recursively. Fragment paths are relative to
// folder; ents resolves the references found inside fragments. The chunk
// marker is dropped from inlined fragments.
func ExpandEntities(root *etree.Element, folder string, ents Resolver) error {
	return expand(root, folder, ents, map[string]bool{})
}

func expand(root *etree.Element, folder string, ents Resolver, active map[string]bool) error {
	for _, ref := range Descendants(root, EntityTag) {
		name := ref.SelectAttrValue("name", "")
		href := ref.SelectAttrValue("href", "")
		if active[name] {
			return fmt.Errorf("entity %s: recursive reference", name)
		}
		if href == "" || path.IsAbs(href) {
			return fmt.Errorf("entity %s: unusable reference %q", name, href)
		}
		doc, err := ReadFile(filepath.Join(folder, filepath.FromSlash(href)), ents)
		if err != nil {
			return fmt.Errorf("entity %s: %w", name, err)
		}
		frag := doc.Root()
		frag.RemoveAttr(ChunkAttr)
		active[name] = true
		err = expand(frag, folder, ents, active)
		delete(active, name)
		if err != nil {
			return err
		}
		ReplaceNode(ref, frag)
	}
	return nil
}

// NewInjectBlock wraps text into a literal block that the converter keeps
// verbatim and the filter stage turns into raw markup.
func NewInjectBlock(text string) *etree.Element {
	e := etree.NewElement("programlisting")
	e.CreateAttr("language", InjectLanguage)
	e.SetText(text)
	return e
}
