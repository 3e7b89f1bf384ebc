package hooks

import (
	"fmt"
	"path"
	"strings"

	"github.com/adnsv/dbrst/xmltree"
	"github.com/beevik/etree"
	"go.uber.org/zap"
)

// DummyTag wraps a fragment that is run through the pipeline on its own.
const DummyTag = "dummy"

// ChunkByTag splits the document into fragments. The paths are tried in
// order; the first one matching anything is the only one used. Every match
// is written to <dir>/<id><ext>, registered as an entity and replaced by a
// reference to it. Elements without an id get one made of the sibling
// positions along their ancestor chain, so the name changes when siblings
// are reordered.
func ChunkByTag(paths []string, log *zap.Logger) (*Hook, error) {
	compiled := make([]etree.Path, len(paths))
	for i, p := range paths {
		cp, err := etree.CompilePath(p)
		if err != nil {
			return nil, fmt.Errorf("chunk path %q: %w", p, err)
		}
		compiled[i] = cp
	}

	return &Hook{
		Name:     "chunk-by-tag",
		Selector: AtRoot(),
		Func: func(node *etree.Element, pd *ParseData) (*etree.Element, error) {
			top := node
			if node.Tag == DummyTag {
				if ce := node.ChildElements(); len(ce) == 1 && ce[0].SelectAttr(xmltree.ChunkAttr) != nil {
					top = ce[0]
				}
			}

			for i, cp := range compiled {
				matches := xmltree.InDocumentOrder(top, top.FindElementsPath(cp))
				for _, e := range matches {
					if e == top || e.SelectAttr(xmltree.ChunkAttr) != nil {
						continue
					}
					if !xmltree.Within(e, top) {
						// inside a fragment written before, chunked when that
						// fragment runs through the pipeline
						continue
					}
					id := xmltree.ID(e)
					if id == "" {
						id = pd.BaseName() + "-" + siblingPath(e)
					}
					target := path.Join(pd.Dir(), id+pd.Ext())
					if err := pd.Entities.AddNew(id, target); err != nil {
						return nil, err
					}
					if _, err := xmltree.ChunkNode(e, pd.Folder, target, id); err != nil {
						return nil, err
					}
					log.Info("Chunked", zap.String("path", paths[i]), zap.String("entity", id), zap.String("file", target))
				}
				if len(matches) > 0 {
					break
				}
			}
			return node, nil
		},
	}, nil
}

// siblingPath counts the preceding siblings of e and of each ancestor up
// to the document or a dummy wrapper: "002-000-013".
func siblingPath(e *etree.Element) string {
	var parts []string
	for n := e; n != nil && !(n.Tag == "" && n.Parent() == nil); n = n.Parent() {
		if n.Tag == DummyTag {
			break
		}
		parts = append([]string{fmt.Sprintf("%03d", xmltree.PrecedingSiblings(n))}, parts...)
	}
	return strings.Join(parts, "-")
}
