// Package hooks implements the tree rewriting pipeline applied to a DocBook
// document before it is handed to pandoc, and the catalog of hooks the
// pipeline is assembled from.
package hooks

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/adnsv/dbrst/entities"
	"github.com/adnsv/dbrst/xmltree"
	"github.com/beevik/etree"
)

// ParseData describes the document a pipeline runs on. Hooks read it but
// never change it.
type ParseData struct {
	FileName  string // document path relative to Folder, slash separated
	Folder    string // base folder of the migrated document set
	SourceDir string // folder the source document was read from
	Prefix    string // output path without extension
	Entities  *entities.Map
}

func NewParseData(folder, fname, sourceDir string, ents *entities.Map) *ParseData {
	fname = filepath.ToSlash(fname)
	pd := &ParseData{
		FileName:  fname,
		Folder:    folder,
		SourceDir: sourceDir,
		Entities:  ents,
	}
	pd.Prefix = filepath.Join(folder, filepath.FromSlash(pd.Dir()), pd.BaseName())
	return pd
}

// BaseName is the file name without directory and extension.
func (pd *ParseData) BaseName() string {
	b := path.Base(pd.FileName)
	return strings.TrimSuffix(b, path.Ext(b))
}

// Dir is the slash separated directory of FileName, "." at the top.
func (pd *ParseData) Dir() string {
	return path.Dir(pd.FileName)
}

func (pd *ParseData) Ext() string {
	return path.Ext(pd.FileName)
}

// Selector decides which nodes a hook is applied to: the root of the
// document or the elements with a given tag.
type Selector struct {
	tag string
}

func AtRoot() Selector {
	return Selector{}
}

func OnTag(tag string) Selector {
	return Selector{tag: tag}
}

func (s Selector) IsRoot() bool {
	return s.tag == ""
}

func (s Selector) Match(node *etree.Element) bool {
	if s.tag == "" {
		return xmltree.IsRoot(node)
	}
	return node.Tag == s.tag
}

func (s Selector) String() string {
	if s.tag == "" {
		return "root"
	}
	return "<" + s.tag + ">"
}

// Func rewrites node and returns the element that takes its place, which
// is node itself when the hook edits in place.
type Func func(node *etree.Element, pd *ParseData) (*etree.Element, error)

type Hook struct {
	Name     string
	Selector Selector
	Func     Func
}

// Apply runs the hook on node when the selector matches; otherwise node is
// returned untouched.
func (h *Hook) Apply(node *etree.Element, pd *ParseData) (*etree.Element, error) {
	if !h.Selector.Match(node) {
		return node, nil
	}
	out, err := h.Func(node, pd)
	if out == nil {
		out = node
	}
	return out, err
}

// HookError is the failure of one hook on one document.
type HookError struct {
	Hook string
	File string
	Err  error
}

func (e *HookError) Error() string {
	return fmt.Sprintf("hook %s on %s: %s", e.Hook, e.File, e.Err)
}

func (e *HookError) Unwrap() error {
	return e.Err
}
