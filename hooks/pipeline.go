package hooks

import (
	"fmt"

	"github.com/adnsv/dbrst/xmltree"
	"github.com/beevik/etree"
	"go.uber.org/zap"
)

// Pipeline runs hooks in registration order; every hook sees the tree as
// left by the previous ones.
type Pipeline struct {
	hooks []*Hook
	log   *zap.Logger

	// Debug lets hook panics through with their stack trace.
	Debug bool
}

func NewPipeline(log *zap.Logger, hooks ...*Hook) *Pipeline {
	return &Pipeline{hooks: hooks, log: log}
}

func (p *Pipeline) Add(h ...*Hook) {
	p.hooks = append(p.hooks, h...)
}

func (p *Pipeline) Len() int {
	return len(p.hooks)
}

// Run applies all hooks to the tree below root and returns the resulting
// root, which differs from root when a hook replaced it.
func (p *Pipeline) Run(root *etree.Element, pd *ParseData) (*etree.Element, error) {
	for _, h := range p.hooks {
		p.log.Debug("Applying hook",
			zap.String("hook", h.Name), zap.Stringer("on", h.Selector), zap.String("file", pd.FileName))
		var err error
		root, err = p.runHook(h, root, pd)
		if err != nil {
			return root, err
		}
	}
	return root, nil
}

func (p *Pipeline) runHook(h *Hook, root *etree.Element, pd *ParseData) (*etree.Element, error) {
	if h.Selector.IsRoot() {
		return p.visit(h, root, root, pd)
	}

	// snapshot first: the hook may add or remove matching elements
	var nodes []*etree.Element
	if h.Selector.Match(root) {
		nodes = append(nodes, root)
	}
	nodes = append(nodes, xmltree.Descendants(root, h.Selector.tag)...)

	for _, n := range nodes {
		if !xmltree.Within(n, root) {
			continue
		}
		var err error
		root, err = p.visit(h, n, root, pd)
		if err != nil {
			return root, err
		}
	}
	return root, nil
}

// visit applies h to node and splices the returned element into the tree.
func (p *Pipeline) visit(h *Hook, node, root *etree.Element, pd *ParseData) (*etree.Element, error) {
	out, err := p.apply(h, node, pd)
	if err != nil {
		return root, err
	}
	if out == node {
		return root, nil
	}
	if node.Parent() != nil {
		xmltree.ReplaceNode(node, out)
	}
	if node == root {
		root = out
	}
	return root, nil
}

func (p *Pipeline) apply(h *Hook, node *etree.Element, pd *ParseData) (out *etree.Element, err error) {
	if !p.Debug {
		defer func() {
			if r := recover(); r != nil {
				out = node
				err = &HookError{Hook: h.Name, File: pd.FileName, Err: fmt.Errorf("panic: %v", r)}
			}
		}()
	}
	out, err = h.Apply(node, pd)
	if err != nil {
		err = &HookError{Hook: h.Name, File: pd.FileName, Err: err}
	}
	return out, err
}
