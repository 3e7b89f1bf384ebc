// Package convert drives the migration of one DocBook document: the XML
// pass through the hook pipeline, the pandoc round trip with its JSON
// filters and the repair of the produced reStructuredText.
package convert

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adnsv/dbrst/entities"
	"github.com/adnsv/dbrst/hooks"
	"github.com/adnsv/dbrst/pandoc"
	"github.com/adnsv/dbrst/rst"
	"github.com/adnsv/dbrst/xmltree"
	"github.com/beevik/etree"
	"go.uber.org/zap"
)

// HookSource returns the hooks configured for a document.
type HookSource func(fname string) ([]*hooks.Hook, error)

// Job is one document to migrate.
type Job struct {
	Source   string // source document
	FileName string // output name relative to the output folder
}

// NewJob names the output after the source path relative to base, or after
// its base name when the source lies outside base.
func NewJob(source, base string) Job {
	rel, err := filepath.Rel(base, source)
	if err != nil || !filepath.IsLocal(rel) {
		rel = filepath.Base(source)
	}
	return Job{Source: source, FileName: filepath.ToSlash(rel)}
}

type Converter struct {
	Folder   string
	Entities *entities.Map
	Hooks    HookSource
	Pandoc   *pandoc.Runner
	Log      *zap.Logger

	// Debug keeps the work directory and lets hook panics through.
	Debug bool
}

// Prepare runs the XML pass: the document goes through its hooks and is
// written to the output folder, then every fragment split off on the way
// goes through the same hooks on its own.
func (c *Converter) Prepare(job Job) (*etree.Document, *hooks.ParseData, error) {
	log := c.Log.With(zap.String("file", job.FileName))

	doc, err := xmltree.ReadFile(job.Source, c.Entities)
	if err != nil {
		return nil, nil, err
	}
	hh, err := c.Hooks(job.FileName)
	if err != nil {
		return nil, nil, err
	}
	p := hooks.NewPipeline(log, hh...)
	p.Debug = c.Debug

	pd := hooks.NewParseData(c.Folder, job.FileName, filepath.Dir(job.Source), c.Entities)
	known := placeholders(doc.Root())
	root, err := p.Run(doc.Root(), pd)
	if err != nil {
		return nil, nil, err
	}
	if err := xmltree.WriteFile(doc, c.output(job.FileName)); err != nil {
		return nil, nil, err
	}
	log.Info("Migrated XML written", zap.String("to", c.output(job.FileName)))

	queue := fresh(root, known)
	for len(queue) > 0 {
		ref := queue[0]
		queue = queue[1:]
		more, err := c.prepareFragment(p, ref, pd.SourceDir)
		if err != nil {
			return nil, nil, err
		}
		queue = append(queue, more...)
	}
	return doc, pd, nil
}

// prepareFragment runs the pipeline on the fragment an entity placeholder
// refers to and returns the placeholders of the fragments it split off.
// Resources of the fragment are looked up next to the source document.
func (c *Converter) prepareFragment(p *hooks.Pipeline, ref *etree.Element, sourceDir string) ([]*etree.Element, error) {
	name := ref.SelectAttrValue("name", "")
	href := ref.SelectAttrValue("href", "")
	fn := c.output(href)
	frag, err := xmltree.ReadFile(fn, c.Entities)
	if err != nil {
		return nil, fmt.Errorf("entity %s: %w", name, err)
	}

	dummy := etree.NewElement(hooks.DummyTag)
	dummy.AddChild(frag.Root())
	known := placeholders(dummy)
	pd := hooks.NewParseData(c.Folder, href, sourceDir, c.Entities)
	out, err := p.Run(dummy, pd)
	if err != nil {
		return nil, err
	}

	top := out.ChildElements()
	if len(top) != 1 {
		return nil, fmt.Errorf("entity %s: fragment has %d top elements after the hooks ran", name, len(top))
	}
	frag.SetRoot(top[0])
	if err := xmltree.WriteFile(frag, fn); err != nil {
		return nil, err
	}
	c.Log.Debug("Fragment migrated", zap.String("entity", name), zap.String("file", href))
	return fresh(top[0], known), nil
}

// Convert migrates the document of job into <folder>/<dir>/<base>.rst.
func (c *Converter) Convert(ctx context.Context, job Job) error {
	doc, pd, err := c.Prepare(job)
	if err != nil {
		return err
	}

	work, err := os.MkdirTemp("", "dbrst-*")
	if err != nil {
		return err
	}
	if c.Debug {
		c.Log.Debug("Keeping work directory", zap.String("dir", work))
	} else {
		defer os.RemoveAll(work)
	}

	full := doc.Copy()
	if err := xmltree.ExpandEntities(full.Root(), c.Folder, c.Entities); err != nil {
		return err
	}
	base := pd.BaseName()
	xmlFn := filepath.Join(work, base+".xml")
	if err := xmltree.WriteFile(full, xmlFn); err != nil {
		return err
	}

	jsonFn := filepath.Join(work, base+".json")
	if err := c.Pandoc.DocbookToJSON(ctx, xmlFn, jsonFn); err != nil {
		return err
	}
	pdoc, err := pandoc.ReadFile(jsonFn)
	if err != nil {
		return err
	}
	marks := &MarkerCheck{}
	if err := pdoc.Filter(InjectFilter(), marks.Action()); err != nil {
		return fmt.Errorf("%s: %w", jsonFn, err)
	}
	if !marks.Balanced() {
		c.Log.Warn("Unbalanced flat-table markers", zap.String("file", job.FileName),
			zap.Int("start", marks.Start), zap.Int("end", marks.End))
	}
	filtered := filepath.Join(work, base+".filtered.json")
	if err := pdoc.WriteFile(filtered); err != nil {
		return err
	}

	rawFn := filepath.Join(work, base+".rst")
	if err := c.Pandoc.JSONToRST(ctx, filtered, rawFn); err != nil {
		return err
	}
	dst := pd.Prefix + ".rst"
	if err := rst.FixFile(rawFn, dst); err != nil {
		return err
	}
	c.Log.Info("Converted", zap.String("file", job.FileName), zap.String("to", dst))
	return nil
}

func (c *Converter) output(fname string) string {
	return filepath.Join(c.Folder, filepath.FromSlash(fname))
}

// placeholders returns the names of the entity placeholders below root.
func placeholders(root *etree.Element) map[string]bool {
	ret := map[string]bool{}
	for _, ref := range xmltree.Descendants(root, xmltree.EntityTag) {
		ret[ref.SelectAttrValue("name", "")] = true
	}
	return ret
}

// fresh returns the placeholders below root that are not in known, that
// is the ones left by chunking.
func fresh(root *etree.Element, known map[string]bool) []*etree.Element {
	var ret []*etree.Element
	for _, ref := range xmltree.Descendants(root, xmltree.EntityTag) {
		if !known[ref.SelectAttrValue("name", "")] {
			ret = append(ret, ref)
		}
	}
	return ret
}
