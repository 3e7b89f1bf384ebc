package hooks

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/adnsv/dbrst/entities"
	"github.com/adnsv/dbrst/xmltree"
	"github.com/beevik/etree"
	"go.uber.org/zap/zaptest"
)

func TestChunkByTag(t *testing.T) {
	log := zaptest.NewLogger(t)
	folder := t.TempDir()
	ents := entities.New("", log)
	pd := NewParseData(folder, "media/dev.xml", folder, ents)

	doc := parse(t, `<book><chapter id="intro"><title>I</title><section><para/></section></chapter><!-- c --><chapter><section/></chapter></book>`)
	h, err := ChunkByTag([]string{"chapter", "section"}, log)
	if err != nil {
		t.Fatal(err)
	}
	root := runHooks(t, doc, pd, h)

	// first matching path only: sections stay inside their chapters
	if got := ents.Names(); len(got) != 2 || got[0] != "dev-000-002" || got[1] != "intro" {
		t.Fatalf("entities = %v", got)
	}
	if v, _ := ents.Get("intro"); v != "media/intro.xml" {
		t.Errorf("intro -> %q", v)
	}
	refs := root.SelectElements(xmltree.EntityTag)
	if len(refs) != 2 || len(root.SelectElements("chapter")) != 0 {
		t.Fatalf("chapters not replaced: %s", render(t, root))
	}

	frag, err := xmltree.ReadFile(filepath.Join(folder, "media", "intro.xml"), ents)
	if err != nil {
		t.Fatal(err)
	}
	top := frag.Root()
	if top.SelectAttrValue(xmltree.ChunkAttr, "") != "intro" || top.SelectElement("section") == nil {
		t.Errorf("fragment: %s", render(t, top))
	}
	if _, err := os.Stat(filepath.Join(folder, "media", "dev-000-002.xml")); err != nil {
		t.Error(err)
	}

	t.Run("fragment", func(t *testing.T) {
		dummy := etree.NewElement(DummyTag)
		dummy.AddChild(top)
		fpd := NewParseData(folder, "media/intro.xml", folder, ents)
		h, err := ChunkByTag([]string{"section"}, log)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := NewPipeline(log, h).Run(dummy, fpd); err != nil {
			t.Fatal(err)
		}
		if v, ok := ents.Get("intro-000-001"); !ok || v != "media/intro-000-001.xml" {
			t.Errorf("section entity = %q, %v (have %v)", v, ok, ents.Names())
		}
		if top.SelectElement(xmltree.EntityTag) == nil {
			t.Errorf("section not replaced: %s", render(t, top))
		}
	})
}

func TestChunkByTagCollision(t *testing.T) {
	log := zaptest.NewLogger(t)
	folder := t.TempDir()
	ents := entities.New("", log)
	if err := ents.AddNew("intro", "media/elsewhere.xml"); err != nil {
		t.Fatal(err)
	}
	pd := NewParseData(folder, "media/dev.xml", folder, ents)
	h, _ := ChunkByTag([]string{"chapter"}, log)

	doc := parse(t, `<book><chapter id="intro"/></book>`)
	_, err := NewPipeline(log, h).Run(doc.Root(), pd)
	var ce *entities.CollisionError
	if !errors.As(err, &ce) || ce.Name != "intro" {
		t.Errorf("expected a collision, got %v", err)
	}
}

func TestChunkByTagBadPath(t *testing.T) {
	if _, err := ChunkByTag([]string{"chapter[@"}, zaptest.NewLogger(t)); err == nil {
		t.Error("expected an error for a malformed path")
	}
}
