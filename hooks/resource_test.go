package hooks

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap/zaptest"
)

func TestCopyFileResource(t *testing.T) {
	src := t.TempDir()
	out := t.TempDir()
	if err := os.MkdirAll(filepath.Join(src, "img", "deep"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(src, "img", "deep", "logo.png"), []byte("png"), 0o644); err != nil {
		t.Fatal(err)
	}

	doc := parse(t, `<book><mediaobject><imagedata fileref="../images/logo.png"/></mediaobject></book>`)
	pd := NewParseData(out, "media/dev.xml", src, nil)
	root := runHooks(t, doc, pd, CopyFileResource("", zaptest.NewLogger(t)))

	img := root.FindElement(".//imagedata")
	if got := img.SelectAttrValue("fileref", ""); got != "dev_files/logo.png" {
		t.Errorf("fileref = %q", got)
	}
	buf, err := os.ReadFile(filepath.Join(out, "media", "dev_files", "logo.png"))
	if err != nil || string(buf) != "png" {
		t.Errorf("copied resource: %q, %v", buf, err)
	}
}

func TestCopyFileResourceMissing(t *testing.T) {
	doc := parse(t, `<book><imagedata fileref="gone.png"/></book>`)
	pd := NewParseData(t.TempDir(), "dev.xml", "", nil)
	_, err := NewPipeline(zaptest.NewLogger(t), CopyFileResource(t.TempDir(), zaptest.NewLogger(t))).Run(doc.Root(), pd)
	if !errors.Is(err, ErrResourceNotFound) {
		t.Errorf("expected ErrResourceNotFound, got %v", err)
	}
}

func TestResourceFolder(t *testing.T) {
	if got := ResourceFolder("dev"); got != "dev_files" {
		t.Errorf("ResourceFolder = %q", got)
	}
}
