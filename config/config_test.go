package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const sample = `
pandoc: /usr/local/bin/pandoc
timeout: 30s
folder: out
resources: images
documents:
  - match: "media/*.xml"
    hooks:
      - html2db-table
      - chunk-by-tag: [chapter, section]
      - fix-broken-tables: {ids: [t1], files: [media/dev]}
      - flatten-tables: all
  - match: "*.xml"
    hooks:
      - drop-useless-informaltables
`

func write(t *testing.T, s string) string {
	t.Helper()
	fn := filepath.Join(t.TempDir(), "dbrst.yaml")
	if err := os.WriteFile(fn, []byte(s), 0o644); err != nil {
		t.Fatal(err)
	}
	return fn
}

func TestLoad(t *testing.T) {
	cfg, err := Load(write(t, sample))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Pandoc != "/usr/local/bin/pandoc" || cfg.Timeout != 30*time.Second {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Folder != "out" || cfg.Resources != "images" || cfg.Entities != "" {
		t.Errorf("folders = %+v", cfg)
	}

	hooks := cfg.HooksFor("media/dev.xml")
	var names []string
	for _, h := range hooks {
		names = append(names, h.Name)
	}
	if got := strings.Join(names, ","); got != "html2db-table,chunk-by-tag,fix-broken-tables,flatten-tables" {
		t.Fatalf("hooks = %s", got)
	}
	if hooks[0].HasParams() {
		t.Error("html2db-table has parameters")
	}

	var paths []string
	if err := hooks[1].Decode(&paths); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if strings.Join(paths, ",") != "chapter,section" {
		t.Errorf("paths = %v", paths)
	}

	var fix struct {
		IDs   []string `yaml:"ids"`
		Files []string `yaml:"files"`
	}
	if err := hooks[2].Decode(&fix); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(fix.IDs) != 1 || fix.Files[0] != "media/dev" {
		t.Errorf("fix = %+v", fix)
	}
}

func TestHooksForFallbacks(t *testing.T) {
	cfg, err := Load(write(t, sample))
	if err != nil {
		t.Fatal(err)
	}
	if h := cfg.HooksFor("other/x.xml"); len(h) != 1 || h[0].Name != "drop-useless-informaltables" {
		t.Errorf("base name rule not applied: %+v", h)
	}
	h := cfg.HooksFor("notes.txt")
	if len(h) != 1 || h[0].Name != "flatten-tables" || h[0].Params.Value != "all" {
		t.Errorf("default hooks = %+v", h)
	}
}

func TestDefaults(t *testing.T) {
	cfg, err := Load(write(t, "folder: x\n"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Pandoc != "pandoc" || cfg.Timeout != DefaultTimeout {
		t.Errorf("defaults lost: %+v", cfg)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := map[string]string{
		"bad timeout":  "timeout: -1s\n",
		"two names":    "documents:\n  - match: a\n    hooks:\n      - {a: 1, b: 2}\n",
		"list entry":   "documents:\n  - match: a\n    hooks:\n      - [a]\n",
		"bad pattern":  "documents:\n  - match: \"[\"\n",
		"bad duration": "timeout: soon\n",
	}
	for name, s := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := Load(write(t, s)); err == nil {
				t.Error("expected an error")
			}
		})
	}
}
