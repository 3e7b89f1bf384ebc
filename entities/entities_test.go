package entities

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestAddNew(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	m := New("", zap.New(core))

	if err := m.AddNew("intro", "media/intro.xml"); err != nil {
		t.Fatalf("AddNew: %v", err)
	}
	if err := m.AddNew("intro", "media/intro.xml"); err != nil {
		t.Errorf("identical re-add failed: %v", err)
	}
	if logs.FilterMessage("Entity already registered").Len() != 1 {
		t.Errorf("identical re-add not logged")
	}

	err := m.AddNew("intro", "media/other.xml")
	var ce *CollisionError
	if !errors.As(err, &ce) {
		t.Fatalf("expected *CollisionError, got %v", err)
	}
	if ce.Old != "media/intro.xml" || ce.New != "media/other.xml" {
		t.Errorf("collision = %+v", ce)
	}
	if v, _ := m.Get("intro"); v != "media/intro.xml" {
		t.Errorf("collision overwrote value: %q", v)
	}

	if err := m.AddNew("alias", "media/intro.xml"); err != nil {
		t.Fatalf("AddNew(alias): %v", err)
	}
	if logs.FilterMessage("Entities share a value").Len() != 1 {
		t.Errorf("shared value not logged")
	}
	if got := strings.Join(m.Names(), ","); got != "alias,intro" {
		t.Errorf("Names = %s", got)
	}
}

func TestSaveLoad(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "out", "entities.json")
	log := zap.NewNop()

	m, err := Load(fn, log)
	if err != nil {
		t.Fatalf("Load(missing): %v", err)
	}
	if m.Len() != 0 {
		t.Fatalf("expected an empty map")
	}
	m.AddNew("café", "media/<x>.xml")
	if err := m.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}
	buf, _ := os.ReadFile(fn)
	if !strings.Contains(string(buf), `"café": "media/<x>.xml"`) {
		t.Errorf("saved JSON escapes text:\n%s", buf)
	}

	m2, err := Load(fn, log)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if v, ok := m2.Get("café"); !ok || v != "media/<x>.xml" {
		t.Errorf("Get = %q, %v", v, ok)
	}
}

func TestLoadBroken(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "entities.json")
	os.WriteFile(fn, []byte("{\n  \"a\": 1\n}"), 0o644)
	_, err := Load(fn, zap.NewNop())
	if err == nil || !strings.Contains(err.Error(), "line") {
		t.Errorf("expected a positioned parse error, got %v", err)
	}
}

func TestNilMapGet(t *testing.T) {
	var m *Map
	if _, ok := m.Get("x"); ok {
		t.Error("nil map resolved a name")
	}
}
