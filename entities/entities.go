// Package entities keeps the persistent map of external entities (XML
// fragments split off by chunking) shared by all documents of a run.
package entities

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/adnsv/dbrst/files"
	ufs "github.com/adnsv/go-utils/fs"
	"go.uber.org/zap"
)

// CollisionError reports an entity name registered twice with different
// values.
type CollisionError struct {
	Name string
	Old  string
	New  string
}

func (e *CollisionError) Error() string {
	return fmt.Sprintf("entity name collision %q: old %q, new %q", e.Name, e.Old, e.New)
}

// Map is a name -> value map backed by a JSON file.
type Map struct {
	fn  string
	log *zap.Logger
	m   map[string]string
}

// New returns an empty map stored in fn. An empty fn keeps the map in
// memory only.
func New(fn string, log *zap.Logger) *Map {
	return &Map{fn: fn, log: log, m: map[string]string{}}
}

// Load reads the map stored in fn. A missing file yields an empty map.
func Load(fn string, log *zap.Logger) (*Map, error) {
	m := New(fn, log)
	if fn == "" || !ufs.FileExists(fn) {
		return m, nil
	}
	buf, err := os.ReadFile(fn)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(buf, &m.m); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", fn, ufs.JSONErrDetail(string(buf), err))
	}
	if m.m == nil {
		m.m = map[string]string{}
	}
	log.Debug("Entity map loaded", zap.String("file", fn), zap.Int("entities", len(m.m)))
	return m, nil
}

// AddNew registers name. Registering the same value again is tolerated, a
// different value is a *CollisionError.
func (m *Map) AddNew(name, value string) error {
	if old, ok := m.m[name]; ok {
		if old == value {
			m.log.Info("Entity already registered", zap.String("name", name), zap.String("value", value))
			return nil
		}
		return &CollisionError{Name: name, Old: old, New: value}
	}
	for other, v := range m.m {
		if v == value {
			m.log.Info("Entities share a value",
				zap.String("name", name), zap.String("other", other), zap.String("value", value))
		}
	}
	m.m[name] = value
	return nil
}

// Get returns the value registered for name.
func (m *Map) Get(name string) (string, bool) {
	if m == nil {
		return "", false
	}
	v, ok := m.m[name]
	return v, ok
}

func (m *Map) Len() int {
	return len(m.m)
}

// Names returns the registered names, sorted.
func (m *Map) Names() []string {
	ret := make([]string, 0, len(m.m))
	for k := range m.m {
		ret = append(ret, k)
	}
	sort.Strings(ret)
	return ret
}

// Save writes the map back to its file.
func (m *Map) Save() error {
	if m.fn == "" {
		return nil
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m.m); err != nil {
		return err
	}
	if err := files.WriteAtomic(m.fn, buf.Bytes()); err != nil {
		return fmt.Errorf("save entities: %w", err)
	}
	m.log.Debug("Entity map saved", zap.String("file", m.fn), zap.Int("entities", len(m.m)))
	return nil
}
