package config

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const DefaultTimeout = 5 * time.Minute

type Config struct {
	Pandoc    string         `yaml:"pandoc"`
	Timeout   time.Duration  `yaml:"timeout"`
	Folder    string         `yaml:"folder"`
	Resources string         `yaml:"resources"`
	Entities  string         `yaml:"entities"`
	Documents []DocumentRule `yaml:"documents"`
}

// DocumentRule selects the hook list for the documents matching a glob.
type DocumentRule struct {
	Match string     `yaml:"match"`
	Hooks []HookSpec `yaml:"hooks"`
}

// HookSpec names a hook and keeps its parameters undecoded. In YAML it is
// either a bare name or a single-key map from name to parameters:
//
//	hooks: [html2db-table, {flatten-tables: [t1, t2]}]
type HookSpec struct {
	Name   string
	Params yaml.Node
}

func (h *HookSpec) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.ScalarNode:
		h.Name = n.Value
	case yaml.MappingNode:
		if len(n.Content) != 2 {
			return fmt.Errorf("line %d: hook entry must have exactly one name", n.Line)
		}
		h.Name = n.Content[0].Value
		h.Params = *n.Content[1]
	default:
		return fmt.Errorf("line %d: invalid hook entry", n.Line)
	}
	if h.Name == "" {
		return fmt.Errorf("line %d: empty hook name", n.Line)
	}
	return nil
}

// HasParams reports whether parameters were given.
func (h *HookSpec) HasParams() bool {
	return h.Params.Kind != 0
}

// Decode decodes the parameters into v. Without parameters v is left
// untouched.
func (h *HookSpec) Decode(v any) error {
	if !h.HasParams() {
		return nil
	}
	if err := h.Params.Decode(v); err != nil {
		return fmt.Errorf("hook %s: %w", h.Name, err)
	}
	return nil
}

// Hook builds a spec with a scalar parameter.
func Hook(name, param string) HookSpec {
	h := HookSpec{Name: name}
	if param != "" {
		h.Params = yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: param}
	}
	return h
}

// DefaultHooks apply to documents no rule matches.
func DefaultHooks() []HookSpec {
	return []HookSpec{Hook("flatten-tables", "all")}
}

func Default() *Config {
	return &Config{
		Pandoc:  "pandoc",
		Timeout: DefaultTimeout,
		Folder:  ".",
	}
}

// Load reads a YAML configuration file on top of the defaults.
func Load(fn string) (*Config, error) {
	buf, err := os.ReadFile(fn)
	if err != nil {
		return nil, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(buf, cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", fn, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", fn, err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Pandoc == "" {
		return fmt.Errorf("pandoc executable is not set")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("invalid timeout %s", c.Timeout)
	}
	if c.Folder == "" {
		return fmt.Errorf("output folder is not set")
	}
	for i, r := range c.Documents {
		if _, err := path.Match(r.Match, ""); err != nil {
			return fmt.Errorf("documents[%d]: bad pattern %q", i, r.Match)
		}
	}
	return nil
}

// HooksFor returns the hook list of the first rule matching fn, tried
// against the slash separated path first and the base name second.
func (c *Config) HooksFor(fn string) []HookSpec {
	fn = filepath.ToSlash(fn)
	for _, r := range c.Documents {
		if ok, _ := path.Match(r.Match, fn); ok {
			return r.Hooks
		}
		if ok, _ := path.Match(r.Match, path.Base(fn)); ok {
			return r.Hooks
		}
	}
	return DefaultHooks()
}
