package hooks

import (
	"errors"
	"fmt"

	"github.com/adnsv/dbrst/config"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

var ErrUnknownHook = errors.New("unknown hook")

// Options carries the run wide settings some hooks depend on.
type Options struct {
	Resources string // source folder of fileref resources
}

// Build turns configured hook specs into hooks, in order.
func Build(specs []config.HookSpec, opts Options, log *zap.Logger) ([]*Hook, error) {
	ret := make([]*Hook, 0, len(specs))
	for i := range specs {
		h, err := build(&specs[i], opts, log)
		if err != nil {
			return nil, err
		}
		ret = append(ret, h)
	}
	return ret, nil
}

func build(spec *config.HookSpec, opts Options, log *zap.Logger) (*Hook, error) {
	switch spec.Name {
	case "copy-file-resource":
		return CopyFileResource(opts.Resources, log), nil

	case "chunk-by-tag":
		var paths []string
		if err := decodeList(spec, &paths); err != nil {
			return nil, err
		}
		if len(paths) == 0 {
			return nil, fmt.Errorf("hook %s: no paths given", spec.Name)
		}
		return ChunkByTag(paths, log)

	case "html2db-table":
		return HTML2DBTable(), nil

	case "fix-broken-tables":
		var p struct {
			IDs   []string `yaml:"ids"`
			Files []string `yaml:"files"`
		}
		if err := spec.Decode(&p); err != nil {
			return nil, err
		}
		return FixBrokenTables(p.IDs, p.Files, log), nil

	case "replace-tag":
		var pairs []IDTag
		if err := spec.Decode(&pairs); err != nil {
			return nil, err
		}
		for _, p := range pairs {
			if p.ID == "" || p.Tag == "" {
				return nil, fmt.Errorf("hook %s: both id and tag are required", spec.Name)
			}
		}
		return ReplaceTag(pairs), nil

	case "drop-useless-informaltables":
		return DropUselessInformalTables(), nil

	case "flatten-tables":
		if !spec.HasParams() || (spec.Params.Kind == yaml.ScalarNode && spec.Params.Value == "all") {
			return FlattenTables(nil, log), nil
		}
		var ids []string
		if err := decodeList(spec, &ids); err != nil {
			return nil, err
		}
		return FlattenTables(ids, log), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownHook, spec.Name)
}

// decodeList accepts a sequence or a single scalar.
func decodeList(spec *config.HookSpec, v *[]string) error {
	if spec.Params.Kind == yaml.ScalarNode {
		*v = []string{spec.Params.Value}
		return nil
	}
	return spec.Decode(v)
}
