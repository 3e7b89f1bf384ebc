package hooks

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"

	"github.com/adnsv/dbrst/files"
	"github.com/adnsv/dbrst/xmltree"
	"github.com/beevik/etree"
	"go.uber.org/zap"
)

var ErrResourceNotFound = errors.New("resource not found")

// ResourceFolder is the folder next to a document holding its resources.
func ResourceFolder(base string) string {
	return base + "_files"
}

// CopyFileResource relocates every file referenced by a fileref attribute
// into <base>_files next to the migrated document and rewrites the
// reference. Files are looked up by base name below srcFolder, or below
// the folder of the source document when srcFolder is empty.
func CopyFileResource(srcFolder string, log *zap.Logger) *Hook {
	return &Hook{
		Name:     "copy-file-resource",
		Selector: AtRoot(),
		Func: func(node *etree.Element, pd *ParseData) (*etree.Element, error) {
			var refs []*etree.Element
			for _, e := range xmltree.Descendants(node, "") {
				if e.SelectAttr("fileref") != nil {
					refs = append(refs, e)
				}
			}
			if len(refs) == 0 {
				return node, nil
			}

			from := srcFolder
			if from == "" {
				from = pd.SourceDir
			}
			resDir := ResourceFolder(pd.BaseName())
			dstDir := filepath.Join(pd.Folder, filepath.FromSlash(pd.Dir()), resDir)

			for _, e := range refs {
				ref := e.SelectAttrValue("fileref", "")
				name := path.Base(filepath.ToSlash(ref))
				src, err := files.Find(from, name)
				if errors.Is(err, files.ErrNotFound) {
					return nil, fmt.Errorf("fileref %q in %s: %w", ref, from, ErrResourceNotFound)
				} else if err != nil {
					return nil, err
				}
				if err := files.CopyAtomic(src, filepath.Join(dstDir, name)); err != nil {
					return nil, fmt.Errorf("fileref %q: %w", ref, err)
				}
				e.CreateAttr("fileref", resDir+"/"+name)
				log.Debug("Copied resource", zap.String("from", src), zap.String("to", resDir+"/"+name))
			}
			return node, nil
		},
	}
}
