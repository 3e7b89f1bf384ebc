// Package files holds the small filesystem helpers shared by the hooks, the
// entity map and the converter: every file the tool produces is written to
// a temporary file next to its destination and renamed into place.
package files

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	ufs "github.com/adnsv/go-utils/fs"
)

var ErrNotFound = errors.New("file not found")

// WriteAtomic writes buf to fn through a temporary file in the same
// directory. The temporary file is removed when anything fails.
func WriteAtomic(fn string, buf []byte) error {
	return writeAtomic(fn, func(w io.Writer) error {
		_, err := w.Write(buf)
		return err
	})
}

// CopyAtomic copies src to dst, creating the destination folder.
func CopyAtomic(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	return writeAtomic(dst, func(w io.Writer) error {
		_, err := io.Copy(w, in)
		return err
	})
}

func writeAtomic(fn string, fill func(w io.Writer) error) (err error) {
	dir := filepath.Dir(fn)
	if err = os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(fn)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()
	if err = fill(tmp); err != nil {
		return fmt.Errorf("write %s: %w", fn, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", fn, err)
	}
	if err = os.Rename(tmp.Name(), fn); err != nil {
		return fmt.Errorf("rename %s: %w", fn, err)
	}
	return nil
}

// Find walks root in lexical order and returns the path of the first regular
// file named name.
func Find(root, name string) (string, error) {
	if !ufs.DirExists(root) {
		return "", fmt.Errorf("%s: %w", root, fs.ErrNotExist)
	}
	found := ""
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && d.Name() == name {
			found = path
			return fs.SkipAll
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	if found == "" {
		return "", fmt.Errorf("%s in %s: %w", name, root, ErrNotFound)
	}
	return found, nil
}

// TrimExt strips the extension from a file name.
func TrimExt(fn string) string {
	return strings.TrimSuffix(fn, filepath.Ext(fn))
}
