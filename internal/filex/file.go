package filex

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
)

var ErrNotRegularFile = errors.New("not a regular file")

// EnsureParentDir creates the directory that will hold path.
func EnsureParentDir(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return nil
}

// Source is a local file prepared for upload.
type Source struct {
	Path        string
	Name        string
	Size        int64
	ContentType string
}

// Open returns a fresh reader over the file.
func (s Source) Open() (io.ReadCloser, error) {
	return os.Open(s.Path)
}

// Stat inspects path. The content type comes from the extension, else from
// sniffing the file head.
func Stat(path string) (Source, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return Source{}, err
	}
	if !fi.Mode().IsRegular() {
		return Source{}, fmt.Errorf("%s: %w", path, ErrNotRegularFile)
	}

	ct := mime.TypeByExtension(filepath.Ext(path))
	if ct == "" {
		mt, err := mimetype.DetectFile(path)
		if err != nil {
			return Source{}, fmt.Errorf("detect content type: %w", err)
		}
		ct = mt.String()
	}

	return Source{
		Path:        path,
		Name:        filepath.Base(path),
		Size:        fi.Size(),
		ContentType: ct,
	}, nil
}
