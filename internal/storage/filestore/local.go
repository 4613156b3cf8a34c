// Package filestore implements invoice.FileStore on a local directory and on
// Google Cloud Storage.
package filestore

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/go-faster/errors"

	"github.com/xenking/sales-api/internal/domain/invoice"
)

var _ invoice.FileStore = (*Local)(nil)

// Local stores files under a root directory. Keys are slash-separated paths
// relative to the root.
type Local struct {
	root string
}

// NewLocal returns a Local store rooted at dir, creating it if needed.
func NewLocal(dir string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, errors.Wrapf(err, "create storage dir %s", dir)
	}
	return &Local{root: dir}, nil
}

func (l *Local) path(key string) (string, error) {
	rel := filepath.FromSlash(key)
	if !filepath.IsLocal(rel) {
		return "", errors.Errorf("invalid key %q", key)
	}
	return filepath.Join(l.root, rel), nil
}

// Open opens the file stored under key.
func (l *Local) Open(_ context.Context, key string) (*invoice.Blob, error) {
	p, err := l.path(key)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, invoice.ErrFileNotFound
		}
		return nil, errors.Wrap(err, "open")
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, errors.Wrap(err, "stat")
	}
	if info.IsDir() {
		_ = f.Close()
		return nil, invoice.ErrFileNotFound
	}

	return &invoice.Blob{Body: f, Size: info.Size()}, nil
}

// Put writes r under key. The file is written to a temporary name first and
// renamed into place, so readers never see partial content.
func (l *Local) Put(_ context.Context, key string, r io.Reader) error {
	p, err := l.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o750); err != nil {
		return errors.Wrap(err, "create dir")
	}

	tmp, err := os.CreateTemp(filepath.Dir(p), ".upload-*")
	if err != nil {
		return errors.Wrap(err, "create temp file")
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := io.Copy(tmp, r); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "write")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "close")
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		return errors.Wrap(err, "rename")
	}
	return nil
}

// Check verifies the root directory is accessible.
func (l *Local) Check(context.Context) error {
	info, err := os.Stat(l.root)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return errors.Errorf("%s is not a directory", l.root)
	}
	return nil
}
