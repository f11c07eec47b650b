// Package upload persists item images and hands back the reference that
// is stored on the item.
package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

var ErrInvalidName = errors.New("invalid upload file name")

type Store interface {
	Save(ctx context.Context, name string, body io.ReadSeeker) (string, error)
}

// cleanName keeps only the final path element of a client-supplied name.
func cleanName(name string) (string, error) {
	base := filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	if base == "." || base == ".." || base == "/" || base == "" {
		return "", ErrInvalidName
	}
	return base, nil
}

// DiskStore writes files under Dir using the client's file name, so a
// second upload with the same name replaces the first.
type DiskStore struct {
	dir       string
	urlPrefix string
}

func NewDiskStore(dir, urlPrefix string) *DiskStore {
	return &DiskStore{dir: dir, urlPrefix: urlPrefix}
}

func (d *DiskStore) Save(ctx context.Context, name string, body io.ReadSeeker) (string, error) {
	name, err := cleanName(name)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return "", fmt.Errorf("DiskStore.Save: %w", err)
	}
	f, err := os.Create(filepath.Join(d.dir, name))
	if err != nil {
		return "", fmt.Errorf("DiskStore.Save: %w", err)
	}
	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		return "", fmt.Errorf("DiskStore.Save: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("DiskStore.Save: %w", err)
	}
	return path.Join(d.urlPrefix, name), nil
}
