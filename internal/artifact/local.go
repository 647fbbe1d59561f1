package artifact

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/someshbvrm/labsession/internal/log"
)

var _ Store = (*LocalStore)(nil)

// LocalStore keeps published artifacts under a root directory, one
// subdirectory per slot name. It is the default store for single-machine
// runs.
type LocalStore struct {
	root string
}

func NewLocalStore(root string) (*LocalStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("creating artifact store root: %w", err)
	}
	return &LocalStore{root: root}, nil
}

func (s *LocalStore) Publish(ctx context.Context, name, path string) (*Handle, error) {
	size, digest, err := digestFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading artifact payload: %w", err)
	}
	if size == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyPayload, path)
	}

	key := filepath.Join(name, filepath.Base(path))
	target := filepath.Join(s.root, key)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return nil, fmt.Errorf("creating artifact slot: %w", err)
	}

	if err := copyFile(path, target); err != nil {
		return nil, fmt.Errorf("publishing artifact: %w", err)
	}

	log.Info(ctx, "published artifact", "name", name, "key", key, "size", size)

	return &Handle{
		Name:   name,
		Key:    key,
		Size:   size,
		Digest: digest,
	}, nil
}

func (s *LocalStore) Retrieve(ctx context.Context, h *Handle, destDir string) (string, error) {
	source := filepath.Join(s.root, h.Key)
	if _, err := os.Stat(source); err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, h.Key)
		}
		return "", err
	}

	dest := filepath.Join(destDir, filepath.Base(h.Key))
	if err := copyFile(source, dest); err != nil {
		return "", fmt.Errorf("retrieving artifact: %w", err)
	}

	log.Debug(ctx, "retrieved artifact", "name", h.Name, "dest", dest)
	return dest, nil
}

func copyFile(src, dst string) error {
	r, err := os.Open(src)
	if err != nil {
		return err
	}
	defer r.Close()

	w, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}

	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}
