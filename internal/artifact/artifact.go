// Package artifact implements the exchange of build outputs between the
// build and deploy stages. A Handle identifies exactly one published payload;
// stores enforce that the payload exists and is non-empty at publish time.
package artifact

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

var (
	ErrEmptyPayload = fmt.Errorf("artifact payload is empty")
	ErrNotFound     = fmt.Errorf("artifact not found")
)

// Handle identifies one published build output.
type Handle struct {
	// Name is the stable slot identifier, e.g. "app-jar".
	Name string `json:"name"`

	// Key is the store-specific object key of the payload.
	Key string `json:"key"`

	// Size is the payload size in bytes. Always > 0 for a published handle.
	Size int64 `json:"size"`

	// Digest is the hex-encoded SHA-256 of the payload.
	Digest string `json:"digest"`
}

// Store publishes and retrieves single-file artifact payloads.
type Store interface {
	// Publish uploads the file at 'path' into the named slot and returns its
	// handle. Publishing an empty file fails with ErrEmptyPayload.
	Publish(ctx context.Context, name, path string) (*Handle, error)

	// Retrieve downloads the handle's payload into 'destDir' and returns the
	// local path of the downloaded file.
	Retrieve(ctx context.Context, h *Handle, destDir string) (string, error)
}

// digestFile returns the file's size and hex-encoded SHA-256 digest.
func digestFile(path string) (int64, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, "", err
	}
	defer f.Close()

	hash := sha256.New()
	n, err := io.Copy(hash, f)
	if err != nil {
		return 0, "", fmt.Errorf("hashing artifact: %w", err)
	}
	return n, hex.EncodeToString(hash.Sum(nil)), nil
}
