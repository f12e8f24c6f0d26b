package publisher

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
)

// LocalProvider content-addressed store on the local file system. Meant
// for development and tests; the "CID" is the hex sha256 of the content,
// which keeps the address-by-content property without a real network.
type LocalProvider struct {
	basePath string
}

// NewLocalProvider create local provider instance
func NewLocalProvider(basePath string) (*LocalProvider, error) {
	if basePath == "" {
		basePath = "./data/content"
	}

	// Ensure directory exists
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base path: %w", err)
	}

	return &LocalProvider{basePath: basePath}, nil
}

// Name provider name
func (p *LocalProvider) Name() string {
	return "local"
}

// Add store content keyed by its digest
func (p *LocalProvider) Add(ctx context.Context, filename string, data []byte) (string, error) {
	sum := sha256.Sum256(data)
	cid := hex.EncodeToString(sum[:])

	dir := filepath.Join(p.basePath, cid[:2])
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}
	if err := ioutil.WriteFile(filepath.Join(dir, cid), data, 0644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	return cid, nil
}

// Fetch read content back by digest
func (p *LocalProvider) Fetch(ctx context.Context, cid string) ([]byte, error) {
	if len(cid) < 2 {
		return nil, fmt.Errorf("invalid content key: %q", cid)
	}
	data, err := ioutil.ReadFile(filepath.Join(p.basePath, cid[:2], cid))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("content not found: %s", cid)
		}
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return data, nil
}
