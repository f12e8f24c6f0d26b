package publisher

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/ipfs/boxo/files"
	"github.com/ipfs/boxo/path"
	"github.com/ipfs/kubo/client/rpc"
	ma "github.com/multiformats/go-multiaddr"
)

// IPFSProvider pinning on a self-hosted Kubo node over its RPC API
type IPFSProvider struct {
	api *rpc.HttpApi
}

// NewIPFSProvider connect to the Kubo RPC endpoint; an empty multiaddr
// falls back to the node's local default.
func NewIPFSProvider(apiAddr string) (*IPFSProvider, error) {
	if apiAddr == "" {
		api, err := rpc.NewLocalApi()
		if err != nil {
			return nil, fmt.Errorf("failed to connect to local ipfs node: %w", err)
		}
		return &IPFSProvider{api: api}, nil
	}

	addr, err := ma.NewMultiaddr(apiAddr)
	if err != nil {
		return nil, fmt.Errorf("invalid ipfs api multiaddr %q: %w", apiAddr, err)
	}
	api, err := rpc.NewApi(addr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ipfs node: %w", err)
	}
	return &IPFSProvider{api: api}, nil
}

// Name provider name
func (p *IPFSProvider) Name() string {
	return "ipfs"
}

// Add store content in the node's UnixFS layer and pin it so garbage
// collection cannot drop it.
func (p *IPFSProvider) Add(ctx context.Context, filename string, data []byte) (string, error) {
	cidPath, err := p.api.Unixfs().Add(ctx, files.NewBytesFile(data))
	if err != nil {
		return "", fmt.Errorf("ipfs add failed: %w", err)
	}
	if err := p.api.Pin().Add(ctx, cidPath); err != nil {
		return "", fmt.Errorf("ipfs pin failed: %w", err)
	}
	return cidPath.RootCid().String(), nil
}

// Fetch read content back from the node by CID
func (p *IPFSProvider) Fetch(ctx context.Context, cid string) ([]byte, error) {
	if !strings.HasPrefix(cid, "/ipfs/") {
		cid = "/ipfs/" + cid
	}
	cidPath, err := path.NewPath(cid)
	if err != nil {
		return nil, fmt.Errorf("invalid cid path: %w", err)
	}

	node, err := p.api.Unixfs().Get(ctx, cidPath)
	if err != nil {
		return nil, fmt.Errorf("ipfs get failed: %w", err)
	}

	file, ok := node.(files.File)
	if !ok {
		return nil, fmt.Errorf("unexpected ipfs node type: %T", node)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read ipfs content: %w", err)
	}
	return data, nil
}
