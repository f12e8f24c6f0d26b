package publisher

import (
	"context"
	"errors"

	"snap-vault/conf"
)

var (
	ErrInvalid = errors.New("invalid publisher configuration")
)

// Provider pins content and returns its CID. Implementations differ in
// where the bytes live (pinning service, self-hosted node, local disk);
// the publisher on top is identical for all of them.
type Provider interface {
	Name() string
	Add(ctx context.Context, filename string, data []byte) (string, error)
	Fetch(ctx context.Context, cid string) ([]byte, error)
}

// NewProvider create provider instance by configuration
func NewProvider() (Provider, error) {
	providerType := conf.Cfg.Publisher.Provider

	switch providerType {
	case "lighthouse":
		return NewLighthouseProvider(conf.Cfg.Publisher.Lighthouse.Endpoint,
			conf.Cfg.Publisher.Lighthouse.ApiKey, conf.Cfg.Publisher.Lighthouse.Gateway)
	case "ipfs":
		return NewIPFSProvider(conf.Cfg.Publisher.IPFS.ApiAddr)
	case "local":
		return NewLocalProvider(conf.Cfg.Publisher.Local.BasePath)
	default:
		// Default to local provider
		return NewLocalProvider(conf.Cfg.Publisher.Local.BasePath)
	}
}
