package conf

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config application configuration structure
type Config struct {
	// Network configuration
	Net  string // mainnet/testnet
	Port string // HTTP API port

	// Chain configuration
	Chain ChainConfig

	// Wallet bridge configuration
	Bridge BridgeConfig

	// Content publisher configuration
	Publisher PublisherConfig

	// Local index database configuration
	Database DatabaseConfig

	// Redis configuration
	Redis RedisConfig

	// Index backfill configuration
	Backfill BackfillConfig
}

// ChainConfig EVM chain configuration
type ChainConfig struct {
	RpcUrl                string // JSON-RPC endpoint
	ChainID               int64  // Expected chain identifier
	ContractAddress       string // Vault contract address (0x...)
	ReceiptPollIntervalMs int    // Receipt polling interval in milliseconds
	ReceiptMaxAttempts    int    // Receipt polling attempt count
}

// BridgeConfig wallet bridge (relay) configuration
type BridgeConfig struct {
	RelayUrl           string // Relay websocket URL
	ApprovalTimeoutSec int    // How long to wait for the human approval in the wallet app
}

// LighthouseConfig Lighthouse pinning provider configuration
type LighthouseConfig struct {
	Endpoint string // Upload endpoint
	ApiKey   string // API key
	Gateway  string // Primary read gateway base, e.g. https://gateway.lighthouse.storage/ipfs
}

// IPFSConfig self-hosted IPFS node provider configuration
type IPFSConfig struct {
	ApiAddr string // Kubo RPC multiaddr, e.g. /ip4/127.0.0.1/tcp/5001; empty = local default
	Gateway string // Read gateway base for this node
}

// LocalProviderConfig local content store configuration (dev/test)
type LocalProviderConfig struct {
	BasePath string
}

// S3MirrorConfig AWS S3 mirror configuration
type S3MirrorConfig struct {
	Region    string
	Endpoint  string // Optional custom endpoint
	AccessKey string
	SecretKey string
	Bucket    string
	Domain    string // Public base URL serving the bucket
}

// OSSMirrorConfig Alibaba Cloud OSS mirror configuration
type OSSMirrorConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Domain    string // Public base URL serving the bucket
}

// MirrorConfig accelerated read mirror configuration
type MirrorConfig struct {
	Type string // "" (disabled), "s3" or "oss"
	S3   S3MirrorConfig
	OSS  OSSMirrorConfig
}

// PublisherConfig content publisher configuration
type PublisherConfig struct {
	Provider   string // lighthouse/ipfs/local
	Lighthouse LighthouseConfig
	IPFS       IPFSConfig
	Local      LocalProviderConfig
	Gateways   []string // Public fallback gateway bases, tried after the primary
	Mirror     MirrorConfig
}

// DatabaseConfig local index database configuration
type DatabaseConfig struct {
	Type         string // pebble/mysql
	Dsn          string // MySQL DSN
	MaxOpenConns int    // MySQL max open connections
	MaxIdleConns int    // MySQL max idle connections
	DataDir      string // PebbleDB data directory
}

// RedisConfig redis configuration
type RedisConfig struct {
	Enabled  bool   // Enable Redis cache
	Host     string // Redis host
	Port     int    // Redis port
	Password string // Redis password (optional)
	DB       int    // Redis database number
	CacheTTL int    // Cache TTL in seconds (default: 300)
}

// BackfillConfig index backfill configuration
type BackfillConfig struct {
	Enabled   bool     // Rebuild the local index on startup
	Addresses []string // Addresses whose sent/received vaults are indexed
}

// Cfg global configuration instance
var Cfg *Config

// InitConfig initialize configuration
func InitConfig() error {
	viper.SetConfigFile(GetYaml())
	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("Fatal error config file: %s", err)
	}

	Cfg = &Config{
		Net:  viper.GetString("net"),
		Port: viper.GetString("port"),

		Chain: ChainConfig{
			RpcUrl:                viper.GetString("chain.rpc_url"),
			ChainID:               viper.GetInt64("chain.chain_id"),
			ContractAddress:       viper.GetString("chain.contract_address"),
			ReceiptPollIntervalMs: viper.GetInt("chain.receipt_poll_interval_ms"),
			ReceiptMaxAttempts:    viper.GetInt("chain.receipt_max_attempts"),
		},

		Bridge: BridgeConfig{
			RelayUrl:           viper.GetString("bridge.relay_url"),
			ApprovalTimeoutSec: viper.GetInt("bridge.approval_timeout_sec"),
		},

		Publisher: PublisherConfig{
			Provider: viper.GetString("publisher.provider"),
			Lighthouse: LighthouseConfig{
				Endpoint: viper.GetString("publisher.lighthouse.endpoint"),
				ApiKey:   viper.GetString("publisher.lighthouse.api_key"),
				Gateway:  viper.GetString("publisher.lighthouse.gateway"),
			},
			IPFS: IPFSConfig{
				ApiAddr: viper.GetString("publisher.ipfs.api_addr"),
				Gateway: viper.GetString("publisher.ipfs.gateway"),
			},
			Local: LocalProviderConfig{
				BasePath: viper.GetString("publisher.local.base_path"),
			},
			Gateways: viper.GetStringSlice("publisher.gateways"),
			Mirror: MirrorConfig{
				Type: viper.GetString("publisher.mirror.type"),
				S3: S3MirrorConfig{
					Region:    viper.GetString("publisher.mirror.s3.region"),
					Endpoint:  viper.GetString("publisher.mirror.s3.endpoint"),
					AccessKey: viper.GetString("publisher.mirror.s3.access_key"),
					SecretKey: viper.GetString("publisher.mirror.s3.secret_key"),
					Bucket:    viper.GetString("publisher.mirror.s3.bucket"),
					Domain:    viper.GetString("publisher.mirror.s3.domain"),
				},
				OSS: OSSMirrorConfig{
					Endpoint:  viper.GetString("publisher.mirror.oss.endpoint"),
					AccessKey: viper.GetString("publisher.mirror.oss.access_key"),
					SecretKey: viper.GetString("publisher.mirror.oss.secret_key"),
					Bucket:    viper.GetString("publisher.mirror.oss.bucket"),
					Domain:    viper.GetString("publisher.mirror.oss.domain"),
				},
			},
		},

		Database: DatabaseConfig{
			Type:         viper.GetString("database.type"),
			Dsn:          viper.GetString("database.dsn"),
			MaxOpenConns: viper.GetInt("database.max_open_conns"),
			MaxIdleConns: viper.GetInt("database.max_idle_conns"),
			DataDir:      viper.GetString("database.data_dir"),
		},

		Redis: RedisConfig{
			Enabled:  viper.GetBool("redis.enabled"),
			Host:     viper.GetString("redis.host"),
			Port:     viper.GetInt("redis.port"),
			Password: viper.GetString("redis.password"),
			DB:       viper.GetInt("redis.db"),
			CacheTTL: viper.GetInt("redis.cache_ttl"),
		},

		Backfill: BackfillConfig{
			Enabled:   viper.GetBool("backfill.enabled"),
			Addresses: viper.GetStringSlice("backfill.addresses"),
		},
	}

	// Set default values
	if Cfg.Port == "" {
		Cfg.Port = "7290"
	}
	if Cfg.Chain.ReceiptPollIntervalMs == 0 {
		Cfg.Chain.ReceiptPollIntervalMs = 2000
	}
	if Cfg.Chain.ReceiptMaxAttempts == 0 {
		Cfg.Chain.ReceiptMaxAttempts = 30
	}
	if Cfg.Bridge.ApprovalTimeoutSec == 0 {
		Cfg.Bridge.ApprovalTimeoutSec = 120
	}
	if Cfg.Publisher.Provider == "" {
		Cfg.Publisher.Provider = "local"
	}
	if Cfg.Publisher.Lighthouse.Endpoint == "" {
		Cfg.Publisher.Lighthouse.Endpoint = "https://node.lighthouse.storage/api/v0/add"
	}
	if Cfg.Publisher.Lighthouse.Gateway == "" {
		Cfg.Publisher.Lighthouse.Gateway = "https://gateway.lighthouse.storage/ipfs"
	}
	if Cfg.Publisher.Local.BasePath == "" {
		Cfg.Publisher.Local.BasePath = "./data/content"
	}
	if len(Cfg.Publisher.Gateways) == 0 {
		Cfg.Publisher.Gateways = []string{
			"https://ipfs.io/ipfs",
			"https://cloudflare-ipfs.com/ipfs",
			"https://dweb.link/ipfs",
			"https://gateway.pinata.cloud/ipfs",
		}
	}
	if Cfg.Database.Type == "" {
		Cfg.Database.Type = "pebble"
	}
	if Cfg.Database.DataDir == "" {
		Cfg.Database.DataDir = "./data/index"
	}
	if Cfg.Database.MaxOpenConns == 0 {
		Cfg.Database.MaxOpenConns = 100
	}
	if Cfg.Database.MaxIdleConns == 0 {
		Cfg.Database.MaxIdleConns = 10
	}
	if Cfg.Redis.CacheTTL == 0 {
		Cfg.Redis.CacheTTL = 300
	}

	return nil
}

// PrimaryGateway return the read gateway base of the active provider
func PrimaryGateway() string {
	if Cfg == nil {
		return ""
	}
	switch Cfg.Publisher.Provider {
	case "ipfs":
		if Cfg.Publisher.IPFS.Gateway != "" {
			return Cfg.Publisher.IPFS.Gateway
		}
	case "lighthouse":
		return Cfg.Publisher.Lighthouse.Gateway
	}
	return Cfg.Publisher.Lighthouse.Gateway
}
