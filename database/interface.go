package database

import (
	"snap-vault/conf"
	"snap-vault/model"
)

// Database interface for different database implementations. The local
// index is a cache of on-chain state plus the persisted wallet session
// snapshot; the chain stays the source of truth.
type Database interface {
	// Vault index operations
	SaveVaultRecord(record *model.VaultRecord) error
	GetVaultRecord(id uint64) (*model.VaultRecord, error)
	ListVaultRecordsBySender(address string) ([]*model.VaultRecord, error)
	ListVaultRecordsByRecipient(address string) ([]*model.VaultRecord, error)
	MarkVaultOpened(id uint64) error

	// Username cache operations
	SaveUsername(entry *model.UsernameEntry) error
	GetUsernameByAddress(address string) (string, error)
	GetAddressByUsername(username string) (string, error)

	// Session snapshot operations
	SaveSessionSnapshot(snapshot *model.SessionSnapshot) error
	GetSessionSnapshot() (*model.SessionSnapshot, error)
	ClearSessionSnapshot() error

	// General operations
	Close() error
}

// DBType database type
type DBType string

const (
	DBTypePebble DBType = "pebble"
	DBTypeMySQL  DBType = "mysql"
)

// InitDatabase create database instance by configuration
func InitDatabase() (Database, error) {
	switch DBType(conf.Cfg.Database.Type) {
	case DBTypePebble:
		return NewPebbleDatabase(&PebbleConfig{DataDir: conf.Cfg.Database.DataDir})
	case DBTypeMySQL:
		return NewMySQLDatabase(&MySQLConfig{
			Dsn:          conf.Cfg.Database.Dsn,
			MaxOpenConns: conf.Cfg.Database.MaxOpenConns,
			MaxIdleConns: conf.Cfg.Database.MaxIdleConns,
		})
	default:
		return nil, ErrUnsupportedDBType
	}
}
