package database

import (
	"errors"
	"fmt"
	"log"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"snap-vault/model"
)

// sessionRowID the fixed primary key of the single tracked session
const sessionRowID = 1

// MySQLDatabase MySQL implementation over GORM
type MySQLDatabase struct {
	db *gorm.DB
}

// MySQLConfig MySQL configuration
type MySQLConfig struct {
	Dsn          string
	MaxOpenConns int
	MaxIdleConns int
}

// NewMySQLDatabase create MySQL database instance
func NewMySQLDatabase(config *MySQLConfig) (Database, error) {
	if config.Dsn == "" {
		return nil, errors.New("mysql dsn is empty")
	}

	db, err := gorm.Open(mysql.Open(config.Dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mysql: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(config.MaxOpenConns)
	sqlDB.SetMaxIdleConns(config.MaxIdleConns)

	if err := db.AutoMigrate(&model.VaultRecord{}, &model.UsernameEntry{}, &model.SessionRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate tables: %w", err)
	}

	log.Println("MySQL index connected successfully")
	return &MySQLDatabase{db: db}, nil
}

// SaveVaultRecord upsert a vault row
func (m *MySQLDatabase) SaveVaultRecord(record *model.VaultRecord) error {
	return m.db.Save(record).Error
}

// GetVaultRecord load a vault row by id
func (m *MySQLDatabase) GetVaultRecord(id uint64) (*model.VaultRecord, error) {
	var record model.VaultRecord
	err := m.db.First(&record, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

// ListVaultRecordsBySender vaults created by an address, newest first
func (m *MySQLDatabase) ListVaultRecordsBySender(address string) ([]*model.VaultRecord, error) {
	var records []*model.VaultRecord
	err := m.db.Where("sender_addr = ?", address).Order("created_at DESC").Find(&records).Error
	return records, err
}

// ListVaultRecordsByRecipient vaults received by an address, newest first
func (m *MySQLDatabase) ListVaultRecordsByRecipient(address string) ([]*model.VaultRecord, error) {
	var records []*model.VaultRecord
	err := m.db.Where("recipient_addr = ?", address).Order("created_at DESC").Find(&records).Error
	return records, err
}

// MarkVaultOpened flip the opened flag
func (m *MySQLDatabase) MarkVaultOpened(id uint64) error {
	return m.db.Model(&model.VaultRecord{}).Where("id = ?", id).Update("opened", true).Error
}

// SaveUsername upsert the address <-> username mapping
func (m *MySQLDatabase) SaveUsername(entry *model.UsernameEntry) error {
	return m.db.Save(entry).Error
}

// GetUsernameByAddress resolve address to username from the cache
func (m *MySQLDatabase) GetUsernameByAddress(address string) (string, error) {
	var entry model.UsernameEntry
	err := m.db.First(&entry, "address = ?", address).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}
	return entry.Username, nil
}

// GetAddressByUsername resolve username to address from the cache
func (m *MySQLDatabase) GetAddressByUsername(username string) (string, error) {
	var entry model.UsernameEntry
	err := m.db.First(&entry, "username = ?", username).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}
	return entry.Address, nil
}

// SaveSessionSnapshot persist the wallet session snapshot
func (m *MySQLDatabase) SaveSessionSnapshot(snapshot *model.SessionSnapshot) error {
	row := &model.SessionRecord{
		ID:      sessionRowID,
		Address: snapshot.Address,
		ChainID: snapshot.ChainID,
	}
	return m.db.Save(row).Error
}

// GetSessionSnapshot load the persisted session snapshot; nil when no
// session was saved.
func (m *MySQLDatabase) GetSessionSnapshot() (*model.SessionSnapshot, error) {
	var row model.SessionRecord
	err := m.db.First(&row, "id = ?", sessionRowID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &model.SessionSnapshot{Address: row.Address, ChainID: row.ChainID}, nil
}

// ClearSessionSnapshot drop the persisted session snapshot
func (m *MySQLDatabase) ClearSessionSnapshot() error {
	return m.db.Delete(&model.SessionRecord{}, "id = ?", sessionRowID).Error
}

// Close close the underlying connection pool
func (m *MySQLDatabase) Close() error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
