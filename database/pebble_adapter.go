package database

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"

	"github.com/cockroachdb/pebble"

	"snap-vault/model"
)

// PebbleDatabase PebbleDB implementation with one collection per index
type PebbleDatabase struct {
	collections map[string]*pebble.DB
}

// PebbleConfig PebbleDB configuration
type PebbleConfig struct {
	DataDir string
}

// Collection names and their key-value formats
const (
	collectionVault          = "vault"           // key: {vault_id %020d}, value: JSON(VaultRecord)
	collectionVaultSender    = "vault_sender"    // key: {sender_addr}:{vault_id %020d}, value: JSON(VaultRecord)
	collectionVaultRecipient = "vault_recipient" // key: {recipient_addr}:{vault_id %020d}, value: JSON(VaultRecord)
	collectionUsernameAddr   = "username_addr"   // key: {address}, value: JSON(UsernameEntry)
	collectionUsernameName   = "username_name"   // key: {username}, value: JSON(UsernameEntry)
	collectionSession        = "session"         // key: "current", value: JSON(SessionSnapshot)
)

const keySession = "current"

// NewPebbleDatabase create PebbleDB database instance
func NewPebbleDatabase(config *PebbleConfig) (Database, error) {
	if err := os.MkdirAll(config.DataDir, 0777); err != nil {
		return nil, fmt.Errorf("failed to create data directory %s: %w", config.DataDir, err)
	}

	collectionNames := []string{
		collectionVault,
		collectionVaultSender,
		collectionVaultRecipient,
		collectionUsernameAddr,
		collectionUsernameName,
		collectionSession,
	}

	collections := make(map[string]*pebble.DB)
	for _, name := range collectionNames {
		collectionPath := filepath.Join(config.DataDir, "vault_db", name)
		db, err := pebble.Open(collectionPath, &pebble.Options{})
		if err != nil {
			for _, openedDB := range collections {
				openedDB.Close()
			}
			return nil, fmt.Errorf("failed to open collection %s at %s: %w", name, collectionPath, err)
		}
		collections[name] = db
	}

	log.Printf("PebbleDB index connected: %s (%d collections)", config.DataDir, len(collections))
	return &PebbleDatabase{collections: collections}, nil
}

// put marshal and store a value in a collection
func (p *PebbleDatabase) put(collection, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value for %s: %w", collection, err)
	}
	if err := p.collections[collection].Set([]byte(key), data, pebble.Sync); err != nil {
		return fmt.Errorf("failed to write %s/%s: %w", collection, key, err)
	}
	return nil
}

// get load and unmarshal a value from a collection
func (p *PebbleDatabase) get(collection, key string, value interface{}) error {
	data, closer, err := p.collections[collection].Get([]byte(key))
	if err != nil {
		if err == pebble.ErrNotFound {
			return ErrNotFound
		}
		return fmt.Errorf("failed to read %s/%s: %w", collection, key, err)
	}
	defer closer.Close()
	return json.Unmarshal(data, value)
}

func vaultKey(id uint64) string {
	return fmt.Sprintf("%020d", id)
}

// SaveVaultRecord upsert a vault row in the primary and both
// per-address collections.
func (p *PebbleDatabase) SaveVaultRecord(record *model.VaultRecord) error {
	if err := p.put(collectionVault, vaultKey(record.ID), record); err != nil {
		return err
	}
	if record.SenderAddr != "" {
		if err := p.put(collectionVaultSender, record.SenderAddr+":"+vaultKey(record.ID), record); err != nil {
			return err
		}
	}
	if record.RecipientAddr != "" {
		if err := p.put(collectionVaultRecipient, record.RecipientAddr+":"+vaultKey(record.ID), record); err != nil {
			return err
		}
	}
	return nil
}

// GetVaultRecord load a vault row by id
func (p *PebbleDatabase) GetVaultRecord(id uint64) (*model.VaultRecord, error) {
	var record model.VaultRecord
	if err := p.get(collectionVault, vaultKey(id), &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// listByPrefix collect all records under an address prefix
func (p *PebbleDatabase) listByPrefix(collection, address string) ([]*model.VaultRecord, error) {
	prefix := address + ":"
	iter, err := p.collections[collection].NewIter(&pebble.IterOptions{
		LowerBound: []byte(prefix),
		UpperBound: []byte(address + ";"), // ';' is ':'+1
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open iterator on %s: %w", collection, err)
	}
	defer iter.Close()

	var records []*model.VaultRecord
	for iter.First(); iter.Valid(); iter.Next() {
		var record model.VaultRecord
		if err := json.Unmarshal(iter.Value(), &record); err != nil {
			return nil, fmt.Errorf("corrupt row %s/%s: %w", collection, iter.Key(), err)
		}
		records = append(records, &record)
	}

	// Newest first for display
	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt > records[j].CreatedAt
	})
	return records, nil
}

// ListVaultRecordsBySender vaults created by an address, newest first
func (p *PebbleDatabase) ListVaultRecordsBySender(address string) ([]*model.VaultRecord, error) {
	return p.listByPrefix(collectionVaultSender, address)
}

// ListVaultRecordsByRecipient vaults received by an address, newest first
func (p *PebbleDatabase) ListVaultRecordsByRecipient(address string) ([]*model.VaultRecord, error) {
	return p.listByPrefix(collectionVaultRecipient, address)
}

// MarkVaultOpened flip the opened flag; the flag is monotonic so the
// update never goes the other way.
func (p *PebbleDatabase) MarkVaultOpened(id uint64) error {
	record, err := p.GetVaultRecord(id)
	if err != nil {
		return err
	}
	record.Opened = true
	return p.SaveVaultRecord(record)
}

// SaveUsername store both directions of the address <-> username mapping
func (p *PebbleDatabase) SaveUsername(entry *model.UsernameEntry) error {
	if err := p.put(collectionUsernameAddr, entry.Address, entry); err != nil {
		return err
	}
	return p.put(collectionUsernameName, entry.Username, entry)
}

// GetUsernameByAddress resolve address to username from the cache
func (p *PebbleDatabase) GetUsernameByAddress(address string) (string, error) {
	var entry model.UsernameEntry
	if err := p.get(collectionUsernameAddr, address, &entry); err != nil {
		return "", err
	}
	return entry.Username, nil
}

// GetAddressByUsername resolve username to address from the cache
func (p *PebbleDatabase) GetAddressByUsername(username string) (string, error) {
	var entry model.UsernameEntry
	if err := p.get(collectionUsernameName, username, &entry); err != nil {
		return "", err
	}
	return entry.Address, nil
}

// SaveSessionSnapshot persist the wallet session snapshot
func (p *PebbleDatabase) SaveSessionSnapshot(snapshot *model.SessionSnapshot) error {
	return p.put(collectionSession, keySession, snapshot)
}

// GetSessionSnapshot load the persisted session snapshot; nil when no
// session was saved.
func (p *PebbleDatabase) GetSessionSnapshot() (*model.SessionSnapshot, error) {
	var snapshot model.SessionSnapshot
	if err := p.get(collectionSession, keySession, &snapshot); err != nil {
		if err == ErrNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &snapshot, nil
}

// ClearSessionSnapshot drop the persisted session snapshot
func (p *PebbleDatabase) ClearSessionSnapshot() error {
	err := p.collections[collectionSession].Delete([]byte(keySession), pebble.Sync)
	if err != nil {
		return fmt.Errorf("failed to clear session snapshot: %w", err)
	}
	return nil
}

// Close close all collections
func (p *PebbleDatabase) Close() error {
	var lastErr error
	for name, db := range p.collections {
		if err := db.Close(); err != nil {
			log.Printf("Failed to close collection %s: %v", name, err)
			lastErr = err
		}
	}
	return lastErr
}
