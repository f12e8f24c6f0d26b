package database

import (
	"testing"

	"snap-vault/model"
)

func newTestPebble(t *testing.T) Database {
	t.Helper()
	db, err := NewPebbleDatabase(&PebbleConfig{DataDir: t.TempDir()})
	if err != nil {
		t.Fatalf("NewPebbleDatabase failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleRecord(id uint64, createdAt int64) *model.VaultRecord {
	return &model.VaultRecord{
		ID:            id,
		Sender:        "alice",
		Recipient:     "bob",
		SenderAddr:    "0x281055afc982d96fAB65b3a49cAc8b878184Cb16",
		RecipientAddr: "0x8ba1f109551bD432803012645Ac136ddd64DBA72",
		MetadataCID:   "bafybeigdyrztmeta",
		Message:       "hi",
		Amount:        "10000000000000000",
		CreatedAt:     createdAt,
		UnlockAt:      createdAt + 86400,
		Kind:          uint8(model.VaultKindTimed),
	}
}

func TestPebbleVaultRoundTrip(t *testing.T) {
	db := newTestPebble(t)

	if err := db.SaveVaultRecord(sampleRecord(42, 1000)); err != nil {
		t.Fatalf("SaveVaultRecord failed: %v", err)
	}

	record, err := db.GetVaultRecord(42)
	if err != nil {
		t.Fatalf("GetVaultRecord failed: %v", err)
	}
	if record.Sender != "alice" || record.MetadataCID != "bafybeigdyrztmeta" {
		t.Errorf("Unexpected record: %+v", record)
	}

	if _, err := db.GetVaultRecord(99); err != ErrNotFound {
		t.Errorf("Expected ErrNotFound for missing vault, got %v", err)
	}
}

func TestPebbleVaultLists(t *testing.T) {
	db := newTestPebble(t)

	for i, createdAt := range []int64{1000, 3000, 2000} {
		if err := db.SaveVaultRecord(sampleRecord(uint64(i+1), createdAt)); err != nil {
			t.Fatalf("SaveVaultRecord failed: %v", err)
		}
	}

	sent, err := db.ListVaultRecordsBySender("0x281055afc982d96fAB65b3a49cAc8b878184Cb16")
	if err != nil {
		t.Fatalf("ListVaultRecordsBySender failed: %v", err)
	}
	if len(sent) != 3 {
		t.Fatalf("Expected 3 sent vaults, got %d", len(sent))
	}
	// Newest first
	if sent[0].CreatedAt != 3000 || sent[2].CreatedAt != 1000 {
		t.Errorf("Expected newest-first order, got %d,%d,%d",
			sent[0].CreatedAt, sent[1].CreatedAt, sent[2].CreatedAt)
	}

	received, err := db.ListVaultRecordsByRecipient("0x8ba1f109551bD432803012645Ac136ddd64DBA72")
	if err != nil {
		t.Fatalf("ListVaultRecordsByRecipient failed: %v", err)
	}
	if len(received) != 3 {
		t.Errorf("Expected 3 received vaults, got %d", len(received))
	}

	none, err := db.ListVaultRecordsBySender("0x6fC21092DA55B392b045eD78F4732bff3C580e2c")
	if err != nil {
		t.Fatalf("List for unknown address failed: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("Expected no vaults for unknown address, got %d", len(none))
	}
}

func TestPebbleMarkVaultOpened(t *testing.T) {
	db := newTestPebble(t)

	if err := db.SaveVaultRecord(sampleRecord(7, 1000)); err != nil {
		t.Fatalf("SaveVaultRecord failed: %v", err)
	}
	if err := db.MarkVaultOpened(7); err != nil {
		t.Fatalf("MarkVaultOpened failed: %v", err)
	}

	record, err := db.GetVaultRecord(7)
	if err != nil {
		t.Fatalf("GetVaultRecord failed: %v", err)
	}
	if !record.Opened {
		t.Error("Expected the opened flag to be set")
	}

	// The per-address views must see the flag too
	sent, err := db.ListVaultRecordsBySender(record.SenderAddr)
	if err != nil {
		t.Fatalf("ListVaultRecordsBySender failed: %v", err)
	}
	if len(sent) != 1 || !sent[0].Opened {
		t.Error("Expected the sender view to reflect the opened flag")
	}
}

func TestPebbleUsernameMapping(t *testing.T) {
	db := newTestPebble(t)

	entry := &model.UsernameEntry{
		Address:  "0x281055afc982d96fAB65b3a49cAc8b878184Cb16",
		Username: "alice",
	}
	if err := db.SaveUsername(entry); err != nil {
		t.Fatalf("SaveUsername failed: %v", err)
	}

	name, err := db.GetUsernameByAddress(entry.Address)
	if err != nil || name != "alice" {
		t.Errorf("Expected alice, got %q (%v)", name, err)
	}
	addr, err := db.GetAddressByUsername("alice")
	if err != nil || addr != entry.Address {
		t.Errorf("Expected %s, got %q (%v)", entry.Address, addr, err)
	}

	if _, err := db.GetAddressByUsername("nobody"); err != ErrNotFound {
		t.Errorf("Expected ErrNotFound for unknown username, got %v", err)
	}
}

func TestPebbleSessionSnapshot(t *testing.T) {
	db := newTestPebble(t)

	snapshot, err := db.GetSessionSnapshot()
	if err != nil || snapshot != nil {
		t.Fatalf("Expected no snapshot initially, got %+v (%v)", snapshot, err)
	}

	if err := db.SaveSessionSnapshot(&model.SessionSnapshot{
		Address: "0x281055afc982d96fAB65b3a49cAc8b878184Cb16",
		ChainID: 11155111,
	}); err != nil {
		t.Fatalf("SaveSessionSnapshot failed: %v", err)
	}

	snapshot, err = db.GetSessionSnapshot()
	if err != nil {
		t.Fatalf("GetSessionSnapshot failed: %v", err)
	}
	if snapshot == nil || snapshot.ChainID != 11155111 {
		t.Errorf("Unexpected snapshot: %+v", snapshot)
	}

	if err := db.ClearSessionSnapshot(); err != nil {
		t.Fatalf("ClearSessionSnapshot failed: %v", err)
	}
	snapshot, err = db.GetSessionSnapshot()
	if err != nil || snapshot != nil {
		t.Errorf("Expected snapshot cleared, got %+v (%v)", snapshot, err)
	}
}
