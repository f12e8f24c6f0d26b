package wallet

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"snap-vault/model"
	"snap-vault/vaulterr"
)

type memSnapshotStore struct {
	snapshot *model.SessionSnapshot
}

func (m *memSnapshotStore) SaveSessionSnapshot(s *model.SessionSnapshot) error {
	m.snapshot = s
	return nil
}

func (m *memSnapshotStore) GetSessionSnapshot() (*model.SessionSnapshot, error) {
	return m.snapshot, nil
}

func (m *memSnapshotStore) ClearSessionSnapshot() error {
	m.snapshot = nil
	return nil
}

func TestSendTransactionRequiresConnection(t *testing.T) {
	session := NewSession(NewRelayClient("ws://unused"), nil, 1, time.Second)

	_, err := session.SendTransaction(context.Background(), &TxRequest{})
	if err == nil {
		t.Fatal("Expected error without a connected session")
	}
	if vaulterr.KindOf(err) != vaulterr.KindWalletNotConnected {
		t.Errorf("Expected KindWalletNotConnected, got %s", vaulterr.KindOf(err))
	}
}

func TestSessionRestore(t *testing.T) {
	store := &memSnapshotStore{snapshot: &model.SessionSnapshot{
		Address: "0x8ba1f109551bD432803012645Ac136ddd64DBA72",
		ChainID: 11155111,
	}}
	session := NewSession(NewRelayClient("ws://unused"), store, 1, time.Second)

	snapshot := session.Restore()
	if snapshot == nil {
		t.Fatal("Expected snapshot from store")
	}
	if session.Connected() {
		t.Error("Restored session must not be marked connected before resume")
	}
	if session.Address().Hex() != "0x8ba1f109551bD432803012645Ac136ddd64DBA72" {
		t.Errorf("Unexpected restored address: %s", session.Address().Hex())
	}
	if session.ChainID() != 11155111 {
		t.Errorf("Unexpected restored chain id: %d", session.ChainID())
	}
}

func TestSessionRestoreEmptyStore(t *testing.T) {
	session := NewSession(NewRelayClient("ws://unused"), &memSnapshotStore{}, 1, time.Second)
	if session.Restore() != nil {
		t.Error("Expected nil snapshot from empty store")
	}
}

func TestHandleAccountsChanged(t *testing.T) {
	store := &memSnapshotStore{}
	session := NewSession(NewRelayClient("ws://unused"), store, 5, time.Second)
	session.connected = true

	var got SessionEvent
	session.Subscribe(func(ev SessionEvent) { got = ev })

	session.handleEvent(Event{
		Method: "accountsChanged",
		Params: json.RawMessage(`["0x8ba1f109551bD432803012645Ac136ddd64DBA72"]`),
	})

	if session.Address().Hex() != "0x8ba1f109551bD432803012645Ac136ddd64DBA72" {
		t.Errorf("Unexpected address after account change: %s", session.Address().Hex())
	}
	if got.Type != "account_changed" {
		t.Errorf("Expected account_changed notification, got %q", got.Type)
	}
	if store.snapshot == nil || store.snapshot.ChainID != 5 {
		t.Error("Expected snapshot persisted with current chain id")
	}
}

func TestHandleSessionDelete(t *testing.T) {
	store := &memSnapshotStore{snapshot: &model.SessionSnapshot{Address: "0x8ba1f109551bD432803012645Ac136ddd64DBA72"}}
	session := NewSession(NewRelayClient("ws://unused"), store, 1, time.Second)
	session.connected = true
	session.topic = "t1"

	session.handleEvent(Event{Method: "session_delete"})

	if session.Connected() {
		t.Error("Expected session disconnected after wallet-side delete")
	}
	if store.snapshot != nil {
		t.Error("Expected snapshot cleared after wallet-side delete")
	}
}

// relayStub answers every request with a fixed result and pushes one
// accountsChanged frame after the first request.
func relayStub(t *testing.T, result string) *httptest.Server {
	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("Upgrade failed: %v", err)
			return
		}
		defer conn.Close()
		for {
			var frame map[string]interface{}
			if err := conn.ReadJSON(&frame); err != nil {
				return
			}
			if err := conn.WriteJSON(map[string]interface{}{
				"jsonrpc": "2.0",
				"id":      frame["id"],
				"result":  json.RawMessage(result),
			}); err != nil {
				return
			}
		}
	}))
}

func TestRelayRequestRoundTrip(t *testing.T) {
	srv := relayStub(t, `"0x65f3f1f69ae79ebd78a7cf52ae6ec17b447e73ae67c608f972a0dbcc05164a2d"`)
	defer srv.Close()

	relay := NewRelayClient("ws" + strings.TrimPrefix(srv.URL, "http"))
	if err := relay.Connect(); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer relay.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	result, err := relay.Request(ctx, "session_ping", map[string]string{"topic": "t1"})
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}

	var hash string
	if err := json.Unmarshal(result, &hash); err != nil {
		t.Fatalf("Unexpected result payload: %v", err)
	}
	if !strings.HasPrefix(hash, "0x") || len(hash) != 66 {
		t.Errorf("Unexpected hash: %s", hash)
	}
}

func TestSendTransactionOverRelay(t *testing.T) {
	srv := relayStub(t, `"0x65f3f1f69ae79ebd78a7cf52ae6ec17b447e73ae67c608f972a0dbcc05164a2d"`)
	defer srv.Close()

	relay := NewRelayClient("ws" + strings.TrimPrefix(srv.URL, "http"))
	if err := relay.Connect(); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer relay.Close()

	session := NewSession(relay, &memSnapshotStore{}, 11155111, 2*time.Second)
	session.connected = true
	session.topic = "t1"

	hash, err := session.SendTransaction(context.Background(), &TxRequest{})
	if err != nil {
		t.Fatalf("SendTransaction failed: %v", err)
	}
	if len(hash) != 66 {
		t.Errorf("Unexpected hash length: %d", len(hash))
	}
}
