package wallet

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/tidwall/gjson"

	"snap-vault/model"
	"snap-vault/vaulterr"
)

// TxRequest transaction parameters forwarded to the wallet for signing
type TxRequest struct {
	From  common.Address
	To    common.Address
	Value *big.Int
	Data  []byte
	Gas   uint64
}

// Signer submits a transaction for out-of-band approval and signing,
// returning the transaction hash once broadcast.
type Signer interface {
	SendTransaction(ctx context.Context, tx *TxRequest) (string, error)
}

// SnapshotStore persists the last approved session so a restart can
// restore the pairing without a fresh approval round trip.
type SnapshotStore interface {
	SaveSessionSnapshot(snapshot *model.SessionSnapshot) error
	GetSessionSnapshot() (*model.SessionSnapshot, error)
	ClearSessionSnapshot() error
}

// SessionEvent state-change notification delivered to subscribers
type SessionEvent struct {
	Type    string // connected | disconnected | account_changed | chain_changed
	Address string
	ChainID int64
}

// Session wallet pairing state. All transitions run under the mutex;
// subscribers are notified after the transition commits.
type Session struct {
	relay           *RelayClient
	store           SnapshotStore
	chainID         int64
	approvalTimeout time.Duration

	mu        sync.RWMutex
	address   common.Address
	connected bool
	topic     string

	listenerMu sync.Mutex
	listeners  []func(SessionEvent)
}

// NewSession create a session bound to the given relay and chain
func NewSession(relay *RelayClient, store SnapshotStore, chainID int64, approvalTimeout time.Duration) *Session {
	return &Session{
		relay:           relay,
		store:           store,
		chainID:         chainID,
		approvalTimeout: approvalTimeout,
	}
}

// Subscribe register a state-change listener
func (s *Session) Subscribe(fn func(SessionEvent)) {
	s.listenerMu.Lock()
	s.listeners = append(s.listeners, fn)
	s.listenerMu.Unlock()
}

func (s *Session) notify(ev SessionEvent) {
	s.listenerMu.Lock()
	listeners := make([]func(SessionEvent), len(s.listeners))
	copy(listeners, s.listeners)
	s.listenerMu.Unlock()
	for _, fn := range listeners {
		fn(ev)
	}
}

// Connect propose a session and wait for wallet-side approval. The wait
// is bounded by the configured approval timeout.
func (s *Session) Connect(ctx context.Context) (*model.SessionSnapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, s.approvalTimeout)
	defer cancel()

	result, err := s.relay.Request(ctx, "session_propose", map[string]interface{}{
		"chains": []string{fmt.Sprintf("eip155:%d", s.chainID)},
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("wallet approval timed out after %s", s.approvalTimeout)
		}
		if isUserRejection(err.Error()) {
			return nil, vaulterr.Wrap(vaulterr.KindUserRejected, "wallet declined the session", err)
		}
		return nil, fmt.Errorf("session proposal failed: %w", err)
	}

	parsed := gjson.ParseBytes(result)
	address := parsed.Get("address").String()
	topic := parsed.Get("topic").String()
	chainID := parsed.Get("chainId").Int()
	if !common.IsHexAddress(address) {
		return nil, fmt.Errorf("relay returned invalid address: %q", address)
	}
	if chainID == 0 {
		chainID = s.chainID
	}

	s.mu.Lock()
	s.address = common.HexToAddress(address)
	s.chainID = chainID
	s.topic = topic
	s.connected = true
	s.mu.Unlock()

	snapshot := &model.SessionSnapshot{Address: address, ChainID: chainID}
	if s.store != nil {
		if err := s.store.SaveSessionSnapshot(snapshot); err != nil {
			log.Printf("Failed to persist session snapshot: %v", err)
		}
	}

	s.notify(SessionEvent{Type: "connected", Address: address, ChainID: chainID})
	log.Printf("Wallet session established: %s (chain %d)", address, chainID)
	return snapshot, nil
}

// Restore load the persisted snapshot and adopt its identity without a
// new approval. The session stays disconnected until Resume confirms the
// pairing is still alive on the relay.
func (s *Session) Restore() *model.SessionSnapshot {
	if s.store == nil {
		return nil
	}
	snapshot, err := s.store.GetSessionSnapshot()
	if err != nil || snapshot == nil {
		return nil
	}
	if !common.IsHexAddress(snapshot.Address) {
		return nil
	}

	s.mu.Lock()
	s.address = common.HexToAddress(snapshot.Address)
	s.chainID = snapshot.ChainID
	s.connected = false
	s.mu.Unlock()
	return snapshot
}

// Resume ping the relay to confirm the restored pairing is still live
func (s *Session) Resume(ctx context.Context) error {
	s.mu.RLock()
	topic := s.topic
	address := s.address
	s.mu.RUnlock()

	_, err := s.relay.Request(ctx, "session_ping", map[string]interface{}{"topic": topic})
	if err != nil {
		return fmt.Errorf("session resume failed: %w", err)
	}

	s.mu.Lock()
	s.connected = true
	chainID := s.chainID
	s.mu.Unlock()

	s.notify(SessionEvent{Type: "connected", Address: address.Hex(), ChainID: chainID})
	return nil
}

// Disconnect tear down the session and drop the persisted snapshot
func (s *Session) Disconnect(ctx context.Context) error {
	s.mu.Lock()
	topic := s.topic
	wasConnected := s.connected
	s.connected = false
	s.topic = ""
	s.address = common.Address{}
	s.mu.Unlock()

	if s.store != nil {
		if err := s.store.ClearSessionSnapshot(); err != nil {
			log.Printf("Failed to clear session snapshot: %v", err)
		}
	}

	if wasConnected {
		if _, err := s.relay.Request(ctx, "session_delete", map[string]interface{}{"topic": topic}); err != nil {
			// Local state is already cleared; the relay-side teardown is best effort
			log.Printf("Relay session delete failed: %v", err)
		}
	}

	s.notify(SessionEvent{Type: "disconnected"})
	return nil
}

// Connected report whether a live approved session exists
func (s *Session) Connected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connected
}

// Address the session account address (zero when disconnected)
func (s *Session) Address() common.Address {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.address
}

// ChainID the active chain of the session
func (s *Session) ChainID() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.chainID
}

// SendTransaction forward a transaction to the wallet for approval and
// signing. Fails immediately when no session is connected; the approval
// wait is bounded by the approval timeout.
func (s *Session) SendTransaction(ctx context.Context, tx *TxRequest) (string, error) {
	s.mu.RLock()
	connected := s.connected
	topic := s.topic
	chainID := s.chainID
	s.mu.RUnlock()

	if !connected {
		return "", vaulterr.New(vaulterr.KindWalletNotConnected, "no wallet session; connect before submitting")
	}

	txParams := map[string]interface{}{
		"from": strings.ToLower(tx.From.Hex()),
		"to":   strings.ToLower(tx.To.Hex()),
	}
	if tx.Value != nil && tx.Value.Sign() > 0 {
		txParams["value"] = hexutil.EncodeBig(tx.Value)
	}
	if len(tx.Data) > 0 {
		txParams["data"] = hexutil.Encode(tx.Data)
	}
	if tx.Gas > 0 {
		txParams["gas"] = hexutil.EncodeUint64(tx.Gas)
	}

	ctx, cancel := context.WithTimeout(ctx, s.approvalTimeout)
	defer cancel()

	result, err := s.relay.Request(ctx, "session_request", map[string]interface{}{
		"topic":   topic,
		"chainId": fmt.Sprintf("eip155:%d", chainID),
		"request": map[string]interface{}{
			"method": "eth_sendTransaction",
			"params": []interface{}{txParams},
		},
	})
	if err != nil {
		return "", err
	}

	var hash string
	if err := json.Unmarshal(result, &hash); err != nil {
		return "", fmt.Errorf("relay returned malformed transaction hash: %w", err)
	}
	return hash, nil
}

// SwitchChain ask the wallet to switch (or add) the target chain
func (s *Session) SwitchChain(ctx context.Context, chainID int64) error {
	s.mu.RLock()
	topic := s.topic
	connected := s.connected
	s.mu.RUnlock()

	if !connected {
		return vaulterr.New(vaulterr.KindWalletNotConnected, "no wallet session; connect before switching chains")
	}

	_, err := s.relay.Request(ctx, "session_request", map[string]interface{}{
		"topic": topic,
		"request": map[string]interface{}{
			"method": "wallet_switchEthereumChain",
			"params": []interface{}{map[string]string{"chainId": hexutil.EncodeUint64(uint64(chainID))}},
		},
	})
	if err != nil {
		return fmt.Errorf("chain switch failed: %w", err)
	}

	s.mu.Lock()
	s.chainID = chainID
	address := s.address
	s.mu.Unlock()

	s.notify(SessionEvent{Type: "chain_changed", Address: address.Hex(), ChainID: chainID})
	return nil
}

// Run consume wallet push events until the context is cancelled. Meant
// to be started once as a goroutine after the relay connects.
func (s *Session) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-s.relay.Events():
			if !ok {
				return
			}
			s.handleEvent(ev)
		}
	}
}

// handleEvent apply a wallet-side state change
func (s *Session) handleEvent(ev Event) {
	switch ev.Method {
	case "accountsChanged":
		accounts := gjson.ParseBytes(ev.Params).Array()
		if len(accounts) == 0 || !common.IsHexAddress(accounts[0].String()) {
			return
		}
		address := accounts[0].String()

		s.mu.Lock()
		s.address = common.HexToAddress(address)
		chainID := s.chainID
		s.mu.Unlock()

		if s.store != nil {
			if err := s.store.SaveSessionSnapshot(&model.SessionSnapshot{Address: address, ChainID: chainID}); err != nil {
				log.Printf("Failed to persist session snapshot: %v", err)
			}
		}
		s.notify(SessionEvent{Type: "account_changed", Address: address, ChainID: chainID})

	case "chainChanged":
		raw := gjson.ParseBytes(ev.Params)
		chainID := raw.Int()
		if chainID == 0 && strings.HasPrefix(raw.String(), "0x") {
			if v, err := hexutil.DecodeUint64(raw.String()); err == nil {
				chainID = int64(v)
			}
		}
		if chainID == 0 {
			return
		}

		s.mu.Lock()
		s.chainID = chainID
		address := s.address
		s.mu.Unlock()

		if s.store != nil {
			if err := s.store.SaveSessionSnapshot(&model.SessionSnapshot{Address: address.Hex(), ChainID: chainID}); err != nil {
				log.Printf("Failed to persist session snapshot: %v", err)
			}
		}
		s.notify(SessionEvent{Type: "chain_changed", Address: address.Hex(), ChainID: chainID})

	case "session_delete":
		s.mu.Lock()
		s.connected = false
		s.topic = ""
		s.address = common.Address{}
		s.mu.Unlock()

		if s.store != nil {
			if err := s.store.ClearSessionSnapshot(); err != nil {
				log.Printf("Failed to clear session snapshot: %v", err)
			}
		}
		s.notify(SessionEvent{Type: "disconnected"})

	default:
		log.Printf("Ignoring relay event: %s", ev.Method)
	}
}

// isUserRejection report whether an error message reads as a wallet-side
// decline of the proposal.
func isUserRejection(msg string) bool {
	msg = strings.ToLower(msg)
	return strings.Contains(msg, "user rejected") ||
		strings.Contains(msg, "user denied") ||
		strings.Contains(msg, "rejected by user")
}
