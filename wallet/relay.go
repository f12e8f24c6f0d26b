package wallet

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"sync/atomic"

	"github.com/gorilla/websocket"
	"github.com/tidwall/gjson"
)

// Event a push frame from the wallet side (no request id), e.g.
// accountsChanged, chainChanged, session_delete.
type Event struct {
	Method string
	Params json.RawMessage
}

// rpcFrame outgoing JSON-RPC frame
type rpcFrame struct {
	Jsonrpc string      `json:"jsonrpc"`
	ID      int64       `json:"id"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params,omitempty"`
}

// rpcResult response routed back to a waiting request
type rpcResult struct {
	result json.RawMessage
	err    error
}

// RelayClient JSON-RPC client over a relay websocket. The wire protocol
// is owned by the external wallet SDK; this client only correlates
// requests with responses and routes push frames to the events channel.
type RelayClient struct {
	url  string
	conn *websocket.Conn

	writeMu sync.Mutex

	pendingMu sync.Mutex
	pending   map[int64]chan rpcResult

	nextID atomic.Int64
	events chan Event
	done   chan struct{}
}

// NewRelayClient create a relay client for the given websocket URL
func NewRelayClient(url string) *RelayClient {
	return &RelayClient{
		url:     url,
		pending: map[int64]chan rpcResult{},
		events:  make(chan Event, 16),
		done:    make(chan struct{}),
	}
}

// Connect dial the relay and start the read loop
func (r *RelayClient) Connect() error {
	conn, _, err := websocket.DefaultDialer.Dial(r.url, nil)
	if err != nil {
		return fmt.Errorf("failed to dial relay: %w", err)
	}
	r.conn = conn
	go r.readLoop()
	log.Printf("Wallet relay connected: %s", r.url)
	return nil
}

// Events push frames from the wallet side
func (r *RelayClient) Events() <-chan Event {
	return r.events
}

// Request send a JSON-RPC request and wait for the matching response.
// The context bounds the wait; the request itself is not recalled.
func (r *RelayClient) Request(ctx context.Context, method string, params interface{}) (json.RawMessage, error) {
	if r.conn == nil {
		return nil, fmt.Errorf("relay not connected")
	}

	id := r.nextID.Add(1)
	ch := make(chan rpcResult, 1)

	r.pendingMu.Lock()
	r.pending[id] = ch
	r.pendingMu.Unlock()

	defer func() {
		r.pendingMu.Lock()
		delete(r.pending, id)
		r.pendingMu.Unlock()
	}()

	frame := rpcFrame{Jsonrpc: "2.0", ID: id, Method: method, Params: params}

	r.writeMu.Lock()
	err := r.conn.WriteJSON(frame)
	r.writeMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("failed to write relay frame: %w", err)
	}

	select {
	case res := <-ch:
		return res.result, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-r.done:
		return nil, fmt.Errorf("relay connection closed")
	}
}

// readLoop read frames and route them: frames with an id are responses,
// frames with a method are wallet push events.
func (r *RelayClient) readLoop() {
	defer close(r.done)
	for {
		_, raw, err := r.conn.ReadMessage()
		if err != nil {
			log.Printf("Relay read loop stopped: %v", err)
			return
		}

		parsed := gjson.ParseBytes(raw)
		if idField := parsed.Get("id"); idField.Exists() && !parsed.Get("method").Exists() {
			r.dispatch(idField.Int(), parsed, raw)
			continue
		}

		if method := parsed.Get("method"); method.Exists() {
			var params json.RawMessage
			if p := parsed.Get("params"); p.Exists() {
				params = json.RawMessage(p.Raw)
			}
			select {
			case r.events <- Event{Method: method.String(), Params: params}:
			default:
				log.Printf("Dropping relay event %s: event channel full", method.String())
			}
		}
	}
}

// dispatch route a response frame to the waiting request
func (r *RelayClient) dispatch(id int64, parsed gjson.Result, raw []byte) {
	r.pendingMu.Lock()
	ch, ok := r.pending[id]
	r.pendingMu.Unlock()
	if !ok {
		return
	}

	if errField := parsed.Get("error"); errField.Exists() {
		ch <- rpcResult{err: fmt.Errorf("relay error %d: %s",
			errField.Get("code").Int(), errField.Get("message").String())}
		return
	}
	ch <- rpcResult{result: json.RawMessage(parsed.Get("result").Raw)}
}

// Close close the relay connection
func (r *RelayClient) Close() error {
	if r.conn == nil {
		return nil
	}
	return r.conn.Close()
}
