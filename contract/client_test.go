package contract

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"snap-vault/model"
	"snap-vault/submitter"
	"snap-vault/vaulterr"
)

const contractAddr = "0x5FbDB2315678afecb367f032d93F642f64180aa3"

var (
	senderAddr    = common.HexToAddress("0x281055afc982d96fAB65b3a49cAc8b878184Cb16")
	recipientAddr = common.HexToAddress("0x8ba1f109551bD432803012645Ac136ddd64DBA72")
	strangerAddr  = common.HexToAddress("0x6fC21092DA55B392b045eD78F4732bff3C580e2c")
)

// fakeContractBackend decodes calls against the real ABI and answers
// from in-memory fixtures.
type fakeContractBackend struct {
	abi       abi.ABI
	available map[string]bool
	usernames map[common.Address]string
	addresses map[string]common.Address
	vaults    map[uint64][]interface{}
	openable  map[uint64]bool
	sent      map[common.Address][]*big.Int
	received  map[common.Address][]*big.Int
	callErr   error
}

func (f *fakeContractBackend) ChainID(ctx context.Context) (*big.Int, error) {
	return big.NewInt(11155111), nil
}

func (f *fakeContractBackend) EstimateGas(ctx context.Context, from, to common.Address, value *big.Int, data []byte) (uint64, error) {
	return 90000, nil
}

func (f *fakeContractBackend) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	return &types.Receipt{Status: types.ReceiptStatusSuccessful}, nil
}

func (f *fakeContractBackend) BalanceAt(ctx context.Context, account common.Address) (*big.Int, error) {
	return big.NewInt(0), nil
}

func (f *fakeContractBackend) CallContract(ctx context.Context, to common.Address, data []byte) ([]byte, error) {
	if f.callErr != nil {
		return nil, f.callErr
	}
	method, err := f.abi.MethodById(data[:4])
	if err != nil {
		return nil, err
	}
	args, err := method.Inputs.Unpack(data[4:])
	if err != nil {
		return nil, err
	}

	switch method.Name {
	case "isUsernameAvailable":
		return method.Outputs.Pack(f.available[args[0].(string)])
	case "getUsernameByAddress":
		return method.Outputs.Pack(f.usernames[args[0].(common.Address)])
	case "getAddressByUsername":
		return method.Outputs.Pack(f.addresses[args[0].(string)])
	case "canOpenSnap":
		return method.Outputs.Pack(f.openable[args[0].(*big.Int).Uint64()])
	case "getSnapData":
		fields, ok := f.vaults[args[0].(*big.Int).Uint64()]
		if !ok {
			return nil, errors.New("execution reverted: snap does not exist")
		}
		return method.Outputs.Pack(fields...)
	case "getUserSentSnaps":
		return method.Outputs.Pack(f.sent[args[0].(common.Address)])
	case "getUserReceivedSnaps":
		return method.Outputs.Pack(f.received[args[0].(common.Address)])
	default:
		return nil, fmt.Errorf("unexpected method: %s", method.Name)
	}
}

type fakeTxSubmitter struct {
	result *submitter.Result
	err    error
	last   *submitter.Request
	called bool
}

func (f *fakeTxSubmitter) Submit(ctx context.Context, req *submitter.Request) (*submitter.Result, error) {
	f.called = true
	f.last = req
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func newTestClient(t *testing.T, backend *fakeContractBackend, sub TxSubmitter) *Client {
	t.Helper()
	parsed, err := abi.JSON(strings.NewReader(vaultABI))
	if err != nil {
		t.Fatalf("ABI parse failed: %v", err)
	}
	backend.abi = parsed

	client, err := NewClient(contractAddr, backend, sub)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return client
}

func createdReceipt(t *testing.T, client *Client, vaultID uint64) *types.Receipt {
	t.Helper()
	return &types.Receipt{
		Status: types.ReceiptStatusSuccessful,
		TxHash: common.HexToHash("0x65f3f1f69ae79ebd78a7cf52ae6ec17b447e73ae67c608f972a0dbcc05164a2d"),
		Logs: []*types.Log{{
			Address: common.HexToAddress(contractAddr),
			Topics: []common.Hash{
				client.abi.Events["SnapCreated"].ID,
				common.BigToHash(new(big.Int).SetUint64(vaultID)),
				common.BytesToHash(senderAddr.Bytes()),
			},
		}},
	}
}

func snapFixture() []interface{} {
	return []interface{}{
		senderAddr, recipientAddr,
		"bafybeigdyrztmeta", "happy birthday",
		big.NewInt(10000000000000000),
		big.NewInt(1767225600), big.NewInt(1798761600),
		false, uint8(model.VaultKindTimed),
	}
}

func TestRegisterUsernamePrecheckTaken(t *testing.T) {
	backend := &fakeContractBackend{available: map[string]bool{"alice": false}}
	sub := &fakeTxSubmitter{}
	client := newTestClient(t, backend, sub)

	_, err := client.RegisterUsername(context.Background(), senderAddr, "alice")
	if vaulterr.KindOf(err) != vaulterr.KindUsernameTaken {
		t.Fatalf("Expected KindUsernameTaken, got %v", err)
	}
	if sub.called {
		t.Error("Submitter must not run when the pre-check reports taken")
	}
}

func TestRegisterUsernameLengthRevert(t *testing.T) {
	backend := &fakeContractBackend{available: map[string]bool{"ab": true}}
	sub := &fakeTxSubmitter{err: errors.New("execution reverted: username length out of range")}
	client := newTestClient(t, backend, sub)

	_, err := client.RegisterUsername(context.Background(), senderAddr, "ab")
	if vaulterr.KindOf(err) != vaulterr.KindInvalidUsernameLength {
		t.Errorf("Expected KindInvalidUsernameLength, got %v", err)
	}
}

func TestSendSnapExtractsVaultID(t *testing.T) {
	backend := &fakeContractBackend{}
	sub := &fakeTxSubmitter{}
	client := newTestClient(t, backend, sub)
	sub.result = &submitter.Result{Receipt: createdReceipt(t, client, 42)}

	vaultID, result, err := client.SendSnap(context.Background(), senderAddr,
		"bob", "bafybeigdyrztmeta", "hi", 86400, model.VaultKindTimed, "0.01")
	if err != nil {
		t.Fatalf("SendSnap failed: %v", err)
	}
	if vaultID != 42 {
		t.Errorf("Expected vault id 42, got %d", vaultID)
	}
	if result == nil || sub.last.Amount != "0.01" {
		t.Error("Expected the payment amount to ride as transaction value")
	}
}

func TestSendSnapMissingEvent(t *testing.T) {
	backend := &fakeContractBackend{}
	sub := &fakeTxSubmitter{result: &submitter.Result{Receipt: &types.Receipt{Status: types.ReceiptStatusSuccessful}}}
	client := newTestClient(t, backend, sub)

	_, _, err := client.SendSnap(context.Background(), senderAddr,
		"bob", "bafybeigdyrztmeta", "hi", 86400, model.VaultKindTimed, "")
	if vaulterr.KindOf(err) != vaulterr.KindEventNotFound {
		t.Errorf("Expected KindEventNotFound for a receipt without the event, got %v", err)
	}
}

func TestOpenSnapNotOpenable(t *testing.T) {
	backend := &fakeContractBackend{openable: map[uint64]bool{7: false}}
	sub := &fakeTxSubmitter{}
	client := newTestClient(t, backend, sub)

	_, err := client.OpenSnap(context.Background(), recipientAddr, 7)
	if vaulterr.KindOf(err) != vaulterr.KindNotOpenable {
		t.Fatalf("Expected KindNotOpenable, got %v", err)
	}
	if sub.called {
		t.Error("No transaction may be submitted for an unopenable vault")
	}
}

func TestOpenSnapSubmits(t *testing.T) {
	backend := &fakeContractBackend{openable: map[uint64]bool{7: true}}
	sub := &fakeTxSubmitter{result: &submitter.Result{Receipt: &types.Receipt{Status: types.ReceiptStatusSuccessful}}}
	client := newTestClient(t, backend, sub)

	if _, err := client.OpenSnap(context.Background(), recipientAddr, 7); err != nil {
		t.Fatalf("OpenSnap failed: %v", err)
	}
	if sub.last.Amount != "" {
		t.Error("Open must carry no payment value")
	}
}

func TestGetVault(t *testing.T) {
	backend := &fakeContractBackend{
		vaults:    map[uint64][]interface{}{42: snapFixture()},
		usernames: map[common.Address]string{senderAddr: "alice", recipientAddr: "bob"},
	}
	client := newTestClient(t, backend, &fakeTxSubmitter{})

	state, err := client.GetVault(context.Background(), 42)
	if err != nil {
		t.Fatalf("GetVault failed: %v", err)
	}
	if state.Vault.Sender != "alice" || state.Vault.Recipient != "bob" {
		t.Errorf("Expected resolved usernames, got %s/%s", state.Vault.Sender, state.Vault.Recipient)
	}
	if state.Vault.Amount != "10000000000000000" {
		t.Errorf("Unexpected amount: %s", state.Vault.Amount)
	}
	if state.Vault.Kind != model.VaultKindTimed {
		t.Errorf("Unexpected kind: %s", state.Vault.Kind)
	}
}

func TestGetVaultNotFound(t *testing.T) {
	backend := &fakeContractBackend{vaults: map[uint64][]interface{}{}}
	client := newTestClient(t, backend, &fakeTxSubmitter{})

	_, err := client.GetVault(context.Background(), 99)
	if vaulterr.KindOf(err) != vaulterr.KindVaultNotFound {
		t.Errorf("Expected KindVaultNotFound, got %v", err)
	}
}

func TestGetVaultQueryErrorIsNotNotFound(t *testing.T) {
	backend := &fakeContractBackend{callErr: errors.New("connection refused")}
	client := newTestClient(t, backend, &fakeTxSubmitter{})

	_, err := client.GetVault(context.Background(), 42)
	if err == nil {
		t.Fatal("Expected a query error")
	}
	if vaulterr.KindOf(err) == vaulterr.KindVaultNotFound {
		t.Error("A transport failure must not masquerade as not-found")
	}
}

func TestIDLists(t *testing.T) {
	backend := &fakeContractBackend{
		sent:     map[common.Address][]*big.Int{senderAddr: {big.NewInt(1), big.NewInt(3)}},
		received: map[common.Address][]*big.Int{senderAddr: {big.NewInt(2)}},
	}
	client := newTestClient(t, backend, &fakeTxSubmitter{})

	sent, err := client.GetUserSentSnaps(context.Background(), senderAddr)
	if err != nil {
		t.Fatalf("GetUserSentSnaps failed: %v", err)
	}
	if len(sent) != 2 || sent[0] != 1 || sent[1] != 3 {
		t.Errorf("Unexpected sent ids: %v", sent)
	}

	received, err := client.GetUserReceivedSnaps(context.Background(), senderAddr)
	if err != nil {
		t.Fatalf("GetUserReceivedSnaps failed: %v", err)
	}
	if len(received) != 1 || received[0] != 2 {
		t.Errorf("Unexpected received ids: %v", received)
	}
}

func TestCanAccessVault(t *testing.T) {
	state := &VaultState{
		SenderAddr:    senderAddr,
		RecipientAddr: recipientAddr,
		Vault:         &model.Vault{UnlockAt: 1798761600},
	}
	beforeUnlock := time.Unix(1798761599, 0)
	atUnlock := time.Unix(1798761600, 0)

	if access := CanAccessVault(state, senderAddr, beforeUnlock); access.Reason != model.AccessSender || !access.CanAccess {
		t.Errorf("Sender must always have access, got %+v", access)
	}
	if access := CanAccessVault(state, recipientAddr, beforeUnlock); access.Reason != model.AccessLocked || access.UnlockAt != 1798761600 {
		t.Errorf("Recipient before unlock must see locked with the unlock time, got %+v", access)
	}
	if access := CanAccessVault(state, recipientAddr, atUnlock); access.Reason != model.AccessUnlocked || !access.CanAccess {
		t.Errorf("Recipient at unlock must see unlocked, got %+v", access)
	}
	if access := CanAccessVault(state, strangerAddr, atUnlock); access.Reason != model.AccessNotAuthorized || access.CanAccess {
		t.Errorf("Stranger must be not_authorized, got %+v", access)
	}
}
