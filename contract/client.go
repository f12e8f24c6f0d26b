// Package contract presents the vault contract as typed operations over
// the generic submit-and-confirm machinery.
package contract

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"snap-vault/chain"
	"snap-vault/model"
	"snap-vault/submitter"
	"snap-vault/vaulterr"
)

// TxSubmitter the write path. Satisfied by submitter.Submitter; tests
// substitute fakes.
type TxSubmitter interface {
	Submit(ctx context.Context, req *submitter.Request) (*submitter.Result, error)
}

// VaultState a vault as read from the contract, with the raw addresses
// alongside the resolved-username view.
type VaultState struct {
	Vault         *model.Vault
	SenderAddr    common.Address
	RecipientAddr common.Address
}

// Client typed vault contract client
type Client struct {
	abi       abi.ABI
	address   common.Address
	backend   chain.Backend
	submitter TxSubmitter
}

// NewClient create a contract client bound to the given address
func NewClient(contractAddress string, backend chain.Backend, sub TxSubmitter) (*Client, error) {
	if !common.IsHexAddress(contractAddress) {
		return nil, fmt.Errorf("invalid contract address: %q", contractAddress)
	}
	parsed, err := abi.JSON(strings.NewReader(vaultABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse contract abi: %w", err)
	}
	return &Client{
		abi:       parsed,
		address:   common.HexToAddress(contractAddress),
		backend:   backend,
		submitter: sub,
	}, nil
}

// call pack, execute and unpack a read-only contract call
func (c *Client) call(ctx context.Context, method string, args ...interface{}) ([]interface{}, error) {
	data, err := c.abi.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s call: %w", method, err)
	}
	output, err := c.backend.CallContract(ctx, c.address, data)
	if err != nil {
		return nil, fmt.Errorf("%s query failed: %w", method, err)
	}
	values, err := c.abi.Unpack(method, output)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s result: %w", method, err)
	}
	return values, nil
}

// IsUsernameAvailable check the registry for an unclaimed name
func (c *Client) IsUsernameAvailable(ctx context.Context, username string) (bool, error) {
	values, err := c.call(ctx, "isUsernameAvailable", username)
	if err != nil {
		return false, err
	}
	available, ok := values[0].(bool)
	if !ok {
		return false, fmt.Errorf("unexpected isUsernameAvailable result type: %T", values[0])
	}
	return available, nil
}

// GetUsernameByAddress resolve an address to its registered username;
// empty string when the address has no registration.
func (c *Client) GetUsernameByAddress(ctx context.Context, account common.Address) (string, error) {
	values, err := c.call(ctx, "getUsernameByAddress", account)
	if err != nil {
		return "", err
	}
	username, ok := values[0].(string)
	if !ok {
		return "", fmt.Errorf("unexpected getUsernameByAddress result type: %T", values[0])
	}
	return username, nil
}

// GetAddressByUsername resolve a username to its registered address;
// the zero address when the name is unregistered.
func (c *Client) GetAddressByUsername(ctx context.Context, username string) (common.Address, error) {
	values, err := c.call(ctx, "getAddressByUsername", username)
	if err != nil {
		return common.Address{}, err
	}
	account, ok := values[0].(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("unexpected getAddressByUsername result type: %T", values[0])
	}
	return account, nil
}

// RegisterUsername claim a username for the sender. The availability
// pre-check is advisory; the contract rejects a concurrent claim
// atomically and that rejection is authoritative.
func (c *Client) RegisterUsername(ctx context.Context, from common.Address, username string) (*submitter.Result, error) {
	available, err := c.IsUsernameAvailable(ctx, username)
	if err != nil {
		return nil, err
	}
	if !available {
		return nil, vaulterr.New(vaulterr.KindUsernameTaken, fmt.Sprintf("username %q is already registered", username))
	}

	data, err := c.abi.Pack("registerUsername", username)
	if err != nil {
		return nil, fmt.Errorf("failed to encode registerUsername call: %w", err)
	}

	result, err := c.submitter.Submit(ctx, &submitter.Request{From: from, To: c.address, Data: data})
	if err != nil {
		msg := strings.ToLower(err.Error())
		if strings.Contains(msg, "length") {
			return nil, vaulterr.Wrap(vaulterr.KindInvalidUsernameLength,
				"username must be 3-20 characters", err)
		}
		if strings.Contains(msg, "taken") || strings.Contains(msg, "already registered") {
			return nil, vaulterr.Wrap(vaulterr.KindUsernameTaken,
				fmt.Sprintf("username %q is already registered", username), err)
		}
		return nil, err
	}
	return result, nil
}

// SendSnap create a vault on chain and return the id assigned by the
// contract, extracted from the creation event in the receipt.
func (c *Client) SendSnap(ctx context.Context, from common.Address, recipientUsername, metadataCID, message string,
	unlockDelaySeconds uint64, kind model.VaultKind, amount string) (uint64, *submitter.Result, error) {

	data, err := c.abi.Pack("sendSnap", recipientUsername, metadataCID, message,
		new(big.Int).SetUint64(unlockDelaySeconds), uint8(kind))
	if err != nil {
		return 0, nil, fmt.Errorf("failed to encode sendSnap call: %w", err)
	}

	result, err := c.submitter.Submit(ctx, &submitter.Request{
		From:   from,
		To:     c.address,
		Data:   data,
		Amount: amount,
	})
	if err != nil {
		return 0, nil, err
	}

	vaultID, err := c.ParseCreatedEvent(result.Receipt)
	if err != nil {
		return 0, result, err
	}
	return vaultID, result, nil
}

// CanOpenSnap read-only openability check: unlocked, not yet opened,
// and the caller is the recipient.
func (c *Client) CanOpenSnap(ctx context.Context, vaultID uint64) (bool, error) {
	values, err := c.call(ctx, "canOpenSnap", new(big.Int).SetUint64(vaultID))
	if err != nil {
		return false, err
	}
	openable, ok := values[0].(bool)
	if !ok {
		return false, fmt.Errorf("unexpected canOpenSnap result type: %T", values[0])
	}
	return openable, nil
}

// OpenSnap open a vault. The pre-check avoids burning gas on a call the
// contract would revert.
func (c *Client) OpenSnap(ctx context.Context, from common.Address, vaultID uint64) (*submitter.Result, error) {
	openable, err := c.CanOpenSnap(ctx, vaultID)
	if err != nil {
		return nil, err
	}
	if !openable {
		return nil, vaulterr.New(vaulterr.KindNotOpenable,
			fmt.Sprintf("vault %d is not openable by this account yet", vaultID))
	}

	data, err := c.abi.Pack("openSnap", new(big.Int).SetUint64(vaultID))
	if err != nil {
		return nil, fmt.Errorf("failed to encode openSnap call: %w", err)
	}
	return c.submitter.Submit(ctx, &submitter.Request{From: from, To: c.address, Data: data})
}

// GetVault read a vault. A missing vault reports VaultNotFound; a
// failed query keeps its own error, the two are never collapsed.
func (c *Client) GetVault(ctx context.Context, vaultID uint64) (*VaultState, error) {
	values, err := c.call(ctx, "getSnapData", new(big.Int).SetUint64(vaultID))
	if err != nil {
		msg := strings.ToLower(err.Error())
		if strings.Contains(msg, "execution reverted") {
			return nil, vaulterr.Wrap(vaulterr.KindVaultNotFound,
				fmt.Sprintf("vault %d does not exist", vaultID), err)
		}
		return nil, err
	}
	if len(values) != 9 {
		return nil, fmt.Errorf("unexpected getSnapData result arity: %d", len(values))
	}

	senderAddr := values[0].(common.Address)
	recipientAddr := values[1].(common.Address)
	if senderAddr == (common.Address{}) {
		return nil, vaulterr.New(vaulterr.KindVaultNotFound, fmt.Sprintf("vault %d does not exist", vaultID))
	}

	state := &VaultState{
		SenderAddr:    senderAddr,
		RecipientAddr: recipientAddr,
		Vault: &model.Vault{
			ID:          vaultID,
			MetadataCID: values[2].(string),
			Message:     values[3].(string),
			Amount:      values[4].(*big.Int).String(),
			CreatedAt:   values[5].(*big.Int).Int64(),
			UnlockAt:    values[6].(*big.Int).Int64(),
			Opened:      values[7].(bool),
			Kind:        model.VaultKind(values[8].(uint8)),
		},
	}

	// Username resolution is display data; a registry miss leaves the
	// bare address in place.
	if name, err := c.GetUsernameByAddress(ctx, senderAddr); err == nil && name != "" {
		state.Vault.Sender = name
	} else {
		state.Vault.Sender = senderAddr.Hex()
	}
	if name, err := c.GetUsernameByAddress(ctx, recipientAddr); err == nil && name != "" {
		state.Vault.Recipient = name
	} else {
		state.Vault.Recipient = recipientAddr.Hex()
	}
	return state, nil
}

// GetUserSentSnaps ids of the vaults an address has created
func (c *Client) GetUserSentSnaps(ctx context.Context, account common.Address) ([]uint64, error) {
	return c.idList(ctx, "getUserSentSnaps", account)
}

// GetUserReceivedSnaps ids of the vaults an address has received
func (c *Client) GetUserReceivedSnaps(ctx context.Context, account common.Address) ([]uint64, error) {
	return c.idList(ctx, "getUserReceivedSnaps", account)
}

func (c *Client) idList(ctx context.Context, method string, account common.Address) ([]uint64, error) {
	values, err := c.call(ctx, method, account)
	if err != nil {
		return nil, err
	}
	raw, ok := values[0].([]*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected %s result type: %T", method, values[0])
	}
	ids := make([]uint64, 0, len(raw))
	for _, id := range raw {
		ids = append(ids, id.Uint64())
	}
	return ids, nil
}

// CanAccessVault display-only access classification for a viewer. Not
// an authorization check; the contract alone decides what is permitted.
func CanAccessVault(state *VaultState, viewer common.Address, now time.Time) model.VaultAccess {
	switch {
	case viewer == state.SenderAddr:
		return model.VaultAccess{CanAccess: true, Reason: model.AccessSender}
	case viewer == state.RecipientAddr && state.Vault.IsUnlocked(now):
		return model.VaultAccess{CanAccess: true, Reason: model.AccessUnlocked}
	case viewer == state.RecipientAddr:
		return model.VaultAccess{CanAccess: false, Reason: model.AccessLocked, UnlockAt: state.Vault.UnlockAt}
	default:
		return model.VaultAccess{CanAccess: false, Reason: model.AccessNotAuthorized}
	}
}
