// Package vault_service orchestrates the vault lifecycle: publish the
// off-chain payload, submit the on-chain transaction, keep the local
// index and cache in step.
package vault_service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"snap-vault/contract"
	"snap-vault/database"
	"snap-vault/model"
	"snap-vault/publisher"
	"snap-vault/submitter"
	"snap-vault/vaulterr"
)

// unlockDateLayouts accepted calendar formats for the unlock date
var unlockDateLayouts = []string{"2006-01-02", time.RFC3339}

// ContractClient the typed contract operations the service drives.
// Satisfied by contract.Client; tests substitute fakes.
type ContractClient interface {
	RegisterUsername(ctx context.Context, from common.Address, username string) (*submitter.Result, error)
	GetUsernameByAddress(ctx context.Context, account common.Address) (string, error)
	GetAddressByUsername(ctx context.Context, username string) (common.Address, error)
	SendSnap(ctx context.Context, from common.Address, recipientUsername, metadataCID, message string,
		unlockDelaySeconds uint64, kind model.VaultKind, amount string) (uint64, *submitter.Result, error)
	OpenSnap(ctx context.Context, from common.Address, vaultID uint64) (*submitter.Result, error)
	GetVault(ctx context.Context, vaultID uint64) (*contract.VaultState, error)
	GetUserSentSnaps(ctx context.Context, account common.Address) ([]uint64, error)
	GetUserReceivedSnaps(ctx context.Context, account common.Address) ([]uint64, error)
}

// Session the wallet identity the service acts as
type Session interface {
	Connected() bool
	Address() common.Address
}

// ContentPublisher the publishing pipeline. Satisfied by
// publisher.Publisher.
type ContentPublisher interface {
	UploadMedia(ctx context.Context, filename string, data []byte) (*publisher.MediaUpload, error)
	UploadMetadata(ctx context.Context, meta *model.VaultMetadata) (string, error)
	FetchMetadata(ctx context.Context, cid string) (*model.VaultMetadata, error)
	ResolveMediaURLs(cid string) []string
}

// VaultService vault lifecycle coordinator
type VaultService struct {
	session   Session
	contract  ContractClient
	publisher ContentPublisher
	db        database.Database
	now       func() time.Time
}

// New create the vault service
func New(session Session, client ContractClient, pub ContentPublisher, db database.Database) *VaultService {
	return &VaultService{
		session:   session,
		contract:  client,
		publisher: pub,
		db:        db,
		now:       time.Now,
	}
}

// CreateVaultRequest input for vault creation
type CreateVaultRequest struct {
	Name       string `json:"name"`
	UnlockDate string `json:"unlock_date"` // Calendar date, e.g. 2027-02-14
	Message    string `json:"message"`
	Recipient  string `json:"recipient"` // Username or 0x address
	Amount     string `json:"amount"`    // Decimal ether

	MediaFilename string `json:"media_filename,omitempty"`
	MediaData     []byte `json:"media_data,omitempty"`
}

// CreateVaultResult outcome of a successful creation
type CreateVaultResult struct {
	VaultID     uint64 `json:"vault_id"`
	TxHash      string `json:"tx_hash"`
	MetadataCID string `json:"metadata_cid"`
	MediaCID    string `json:"media_cid,omitempty"`
}

// parseUnlockDate parse the calendar date and require it to be strictly
// in the future. Runs before anything touches the network.
func (s *VaultService) parseUnlockDate(value string) (time.Time, error) {
	var unlockAt time.Time
	var err error
	for _, layout := range unlockDateLayouts {
		if unlockAt, err = time.Parse(layout, value); err == nil {
			break
		}
	}
	if err != nil {
		return time.Time{}, vaulterr.New(vaulterr.KindInvalidUnlockDate,
			fmt.Sprintf("cannot parse unlock date %q", value))
	}
	if !unlockAt.After(s.now()) {
		return time.Time{}, vaulterr.New(vaulterr.KindInvalidUnlockDate,
			fmt.Sprintf("unlock date %q is not in the future", value))
	}
	return unlockAt, nil
}

// CreateVault run the full creation sequence: validate, resolve the
// recipient, publish media and metadata, submit the transaction, then
// index the new vault.
func (s *VaultService) CreateVault(ctx context.Context, req *CreateVaultRequest) (*CreateVaultResult, error) {
	if !s.session.Connected() {
		return nil, vaulterr.New(vaulterr.KindWalletNotConnected, "connect a wallet before creating a vault")
	}

	unlockAt, err := s.parseUnlockDate(req.UnlockDate)
	if err != nil {
		return nil, err
	}

	sender := s.session.Address()
	senderName, err := s.contract.GetUsernameByAddress(ctx, sender)
	if err != nil {
		return nil, err
	}
	if senderName == "" {
		return nil, vaulterr.New(vaulterr.KindSenderNotRegistered,
			"register a username before creating a vault")
	}

	recipientName, recipientAddr, err := s.resolveRecipient(ctx, req.Recipient)
	if err != nil {
		return nil, err
	}

	var mediaCID string
	var mediaKind model.MediaKind
	if req.MediaFilename != "" {
		upload, err := s.publisher.UploadMedia(ctx, req.MediaFilename, req.MediaData)
		if err != nil {
			return nil, err
		}
		mediaCID = upload.CID
		mediaKind = upload.Kind
	}

	now := s.now()
	meta := &model.VaultMetadata{
		Name:             req.Name,
		UnlockDate:       req.UnlockDate,
		Message:          req.Message,
		RecipientAddress: recipientAddr.Hex(),
		Amount:           req.Amount,
		MediaKind:        mediaKind,
		MediaCID:         mediaCID,
		CreatedAt:        now.Unix(),
		Creator:          sender.Hex(),
	}
	metadataCID, err := s.publisher.UploadMetadata(ctx, meta)
	if err != nil {
		return nil, err
	}

	unlockDelay := uint64(unlockAt.Unix() - now.Unix())
	vaultID, result, err := s.contract.SendSnap(ctx, sender, recipientName, metadataCID,
		req.Message, unlockDelay, model.VaultKindTimed, req.Amount)
	if err != nil {
		return nil, err
	}

	s.indexVault(&model.VaultRecord{
		ID:            vaultID,
		Sender:        senderName,
		Recipient:     recipientName,
		SenderAddr:    sender.Hex(),
		RecipientAddr: recipientAddr.Hex(),
		MetadataCID:   metadataCID,
		Message:       req.Message,
		CreatedAt:     now.Unix(),
		UnlockAt:      unlockAt.Unix(),
		Kind:          uint8(model.VaultKindTimed),
		TxHash:        result.TxHash.Hex(),
	})

	return &CreateVaultResult{
		VaultID:     vaultID,
		TxHash:      result.TxHash.Hex(),
		MetadataCID: metadataCID,
		MediaCID:    mediaCID,
	}, nil
}

// resolveRecipient accept a username or a raw address and return both
// identities.
func (s *VaultService) resolveRecipient(ctx context.Context, recipient string) (string, common.Address, error) {
	if common.IsHexAddress(recipient) {
		addr := common.HexToAddress(recipient)
		name, err := s.contract.GetUsernameByAddress(ctx, addr)
		if err != nil {
			return "", common.Address{}, err
		}
		if name == "" {
			return "", common.Address{}, vaulterr.New(vaulterr.KindRecipientNotRegistered,
				fmt.Sprintf("address %s has no registered username", addr.Hex()))
		}
		return name, addr, nil
	}

	addr, err := s.contract.GetAddressByUsername(ctx, recipient)
	if err != nil {
		return "", common.Address{}, err
	}
	if addr == (common.Address{}) {
		return "", common.Address{}, vaulterr.New(vaulterr.KindRecipientNotRegistered,
			fmt.Sprintf("username %q is not registered", recipient))
	}
	return recipient, addr, nil
}

// indexVault best-effort local index write; chain state is already
// committed, so an index failure only costs a later backfill.
func (s *VaultService) indexVault(record *model.VaultRecord) {
	if err := s.db.SaveVaultRecord(record); err != nil {
		log.Printf("Failed to index vault %d: %v", record.ID, err)
	}
	database.DeleteCache(database.ContactsCacheKey(record.SenderAddr))
	database.DeleteCache(database.ContactsCacheKey(record.RecipientAddr))
}

// RegisterUsername claim a username for the connected wallet and prime
// the local registry cache.
func (s *VaultService) RegisterUsername(ctx context.Context, username string) (string, error) {
	if !s.session.Connected() {
		return "", vaulterr.New(vaulterr.KindWalletNotConnected, "connect a wallet before registering")
	}

	address := s.session.Address()
	result, err := s.contract.RegisterUsername(ctx, address, username)
	if err != nil {
		return "", err
	}

	if err := s.db.SaveUsername(&model.UsernameEntry{Address: address.Hex(), Username: username}); err != nil {
		log.Printf("Failed to cache username %q: %v", username, err)
	}
	return result.TxHash.Hex(), nil
}

// OpenVault open a vault as the connected wallet
func (s *VaultService) OpenVault(ctx context.Context, vaultID uint64) (string, error) {
	if !s.session.Connected() {
		return "", vaulterr.New(vaulterr.KindWalletNotConnected, "connect a wallet before opening")
	}

	result, err := s.contract.OpenSnap(ctx, s.session.Address(), vaultID)
	if err != nil {
		return "", err
	}

	if err := s.db.MarkVaultOpened(vaultID); err != nil && err != database.ErrNotFound {
		log.Printf("Failed to mark vault %d opened in index: %v", vaultID, err)
	}
	database.DeleteCache(database.VaultCacheKey(vaultID))
	return result.TxHash.Hex(), nil
}

// GetVault read a vault, serving from cache when the chain was read
// recently.
func (s *VaultService) GetVault(ctx context.Context, vaultID uint64) (*contract.VaultState, error) {
	var cached contract.VaultState
	if err := database.GetCache(database.VaultCacheKey(vaultID), &cached); err == nil {
		return &cached, nil
	}

	state, err := s.contract.GetVault(ctx, vaultID)
	if err != nil {
		return nil, err
	}
	database.SetCache(database.VaultCacheKey(vaultID), state)
	return state, nil
}

// CanAccessVault display-only access classification for the connected
// wallet.
func (s *VaultService) CanAccessVault(ctx context.Context, vaultID uint64) (model.VaultAccess, error) {
	state, err := s.GetVault(ctx, vaultID)
	if err != nil {
		return model.VaultAccess{}, err
	}
	return contract.CanAccessVault(state, s.session.Address(), s.now()), nil
}

// VaultMetadata fetch the off-chain document a vault points at
func (s *VaultService) VaultMetadata(ctx context.Context, vaultID uint64) (*model.VaultMetadata, error) {
	state, err := s.GetVault(ctx, vaultID)
	if err != nil {
		return nil, err
	}
	return s.publisher.FetchMetadata(ctx, state.Vault.MetadataCID)
}

// MediaURLs ordered candidate URLs for a content identifier
func (s *VaultService) MediaURLs(cid string) []string {
	return s.publisher.ResolveMediaURLs(cid)
}
