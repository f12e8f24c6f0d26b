package vault_service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/schollz/progressbar/v3"

	"snap-vault/model"
)

// Backfill rebuild the local index from chain state for the configured
// addresses. Runs at startup; the index is a cache, so losing it only
// costs this rescan.
func (s *VaultService) Backfill(ctx context.Context, addresses []string) error {
	for _, raw := range addresses {
		if !common.IsHexAddress(raw) {
			log.Printf("Skipping invalid backfill address: %q", raw)
			continue
		}
		if err := s.backfillAddress(ctx, common.HexToAddress(raw)); err != nil {
			return fmt.Errorf("backfill for %s failed: %w", raw, err)
		}
	}
	return nil
}

func (s *VaultService) backfillAddress(ctx context.Context, address common.Address) error {
	sentIDs, err := s.contract.GetUserSentSnaps(ctx, address)
	if err != nil {
		return err
	}
	recvIDs, err := s.contract.GetUserReceivedSnaps(ctx, address)
	if err != nil {
		return err
	}

	ids := make([]uint64, 0, len(sentIDs)+len(recvIDs))
	seen := map[uint64]bool{}
	for _, id := range append(sentIDs, recvIDs...) {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		log.Printf("No vaults to backfill for %s", address.Hex())
		return nil
	}

	bar := progressbar.NewOptions(len(ids),
		progressbar.OptionSetDescription(fmt.Sprintf("Indexing vaults for %s", address.Hex())),
		progressbar.OptionSetWidth(50),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("vaults"),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
	)

	for _, id := range ids {
		state, err := s.contract.GetVault(ctx, id)
		if err != nil {
			log.Printf("Skipping vault %d during backfill: %v", id, err)
			bar.Add(1)
			continue
		}

		record := &model.VaultRecord{
			ID:            id,
			Sender:        state.Vault.Sender,
			Recipient:     state.Vault.Recipient,
			SenderAddr:    state.SenderAddr.Hex(),
			RecipientAddr: state.RecipientAddr.Hex(),
			MetadataCID:   state.Vault.MetadataCID,
			Message:       state.Vault.Message,
			Amount:        state.Vault.Amount,
			CreatedAt:     state.Vault.CreatedAt,
			UnlockAt:      state.Vault.UnlockAt,
			Opened:        state.Vault.Opened,
			Kind:          uint8(state.Vault.Kind),
		}
		if err := s.db.SaveVaultRecord(record); err != nil {
			return fmt.Errorf("failed to index vault %d: %w", id, err)
		}
		bar.Add(1)
	}
	fmt.Println()

	log.Printf("Backfill complete for %s: %d vaults indexed", address.Hex(), len(ids))
	return nil
}
