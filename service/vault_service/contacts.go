package vault_service

import (
	"context"
	"log"
	"sort"
	"sync"

	"snap-vault/database"
	"snap-vault/model"
	"snap-vault/vaulterr"
)

// Contact a chat-style grouping of every vault exchanged with one
// counterpart, newest activity first.
type Contact struct {
	Counterpart  string         `json:"counterpart"` // Username of the other party
	Address      string         `json:"address"`     // Address of the other party
	Vaults       []*model.Vault `json:"vaults"`
	LastActivity int64          `json:"last_activity"`
}

// Contacts reconstruct the contact view for the connected wallet by
// merging its sent and received vaults. The two id lists are fetched
// concurrently and awaited jointly.
func (s *VaultService) Contacts(ctx context.Context) ([]*Contact, error) {
	if !s.session.Connected() {
		return nil, vaulterr.New(vaulterr.KindWalletNotConnected, "connect a wallet to list contacts")
	}
	address := s.session.Address()

	var cached []*Contact
	if err := database.GetCache(database.ContactsCacheKey(address.Hex()), &cached); err == nil {
		return cached, nil
	}

	var (
		wg               sync.WaitGroup
		sentIDs, recvIDs []uint64
		sentErr, recvErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		sentIDs, sentErr = s.contract.GetUserSentSnaps(ctx, address)
	}()
	go func() {
		defer wg.Done()
		recvIDs, recvErr = s.contract.GetUserReceivedSnaps(ctx, address)
	}()
	wg.Wait()
	if sentErr != nil {
		return nil, sentErr
	}
	if recvErr != nil {
		return nil, recvErr
	}

	byCounterpart := map[string]*Contact{}
	seen := map[uint64]bool{}
	for _, id := range append(sentIDs, recvIDs...) {
		if seen[id] {
			continue
		}
		seen[id] = true

		state, err := s.GetVault(ctx, id)
		if err != nil {
			// A single unreadable vault must not sink the whole view
			log.Printf("Skipping vault %d in contact view: %v", id, err)
			continue
		}

		counterpartAddr := state.SenderAddr
		counterpartName := state.Vault.Sender
		if state.SenderAddr == address {
			counterpartAddr = state.RecipientAddr
			counterpartName = state.Vault.Recipient
		}

		contact, ok := byCounterpart[counterpartAddr.Hex()]
		if !ok {
			contact = &Contact{Counterpart: counterpartName, Address: counterpartAddr.Hex()}
			byCounterpart[counterpartAddr.Hex()] = contact
		}
		contact.Vaults = append(contact.Vaults, state.Vault)
		if state.Vault.CreatedAt > contact.LastActivity {
			contact.LastActivity = state.Vault.CreatedAt
		}
	}

	contacts := make([]*Contact, 0, len(byCounterpart))
	for _, contact := range byCounterpart {
		sort.Slice(contact.Vaults, func(i, j int) bool {
			return contact.Vaults[i].CreatedAt > contact.Vaults[j].CreatedAt
		})
		contacts = append(contacts, contact)
	}
	sort.Slice(contacts, func(i, j int) bool {
		return contacts[i].LastActivity > contacts[j].LastActivity
	})

	database.SetCache(database.ContactsCacheKey(address.Hex()), contacts)
	return contacts, nil
}
