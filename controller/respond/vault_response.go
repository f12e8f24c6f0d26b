package respond

import (
	"snap-vault/contract"
	"snap-vault/model"
	"snap-vault/service/vault_service"
)

// VaultResponse vault information response structure
type VaultResponse struct {
	ID          uint64 `json:"id" example:"42"`
	Sender      string `json:"sender" example:"alice"`
	Recipient   string `json:"recipient" example:"bob"`
	SenderAddr  string `json:"sender_addr" example:"0x281055afc982d96fAB65b3a49cAc8b878184Cb16"`
	MetadataCID string `json:"metadata_cid" example:"bafybeigdyrztmeta"`
	Message     string `json:"message" example:"happy birthday"`
	Amount      string `json:"amount" example:"10000000000000000"`
	CreatedAt   int64  `json:"created_at" example:"1767225600"`
	UnlockAt    int64  `json:"unlock_at" example:"1798761600"`
	Opened      bool   `json:"opened" example:"false"`
	Kind        string `json:"kind" example:"timed"`
}

// AccessResponse viewer access classification response structure
type AccessResponse struct {
	CanAccess bool   `json:"can_access" example:"true"`
	Reason    string `json:"reason" example:"unlocked"`
	UnlockAt  int64  `json:"unlock_at,omitempty" example:"1798761600"`
}

// ContactResponse contact grouping response structure
type ContactResponse struct {
	Counterpart  string          `json:"counterpart" example:"bob"`
	Address      string          `json:"address" example:"0x8ba1f109551bD432803012645Ac136ddd64DBA72"`
	LastActivity int64           `json:"last_activity" example:"1767225600"`
	Vaults       []VaultResponse `json:"vaults"`
}

// SessionResponse wallet session response structure
type SessionResponse struct {
	Connected bool   `json:"connected" example:"true"`
	Address   string `json:"address" example:"0x281055afc982d96fAB65b3a49cAc8b878184Cb16"`
	ChainID   int64  `json:"chain_id" example:"11155111"`
}

// MediaResponse media upload response structure
type MediaResponse struct {
	CID         string   `json:"cid" example:"bafybeigdyrztmedia"`
	Kind        string   `json:"kind" example:"photo"`
	ContentType string   `json:"content_type" example:"image/jpeg"`
	Size        int64    `json:"size" example:"102400"`
	URLs        []string `json:"urls"`
}

// ResolutionResponse media viewer resolution response structure
type ResolutionResponse struct {
	URL         string   `json:"url" example:"https://ipfs.io/ipfs/bafybeigdyrztmedia"`
	ContentType string   `json:"content_type" example:"image/jpeg"`
	Candidates  []string `json:"candidates"`
}

// ToVaultResponse convert a vault view to the response structure
func ToVaultResponse(vault *model.Vault) VaultResponse {
	return VaultResponse{
		ID:          vault.ID,
		Sender:      vault.Sender,
		Recipient:   vault.Recipient,
		MetadataCID: vault.MetadataCID,
		Message:     vault.Message,
		Amount:      vault.Amount,
		CreatedAt:   vault.CreatedAt,
		UnlockAt:    vault.UnlockAt,
		Opened:      vault.Opened,
		Kind:        vault.Kind.String(),
	}
}

// ToVaultStateResponse convert a contract read to the response structure
func ToVaultStateResponse(state *contract.VaultState) VaultResponse {
	resp := ToVaultResponse(state.Vault)
	resp.SenderAddr = state.SenderAddr.Hex()
	return resp
}

// ToAccessResponse convert an access classification to the response structure
func ToAccessResponse(access model.VaultAccess) AccessResponse {
	return AccessResponse{
		CanAccess: access.CanAccess,
		Reason:    string(access.Reason),
		UnlockAt:  access.UnlockAt,
	}
}

// ToContactResponse convert a contact grouping to the response structure
func ToContactResponse(contact *vault_service.Contact) ContactResponse {
	vaults := make([]VaultResponse, 0, len(contact.Vaults))
	for _, vault := range contact.Vaults {
		vaults = append(vaults, ToVaultResponse(vault))
	}
	return ContactResponse{
		Counterpart:  contact.Counterpart,
		Address:      contact.Address,
		LastActivity: contact.LastActivity,
		Vaults:       vaults,
	}
}
