package model

import "time"

// VaultKind vault kind (instant or timed)
type VaultKind uint8

const (
	VaultKindInstant VaultKind = 0
	VaultKindTimed   VaultKind = 1
)

// String return the kind name
func (k VaultKind) String() string {
	if k == VaultKindInstant {
		return "instant"
	}
	return "timed"
}

// Vault on-chain vault record
type Vault struct {
	ID          uint64 `json:"id"`           // Numeric vault identifier
	Sender      string `json:"sender"`       // Sender username
	Recipient   string `json:"recipient"`    // Recipient username
	MetadataCID string `json:"metadata_cid"` // Content identifier of the off-chain metadata document
	Message     string `json:"message"`      // Message text
	Amount      string `json:"amount"`       // Payment amount in wei (decimal string)
	CreatedAt   int64  `json:"created_at"`   // Creation timestamp (seconds since epoch)
	UnlockAt    int64  `json:"unlock_at"`    // Unlock timestamp (seconds since epoch)
	Opened      bool   `json:"opened"`       // Whether the vault has been opened (monotonic)
	Kind        VaultKind `json:"kind"`      // instant/timed
}

// IsUnlocked report whether the unlock time has passed
func (v *Vault) IsUnlocked(now time.Time) bool {
	return now.Unix() >= v.UnlockAt
}

// VaultRecord local index row for a vault observed on chain
type VaultRecord struct {
	ID uint64 `gorm:"primaryKey" json:"id"` // Vault identifier (chain-assigned)

	Sender      string `gorm:"index;type:varchar(64)" json:"sender"`        // Sender username
	Recipient   string `gorm:"index;type:varchar(64)" json:"recipient"`     // Recipient username
	SenderAddr  string `gorm:"index;type:varchar(64)" json:"sender_addr"`   // Sender address
	RecipientAddr string `gorm:"index;type:varchar(64)" json:"recipient_addr"` // Recipient address
	MetadataCID string `gorm:"type:varchar(128)" json:"metadata_cid"`       // Metadata content identifier
	Message     string `gorm:"type:text" json:"message"`                    // Message text
	Amount      string `gorm:"type:varchar(64)" json:"amount"`              // Payment amount in wei
	CreatedAt   int64  `gorm:"index" json:"created_at"`                     // Creation timestamp
	UnlockAt    int64  `json:"unlock_at"`                                   // Unlock timestamp
	Opened      bool   `json:"opened"`                                      // Opened flag
	Kind        uint8  `json:"kind"`                                        // 0 instant, 1 timed
	TxHash      string `gorm:"type:varchar(66)" json:"tx_hash"`             // Creation transaction hash

	IndexedAt time.Time `gorm:"autoUpdateTime" json:"indexed_at"` // Last index write time
}

// TableName specify table name
func (VaultRecord) TableName() string {
	return "tb_vault"
}

// ToVault convert an index row back to the on-chain view
func (r *VaultRecord) ToVault() *Vault {
	return &Vault{
		ID:          r.ID,
		Sender:      r.Sender,
		Recipient:   r.Recipient,
		MetadataCID: r.MetadataCID,
		Message:     r.Message,
		Amount:      r.Amount,
		CreatedAt:   r.CreatedAt,
		UnlockAt:    r.UnlockAt,
		Opened:      r.Opened,
		Kind:        VaultKind(r.Kind),
	}
}

// AccessReason display-only access classification
type AccessReason string

const (
	AccessSender        AccessReason = "sender"
	AccessUnlocked      AccessReason = "unlocked"
	AccessLocked        AccessReason = "locked"
	AccessNotAuthorized AccessReason = "not_authorized"
)

// VaultAccess display-only access classification for a viewer.
// Never an authorization check; the contract decides what is permitted.
type VaultAccess struct {
	CanAccess bool         `json:"can_access"`
	Reason    AccessReason `json:"reason"`
	UnlockAt  int64        `json:"unlock_at,omitempty"` // Set when Reason is "locked"
}
