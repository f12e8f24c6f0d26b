package model

// MediaKind declared media kind
type MediaKind string

const (
	MediaKindPhoto MediaKind = "photo"
	MediaKindVideo MediaKind = "video"
)

// VaultMetadata off-chain metadata document addressed by a content identifier.
// Created once at vault-creation time; content addressing makes it immutable.
type VaultMetadata struct {
	Name             string    `json:"name"`                       // Vault display name
	UnlockDate       string    `json:"unlock_date"`                // Calendar date string as entered by the sender
	Message          string    `json:"message"`                    // Message content
	RecipientAddress string    `json:"recipient_address"`          // Recipient wallet address
	Amount           string    `json:"amount"`                     // Payment amount (human-readable decimal)
	MediaKind        MediaKind `json:"media_kind,omitempty"`       // photo/video; set iff MediaCID is set
	MediaCID         string    `json:"media_cid,omitempty"`        // Media content identifier; set iff MediaKind is set
	CreatedAt        int64     `json:"created_at"`                 // Creation timestamp (seconds since epoch)
	Creator          string    `json:"creator"`                    // Creator wallet address
}

// Validate check the media pairing invariant
func (m *VaultMetadata) Validate() bool {
	return (m.MediaKind == "") == (m.MediaCID == "")
}
