package model

// SessionSnapshot minimal wallet session state persisted locally.
// Used only to pre-populate state optimistically on relaunch; the
// cryptographic session lives in the external wallet and cannot be
// reconstructed from this snapshot.
type SessionSnapshot struct {
	Address string `json:"address"`
	ChainID int64  `json:"chainId"`
}

// SessionRecord storage row for the session snapshot. A single row
// (fixed primary key) holds the one tracked session.
type SessionRecord struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	Address string `gorm:"type:varchar(64)" json:"address"`
	ChainID int64  `json:"chain_id"`
}

// TableName specify table name
func (SessionRecord) TableName() string {
	return "tb_session"
}
