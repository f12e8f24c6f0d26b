package model

import "time"

// UsernameEntry bidirectional address <-> username mapping held by the
// contract and cached locally. Registration is permanent: no rename or
// unregister operation exists.
type UsernameEntry struct {
	Address  string    `gorm:"primaryKey;type:varchar(64)" json:"address"`
	Username string    `gorm:"uniqueIndex;type:varchar(32)" json:"username"`
	CachedAt time.Time `gorm:"autoUpdateTime" json:"cached_at"`
}

// TableName specify table name
func (UsernameEntry) TableName() string {
	return "tb_username"
}
