package models

import "time"

// UserSetting is one per-user key/value row. The allowed keys and their
// defaults live with the account controller; unknown keys never reach the
// table.
type UserSetting struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	UserID   uint   `gorm:"not null;uniqueIndex:idx_user_setting_key" json:"user_id"`
	Key      string `gorm:"column:setting_key;size:100;not null;uniqueIndex:idx_user_setting_key" json:"key"`
	Value    string `gorm:"column:setting_value;type:text" json:"value"`
	Category string `gorm:"size:50;index" json:"category"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
