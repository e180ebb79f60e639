package domain

import "gorm.io/gorm"

// FcmToken maps a user to their latest push delivery token. A user keeps a
// single token (upsert by user id) and a token can belong to only one user.
type FcmToken struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	UserID uint   `gorm:"uniqueIndex;not null" json:"user_id"`
	Token  string `gorm:"uniqueIndex;not null" json:"-"`
	gorm.Model
}
