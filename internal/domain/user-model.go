package domain

import "gorm.io/gorm"

type User struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	FirebaseUID string `gorm:"uniqueIndex;not null" json:"firebase_uid"`
	Name        string `gorm:"type:varchar(255)" json:"name"`
	Email       string `gorm:"uniqueIndex" json:"email"`
	Phone       string `gorm:"uniqueIndex" json:"phone"`
	IsOrganiser bool   `gorm:"default:false" json:"isOrganiser"`
	// Registration creates the account disabled until it is approved;
	// account deletion flips this back instead of removing the row.
	Disabled bool `gorm:"default:false" json:"disabled"`
	gorm.Model
}
