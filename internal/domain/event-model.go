package domain

import (
	"time"

	"gorm.io/gorm"
)

type EventStatus string

const (
	EventStatusPending EventStatus = "V Čakaní" // default until the organiser activates
	EventStatusActive  EventStatus = "active"
)

type ParticipationStatus int

const (
	ParticipationPending  ParticipationStatus = 0
	ParticipationAccepted ParticipationStatus = 1
	ParticipationDeclined ParticipationStatus = 2
)

type Event struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	UserID      uint        `gorm:"index;not null" json:"user_id"` // organiser
	Address     string      `gorm:"type:varchar(255)" json:"address"`
	Lat         *float64    `json:"lat"`
	Lon         *float64    `json:"lon"`
	Description *string     `gorm:"type:text" json:"description"`
	From        time.Time   `json:"from"`
	Till        *time.Time  `json:"till"` // nil while the event is open
	Status      EventStatus `gorm:"type:varchar(50);not null;default:'V Čakaní'" json:"status"`

	EventUsers []EventUser `gorm:"constraint:OnDelete:CASCADE;foreignKey:EventID" json:"users"`
	gorm.Model
}

// Closed reports whether the event has been finished. A closed event is
// immutable with respect to status and participation changes.
func (e *Event) Closed() bool {
	return e.Till != nil
}

// HasPending reports whether any participant has not answered yet.
func (e *Event) HasPending() bool {
	for _, eu := range e.EventUsers {
		if eu.Status == ParticipationPending {
			return true
		}
	}
	return false
}

type EventUser struct {
	ID      uint                `gorm:"primaryKey" json:"id"`
	EventID uint                `gorm:"index:idx_event_user,unique;not null" json:"event_id"`
	UserID  uint                `gorm:"index:idx_event_user,unique;not null" json:"user_id"`
	Status  ParticipationStatus `gorm:"not null;default:0" json:"status"`

	User *User `json:"user,omitempty"`
	gorm.Model
}
