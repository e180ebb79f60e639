package repository

import (
	"errors"

	"github.com/rescuenet/callout_service/internal/domain"
	"gorm.io/gorm"
)

type ParticipationRepository interface {
	FindByEventAndUser(eventID, userID uint) (*domain.EventUser, error)
	SaveParticipation(eu *domain.EventUser) error
	// DeclinePending flips every still-pending row of an event to declined.
	DeclinePending(eventID uint) error
}

type participationRepository struct {
	db *gorm.DB
}

func NewParticipationRepository(db *gorm.DB) ParticipationRepository {
	return &participationRepository{db: db}
}

func (r *participationRepository) FindByEventAndUser(eventID, userID uint) (*domain.EventUser, error) {
	eu := &domain.EventUser{}
	err := r.db.Where("event_id = ? AND user_id = ?", eventID, userID).First(eu).Error
	if err != nil {
		return nil, err
	}
	return eu, nil
}

func (r *participationRepository) SaveParticipation(eu *domain.EventUser) error {
	if eu == nil {
		return errors.New("nil participation")
	}
	return r.db.Save(eu).Error
}

func (r *participationRepository) DeclinePending(eventID uint) error {
	return r.db.Model(&domain.EventUser{}).
		Where("event_id = ? AND status = ?", eventID, domain.ParticipationPending).
		Update("status", domain.ParticipationDeclined).Error
}
