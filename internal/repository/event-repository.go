package repository

import (
	"errors"
	"time"

	"github.com/rescuenet/callout_service/internal/domain"
	"gorm.io/gorm"
)

type EventRepository interface {
	// CreateWithParticipants persists the event and its participation rows
	// in one transaction.
	CreateWithParticipants(event *domain.Event, userIDs []uint) error
	FindEventById(eventID uint) (*domain.Event, error)
	ListEvents() ([]domain.Event, error)
	ListOpenEvents() ([]domain.Event, error)
	SaveEvent(event *domain.Event) error
	UpdateEventFields(eventID uint, fields map[string]any) error
	// DeleteEvent removes the participation rows and then the event itself.
	DeleteEvent(eventID uint) error
}

type eventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) CreateWithParticipants(event *domain.Event, userIDs []uint) error {
	if event == nil {
		return errors.New("nil event")
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(event).Error; err != nil {
			return err
		}
		for _, id := range userIDs {
			eu := domain.EventUser{
				EventID: event.ID,
				UserID:  id,
				Status:  domain.ParticipationPending,
			}
			if err := tx.Create(&eu).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *eventRepository) FindEventById(eventID uint) (*domain.Event, error) {
	event := &domain.Event{}
	err := r.db.Preload("EventUsers.User").First(event, eventID).Error
	if err != nil {
		return nil, err
	}
	return event, nil
}

func (r *eventRepository) ListEvents() ([]domain.Event, error) {
	var events []domain.Event
	err := r.db.Preload("EventUsers.User").Order("id DESC").Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (r *eventRepository) ListOpenEvents() ([]domain.Event, error) {
	var events []domain.Event
	err := r.db.Preload("EventUsers").Where("till IS NULL").Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (r *eventRepository) SaveEvent(event *domain.Event) error {
	if event == nil {
		return errors.New("nil event")
	}
	return r.db.Omit("EventUsers").Save(event).Error
}

func (r *eventRepository) UpdateEventFields(eventID uint, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	fields["updated_at"] = time.Now()
	return r.db.Model(&domain.Event{}).Where("id = ?", eventID).Updates(fields).Error
}

func (r *eventRepository) DeleteEvent(eventID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("event_id = ?", eventID).Delete(&domain.EventUser{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&domain.Event{}, eventID).Error
	})
}
