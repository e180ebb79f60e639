package services

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rescuenet/callout_service/internal/domain"
	"github.com/rescuenet/callout_service/internal/dto"
	"github.com/rescuenet/callout_service/internal/interfaces"
	"github.com/rescuenet/callout_service/internal/repository"
	"gorm.io/gorm"
)

type EventService interface {
	CreateEvent(actor *domain.User, input dto.CreateEventRequest) (*domain.Event, error)
	UpdateEvent(actor *domain.User, eventID uint, input dto.UpdateEventRequest) (*domain.Event, error)
	ActivateEvent(actor *domain.User, eventID uint) (*domain.Event, error)
	// FinishEvent closes the event and returns it together with the full
	// refreshed listing. Finishing an already closed event is a no-op.
	FinishEvent(actor *domain.User, eventID uint) (*domain.Event, []domain.Event, error)
	DeleteEvent(actor *domain.User, eventID uint) ([]domain.Event, error)
	ListEvents() ([]domain.Event, error)
	GetEvent(eventID uint) (*domain.Event, error)
	// Respond sets the actor's own participation row. Accepted statuses are
	// ParticipationAccepted and ParticipationDeclined.
	Respond(actor *domain.User, eventID uint, status domain.ParticipationStatus) (*domain.Event, error)
}

type eventService struct {
	events         repository.EventRepository
	participations repository.ParticipationRepository
	users          repository.UserRepository
	notifier       NotificationService
	reminders      *ReminderScheduler
	producer       interfaces.ProducerHandler
}

func NewEventService(
	events repository.EventRepository,
	participations repository.ParticipationRepository,
	users repository.UserRepository,
	notifier NotificationService,
	reminders *ReminderScheduler,
	producer interfaces.ProducerHandler,
) EventService {
	return &eventService{
		events:         events,
		participations: participations,
		users:          users,
		notifier:       notifier,
		reminders:      reminders,
		producer:       producer,
	}
}

func (s *eventService) CreateEvent(actor *domain.User, input dto.CreateEventRequest) (*domain.Event, error) {
	if !actor.IsOrganiser {
		return nil, ErrForbidden
	}

	address := strings.TrimSpace(input.Address)
	if address == "" {
		return nil, NewValidationError("address", "Pole adresa je povinné")
	}
	if len(address) > 255 {
		return nil, NewValidationError("address", "Adresa môže mať maximálne 255 znakov")
	}

	participants, err := s.users.ListEnabledExcept(actor.ID)
	if err != nil {
		return nil, err
	}
	userIDs := make([]uint, 0, len(participants))
	for _, u := range participants {
		userIDs = append(userIDs, u.ID)
	}

	event := &domain.Event{
		UserID:      actor.ID,
		Address:     address,
		Lat:         input.Lat,
		Lon:         input.Lon,
		Description: input.Description,
		From:        time.Now(),
		Status:      domain.EventStatusPending,
	}

	if err := s.events.CreateWithParticipants(event, userIDs); err != nil {
		return nil, err
	}

	event, err = s.events.FindEventById(event.ID)
	if err != nil {
		return nil, err
	}

	// exactly one dispatch per triggering action
	s.notifier.SendEventNotification(event, actor.ID)
	s.reminders.Arm(event.ID)
	s.publish("event.created", event)

	return event, nil
}

func (s *eventService) UpdateEvent(actor *domain.User, eventID uint, input dto.UpdateEventRequest) (*domain.Event, error) {
	if !actor.IsOrganiser {
		return nil, ErrForbidden
	}

	if _, err := s.loadEvent(eventID); err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if input.Address != nil {
		address := strings.TrimSpace(*input.Address)
		if address == "" {
			return nil, NewValidationError("address", "Pole adresa je povinné")
		}
		if len(address) > 255 {
			return nil, NewValidationError("address", "Adresa môže mať maximálne 255 znakov")
		}
		fields["address"] = address
	}
	if input.Lat != nil {
		fields["lat"] = *input.Lat
	}
	if input.Lon != nil {
		fields["lon"] = *input.Lon
	}
	if input.Description != nil {
		fields["description"] = *input.Description
	}

	if err := s.events.UpdateEventFields(eventID, fields); err != nil {
		return nil, err
	}

	return s.loadEvent(eventID)
}

func (s *eventService) ActivateEvent(actor *domain.User, eventID uint) (*domain.Event, error) {
	if !actor.IsOrganiser {
		return nil, ErrForbidden
	}

	event, err := s.loadEvent(eventID)
	if err != nil {
		return nil, err
	}

	// re-activating an already active event is allowed
	event.Status = domain.EventStatusActive
	if err := s.events.SaveEvent(event); err != nil {
		return nil, err
	}

	s.notifier.SendEventNotification(event, actor.ID)
	s.publish("event.activated", event)

	return event, nil
}

func (s *eventService) FinishEvent(actor *domain.User, eventID uint) (*domain.Event, []domain.Event, error) {
	if !actor.IsOrganiser {
		return nil, nil, ErrForbidden
	}

	event, err := s.loadEvent(eventID)
	if err != nil {
		return nil, nil, err
	}

	if !event.Closed() {
		now := time.Now()
		event.Till = &now
		if err := s.events.SaveEvent(event); err != nil {
			return nil, nil, err
		}
		if err := s.participations.DeclinePending(eventID); err != nil {
			return nil, nil, err
		}
		s.reminders.Cancel(eventID)
		s.publish("event.finished", event)

		event, err = s.loadEvent(eventID)
		if err != nil {
			return nil, nil, err
		}
	}

	events, err := s.events.ListEvents()
	if err != nil {
		return nil, nil, err
	}
	return event, events, nil
}

func (s *eventService) DeleteEvent(actor *domain.User, eventID uint) ([]domain.Event, error) {
	if !actor.IsOrganiser {
		return nil, ErrForbidden
	}

	event, err := s.loadEvent(eventID)
	if err != nil {
		return nil, err
	}

	if err := s.events.DeleteEvent(eventID); err != nil {
		return nil, err
	}
	s.reminders.Cancel(eventID)
	s.publish("event.deleted", event)

	return s.events.ListEvents()
}

func (s *eventService) ListEvents() ([]domain.Event, error) {
	return s.events.ListEvents()
}

func (s *eventService) GetEvent(eventID uint) (*domain.Event, error) {
	return s.loadEvent(eventID)
}

func (s *eventService) Respond(actor *domain.User, eventID uint, status domain.ParticipationStatus) (*domain.Event, error) {
	if status != domain.ParticipationAccepted && status != domain.ParticipationDeclined {
		return nil, NewValidationError("status", "invalid participation status")
	}

	event, err := s.loadEvent(eventID)
	if err != nil {
		return nil, err
	}
	if event.Closed() {
		return nil, ErrEventClosed
	}

	row, err := s.participations.FindByEventAndUser(eventID, actor.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// the organiser and late registrations have no row to answer with
			return nil, ErrForbidden
		}
		return nil, err
	}

	row.Status = status
	if err := s.participations.SaveParticipation(row); err != nil {
		return nil, err
	}

	return s.loadEvent(eventID)
}

func (s *eventService) loadEvent(eventID uint) (*domain.Event, error) {
	event, err := s.events.FindEventById(eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return event, nil
}

// publish pushes a lifecycle record onto the audit stream, best-effort.
func (s *eventService) publish(kind string, event *domain.Event) {
	if s.producer == nil {
		return
	}
	payload, err := json.Marshal(map[string]any{
		"correlation_id": uuid.NewString(),
		"event_id":       event.ID,
		"status":         event.Status,
		"address":        event.Address,
	})
	if err != nil {
		return
	}
	_ = s.producer.PublishMessage([]byte(kind), payload)
}
