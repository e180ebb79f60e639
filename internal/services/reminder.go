package services

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/rescuenet/callout_service/internal/repository"
	"gorm.io/gorm"
)

// DefaultReminderInterval is how long the scheduler waits between reminder
// dispatches for an open event with unanswered participations.
const DefaultReminderInterval = 30 * time.Second

// ReminderScheduler re-sends event notifications to non-responders on a
// fixed delay. One timer per event id, armed when the event is created and
// re-armed after every dispatch. Each wake re-fetches the event by id, so an
// event finished or deleted in the meantime terminates the loop on its own;
// Cancel additionally stops the timer proactively.
type ReminderScheduler struct {
	interval time.Duration
	events   repository.EventRepository
	notifier NotificationService

	mu     sync.Mutex
	timers map[uint]*time.Timer
}

func NewReminderScheduler(interval time.Duration, events repository.EventRepository, notifier NotificationService) *ReminderScheduler {
	if interval <= 0 {
		interval = DefaultReminderInterval
	}
	return &ReminderScheduler{
		interval: interval,
		events:   events,
		notifier: notifier,
		timers:   make(map[uint]*time.Timer),
	}
}

func (s *ReminderScheduler) Arm(eventID uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.armLocked(eventID)
}

func (s *ReminderScheduler) armLocked(eventID uint) {
	if t, ok := s.timers[eventID]; ok {
		t.Stop()
	}
	s.timers[eventID] = time.AfterFunc(s.interval, func() {
		s.fire(eventID)
	})
}

func (s *ReminderScheduler) Cancel(eventID uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[eventID]; ok {
		t.Stop()
		delete(s.timers, eventID)
	}
}

// Restore re-arms the loop for every open event after a process restart.
func (s *ReminderScheduler) Restore() {
	events, err := s.events.ListOpenEvents()
	if err != nil {
		log.Printf("reminder restore error: %v", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range events {
		if events[i].HasPending() {
			s.armLocked(events[i].ID)
		}
	}
}

func (s *ReminderScheduler) fire(eventID uint) {
	event, err := s.events.FindEventById(eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.Cancel(eventID)
			return
		}
		// transient fetch failure: keep the loop alive and retry next tick
		log.Printf("reminder fetch error for event %d: %v", eventID, err)
		s.rearm(eventID)
		return
	}
	if event.Closed() || !event.HasPending() {
		s.Cancel(eventID)
		return
	}

	log.Printf("sending reminder for event %d", eventID)
	s.notifier.SendEventNotification(event, 0)
	s.rearm(eventID)
}

// rearm restarts the timer unless Cancel raced the dispatch; a cancelled
// event stays cancelled.
func (s *ReminderScheduler) rearm(eventID uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.timers[eventID]; ok {
		s.armLocked(eventID)
	}
}
