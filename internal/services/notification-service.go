package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/rescuenet/callout_service/internal/clients/firebase"
	"github.com/rescuenet/callout_service/internal/domain"
	"github.com/rescuenet/callout_service/internal/interfaces"
	"github.com/rescuenet/callout_service/internal/repository"
)

const (
	titleEventActive   = "Zásah sa začal!"
	titleEventReminder = "Zásah čoskoro! Buď pripravení!"
)

type NotificationService interface {
	// SendEventNotification fans one push message out to every registered
	// device token except the excluded user's (0 excludes nobody). Sends are
	// independent and best-effort: a failing token never blocks the rest and
	// no error reaches the caller.
	SendEventNotification(event *domain.Event, excludeUserID uint)
}

type notificationService struct {
	tokens repository.FcmTokenRepository
	push   interfaces.PushSender
}

func NewNotificationService(tokens repository.FcmTokenRepository, push interfaces.PushSender) NotificationService {
	return &notificationService{tokens: tokens, push: push}
}

func (s *notificationService) SendEventNotification(event *domain.Event, excludeUserID uint) {
	if event == nil {
		return
	}

	tokens, err := s.tokens.ListExcept(excludeUserID)
	if err != nil {
		log.Printf("list fcm tokens error: %v", err)
		return
	}

	for _, t := range tokens {
		msg := buildEventMessage(event, t.Token)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := s.push.Send(ctx, msg); err != nil {
			log.Printf("push send to user %d failed: %v", t.UserID, err)
		}
		cancel()
	}
}

// buildEventMessage derives the payload purely from the event status: the
// activation alert rings with the default sound, everything before that is a
// reminder with the siren. The apns variant needs the platform file extension.
func buildEventMessage(event *domain.Event, token string) *firebase.Message {
	title := titleEventReminder
	sound := "siren_alarm"
	apnsSound := "siren_alarm.caf"
	if event.Status == domain.EventStatusActive {
		title = titleEventActive
		sound = "default"
		apnsSound = "default"
	}

	return &firebase.Message{
		Token: token,
		Notification: firebase.Notification{
			Title: title,
			Body:  fmt.Sprintf("Poloha: %s", event.Address),
		},
		Android: &firebase.AndroidConfig{
			Notification: firebase.AndroidNotification{
				Sound:     sound,
				ChannelID: "default",
			},
		},
		APNS: &firebase.APNSConfig{
			Payload: firebase.APNSPayload{
				Aps: firebase.Aps{Sound: apnsSound},
			},
		},
	}
}
