package firebase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Message mirrors the FCM v1 message shape. Only the fields this service
// actually sends are modelled.
type Message struct {
	Token        string            `json:"token"`
	Notification Notification      `json:"notification"`
	Android      *AndroidConfig    `json:"android,omitempty"`
	APNS         *APNSConfig       `json:"apns,omitempty"`
	Data         map[string]string `json:"data,omitempty"`
}

// Notification carries the platform-neutral fields only; per-platform sound
// lives in the android/apns blocks, the v1 API rejects it here.
type Notification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type AndroidConfig struct {
	Notification AndroidNotification `json:"notification"`
}

type AndroidNotification struct {
	Sound     string `json:"sound"`
	ChannelID string `json:"channel_id"`
}

type APNSConfig struct {
	Payload APNSPayload `json:"payload"`
}

type APNSPayload struct {
	Aps Aps `json:"aps"`
}

type Aps struct {
	Sound string `json:"sound"`
}

// MessagingClient talks to the FCM HTTP v1 endpoint. The v1 API authenticates
// with a service-account OAuth2 access token, not the web API key; the
// deployment is expected to keep the configured token fresh (metadata server
// or a refresh sidecar).
type MessagingClient struct {
	projectID   string
	accessToken string
	http        *http.Client
}

func NewMessagingClient(projectID, accessToken string) *MessagingClient {
	return &MessagingClient{
		projectID:   projectID,
		accessToken: accessToken,
		http: &http.Client{
			Timeout: 20 * time.Second,
		},
	}
}

// Send delivers a single push message. Fire-and-forget from the caller's
// point of view: there is no delivery confirmation beyond the HTTP status.
func (c *MessagingClient) Send(ctx context.Context, msg *Message) error {
	if c.projectID == "" {
		return errors.New("missing firebase project id")
	}

	body, err := json.Marshal(map[string]any{"message": msg})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("https://fcm.googleapis.com/v1/projects/%s/messages:send", c.projectID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("fcm http error (%d): %s", resp.StatusCode, string(respBody))
	}
	return nil
}
