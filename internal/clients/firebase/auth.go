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

// IdentityUser is the subset of a Firebase account record this service cares
// about.
type IdentityUser struct {
	UID   string
	Email string
	Name  string
}

type AuthClient struct {
	apiKey string
	http   *http.Client
}

func NewAuthClient(apiKey string) *AuthClient {
	return &AuthClient{
		apiKey: apiKey,
		http: &http.Client{
			Timeout: 20 * time.Second,
		},
	}
}

const identityToolkitURL = "https://identitytoolkit.googleapis.com/v1"

type authError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *AuthClient) post(ctx context.Context, action string, payload any, out any) error {
	if c.apiKey == "" {
		return errors.New("missing firebase api key")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/accounts:%s?key=%s", identityToolkitURL, action, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var e authError
		if json.Unmarshal(respBody, &e) == nil && e.Error.Message != "" {
			return fmt.Errorf("firebase auth error (%d): %s", resp.StatusCode, e.Error.Message)
		}
		return fmt.Errorf("firebase auth http error (%d): %s", resp.StatusCode, string(respBody))
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return err
		}
	}
	return nil
}

// SignUp creates the account at the identity provider and returns its uid.
func (c *AuthClient) SignUp(ctx context.Context, email, password, displayName string) (string, error) {
	var out struct {
		LocalID string `json:"localId"`
	}
	err := c.post(ctx, "signUp", map[string]any{
		"email":             email,
		"password":          password,
		"displayName":       displayName,
		"returnSecureToken": true,
	}, &out)
	if err != nil {
		return "", err
	}
	if out.LocalID == "" {
		return "", errors.New("firebase signUp returned no uid")
	}
	return out.LocalID, nil
}

// SignInWithPassword confirms a credential and returns the provider id token.
func (c *AuthClient) SignInWithPassword(ctx context.Context, email, password string) (string, error) {
	var out struct {
		IDToken string `json:"idToken"`
	}
	err := c.post(ctx, "signInWithPassword", map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}, &out)
	if err != nil {
		return "", err
	}
	return out.IDToken, nil
}

// VerifyIDToken resolves a provider id token into the account it belongs to.
func (c *AuthClient) VerifyIDToken(ctx context.Context, idToken string) (*IdentityUser, error) {
	var out struct {
		Users []struct {
			LocalID     string `json:"localId"`
			Email       string `json:"email"`
			DisplayName string `json:"displayName"`
		} `json:"users"`
	}
	if err := c.post(ctx, "lookup", map[string]any{"idToken": idToken}, &out); err != nil {
		return nil, err
	}
	if len(out.Users) == 0 {
		return nil, errors.New("firebase lookup returned no user")
	}
	u := out.Users[0]
	name := u.DisplayName
	if name == "" {
		name = "Unknown"
	}
	return &IdentityUser{UID: u.LocalID, Email: u.Email, Name: name}, nil
}

// UpdateUser pushes email and/or display name changes to the provider.
// Empty strings are left untouched.
func (c *AuthClient) UpdateUser(ctx context.Context, uid, email, displayName string) error {
	payload := map[string]any{"localId": uid}
	if email != "" {
		payload["email"] = email
	}
	if displayName != "" {
		payload["displayName"] = displayName
	}
	return c.post(ctx, "update", payload, nil)
}

func (c *AuthClient) ChangePassword(ctx context.Context, uid, newPassword string) error {
	return c.post(ctx, "update", map[string]any{
		"localId":  uid,
		"password": newPassword,
	}, nil)
}

func (c *AuthClient) DeleteUser(ctx context.Context, uid string) error {
	return c.post(ctx, "delete", map[string]any{"localId": uid}, nil)
}
