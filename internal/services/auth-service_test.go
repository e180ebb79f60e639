package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rescuenet/callout_service/internal/clients/firebase"
	"github.com/rescuenet/callout_service/internal/domain"
	"github.com/rescuenet/callout_service/internal/dto"
	"github.com/rescuenet/callout_service/internal/helper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registerInput() dto.RegisterRequest {
	return dto.RegisterRequest{
		Email:    "jan@example.com",
		Password: "secret123",
		Name:     "Ján Novák",
		Phone:    "+421903123456",
	}
}

func TestRegisterCreatesDisabledUserWithSession(t *testing.T) {
	users := newFakeUserRepo()
	identity := newFakeIdentity()
	auth := helper.SetupAuth("test-secret")
	svc := NewAuthService(users, identity, auth, nil)

	user, token, err := svc.Register(context.Background(), registerInput())
	require.NoError(t, err)
	require.NotNil(t, user)

	assert.Equal(t, "uid-jan@example.com", user.FirebaseUID)
	assert.Equal(t, "jan@example.com", user.Email)
	assert.Equal(t, "+421 903 123 456", user.Phone)
	assert.True(t, user.Disabled)
	assert.NotEmpty(t, token)

	claims, err := auth.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, int(user.ID), claims.UserID)
}

func TestRegisterPublishesValidJSONRecord(t *testing.T) {
	users := newFakeUserRepo()
	producer := &fakeProducer{}
	svc := NewAuthService(users, newFakeIdentity(), helper.SetupAuth("test-secret"), producer)

	user, _, err := svc.Register(context.Background(), registerInput())
	require.NoError(t, err)

	records := producer.published()
	require.Len(t, records, 1)
	assert.Equal(t, "user.registered", records[0].key)

	var decoded struct {
		UserID uint   `json:"user_id"`
		Email  string `json:"email"`
	}
	require.NoError(t, json.Unmarshal(records[0].value, &decoded))
	assert.Equal(t, user.ID, decoded.UserID)
	assert.Equal(t, "jan@example.com", decoded.Email)
}

func TestRegisterRejectsInvalidPhone(t *testing.T) {
	users := newFakeUserRepo()
	svc := NewAuthService(users, newFakeIdentity(), helper.SetupAuth("s"), nil)

	input := registerInput()
	input.Phone = "12"

	var ve *ValidationError
	_, _, err := svc.Register(context.Background(), input)
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "Neplatné telefónne číslo", ve.Fields["phone"])
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	users := newFakeUserRepo()
	users.add(domain.User{Email: "jan@example.com", Phone: "+421 903 123 456"})
	svc := NewAuthService(users, newFakeIdentity(), helper.SetupAuth("s"), nil)

	var ve *ValidationError
	_, _, err := svc.Register(context.Background(), registerInput())
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "Zadaný e-mail už existuje", ve.Fields["email"])

	input := registerInput()
	input.Email = "other@example.com"
	_, _, err = svc.Register(context.Background(), input)
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "Zadané telefónne číslo už existuje", ve.Fields["phone"])
}

func TestRegisterValidatesFields(t *testing.T) {
	svc := NewAuthService(newFakeUserRepo(), newFakeIdentity(), helper.SetupAuth("s"), nil)

	input := registerInput()
	input.Email = "not-an-email"
	input.Password = "abc"
	input.Name = ""

	var ve *ValidationError
	_, _, err := svc.Register(context.Background(), input)
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "email")
	assert.Contains(t, ve.Fields, "password")
	assert.Contains(t, ve.Fields, "name")
}

func TestRegisterRollsBackWhenSignInFails(t *testing.T) {
	users := newFakeUserRepo()
	identity := newFakeIdentity()
	identity.signInErr = errors.New("credential rejected")
	svc := NewAuthService(users, identity, helper.SetupAuth("s"), nil)

	_, _, err := svc.Register(context.Background(), registerInput())
	require.ErrorIs(t, err, ErrUpstream)

	// both stores compensated: no provider account, no local mirror
	assert.Contains(t, identity.deletedUIDs, "uid-jan@example.com")
	_, err = users.FindUserByEmail("jan@example.com")
	assert.Error(t, err)
}

func TestRegisterUpstreamSignUpFailure(t *testing.T) {
	identity := newFakeIdentity()
	identity.signUpErr = errors.New("provider down")
	svc := NewAuthService(newFakeUserRepo(), identity, helper.SetupAuth("s"), nil)

	_, _, err := svc.Register(context.Background(), registerInput())
	assert.ErrorIs(t, err, ErrUpstream)
}

func TestAuthenticateCreatesLocalRecordOnFirstLogin(t *testing.T) {
	users := newFakeUserRepo()
	identity := newFakeIdentity()
	identity.verified = &firebase.IdentityUser{UID: "uid-123", Email: "eva@example.com", Name: "Eva"}
	auth := helper.SetupAuth("test-secret")
	svc := NewAuthService(users, identity, auth, nil)

	user, token, err := svc.Authenticate(context.Background(), "provider-token")
	require.NoError(t, err)
	assert.Equal(t, "uid-123", user.FirebaseUID)
	assert.Equal(t, "Eva", user.Name)
	assert.NotEmpty(t, token)

	// second login reuses the mirror instead of creating a new one
	again, _, err := svc.Authenticate(context.Background(), "provider-token")
	require.NoError(t, err)
	assert.Equal(t, user.ID, again.ID)
}

func TestAuthenticateRejectsDisabledUser(t *testing.T) {
	users := newFakeUserRepo()
	users.add(domain.User{FirebaseUID: "uid-123", Email: "eva@example.com", Disabled: true})
	identity := newFakeIdentity()
	identity.verified = &firebase.IdentityUser{UID: "uid-123", Email: "eva@example.com", Name: "Eva"}
	svc := NewAuthService(users, identity, helper.SetupAuth("s"), nil)

	_, _, err := svc.Authenticate(context.Background(), "provider-token")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestAuthenticateRejectsInvalidProviderToken(t *testing.T) {
	identity := newFakeIdentity()
	identity.verifyErr = errors.New("expired")
	svc := NewAuthService(newFakeUserRepo(), identity, helper.SetupAuth("s"), nil)

	_, _, err := svc.Authenticate(context.Background(), "bad-token")
	assert.ErrorIs(t, err, ErrUpstream)
}
