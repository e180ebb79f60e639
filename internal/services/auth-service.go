package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"github.com/rescuenet/callout_service/internal/domain"
	"github.com/rescuenet/callout_service/internal/dto"
	"github.com/rescuenet/callout_service/internal/helper"
	"github.com/rescuenet/callout_service/internal/interfaces"
	"github.com/rescuenet/callout_service/internal/repository"
	"github.com/rescuenet/callout_service/pkg/utils"
	"gorm.io/gorm"
)

type AuthService interface {
	// Register creates the account at the identity provider and mirrors it
	// locally, returning the user and a fresh session token.
	Register(ctx context.Context, input dto.RegisterRequest) (*domain.User, string, error)
	// Authenticate exchanges a provider id token for a local session token,
	// creating the local record on first login.
	Authenticate(ctx context.Context, firebaseToken string) (*domain.User, string, error)
}

type authService struct {
	users    repository.UserRepository
	identity interfaces.IdentityProvider
	auth     helper.Auth
	producer interfaces.ProducerHandler
}

func NewAuthService(
	users repository.UserRepository,
	identity interfaces.IdentityProvider,
	auth helper.Auth,
	producer interfaces.ProducerHandler,
) AuthService {
	return &authService{
		users:    users,
		identity: identity,
		auth:     auth,
		producer: producer,
	}
}

func (s *authService) Register(ctx context.Context, input dto.RegisterRequest) (*domain.User, string, error) {
	email := strings.TrimSpace(strings.ToLower(input.Email))
	name := strings.TrimSpace(input.Name)

	phone, ok := utils.CheckPhone(input.Phone)
	if !ok {
		return nil, "", NewValidationError("phone", "Neplatné telefónne číslo")
	}

	fields := map[string]string{}
	if email == "" {
		fields["email"] = "Pole e-mail je povinné"
	} else if _, err := mail.ParseAddress(email); err != nil {
		fields["email"] = "Zadajte platnú e-mailovú adresu"
	}
	if input.Password == "" {
		fields["password"] = "Pole heslo je povinné"
	} else if len(input.Password) < 6 {
		fields["password"] = "Heslo musí mať aspoň 6 znakov"
	}
	if name == "" {
		fields["name"] = "Pole meno je povinné"
	} else if len(name) > 255 {
		fields["name"] = "Meno môže mať maximálne 255 znakov"
	}
	if len(fields) > 0 {
		return nil, "", &ValidationError{Fields: fields}
	}

	if existing, err := s.users.FindUserByEmail(email); err == nil && existing.ID != 0 {
		return nil, "", NewValidationError("email", "Zadaný e-mail už existuje")
	}
	if existing, err := s.users.FindUserByPhone(phone); err == nil && existing.ID != 0 {
		return nil, "", NewValidationError("phone", "Zadané telefónne číslo už existuje")
	}

	uid, err := s.identity.SignUp(ctx, email, input.Password, name)
	if err != nil {
		log.Printf("identity signUp error: %v", err)
		return nil, "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	user, err := s.users.CreateUser(&domain.User{
		FirebaseUID: uid,
		Name:        name,
		Email:       email,
		Phone:       phone,
		Disabled:    true,
	})
	if err != nil {
		// local mirror failed: remove the freshly created provider account
		// so the two stores cannot diverge
		if derr := s.identity.DeleteUser(ctx, uid); derr != nil {
			log.Printf("identity rollback error: %v", derr)
		}
		return nil, "", err
	}

	// Confirm the credential works before handing out a session. If it does
	// not, compensate on both sides instead of leaving a half-registered
	// account behind.
	if _, err := s.identity.SignInWithPassword(ctx, email, input.Password); err != nil {
		log.Printf("identity signIn error: %v", err)
		if derr := s.identity.DeleteUser(ctx, uid); derr != nil {
			log.Printf("identity rollback error: %v", derr)
		}
		if derr := s.users.DeleteUser(user.ID); derr != nil {
			log.Printf("local rollback error: %v", derr)
		}
		return nil, "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	token, err := s.auth.GenerateToken(int(user.ID), user.Email)
	if err != nil {
		return nil, "", err
	}

	if s.producer != nil {
		payload, merr := json.Marshal(map[string]any{
			"correlation_id": uuid.NewString(),
			"user_id":        user.ID,
			"email":          user.Email,
		})
		if merr == nil {
			_ = s.producer.PublishMessage([]byte("user.registered"), payload)
		}
	}

	return user, token, nil
}

func (s *authService) Authenticate(ctx context.Context, firebaseToken string) (*domain.User, string, error) {
	if strings.TrimSpace(firebaseToken) == "" {
		return nil, "", NewValidationError("firebase_token", "firebase_token is required")
	}

	identity, err := s.identity.VerifyIDToken(ctx, firebaseToken)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	user, err := s.users.FindUserByFirebaseUID(identity.UID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", err
		}
		user, err = s.users.CreateUser(&domain.User{
			FirebaseUID: identity.UID,
			Name:        identity.Name,
			Email:       identity.Email,
		})
		if err != nil {
			return nil, "", err
		}
	}

	if user.Disabled {
		return nil, "", ErrForbidden
	}

	token, err := s.auth.GenerateToken(int(user.ID), user.Email)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}
