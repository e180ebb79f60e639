package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/mail"
	"strings"

	"github.com/rescuenet/callout_service/internal/domain"
	"github.com/rescuenet/callout_service/internal/dto"
	"github.com/rescuenet/callout_service/internal/helper"
	"github.com/rescuenet/callout_service/internal/interfaces"
	"github.com/rescuenet/callout_service/internal/repository"
	"github.com/rescuenet/callout_service/pkg/utils"
	"gorm.io/gorm"
)

type UserService interface {
	// Users lists every enabled user except the caller.
	Users(callerID uint) ([]domain.User, error)
	UpdateProfile(ctx context.Context, user *domain.User, input dto.UpdateProfileRequest) (*domain.User, error)
	ChangePassword(ctx context.Context, user *domain.User, current, newPassword string) error
	// DeleteAccount removes the provider account and disables the local
	// record. The row itself is never removed.
	DeleteAccount(ctx context.Context, user *domain.User) error
	StoreFcmToken(userID uint, token string) error
}

type userService struct {
	users    repository.UserRepository
	tokens   repository.FcmTokenRepository
	identity interfaces.IdentityProvider
	auth     helper.Auth
}

func NewUserService(
	users repository.UserRepository,
	tokens repository.FcmTokenRepository,
	identity interfaces.IdentityProvider,
	auth helper.Auth,
) UserService {
	return &userService{
		users:    users,
		tokens:   tokens,
		identity: identity,
		auth:     auth,
	}
}

func (s *userService) Users(callerID uint) ([]domain.User, error) {
	return s.users.ListEnabledExcept(callerID)
}

func (s *userService) UpdateProfile(ctx context.Context, caller *domain.User, input dto.UpdateProfileRequest) (*domain.User, error) {
	// never write through the caller's pointer; it may be shared with other
	// in-flight requests of the same session
	copied := *caller
	user := &copied

	if input.Phone != nil && strings.TrimSpace(*input.Phone) != user.Phone {
		phone, ok := utils.CheckPhone(*input.Phone)
		if !ok {
			return nil, NewValidationError("phone", "Neplatné telefónne číslo")
		}
		if existing, err := s.users.FindUserByPhone(phone); err == nil && existing.ID != user.ID {
			return nil, NewValidationError("phone", "Zadané telefónne číslo už existuje")
		}
		user.Phone = phone
	}

	newEmail := ""
	if input.Email != nil {
		email := strings.TrimSpace(strings.ToLower(*input.Email))
		if email != user.Email {
			if _, err := mail.ParseAddress(email); err != nil {
				return nil, NewValidationError("email", "Zadajte platnú e-mailovú adresu")
			}
			if existing, err := s.users.FindUserByEmail(email); err == nil && existing.ID != user.ID {
				return nil, NewValidationError("email", "Zadaný e-mail už existuje")
			}
			user.Email = email
			newEmail = email
		}
	}

	newName := ""
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name != user.Name {
			if name == "" {
				return nil, NewValidationError("name", "Pole meno je povinné")
			}
			if len(name) > 255 {
				return nil, NewValidationError("name", "Meno môže mať maximálne 255 znakov")
			}
			user.Name = name
			newName = name
		}
	}

	// the provider is the source of truth for the credential fields; only
	// persist locally once it has accepted the change
	if newEmail != "" || newName != "" {
		if err := s.identity.UpdateUser(ctx, user.FirebaseUID, newEmail, newName); err != nil {
			log.Printf("identity update error: %v", err)
			return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
		}
	}

	if err := s.users.SaveUser(user); err != nil {
		return nil, err
	}

	if newEmail != "" {
		s.auth.FlushUser(user.ID)
	}

	return user, nil
}

func (s *userService) ChangePassword(ctx context.Context, user *domain.User, current, newPassword string) error {
	fields := map[string]string{}
	if current == "" {
		fields["current_password"] = "Pole heslo je povinné"
	}
	if len(newPassword) < 6 {
		fields["new_password"] = "Heslo musí mať aspoň 6 znakov"
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}

	if _, err := s.identity.SignInWithPassword(ctx, user.Email, current); err != nil {
		return ErrWrongPassword
	}

	if err := s.identity.ChangePassword(ctx, user.FirebaseUID, newPassword); err != nil {
		log.Printf("identity change password error: %v", err)
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	s.auth.FlushUser(user.ID)
	return nil
}

func (s *userService) DeleteAccount(ctx context.Context, caller *domain.User) error {
	if err := s.identity.DeleteUser(ctx, caller.FirebaseUID); err != nil {
		log.Printf("identity delete error: %v", err)
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	user := *caller
	user.Disabled = true
	if err := s.users.SaveUser(&user); err != nil {
		return err
	}

	s.auth.FlushUser(user.ID)
	return nil
}

func (s *userService) StoreFcmToken(userID uint, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return NewValidationError("token", "The token field is required.")
	}

	existing, err := s.tokens.FindByToken(token)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if err == nil && existing.UserID != userID {
		return NewValidationError("token", "The token has already been taken.")
	}

	return s.tokens.Upsert(userID, token)
}
