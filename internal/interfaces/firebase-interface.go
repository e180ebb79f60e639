package interfaces

import (
	"context"

	"github.com/rescuenet/callout_service/internal/clients/firebase"
)

// IdentityProvider is the slice of the external identity service the
// handlers and services depend on. Credential storage lives entirely on the
// provider side; locally we only mirror the account.
type IdentityProvider interface {
	SignUp(ctx context.Context, email, password, displayName string) (string, error)
	SignInWithPassword(ctx context.Context, email, password string) (string, error)
	VerifyIDToken(ctx context.Context, idToken string) (*firebase.IdentityUser, error)
	UpdateUser(ctx context.Context, uid, email, displayName string) error
	ChangePassword(ctx context.Context, uid, newPassword string) error
	DeleteUser(ctx context.Context, uid string) error
}

type PushSender interface {
	Send(ctx context.Context, msg *firebase.Message) error
}
