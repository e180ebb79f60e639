package helper

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/patrickmn/go-cache"
	"github.com/rescuenet/callout_service/internal/domain"
	"github.com/rescuenet/callout_service/internal/dto"
)

const sessionCacheTTL = 10 * time.Minute

type Auth struct {
	Secret   string
	sessions *cache.Cache
}

func SetupAuth(s string) Auth {
	return Auth{
		Secret:   s,
		sessions: cache.New(sessionCacheTTL, sessionCacheTTL),
	}
}

func (a Auth) GenerateToken(userID int, email string) (string, error) {
	if userID == 0 {
		return "", errors.New("required inputs are missing to generate token")
	}

	now := time.Now().Unix()
	exp := time.Now().Add(24 * time.Hour).Unix()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"email":   email,
		"iat":     now,
		"exp":     exp,
	})

	tokenStr, err := token.SignedString([]byte(a.Secret))
	if err != nil {
		return "", errors.New("unable to sign the token")
	}

	return tokenStr, nil
}

func (a Auth) VerifyToken(tokenString string) (dto.AuthResponse, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return dto.AuthResponse{}, errors.New("missing token")
	}

	// support both:
	// - "Bearer <token>"
	// - "<token>"
	if strings.HasPrefix(strings.ToLower(tokenString), "bearer ") {
		parts := strings.SplitN(tokenString, " ", 2)
		if len(parts) != 2 || strings.TrimSpace(parts[1]) == "" {
			return dto.AuthResponse{}, errors.New("invalid token format")
		}
		tokenString = strings.TrimSpace(parts[1])
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(a.Secret), nil
	})
	if err != nil {
		return dto.AuthResponse{}, errors.New("token parse error")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return dto.AuthResponse{}, errors.New("invalid token claims")
	}

	expAny, ok := claims["exp"]
	if !ok {
		return dto.AuthResponse{}, errors.New("missing expiry")
	}
	expFloat, ok := expAny.(float64)
	if !ok {
		return dto.AuthResponse{}, errors.New("invalid expiry type")
	}
	if float64(time.Now().Unix()) > expFloat {
		return dto.AuthResponse{}, errors.New("token expired")
	}

	userID, ok := claims["user_id"].(float64)
	if !ok {
		return dto.AuthResponse{}, errors.New("missing user id claim")
	}

	email, _ := claims["email"].(string)
	iat, _ := claims["iat"].(float64)

	return dto.AuthResponse{
		UserID: int(userID),
		Email:  email,
		Expiry: expFloat,
		Iat:    iat,
	}, nil
}

// CacheSession remembers the token -> user mapping so the middleware does
// not hit the database on every request. The cache holds a value copy and
// CachedSession hands out a fresh copy per call, so concurrent requests
// sharing a token never share user memory.
func (a Auth) CacheSession(token string, user *domain.User) {
	if a.sessions == nil || token == "" || user == nil {
		return
	}
	a.sessions.Set(token, *user, cache.DefaultExpiration)
}

func (a Auth) CachedSession(token string) (*domain.User, bool) {
	if a.sessions == nil {
		return nil, false
	}
	v, ok := a.sessions.Get(token)
	if !ok {
		return nil, false
	}
	user, ok := v.(domain.User)
	if !ok {
		return nil, false
	}
	return &user, true
}

// FlushUser drops every cached session of the given user. Called on
// credential change and on account disable so stale sessions die with the
// cache entry instead of living out the TTL.
func (a Auth) FlushUser(userID uint) {
	if a.sessions == nil {
		return
	}
	for token, item := range a.sessions.Items() {
		if user, ok := item.Object.(domain.User); ok && user.ID == userID {
			a.sessions.Delete(token)
		}
	}
}

func (a Auth) GetCurrentUser(ctx *fiber.Ctx) (*domain.User, error) {
	u := ctx.Locals("user")
	user, ok := u.(*domain.User)
	if !ok || user == nil {
		return nil, errors.New("missing auth user in context")
	}
	return user, nil
}
