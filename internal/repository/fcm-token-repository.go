package repository

import (
	"github.com/rescuenet/callout_service/internal/domain"
	"gorm.io/gorm"
)

type FcmTokenRepository interface {
	// Upsert replaces the user's previous token, keyed by user id.
	Upsert(userID uint, token string) error
	FindByToken(token string) (*domain.FcmToken, error)
	// ListExcept returns every registered token except the given user's.
	// Zero lists all tokens.
	ListExcept(userID uint) ([]domain.FcmToken, error)
}

type fcmTokenRepository struct {
	db *gorm.DB
}

func NewFcmTokenRepository(db *gorm.DB) FcmTokenRepository {
	return &fcmTokenRepository{db: db}
}

func (r *fcmTokenRepository) Upsert(userID uint, token string) error {
	row := domain.FcmToken{UserID: userID, Token: token}
	return r.db.Where("user_id = ?", userID).Assign(domain.FcmToken{Token: token}).FirstOrCreate(&row).Error
}

func (r *fcmTokenRepository) FindByToken(token string) (*domain.FcmToken, error) {
	row := &domain.FcmToken{}
	if err := r.db.First(row, "token = ?", token).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *fcmTokenRepository) ListExcept(userID uint) ([]domain.FcmToken, error) {
	var tokens []domain.FcmToken
	q := r.db
	if userID != 0 {
		q = q.Where("user_id != ?", userID)
	}
	if err := q.Find(&tokens).Error; err != nil {
		return nil, err
	}
	return tokens, nil
}
