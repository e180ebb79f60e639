package repository

import (
	"errors"

	"github.com/rescuenet/callout_service/internal/domain"
	"gorm.io/gorm"
)

type UserRepository interface {
	CreateUser(user *domain.User) (*domain.User, error)
	FindUserById(userID uint) (*domain.User, error)
	FindUserByEmail(email string) (*domain.User, error)
	FindUserByPhone(phone string) (*domain.User, error)
	FindUserByFirebaseUID(uid string) (*domain.User, error)
	SaveUser(user *domain.User) error
	DeleteUser(userID uint) error
	ListEnabledExcept(userID uint) ([]domain.User, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) CreateUser(user *domain.User) (*domain.User, error) {
	if user == nil {
		return nil, errors.New("nil user")
	}
	if err := r.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func (r *userRepository) FindUserById(userID uint) (*domain.User, error) {
	user := &domain.User{}
	if err := r.db.First(user, userID).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func (r *userRepository) FindUserByEmail(email string) (*domain.User, error) {
	user := &domain.User{}
	if err := r.db.First(user, "email = ?", email).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func (r *userRepository) FindUserByPhone(phone string) (*domain.User, error) {
	user := &domain.User{}
	if err := r.db.First(user, "phone = ?", phone).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func (r *userRepository) FindUserByFirebaseUID(uid string) (*domain.User, error) {
	user := &domain.User{}
	if err := r.db.First(user, "firebase_uid = ?", uid).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func (r *userRepository) SaveUser(user *domain.User) error {
	if user == nil {
		return errors.New("nil user")
	}
	return r.db.Save(user).Error
}

// DeleteUser removes the row outright. Only used to compensate a failed
// registration; account deletion through the API disables instead.
func (r *userRepository) DeleteUser(userID uint) error {
	return r.db.Unscoped().Delete(&domain.User{}, userID).Error
}

func (r *userRepository) ListEnabledExcept(userID uint) ([]domain.User, error) {
	var users []domain.User
	err := r.db.Where("id != ? AND disabled = ?", userID, false).Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}
