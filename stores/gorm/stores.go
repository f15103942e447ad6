// Package gorm implements the production UserStore on a relational
// database via GORM.
package gorm

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lakshc/picauth/auth"
)

// AutoMigrate runs database migrations for all picauth tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&UserModel{})
}

// UserStore implements auth.UserStore using GORM.
type UserStore struct {
	db *gorm.DB
}

func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) CreateUser(user *auth.User) (*auth.User, error) {
	model := UserToModel(user)
	if model.ID == "" {
		model.ID = uuid.NewString()
	}

	var existing UserModel
	err := s.db.First(&existing, "lower(email) = lower(?)", model.Email).Error
	if err == nil {
		return nil, auth.ErrUserExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if err := s.db.Create(model).Error; err != nil {
		// The unique index backstops the check above under races.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, auth.ErrUserExists
		}
		return nil, err
	}
	return model.ToUser(), nil
}

func (s *UserStore) GetUserByID(userID string) (*auth.User, error) {
	var model UserModel
	if err := s.db.First(&model, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, auth.ErrUserNotFound
		}
		return nil, err
	}
	return model.ToUser(), nil
}

func (s *UserStore) GetUserByEmail(email string) (*auth.User, error) {
	var model UserModel
	if err := s.db.First(&model, "lower(email) = lower(?)", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, auth.ErrUserNotFound
		}
		return nil, err
	}
	return model.ToUser(), nil
}

func (s *UserStore) UpdatePasswordHash(userID string, hash string) error {
	return s.updateColumn(userID, "password_hash", hash)
}

func (s *UserStore) UpdatePicture(userID string, picture string) error {
	return s.updateColumn(userID, "picture", picture)
}

func (s *UserStore) updateColumn(userID, column string, value string) error {
	result := s.db.Model(&UserModel{}).
		Where("id = ?", userID).
		Update(column, value)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return auth.ErrUserNotFound
	}
	return nil
}
