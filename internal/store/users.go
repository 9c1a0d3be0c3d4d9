// Package store owns durable lookup, creation and mutation of user records.
package store

import (
	"errors"
	"time"

	"github.com/visitgate/visitgate/internal/models"
	"gorm.io/gorm"
)

var (
	ErrNotFound          = errors.New("user not found")
	ErrDuplicateUsername = errors.New("username already taken")
)

type UserStore struct {
	db *gorm.DB
}

func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

// FindByUsername matches locally registered accounts only; provider accounts
// never participate in username lookup.
func (s *UserStore) FindByUsername(username string) (*models.User, error) {
	var user models.User
	err := s.db.Where("username = ? AND is_provider_account = false", username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// FindByEmail filters on the provider flag so a locally registered email is
// never silently treated as a provider account, or vice versa.
func (s *UserStore) FindByEmail(email string, isProvider bool) (*models.User, error) {
	var user models.User
	err := s.db.Where("email = ? AND is_provider_account = ?", email, isProvider).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *UserStore) CreateLocal(fullName, email, username, passwordHash string, role models.Role) (*models.User, error) {
	if role == "" {
		role = models.RoleStudent
	}

	if _, err := s.FindByUsername(username); err == nil {
		return nil, ErrDuplicateUsername
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	user := models.User{
		FullName:     fullName,
		Email:        email,
		Username:     &username,
		PasswordHash: passwordHash,
		Role:         role,
	}
	if err := s.db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateUsername
		}
		return nil, err
	}
	return &user, nil
}

// GetOrCreateProviderUser is idempotent: repeated or concurrent logins for the
// same provider identity converge on a single row. The unique index on
// (email, is_provider_account) backs the create-then-refetch on conflict.
func (s *UserStore) GetOrCreateProviderUser(email, providerID, displayName string, role models.Role) (*models.User, error) {
	if role == "" {
		role = models.RoleStudent
	}

	if user, err := s.FindByEmail(email, true); err == nil {
		return user, nil
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	user := models.User{
		FullName:          displayName,
		Email:             email,
		PasswordHash:      "",
		Role:              role,
		IsProviderAccount: true,
	}
	if providerID != "" {
		user.ProviderID = &providerID
	}

	if err := s.db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost the race to a concurrent login for the same identity.
			return s.FindByEmail(email, true)
		}
		return nil, err
	}
	return &user, nil
}

func (s *UserStore) SetPassword(user *models.User, newHash string) error {
	return s.db.Model(user).Update("password_hash", newHash).Error
}

// SetResetGrant replaces any prior grant for the user; the newest token is the
// only one that can redeem.
func (s *UserStore) SetResetGrant(user *models.User, token string, expiry time.Time) error {
	return s.db.Model(user).Updates(map[string]interface{}{
		"reset_token":        token,
		"reset_token_expiry": expiry,
	}).Error
}

func (s *UserStore) ClearResetGrant(user *models.User) error {
	return s.db.Model(user).Updates(map[string]interface{}{
		"reset_token":        nil,
		"reset_token_expiry": nil,
	}).Error
}

func (s *UserStore) FindByResetToken(token string) (*models.User, error) {
	var user models.User
	err := s.db.Where("reset_token = ? AND is_provider_account = false", token).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *UserStore) PromoteRole(user *models.User, role models.Role) error {
	if err := s.db.Model(user).Update("role", role).Error; err != nil {
		return err
	}
	user.Role = role
	return nil
}

func (s *UserStore) Delete(user *models.User) error {
	return s.db.Delete(user).Error
}
