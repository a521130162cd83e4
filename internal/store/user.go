package store

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/diewo77/staff-portal/internal/models"
)

// CreateUser inserts a new user. Email uniqueness is checked inside the
// transaction; a duplicate leaves the existing row untouched.
func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if u.Email == "" {
		return invalid("email required")
	}
	if !u.Role.Valid() || !u.Status.Valid() {
		return invalid("unknown role or status")
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("email = ?", u.Email).Count(&count).Error; err != nil {
			return persistence("check email", err)
		}
		if count > 0 {
			return ErrDuplicateEmail
		}
		if err := tx.Create(u).Error; err != nil {
			return persistence("create user", err)
		}
		return nil
	})
}

// GetUserByEmail fetches one user.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, persistence("find user", err)
	}
	return &u, nil
}

// GetUserByID fetches one user by primary key.
func (s *Store) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).First(&u, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, persistence("find user", err)
	}
	return &u, nil
}

// ListUsers returns the staff directory ordered by email.
func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := s.db.WithContext(ctx).Order("email ASC").Find(&users).Error; err != nil {
		return nil, persistence("list users", err)
	}
	return users, nil
}

// UpdateUserRole sets a user's role and status, with an audit row, in one
// transaction.
func (s *Store) UpdateUserRole(ctx context.Context, actor, email string, role models.Role, status models.Status) (*models.User, error) {
	if !role.Valid() {
		return nil, invalid("unknown role")
	}
	if !status.Valid() {
		return nil, invalid("unknown status")
	}

	var u models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&u).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return persistence("find user", err)
		}
		old := string(u.Role) + "/" + string(u.Status)
		if err := tx.Model(&u).Updates(map[string]any{"role": role, "status": status}).Error; err != nil {
			return persistence("update user", err)
		}
		u.Role, u.Status = role, status
		audit := models.AuditLog{
			ActorEmail: actor,
			EntityType: "User",
			EntityKey:  u.Email,
			Action:     "role_change",
			OldValue:   old,
			NewValue:   string(role) + "/" + string(status),
		}
		if err := tx.Create(&audit).Error; err != nil {
			return persistence("audit", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// DeleteUser removes a user and scrubs task assignments pointing at them.
// One transaction: no task is ever left assigned to a ghost.
func (s *Store) DeleteUser(ctx context.Context, actor, email string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var u models.User
		if err := tx.Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&u).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return persistence("find user", err)
		}
		if err := tx.Model(&models.Task{}).Where("assigned_user_id = ?", u.ID).
			Update("assigned_user_id", nil).Error; err != nil {
			return persistence("scrub assignments", err)
		}
		if err := tx.Delete(&u).Error; err != nil {
			return persistence("delete user", err)
		}
		audit := models.AuditLog{
			ActorEmail: actor,
			EntityType: "User",
			EntityKey:  u.Email,
			Action:     "delete",
		}
		if err := tx.Create(&audit).Error; err != nil {
			return persistence("audit", err)
		}
		return nil
	})
}
