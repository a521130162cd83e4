package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/diewo77/staff-portal/internal/models"
	"github.com/diewo77/staff-portal/internal/store"
)

// Distinct login failures. Wrong credentials and an unapproved account are
// different answers; the old portal collapsed them into one message.
var (
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrAccountNotApproved = errors.New("account_not_approved")
)

// Service implements registration and login against the domain store.
type Service struct {
	store          *store.Store
	hasher         Hasher
	bootstrapAdmin string
}

// NewService builds the auth service. bootstrapAdmin is the configured email
// that gets superadmin + approved on signup (empty disables the mechanism).
func NewService(st *store.Store, h Hasher, bootstrapAdmin string) *Service {
	return &Service{store: st, hasher: h, bootstrapAdmin: strings.ToLower(strings.TrimSpace(bootstrapAdmin))}
}

// Register creates a user. Signup policy: everyone starts as a pending
// member and waits for approval, except the bootstrap administrator who
// comes up superadmin and approved.
func (s *Service) Register(ctx context.Context, email, password, displayName string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, store.ErrValidation
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}
	u := models.User{
		Email:       email,
		Password:    hash,
		DisplayName: strings.TrimSpace(displayName),
		Role:        models.RoleMember,
		Status:      models.StatusPending,
	}
	if s.bootstrapAdmin != "" && email == s.bootstrapAdmin {
		u.Role = models.RoleSuperAdmin
		u.Status = models.StatusApproved
	}
	if err := s.store.CreateUser(ctx, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Login verifies credentials and returns a session value. Credentials are
// checked before the approval state so a wrong password on a pending account
// still reads as invalid credentials.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	u, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !s.hasher.Verify(u.Password, password) {
		return nil, ErrInvalidCredentials
	}
	if u.Status != models.StatusApproved {
		return nil, ErrAccountNotApproved
	}
	sess := SessionFor(u)
	return &sess, nil
}

// Logout invalidates a session value. Cookie clearing is the HTTP layer's
// side; the session itself just becomes anonymous.
func (s *Service) Logout(sess *Session) {
	if sess != nil {
		*sess = Session{}
	}
}
