package auth

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/Abdullah-Akram04/Aithena-LMS-sub001/internal/apperr"
	"github.com/Abdullah-Akram04/Aithena-LMS-sub001/internal/user"
)

// Service runs the credential flows: register, login, refresh rotation.
type Service struct {
	users  user.Store
	tokens *TokenService
}

func NewService(users user.Store, tokens *TokenService) *Service {
	return &Service{users: users, tokens: tokens}
}

func (s *Service) Tokens() *TokenService { return s.tokens }

func identity(u user.User) Identity {
	return Identity{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role}
}

// Register creates a user and signs them in. Self-registration is
// student-only; teacher/admin accounts come from an admin caller.
func (s *Service) Register(ctx context.Context, name, email, password string, role user.Role) (user.User, TokenPair, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return user.User{}, TokenPair{}, err
	}
	u := user.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		Status:       user.StatusActive,
	}
	u, err = s.users.Create(ctx, u)
	if err != nil {
		return user.User{}, TokenPair{}, err
	}
	pair, err := s.tokens.IssuePair(identity(u))
	if err != nil {
		return user.User{}, TokenPair{}, err
	}
	return u, pair, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (user.User, TokenPair, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			return user.User{}, TokenPair{}, apperr.Unauthenticated("invalid credentials")
		}
		return user.User{}, TokenPair{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return user.User{}, TokenPair{}, apperr.Unauthenticated("invalid credentials")
	}
	if !u.Active() {
		return user.User{}, TokenPair{}, apperr.Forbidden("account is inactive")
	}
	pair, err := s.tokens.IssuePair(identity(u))
	if err != nil {
		return user.User{}, TokenPair{}, err
	}
	return u, pair, nil
}

// Refresh rotates a token pair. The referenced user must still exist
// and be active.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (user.User, TokenPair, error) {
	claims, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return user.User{}, TokenPair{}, err
	}
	u, err := s.users.Get(ctx, claims.Subject)
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			return user.User{}, TokenPair{}, apperr.BadToken("invalid or expired token")
		}
		return user.User{}, TokenPair{}, err
	}
	if !u.Active() {
		return user.User{}, TokenPair{}, apperr.Forbidden("account is inactive")
	}
	pair, err := s.tokens.IssuePair(identity(u))
	if err != nil {
		return user.User{}, TokenPair{}, err
	}
	return u, pair, nil
}

func (s *Service) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	u, err := s.users.Get(ctx, userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(oldPassword)) != nil {
		return apperr.Unauthenticated("invalid credentials")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	_, err = s.users.Update(ctx, u)
	return err
}
