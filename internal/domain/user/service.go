package user

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/vitalcare/vitalcare/internal/platform/auth"
)

// ErrInvalidCredentials is returned for both an unknown email and a wrong
// password; the login endpoint must not reveal which.
var ErrInvalidCredentials = errors.New("invalid email or password")

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Register creates an operator account with a bcrypt-hashed password.
func (s *Service) Register(ctx context.Context, email, fullName, password string) (*User, error) {
	if email == "" {
		return nil, fmt.Errorf("email is required")
	}
	if password == "" {
		return nil, fmt.Errorf("password is required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &User{Email: email, FullName: fullName, HashedPassword: string(hash)}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Authenticate verifies an email/password pair.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	u, err := s.repo.GetByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.HashedPassword), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// ResolveSubject implements auth.SubjectResolver. The token subject is the
// user's email.
func (s *Service) ResolveSubject(ctx context.Context, subject string) (*auth.Identity, error) {
	u, err := s.repo.GetByEmail(ctx, subject)
	if err != nil {
		return nil, err
	}
	return &auth.Identity{ID: u.ID.String(), Subject: u.Email, Name: u.FullName}, nil
}
