package services

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"ektagames/internal/cart"
	"ektagames/internal/domain"
	"ektagames/internal/repos"
)

var (
	ErrBadCreds   = errors.New("invalid email or password")
	ErrEmailInUse = errors.New("email already in use")
)

// User-facing auth messages. Every failure maps onto exactly one of them.
const (
	MsgEmailInUse = "This email is already registered. Please log in."
	MsgBadCreds   = "Invalid email or password. Please check your credentials."
	MsgUnexpected = "An unexpected error occurred. Please try again."
)

func AuthMessage(err error) string {
	switch {
	case errors.Is(err, ErrEmailInUse):
		return MsgEmailInUse
	case errors.Is(err, ErrBadCreds):
		return MsgBadCreds
	}
	return MsgUnexpected
}

// Provider is the identity backend. It returns the user id.
type Provider interface {
	SignUp(ctx context.Context, email, password string) (string, error)
	SignIn(ctx context.Context, email, password string) (string, error)
}

// LocalProvider checks bcrypt hashes in the users table.
type LocalProvider struct {
	Users *repos.UserRepo
}

func (p *LocalProvider) SignUp(ctx context.Context, email, password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	u, err := p.Users.Create(ctx, email, string(hash))
	if errors.Is(err, repos.ErrEmailTaken) {
		return "", ErrEmailInUse
	}
	if err != nil {
		return "", err
	}
	return u.ID, nil
}

func (p *LocalProvider) SignIn(ctx context.Context, email, password string) (string, error) {
	u, err := p.Users.ByEmail(ctx, email)
	if err != nil {
		return "", ErrBadCreds
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)) != nil {
		return "", ErrBadCreds
	}
	return u.ID, nil
}

// AuthService binds provider identities to browser sessions and to the
// session's cart.
type AuthService struct {
	Provider Provider
	Users    *repos.UserRepo
	Carts    *cart.Hub
}

func (s *AuthService) SignUp(ctx context.Context, sid, email, password string) (*domain.User, error) {
	uid, err := s.Provider.SignUp(ctx, strings.TrimSpace(email), password)
	if err != nil {
		return nil, err
	}
	return s.bind(ctx, sid, uid, email)
}

func (s *AuthService) Login(ctx context.Context, sid, email, password string) (*domain.User, error) {
	uid, err := s.Provider.SignIn(ctx, strings.TrimSpace(email), password)
	if err != nil {
		return nil, err
	}
	return s.bind(ctx, sid, uid, email)
}

func (s *AuthService) bind(ctx context.Context, sid, uid, email string) (*domain.User, error) {
	email = strings.TrimSpace(email)
	if err := s.Users.BindSession(ctx, sid, uid, email); err != nil {
		return nil, err
	}
	if err := s.Carts.Store(sid).SignIn(uid); err != nil {
		return nil, err
	}
	return &domain.User{ID: uid, Email: email}, nil
}

func (s *AuthService) Logout(ctx context.Context, sid string) error {
	s.Carts.Drop(sid)
	return s.Users.UnbindSession(ctx, sid)
}

// CurrentUser resolves the session's user and makes sure its cart is live,
// which matters after a restart.
func (s *AuthService) CurrentUser(ctx context.Context, sid string) (*domain.User, error) {
	u, err := s.Users.SessionUser(ctx, sid)
	if err != nil {
		return nil, err
	}
	if err := s.Carts.Store(sid).SignIn(u.ID); err != nil {
		return nil, err
	}
	return u, nil
}
