package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"ventar/internal/logger"
	"ventar/internal/models"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

type HostRepo interface {
	CreateHost(ctx context.Context, host models.Host) error
	GetHostByEmail(ctx context.Context, email string) (*models.Host, error)
	GetHostByID(ctx context.Context, id string) (*models.Host, error)
}

// Service is the auth provider: it owns session lifecycle end to end.
// Everything outside this package treats sessions as read-only copies.
type Service struct {
	Hosts      HostRepo
	Tokens     *TokenService
	Sessions   SessionCache
	Events     *Broadcaster
	Logger     *logger.Logger
	BcryptCost int
}

func NewService(hosts HostRepo, tokens *TokenService, sessions SessionCache, events *Broadcaster, log *logger.Logger, bcryptCost int) *Service {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		Hosts:      hosts,
		Tokens:     tokens,
		Sessions:   sessions,
		Events:     events,
		Logger:     log,
		BcryptCost: bcryptCost,
	}
}

// SignUp creates a host account and signs it in.
func (s *Service) SignUp(ctx context.Context, email, password, fullName string) (*models.Session, string, error) {
	existing, err := s.Hosts.GetHostByEmail(ctx, email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to look up email: %w", err)
	}
	if existing != nil {
		return nil, "", ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.BcryptCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	host := models.Host{
		ID:           uuid.New().String(),
		Email:        email,
		FullName:     fullName,
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	}
	if err := s.Hosts.CreateHost(ctx, host); err != nil {
		return nil, "", fmt.Errorf("failed to create host: %w", err)
	}

	return s.openSession(ctx, host)
}

// SignIn verifies credentials and issues a session. Unknown email and wrong
// password answer identically.
func (s *Service) SignIn(ctx context.Context, email, password string) (*models.Session, string, error) {
	host, err := s.Hosts.GetHostByEmail(ctx, email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to look up email: %w", err)
	}
	if host == nil {
		return nil, "", ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(host.PasswordHash), []byte(password)) != nil {
		return nil, "", ErrInvalidCredentials
	}

	return s.openSession(ctx, *host)
}

func (s *Service) openSession(ctx context.Context, host models.Host) (*models.Session, string, error) {
	token, claims, err := s.Tokens.Generate(host.ID, host.Email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate session token: %w", err)
	}

	session := models.Session{
		HostID:    host.ID,
		Email:     host.Email,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if err := s.Sessions.Put(ctx, claims.ID, session, s.Tokens.TTL()); err != nil {
		return nil, "", fmt.Errorf("failed to store session: %w", err)
	}

	s.Events.Publish(SignedIn, &session)
	return &session, token, nil
}

// SignOut invalidates the session behind the token and broadcasts SIGNED_OUT
// addressed to the token's host, so only that host's consumers react. An
// already-dead or garbage token is still a successful sign-out; with no
// claims to attribute it to, the broadcast carries no session.
func (s *Service) SignOut(ctx context.Context, token string) {
	var session *models.Session
	claims, err := s.Tokens.Parse(token)
	if err == nil {
		if err := s.Sessions.Delete(ctx, claims.ID); err != nil {
			s.Logger.Error("AUTH", fmt.Sprintf("failed to delete session %s: %v", claims.ID, err))
		}
		session = &models.Session{HostID: claims.HostID, Email: claims.Email}
	}
	s.Events.Publish(SignedOut, session)
}

// GetSession resolves a token to a live session. Every failure mode (bad
// signature, expiry, cache miss, cache error) yields nil: fail closed.
func (s *Service) GetSession(ctx context.Context, token string) *models.Session {
	claims, err := s.Tokens.Parse(token)
	if err != nil {
		return nil
	}
	session, err := s.Sessions.Get(ctx, claims.ID)
	if err != nil {
		s.Logger.Error("AUTH", fmt.Sprintf("session lookup failed: %v", err))
		return nil
	}
	return session
}

// ResetPasswordForEmail issues a short-lived reset token. It always reports
// success to the caller so account existence is not leaked; the reset link is
// only produced for real accounts.
func (s *Service) ResetPasswordForEmail(ctx context.Context, email, redirectTo string, resetTTL time.Duration) error {
	host, err := s.Hosts.GetHostByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to look up email: %w", err)
	}
	if host == nil {
		return nil
	}

	resetID := uuid.New().String()
	session := models.Session{HostID: host.ID, Email: host.Email, ExpiresAt: time.Now().Add(resetTTL)}
	if err := s.Sessions.Put(ctx, "reset:"+resetID, session, resetTTL); err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	// Mail delivery is out of process; the reset link goes to the log for the
	// operator-facing tooling to pick up.
	s.Logger.Info("AUTH", fmt.Sprintf("password reset for %s: %s?reset=%s", email, redirectTo, resetID))
	return nil
}
