package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/reciloop/reciloop/internal/api"
	"github.com/reciloop/reciloop/internal/market"
	"github.com/reciloop/reciloop/internal/prefs"
	"github.com/reciloop/reciloop/internal/secrets"
)

// ErrNotLoggedIn is returned by Restore when no session is saved.
var ErrNotLoggedIn = errors.New("não autenticado: execute `reciloop login`")

// Session is an authenticated view of the API.
type Session struct {
	Email     string
	CompanyID int
	Client    *api.Client
}

// SessionService owns login state. Client is the unauthenticated base client.
type SessionService struct {
	Client *api.Client
	Log    *zap.Logger
}

func (s *SessionService) logger() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}

// Login validates the form, exchanges credentials for a token and persists
// the session. A failure to persist is logged; the session is still returned.
func (s *SessionService) Login(ctx context.Context, form market.LoginForm) (Session, error) {
	if err := form.Validate(); err != nil {
		return Session{}, err
	}
	if s.Client == nil {
		return Session{}, api.ErrNotConfigured
	}
	tok, err := s.Client.Login(ctx, form.Email, form.Password)
	if err != nil {
		s.logger().Warn("login failed", zap.String("email", form.Email), zap.Error(err))
		return Session{}, err
	}

	sess := Session{Email: form.Email, CompanyID: tok.CompanyID, Client: s.Client.WithToken(tok.AccessToken)}
	if err := secrets.SaveSession(secrets.Session{
		AccessToken: tok.AccessToken,
		CompanyID:   tok.CompanyID,
		Email:       form.Email,
	}); err != nil {
		s.logger().Warn("persist session", zap.Error(err))
	}
	if err := prefs.Update(func(p *prefs.Prefs) { p.LastEmail = form.Email }); err != nil {
		s.logger().Warn("save last email", zap.Error(err))
	}
	s.logger().Info("logged in", zap.String("email", form.Email), zap.Int("company_id", tok.CompanyID))
	return sess, nil
}

// Logout forgets the saved session.
func (s *SessionService) Logout() error {
	if err := secrets.ClearSession(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	s.logger().Info("logged out")
	return nil
}

// Restore rebuilds a Session from the saved token.
func (s *SessionService) Restore() (Session, error) {
	if s.Client == nil {
		return Session{}, api.ErrNotConfigured
	}
	saved, err := secrets.LoadSession()
	if errors.Is(err, secrets.ErrNoSession) {
		return Session{}, ErrNotLoggedIn
	}
	if err != nil {
		return Session{}, fmt.Errorf("load session: %w", err)
	}
	return Session{
		Email:     saved.Email,
		CompanyID: saved.CompanyID,
		Client:    s.Client.WithToken(saved.AccessToken),
	}, nil
}
