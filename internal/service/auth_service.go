package service

import (
	"context"

	"github.com/tipjar-service/internal/logging"
	"github.com/tipjar-service/internal/types"
	"github.com/tipjar-service/internal/wallet"
)

// Authenticator is the slice of the wallet client used for login.
type Authenticator interface {
	LoginUsingOAuth(ctx context.Context, idToken, provider string) (*wallet.Session, error)
}

// AuthService exchanges Google id tokens for wallet provider sessions.
type AuthService struct {
	wallet Authenticator
	logger *logging.Logger
}

// NewAuthService creates an auth service.
func NewAuthService(authenticator Authenticator, logger *logging.Logger) *AuthService {
	return &AuthService{wallet: authenticator, logger: logger}
}

// Login authenticates a Google id token against the wallet provider.
func (s *AuthService) Login(ctx context.Context, idToken string) (*wallet.Session, error) {
	if idToken == "" {
		return nil, &types.ServiceError{
			Code:    "UNAUTHORIZED",
			Message: "id token is required",
		}
	}

	session, err := s.wallet.LoginUsingOAuth(ctx, idToken, "google")
	if err != nil {
		s.logger.WithError(err).Warn("OAuth login rejected")
		return nil, &types.ServiceError{
			Code:    "UNAUTHORIZED",
			Message: "authentication failed",
		}
	}

	s.logger.WithField("userId", session.UserID).Info("User logged in")
	return session, nil
}
