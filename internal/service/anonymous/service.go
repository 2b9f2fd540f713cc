package anonymous

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	tokenrepo "storefront/internal/repository/token"
)

var ErrInvalidToken = errors.New("invalid token")

// Service issues session tokens for shoppers who have not logged in. Each
// token is bound to a session key that owns an anonymous cart.
type Service struct {
	tokens    *tokenManager
	accessTTL time.Duration
}

func New(tokens tokenrepo.Repository) *Service {
	return &Service{
		tokens:    newTokenManager(tokens),
		accessTTL: 14 * 24 * time.Hour,
	}
}

func (s *Service) Issue(ctx context.Context) (token, sessionKey string, err error) {
	sessionKey = uuid.NewString()
	token, err = s.tokens.Issue(ctx, sessionKey, s.accessTTL)
	if err != nil {
		return "", "", err
	}
	return token, sessionKey, nil
}

func (s *Service) LookupByToken(ctx context.Context, token string) (string, error) {
	meta, ok := s.tokens.Validate(ctx, token)
	if !ok {
		return "", ErrInvalidToken
	}
	return meta.SessionKey, nil
}

func (s *Service) AccessTTLSeconds() int {
	return int(s.accessTTL.Seconds())
}
