package anonymous

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain"
	tokenrepo "storefront/internal/repository/token"
)

type memoryTokenRepo struct {
	tokens map[string]tokenrepo.Token
}

func (r *memoryTokenRepo) Create(_ context.Context, t tokenrepo.Token) error {
	if _, ok := r.tokens[t.Token]; ok {
		return domain.ErrAlreadyExists
	}
	r.tokens[t.Token] = t
	return nil
}

func (r *memoryTokenRepo) Get(_ context.Context, token string) (*tokenrepo.Token, error) {
	t, ok := r.tokens[token]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &t, nil
}

func (r *memoryTokenRepo) Delete(_ context.Context, token string) error {
	delete(r.tokens, token)
	return nil
}

func (r *memoryTokenRepo) DeleteExpired(context.Context, time.Time) (int64, error) { return 0, nil }

func TestService_IssueAndLookup(t *testing.T) {
	ctx := context.Background()
	repo := &memoryTokenRepo{tokens: map[string]tokenrepo.Token{}}
	svc := New(repo)

	token, key, err := svc.Issue(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, key)

	got, err := svc.LookupByToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, key, got)

	_, err = svc.LookupByToken(ctx, "bogus")
	assert.ErrorIs(t, err, ErrInvalidToken)

	svc.tokens.now = func() time.Time { return time.Now().Add(30 * 24 * time.Hour) }
	_, err = svc.LookupByToken(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Empty(t, repo.tokens)
}

func TestService_RejectsCustomerTokens(t *testing.T) {
	ctx := context.Background()
	customer := "c1"
	repo := &memoryTokenRepo{tokens: map[string]tokenrepo.Token{
		"access": {Token: "access", CustomerID: &customer, Kind: tokenrepo.KindAccess, ExpiresAt: time.Now().Add(time.Hour)},
	}}
	svc := New(repo)
	_, err := svc.LookupByToken(ctx, "access")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
