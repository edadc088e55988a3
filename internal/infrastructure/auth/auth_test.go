package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthenticator_SignAndParse(t *testing.T) {
	authn := NewAuthenticator("test-secret")

	token, err := authn.Sign(Actor{ID: "cust-1", Email: "c@kw.com", Role: RoleCustomer}, time.Hour)
	require.NoError(t, err)

	actor, err := authn.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "cust-1", actor.ID)
	assert.Equal(t, "c@kw.com", actor.Email)
	assert.False(t, actor.IsAdmin())
}

func TestAuthenticator_Parse_Rejects(t *testing.T) {
	authn := NewAuthenticator("test-secret")

	t.Run("empty token", func(t *testing.T) {
		_, err := authn.Parse("")
		assert.ErrorIs(t, err, ErrMissingToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		token, err := NewAuthenticator("other").Sign(Actor{ID: "a", Role: RoleAdmin}, time.Hour)
		require.NoError(t, err)

		_, err = authn.Parse(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		past := NewAuthenticator("test-secret")
		past.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		token, err := past.Sign(Actor{ID: "a"}, time.Hour)
		require.NoError(t, err)

		_, err = authn.Parse(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("unexpected signing method", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
			RegisteredClaims: jwt.RegisteredClaims{Subject: "a", Issuer: issuer},
		})
		signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = authn.Parse(signed)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestActorContext(t *testing.T) {
	_, ok := ActorFromContext(context.Background())
	assert.False(t, ok)

	ctx := WithActor(context.Background(), &Actor{ID: "admin-1", Role: RoleAdmin})
	actor, ok := ActorFromContext(ctx)
	require.True(t, ok)
	assert.True(t, actor.IsAdmin())
}
