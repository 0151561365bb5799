package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrincipalContext(t *testing.T) {
	_, ok := PrincipalFromContext(context.Background())
	assert.False(t, ok)

	_, ok = PrincipalFromContext(WithPrincipal(context.Background(), "  "))
	assert.False(t, ok)

	id, ok := PrincipalFromContext(WithPrincipal(context.Background(), "user-1"))
	require.True(t, ok)
	assert.Equal(t, "user-1", id)
}

func TestTokenRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("secret", "cvbuilder", time.Hour)

	token, err := issuer.Issue("user-1")
	require.NoError(t, err)

	subject, err := issuer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", subject)
}

func TestTokenRejections(t *testing.T) {
	issuer := NewTokenIssuer("secret", "cvbuilder", time.Hour)
	token, err := issuer.Issue("user-1")
	require.NoError(t, err)

	t.Run("wrong secret", func(t *testing.T) {
		_, err := NewTokenIssuer("other", "cvbuilder", time.Hour).Parse(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		_, err := NewTokenIssuer("secret", "someone-else", time.Hour).Parse(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		late := NewTokenIssuer("secret", "cvbuilder", time.Hour)
		late.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		_, err := late.Parse(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := issuer.Parse("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := issuer.Parse("")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestIssueRequiresSecretAndUser(t *testing.T) {
	_, err := NewTokenIssuer("", "cvbuilder", time.Hour).Issue("user-1")
	assert.Error(t, err)

	_, err = NewTokenIssuer("secret", "cvbuilder", time.Hour).Issue("")
	assert.Error(t, err)
}
