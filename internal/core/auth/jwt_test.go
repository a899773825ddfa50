package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func newJWTer() *JWTer {
	return &JWTer{Secret: []byte("test-secret"), Issuer: "merchant-api", TTL: 10 * time.Hour}
}

func TestJWTer(t *testing.T) {
	t.Run("Issue_ParseRoundTrip", func(t *testing.T) {
		j := newJWTer()
		tok, err := j.Issue("010-1234-1234")
		require.NoError(t, err)

		c, err := j.Parse(tok)
		require.NoError(t, err)
		require.Equal(t, "010-1234-1234", c.Subject)
		require.Equal(t, 10*time.Hour, c.ExpiresAt.Sub(c.IssuedAt.Time))
	})

	t.Run("Parse_RejectsExpired", func(t *testing.T) {
		j := newJWTer()
		issuedAt := time.Now().Add(-11 * time.Hour)
		j.now = func() time.Time { return issuedAt }
		tok, err := j.Issue("010-1234-1234")
		require.NoError(t, err)

		j.now = nil
		_, err = j.Parse(tok)
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Parse_RejectsWrongSecret", func(t *testing.T) {
		tok, err := newJWTer().Issue("010-1234-1234")
		require.NoError(t, err)

		other := newJWTer()
		other.Secret = []byte("another")
		_, err = other.Parse(tok)
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Parse_RejectsWrongIssuer", func(t *testing.T) {
		tok, err := newJWTer().Issue("010-1234-1234")
		require.NoError(t, err)

		other := newJWTer()
		other.Issuer = "someone-else"
		_, err = other.Parse(tok)
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Parse_RejectsNoneAlg", func(t *testing.T) {
		claims := Claims{RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "010-1234-1234",
			Issuer:    "merchant-api",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}}
		tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = newJWTer().Parse(tok)
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Parse_RejectsGarbage", func(t *testing.T) {
		_, err := newJWTer().Parse("not.a.token")
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Issue_FailsWithoutSecret", func(t *testing.T) {
		_, err := (&JWTer{TTL: time.Hour}).Issue("x")
		require.Error(t, err)
	})
}

func TestBearerToken(t *testing.T) {
	tok, err := BearerToken("Bearer abc.def")
	require.NoError(t, err)
	require.Equal(t, "abc.def", tok)

	for _, h := range []string{"", "Bearer", "Bearer   ", "Basic abc", "bearer abc"} {
		_, err := BearerToken(h)
		require.ErrorIs(t, err, ErrMissingToken, h)
	}
}

func TestSubjectContext(t *testing.T) {
	require.Empty(t, SubjectFrom(context.Background()))
	ctx := WithSubject(context.Background(), "010-0000-0000")
	require.Equal(t, "010-0000-0000", SubjectFrom(ctx))
}
