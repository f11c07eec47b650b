package service

import (
	"errors"
	"testing"
	"time"

	"second-chance/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestNewTokenIssuerRequiresSecret(t *testing.T) {
	_, err := NewTokenIssuer("", 0)
	require.ErrorIs(t, err, model.ErrConfiguration)
}

func TestIssueIsNonDeterministic(t *testing.T) {
	t.Cleanup(restoreGlobals)
	issuer, err := NewTokenIssuer("s", 0)
	require.NoError(t, err)

	fixed := time.Unix(1700000000, 0)
	timeNow = func() time.Time { return fixed }

	a, err := issuer.Issue("acc-1")
	require.NoError(t, err)
	b, err := issuer.Issue("acc-1")
	require.NoError(t, err)
	require.NotEqual(t, a, b)

	ca, err := issuer.Verify(a)
	require.NoError(t, err)
	cb, err := issuer.Verify(b)
	require.NoError(t, err)
	require.Equal(t, "acc-1", ca.User.ID)
	require.Equal(t, ca.User.ID, cb.User.ID)
	require.Equal(t, "acc-1", ca.Subject)
	require.Nil(t, ca.ExpiresAt)
}

func TestIssuedTokenShape(t *testing.T) {
	issuer, err := NewTokenIssuer("s", 0)
	require.NoError(t, err)
	tok, err := issuer.Issue("acc-9")
	require.NoError(t, err)

	m := jwt.MapClaims{}
	_, err = jwt.ParseWithClaims(tok, m, func(*jwt.Token) (any, error) { return []byte("s"), nil })
	require.NoError(t, err)
	require.Equal(t, map[string]any{"id": "acc-9"}, m["user"])
	require.NotEmpty(t, m["jti"])
}

func TestIssueWithTTL(t *testing.T) {
	t.Cleanup(restoreGlobals)
	issuer, err := NewTokenIssuer("s", time.Hour)
	require.NoError(t, err)

	tok, err := issuer.Issue("acc-2")
	require.NoError(t, err)
	claims, err := issuer.Verify(tok)
	require.NoError(t, err)
	require.NotNil(t, claims.ExpiresAt)

	timeNow = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, err := issuer.Issue("acc-2")
	require.NoError(t, err)
	_, err = issuer.Verify(expired)
	require.ErrorIs(t, err, model.ErrInvalidToken)
}

func TestVerifyRejects(t *testing.T) {
	t.Cleanup(restoreGlobals)
	issuer, _ := NewTokenIssuer("s", 0)
	other, _ := NewTokenIssuer("different", 0)

	_, err := issuer.Verify("garbage")
	require.ErrorIs(t, err, model.ErrInvalidToken)

	foreign, _ := other.Issue("acc-1")
	_, err = issuer.Verify(foreign)
	require.ErrorIs(t, err, model.ErrInvalidToken)

	none, _ := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"user": map[string]any{"id": "x"}}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	_, err = issuer.Verify(none)
	require.ErrorIs(t, err, model.ErrInvalidToken)

	noUser, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "x"}).SignedString([]byte("s"))
	_, err = issuer.Verify(noUser)
	require.ErrorIs(t, err, model.ErrInvalidToken)

	parseWithClaims = func(string, jwt.Claims, jwt.Keyfunc, ...jwt.ParserOption) (*jwt.Token, error) {
		return &jwt.Token{Claims: jwt.MapClaims{}, Valid: true}, nil
	}
	_, err = issuer.Verify("whatever")
	require.ErrorIs(t, err, model.ErrInvalidToken)

	parseWithClaims = func(string, jwt.Claims, jwt.Keyfunc, ...jwt.ParserOption) (*jwt.Token, error) {
		return nil, errors.New("boom")
	}
	_, err = issuer.Verify("whatever")
	require.ErrorIs(t, err, model.ErrInvalidToken)
}
