package identity

import (
	"strings"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tbourn/go-cellar-backend/internal/domain"
)

var ada = domain.Profile{UserID: "U123", DisplayName: "Ada", PictureURL: "https://p/1"}

func TestSessionIssuer_RoundTrip(t *testing.T) {
	iss, err := NewSessionIssuer("secret", time.Hour)
	require.NoError(t, err)
	assert.False(t, iss.Ephemeral())

	tok, exp, err := iss.Issue("sess-1", ada)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := iss.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "sess-1", claims.ID)
	assert.Equal(t, ada, claims.Profile())
}

func TestSessionIssuer_RejectsTamperedAndForeign(t *testing.T) {
	iss, _ := NewSessionIssuer("secret", time.Hour)
	other, _ := NewSessionIssuer("other", time.Hour)

	tok, _, err := other.Issue("s", ada)
	require.NoError(t, err)
	_, err = iss.Parse(tok)
	assert.ErrorIs(t, err, ErrInvalidSession)

	good, _, _ := iss.Issue("s", ada)
	parts := strings.Split(good, ".")
	require.Len(t, parts, 3)
	_, err = iss.Parse(parts[0] + "." + parts[1] + ".AAAA")
	assert.ErrorIs(t, err, ErrInvalidSession)

	_, err = iss.Parse("")
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestSessionIssuer_Expiry(t *testing.T) {
	iss, _ := NewSessionIssuer("secret", time.Minute)
	base := time.Now()
	iss.now = func() time.Time { return base }
	tok, _, err := iss.Issue("s", ada)
	require.NoError(t, err)

	iss.now = func() time.Time { return base.Add(2 * time.Minute) }
	_, err = iss.Parse(tok)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestSessionIssuer_RejectsOtherAlgorithms(t *testing.T) {
	iss, _ := NewSessionIssuer("secret", time.Hour)
	claims := SessionClaims{RegisteredClaims: jwt.RegisteredClaims{
		Subject: "U1", ID: "s", Issuer: sessionIssuer,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = iss.Parse(tok)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestSessionIssuer_EphemeralKey(t *testing.T) {
	a, err := NewSessionIssuer("", 0)
	require.NoError(t, err)
	b, _ := NewSessionIssuer("", 0)
	assert.True(t, a.Ephemeral())
	assert.Equal(t, 12*time.Hour, a.TTL())

	tok, _, err := a.Issue("s", ada)
	require.NoError(t, err)
	_, err = b.Parse(tok)
	assert.ErrorIs(t, err, ErrInvalidSession, "random keys must differ")
}
