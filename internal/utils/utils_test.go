package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestIssuer_PairCarriesUserAndRole(t *testing.T) {
	iss := NewIssuer("test-secret", 15, 7)
	pair, err := iss.IssuePair(42, "Client")
	require.NoError(t, err)

	access, err := iss.Parse(pair.Access.Token, AccessTokenType)
	require.NoError(t, err)
	assert.EqualValues(t, 42, access.UserID)
	assert.Equal(t, "Client", access.Rol)
	assert.Equal(t, "42", access.Subject)

	refresh, err := iss.Parse(pair.Refresh.Token, RefreshTokenType)
	require.NoError(t, err)
	assert.EqualValues(t, 42, refresh.UserID)
	assert.Equal(t, "Client", refresh.Rol)
	assert.NotEmpty(t, refresh.ID)
	assert.True(t, pair.Refresh.Exp.After(pair.Access.Exp))
}

func TestIssuer_RejectsWrongType(t *testing.T) {
	iss := NewIssuer("test-secret", 15, 7)
	pair, err := iss.IssuePair(1, "No Role")
	require.NoError(t, err)

	_, err = iss.Parse(pair.Refresh.Token, AccessTokenType)
	assert.ErrorIs(t, err, ErrWrongTokenType)
}

func TestIssuer_RejectsExpiredAndForeignTokens(t *testing.T) {
	past := time.Now().Add(-2 * time.Hour)
	old := NewIssuer("test-secret", 15, 7)
	old.Now = func() time.Time { return past }
	pair, err := old.IssuePair(1, "Client")
	require.NoError(t, err)

	iss := NewIssuer("test-secret", 15, 7)
	_, err = iss.Parse(pair.Access.Token, AccessTokenType)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)

	other := NewIssuer("other-secret", 15, 7)
	fresh, err := other.IssuePair(1, "Client")
	require.NoError(t, err)
	_, err = iss.Parse(fresh.Access.Token, AccessTokenType)
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
}

func TestHashToken(t *testing.T) {
	assert.Equal(t, HashToken("abc"), HashToken("abc"))
	assert.NotEqual(t, HashToken("abc"), HashToken("abd"))
	assert.Len(t, HashToken("abc"), 64)
}

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cret-pass", bcrypt.MinCost)
	require.NoError(t, err)
	assert.True(t, VerifyPassword(hash, "s3cret-pass"))
	assert.False(t, VerifyPassword(hash, "wrong"))
	assert.False(t, VerifyPassword("", "s3cret-pass"))

	_, err = HashPassword("", bcrypt.MinCost)
	assert.Error(t, err)
}

func TestHashPassword_LengthLimit(t *testing.T) {
	_, err := HashPassword(strings.Repeat("a", MaxPasswordBytes), bcrypt.MinCost)
	require.NoError(t, err)

	_, err = HashPassword(strings.Repeat("a", 100), bcrypt.MinCost)
	assert.ErrorIs(t, err, ErrPasswordTooLong)
	_, err = HashPassword(strings.Repeat("é", 40), bcrypt.MinCost)
	assert.ErrorIs(t, err, ErrPasswordTooLong)
}
