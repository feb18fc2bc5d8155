package review

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	dErrors "citadel/pkg/domain-errors"
)

func TestTokenRoundTrip(t *testing.T) {
	svc := NewTokenService("test-signing-key", time.Hour)

	token, err := svc.Generate("ana", "session-1")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	require.Equal(t, "ana", claims.Reviewer)
	require.Equal(t, "session-1", claims.SessionID)
}

func TestTokenRejectsWrongKey(t *testing.T) {
	token, err := NewTokenService("key-one", time.Hour).Generate("ana", "s")
	require.NoError(t, err)

	_, err = NewTokenService("key-two", time.Hour).ValidateToken(token)
	require.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestTokenRejectsExpired(t *testing.T) {
	svc := NewTokenService("test-signing-key", -time.Minute)
	token, err := svc.Generate("ana", "s")
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	require.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	require.Contains(t, err.Error(), "expired")
}

func TestTokenRejectsGarbage(t *testing.T) {
	svc := NewTokenService("test-signing-key", time.Hour)
	_, err := svc.ValidateToken("not.a.jwt")
	require.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}
