package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParse(t *testing.T) {
	j := &JWTer{Key: StaticKey("secret"), Issuer: "users-api", TTL: time.Hour}

	tok, err := j.Issue("user-1")
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	c, err := j.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-1", c.UserID)
	assert.Equal(t, "user-1", c.Subject)
	assert.NotNil(t, c.ExpiresAt)
}

func TestIssue_NoTTLOmitsExpiry(t *testing.T) {
	j := &JWTer{Key: StaticKey("secret"), Issuer: "users-api"}

	tok, err := j.Issue("user-1")
	require.NoError(t, err)

	c, err := j.Parse(tok)
	require.NoError(t, err)
	assert.Nil(t, c.ExpiresAt)
}

func TestIssue_KeyReadOnEveryCall(t *testing.T) {
	secret := "first"
	j := &JWTer{Key: func() []byte { return []byte(secret) }, Issuer: "users-api"}

	tok, err := j.Issue("user-1")
	require.NoError(t, err)

	secret = "second"
	_, err = j.Parse(tok)
	assert.Error(t, err, "token signed with the old key must not verify under the new one")

	tok, err = j.Issue("user-1")
	require.NoError(t, err)
	_, err = j.Parse(tok)
	assert.NoError(t, err)
}

func TestIssue_EmptyKey(t *testing.T) {
	_, err := (&JWTer{Key: StaticKey("")}).Issue("user-1")
	assert.ErrorIs(t, err, ErrNoSigningKey)

	_, err = (&JWTer{}).Issue("user-1")
	assert.ErrorIs(t, err, ErrNoSigningKey)
}

func TestParse_Expired(t *testing.T) {
	past := time.Now().Add(-2 * time.Hour)
	j := &JWTer{Key: StaticKey("secret"), Issuer: "users-api", TTL: time.Minute, Now: func() time.Time { return past }}

	tok, err := j.Issue("user-1")
	require.NoError(t, err)

	j.Now = nil
	_, err = j.Parse(tok)
	assert.Error(t, err)
}
