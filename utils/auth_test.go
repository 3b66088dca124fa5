package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParseJWT(t *testing.T) {
	JwtKey = []byte("test-secret")

	token, err := GenerateJWT("6512bd43d9caa6e02c990b0a", "alice", "donor")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ParseJWT(token)
	require.NoError(t, err)
	assert.Equal(t, "6512bd43d9caa6e02c990b0a", claims.ID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "donor", claims.UserType)
	assert.Empty(t, claims.Purpose)
}

func TestResetJWTCarriesPurpose(t *testing.T) {
	JwtKey = []byte("test-secret")

	token, err := GenerateResetJWT("6512bd43d9caa6e02c990b0a", "alice")
	require.NoError(t, err)

	claims, err := ParseJWT(token)
	require.NoError(t, err)
	assert.Equal(t, ResetPurpose, claims.Purpose)
	assert.Empty(t, claims.UserType)
}

func TestParseJWTRejectsWrongKey(t *testing.T) {
	JwtKey = []byte("test-secret")
	token, err := GenerateJWT("6512bd43d9caa6e02c990b0a", "alice", "donor")
	require.NoError(t, err)

	JwtKey = []byte("other-secret")
	_, err = ParseJWT(token)
	assert.Error(t, err)
}

func TestParseJWTRejectsGarbage(t *testing.T) {
	JwtKey = []byte("test-secret")
	_, err := ParseJWT("not.a.token")
	assert.Error(t, err)
}
