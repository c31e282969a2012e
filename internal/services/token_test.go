package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	s := NewTokenService("test-secret", time.Hour)
	token, err := s.Issue(42, "admin")
	require.NoError(t, err)

	id, err := s.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)
}

func TestTokenRejectsWrongSecretAndExpiry(t *testing.T) {
	token, err := NewTokenService("one", time.Hour).Issue(1, "user")
	require.NoError(t, err)
	_, err = NewTokenService("two", time.Hour).Parse(token)
	assert.Error(t, err)

	expired, err := NewTokenService("one", -time.Minute).Issue(1, "user")
	require.NoError(t, err)
	_, err = NewTokenService("one", time.Hour).Parse(expired)
	assert.Error(t, err)
}
