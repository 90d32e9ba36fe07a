package utils

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTManager_RoundTrip(t *testing.T) {
	m := NewJWTManager("secret", time.Hour)
	id := uuid.New()

	token, err := m.GenerateAccessToken(id, "Nadia", "till-1", []string{"cashier"})
	require.NoError(t, err)

	claims, err := m.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, id, claims.OperatorID)
	assert.Equal(t, "Nadia", claims.Name)
	assert.Equal(t, "till-1", claims.Terminal)
	assert.Equal(t, []string{"cashier"}, claims.Roles)
}

func TestJWTManager_RejectsForeignAndExpired(t *testing.T) {
	m := NewJWTManager("secret", time.Hour)
	other := NewJWTManager("other", time.Hour)

	token, err := other.GenerateAccessToken(uuid.New(), "x", "", nil)
	require.NoError(t, err)
	_, err = m.ValidateAccessToken(token)
	assert.Error(t, err)

	expired := NewJWTManager("secret", -time.Minute)
	token, err = expired.GenerateAccessToken(uuid.New(), "x", "", nil)
	require.NoError(t, err)
	_, err = m.ValidateAccessToken(token)
	assert.Error(t, err)

	token, err = m.GenerateAccessToken(uuid.Nil, "x", "", nil)
	require.NoError(t, err)
	_, err = m.ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestParseOptionalUUID(t *testing.T) {
	id, err := ParseOptionalUUID("")
	require.NoError(t, err)
	assert.Nil(t, id)

	_, err = ParseOptionalUUID("nope")
	assert.Error(t, err)

	want := uuid.New()
	id, err = ParseOptionalUUID(want.String())
	require.NoError(t, err)
	assert.Equal(t, want, *id)

	assert.Regexp(t, `^INT-[0-9A-F]{8}$`, GenerateBarcode())
}
