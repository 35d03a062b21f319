package auth

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeatTokenRoundTrip(t *testing.T) {
	Init()
	playerID := uuid.New()
	roomID := uuid.New()

	token, err := CreateSeatToken(playerID, roomID)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	gotPlayer, gotRoom, err := ParseSeatToken(token)
	require.NoError(t, err)
	assert.Equal(t, playerID, gotPlayer)
	assert.Equal(t, roomID, gotRoom)
}

func TestSeatTokenRejectsGarbage(t *testing.T) {
	Init()
	_, _, err := ParseSeatToken("not-a-token")
	assert.Error(t, err)

	_, _, err = ParseSeatToken("")
	assert.Error(t, err)
}

func TestSeatTokenRejectsForeignSignature(t *testing.T) {
	Init()
	token, err := CreateSeatToken(uuid.New(), uuid.New())
	require.NoError(t, err)

	// Rotating the key pair invalidates previously issued tokens.
	Init()
	_, _, err = ParseSeatToken(token)
	assert.Error(t, err)
}

func TestPasscodeHashAndVerify(t *testing.T) {
	hash, err := HashPasscode("banana")
	require.NoError(t, err)

	ok, err := VerifyPasscode("banana", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPasscode("grape", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyPasscodeBadHashFormat(t *testing.T) {
	_, err := VerifyPasscode("x", "nonsense")
	assert.ErrorIs(t, err, ErrInvalidHash)
}
