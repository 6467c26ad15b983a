package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sign(token, challenge string) string {
	h := hmac.New(sha256.New, []byte(token))
	h.Write([]byte(challenge))
	return hex.EncodeToString(h.Sum(nil))
}

func TestAuthHandler_GenerateChallenge(t *testing.T) {
	a := NewAuthHandler("local-secret")

	c1, err := a.GenerateChallenge()
	require.NoError(t, err)
	c2, err := a.GenerateChallenge()
	require.NoError(t, err)

	assert.Len(t, c1, 64)
	assert.NotEqual(t, c1, c2)
}

func TestAuthHandler_VerifySignature(t *testing.T) {
	a := NewAuthHandler("local-secret")

	challenge, err := a.GenerateChallenge()
	require.NoError(t, err)

	assert.True(t, a.VerifySignature(challenge, sign("local-secret", challenge)))
	assert.False(t, a.VerifySignature(challenge, sign("wrong-token", challenge)))
	assert.False(t, a.VerifySignature(challenge, "not-hex"))
}

func TestAuthHandler_HandleAuthResponse(t *testing.T) {
	a := NewAuthHandler("local-secret")

	t.Run("success", func(t *testing.T) {
		client := &Client{ID: "c1", Challenge: "challenge-1"}
		result := a.HandleAuthResponse(client, sign("local-secret", "challenge-1"))

		assert.True(t, result.Success)
		assert.True(t, client.Authenticated)
		assert.Empty(t, client.Challenge, "challenge is single use")
	})

	t.Run("no challenge", func(t *testing.T) {
		client := &Client{ID: "c2"}
		result := a.HandleAuthResponse(client, "anything")

		assert.False(t, result.Success)
		assert.False(t, client.Authenticated)
	})

	t.Run("lockout after repeated failures", func(t *testing.T) {
		client := &Client{ID: "c3", Challenge: "challenge-3"}

		for i := 0; i < maxAuthAttempts-1; i++ {
			result := a.HandleAuthResponse(client, "bad-signature")
			assert.Equal(t, "Invalid signature", result.Message)
		}
		result := a.HandleAuthResponse(client, "bad-signature")
		assert.Equal(t, "Too many failed attempts", result.Message)
		assert.False(t, client.Authenticated)
	})
}
