package utils

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveChatKeyIsDeterministicPerPair(t *testing.T) {
	assert.Equal(t, "P001_D001_healthcare_secure", DeriveChatKey("P001", "D001"))
	assert.Equal(t, DeriveChatKey("P001", "D001"), DeriveChatKey("P001", "D001"))
	assert.NotEqual(t, DeriveChatKey("P001", "D001"), DeriveChatKey("P001", "D002"))
	assert.Equal(t, "chat_P001_D001", ConversationID("P001", "D001"))
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	pairs := [][2]string{{"P001", "D001"}, {"P042", "D7"}, {"x", "y"}}
	messages := []string{
		"",
		"hello doctor",
		"Dose: 5mg twice a day\nfollow-up in 2 weeks",
		"unicode survives: héllo, 日本語, 🩺",
		string([]byte{0x00, 0xff, 0x10, 0x80}),
	}
	for _, pair := range pairs {
		key := DeriveChatKey(pair[0], pair[1])
		for _, m := range messages {
			decoded, ok := DecodeMessage(EncodeMessage(m, key), key)
			require.True(t, ok)
			assert.Equal(t, m, decoded)
		}
	}
}

func TestEncodeDecodeRoundTripRandomBytes(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 500; i++ {
		msg := make([]byte, rng.Intn(256))
		rng.Read(msg)
		key := make([]byte, 1+rng.Intn(40))
		rng.Read(key)

		decoded, ok := DecodeMessage(EncodeMessage(string(msg), string(key)), string(key))
		require.True(t, ok)
		require.Equal(t, string(msg), decoded)
	}
}

func TestEncodeIsNotIdentity(t *testing.T) {
	key := DeriveChatKey("P001", "D001")
	assert.NotEqual(t, "hello", EncodeMessage("hello", key))
}

func TestDecodeMalformedCiphertextReturnsSentinel(t *testing.T) {
	decoded, ok := DecodeMessage("%%% not base64 %%%", DeriveChatKey("P001", "D001"))
	assert.False(t, ok)
	assert.Equal(t, DecryptionErrorText, decoded)
}

func TestParseConversationID(t *testing.T) {
	p, d, ok := ParseConversationID(ConversationID("P001", "MC_42"))
	require.True(t, ok)
	assert.Equal(t, "P001", p)
	assert.Equal(t, "MC_42", d)

	for _, bad := range []string{"", "chat_", "chat_P001", "chat__D1", "chat_P001_", "room_P001_D1"} {
		_, _, ok := ParseConversationID(bad)
		assert.False(t, ok, bad)
	}
}
