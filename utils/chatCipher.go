package utils

import (
	"encoding/base64"
	"fmt"
	"strings"
)

const (
	// chatKeySalt is appended to every derived conversation key.
	chatKeySalt = "healthcare_secure"

	// DecryptionErrorText is shown in place of a message whose ciphertext
	// cannot be decoded.
	DecryptionErrorText = "[Decryption Error]"
)

const conversationPrefix = "chat_"

// ConversationID names the conversation between a patient and a doctor.
func ConversationID(patientID, doctorID string) string {
	return fmt.Sprintf("%s%s_%s", conversationPrefix, patientID, doctorID)
}

// ParseConversationID splits a conversation id back into its participants.
// Patient ids never contain an underscore, so the first one after the
// prefix separates the pair.
func ParseConversationID(id string) (patientID, doctorID string, ok bool) {
	rest, found := strings.CutPrefix(id, conversationPrefix)
	if !found {
		return "", "", false
	}
	patientID, doctorID, found = strings.Cut(rest, "_")
	if !found || patientID == "" || doctorID == "" {
		return "", "", false
	}
	return patientID, doctorID, true
}

// DeriveChatKey returns the symmetric key shared by both participants of a
// conversation. It needs no key exchange and is identical on both sides.
func DeriveChatKey(patientID, doctorID string) string {
	return patientID + "_" + doctorID + "_" + chatKeySalt
}

// EncodeMessage XORs the plaintext with the repeating key and returns it as
// standard base64. An empty key leaves the bytes unchanged.
func EncodeMessage(plaintext, key string) string {
	return base64.StdEncoding.EncodeToString(xorWithKey([]byte(plaintext), key))
}

// DecodeMessage is the inverse of EncodeMessage. Malformed input yields
// DecryptionErrorText and ok=false instead of an error.
func DecodeMessage(ciphertext, key string) (plaintext string, ok bool) {
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return DecryptionErrorText, false
	}
	return string(xorWithKey(raw, key)), true
}

func xorWithKey(data []byte, key string) []byte {
	out := make([]byte, len(data))
	if len(key) == 0 {
		copy(out, data)
		return out
	}
	for i := range data {
		out[i] = data[i] ^ key[i%len(key)]
	}
	return out
}
