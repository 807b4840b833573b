package cryptoutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptDecryptRoundtrip(t *testing.T) {
	codec := NewCodec("unit-test-secret")

	for _, plaintext := range []string{
		"sk-abcdefghijklmnopqrstuvwxyz123456",
		"a",
		"exactly sixteen!",
		"ключ с юникодом и nicht-ASCII Zeichen 日本語",
		strings.Repeat("long-", 200),
	} {
		encrypted, err := codec.Encrypt(plaintext)
		require.NoError(t, err)

		decrypted, err := codec.Decrypt(encrypted)
		require.NoError(t, err)
		assert.Equal(t, plaintext, decrypted)
	}
}

func TestEncryptProducesFreshCiphertexts(t *testing.T) {
	codec := NewCodec("unit-test-secret")

	first, err := codec.Encrypt("same plaintext")
	require.NoError(t, err)
	second, err := codec.Encrypt("same plaintext")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestEncryptedFormat(t *testing.T) {
	codec := NewCodec("unit-test-secret")

	encrypted, err := codec.Encrypt("payload")
	require.NoError(t, err)

	parts := strings.Split(encrypted, ":")
	require.Len(t, parts, 2)
	// 16-byte IV, hex encoded.
	assert.Len(t, parts[0], 32)
}

func TestDecryptRejectsMalformedInput(t *testing.T) {
	codec := NewCodec("unit-test-secret")

	for name, input := range map[string]string{
		"no separator":        "deadbeef",
		"too many separators": "aa:bb:cc",
		"empty":               "",
		"non-hex iv":          "zz:deadbeef",
		"short iv":            "dead:beefbeefbeefbeefbeefbeefbeef",
		"non-hex ciphertext":  strings.Repeat("ab", 16) + ":not-hex",
		"empty ciphertext":    strings.Repeat("ab", 16) + ":",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := codec.Decrypt(input)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrDecryptFailed)
		})
	}
}

func TestDecryptRejectsCorruptCiphertext(t *testing.T) {
	codec := NewCodec("unit-test-secret")

	encrypted, err := codec.Encrypt("payload that spans multiple blocks to be safe")
	require.NoError(t, err)

	// Flip the final ciphertext character so padding validation fails.
	corrupted := encrypted[:len(encrypted)-1]
	if strings.HasSuffix(encrypted, "0") {
		corrupted += "1"
	} else {
		corrupted += "0"
	}

	decrypted, err := codec.Decrypt(corrupted)
	if err == nil {
		// Garbled blocks can, rarely, still carry valid padding; the
		// plaintext must still never survive corruption intact.
		assert.NotEqual(t, "payload that spans multiple blocks to be safe", decrypted)
	} else {
		assert.ErrorIs(t, err, ErrDecryptFailed)
	}
}

func TestDecryptFailsWithWrongKey(t *testing.T) {
	encrypted, err := NewCodec("first secret").Encrypt("payload")
	require.NoError(t, err)

	decrypted, err := NewCodec("second secret").Decrypt(encrypted)
	if err == nil {
		// CBC with a wrong key can, rarely, produce valid-looking padding;
		// the plaintext must still never match.
		assert.NotEqual(t, "payload", decrypted)
	} else {
		assert.ErrorIs(t, err, ErrDecryptFailed)
	}
}

func TestKeyDerivation(t *testing.T) {
	// A 32-byte secret is used verbatim, anything else is hashed; both must
	// produce working codecs.
	exact := NewCodec("0123456789abcdef0123456789abcdef")
	hashed := NewCodec("short")

	for _, codec := range []*Codec{exact, hashed} {
		encrypted, err := codec.Encrypt("payload")
		require.NoError(t, err)
		decrypted, err := codec.Decrypt(encrypted)
		require.NoError(t, err)
		assert.Equal(t, "payload", decrypted)
	}
}
