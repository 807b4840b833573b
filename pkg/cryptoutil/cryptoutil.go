package cryptoutil

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// ErrDecryptFailed is returned for any malformed, corrupt or otherwise
// undecryptable ciphertext. No partial plaintext is ever returned.
var ErrDecryptFailed = errors.New("decryption failed")

// Codec encrypts and decrypts provider API keys at rest using AES-256-CBC.
// Ciphertexts are encoded as hex(iv) + ":" + hex(ciphertext) with a fresh
// random IV per call, so encrypting the same plaintext twice yields
// different outputs.
type Codec struct {
	key []byte
}

// NewCodec derives a codec from the configured secret. A secret of exactly
// 32 bytes is used verbatim; anything else is hashed to 32 bytes.
func NewCodec(secret string) *Codec {
	if len(secret) == 32 {
		return &Codec{key: []byte(secret)}
	}
	sum := sha256.Sum256([]byte(secret))
	return &Codec{key: sum[:]}
}

// Encrypt encrypts the plaintext and returns the encoded ciphertext.
func (c *Codec) Encrypt(plaintext string) (string, error) {
	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", fmt.Errorf("failed to create cipher: %w", err)
	}

	iv := make([]byte, aes.BlockSize)
	if _, err := rand.Read(iv); err != nil {
		return "", fmt.Errorf("failed to generate IV: %w", err)
	}

	padded := pkcs7Pad([]byte(plaintext), aes.BlockSize)
	encrypted := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(encrypted, padded)

	return hex.EncodeToString(iv) + ":" + hex.EncodeToString(encrypted), nil
}

// Decrypt decodes and decrypts a ciphertext produced by Encrypt. Any
// format or cryptographic fault is reported as ErrDecryptFailed.
func (c *Codec) Decrypt(encoded string) (string, error) {
	parts := strings.Split(encoded, ":")
	if len(parts) != 2 {
		return "", fmt.Errorf("%w: invalid ciphertext format", ErrDecryptFailed)
	}

	iv, err := hex.DecodeString(parts[0])
	if err != nil || len(iv) != aes.BlockSize {
		return "", fmt.Errorf("%w: invalid IV", ErrDecryptFailed)
	}

	encrypted, err := hex.DecodeString(parts[1])
	if err != nil || len(encrypted) == 0 || len(encrypted)%aes.BlockSize != 0 {
		return "", fmt.Errorf("%w: invalid ciphertext", ErrDecryptFailed)
	}

	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecryptFailed, err)
	}

	decrypted := make([]byte, len(encrypted))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(decrypted, encrypted)

	plaintext, err := pkcs7Unpad(decrypted, aes.BlockSize)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecryptFailed, err)
	}

	return string(plaintext), nil
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	padding := blockSize - len(data)%blockSize
	return append(data, bytes.Repeat([]byte{byte(padding)}, padding)...)
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, errors.New("invalid padded length")
	}
	padding := int(data[len(data)-1])
	if padding == 0 || padding > blockSize {
		return nil, errors.New("invalid padding")
	}
	for _, b := range data[len(data)-padding:] {
		if int(b) != padding {
			return nil, errors.New("invalid padding")
		}
	}
	return data[:len(data)-padding], nil
}

var defaultCodec *Codec

// Initialize sets up the package-level codec from the configured secret.
func Initialize(secret string) {
	defaultCodec = NewCodec(secret)
}

// Encrypt encrypts using the package-level codec.
func Encrypt(plaintext string) (string, error) {
	return defaultCodec.Encrypt(plaintext)
}

// Decrypt decrypts using the package-level codec.
func Decrypt(encoded string) (string, error) {
	return defaultCodec.Decrypt(encoded)
}
