// Package cipher stores organization and admin passwords with AES-128-CBC
// under a fixed key and a fixed IV, base64 encoded.
//
// This is not authenticated encryption and the static IV makes equal
// plain texts produce equal cipher texts. The format is shared with the
// legacy admin system, which looks accounts up by cipher text, so it must
// not change without a migration of stored passwords.
package cipher

import (
	"bytes"
	"crypto/aes"
	stdcipher "crypto/cipher"
	"encoding/base64"
	"errors"
	"fmt"
)

var (
	ErrInvalidCipherText = errors.New("invalid cipher text")
	ErrInvalidPadding    = errors.New("invalid padding")
)

// Cipher encrypts and decrypts password strings deterministically.
type Cipher struct {
	block stdcipher.Block
	iv    []byte
}

// New builds a Cipher from the configured key and IV strings. Each is
// zero padded or truncated to 16 bytes.
func New(key, iv string) (*Cipher, error) {
	block, err := aes.NewCipher(fit16(key))
	if err != nil {
		return nil, fmt.Errorf("failed to create block cipher: %w", err)
	}
	return &Cipher{block: block, iv: fit16(iv)}, nil
}

// Encrypt returns the base64 cipher text of plain.
func (c *Cipher) Encrypt(plain string) string {
	data := pad([]byte(plain), aes.BlockSize)
	out := make([]byte, len(data))
	stdcipher.NewCBCEncrypter(c.block, c.iv).CryptBlocks(out, data)
	return base64.StdEncoding.EncodeToString(out)
}

// Decrypt reverses Encrypt. An empty input yields an empty string.
func (c *Cipher) Decrypt(cipherText string) (string, error) {
	if cipherText == "" {
		return "", nil
	}
	raw, err := base64.StdEncoding.DecodeString(cipherText)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidCipherText, err)
	}
	if len(raw) == 0 || len(raw)%aes.BlockSize != 0 {
		return "", ErrInvalidCipherText
	}
	out := make([]byte, len(raw))
	stdcipher.NewCBCDecrypter(c.block, c.iv).CryptBlocks(out, raw)
	plain, err := unpad(out, aes.BlockSize)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}

func fit16(s string) []byte {
	b := make([]byte, 16)
	copy(b, s)
	return b
}

// pad applies PKCS#7 padding.
func pad(b []byte, size int) []byte {
	n := size - len(b)%size
	return append(b, bytes.Repeat([]byte{byte(n)}, n)...)
}

func unpad(b []byte, size int) ([]byte, error) {
	n := int(b[len(b)-1])
	if n == 0 || n > size || n > len(b) {
		return nil, ErrInvalidPadding
	}
	for _, c := range b[len(b)-n:] {
		if int(c) != n {
			return nil, ErrInvalidPadding
		}
	}
	return b[:len(b)-n], nil
}
