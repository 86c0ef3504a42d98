// Package secret seals group API keys with AES-256-GCM before they reach
// the database and reveals them by reference.
package secret

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/google/uuid"
)

// Store persists ciphertext by reference.
type Store interface {
	Insert(ctx context.Context, id uuid.UUID, ciphertext []byte) error
	Ciphertext(ctx context.Context, id uuid.UUID) ([]byte, error)
}

type Codec struct {
	aead  cipher.AEAD
	store Store
}

// NewCodec builds a codec from a 64-hex-character AES-256 key.
func NewCodec(hexKey string, store Store) (*Codec, error) {
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("decode encryption key: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("encryption key must be 32 bytes, got %d", len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create gcm: %w", err)
	}

	return &Codec{aead: aead, store: store}, nil
}

// Seal encrypts plaintext, stores it, and returns the reference.
func (c *Codec) Seal(ctx context.Context, plaintext string) (uuid.UUID, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return uuid.Nil, fmt.Errorf("generate nonce: %w", err)
	}

	// nonce is prepended to the ciphertext
	sealed := c.aead.Seal(nonce, nonce, []byte(plaintext), nil)

	ref := uuid.New()
	if err := c.store.Insert(ctx, ref, sealed); err != nil {
		return uuid.Nil, err
	}
	return ref, nil
}

// Reveal fetches and decrypts the secret behind ref.
func (c *Codec) Reveal(ctx context.Context, ref uuid.UUID) (string, error) {
	sealed, err := c.store.Ciphertext(ctx, ref)
	if err != nil {
		return "", err
	}
	if len(sealed) < c.aead.NonceSize() {
		return "", fmt.Errorf("sealed secret too short")
	}

	nonce, ciphertext := sealed[:c.aead.NonceSize()], sealed[c.aead.NonceSize():]
	plaintext, err := c.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("decrypt secret: %w", err)
	}
	return string(plaintext), nil
}
