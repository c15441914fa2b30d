// Package secret encrypts small values at rest with Fernet tokens.
package secret

import (
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/fernet/fernet-go"
	"github.com/phuslu/log"
)

// ErrInvalidToken is returned when a token was not produced with this key.
var ErrInvalidToken = errors.New("invalid or tampered secret token")

// Box seals and opens values with a single Fernet key.
type Box struct {
	key *fernet.Key
}

// NewBox builds a Box from a secret. A valid base64 Fernet key is used as is;
// any other non-empty string is stretched with SHA-256. An empty secret
// generates a process-local key, so sealed values will not survive a restart.
func NewBox(secret string) (*Box, error) {
	if secret == "" {
		var k fernet.Key
		if err := k.Generate(); err != nil {
			return nil, fmt.Errorf("failed to generate key: %w", err)
		}
		log.Warn().Msg("SECRET_KEY not set, encrypted settings will not survive a restart")
		return &Box{key: &k}, nil
	}

	if k, err := fernet.DecodeKey(secret); err == nil {
		return &Box{key: k}, nil
	}

	k := fernet.Key(sha256.Sum256([]byte(secret)))
	return &Box{key: &k}, nil
}

// Seal encrypts plaintext into a URL-safe token.
func (b *Box) Seal(plaintext string) (string, error) {
	tok, err := fernet.EncryptAndSign([]byte(plaintext), b.key)
	if err != nil {
		return "", fmt.Errorf("failed to encrypt secret: %w", err)
	}
	return string(tok), nil
}

// Open decrypts a token produced by Seal. Tokens never expire.
func (b *Box) Open(token string) (string, error) {
	msg := fernet.VerifyAndDecrypt([]byte(token), 0, []*fernet.Key{b.key})
	if msg == nil {
		return "", ErrInvalidToken
	}
	return string(msg), nil
}
