package services

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

const (
	// AdminTokenBytes e UserTokenBytes seguem o tamanho usado pelos dispositivos já em campo.
	AdminTokenBytes = 25
	UserTokenBytes  = 10
)

// TokenGenerator returns a new random URL-safe token.
type TokenGenerator func() (string, error)

// NewTokenGenerator returns a generator drawing n random bytes per token.
func NewTokenGenerator(n int) TokenGenerator {
	return func() (string, error) {
		return GenerateToken(n)
	}
}

// GenerateToken draws n bytes from crypto/rand and encodes them as unpadded URL-safe base64.
func GenerateToken(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("falha ao gerar token aleatório: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
