// Package auth provides sign-in token and session utilities.
package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
)

// Sign-in tokens are 32 random bytes, hex encoded. Only the SHA-256 digest is
// ever stored; the plaintext appears once, in the emailed link.
const tokenLen = 32

var (
	// ErrInvalidTokenFormat indicates the token format is invalid.
	ErrInvalidTokenFormat = errors.New("invalid sign-in token format")
	// tokenFormatRegex validates the token format.
	tokenFormatRegex = regexp.MustCompile(`^[a-f0-9]{64}$`)
)

// GeneratedToken contains the parts of a newly minted sign-in token.
type GeneratedToken struct {
	Plaintext string // Emailed to the user (show once only)
	Digest    string // SHA-256 digest for storage
}

// GenerateSignInToken creates a new single-use sign-in token.
func GenerateSignInToken() (*GeneratedToken, error) {
	buf := make([]byte, tokenLen)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	plaintext := hex.EncodeToString(buf)
	return &GeneratedToken{
		Plaintext: plaintext,
		Digest:    DigestToken(plaintext),
	}, nil
}

// DigestToken returns the storage digest for a plaintext token.
func DigestToken(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}

// ValidateTokenFormat checks if the token matches the expected format.
func ValidateTokenFormat(token string) bool {
	return tokenFormatRegex.MatchString(token)
}
