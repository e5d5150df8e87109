package hasher

import (
	"crypto/rand"
	"encoding/base64"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword returns the bcrypt hash of a resync token, as stored in RESYNC_TOKEN_HASH.
func HashPassword(pw []byte) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword(pw, 10)
	return string(bytes), err
}

// PasswordCorrect reports whether a presented bearer token matches hash.
func PasswordCorrect(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// GenerateToken returns length random bytes, URL-safe base64 encoded.
func GenerateToken(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(bytes), nil
}
