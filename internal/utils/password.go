package utils

import (
	"crypto/subtle"
	"encoding/hex"

	"golang.org/x/crypto/argon2"
)

const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	argonKeyLen  = 32
)

// HashPassword derives the stored hash for password under salt.
// The result is deterministic for a given (salt, password) pair.
func HashPassword(salt, password string) string {
	key := argon2.IDKey([]byte(password), []byte(salt), argonTime, argonMemory, argonThreads, argonKeyLen)
	return hex.EncodeToString(key)
}

// VerifyPassword recomputes the hash and compares it in constant time.
func VerifyPassword(salt, password, hash string) bool {
	computed := HashPassword(salt, password)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(hash)) == 1
}
