// Package passwords wraps the one-way password hashing used by the
// credential store. Callers only ever see hash-and-verify; the plaintext is
// never persisted.
package passwords

import "golang.org/x/crypto/bcrypt"

// Hash returns a bcrypt hash of the plain-text password.
func Hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Verify reports whether the plain-text password matches the stored hash.
func Verify(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
