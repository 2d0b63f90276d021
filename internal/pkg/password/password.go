package password

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// Cost is the bcrypt work factor; tests lower it to bcrypt.MinCost.
var Cost = 12

// ErrEmpty is returned when hashing an empty password.
var ErrEmpty = errors.New("password is empty")

// Hash hashes password using bcrypt
func Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmpty
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), Cost)
	return string(b), err
}

// Verify compares password with hash
func Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
