package utils

import "golang.org/x/crypto/bcrypt"

// HashPassword derives the bcrypt hash stored on the users row at sign-up.
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(b), err
}

// CheckPassword verifies a sign-in attempt against the stored hash.
func CheckPassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
