package password

import "golang.org/x/crypto/bcrypt"

// Hash returns a bcrypt hash of the plain password for local storage.
func Hash(plain string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	return string(bytes), err
}

// Check verifies plain against a stored bcrypt hash. bcrypt compares in
// constant time, so the result leaks nothing about the stored hash.
func Check(hashed, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain)) == nil
}
