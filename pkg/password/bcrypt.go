package password

import "golang.org/x/crypto/bcrypt"

// Verifier checks a plaintext password against a stored hash.
type Verifier interface {
	Verify(plaintext, hash string) bool
}

type bcryptVerifier struct{}

func NewBcryptVerifier() Verifier {
	return bcryptVerifier{}
}

func (bcryptVerifier) Verify(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}

// Hash returns the bcrypt hash of plaintext at the default cost.
func Hash(plaintext string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}
