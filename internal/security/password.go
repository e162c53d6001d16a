package security

import "golang.org/x/crypto/bcrypt"

// bcryptCost is pinned rather than bcrypt.DefaultCost so the offline
// brute-force resistance does not silently change with library upgrades.
const bcryptCost = 12

// HashPassword hashes a plain text password with bcrypt. The salt is embedded
// in the digest, so two hashes of the same password differ.
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcryptCost)

	if err != nil {
		return "", err
	}

	return string(hash), nil
}

// CheckPassword compares a bcrypt hash with a plaintext password. A malformed
// digest comes back as an ordinary error, never a panic, so callers can treat
// any non-nil result as a verification failure.
func CheckPassword(hash, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
}
