package utils

import "golang.org/x/crypto/bcrypt"

// HashPassword derives a bcrypt hash of plain.  The cost comes from
// BCRYPT_COST so tests can run at bcrypt.MinCost; values outside
// bcrypt's supported range are replaced with bcrypt.DefaultCost.
func HashPassword(plain string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// VerifyPassword reports whether plain matches the stored bcrypt hash.
// Malformed hashes verify as false rather than erroring.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
