package auth

import "golang.org/x/crypto/bcrypt"

// HashPassword bcrypt-hashes plain. A cost outside bcrypt's accepted range
// falls back to bcrypt.DefaultCost.
func HashPassword(plain string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// PasswordMatches reports whether plain matches the stored hash. Accounts
// without a hash never match.
func PasswordMatches(hash *string, plain string) bool {
	if hash == nil || *hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(*hash), []byte(plain)) == nil
}
