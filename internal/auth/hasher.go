package auth

import "golang.org/x/crypto/bcrypt"

// Hasher abstracts credential hashing so the strategy stays pluggable.
// Nothing in the portal ever stores or compares a clear-text password.
type Hasher interface {
	Hash(password string) (string, error)
	Verify(stored, password string) bool
}

// BcryptHasher is the default Hasher.
type BcryptHasher struct{ Cost int }

func NewBcryptHasher() BcryptHasher { return BcryptHasher{Cost: bcrypt.DefaultCost} }

func (h BcryptHasher) Hash(password string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (h BcryptHasher) Verify(stored, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
}
