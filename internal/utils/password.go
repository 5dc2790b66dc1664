package utils

import (
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// MaxPasswordBytes is the longest password prefix bcrypt takes into
// account; longer inputs are truncated before hashing and comparison.
const MaxPasswordBytes = 72

// dummyHash is compared against when no user matches a login attempt so
// that unknown emails cost the same bcrypt work as wrong passwords.
var (
	dummyOnce sync.Once
	dummyHash []byte
)

func truncatePassword(plain string) []byte {
	b := []byte(plain)
	if len(b) > MaxPasswordBytes {
		b = b[:MaxPasswordBytes]
	}
	return b
}

// HashPassword returns bcrypt hash using the given cost.
func HashPassword(plain string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword(truncatePassword(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword safely compares bcrypt hash and plain password.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), truncatePassword(plain)) == nil
}

// BurnPasswordCheck performs a throwaway comparison so that a failed
// lookup takes about as long as a failed password check.
func BurnPasswordCheck(plain string) {
	dummyOnce.Do(func() {
		dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcrypt.DefaultCost)
	})
	_ = bcrypt.CompareHashAndPassword(dummyHash, truncatePassword(plain))
}
