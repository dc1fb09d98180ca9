package generator

import (
	"crypto/rand"
	"io"

	"github.com/devsu/transaction-service/internal/domain"
)

// LuhnAccountNumberGenerator issues 12-digit account numbers ending in a
// Luhn check digit. It is safe for concurrent use.
type LuhnAccountNumberGenerator struct {
	random io.Reader
}

// NewLuhnAccountNumberGenerator creates a generator backed by crypto/rand.
func NewLuhnAccountNumberGenerator() *LuhnAccountNumberGenerator {
	return &LuhnAccountNumberGenerator{random: rand.Reader}
}

// Generate returns a new account number. Uniqueness is left to storage.
func (g *LuhnAccountNumberGenerator) Generate() (string, error) {
	return domain.GenerateAccountNumber(g.random)
}
