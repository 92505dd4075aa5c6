// Package id derives stable movement identifiers.
package id

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Length is the number of hex characters kept from the digest.
const Length = 16

// Base returns the identifier of a movement with the given posting date,
// description and amount. The same inputs always give the same ID.
func Base(date time.Time, description string, amount decimal.Decimal) string {
	key := fmt.Sprintf("%s|%s|%s", date.Format("2006-01-02"), description, amount.StringFixed(2))
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])[:Length]
}

// Generator hands out IDs for one statement. Identical movements within the
// statement get "-2", "-3", ... appended in encounter order.
type Generator struct {
	seen map[string]int
}

// NewGenerator returns a Generator with no IDs issued.
func NewGenerator() *Generator {
	return &Generator{seen: make(map[string]int)}
}

// Next returns the ID for the next movement.
func (g *Generator) Next(date time.Time, description string, amount decimal.Decimal) string {
	base := Base(date, description, amount)
	g.seen[base]++
	if n := g.seen[base]; n > 1 {
		return fmt.Sprintf("%s-%d", base, n)
	}
	return base
}
