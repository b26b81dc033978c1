// Package confirmation issues the booking references printed on reservation
// confirmations.
//
// A code is the prefix, the UTC booking date as YYYYMMDD, the first eight hex
// digits of the user id's bytes and eight hex digits of crypto-random data:
//
//	HM20261018 75736572 9F03A1C4
//
// (without the spaces). Codes are opaque to callers and compared
// case-sensitively. Uniqueness is enforced by the reservation store; callers
// retry Generate when the store reports a duplicate.
package confirmation

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"time"
)

const (
	userDigits  = 8
	randomBytes = 4
)

// Generator produces confirmation numbers. It is safe for concurrent use as
// long as its random source is.
type Generator struct {
	prefix string
	now    func() time.Time
	random io.Reader
}

// Option configures a Generator.
type Option func(*Generator)

// WithClock overrides the clock used for the date stamp.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// WithRandom overrides the source of the random suffix. Tests use this to get
// deterministic codes.
func WithRandom(r io.Reader) Option {
	return func(g *Generator) { g.random = r }
}

// NewGenerator returns a Generator whose codes start with prefix.
func NewGenerator(prefix string, opts ...Option) *Generator {
	g := &Generator{
		prefix: prefix,
		now:    time.Now,
		random: rand.Reader,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate returns a fresh confirmation number for userID.
func (g *Generator) Generate(userID string) (string, error) {
	buf := make([]byte, randomBytes)
	if _, err := io.ReadFull(g.random, buf); err != nil {
		return "", fmt.Errorf("confirmation.Generate: read random: %w", err)
	}

	user := strings.ToUpper(hex.EncodeToString([]byte(userID)))
	if len(user) > userDigits {
		user = user[:userDigits]
	}

	var b strings.Builder
	b.Grow(len(g.prefix) + 8 + userDigits + 2*randomBytes)
	b.WriteString(g.prefix)
	b.WriteString(g.now().UTC().Format("20060102"))
	b.WriteString(user)
	b.WriteString(strings.ToUpper(hex.EncodeToString(buf)))
	return b.String(), nil
}
