// Package ordernumber generates human readable order numbers of the form
// ORD-YYYYMMDD-XXXXXX.
package ordernumber

import (
	"crypto/rand"
	"math/big"
	"regexp"
	"time"

	"github.com/go-faster/errors"
)

const (
	prefix   = "ORD-"
	alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	suffix   = 6
)

var pattern = regexp.MustCompile(`^ORD-\d{8}-[A-Z0-9]{6}$`)

type Generator struct {
	now func() time.Time
}

func New() *Generator {
	return &Generator{now: time.Now}
}

// WithClock returns a generator using now for the date segment.
func WithClock(now func() time.Time) *Generator {
	return &Generator{now: now}
}

// Next returns a fresh candidate. Uniqueness is enforced by storage.
func (g *Generator) Next() (string, error) {
	buf := make([]byte, 0, len(prefix)+9+suffix)
	buf = append(buf, prefix...)
	buf = g.now().UTC().AppendFormat(buf, "20060102")
	buf = append(buf, '-')
	max := big.NewInt(int64(len(alphabet)))
	for i := 0; i < suffix; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", errors.Wrap(err, "read random")
		}
		buf = append(buf, alphabet[n.Int64()])
	}
	return string(buf), nil
}

func Valid(s string) bool {
	return pattern.MatchString(s)
}
