package certnumber

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"regexp"

	"kursus/services/progress-service/internal/domain"
)

const (
	alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	// SuffixLength gives 36^8 (~2.8e12) numbers.
	SuffixLength = 8
)

var pattern = regexp.MustCompile(`^CERT-[0-9A-Z]{8}$`)

// RandomGenerator draws certificate numbers from a cryptographic source.
type RandomGenerator struct {
	src io.Reader
}

func NewRandomGenerator() *RandomGenerator {
	return &RandomGenerator{src: rand.Reader}
}

// Generate returns CERT- followed by SuffixLength uppercase base36 characters.
func (g *RandomGenerator) Generate() (string, error) {
	base := big.NewInt(int64(len(alphabet)))
	buf := make([]byte, SuffixLength)
	for i := range buf {
		n, err := rand.Int(g.src, base)
		if err != nil {
			return "", fmt.Errorf("generate certificate number: %w", err)
		}
		buf[i] = alphabet[n.Int64()]
	}
	return domain.CertificatePrefix + string(buf), nil
}

// Valid reports whether s has the certificate number format.
func Valid(s string) bool {
	return pattern.MatchString(s)
}
