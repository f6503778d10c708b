package certnumber

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomGenerator_Format(t *testing.T) {
	g := NewRandomGenerator()
	for i := 0; i < 200; i++ {
		n, err := g.Generate()
		require.NoError(t, err)
		assert.True(t, Valid(n), "bad number %q", n)
	}
}

func TestRandomGenerator_Distinct(t *testing.T) {
	g := NewRandomGenerator()
	seen := make(map[string]struct{}, 5000)
	for i := 0; i < 5000; i++ {
		n, err := g.Generate()
		require.NoError(t, err)
		_, dup := seen[n]
		require.False(t, dup, "duplicate %q", n)
		seen[n] = struct{}{}
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("entropy gone") }

func TestRandomGenerator_SourceError(t *testing.T) {
	g := &RandomGenerator{src: failingReader{}}
	_, err := g.Generate()
	require.Error(t, err)
}

func TestValid(t *testing.T) {
	assert.True(t, Valid("CERT-ABC12345"))
	assert.False(t, Valid("CERT-ABC123"))
	assert.False(t, Valid("cert-ABC12345"))
	assert.False(t, Valid(" CERT-ABC12345"))
	assert.False(t, Valid("CERT-abc12345"))
}
