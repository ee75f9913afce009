package domainverify

import (
	"LinkGate-Backend/internal/domain"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeHostname(t *testing.T) {
	valid := map[string]string{
		"Go.Example.com":             "go.example.com",
		"  links.example.co.uk.  ":   "links.example.co.uk",
		"https://go.example.com/abc": "go.example.com",
		"go.example.com:443":         "go.example.com",
		"xn--bcher-kva.example":      "xn--bcher-kva.example",
	}
	for in, want := range valid {
		t.Run(in, func(t *testing.T) {
			got, err := NormalizeHostname(in)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}

	invalid := []string{"", "localhost", "192.168.0.1", "-bad.example.com", "bad-.example.com", "a..b.com", "under_score.com", "example.123"}
	for _, in := range invalid {
		t.Run("invalid_"+in, func(t *testing.T) {
			_, err := NormalizeHostname(in)
			assert.ErrorIs(t, err, domain.ErrValidation)
			assert.ErrorIs(t, err, ErrInvalidHostname)
		})
	}
}

func TestNewVerificationToken(t *testing.T) {
	a, err := NewVerificationToken()
	require.NoError(t, err)
	b, err := NewVerificationToken()
	require.NoError(t, err)

	assert.Len(t, a, 32)
	assert.NotEqual(t, a, b)
}
