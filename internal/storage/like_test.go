package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContainsPattern(t *testing.T) {
	tests := map[string]string{
		"ann":    "%ann%",
		"":       "%%",
		"100%":   `%100\%%`,
		"a_b":    `%a\_b%`,
		`back\s`: `%back\\s%`,
	}

	for in, want := range tests {
		assert.Equal(t, want, ContainsPattern(in), "input %q", in)
	}
}
