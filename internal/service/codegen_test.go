package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerate_LengthAndAlphabet(t *testing.T) {
	gen := NewRandomCodeGenerator()

	for i := 0; i < 100; i++ {
		code := gen.Generate()
		assert.Len(t, code, codeLength)
		for _, char := range code {
			assert.True(t, strings.ContainsRune(codeAlphabet, char),
				"code %q contains character outside the alphabet", code)
		}
	}
}

func TestGenerate_ProducesDistinctCodes(t *testing.T) {
	gen := NewRandomCodeGenerator()

	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		seen[gen.Generate()] = true
	}

	// 62^6 candidates; 1000 draws colliding down to under 990 distinct
	// values would indicate a broken generator.
	assert.Greater(t, len(seen), 990)
}

func TestIsValidCode(t *testing.T) {
	assert.True(t, isValidCode("abc123"))
	assert.True(t, isValidCode("ABCxyz"))
	assert.False(t, isValidCode(""))
	assert.False(t, isValidCode("abc12"))
	assert.False(t, isValidCode("abc1234"))
	assert.False(t, isValidCode("abc-12"))
	assert.False(t, isValidCode("abc 12"))
}
