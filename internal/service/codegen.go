package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	codeAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength   = 6
)

// CodeGenerator produces candidate short codes. The alphabet is finite,
// so the generator alone cannot guarantee uniqueness; callers must
// check candidates against the store and retry on collision.
type CodeGenerator interface {
	Generate() string
}

// RandomCodeGenerator draws fixed-length codes uniformly from the
// 62-symbol alphanumeric alphabet using crypto/rand.
type RandomCodeGenerator struct{}

func NewRandomCodeGenerator() RandomCodeGenerator {
	return RandomCodeGenerator{}
}

func (RandomCodeGenerator) Generate() string {
	code := make([]byte, codeLength)
	for i := 0; i < codeLength; i++ {
		randomIndex, err := rand.Int(rand.Reader, big.NewInt(int64(len(codeAlphabet))))
		if err != nil {
			panic(fmt.Sprintf("failed to generate random number: %v", err))
		}
		code[i] = codeAlphabet[randomIndex.Int64()]
	}
	return string(code)
}

func isValidCode(code string) bool {
	if len(code) != codeLength {
		return false
	}
	for _, char := range code {
		if !((char >= 'a' && char <= 'z') || (char >= 'A' && char <= 'Z') || (char >= '0' && char <= '9')) {
			return false
		}
	}
	return true
}
