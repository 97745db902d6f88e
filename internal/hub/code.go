package hub

import (
	"crypto/rand"
	"math/big"
	"strings"
)

const (
	codeDigits  = "0123456789"
	codeLetters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// GenerateCode returns two digits followed by two uppercase letters, e.g. "12AB".
func GenerateCode() (string, error) {
	code := make([]byte, 0, 4)
	for i := 0; i < 4; i++ {
		charset := codeDigits
		if i >= 2 {
			charset = codeLetters
		}
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		code = append(code, charset[num.Int64()])
	}
	return string(code), nil
}

func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
