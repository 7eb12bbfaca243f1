package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"
)

const base36Alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// GenerateOrderID produces a human-facing order identifier of the form
// ORD_<unix-millis>_<9 base36 chars>. It doubles as the gateway receipt
// string; uniqueness is enforced by the database index, not by this value.
func GenerateOrderID() string {
	var sb strings.Builder
	for i := 0; i < 9; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(base36Alphabet))))
		if err != nil {
			// crypto/rand only fails when the platform RNG is broken
			sb.WriteByte(base36Alphabet[time.Now().Nanosecond()%len(base36Alphabet)])
			continue
		}
		sb.WriteByte(base36Alphabet[n.Int64()])
	}
	return fmt.Sprintf("ORD_%d_%s", time.Now().UnixMilli(), sb.String())
}

// GenerateOTP returns a 6-digit one-time code as a zero-padded string.
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("failed to generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// ParseOTP validates that a submitted code is exactly six digits.
func ParseOTP(code string) (string, error) {
	code = strings.TrimSpace(code)
	if len(code) != 6 {
		return "", fmt.Errorf("otp must be 6 digits")
	}
	if _, err := strconv.Atoi(code); err != nil {
		return "", fmt.Errorf("otp must be numeric")
	}
	return code, nil
}
