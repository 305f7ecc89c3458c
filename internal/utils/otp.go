package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
	"strings"
)

const OTPLength = 6

// GenerateOTP returns a uniformly random numeric code.
func GenerateOTP() (string, error) {
	max := big.NewInt(1_000_000)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

var phonePattern = regexp.MustCompile(`^[6-9][0-9]{9}$`)

// NormalizePhone strips spaces, dashes and the +91 / 0 prefixes of an
// Indian mobile number. It returns "" when the result is not valid.
func NormalizePhone(raw string) string {
	p := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(strings.TrimSpace(raw))
	switch {
	case strings.HasPrefix(p, "+91"):
		p = p[3:]
	case len(p) == 12 && strings.HasPrefix(p, "91"):
		p = p[2:]
	case len(p) == 11 && strings.HasPrefix(p, "0"):
		p = p[1:]
	}
	if !phonePattern.MatchString(p) {
		return ""
	}
	return p
}
