package transfer

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

const CodeLength = 6

var codePattern = regexp.MustCompile(`^[A-Z0-9]{6}$`)

// GenerateCode returns the leading hex characters of a random UUID, uppercased.
func GenerateCode() string {
	return strings.ToUpper(uuid.NewString()[:CodeLength])
}

// NormalizeCode trims and uppercases user input and rejects anything that is not a code.
func NormalizeCode(raw string) (string, error) {
	code := strings.ToUpper(strings.TrimSpace(raw))
	if code == "" {
		return "", invalid("please enter an access code")
	}
	if !codePattern.MatchString(code) {
		return "", invalid("access code must be 6 letters or digits")
	}
	return code, nil
}
