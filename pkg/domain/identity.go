package domain

import (
	"strings"

	derrors "giggate/pkg/domain-errors"
)

// Identity is the unique actor key: a 20-byte hex wallet address in canonical
// lowercase 0x form. It is used for authorization and ownership checks only;
// giggate never interprets it beyond equality.
type Identity string

// ParseIdentity constructs an Identity from external input.
//
// Errors: CodeValidation when the value is not a 0x-prefixed 40-hex-digit
// address. The canonical form is lowercase so equality checks are trivial.
func ParseIdentity(s string) (Identity, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", derrors.New(derrors.CodeValidation, "identity cannot be empty")
	}
	if len(s) != 42 || !strings.HasPrefix(s, "0x") {
		return "", derrors.New(derrors.CodeValidation, "identity must be a 0x-prefixed 40-character hex address")
	}
	for _, c := range s[2:] {
		if !isHexDigit(c) {
			return "", derrors.New(derrors.CodeValidation, "identity must be a 0x-prefixed 40-character hex address")
		}
	}
	return Identity(strings.ToLower(s)), nil
}

func (i Identity) String() string { return string(i) }

// IsZero reports whether no identity is present (caller not authenticated).
func (i Identity) IsZero() bool { return i == "" }

func isHexDigit(c rune) bool {
	switch {
	case c >= '0' && c <= '9':
		return true
	case c >= 'a' && c <= 'f':
		return true
	case c >= 'A' && c <= 'F':
		return true
	}
	return false
}
