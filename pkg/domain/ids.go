package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode"

	"github.com/google/uuid"

	dErrors "polizaexpress/pkg/domain-errors"
)

// maxIdentityDigits bounds identity numbers; Colombian cédulas have at most
// ten digits, foreign IDs a few more.
const maxIdentityDigits = 15

// CaseID identifies a claim case from intake to verdict.
type CaseID uuid.UUID

// NewCaseID generates a random case ID.
func NewCaseID() CaseID {
	return CaseID(uuid.New())
}

// ParseCaseID parses a case ID at a trust boundary. Nil UUIDs are rejected.
func ParseCaseID(s string) (CaseID, error) {
	if s == "" {
		return CaseID{}, dErrors.New(dErrors.CodeInvalidInput, "case_id is required")
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return CaseID{}, dErrors.New(dErrors.CodeInvalidInput, "case_id must be a valid UUID")
	}
	if parsed == uuid.Nil {
		return CaseID{}, dErrors.New(dErrors.CodeInvalidInput, "case_id must not be nil")
	}
	return CaseID(parsed), nil
}

func (c CaseID) String() string {
	return uuid.UUID(c).String()
}

func (c CaseID) IsNil() bool {
	return uuid.UUID(c) == uuid.Nil
}

// IdentityNumber is a national identity number made only of digits.
type IdentityNumber string

// ParseIdentityNumber strips the separators people and OCR put in identity
// numbers ("1.032.323.323", "1032-323323") and validates what remains.
func ParseIdentityNumber(raw string) (IdentityNumber, error) {
	var b strings.Builder
	for _, r := range strings.TrimSpace(raw) {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == ',' || unicode.IsSpace(r):
			continue
		default:
			return "", dErrors.New(dErrors.CodeInvalidInput, "identity number must contain only digits")
		}
	}
	digits := b.String()
	if digits == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "identity number is required")
	}
	if len(digits) > maxIdentityDigits {
		return "", dErrors.New(dErrors.CodeInvalidInput, "identity number is too long")
	}
	return IdentityNumber(digits), nil
}

func (n IdentityNumber) String() string {
	return string(n)
}

func (n IdentityNumber) IsZero() bool {
	return n == ""
}

// Hash returns the hex SHA-256 of the identity number. Logs and audit events
// carry the hash instead of the raw number.
func (n IdentityNumber) Hash() string {
	if n == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(n))
	return hex.EncodeToString(sum[:])
}
