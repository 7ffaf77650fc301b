package password

import (
	"errors"
	"regexp"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const (
	MinLength = 8
	MaxLength = 128
)

var (
	lower   = regexp.MustCompile(`[a-z]`)
	upper   = regexp.MustCompile(`[A-Z]`)
	digit   = regexp.MustCompile(`[0-9]`)
	special = regexp.MustCompile(`[!@#$%^&*()_+\-=\[\]{};':"\\|,.<>/?]`)
)

// PolicyError lists every rule a candidate password breaks
type PolicyError struct {
	Violations []string
}

func (e *PolicyError) Error() string {
	return strings.Join(e.Violations, "; ")
}

// Validate checks the password policy and returns a *PolicyError when it fails
func Validate(password string) error {
	if password == "" {
		return &PolicyError{Violations: []string{"Password is required"}}
	}

	var violations []string
	if len(password) < MinLength {
		violations = append(violations, "Password must be at least 8 characters long")
	}
	if len(password) > MaxLength {
		violations = append(violations, "Password must be less than 128 characters")
	}
	if !lower.MatchString(password) {
		violations = append(violations, "Password must contain at least one lowercase letter")
	}
	if !upper.MatchString(password) {
		violations = append(violations, "Password must contain at least one uppercase letter")
	}
	if !digit.MatchString(password) {
		violations = append(violations, "Password must contain at least one number")
	}
	if !special.MatchString(password) {
		violations = append(violations, "Password must contain at least one special character")
	}

	if len(violations) > 0 {
		return &PolicyError{Violations: violations}
	}
	return nil
}

// Hash returns the bcrypt hash of password
func Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Compare reports whether password matches hash
func Compare(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// IsPolicyError reports whether err came from Validate
func IsPolicyError(err error) bool {
	var policyErr *PolicyError
	return errors.As(err, &policyErr)
}
