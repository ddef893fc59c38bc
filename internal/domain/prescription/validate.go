package prescription

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	ErrValidation  = errors.New("validation failed")
	ErrPersistence = errors.New("persistence failed")
)

// ValidationError reports the first field that failed its constraint.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Is lets callers match any ValidationError with errors.Is(err, ErrValidation).
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Field limits. All bounds are inclusive.
const (
	NameMinLen        = 4
	NameMaxLen        = 15
	AddressMinLen     = 20
	SphereMin         = -20.00
	SphereMax         = 20.00
	CylinderMin       = -4.00
	CylinderMax       = 4.00
	AxisMin           = 0
	AxisMax           = 180
	OptometristMinLen = 8
	OptometristMaxLen = 25

	RemarkMinWords = 6
	RemarkMaxWords = 20
)

// Validate checks the prescription fields in a fixed order and returns the
// first violation, or nil when every field is within bounds.
func Validate(p *Prescription) error {
	if err := checkLength("first_name", p.firstName, NameMinLen, NameMaxLen); err != nil {
		return err
	}
	if err := checkLength("last_name", p.lastName, NameMinLen, NameMaxLen); err != nil {
		return err
	}
	if p.address == "" || utf8.RuneCountInString(p.address) < AddressMinLen {
		return &ValidationError{Field: "address", Reason: fmt.Sprintf("must be at least %d characters", AddressMinLen)}
	}
	if err := checkRange("sphere", p.sphere, SphereMin, SphereMax); err != nil {
		return err
	}
	if err := checkRange("cylinder", p.cylinder, CylinderMin, CylinderMax); err != nil {
		return err
	}
	if err := checkRange("axis", p.axis, AxisMin, AxisMax); err != nil {
		return err
	}
	return checkLength("optometrist", p.optometrist, OptometristMinLen, OptometristMaxLen)
}

func checkLength(field, s string, lo, hi int) error {
	n := utf8.RuneCountInString(s)
	if s == "" || n < lo || n > hi {
		return &ValidationError{Field: field, Reason: fmt.Sprintf("length must be between %d and %d characters", lo, hi)}
	}
	return nil
}

// checkRange rejects NaN and infinities, which compare false against any bound.
func checkRange(field string, v, lo, hi float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < lo || v > hi {
		return &ValidationError{Field: field, Reason: fmt.Sprintf("must be between %.2f and %.2f", lo, hi)}
	}
	return nil
}

// ValidateRemark checks remark wording and category. It does not consider how
// many remarks a record already holds.
func ValidateRemark(text, category string) error {
	trimmed := strings.TrimSpace(text)
	words := strings.Fields(trimmed)
	if len(words) < RemarkMinWords || len(words) > RemarkMaxWords {
		return &ValidationError{Field: "remark", Reason: fmt.Sprintf("must contain between %d and %d words", RemarkMinWords, RemarkMaxWords)}
	}
	first, _ := utf8.DecodeRuneInString(trimmed)
	if !unicode.IsUpper(first) {
		return &ValidationError{Field: "remark", Reason: "must start with an uppercase letter"}
	}
	if !ValidCategory(category) {
		return &ValidationError{Field: "category", Reason: fmt.Sprintf("must be %q or %q", CategoryClient, CategoryOptometrist)}
	}
	return nil
}

// ValidCategory reports whether c is an accepted remark category.
func ValidCategory(c string) bool {
	return c == CategoryClient || c == CategoryOptometrist
}

// WordCount returns the number of whitespace-separated words in text.
func WordCount(text string) int {
	return len(strings.Fields(text))
}
