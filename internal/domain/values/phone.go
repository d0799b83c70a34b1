package values

import (
	"encoding/json"

	"github.com/davidleathers/contact-directory/internal/domain/errors"
)

const (
	// MinPhoneDigits is the shortest accepted phone number
	MinPhoneDigits = 10
	// MaxPhoneDigits is the longest accepted phone number
	MaxPhoneDigits = 13
)

// PhoneNumber represents a validated phone number value object
type PhoneNumber struct {
	number string // digits only, stored exactly as given
}

// NewPhoneNumber creates a new PhoneNumber value object with validation.
// The number must consist of ASCII digits only and be 10 to 13 characters
// long. Content is checked before length, and nothing is normalized.
func NewPhoneNumber(number string) (PhoneNumber, error) {
	if !isDigits(number) {
		return PhoneNumber{}, errors.NewValidationError(errors.CodePhoneNotDigits,
			"phone number must contain only digits").
			WithDetails(map[string]interface{}{"phone": number})
	}

	if len(number) < MinPhoneDigits || len(number) > MaxPhoneDigits {
		return PhoneNumber{}, errors.NewValidationError(errors.CodePhoneInvalidLength,
			"phone number must be between 10 and 13 digits long").
			WithDetails(map[string]interface{}{"phone": number, "length": len(number)})
	}

	return PhoneNumber{number: number}, nil
}

// MustNewPhoneNumber creates PhoneNumber and panics on error (for constants/tests)
func MustNewPhoneNumber(number string) PhoneNumber {
	phone, err := NewPhoneNumber(number)
	if err != nil {
		panic(err)
	}
	return phone
}

// String returns the phone number as given at construction
func (p PhoneNumber) String() string {
	return p.number
}

// Matches reports whether the stored number equals raw exactly
func (p PhoneNumber) Matches(raw string) bool {
	return p.number == raw
}

// MarshalJSON implements JSON marshaling
func (p PhoneNumber) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.number)
}

// UnmarshalJSON implements JSON unmarshaling
func (p *PhoneNumber) UnmarshalJSON(data []byte) error {
	var number string
	if err := json.Unmarshal(data, &number); err != nil {
		return err
	}

	phone, err := NewPhoneNumber(number)
	if err != nil {
		return err
	}

	*p = phone
	return nil
}

// isDigits reports whether s is non-empty and made of '0'-'9' only.
// Unicode digits such as Arabic-Indic numerals are rejected.
func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
