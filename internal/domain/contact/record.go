package contact

import (
	"strings"

	"github.com/google/uuid"

	"github.com/davidleathers/contact-directory/internal/domain/errors"
	"github.com/davidleathers/contact-directory/internal/domain/values"
)

// Record is a named contact owning an ordered list of phone numbers.
// The name is fixed at construction; phones keep insertion order and may
// contain duplicates.
type Record struct {
	id     uuid.UUID
	name   values.Name
	phones []values.PhoneNumber
}

// NewRecord creates a record for name with no phones. The name is stored as-is.
func NewRecord(name string) *Record {
	return &Record{
		id:   uuid.New(),
		name: values.NewName(name),
	}
}

// ID returns the record identifier
func (r *Record) ID() uuid.UUID {
	return r.id
}

// Name returns the contact name
func (r *Record) Name() values.Name {
	return r.name
}

// Phones returns a copy of the phone list in insertion order
func (r *Record) Phones() []values.PhoneNumber {
	out := make([]values.PhoneNumber, len(r.phones))
	copy(out, r.phones)
	return out
}

// AddPhone validates phone and appends it. On failure the list is unchanged
// and the validation error is returned.
func (r *Record) AddPhone(phone string) error {
	p, err := values.NewPhoneNumber(phone)
	if err != nil {
		return err
	}
	r.phones = append(r.phones, p)
	return nil
}

// FindPhone returns the first stored phone equal to phone. A missing phone
// is reported through the boolean, never as an error.
func (r *Record) FindPhone(phone string) (values.PhoneNumber, bool) {
	i := r.indexOf(phone)
	if i < 0 {
		return values.PhoneNumber{}, false
	}
	return r.phones[i], true
}

// RemovePhone removes the first occurrence of phone
func (r *Record) RemovePhone(phone string) error {
	i := r.indexOf(phone)
	if i < 0 {
		return errors.NewNotFoundError("phone").
			WithDetails(map[string]interface{}{"name": r.name.String(), "phone": phone})
	}
	r.phones = append(r.phones[:i], r.phones[i+1:]...)
	return nil
}

// EditPhone replaces oldPhone by removing it and then adding newPhone.
//
// The two steps are not atomic. If oldPhone is absent nothing changes. If
// newPhone fails validation, oldPhone has already been removed and stays
// removed. The new phone is appended to the end of the list rather than
// taking the old one's position.
func (r *Record) EditPhone(oldPhone, newPhone string) error {
	if err := r.RemovePhone(oldPhone); err != nil {
		return err
	}
	return r.AddPhone(newPhone)
}

// String renders the record as "Contact name: <name>, phones: <p1>; <p2>"
func (r *Record) String() string {
	numbers := make([]string, len(r.phones))
	for i, p := range r.phones {
		numbers[i] = p.String()
	}
	return "Contact name: " + r.name.String() + ", phones: " + strings.Join(numbers, "; ")
}

func (r *Record) indexOf(phone string) int {
	for i, p := range r.phones {
		if p.Matches(phone) {
			return i
		}
	}
	return -1
}
