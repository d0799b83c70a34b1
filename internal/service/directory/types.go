package directory

import (
	"github.com/google/uuid"

	"github.com/davidleathers/contact-directory/internal/domain/contact"
)

// AddContactRequest adds a phone to the named contact, creating the contact
// when it does not exist yet. Fields are passed to the domain unchecked: any
// name is valid and phones are validated by the record.
type AddContactRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// AddContactResponse reports the state of the contact after the add
type AddContactResponse struct {
	Record  RecordView `json:"record"`
	Created bool       `json:"created"`
}

// ChangePhoneRequest replaces OldPhone with NewPhone on the named contact
type ChangePhoneRequest struct {
	Name     string `json:"name"`
	OldPhone string `json:"old_phone"`
	NewPhone string `json:"new_phone"`
}

// PhoneRequest addresses a single phone of the named contact
type PhoneRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// RecordView is a read-only snapshot of a record
type RecordView struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Phones  []string  `json:"phones"`
	Display string    `json:"display"`
}

func newRecordView(r *contact.Record) RecordView {
	phones := r.Phones()
	view := RecordView{
		ID:      r.ID(),
		Name:    r.Name().String(),
		Phones:  make([]string, len(phones)),
		Display: r.String(),
	}
	for i, p := range phones {
		view.Phones[i] = p.String()
	}
	return view
}
