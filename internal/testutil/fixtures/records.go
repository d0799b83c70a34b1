package fixtures

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/davidleathers/contact-directory/internal/domain/contact"
)

// RecordBuilder builds test Record entities
type RecordBuilder struct {
	name   string
	phones []string
}

// NewRecordBuilder creates a RecordBuilder for "John" with two phones
func NewRecordBuilder() *RecordBuilder {
	return &RecordBuilder{
		name:   "John",
		phones: []string{"1234567890", "5555555555"},
	}
}

// WithName sets the contact name
func (b *RecordBuilder) WithName(name string) *RecordBuilder {
	b.name = name
	return b
}

// WithPhones replaces the phones added on Build
func (b *RecordBuilder) WithPhones(phones ...string) *RecordBuilder {
	b.phones = phones
	return b
}

// Build creates the record, failing the test if a phone is rejected
func (b *RecordBuilder) Build(t *testing.T) *contact.Record {
	t.Helper()
	r := contact.NewRecord(b.name)
	for _, p := range b.phones {
		require.NoError(t, r.AddPhone(p), "fixture phone %q", p)
	}
	return r
}

// NewDirectory builds a directory holding records in the given order
func NewDirectory(t *testing.T, records ...*contact.Record) *contact.Directory {
	t.Helper()
	d := contact.NewDirectory()
	for _, r := range records {
		require.NoError(t, d.AddRecord(r))
	}
	return d
}

// ExampleDirectory returns the John and Jane directory used across tests
func ExampleDirectory(t *testing.T) *contact.Directory {
	t.Helper()
	return NewDirectory(t,
		NewRecordBuilder().Build(t),
		NewRecordBuilder().WithName("Jane").WithPhones("9876543210").Build(t),
	)
}
