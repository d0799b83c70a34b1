// Package contact holds the contact directory aggregate: records of phone
// numbers and the name-keyed directory that owns them.
package contact

import (
	"iter"

	"github.com/davidleathers/contact-directory/internal/domain/errors"
)

// Directory maps contact names to records. Iteration follows the order in
// which names were first inserted; overwriting a name keeps its position.
//
// A Directory is not safe for concurrent use.
type Directory struct {
	records map[string]*Record
	order   []string
}

// NewDirectory creates an empty directory
func NewDirectory() *Directory {
	return &Directory{records: make(map[string]*Record)}
}

// AddRecord stores record under its name, replacing any record already
// stored under that name.
func (d *Directory) AddRecord(record *Record) error {
	if record == nil {
		return errors.NewValidationError(errors.CodeInvalidRecord, "record cannot be nil")
	}
	key := record.Name().String()
	if _, exists := d.records[key]; !exists {
		d.order = append(d.order, key)
	}
	d.records[key] = record
	return nil
}

// Find returns the record stored under name
func (d *Directory) Find(name string) (*Record, error) {
	record, ok := d.records[name]
	if !ok {
		return nil, recordNotFound(name)
	}
	return record, nil
}

// Delete removes the record stored under name
func (d *Directory) Delete(name string) error {
	if _, ok := d.records[name]; !ok {
		return recordNotFound(name)
	}
	delete(d.records, name)
	for i, key := range d.order {
		if key == name {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
	return nil
}

// Len returns the number of records
func (d *Directory) Len() int {
	return len(d.records)
}

// Names returns the record names in iteration order
func (d *Directory) Names() []string {
	out := make([]string, len(d.order))
	copy(out, d.order)
	return out
}

// All yields every (name, record) pair in insertion order
func (d *Directory) All() iter.Seq2[string, *Record] {
	return func(yield func(string, *Record) bool) {
		for _, key := range d.Names() {
			if !yield(key, d.records[key]) {
				return
			}
		}
	}
}

func recordNotFound(name string) *errors.AppError {
	return errors.NewNotFoundError("record").
		WithDetails(map[string]interface{}{"name": name})
}
