package values

import "encoding/json"

// Name is the display name of a contact. It carries no validation; any
// string, including the empty one, is accepted as-is.
type Name struct {
	value string
}

// NewName wraps value in a Name
func NewName(value string) Name {
	return Name{value: value}
}

// String returns the name
func (n Name) String() string {
	return n.value
}

// MarshalJSON implements JSON marshaling
func (n Name) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.value)
}

// UnmarshalJSON implements JSON unmarshaling
func (n *Name) UnmarshalJSON(data []byte) error {
	var value string
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	*n = NewName(value)
	return nil
}
