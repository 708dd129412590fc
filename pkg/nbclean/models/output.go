package models

import "encoding/json"

// Output is one recorded execution result of a code cell.
// Its contents are never interpreted, only kept or dropped as a whole.
type Output struct {
	// Raw is the output record exactly as it appeared in the document.
	Raw json.RawMessage
}

// MarshalJSON returns the stored record.
func (o Output) MarshalJSON() ([]byte, error) {
	if len(o.Raw) == 0 {
		return []byte("null"), nil
	}
	return o.Raw, nil
}

// UnmarshalJSON stores a copy of the record.
func (o *Output) UnmarshalJSON(data []byte) error {
	o.Raw = append(o.Raw[:0], data...)
	return nil
}
