package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// OptionalString tracks whether a field was present in a JSON body. Numbers
// and booleans are accepted and kept in their JSON text form.
type OptionalString struct {
	Set   bool
	Null  bool
	Value string
}

// UnmarshalJSON implements json.Unmarshaler.
func (o *OptionalString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	*o = OptionalString{Set: true}
	switch {
	case len(b) == 0 || bytes.Equal(b, []byte("null")):
		o.Null = true
	case b[0] == '"':
		if err := json.Unmarshal(b, &o.Value); err != nil {
			return err
		}
	case b[0] == '{' || b[0] == '[':
		return fmt.Errorf("expected a string, got %s", string(b[:1]))
	default:
		o.Value = string(b)
	}
	return nil
}

// Ptr returns nil for null or absent values.
func (o OptionalString) Ptr() *string {
	if !o.Set || o.Null {
		return nil
	}
	v := o.Value
	return &v
}

// Trimmed returns the value without surrounding whitespace.
func (o OptionalString) Trimmed() string {
	return strings.TrimSpace(o.Value)
}
