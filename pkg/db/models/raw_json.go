package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// RawJSON is a JSON document bound as text, which both jsonb and TEXT columns
// accept.
type RawJSON json.RawMessage

// Value implements driver.Valuer.
func (j RawJSON) Value() (driver.Value, error) {
	if len(j) == 0 {
		return nil, nil
	}
	return string(j), nil
}

// Scan implements sql.Scanner.
func (j *RawJSON) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*j = nil
	case []byte:
		*j = append((*j)[:0], v...)
	case string:
		*j = RawJSON(v)
	default:
		return fmt.Errorf("unsupported payload type %T", src)
	}
	return nil
}

// MarshalJSON emits the document unchanged.
func (j RawJSON) MarshalJSON() ([]byte, error) {
	if len(j) == 0 {
		return []byte("null"), nil
	}
	return j, nil
}
