package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSONBStringArray is a custom type for handling string arrays in JSONB
type JSONBStringArray []string

// Value implements the driver.Valuer interface
func (a JSONBStringArray) Value() (driver.Value, error) {
	if len(a) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(a)
	return string(b), err
}

// Scan implements the sql.Scanner interface
func (a *JSONBStringArray) Scan(value interface{}) error {
	bytes, err := jsonBytes(value)
	if err != nil || bytes == nil {
		*a = JSONBStringArray{}
		return err
	}
	return json.Unmarshal(bytes, a)
}

// JSONBFloatMap stores micronutrient amounts keyed by name.
type JSONBFloatMap map[string]float64

func (m JSONBFloatMap) Value() (driver.Value, error) {
	if len(m) == 0 {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	return string(b), err
}

func (m *JSONBFloatMap) Scan(value interface{}) error {
	bytes, err := jsonBytes(value)
	if err != nil || bytes == nil {
		*m = nil
		return err
	}
	var out map[string]float64
	if err := json.Unmarshal(bytes, &out); err != nil {
		return err
	}
	if len(out) == 0 {
		out = nil
	}
	*m = out
	return nil
}

func jsonBytes(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("unsupported JSONB source type %T", value)
	}
}
