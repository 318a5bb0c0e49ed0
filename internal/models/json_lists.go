package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// StringList is a []string persisted as a JSON column.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	return json.Marshal(l)
}

func (l *StringList) Scan(value interface{}) error {
	bytes, err := asBytes(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(bytes, l)
}

// FloatList is a []float64 persisted as a JSON column.
type FloatList []float64

func (l FloatList) Value() (driver.Value, error) {
	return json.Marshal(l)
}

func (l *FloatList) Scan(value interface{}) error {
	bytes, err := asBytes(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(bytes, l)
}

func asBytes(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("unsupported JSON column type %T", value)
	}
}
