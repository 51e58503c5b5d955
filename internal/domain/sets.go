package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
)

// IntSet is a multi-valued integer column stored as a JSON array in a TEXT
// field. SQLite has no native array type, so the set is serialized on write
// and parsed on read.
type IntSet []int

// Value implements driver.Valuer.
func (s IntSet) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]int(s))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (s *IntSet) Scan(src any) error {
	b, err := sourceBytes(src)
	if err != nil {
		return fmt.Errorf("IntSet: %w", err)
	}
	return json.Unmarshal(b, (*[]int)(s))
}

// Max returns the largest element, or 0 for an empty set.
func (s IntSet) Max() int {
	max := 0
	for _, v := range s {
		if v > max {
			max = v
		}
	}
	return max
}

// FloatSet is a multi-valued float column stored as a JSON array in a TEXT
// field.
type FloatSet []float64

// Value implements driver.Valuer.
func (s FloatSet) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]float64(s))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (s *FloatSet) Scan(src any) error {
	b, err := sourceBytes(src)
	if err != nil {
		return fmt.Errorf("FloatSet: %w", err)
	}
	return json.Unmarshal(b, (*[]float64)(s))
}

// Max returns the largest element, or 0 for an empty set.
func (s FloatSet) Max() float64 {
	max := 0.0
	for _, v := range s {
		if v > max {
			max = v
		}
	}
	return max
}

func sourceBytes(src any) ([]byte, error) {
	switch v := src.(type) {
	case nil:
		return []byte("[]"), nil
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, errors.New("unsupported column source type")
	}
}
