package calculator

import (
	"encoding/json"
)

// Maybe is a value that may be undefined. Undefined values marshal to null.
type Maybe struct {
	Value float64
	Valid bool
}

// Some wraps a defined value.
func Some(v float64) Maybe { return Maybe{Value: v, Valid: true} }

func (m Maybe) MarshalJSON() ([]byte, error) {
	if !m.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(m.Value)
}
