package records

import (
	"encoding/json"
	"fmt"
)

// Envelope is the tagged JSON form of a Record, used wherever records of
// mixed kinds are written side by side.
type Envelope struct {
	Kind Kind            `json:"kind"`
	Data json.RawMessage `json:"data"`
}

// Encode wraps rec in an Envelope.
func Encode(rec Record) (Envelope, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return Envelope{}, fmt.Errorf("encode %s: %w", rec.Kind(), err)
	}
	return Envelope{Kind: rec.Kind(), Data: data}, nil
}

// Decode unwraps an Envelope into a typed Record.
func Decode(env Envelope) (Record, error) {
	rec, err := New(env.Kind)
	if err != nil {
		return nil, err
	}
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, rec); err != nil {
			return nil, fmt.Errorf("decode %s: %w", env.Kind, err)
		}
	}
	return rec, nil
}

// MarshalRecord and UnmarshalRecord are the single-record shorthand used by
// stores that keep kind in a separate column.
func MarshalRecord(rec Record) ([]byte, error) {
	return json.Marshal(rec)
}

func UnmarshalRecord(kind Kind, body []byte) (Record, error) {
	return Decode(Envelope{Kind: kind, Data: body})
}
