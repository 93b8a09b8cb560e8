package mapping

import (
	"encoding/json"
	"fmt"

	"github.com/cognicore/shiver/pkg/shiver/records"
)

// ApplyDefaults fills empty fields of rec from defaults, keyed by the JSON
// field names of the record ("name", "tags", ...). Populated fields and the
// "meta" block are never touched. The returned record is a new value.
func ApplyDefaults(rec records.Record, defaults map[string]any) (records.Record, error) {
	if len(defaults) == 0 {
		return rec.Clone(), nil
	}

	body, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}

	for key, val := range defaults {
		if key == "meta" {
			continue
		}
		if isEmpty(fields[key]) {
			fields[key] = val
		}
	}

	merged, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	out, err := records.UnmarshalRecord(rec.Kind(), merged)
	if err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	return out, nil
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	}
	return false
}
