package content

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Status is the lifecycle position of an Item. Values are totally ordered and
// an item only ever moves forward.
type Status int

const (
	StatusUploaded Status = iota + 1
	StatusParsed
	StatusMapped
	StatusReviewed
	StatusSaved
)

var statusNames = map[Status]string{
	StatusUploaded: "uploaded",
	StatusParsed:   "parsed",
	StatusMapped:   "mapped",
	StatusReviewed: "reviewed",
	StatusSaved:    "saved",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	_, ok := statusNames[s]
	return ok
}

// Next returns the following status; saved is its own successor.
func (s Status) Next() Status {
	if s >= StatusSaved {
		return StatusSaved
	}
	return s + 1
}

// AtLeast reports whether s has reached other.
func (s Status) AtLeast(other Status) bool {
	return s >= other
}

// ParseStatus converts a status name.
func ParseStatus(name string) (Status, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for s, n := range statusNames {
		if n == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown status %q", name)
}

func (s Status) MarshalJSON() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("marshal invalid status %d", int(s))
	}
	return json.Marshal(s.String())
}

func (s *Status) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, err := ParseStatus(name)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
