package content

import (
	"encoding/json"

	"github.com/cognicore/shiver/pkg/shiver/records"
)

type itemAlias Item

type itemJSON struct {
	*itemAlias
	MappedTemplate *records.Envelope `json:"mappedTemplate,omitempty"`
}

func (it Item) MarshalJSON() ([]byte, error) {
	out := itemJSON{itemAlias: (*itemAlias)(&it)}
	if it.Mapped != nil {
		env, err := records.Encode(it.Mapped)
		if err != nil {
			return nil, err
		}
		out.MappedTemplate = &env
	}
	return json.Marshal(out)
}

func (it *Item) UnmarshalJSON(data []byte) error {
	in := itemJSON{itemAlias: (*itemAlias)(it)}
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	if in.MappedTemplate != nil {
		rec, err := records.Decode(*in.MappedTemplate)
		if err != nil {
			return err
		}
		it.Mapped = rec
	}
	return nil
}
