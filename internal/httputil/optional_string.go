package httputil

import (
	"bytes"
	"encoding/json"
)

// OptionalString distinguishes an absent JSON field from an explicit null,
// which *string cannot:
//   - Present=false: field absent (leave unchanged)
//   - Present=true, Value=nil: field is null (clear)
//   - Present=true, Value!=nil: field carries a string
type OptionalString struct {
	Present bool
	Value   *string
}

// UnmarshalJSON is only invoked when the field is present.
func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Present = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	o.Value = &s
	return nil
}

// Patch resolves the field against a PATCH update: nil means leave unchanged,
// and an explicit null becomes the empty string.
func (o OptionalString) Patch() *string {
	if !o.Present {
		return nil
	}
	if o.Value == nil {
		empty := ""
		return &empty
	}
	return o.Value
}
