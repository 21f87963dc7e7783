package graph

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Output models a node's dynamically-typed result as a tagged variant: either
// plain text or a structured map. The Condition Evaluator and input assembly
// stringify it through String().
type Output struct {
	text       string
	structured map[string]any
	isText     bool
}

// Text builds a text-valued Output.
func Text(s string) Output {
	return Output{text: s, isText: true}
}

// Structured builds a map-valued Output.
func Structured(m map[string]any) Output {
	return Output{structured: m, isText: false}
}

// IsText reports whether this Output carries plain text.
func (o Output) IsText() bool { return o.isText }

// TextValue returns the text payload and whether this Output is text-valued.
func (o Output) TextValue() (string, bool) { return o.text, o.isText }

// StructuredValue returns the structured payload and whether this Output is
// structured-valued.
func (o Output) StructuredValue() (map[string]any, bool) { return o.structured, !o.isText }

// String is the canonical serializer used by the Condition Evaluator and
// input assembly. Text outputs are returned verbatim; structured outputs are
// serialized as JSON with sorted keys for determinism.
func (o Output) String() string {
	if o.isText {
		return o.text
	}
	if o.structured == nil {
		return "{}"
	}
	keys := make([]string, 0, len(o.structured))
	for k := range o.structured {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	ordered := make(map[string]any, len(o.structured))
	for _, k := range keys {
		ordered[k] = o.structured[k]
	}
	b, err := json.Marshal(ordered)
	if err != nil {
		return fmt.Sprintf("%v", o.structured)
	}
	return string(b)
}

// MarshalJSON implements json.Marshaler so Output can round-trip through
// persisted state layouts (§6.4) without the caller needing to know the tag.
func (o Output) MarshalJSON() ([]byte, error) {
	if o.isText {
		return json.Marshal(o.text)
	}
	return json.Marshal(o.structured)
}

// UnmarshalJSON implements json.Unmarshaler. A JSON string becomes a Text
// Output; a JSON object becomes a Structured Output.
func (o *Output) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "{") {
		var m map[string]any
		if err := json.Unmarshal(data, &m); err != nil {
			return err
		}
		*o = Structured(m)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*o = Text(s)
	return nil
}
