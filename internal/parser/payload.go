package parser

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

// PromptPayload is what a ComfyUI prompt graph reveals about a generation.
// Unset prompts are nil; an empty string is a prompt that was found empty.
type PromptPayload struct {
	Positive *string  `json:"positive_prompt,omitempty"`
	Negative *string  `json:"negative_prompt,omitempty"`
	Settings Settings `json:"settings"`
}

func (p PromptPayload) Empty() bool {
	return p.Positive == nil && p.Negative == nil && len(p.Settings) == 0
}

type Setting struct {
	Label string
	Value string
}

// Settings keeps sampler settings in discovery order with unique labels.
type Settings []Setting

func (s Settings) Get(label string) (string, bool) {
	for _, kv := range s {
		if kv.Label == label {
			return kv.Value, true
		}
	}
	return "", false
}

// add stores value under label unless the label is already present.
func (s *Settings) add(label, value string) bool {
	if _, ok := s.Get(label); ok {
		return false
	}
	*s = append(*s, Setting{Label: label, Value: value})
	return true
}

// MarshalJSON writes an object whose keys keep their discovery order.
func (s Settings) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, kv := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(kv.Label)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(kv.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (s *Settings) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("invalid settings json")
	}
	r := gjson.ParseBytes(data)
	if r.Type == gjson.Null {
		*s = nil
		return nil
	}
	if !r.IsObject() {
		return fmt.Errorf("settings must be a json object, got %s", r.Type)
	}
	out := Settings{}
	r.ForEach(func(k, v gjson.Result) bool {
		out.add(k.String(), v.String())
		return true
	})
	*s = out
	return nil
}

// Value stores settings as their JSON text.
func (s Settings) Value() (driver.Value, error) {
	b, err := s.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan reads settings back from a JSON text column.
func (s *Settings) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*s = nil
		return nil
	case string:
		return s.UnmarshalJSON([]byte(v))
	case []byte:
		return s.UnmarshalJSON(v)
	default:
		return fmt.Errorf("unsupported type for Settings: %T", src)
	}
}
