package undiff

import "encoding/json"

// Document is the mutable state tree that diffs are applied against.
// Values are JSON-decoded: map[string]any, []any, string, float64, bool or nil.
type Document map[string]any

// Clone returns a deep copy of the document.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	return Document(cloneMap(d))
}

// CloneValue returns a deep copy of a JSON-decoded value.
func CloneValue(v any) any {
	switch v := v.(type) {
	case map[string]any:
		return cloneMap(v)
	case Document:
		return cloneMap(v)
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = CloneValue(e)
		}
		return out
	default:
		return v
	}
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = CloneValue(v)
	}
	return out
}

// ActionRecord is one dispatched action. Payload is the full decoded
// object and always agrees with Type on its "type" field when serialized.
type ActionRecord struct {
	Type    string
	Payload map[string]any
}

// Clone returns a deep copy of the action.
func (a ActionRecord) Clone() ActionRecord {
	var payload map[string]any
	if a.Payload != nil {
		payload = cloneMap(a.Payload)
	}
	return ActionRecord{Type: a.Type, Payload: payload}
}

// Fields returns the payload with the type discriminator set.
func (a ActionRecord) Fields() map[string]any {
	out := make(map[string]any, len(a.Payload)+1)
	for k, v := range a.Payload {
		out[k] = v
	}
	out["type"] = a.Type
	return out
}

// MarshalJSON implements json.Marshaler.
func (a ActionRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.Fields())
}

// MarshalYAML implements yaml.Marshaler.
func (a ActionRecord) MarshalYAML() (any, error) {
	return a.Fields(), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (a *ActionRecord) UnmarshalJSON(data []byte) error {
	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		return err
	}
	t, _ := payload["type"].(string)
	a.Type = t
	a.Payload = payload
	return nil
}
