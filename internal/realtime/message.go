package realtime

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Push event types emitted by the lock backend.
const (
	TypeEnrollmentStatus  = "enrollment_status"
	TypeEnrollmentSuccess = "enrollment_success"
	TypeEnrollmentFailed  = "enrollment_failed"
	TypeScanSuccess       = "scan_success"
	TypeScanFailed        = "scan_failed"
	TypeSystemError       = "system_error"
)

var errMalformed = errors.New("malformed message")

// Message is the {type, ...fields} envelope carried over the push channel.
// Fields holds every top-level key except "type"; numbers decode as
// json.Number. Handlers share the same Message value and must treat Fields
// as read-only.
type Message struct {
	Type   string
	Fields map[string]any
}

// NewMessage builds an outbound message.
func NewMessage(typ string, fields map[string]any) Message {
	return Message{Type: typ, Fields: fields}
}

// Text returns the string field key, or "" when absent or not a string.
func (m Message) Text(key string) string {
	if s, ok := m.Fields[key].(string); ok {
		return s
	}
	return ""
}

// MarshalJSON flattens Type and Fields into one object.
func (m Message) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(m.Fields)+1)
	for k, v := range m.Fields {
		out[k] = v
	}
	out["type"] = m.Type
	return json.Marshal(out)
}

// UnmarshalJSON accepts only JSON objects with a non-empty string "type".
func (m *Message) UnmarshalJSON(data []byte) error {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	var fields map[string]any
	if err := decoder.Decode(&fields); err != nil {
		return fmt.Errorf("%w: %v", errMalformed, err)
	}
	if fields == nil {
		return fmt.Errorf("%w: not an object", errMalformed)
	}
	typ, ok := fields["type"].(string)
	if !ok || typ == "" {
		return fmt.Errorf("%w: missing type", errMalformed)
	}
	delete(fields, "type")
	m.Type = typ
	m.Fields = fields
	return nil
}

func decodeMessage(data []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return Message{}, err
	}
	return msg, nil
}
