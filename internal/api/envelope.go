package api

import (
	"bytes"
	"encoding/json"
	"fmt"

	apperrors "github.com/jwalitptl/clinic-console/pkg/errors"
)

// maxEnvelopeDepth bounds {"data": {"data": [...]}} unwrapping; paginated
// endpoints nest the list one level deeper.
const maxEnvelopeDepth = 2

// Unwrap strips {"data": ...} envelopes. Anything else is returned as is.
func Unwrap(raw json.RawMessage) json.RawMessage {
	for i := 0; i < maxEnvelopeDepth; i++ {
		trimmed := bytes.TrimSpace(raw)
		if len(trimmed) == 0 || trimmed[0] != '{' {
			return trimmed
		}
		var envelope map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &envelope); err != nil {
			return trimmed
		}
		data, ok := envelope["data"]
		if !ok {
			return trimmed
		}
		raw = data
	}
	return bytes.TrimSpace(raw)
}

// DecodeList decodes a list payload. A payload that is not an array yields an
// empty, non-nil slice together with a DataShape error the caller logs and
// otherwise ignores.
func DecodeList[T any](raw json.RawMessage) ([]T, error) {
	body := Unwrap(raw)
	if len(body) == 0 || body[0] != '[' {
		return []T{}, apperrors.DataShape("expected a list response", fmt.Errorf("got %s", preview(body)))
	}
	var items []T
	if err := json.Unmarshal(body, &items); err != nil {
		return []T{}, apperrors.DataShape("list response could not be decoded", err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// DecodeOne decodes a single-record payload after unwrapping.
func DecodeOne[T any](raw json.RawMessage) (T, error) {
	var out T
	body := Unwrap(raw)
	if len(body) == 0 || body[0] != '{' {
		return out, apperrors.DataShape("expected a record response", fmt.Errorf("got %s", preview(body)))
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return out, apperrors.DataShape("record response could not be decoded", err)
	}
	return out, nil
}

func preview(b []byte) string {
	if len(b) == 0 {
		return "empty body"
	}
	if len(b) > 64 {
		return string(b[:64]) + "..."
	}
	return string(b)
}
