package store

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/jwalitptl/clinic-console/internal/api"
	"github.com/jwalitptl/clinic-console/internal/model"
)

type patch map[string]json.RawMessage

// patchFrom reads the top-level fields of an update response. A response that
// is not an object (204, bare "ok") falls back to the payload that was sent.
func patchFrom(raw json.RawMessage, payload interface{}) (patch, bool, error) {
	if p, ok := objectFields(api.Unwrap(raw)); ok {
		return p, true, nil
	}
	if payload == nil {
		return patch{}, false, nil
	}
	sent, err := json.Marshal(payload)
	if err != nil {
		return nil, false, fmt.Errorf("failed to marshal payload: %w", err)
	}
	p, ok := objectFields(sent)
	if !ok {
		p = patch{}
	}
	return p, false, nil
}

func objectFields(body []byte) (patch, bool) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || body[0] != '{' {
		return nil, false
	}
	p := patch{}
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, false
	}
	return p, true
}

// merge lays the fields of p over old. Only top-level keys present in p are
// replaced; everything else old holds survives.
func merge[T model.Entity](old T, p patch) (T, error) {
	var out T
	base := patch{}
	raw, err := json.Marshal(old)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(raw, &base); err != nil {
		return out, err
	}
	for k, v := range p {
		base[k] = v
	}
	merged, err := json.Marshal(base)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(merged, &out); err != nil {
		return out, err
	}
	return out, nil
}

func decodePatch[T model.Entity](p patch) (T, error) {
	var out T
	raw, err := json.Marshal(p)
	if err != nil {
		return out, err
	}
	err = json.Unmarshal(raw, &out)
	return out, err
}
