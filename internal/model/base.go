package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ID is an entity identifier as delivered by the API. The backend emits both
// numeric and string ids; both decode to the same decimal string.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	if i, err := n.Int64(); err == nil {
		*id = ID(strconv.FormatInt(i, 10))
		return nil
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string { return string(id) }

// Entity is the minimum every record held by a store satisfies.
type Entity interface {
	GetID() string
}

// Base contains common fields for all models
type Base struct {
	ID        ID     `json:"id"`
	CreatedAt string `json:"createdAt,omitempty"`
}

func (b Base) GetID() string { return string(b.ID) }

// JSONMap represents a generic JSON object
type JSONMap map[string]interface{}

// Fields returns the top-level JSON fields of a record. Date resolution reads
// records through this view so that alternate field encodings stay reachable.
func Fields(record interface{}) (JSONMap, error) {
	raw, err := json.Marshal(record)
	if err != nil {
		return nil, err
	}
	fields := JSONMap{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}
