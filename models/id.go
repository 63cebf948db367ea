package models

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/pkg/errors"
)

// ID is a CapsuleCRM record identifier. The API sends ids both as JSON
// numbers and as numeric strings, so decoding accepts either.
type ID int64

// NewID returns a pointer to id, for use in optional id fields
func NewID(id int64) *ID {
	v := ID(id)
	return &v
}

// Int64 returns the id as a plain integer
func (id ID) Int64() int64 {
	return int64(id)
}

func (id ID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// MarshalJSON writes the id as a JSON number
func (id ID) MarshalJSON() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalJSON reads a JSON number or a numeric string
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		data = []byte(s)
	}
	n, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return errors.Errorf("id %q is not numeric", string(data))
	}
	*id = ID(n)
	return nil
}
