package capsule

import (
	"bytes"
	"encoding/json"

	"github.com/capsulecrm-go/capsule/models"
	"github.com/pkg/errors"
)

const (
	caseRoot       = "kase"
	caseCollection = "kases"
)

// Serializer converts cases to and from their wire representation
type Serializer interface {
	EncodeCase(c models.Case) ([]byte, error)
	DecodeCase(data []byte) (models.Case, error)
	DecodeCases(data []byte) ([]models.Case, error)
}

// JSONSerializer implements Serializer for the CapsuleCRM JSON envelopes:
// {"kase": {...}} for one record and {"kases": {"kase": [...]}} for many.
type JSONSerializer struct {
	root         string
	collection   string
	excludedKeys []string
}

// Verify that JSONSerializer implements Serializer.
var _ Serializer = (*JSONSerializer)(nil)

// NewCaseSerializer returns the serializer for the kase resource. trackId
// is excluded from bodies since the API only accepts it as a query parameter.
func NewCaseSerializer() *JSONSerializer {
	return &JSONSerializer{
		root:         caseRoot,
		collection:   caseCollection,
		excludedKeys: []string{"trackId"},
	}
}

// EncodeCase wraps c in its envelope, minus the excluded keys
func (s *JSONSerializer) EncodeCase(c models.Case) ([]byte, error) {
	raw, err := json.Marshal(c)
	if err != nil {
		return nil, errors.Wrap(err, "encoding kase")
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, errors.Wrap(err, "encoding kase")
	}
	for _, k := range s.excludedKeys {
		delete(fields, k)
	}
	return json.Marshal(map[string]interface{}{s.root: fields})
}

// DecodeCase reads a single case, defaulting its status to OPEN. The case
// may be wrapped in the kase envelope or sent as a bare attribute object.
func (s *JSONSerializer) DecodeCase(data []byte) (models.Case, error) {
	var c models.Case
	if err := decodeEnvelopeOrBare(data, s.root, &c); err != nil {
		return c, err
	}
	defaultStatus(&c)
	return c, nil
}

// DecodeCases unwraps a kase collection
func (s *JSONSerializer) DecodeCases(data []byte) ([]models.Case, error) {
	var cs []models.Case
	if err := decodeCollection(data, s.collection, s.root, &cs); err != nil {
		return nil, err
	}
	for i := range cs {
		defaultStatus(&cs[i])
	}
	return cs, nil
}

func defaultStatus(c *models.Case) {
	if c.Status == "" {
		c.Status = models.StatusOpen
	}
}

// decodeEnvelope decodes data[root] into v
func decodeEnvelope(data []byte, root string, v interface{}) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return errors.Errorf("empty %s response", root)
	}
	var env map[string]json.RawMessage
	if err := json.Unmarshal(data, &env); err != nil {
		return errors.Wrapf(err, "decoding %s envelope", root)
	}
	inner, ok := env[root]
	if !ok {
		return errors.Errorf("response has no %q key", root)
	}
	return errors.Wrapf(json.Unmarshal(inner, v), "decoding %s", root)
}

// decodeEnvelopeOrBare decodes data[root] into v when data has a root key,
// and data itself otherwise
func decodeEnvelopeOrBare(data []byte, root string, v interface{}) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return errors.Errorf("empty %s response", root)
	}
	var env map[string]json.RawMessage
	if err := json.Unmarshal(data, &env); err != nil {
		return errors.Wrapf(err, "decoding %s response", root)
	}
	if inner, ok := env[root]; ok {
		return errors.Wrapf(json.Unmarshal(inner, v), "decoding %s", root)
	}
	return errors.Wrapf(json.Unmarshal(data, v), "decoding %s", root)
}

// decodeCollection decodes data[collection][item] into the slice pointed to
// by v. The API sends a bare object instead of an array when there is only
// one item, and omits the item key altogether when there are none.
func decodeCollection(data []byte, collection, item string, v interface{}) error {
	var inner map[string]json.RawMessage
	if err := decodeEnvelope(data, collection, &inner); err != nil {
		return err
	}
	list, ok := inner[item]
	if !ok {
		return nil
	}
	list = bytes.TrimSpace(list)
	if len(list) > 0 && list[0] == '{' {
		list = append(append([]byte{'['}, list...), ']')
	}
	return errors.Wrapf(json.Unmarshal(list, v), "decoding %s", collection)
}
