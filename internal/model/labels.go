package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

// LabelIndex maps a classifier output position to its category identifier.
// It is total over [0, Len()) and never modified after loading.
type LabelIndex struct {
	labels []string
}

// NewLabelIndex builds an index from labels ordered by output position.
func NewLabelIndex(labels []string) (LabelIndex, error) {
	if len(labels) == 0 {
		return LabelIndex{}, fmt.Errorf("%w: label index is empty", ErrConfiguration)
	}
	for i, l := range labels {
		if l == "" {
			return LabelIndex{}, fmt.Errorf("%w: label %d is empty", ErrConfiguration, i)
		}
	}
	return LabelIndex{labels: append([]string(nil), labels...)}, nil
}

// LoadLabelIndex reads a label file. Two layouts are accepted: an object
// keyed by stringified indices ({"0": "Apple___Apple_scab", ...}) and a
// plain array of identifiers.
func LoadLabelIndex(path string) (LabelIndex, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return LabelIndex{}, fmt.Errorf("%w: failed to read label index: %v", ErrConfiguration, err)
	}
	return ParseLabelIndex(data)
}

// ParseLabelIndex decodes label file contents. See LoadLabelIndex.
func ParseLabelIndex(data []byte) (LabelIndex, error) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var labels []string
		if err := json.Unmarshal(data, &labels); err != nil {
			return LabelIndex{}, fmt.Errorf("%w: failed to parse label index: %v", ErrConfiguration, err)
		}
		return NewLabelIndex(labels)
	}

	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return LabelIndex{}, fmt.Errorf("%w: failed to parse label index: %v", ErrConfiguration, err)
	}

	labels := make([]string, len(raw))
	seen := make([]bool, len(raw))
	for key, label := range raw {
		idx, err := strconv.Atoi(key)
		if err != nil || idx < 0 {
			return LabelIndex{}, fmt.Errorf("%w: label key %q is not a non-negative integer", ErrConfiguration, key)
		}
		if idx >= len(raw) {
			return LabelIndex{}, fmt.Errorf("%w: label index has a gap: key %d with %d entries", ErrConfiguration, idx, len(raw))
		}
		if seen[idx] {
			return LabelIndex{}, fmt.Errorf("%w: label index %d defined twice", ErrConfiguration, idx)
		}
		seen[idx] = true
		labels[idx] = label
	}
	return NewLabelIndex(labels)
}

// Len returns the number of categories.
func (li LabelIndex) Len() int { return len(li.labels) }

// Label returns the identifier at position i.
func (li LabelIndex) Label(i int) (string, bool) {
	if i < 0 || i >= len(li.labels) {
		return "", false
	}
	return li.labels[i], true
}

// Labels returns a copy of all identifiers in index order.
func (li LabelIndex) Labels() []string {
	return append([]string(nil), li.labels...)
}
