package api

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// The backend is inconsistent about list envelopes: some endpoints
// return a bare JSON array, others wrap the array in an object under a
// named field. decodeList is the single place that branching lives;
// everything past this boundary sees one canonical shape.

// decodeList decodes a list response body into []T. It accepts either a
// bare array, or an object carrying the array under one of the given
// field names (checked in order), or failing that under any field whose
// value is an array. JSON null decodes to an empty list.
func decodeList[T any](body []byte, fields ...string) ([]T, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	if trimmed[0] == '[' {
		var out []T
		if err := json.Unmarshal(trimmed, &out); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnexpectedShape, err)
		}
		return out, nil
	}

	if trimmed[0] != '{' {
		return nil, fmt.Errorf("%w: not an array or object", ErrUnexpectedShape)
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnexpectedShape, err)
	}

	for _, f := range fields {
		if raw, ok := envelope[f]; ok {
			return decodeRawList[T](raw)
		}
	}

	// Last resort: the first field holding an array.
	for _, raw := range envelope {
		if len(bytes.TrimSpace(raw)) > 0 && bytes.TrimSpace(raw)[0] == '[' {
			return decodeRawList[T](raw)
		}
	}

	return nil, fmt.Errorf("%w: no list field in envelope", ErrUnexpectedShape)
}

func decodeRawList[T any](raw json.RawMessage) ([]T, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	var out []T
	if err := json.Unmarshal(trimmed, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnexpectedShape, err)
	}
	return out, nil
}

// decodeObject decodes a single-entity response, accepting either the
// bare object or the object wrapped under one of the given field names.
func decodeObject[T any](body []byte, fields ...string) (T, error) {
	var zero T
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return zero, fmt.Errorf("%w: empty body", ErrUnexpectedShape)
	}
	if trimmed[0] != '{' {
		return zero, fmt.Errorf("%w: not an object", ErrUnexpectedShape)
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return zero, fmt.Errorf("%w: %v", ErrUnexpectedShape, err)
	}
	for _, f := range fields {
		if raw, ok := envelope[f]; ok && len(bytes.TrimSpace(raw)) > 0 && bytes.TrimSpace(raw)[0] == '{' {
			var out T
			if err := json.Unmarshal(raw, &out); err != nil {
				return zero, fmt.Errorf("%w: %v", ErrUnexpectedShape, err)
			}
			return out, nil
		}
	}

	var out T
	if err := json.Unmarshal(trimmed, &out); err != nil {
		return zero, fmt.Errorf("%w: %v", ErrUnexpectedShape, err)
	}
	return out, nil
}
