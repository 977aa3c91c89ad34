package echo

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"unicode/utf8"
)

var (
	errTrailingData = errors.New("trailing data after JSON value")
	errInvalidUTF8  = errors.New("payload is not valid UTF-8")
)

// Decode parses data as exactly one JSON value of any shape. Numbers are
// kept as json.Number so Encode reproduces them without float rounding.
// Invalid UTF-8 is rejected rather than replaced with U+FFFD.
func Decode(data []byte) (any, error) {
	if !utf8.Valid(data) {
		return nil, errInvalidUTF8
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errTrailingData
	}
	return v, nil
}

// Encode serializes v as compact JSON without HTML escaping.
func Encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// Format renders a decoded message for the log: strings as their raw text,
// everything else as compact JSON.
func Format(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	data, err := Encode(v)
	if err != nil {
		return "<unprintable>"
	}
	return string(data)
}
