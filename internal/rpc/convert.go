package rpc

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"google.golang.org/protobuf/types/known/structpb"
)

// maxExactInteger bounds the integers a Struct number_value holds exactly.
const maxExactInteger = 1<<53 - 1

// ErrInexactNumber is returned when an integer would be rounded on its way
// into a Struct.
var ErrInexactNumber = errors.New("integer exceeds 2^53-1")

// ToStruct converts any JSON-encodable value into a Struct by way of its
// JSON document. Integers outside ±(2^53-1) are refused with
// ErrInexactNumber rather than rounded.
func ToStruct(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("error encoding message: %w", err)
	}

	var m map[string]any
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("error encoding message: %w", err)
	}
	if err := exactNumbers(m); err != nil {
		return nil, fmt.Errorf("error encoding message: %w", err)
	}

	s, err := structpb.NewStruct(m)
	if err != nil {
		return nil, fmt.Errorf("error encoding message: %w", err)
	}
	return s, nil
}

// exactNumbers replaces every json.Number in v with its float64 value in
// place, failing on integers a float64 cannot represent.
func exactNumbers(v any) error {
	switch t := v.(type) {
	case map[string]any:
		for k, e := range t {
			if n, ok := e.(json.Number); ok {
				f, err := numberValue(n)
				if err != nil {
					return fmt.Errorf("field %q: %w", k, err)
				}
				t[k] = f
				continue
			}
			if err := exactNumbers(e); err != nil {
				return err
			}
		}
	case []any:
		for i, e := range t {
			if n, ok := e.(json.Number); ok {
				f, err := numberValue(n)
				if err != nil {
					return fmt.Errorf("index %d: %w", i, err)
				}
				t[i] = f
				continue
			}
			if err := exactNumbers(e); err != nil {
				return err
			}
		}
	}
	return nil
}

func numberValue(n json.Number) (float64, error) {
	if i, err := strconv.ParseInt(string(n), 10, 64); err == nil {
		if i > maxExactInteger || i < -maxExactInteger {
			return 0, fmt.Errorf("%w: %d", ErrInexactNumber, i)
		}
		return float64(i), nil
	}
	if _, err := strconv.ParseUint(string(n), 10, 64); err == nil {
		return 0, fmt.Errorf("%w: %s", ErrInexactNumber, n)
	}
	return n.Float64()
}

// StructJSON renders s as a JSON document. Numbers are encoded without
// exponents so integral fields decode into int64.
func StructJSON(s *structpb.Struct) ([]byte, error) {
	if s == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(s.AsMap())
}

// FromStruct decodes s into v.
func FromStruct(s *structpb.Struct, v any) error {
	b, err := StructJSON(s)
	if err != nil {
		return fmt.Errorf("error decoding message: %w", err)
	}
	if err := json.NewDecoder(bytes.NewReader(b)).Decode(v); err != nil {
		return fmt.Errorf("error decoding message: %w", err)
	}
	return nil
}
