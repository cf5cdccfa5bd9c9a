// Package codec converts submissions into on-disk config documents and parses
// harness result documents. Numeric handling is strict: integers are 64-bit
// signed, floats are IEEE-754 doubles, and sequences preserve order.
package codec

import (
	"encoding/json"
	"strconv"
	"strings"
	"unicode/utf8"

	"judgemicro/internal/judge/model"
	appErr "judgemicro/pkg/errors"
)

// Canonicalize coerces a JSON-decoded value into the canonical Go
// representation for the declared type tag: int64, float64, string, bool, or
// []interface{} of canonical elements. It rejects values that do not conform.
func Canonicalize(t model.TypeTag, v interface{}) (interface{}, error) {
	if t.IsSequence() {
		seq, ok := v.([]interface{})
		if !ok {
			return nil, mismatch(t, v)
		}
		out := make([]interface{}, len(seq))
		elem := t.ElementType()
		for i, raw := range seq {
			c, err := Canonicalize(elem, raw)
			if err != nil {
				return nil, err
			}
			out[i] = c
		}
		return out, nil
	}

	switch t {
	case model.TypeInt:
		n, ok := asInt64(v)
		if !ok {
			return nil, mismatch(t, v)
		}
		return n, nil
	case model.TypeFloat, model.TypeDouble:
		f, ok := asFloat64(v)
		if !ok {
			return nil, mismatch(t, v)
		}
		return f, nil
	case model.TypeChar:
		s, ok := v.(string)
		if !ok || utf8.RuneCountInString(s) != 1 {
			return nil, mismatch(t, v)
		}
		return s, nil
	case model.TypeString:
		s, ok := v.(string)
		if !ok || !utf8.ValidString(s) {
			return nil, mismatch(t, v)
		}
		return s, nil
	case model.TypeBool:
		b, ok := v.(bool)
		if !ok {
			return nil, mismatch(t, v)
		}
		return b, nil
	}
	return nil, appErr.ConfigError(appErr.UnknownTypeTag, "type", string(t))
}

func mismatch(t model.TypeTag, v interface{}) error {
	return appErr.ConfigError(appErr.ValueTypeMismatch, string(t), strconv.Quote(strings.TrimSpace(asString(v))))
}

func asString(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "?"
	}
	return string(b)
}

// asInt64 accepts json numbers that are exactly integral.
func asInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return i, true
	case float64:
		i := int64(n)
		if float64(i) != n {
			return 0, false
		}
		return i, true
	case int:
		return int64(n), true
	case int64:
		return n, true
	}
	return 0, false
}

func asFloat64(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// MarshalLiteral renders a canonical value as its wire literal. Integers have
// no fractional part, floats always carry a decimal point or exponent, and
// null never appears.
func MarshalLiteral(t model.TypeTag, v interface{}) (json.RawMessage, error) {
	c, err := Canonicalize(t, v)
	if err != nil {
		return nil, err
	}
	return marshalCanonical(t, c), nil
}

func marshalCanonical(t model.TypeTag, c interface{}) json.RawMessage {
	if t.IsSequence() {
		seq := c.([]interface{})
		elem := t.ElementType()
		parts := make([]string, len(seq))
		for i, e := range seq {
			parts[i] = string(marshalCanonical(elem, e))
		}
		return json.RawMessage("[" + strings.Join(parts, ", ") + "]")
	}
	switch t {
	case model.TypeInt:
		return json.RawMessage(strconv.FormatInt(c.(int64), 10))
	case model.TypeFloat, model.TypeDouble:
		return json.RawMessage(FormatFloat(c.(float64)))
	case model.TypeBool:
		return json.RawMessage(strconv.FormatBool(c.(bool)))
	default: // char, string
		b, _ := json.Marshal(c.(string))
		return json.RawMessage(b)
	}
}

// FormatFloat renders a double so it round-trips bit-exactly and always looks
// like a float on the wire.
func FormatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") && !strings.Contains(s, "Inf") && s != "NaN" {
		s += ".0"
	}
	return s
}

// ParseLiteral parses a wire literal into the canonical value for a tag.
func ParseLiteral(t model.TypeTag, raw []byte) (interface{}, error) {
	dec := json.NewDecoder(strings.NewReader(string(raw)))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil, appErr.Wrapf(err, appErr.ResultDocMalformed, "parse literal failed")
	}
	return Canonicalize(t, v)
}

// Equal compares two canonical values of the same declared type. Integers and
// strings compare exactly, floats compare bit-exactly (0 ULP), sequences
// compare ordered and element-wise.
func Equal(t model.TypeTag, a, b interface{}) bool {
	if t.IsSequence() {
		as, aok := a.([]interface{})
		bs, bok := b.([]interface{})
		if !aok || !bok || len(as) != len(bs) {
			return false
		}
		elem := t.ElementType()
		for i := range as {
			if !Equal(elem, as[i], bs[i]) {
				return false
			}
		}
		return true
	}
	return a == b
}
