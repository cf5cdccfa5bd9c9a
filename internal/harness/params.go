package harness

import (
	"bytes"
	"fmt"
	"strconv"

	"judgemicro/internal/judge/model"
	appErr "judgemicro/pkg/errors"
)

// ParamsFileName is where the generated driver reads its input values. Values
// live outside the binary so one compiled test_runner can serve every config
// that shares a schema fingerprint.
const ParamsFileName = "test_params.txt"

// EncodeParams renders the runtime value stream consumed by the generated
// driver. The layout mirrors the declaration order: scalars one token each,
// strings and sequences length-prefixed.
func EncodeParams(params []model.Parameter) ([]byte, error) {
	var buf bytes.Buffer
	for _, p := range params {
		if err := encodeValue(&buf, p.Type, p.InputValue); err != nil {
			return nil, appErr.Wrapf(err, appErr.GetCode(err), "parameter %q", p.Name)
		}
	}
	return buf.Bytes(), nil
}

func encodeValue(buf *bytes.Buffer, t model.TypeTag, v interface{}) error {
	if t.IsSequence() {
		seq, ok := v.([]interface{})
		if !ok {
			return appErr.ConfigError(appErr.ValueTypeMismatch, string(t), "not a sequence")
		}
		fmt.Fprintf(buf, "%d\n", len(seq))
		elem := t.ElementType()
		for _, e := range seq {
			if err := encodeValue(buf, elem, e); err != nil {
				return err
			}
		}
		return nil
	}

	switch t {
	case model.TypeInt:
		n, ok := v.(int64)
		if !ok {
			return appErr.ConfigError(appErr.ValueTypeMismatch, string(t), "not an integer")
		}
		fmt.Fprintf(buf, "%d\n", n)
	case model.TypeFloat, model.TypeDouble:
		f, ok := v.(float64)
		if !ok {
			return appErr.ConfigError(appErr.ValueTypeMismatch, string(t), "not a float")
		}
		buf.WriteString(strconv.FormatFloat(f, 'g', -1, 64))
		buf.WriteByte('\n')
	case model.TypeChar:
		s, ok := v.(string)
		if !ok || len(s) == 0 {
			return appErr.ConfigError(appErr.ValueTypeMismatch, string(t), "not a char")
		}
		// Chars travel as their byte value so whitespace characters survive.
		fmt.Fprintf(buf, "%d\n", s[0])
	case model.TypeBool:
		b, ok := v.(bool)
		if !ok {
			return appErr.ConfigError(appErr.ValueTypeMismatch, string(t), "not a bool")
		}
		if b {
			buf.WriteString("1\n")
		} else {
			buf.WriteString("0\n")
		}
	case model.TypeString:
		s, ok := v.(string)
		if !ok {
			return appErr.ConfigError(appErr.ValueTypeMismatch, string(t), "not a string")
		}
		fmt.Fprintf(buf, "%d\n%s\n", len(s), s)
	default:
		return appErr.ConfigError(appErr.UnknownTypeTag, "type", string(t))
	}
	return nil
}
