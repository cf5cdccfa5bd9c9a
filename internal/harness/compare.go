package harness

import (
	"strings"

	"judgemicro/internal/judge/codec"
	"judgemicro/internal/judge/model"
	appErr "judgemicro/pkg/errors"
)

// ParseActual reconstructs the actual value map from driver stdout. Result
// lines have the shape "<name>: <literal>"; user code may print anything
// before the driver's own lines, so for each declared name the last matching
// line wins.
func ParseActual(doc *codec.Document, stdout string) (map[string]interface{}, error) {
	wanted := make(map[string]model.TypeTag, len(doc.Params)+1)
	for _, p := range doc.Params {
		wanted[p.Name] = p.Type
	}
	if doc.FunctionType != model.TypeVoid {
		wanted[model.ReturnValueKey] = doc.FunctionType
	}

	lastLine := make(map[string]string, len(wanted))
	for _, line := range strings.Split(stdout, "\n") {
		idx := strings.Index(line, ": ")
		if idx <= 0 {
			continue
		}
		name := line[:idx]
		if _, ok := wanted[name]; ok {
			lastLine[name] = line[idx+2:]
		}
	}

	actual := make(map[string]interface{}, len(wanted))
	for name, t := range wanted {
		lit, ok := lastLine[name]
		if !ok {
			return nil, appErr.Newf(appErr.HarnessInternal, "result line for %q missing from driver output", name)
		}
		v, err := codec.ParseLiteral(t, []byte(lit))
		if err != nil {
			return nil, appErr.Wrapf(err, appErr.HarnessInternal, "result line for %q unparseable", name)
		}
		actual[name] = v
	}
	return actual, nil
}

// Compare checks every expected key against the actual map using the declared
// type's equality: exact integers, bit-equal strings, exact floats, ordered
// sequences.
func Compare(doc *codec.Document, actual map[string]interface{}) bool {
	paramType := make(map[string]model.TypeTag, len(doc.Params))
	for _, p := range doc.Params {
		paramType[p.Name] = p.Type
	}
	for key, want := range doc.Expected {
		t := doc.FunctionType
		if key != model.ReturnValueKey {
			t = paramType[key]
		}
		got, ok := actual[key]
		if !ok || !codec.Equal(t, want, got) {
			return false
		}
	}
	return true
}
