package codec

import (
	"bytes"
	"encoding/json"

	"judgemicro/internal/judge/model"
	appErr "judgemicro/pkg/errors"
)

// paramDoc is the wire form of one solve parameter.
type paramDoc struct {
	Name       string          `json:"name"`
	Type       model.TypeTag   `json:"type"`
	InputValue json.RawMessage `json:"input_value"`
}

// configDoc is the on-disk configuration document read by the harness.
// Exactly one of c_standard / cpp_standard is set.
type configDoc struct {
	SolveParams      []paramDoc                 `json:"solve_params"`
	Expected         map[string]json.RawMessage `json:"expected"`
	FunctionType     model.TypeTag              `json:"function_type"`
	CStandard        string                     `json:"c_standard,omitempty"`
	CPPStandard      string                     `json:"cpp_standard,omitempty"`
	CompilerFlags    string                     `json:"compiler_flags"`
	CompileTimeoutS  int                        `json:"compile_timeout,omitempty"`
	ExecutionTimeout int                        `json:"execution_timeout,omitempty"`
}

// EncodeConfig renders the configuration document for one case. Values are
// canonicalized against their declared types before marshaling so the doc
// never carries null, fractional integers, or bare-integer floats.
func EncodeConfig(sub model.Submission, caseCfg model.CaseConfig) ([]byte, error) {
	if err := model.ValidateCase(sub.Language, caseCfg); err != nil {
		return nil, err
	}

	doc := configDoc{
		SolveParams:  make([]paramDoc, 0, len(caseCfg.Params)),
		Expected:     make(map[string]json.RawMessage, len(caseCfg.Expected)),
		FunctionType: caseCfg.FunctionType,
	}

	paramType := make(map[string]model.TypeTag, len(caseCfg.Params))
	for _, p := range caseCfg.Params {
		lit, err := MarshalLiteral(p.Type, p.InputValue)
		if err != nil {
			return nil, appErr.Wrapf(err, appErr.GetCode(err), "parameter %q", p.Name)
		}
		doc.SolveParams = append(doc.SolveParams, paramDoc{Name: p.Name, Type: p.Type, InputValue: lit})
		paramType[p.Name] = p.Type
	}

	for key, v := range caseCfg.Expected {
		t := caseCfg.FunctionType
		if key != model.ReturnValueKey {
			t = paramType[key]
		}
		lit, err := MarshalLiteral(t, v)
		if err != nil {
			return nil, appErr.Wrapf(err, appErr.GetCode(err), "expected %q", key)
		}
		doc.Expected[key] = lit
	}

	compiler := caseCfg.EffectiveCompiler(sub.Language)
	if sub.Language == model.LanguageCPP {
		doc.CPPStandard = compiler.Standard
	} else {
		doc.CStandard = compiler.Standard
	}
	doc.CompilerFlags = compiler.Flags

	limits := sub.EffectiveLimits()
	doc.CompileTimeoutS = limits.CompileTimeoutS
	doc.ExecutionTimeout = limits.ExecutionTimeoutS

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, appErr.Wrapf(err, appErr.InternalServerError, "encode config failed")
	}
	return buf.Bytes(), nil
}

// Document is the decoded, canonicalized configuration of one test case.
type Document struct {
	Params       []model.Parameter
	Expected     map[string]interface{}
	FunctionType model.TypeTag
	Language     model.Language
	Standard     string
	Flags        string
	Limits       model.ResourceLimits
}

// DecodeConfig parses and validates a configuration document. Parameter and
// expected values come back in canonical form.
func DecodeConfig(data []byte) (*Document, error) {
	var raw configDoc
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, appErr.Wrapf(err, appErr.ConfigInvalid, "malformed config document")
	}

	lang := model.LanguageC
	standard := raw.CStandard
	if raw.CPPStandard != "" {
		lang = model.LanguageCPP
		standard = raw.CPPStandard
	}

	out := &Document{
		Params:       make([]model.Parameter, 0, len(raw.SolveParams)),
		Expected:     make(map[string]interface{}, len(raw.Expected)),
		FunctionType: raw.FunctionType,
		Language:     lang,
		Standard:     standard,
		Flags:        raw.CompilerFlags,
		Limits: model.ResourceLimits{
			CompileTimeoutS:   raw.CompileTimeoutS,
			ExecutionTimeoutS: raw.ExecutionTimeout,
		}.WithDefaults(),
	}

	caseCfg := model.CaseConfig{FunctionType: raw.FunctionType, Expected: map[string]interface{}{}}
	paramType := make(map[string]model.TypeTag, len(raw.SolveParams))
	for _, p := range raw.SolveParams {
		caseCfg.Params = append(caseCfg.Params, model.Parameter{Name: p.Name, Type: p.Type})
		paramType[p.Name] = p.Type
	}
	for key := range raw.Expected {
		caseCfg.Expected[key] = struct{}{}
	}
	if err := model.ValidateCase(lang, caseCfg); err != nil {
		return nil, err
	}
	if standard != "" && !model.ValidStandard(lang, standard) {
		return nil, appErr.ConfigError(appErr.InvalidStandard, "standard", standard)
	}
	if standard == "" {
		out.Standard = model.DefaultCompilerSettings(lang).Standard
	}

	for _, p := range raw.SolveParams {
		v, err := ParseLiteral(p.Type, p.InputValue)
		if err != nil {
			return nil, appErr.Wrapf(err, appErr.GetCode(err), "parameter %q", p.Name)
		}
		out.Params = append(out.Params, model.Parameter{Name: p.Name, Type: p.Type, InputValue: v})
	}
	for key, lit := range raw.Expected {
		t := raw.FunctionType
		if key != model.ReturnValueKey {
			t = paramType[key]
		}
		v, err := ParseLiteral(t, lit)
		if err != nil {
			return nil, appErr.Wrapf(err, appErr.GetCode(err), "expected %q", key)
		}
		out.Expected[key] = v
	}
	return out, nil
}
