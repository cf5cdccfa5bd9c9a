package codec

import (
	"bytes"
	"encoding/json"

	"judgemicro/internal/judge/model"
	appErr "judgemicro/pkg/errors"
)

// ResultDoc is the on-disk result document written by the harness. Expected
// and actual stay as raw literals so the service can re-canonicalize them
// against the declared types without a lossy float round-trip.
type ResultDoc struct {
	Status        string                     `json:"status"`
	Stdout        string                     `json:"stdout"`
	Stderr        string                     `json:"stderr"`
	ExitCode      int                        `json:"exit_code"`
	CompileTimeMS float64                    `json:"compile_time_ms"`
	TimeMS        float64                    `json:"time_ms"`
	CPUUtime      float64                    `json:"cpu_utime"`
	CPUStime      float64                    `json:"cpu_stime"`
	MaxRSSMB      float64                    `json:"maxrss_mb"`
	Expected      map[string]json.RawMessage `json:"expected,omitempty"`
	Actual        map[string]json.RawMessage `json:"actual,omitempty"`
	Match         *bool                      `json:"match,omitempty"`
	Error         string                     `json:"error,omitempty"`
	Recompiled    bool                       `json:"recompiled,omitempty"`
}

// DecodeResult parses a harness result document.
func DecodeResult(data []byte) (*ResultDoc, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, appErr.Newf(appErr.ResultDocMissing, "empty result document")
	}
	var doc ResultDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, appErr.Wrapf(err, appErr.ResultDocMalformed, "malformed result document")
	}
	if doc.Status == "" {
		return nil, appErr.Newf(appErr.ResultDocMalformed, "result document has no status")
	}
	return &doc, nil
}

// EncodeResult renders the result document the harness writes. Output is
// indented so it reads well when surfaced verbatim in verbose verdicts.
func EncodeResult(doc *ResultDoc) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, appErr.Wrapf(err, appErr.InternalServerError, "encode result failed")
	}
	return buf.Bytes(), nil
}

// CanonicalizeValues converts a raw-literal map from a result document into
// canonical values keyed by the declared types of the case. Keys without a
// declared type pass through as parsed JSON.
func CanonicalizeValues(caseCfg model.CaseConfig, raw map[string]json.RawMessage) (map[string]interface{}, error) {
	if raw == nil {
		return nil, nil
	}
	paramType := make(map[string]model.TypeTag, len(caseCfg.Params))
	for _, p := range caseCfg.Params {
		paramType[p.Name] = p.Type
	}
	out := make(map[string]interface{}, len(raw))
	for key, lit := range raw {
		t, ok := paramType[key]
		if key == model.ReturnValueKey {
			t, ok = caseCfg.FunctionType, caseCfg.FunctionType != model.TypeVoid
		}
		if !ok {
			var v interface{}
			if err := json.Unmarshal(lit, &v); err != nil {
				return nil, appErr.Wrapf(err, appErr.ResultDocMalformed, "value %q", key)
			}
			out[key] = v
			continue
		}
		v, err := ParseLiteral(t, lit)
		if err != nil {
			return nil, appErr.Wrapf(err, appErr.ResultDocMalformed, "value %q", key)
		}
		out[key] = v
	}
	return out, nil
}
