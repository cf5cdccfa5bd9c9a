package orchestrator

import (
	"judgemicro/internal/harness"
	"judgemicro/internal/judge/codec"
	"judgemicro/internal/judge/model"
	"judgemicro/internal/judge/sandbox"
)

// Classify turns one harness exec outcome plus its result document into a
// final verdict. Rules apply first-match:
//  1. outer deadline kill -> TIMEOUT when the run phase was reached,
//     COMPILE_TIMEOUT otherwise
//  2. harness exit >= 3 or missing/malformed result doc -> INTERNAL_ERROR
//  3. adopt the harness status, normalized
//  4. match is true only on SUCCESS
func Classify(caseCfg model.CaseConfig, exec sandbox.ExecResult, resultData []byte, downloadErr error) model.Verdict {
	doc, docErr := decodeResult(resultData, downloadErr)

	if exec.Killed {
		v := model.Verdict{Status: model.StatusCompileTimeout, ErrorDetail: "killed by sandbox wall deadline"}
		if doc != nil && runPhaseReached(doc) {
			v.Status = model.StatusTimeout
		}
		fillFromDoc(&v, caseCfg, doc)
		return v
	}

	if exec.ExitCode >= harness.ExitInternal || doc == nil {
		detail := "harness internal failure"
		if docErr != nil {
			detail = docErr.Error()
		} else if doc != nil && doc.Error != "" {
			detail = doc.Error
		}
		v := model.InternalVerdict(detail)
		v.ExitCode = exec.ExitCode
		fillFromDoc(&v, caseCfg, doc)
		return v
	}

	v := model.Verdict{Status: model.NormalizeStatus(doc.Status)}
	fillFromDoc(&v, caseCfg, doc)

	switch v.Status {
	case model.StatusSuccess:
		if doc.Match != nil {
			match := *doc.Match
			v.Match = &match
		}
	case model.StatusWrongAnswer:
		match := false
		v.Match = &match
	default:
		v.Match = nil
	}
	return v
}

func decodeResult(resultData []byte, downloadErr error) (*codec.ResultDoc, error) {
	if downloadErr != nil {
		return nil, downloadErr
	}
	return codec.DecodeResult(resultData)
}

// runPhaseReached infers from the result doc whether compilation completed
// before the kill.
func runPhaseReached(doc *codec.ResultDoc) bool {
	switch model.NormalizeStatus(doc.Status) {
	case model.StatusCompileError, model.StatusCompileTimeout:
		return false
	}
	return doc.CompileTimeMS > 0
}

func fillFromDoc(v *model.Verdict, caseCfg model.CaseConfig, doc *codec.ResultDoc) {
	if doc == nil {
		return
	}
	v.Stdout = doc.Stdout
	v.Stderr = doc.Stderr
	v.ExitCode = doc.ExitCode
	if doc.Error != "" && v.ErrorDetail == "" {
		v.ErrorDetail = doc.Error
	}
	switch model.NormalizeStatus(doc.Status) {
	case model.StatusCompileError, model.StatusCompileTimeout:
		v.CompileOutput = doc.Stderr
	}
	v.Metrics = model.Metrics{
		WallMS:      int64(doc.TimeMS),
		CompileMS:   int64(doc.CompileTimeMS),
		UserCPUS:    doc.CPUUtime,
		SysCPUS:     doc.CPUStime,
		MaxRSSBytes: int64(doc.MaxRSSMB * (1 << 20)),
		Recompiled:  doc.Recompiled,
	}

	if expected, err := codec.CanonicalizeValues(caseCfg, doc.Expected); err == nil {
		v.Expected = expected
	}
	if actual, err := codec.CanonicalizeValues(caseCfg, doc.Actual); err == nil {
		v.Actual = actual
	}
}
