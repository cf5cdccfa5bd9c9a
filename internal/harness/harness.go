package harness

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"judgemicro/internal/judge/codec"
	"judgemicro/internal/judge/model"
)

// Exit codes of the harness binary.
const (
	ExitRunPath        = 0 // SUCCESS or WRONG_ANSWER, result doc complete
	ExitCompileFailure = 1
	ExitRunFailure     = 2
	ExitInternal       = 3
)

// Options configures one harness invocation.
type Options struct {
	ConfigPath string
	OutPath    string
	// WorkDir holds user source, generated driver and binary. Defaults to
	// the config file's directory.
	WorkDir string
	// Reuse skips codegen and compilation when the binary next to the
	// config carries a matching schema fingerprint.
	Reuse bool
}

// Run executes the full judge pipeline for one config and returns the process
// exit code. A result document is written in every path, including internal
// failures.
func Run(ctx context.Context, opts Options) int {
	res := &codec.ResultDoc{Status: string(model.StatusInternalError)}

	workDir := opts.WorkDir
	if workDir == "" {
		workDir = filepath.Dir(opts.ConfigPath)
	}

	fail := func(status model.Status, detail string, exit int) int {
		res.Status = string(status)
		if detail != "" {
			res.Error = detail
		}
		writeResult(opts.OutPath, res)
		return exit
	}

	raw, err := os.ReadFile(opts.ConfigPath)
	if err != nil {
		return fail(model.StatusInternalError, err.Error(), ExitInternal)
	}
	doc, err := codec.DecodeConfig(raw)
	if err != nil {
		return fail(model.StatusInternalError, err.Error(), ExitInternal)
	}

	params, err := EncodeParams(doc.Params)
	if err != nil {
		return fail(model.StatusInternalError, err.Error(), ExitInternal)
	}
	if err := os.WriteFile(filepath.Join(workDir, ParamsFileName), params, 0644); err != nil {
		return fail(model.StatusInternalError, err.Error(), ExitInternal)
	}

	fingerprint := SchemaFingerprint(doc)
	schemaPath := filepath.Join(workDir, SchemaFileName)
	reused := opts.Reuse && fingerprintMatches(workDir, schemaPath, fingerprint)

	if !reused {
		driverFile, src, err := GenerateDriver(doc)
		if err != nil {
			return fail(model.StatusInternalError, err.Error(), ExitInternal)
		}
		if err := os.WriteFile(filepath.Join(workDir, driverFile), src, 0644); err != nil {
			return fail(model.StatusInternalError, err.Error(), ExitInternal)
		}

		cres, err := compile(ctx, workDir, doc, driverFile)
		if err != nil {
			return fail(model.StatusInternalError, err.Error(), ExitInternal)
		}
		res.CompileTimeMS = millis(cres.Wall)
		if cres.TimedOut {
			res.Stderr = cres.Stderr
			return fail(model.StatusCompileTimeout, "compile deadline exceeded", ExitCompileFailure)
		}
		if cres.ExitCode != 0 {
			res.Stderr = cres.Stderr
			res.ExitCode = cres.ExitCode
			return fail(model.StatusCompileError, "", ExitCompileFailure)
		}
		if err := os.WriteFile(schemaPath, []byte(fingerprint), 0644); err != nil {
			return fail(model.StatusInternalError, err.Error(), ExitInternal)
		}
		res.Recompiled = opts.Reuse
	}

	rres, err := runCommand(ctx, workDir, doc.Limits.ExecutionTimeout(), "./"+RunnerFileName)
	if err != nil {
		return fail(model.StatusInternalError, err.Error(), ExitInternal)
	}
	res.Stdout = rres.Stdout
	res.Stderr = rres.Stderr
	res.ExitCode = rres.ExitCode
	res.TimeMS = millis(rres.Wall)
	res.CPUUtime = rres.UserCPU
	res.CPUStime = rres.SysCPU
	res.MaxRSSMB = float64(rres.MaxRSSKB) / 1024

	if rres.TimedOut {
		return fail(model.StatusTimeout, "execution deadline exceeded", ExitRunFailure)
	}
	if rres.ExitCode != 0 {
		return fail(model.StatusRuntimeError, "", ExitRunFailure)
	}

	actual, err := ParseActual(doc, rres.Stdout)
	if err != nil {
		return fail(model.StatusInternalError, err.Error(), ExitInternal)
	}
	res.Actual = rawValues(doc, actual)

	res.Status = string(model.StatusSuccess)
	if len(doc.Expected) > 0 {
		res.Expected = rawValues(doc, doc.Expected)
		match := Compare(doc, actual)
		res.Match = &match
		if !match {
			res.Status = string(model.StatusWrongAnswer)
		}
	}
	writeResult(opts.OutPath, res)
	return ExitRunPath
}

func fingerprintMatches(workDir, schemaPath, fingerprint string) bool {
	prev, err := os.ReadFile(schemaPath)
	if err != nil || strings.TrimSpace(string(prev)) != fingerprint {
		return false
	}
	_, err = os.Stat(filepath.Join(workDir, RunnerFileName))
	return err == nil
}

func rawValues(doc *codec.Document, vals map[string]interface{}) map[string]json.RawMessage {
	paramType := make(map[string]model.TypeTag, len(doc.Params))
	for _, p := range doc.Params {
		paramType[p.Name] = p.Type
	}
	out := make(map[string]json.RawMessage, len(vals))
	for key, v := range vals {
		t := doc.FunctionType
		if key != model.ReturnValueKey {
			t = paramType[key]
		}
		lit, err := codec.MarshalLiteral(t, v)
		if err != nil {
			continue
		}
		out[key] = lit
	}
	return out
}

func writeResult(path string, doc *codec.ResultDoc) {
	data, err := codec.EncodeResult(doc)
	if err != nil {
		fmt.Fprintf(os.Stderr, "encode result: %v\n", err)
		return
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "write result: %v\n", err)
	}
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
