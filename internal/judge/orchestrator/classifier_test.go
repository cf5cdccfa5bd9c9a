package orchestrator_test

import (
	"testing"

	"judgemicro/internal/judge/model"
	"judgemicro/internal/judge/orchestrator"
	"judgemicro/internal/judge/sandbox"
)

func classifyCase() model.CaseConfig {
	return model.CaseConfig{
		Params:       []model.Parameter{{Name: "a", Type: model.TypeInt, InputValue: int64(3)}},
		Expected:     map[string]interface{}{"a": int64(6)},
		FunctionType: model.TypeInt,
	}
}

func TestClassifyKilledBeforeCompileFinished(t *testing.T) {
	v := orchestrator.Classify(classifyCase(), sandbox.ExecResult{Killed: true, ExitCode: 137}, nil, errNoResult)
	if v.Status != model.StatusCompileTimeout {
		t.Fatalf("status = %s, want COMPILE_TIMEOUT when the run phase was never reached", v.Status)
	}
}

func TestClassifyKilledAfterCompileFinished(t *testing.T) {
	doc := []byte(`{"status":"RUNTIME_ERROR","exit_code":0,"compile_time_ms":700,"time_ms":0,"cpu_utime":0,"cpu_stime":0,"maxrss_mb":0}`)
	v := orchestrator.Classify(classifyCase(), sandbox.ExecResult{Killed: true, ExitCode: 137}, doc, nil)
	if v.Status != model.StatusTimeout {
		t.Fatalf("status = %s, want TIMEOUT when compile completed before the kill", v.Status)
	}
}

func TestClassifyInternalExitCode(t *testing.T) {
	doc := []byte(`{"status":"SUCCESS","exit_code":0,"compile_time_ms":1,"time_ms":1,"cpu_utime":0,"cpu_stime":0,"maxrss_mb":0}`)
	v := orchestrator.Classify(classifyCase(), sandbox.ExecResult{ExitCode: 3}, doc, nil)
	if v.Status != model.StatusInternalError {
		t.Fatalf("status = %s, want INTERNAL_ERROR on harness exit >= 3", v.Status)
	}
}

func TestClassifyMalformedDoc(t *testing.T) {
	v := orchestrator.Classify(classifyCase(), sandbox.ExecResult{ExitCode: 0}, []byte("{"), nil)
	if v.Status != model.StatusInternalError {
		t.Fatalf("status = %s, want INTERNAL_ERROR on malformed result doc", v.Status)
	}
}

func TestClassifyNormalizesSynonyms(t *testing.T) {
	doc := []byte(`{"status":"TIMEOUT_ERROR","exit_code":-1,"compile_time_ms":5,"time_ms":999,"cpu_utime":0,"cpu_stime":0,"maxrss_mb":0}`)
	v := orchestrator.Classify(classifyCase(), sandbox.ExecResult{ExitCode: 2}, doc, nil)
	if v.Status != model.StatusTimeout {
		t.Fatalf("status = %s, want TIMEOUT for TIMEOUT_ERROR synonym", v.Status)
	}

	doc = []byte(`{"status":"ERROR","exit_code":5}`)
	v = orchestrator.Classify(classifyCase(), sandbox.ExecResult{ExitCode: 2}, doc, nil)
	if v.Status != model.StatusInternalError {
		t.Fatalf("status = %s, want INTERNAL_ERROR for ERROR synonym", v.Status)
	}
}

func TestClassifyMatchSemantics(t *testing.T) {
	wa := []byte(`{"status":"WRONG_ANSWER","exit_code":0,"compile_time_ms":5,"time_ms":1,"cpu_utime":0,"cpu_stime":0,"maxrss_mb":0,
		"expected":{"a":6},"actual":{"a":4},"match":false}`)
	v := orchestrator.Classify(classifyCase(), sandbox.ExecResult{ExitCode: 0}, wa, nil)
	if v.Status != model.StatusWrongAnswer {
		t.Fatalf("status = %s", v.Status)
	}
	if v.Match == nil || *v.Match {
		t.Fatal("WRONG_ANSWER must carry match=false")
	}
	if v.Expected["a"] != int64(6) || v.Actual["a"] != int64(4) {
		t.Fatalf("expected/actual not carried: %v / %v", v.Expected, v.Actual)
	}

	re := []byte(`{"status":"RUNTIME_ERROR","exit_code":139,"compile_time_ms":5,"time_ms":1,"cpu_utime":0,"cpu_stime":0,"maxrss_mb":0}`)
	v = orchestrator.Classify(classifyCase(), sandbox.ExecResult{ExitCode: 2}, re, nil)
	if v.Match != nil {
		t.Fatal("match must be undefined outside SUCCESS/WRONG_ANSWER")
	}
}

func TestClassifyCompileErrorCarriesCompilerOutput(t *testing.T) {
	doc := []byte(`{"status":"COMPILE_ERROR","exit_code":1,"stderr":"user.c:1:10: error: expected ';'","compile_time_ms":150,"time_ms":0,"cpu_utime":0,"cpu_stime":0,"maxrss_mb":0}`)
	v := orchestrator.Classify(classifyCase(), sandbox.ExecResult{ExitCode: 1}, doc, nil)
	if v.Status != model.StatusCompileError {
		t.Fatalf("status = %s", v.Status)
	}
	if v.CompileOutput == "" {
		t.Fatal("COMPILE_ERROR verdict must carry compile output")
	}
}

var errNoResult = errNoResultType{}

type errNoResultType struct{}

func (errNoResultType) Error() string { return "result.json not found" }
