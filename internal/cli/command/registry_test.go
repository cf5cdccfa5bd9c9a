package command_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"judgemicro/internal/cli/command"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s failed: %v", name, err)
	}
	return path
}

func TestBuildSubmitWithFiles(t *testing.T) {
	dir := t.TempDir()
	sourcePath := writeFile(t, dir, "solve.c", "int solve(int *a){*a=2;return 0;}")
	casePath := writeFile(t, dir, "case.json", `{"solve_params":[{"name":"a","type":"int","input_value":1}],"expected":{"a":2},"function_type":"int"}`)

	cmd := command.Registry()["judge submit"]
	params := command.Params{}
	params.Set("language", "c")
	params.Set("source_file", sourcePath)
	params.Set("source_code", "_file_")
	params.Set("case_file", casePath)
	params.Set("case_json", "_file_")
	params.Set("execution_timeout", "5")

	req, err := command.BuildRequest(cmd, params)
	if err != nil {
		t.Fatalf("build request failed: %v", err)
	}
	if req.Method != "POST" || req.Path != "/api/v1/judge/submit" {
		t.Fatalf("request = %s %s", req.Method, req.Path)
	}

	var payload map[string]json.RawMessage
	if err := json.Unmarshal(req.Body, &payload); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	var source string
	if err := json.Unmarshal(payload["user_code"], &source); err != nil || source != "int solve(int *a){*a=2;return 0;}" {
		t.Fatalf("user_code = %s", payload["user_code"])
	}
	if !json.Valid(payload["case"]) {
		t.Fatal("case should be valid json")
	}
	var limits map[string]int
	if err := json.Unmarshal(payload["resource_limits"], &limits); err != nil || limits["execution_timeout"] != 5 {
		t.Fatalf("resource_limits = %s", payload["resource_limits"])
	}
}

func TestBuildOptimizedBatch(t *testing.T) {
	cmd := command.Registry()["judge optimized"]
	params := command.Params{}
	params.Set("language", "cpp")
	params.Set("source_code", "int solve(int &a){a=1;return 0;}")
	params.Set("configs_json", `[{"solve_params":[],"expected":{},"function_type":"int"}]`)

	req, err := command.BuildRequest(cmd, params)
	if err != nil {
		t.Fatalf("build request failed: %v", err)
	}
	if req.Path != "/api/v1/judge/optimized-batch" {
		t.Fatalf("path = %s", req.Path)
	}
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(req.Body, &payload); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	if _, ok := payload["resource_limits"]; ok {
		t.Fatal("resource_limits should be omitted when not given")
	}
}

func TestBuildExamplePath(t *testing.T) {
	cmd := command.Registry()["judge example"]
	params := command.Params{}
	params.Set("kind", "advanced")
	req, err := command.BuildRequest(cmd, params)
	if err != nil {
		t.Fatalf("build request failed: %v", err)
	}
	if req.Path != "/api/v1/judge/examples/advanced" {
		t.Fatalf("path = %s", req.Path)
	}
}

func TestBuildHealthDeepQuery(t *testing.T) {
	cmd := command.Registry()["judge health"]

	req, err := command.BuildRequest(cmd, command.Params{})
	if err != nil {
		t.Fatalf("build request failed: %v", err)
	}
	if req.Path != "/api/v1/judge/health" {
		t.Fatalf("path = %s", req.Path)
	}

	params := command.Params{}
	params.Set("deep", "true")
	req, err = command.BuildRequest(cmd, params)
	if err != nil {
		t.Fatalf("build request failed: %v", err)
	}
	if req.Path != "/api/v1/judge/health?deep=true" {
		t.Fatalf("path = %s", req.Path)
	}
}
