package controller_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"judgemicro/internal/judge/controller"
	"judgemicro/internal/judge/model"
	"judgemicro/internal/judge/orchestrator"
	"judgemicro/internal/judge/sandbox"
	"judgemicro/internal/judge/service"
	appErr "judgemicro/pkg/errors"
)

// stubManager hands out one sandbox and answers every exec with a canned
// result document.
type stubManager struct {
	result   string
	acquired int
	released int
}

func (m *stubManager) Acquire(ctx context.Context, lang model.Language, limits model.ResourceLimits) (*sandbox.Handle, error) {
	m.acquired++
	return &sandbox.Handle{ID: "stub", Language: lang}, nil
}

func (m *stubManager) Upload(ctx context.Context, h *sandbox.Handle, name string, data []byte) error {
	return nil
}

func (m *stubManager) Exec(ctx context.Context, h *sandbox.Handle, cmd []string, deadline time.Duration) (sandbox.ExecResult, error) {
	return sandbox.ExecResult{ExitCode: 0}, nil
}

func (m *stubManager) Download(ctx context.Context, h *sandbox.Handle, path string) ([]byte, error) {
	return []byte(m.result), nil
}

func (m *stubManager) Release(ctx context.Context, h *sandbox.Handle) error {
	m.released++
	return nil
}

func newTestRouter(mgr sandbox.Manager) *gin.Engine {
	gin.SetMode(gin.TestMode)
	orch := orchestrator.New(mgr, orchestrator.Config{})
	svc := service.NewJudgeService(orch, nil, nil)
	r := gin.New()
	controller.NewJudgeController(svc).RegisterRoutes(r)
	return r
}

type envelope struct {
	Code    appErr.ErrorCode `json:"code"`
	Message string           `json:"message"`
	Data    json.RawMessage  `json:"data"`
}

func doRequest(t *testing.T, r *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("response not an envelope: %v\n%s", err, w.Body.String())
	}
	return w, env
}

func validSubmission() model.Submission {
	return model.Submission{
		Language:   model.LanguageC,
		SourceCode: "int solve(int *a) { *a = *a * 2; return 0; }",
		Case: model.CaseConfig{
			Params:       []model.Parameter{{Name: "a", Type: model.TypeInt, InputValue: 21}},
			Expected:     map[string]interface{}{"a": 42, "return_value": 0},
			FunctionType: model.TypeInt,
		},
	}
}

func TestSubmitSuccess(t *testing.T) {
	mgr := &stubManager{result: `{
		"status": "SUCCESS",
		"exit_code": 0,
		"compile_time_ms": 412,
		"time_ms": 3,
		"expected": {"a": 42, "return_value": 0},
		"actual": {"a": 42, "return_value": 0},
		"match": true
	}`}
	r := newTestRouter(mgr)

	w, env := doRequest(t, r, http.MethodPost, "/judge/submit", validSubmission())
	if w.Code != http.StatusOK || env.Code != appErr.Success {
		t.Fatalf("status=%d code=%d body=%s", w.Code, env.Code, w.Body.String())
	}

	var v model.Verdict
	if err := json.Unmarshal(env.Data, &v); err != nil {
		t.Fatalf("decode verdict: %v", err)
	}
	if v.Status != model.StatusSuccess || v.Match == nil || !*v.Match {
		t.Fatalf("verdict = %+v", v)
	}
	if mgr.acquired != 1 || mgr.released != 1 {
		t.Fatalf("sandbox accounting: acquired=%d released=%d", mgr.acquired, mgr.released)
	}
}

func TestSubmitRejectsUnknownTypeBeforeAcquire(t *testing.T) {
	mgr := &stubManager{}
	r := newTestRouter(mgr)

	sub := validSubmission()
	sub.Case.Params[0].Type = "quaternion"
	w, env := doRequest(t, r, http.MethodPost, "/judge/submit", sub)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if env.Code != appErr.UnknownTypeTag {
		t.Fatalf("code = %d, want %d", env.Code, appErr.UnknownTypeTag)
	}
	if mgr.acquired != 0 {
		t.Fatal("invalid submission must be rejected before a sandbox is acquired")
	}
}

func TestSubmitMalformedBody(t *testing.T) {
	r := newTestRouter(&stubManager{})
	req := httptest.NewRequest(http.MethodPost, "/judge/submit", bytes.NewBufferString("{not json"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestOptimizedBatchRejectsEmptyConfigs(t *testing.T) {
	mgr := &stubManager{}
	r := newTestRouter(mgr)

	req := map[string]interface{}{
		"language":  "c",
		"user_code": "int solve(void) { return 0; }",
		"configs":   []interface{}{},
	}
	w, env := doRequest(t, r, http.MethodPost, "/judge/optimized-batch", req)
	if w.Code != http.StatusBadRequest || env.Code != appErr.EmptyBatch {
		t.Fatalf("status=%d code=%d", w.Code, env.Code)
	}
	if mgr.acquired != 0 {
		t.Fatal("empty batch must not acquire a sandbox")
	}
}

func TestLanguagesEndpoint(t *testing.T) {
	r := newTestRouter(&stubManager{})
	w, env := doRequest(t, r, http.MethodGet, "/judge/languages", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var infos []service.LanguageInfo
	if err := json.Unmarshal(env.Data, &infos); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(infos) != 2 || infos[0].Language != model.LanguageC || infos[1].Language != model.LanguageCPP {
		t.Fatalf("languages = %+v", infos)
	}
}

func TestLimitsEndpoint(t *testing.T) {
	r := newTestRouter(&stubManager{})
	w, env := doRequest(t, r, http.MethodGet, "/judge/limits", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var info service.LimitsInfo
	if err := json.Unmarshal(env.Data, &info); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if info.Defaults.CompileTimeoutS != model.DefaultCompileTimeoutS {
		t.Fatalf("defaults = %+v", info.Defaults)
	}
	if info.Maximums.ExecutionTimeoutS != model.MaxExecutionTimeoutS {
		t.Fatalf("maximums = %+v", info.Maximums)
	}
	if info.Caps.BatchSize != model.MaxBatchSize {
		t.Fatalf("caps = %+v", info.Caps)
	}
}

func TestHealthShallow(t *testing.T) {
	mgr := &stubManager{}
	r := newTestRouter(mgr)
	w, env := doRequest(t, r, http.MethodGet, "/judge/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var report service.HealthReport
	if err := json.Unmarshal(env.Data, &report); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if report.Status != "ok" {
		t.Fatalf("report = %+v", report)
	}
	if mgr.acquired != 0 {
		t.Fatal("shallow health must not touch the sandbox")
	}
}

func TestExampleEndpoints(t *testing.T) {
	r := newTestRouter(&stubManager{})
	for _, path := range []string{
		"/judge/examples/c",
		"/judge/examples/cpp",
		"/judge/examples/advanced",
		"/judge/examples/error",
	} {
		w, env := doRequest(t, r, http.MethodGet, path, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("%s: status = %d", path, w.Code)
		}
		var doc struct {
			Description string          `json:"description"`
			Example     json.RawMessage `json:"example"`
		}
		if err := json.Unmarshal(env.Data, &doc); err != nil {
			t.Fatalf("%s: decode: %v", path, err)
		}
		if doc.Description == "" || len(doc.Example) == 0 {
			t.Fatalf("%s: incomplete example doc: %s", path, env.Data)
		}
	}
}
