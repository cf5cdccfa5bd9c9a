package model

// Status is the canonical outcome taxonomy.
type Status string

const (
	StatusSuccess        Status = "SUCCESS"
	StatusWrongAnswer    Status = "WRONG_ANSWER"
	StatusCompileError   Status = "COMPILE_ERROR"
	StatusCompileTimeout Status = "COMPILE_TIMEOUT"
	StatusRuntimeError   Status = "RUNTIME_ERROR"
	StatusTimeout        Status = "TIMEOUT"
	StatusInternalError  Status = "INTERNAL_ERROR"
)

// NormalizeStatus maps legacy synonyms onto the closed status set. Unknown
// statuses collapse to INTERNAL_ERROR so a verdict is always total.
func NormalizeStatus(raw string) Status {
	switch Status(raw) {
	case StatusSuccess, StatusWrongAnswer, StatusCompileError,
		StatusCompileTimeout, StatusRuntimeError, StatusTimeout,
		StatusInternalError:
		return Status(raw)
	}
	switch raw {
	case "ERROR":
		return StatusInternalError
	case "TIMEOUT_ERROR":
		return StatusTimeout
	}
	return StatusInternalError
}

// Metrics carries the per-evaluation telemetry.
type Metrics struct {
	WallMS      int64   `json:"wall_ms"`
	CompileMS   int64   `json:"compile_ms"`
	UserCPUS    float64 `json:"user_cpu_s"`
	SysCPUS     float64 `json:"sys_cpu_s"`
	MaxRSSBytes int64   `json:"max_rss_bytes"`
	Recompiled  bool    `json:"recompiled,omitempty"`
}

// Verdict is the canonical outcome record for one evaluation.
type Verdict struct {
	Status        Status                 `json:"status"`
	Match         *bool                  `json:"match,omitempty"`
	Expected      map[string]interface{} `json:"expected,omitempty"`
	Actual        map[string]interface{} `json:"actual,omitempty"`
	Stdout        string                 `json:"stdout,omitempty"`
	Stderr        string                 `json:"stderr,omitempty"`
	CompileOutput string                 `json:"compile_output,omitempty"`
	ExitCode      int                    `json:"exit_code"`
	Metrics       Metrics                `json:"metrics"`
	ErrorDetail   string                 `json:"error_detail,omitempty"`
	// ConfigIndex is the position of the originating config in a batch.
	ConfigIndex int `json:"config_index,omitempty"`
}

// InternalVerdict builds an INTERNAL_ERROR verdict with a diagnostic detail.
func InternalVerdict(detail string) Verdict {
	return Verdict{Status: StatusInternalError, ErrorDetail: detail}
}
