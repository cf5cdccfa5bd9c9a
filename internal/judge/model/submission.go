package model

import (
	"time"

	appErr "judgemicro/pkg/errors"
)

const (
	// MaxSourceBytes is the request cap on user source size.
	MaxSourceBytes = 50000
	// MaxBatchSize is the request cap on batch length.
	MaxBatchSize = 100

	// ReturnValueKey is the reserved expected-map key for the solve return.
	ReturnValueKey = "return_value"
)

// Parameter is one ordered ⟨name, type, initial value⟩ triple.
type Parameter struct {
	Name       string      `json:"name"`
	Type       TypeTag     `json:"type"`
	InputValue interface{} `json:"input_value"`
}

// CompilerSettings selects the language standard and extra flags.
type CompilerSettings struct {
	Standard string `json:"standard,omitempty"`
	Flags    string `json:"flags,omitempty"`
}

// ResourceLimits bounds one evaluation. Zero fields take defaults.
type ResourceLimits struct {
	CompileTimeoutS   int     `json:"compile_timeout,omitempty"`
	ExecutionTimeoutS int     `json:"execution_timeout,omitempty"`
	MemoryBytes       int64   `json:"memory_bytes,omitempty"`
	CPUCores          float64 `json:"cpu_cores,omitempty"`
}

// Limit defaults and hard ceilings.
const (
	DefaultCompileTimeoutS   = 30
	DefaultExecutionTimeoutS = 10
	DefaultMemoryBytes       = 128 << 20
	DefaultCPUCores          = 1.0

	MaxCompileTimeoutS   = 300
	MaxExecutionTimeoutS = 60
	MaxMemoryBytes       = 1 << 30
	MaxCPUCores          = 4.0
)

// WithDefaults fills zero fields with the default limits.
func (r ResourceLimits) WithDefaults() ResourceLimits {
	if r.CompileTimeoutS <= 0 {
		r.CompileTimeoutS = DefaultCompileTimeoutS
	}
	if r.ExecutionTimeoutS <= 0 {
		r.ExecutionTimeoutS = DefaultExecutionTimeoutS
	}
	if r.MemoryBytes <= 0 {
		r.MemoryBytes = DefaultMemoryBytes
	}
	if r.CPUCores <= 0 {
		r.CPUCores = DefaultCPUCores
	}
	return r
}

// Validate rejects limits above the hard ceilings.
func (r ResourceLimits) Validate() error {
	if r.CompileTimeoutS > MaxCompileTimeoutS {
		return appErr.ConfigError(appErr.LimitsExceedCeiling, "compile_timeout", "above ceiling")
	}
	if r.ExecutionTimeoutS > MaxExecutionTimeoutS {
		return appErr.ConfigError(appErr.LimitsExceedCeiling, "execution_timeout", "above ceiling")
	}
	if r.MemoryBytes > MaxMemoryBytes {
		return appErr.ConfigError(appErr.LimitsExceedCeiling, "memory_bytes", "above ceiling")
	}
	if r.CPUCores > MaxCPUCores {
		return appErr.ConfigError(appErr.LimitsExceedCeiling, "cpu_cores", "above ceiling")
	}
	return nil
}

// CompileTimeout returns the compile deadline as a duration.
func (r ResourceLimits) CompileTimeout() time.Duration {
	return time.Duration(r.CompileTimeoutS) * time.Second
}

// ExecutionTimeout returns the run deadline as a duration.
func (r ResourceLimits) ExecutionTimeout() time.Duration {
	return time.Duration(r.ExecutionTimeoutS) * time.Second
}

// CaseConfig is the per-test half of a submission: parameters, expectations
// and compiler selection. In optimized batch mode many case configs share one
// source.
type CaseConfig struct {
	Params       []Parameter            `json:"solve_params"`
	Expected     map[string]interface{} `json:"expected"`
	FunctionType TypeTag                `json:"function_type"`
	Compiler     *CompilerSettings      `json:"compiler_settings,omitempty"`
}

// Submission is one immutable evaluation request.
type Submission struct {
	Language   Language        `json:"language"`
	SourceCode string          `json:"user_code"`
	Case       CaseConfig      `json:"case"`
	Limits     *ResourceLimits `json:"resource_limits,omitempty"`
	Verbose    bool            `json:"show_logs,omitempty"`
}

// EffectiveLimits resolves the submission limits with defaults applied.
func (s Submission) EffectiveLimits() ResourceLimits {
	var limits ResourceLimits
	if s.Limits != nil {
		limits = *s.Limits
	}
	return limits.WithDefaults()
}

// EffectiveCompiler resolves the compiler settings with defaults applied.
func (c CaseConfig) EffectiveCompiler(lang Language) CompilerSettings {
	defaults := DefaultCompilerSettings(lang)
	if c.Compiler == nil {
		return defaults
	}
	settings := *c.Compiler
	if settings.Standard == "" {
		settings.Standard = defaults.Standard
	}
	if settings.Flags == "" {
		settings.Flags = defaults.Flags
	}
	return settings
}

// ValidateSubmission checks everything rejectable before sandbox acquisition.
func ValidateSubmission(s Submission) error {
	if !s.Language.Valid() {
		return appErr.ConfigError(appErr.LanguageNotSupported, "language", string(s.Language))
	}
	if s.SourceCode == "" {
		return appErr.ConfigError(appErr.ConfigInvalid, "user_code", "required")
	}
	if len(s.SourceCode) > MaxSourceBytes {
		return appErr.ConfigError(appErr.SourceTooLarge, "user_code", "exceeds 50000 bytes")
	}
	if err := ValidateCase(s.Language, s.Case); err != nil {
		return err
	}
	if s.Limits != nil {
		if err := s.Limits.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ValidateCase checks one case config against the closed type sets.
func ValidateCase(lang Language, c CaseConfig) error {
	if c.FunctionType == "" {
		return appErr.ConfigError(appErr.ConfigInvalid, "function_type", "required")
	}
	if !ValidFunctionType(c.FunctionType) {
		return appErr.ConfigError(appErr.UnknownTypeTag, "function_type", string(c.FunctionType))
	}
	seen := make(map[string]bool, len(c.Params))
	for _, p := range c.Params {
		if p.Name == "" {
			return appErr.ConfigError(appErr.ConfigInvalid, "solve_params.name", "required")
		}
		if seen[p.Name] {
			return appErr.ConfigError(appErr.DuplicateParameterName, "solve_params.name", p.Name)
		}
		seen[p.Name] = true
		if !ValidParameterType(p.Type) {
			return appErr.ConfigError(appErr.UnknownTypeTag, p.Name, string(p.Type))
		}
	}
	for key := range c.Expected {
		if key == ReturnValueKey {
			if c.FunctionType == TypeVoid {
				return appErr.ConfigError(appErr.UnknownExpectedKey, key, "function type is void")
			}
			continue
		}
		if !seen[key] {
			return appErr.ConfigError(appErr.UnknownExpectedKey, key, "no such parameter")
		}
	}
	if c.Compiler != nil && c.Compiler.Standard != "" && !ValidStandard(lang, c.Compiler.Standard) {
		return appErr.ConfigError(appErr.InvalidStandard, "compiler_settings.standard", c.Compiler.Standard)
	}
	return nil
}
