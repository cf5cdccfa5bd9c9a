// Package service is the judge facade: it fronts the orchestrator with
// verdict caching, event publishing and service metadata.
package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"judgemicro/internal/judge/cache"
	"judgemicro/internal/judge/events"
	"judgemicro/internal/judge/metrics"
	"judgemicro/internal/judge/model"
	"judgemicro/internal/judge/orchestrator"
	"judgemicro/pkg/utils/logger"
)

// JudgeService wires the evaluate pipelines to their supporting
// infrastructure. Cache and publisher may be nil; both degrade to no-ops.
type JudgeService struct {
	orch      *orchestrator.Orchestrator
	cache     *cache.VerdictCache
	publisher *events.Publisher
}

// NewJudgeService builds the facade.
func NewJudgeService(orch *orchestrator.Orchestrator, verdictCache *cache.VerdictCache, publisher *events.Publisher) *JudgeService {
	return &JudgeService{orch: orch, cache: verdictCache, publisher: publisher}
}

// BatchSummary aggregates one batch response.
type BatchSummary struct {
	Total      int                  `json:"total"`
	ByStatus   map[model.Status]int `json:"by_status"`
	Matched    int                  `json:"matched"`
	Recompiles int                  `json:"recompiles"`
	WallMS     int64                `json:"wall_ms"`
}

func summarize(verdicts []model.Verdict, wall time.Duration) BatchSummary {
	s := BatchSummary{
		Total:    len(verdicts),
		ByStatus: make(map[model.Status]int),
		WallMS:   wall.Milliseconds(),
	}
	for _, v := range verdicts {
		s.ByStatus[v.Status]++
		if v.Match != nil && *v.Match {
			s.Matched++
		}
		if v.Metrics.Recompiled {
			s.Recompiles++
		}
	}
	return s
}

// Evaluate judges one submission, consulting the verdict cache first.
func (s *JudgeService) Evaluate(ctx context.Context, sub model.Submission) (model.Verdict, error) {
	if v, ok, err := s.cache.Get(ctx, sub); err == nil && ok {
		metrics.ObserveCache(true)
		return v, nil
	} else if err != nil {
		logger.Warn(ctx, "verdict cache get failed", zap.Error(err))
	} else {
		metrics.ObserveCache(false)
	}

	v, err := s.orch.Evaluate(ctx, sub)
	if err != nil {
		return v, err
	}
	if err := s.cache.Put(ctx, sub, v); err != nil {
		logger.Warn(ctx, "verdict cache put failed", zap.Error(err))
	}
	_ = s.publisher.PublishVerdict(ctx, sub.Language, v)
	return v, nil
}

// EvaluateBatch judges independent submissions; verdict order matches input
// order.
func (s *JudgeService) EvaluateBatch(ctx context.Context, subs []model.Submission) ([]model.Verdict, BatchSummary, error) {
	start := time.Now()
	verdicts, err := s.orch.EvaluateBatch(ctx, subs)
	if err != nil {
		return nil, BatchSummary{}, err
	}
	for i, v := range verdicts {
		_ = s.publisher.PublishVerdict(ctx, subs[i].Language, v)
	}
	return verdicts, summarize(verdicts, time.Since(start)), nil
}

// EvaluateOptimizedBatch judges many case configs against one source with a
// single sandbox and a shared compile.
func (s *JudgeService) EvaluateOptimizedBatch(ctx context.Context, lang model.Language, source string, cases []model.CaseConfig, limits *model.ResourceLimits) ([]model.Verdict, BatchSummary, error) {
	start := time.Now()
	verdicts, err := s.orch.EvaluateOptimizedBatch(ctx, lang, source, cases, limits)
	if err != nil {
		return nil, BatchSummary{}, err
	}
	for _, v := range verdicts {
		_ = s.publisher.PublishVerdict(ctx, lang, v)
	}
	return verdicts, summarize(verdicts, time.Since(start)), nil
}

// LanguageInfo describes one supported language.
type LanguageInfo struct {
	Language        model.Language         `json:"language"`
	SourceFile      string                 `json:"source_file"`
	Standards       []string               `json:"standards"`
	DefaultCompiler model.CompilerSettings `json:"default_compiler"`
}

// Languages lists the supported languages and their compiler metadata.
func (s *JudgeService) Languages() []LanguageInfo {
	langs := []model.Language{model.LanguageC, model.LanguageCPP}
	out := make([]LanguageInfo, 0, len(langs))
	for _, l := range langs {
		out = append(out, LanguageInfo{
			Language:        l,
			SourceFile:      l.SourceFileName(),
			Standards:       model.Standards[l],
			DefaultCompiler: model.DefaultCompilerSettings(l),
		})
	}
	return out
}

// LimitsInfo documents the default and maximum resource limits.
type LimitsInfo struct {
	Defaults model.ResourceLimits `json:"defaults"`
	Maximums model.ResourceLimits `json:"maximums"`
	Caps     struct {
		SourceBytes int `json:"source_bytes"`
		BatchSize   int `json:"batch_size"`
	} `json:"caps"`
}

// Limits returns the resource limit envelope.
func (s *JudgeService) Limits() LimitsInfo {
	info := LimitsInfo{
		Defaults: model.ResourceLimits{}.WithDefaults(),
		Maximums: model.ResourceLimits{
			CompileTimeoutS:   model.MaxCompileTimeoutS,
			ExecutionTimeoutS: model.MaxExecutionTimeoutS,
			MemoryBytes:       model.MaxMemoryBytes,
			CPUCores:          model.MaxCPUCores,
		},
	}
	info.Caps.SourceBytes = model.MaxSourceBytes
	info.Caps.BatchSize = model.MaxBatchSize
	return info
}

// canary is a minimal C submission used to probe the full pipeline.
var canary = model.Submission{
	Language:   model.LanguageC,
	SourceCode: "int solve(int *a) { *a = *a * 2; return 0; }",
	Case: model.CaseConfig{
		Params:       []model.Parameter{{Name: "a", Type: model.TypeInt, InputValue: int64(21)}},
		Expected:     map[string]interface{}{"a": int64(42), model.ReturnValueKey: int64(0)},
		FunctionType: model.TypeInt,
	},
	Limits: &model.ResourceLimits{CompileTimeoutS: 20, ExecutionTimeoutS: 5},
}

// HealthReport is the health endpoint payload.
type HealthReport struct {
	Status  string       `json:"status"`
	Canary  model.Status `json:"canary,omitempty"`
	WallMS  int64        `json:"wall_ms,omitempty"`
	Message string       `json:"message,omitempty"`
}

// Health probes liveness. With deep=true it pushes a canary submission
// through the full pipeline.
func (s *JudgeService) Health(ctx context.Context, deep bool) HealthReport {
	if !deep {
		return HealthReport{Status: "ok"}
	}
	start := time.Now()
	v, err := s.orch.Evaluate(ctx, canary)
	report := HealthReport{WallMS: time.Since(start).Milliseconds()}
	if err != nil {
		report.Status = "degraded"
		report.Message = err.Error()
		return report
	}
	report.Canary = v.Status
	if v.Status == model.StatusSuccess && v.Match != nil && *v.Match {
		report.Status = "ok"
	} else {
		report.Status = "degraded"
		report.Message = v.ErrorDetail
	}
	return report
}
