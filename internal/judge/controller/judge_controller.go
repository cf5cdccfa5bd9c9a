package controller

import (
	"github.com/gin-gonic/gin"

	"judgemicro/internal/judge/model"
	"judgemicro/internal/judge/service"
	appErr "judgemicro/pkg/errors"
	"judgemicro/pkg/utils/response"
)

// JudgeController handles judge HTTP requests.
type JudgeController struct {
	svc *service.JudgeService
}

// NewJudgeController creates a new controller.
func NewJudgeController(svc *service.JudgeService) *JudgeController {
	return &JudgeController{svc: svc}
}

// RegisterRoutes mounts the judge API.
func (h *JudgeController) RegisterRoutes(r gin.IRouter) {
	judge := r.Group("/judge")
	judge.POST("/submit", h.Submit)
	judge.POST("/batch", h.Batch)
	judge.POST("/optimized-batch", h.OptimizedBatch)
	judge.GET("/languages", h.Languages)
	judge.GET("/limits", h.Limits)
	judge.GET("/health", h.Health)
	judge.GET("/examples/c", h.ExampleC)
	judge.GET("/examples/cpp", h.ExampleCPP)
	judge.GET("/examples/advanced", h.ExampleAdvanced)
	judge.GET("/examples/error", h.ExampleError)
}

// Submit judges one submission.
func (h *JudgeController) Submit(c *gin.Context) {
	var sub model.Submission
	if err := c.ShouldBindJSON(&sub); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	verdict, err := h.svc.Evaluate(c.Request.Context(), sub)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, verdict)
}

type batchRequest struct {
	Submissions []model.Submission `json:"submissions"`
}

type batchResponse struct {
	Verdicts []model.Verdict      `json:"verdicts"`
	Summary  service.BatchSummary `json:"summary"`
}

// Batch judges independent submissions in order.
func (h *JudgeController) Batch(c *gin.Context) {
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	verdicts, summary, err := h.svc.EvaluateBatch(c.Request.Context(), req.Submissions)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, batchResponse{Verdicts: verdicts, Summary: summary})
}

type optimizedBatchRequest struct {
	Language   model.Language        `json:"language"`
	SourceCode string                `json:"user_code"`
	Configs    []model.CaseConfig    `json:"configs"`
	Limits     *model.ResourceLimits `json:"resource_limits,omitempty"`
}

// OptimizedBatch judges many configs against one source, compiling once.
func (h *JudgeController) OptimizedBatch(c *gin.Context) {
	var req optimizedBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	verdicts, summary, err := h.svc.EvaluateOptimizedBatch(c.Request.Context(), req.Language, req.SourceCode, req.Configs, req.Limits)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, batchResponse{Verdicts: verdicts, Summary: summary})
}

// Languages lists supported languages.
func (h *JudgeController) Languages(c *gin.Context) {
	response.Success(c, h.svc.Languages())
}

// Limits returns the resource limit envelope.
func (h *JudgeController) Limits(c *gin.Context) {
	response.Success(c, h.svc.Limits())
}

// Health reports liveness; ?deep=true runs a canary submission through the
// full pipeline.
func (h *JudgeController) Health(c *gin.Context) {
	report := h.svc.Health(c.Request.Context(), c.Query("deep") == "true")
	if report.Status != "ok" {
		response.Error(c, appErr.New(appErr.ServiceUnavailable).
			WithMessage("judge pipeline degraded").
			WithDetail("report", report))
		return
	}
	response.Success(c, report)
}
