package controller

import (
	"github.com/gin-gonic/gin"

	"judgemicro/internal/judge/model"
	"judgemicro/pkg/utils/response"
)

// exampleDoc is the payload of the documentation endpoints under
// /judge/examples.
type exampleDoc struct {
	Description     string      `json:"description"`
	Example         interface{} `json:"example"`
	ResponseExample interface{} `json:"response_example,omitempty"`
}

func successResponseExample() model.Verdict {
	match := true
	return model.Verdict{
		Status: model.StatusSuccess,
		Match:  &match,
		Expected: map[string]interface{}{
			"a": int64(30), "b": int64(60), model.ReturnValueKey: int64(0),
		},
		Actual: map[string]interface{}{
			"a": int64(30), "b": int64(60), model.ReturnValueKey: int64(0),
		},
		Metrics: model.Metrics{WallMS: 3, CompileMS: 412, MaxRSSBytes: 2 << 20},
	}
}

// ExampleC documents a minimal C submission.
func (h *JudgeController) ExampleC(c *gin.Context) {
	response.Success(c, exampleDoc{
		Description: "C judge request: solve receives each parameter as a pointer and mutates it in place",
		Example: model.Submission{
			Language: model.LanguageC,
			SourceCode: "int solve(int *a, int *b) {\n" +
				"    *a = *a * 10;\n" +
				"    *b = *b + 50;\n" +
				"    return 0;\n" +
				"}\n",
			Case: model.CaseConfig{
				Params: []model.Parameter{
					{Name: "a", Type: model.TypeInt, InputValue: int64(3)},
					{Name: "b", Type: model.TypeInt, InputValue: int64(10)},
				},
				Expected: map[string]interface{}{
					"a": int64(30), "b": int64(60), model.ReturnValueKey: int64(0),
				},
				FunctionType: model.TypeInt,
			},
		},
		ResponseExample: successResponseExample(),
	})
}

// ExampleCPP documents a minimal C++ submission.
func (h *JudgeController) ExampleCPP(c *gin.Context) {
	response.Success(c, exampleDoc{
		Description: "C++ judge request: solve receives each parameter by reference",
		Example: model.Submission{
			Language: model.LanguageCPP,
			SourceCode: "int solve(int &a, int &b) {\n" +
				"    a = a * 10;\n" +
				"    b = b + 50;\n" +
				"    return 0;\n" +
				"}\n",
			Case: model.CaseConfig{
				Params: []model.Parameter{
					{Name: "a", Type: model.TypeInt, InputValue: int64(3)},
					{Name: "b", Type: model.TypeInt, InputValue: int64(10)},
				},
				Expected: map[string]interface{}{
					"a": int64(30), "b": int64(60), model.ReturnValueKey: int64(0),
				},
				FunctionType: model.TypeInt,
				Compiler:     &model.CompilerSettings{Standard: "cpp17"},
			},
		},
		ResponseExample: successResponseExample(),
	})
}

// ExampleAdvanced documents a C++ submission with vector parameters and an
// optimized batch request reusing one compile across configs.
func (h *JudgeController) ExampleAdvanced(c *gin.Context) {
	source := "int solve(std::vector<int> &nums, std::string &label) {\n" +
		"    int sum = 0;\n" +
		"    for (int n : nums) sum += n;\n" +
		"    nums.push_back(sum);\n" +
		"    label = \"summed\";\n" +
		"    return sum;\n" +
		"}\n"
	makeCase := func(nums []interface{}, sum int64) model.CaseConfig {
		return model.CaseConfig{
			Params: []model.Parameter{
				{Name: "nums", Type: model.TypeVectorInt, InputValue: nums},
				{Name: "label", Type: model.TypeString, InputValue: "pending"},
			},
			Expected: map[string]interface{}{
				"nums":               append(append([]interface{}{}, nums...), sum),
				"label":              "summed",
				model.ReturnValueKey: sum,
			},
			FunctionType: model.TypeInt,
		}
	}
	response.Success(c, exampleDoc{
		Description: "C++ vector mutation, and the optimized batch form that compiles the source once for every config",
		Example: gin.H{
			"submit": model.Submission{
				Language:   model.LanguageCPP,
				SourceCode: source,
				Case:       makeCase([]interface{}{int64(1), int64(2), int64(3)}, 6),
			},
			"optimized_batch": optimizedBatchRequest{
				Language:   model.LanguageCPP,
				SourceCode: source,
				Configs: []model.CaseConfig{
					makeCase([]interface{}{int64(1), int64(2), int64(3)}, 6),
					makeCase([]interface{}{int64(10), int64(20)}, 30),
				},
				Limits: &model.ResourceLimits{ExecutionTimeoutS: 5},
			},
		},
		ResponseExample: successResponseExample(),
	})
}

// ExampleError documents a compile-failure verdict.
func (h *JudgeController) ExampleError(c *gin.Context) {
	response.Success(c, exampleDoc{
		Description: "Compilation error verdict: the compiler output is returned verbatim and no match is reported",
		Example: model.Verdict{
			Status:        model.StatusCompileError,
			CompileOutput: "user.c: In function 'solve':\nuser.c:2:5: error: expected ';' before 'return'",
			Metrics:       model.Metrics{CompileMS: 380},
		},
	})
}
