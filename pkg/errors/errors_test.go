package errors

import (
	stderrors "errors"
	"testing"
)

func TestErrorCode_Message(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want string
	}{
		{Success, "Success"},
		{InvalidParams, "Invalid parameters"},
		{ConfigInvalid, "Submission configuration is invalid"},
		{SandboxQueueFull, "Sandbox queue is full, please try again later"},
		{ResultDocMissing, "Harness result document is missing"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.code.Message(); got != tt.want {
				t.Errorf("Message() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestErrorCode_HTTPStatus(t *testing.T) {
	tests := []struct {
		code       ErrorCode
		wantStatus int
	}{
		{Success, 200},
		{InvalidParams, 400},
		{ConfigInvalid, 400},
		{UnknownTypeTag, 400},
		{LimitsExceedCeiling, 400},
		{EmptyBatch, 400},
		{NotFound, 404},
		{TooManyRequests, 429},
		{SandboxQueueFull, 429},
		{ServiceUnavailable, 503},
		{SandboxUnavailable, 503},
		{InternalServerError, 500},
		{JudgeSystemError, 500},
	}

	for _, tt := range tests {
		t.Run(tt.code.Message(), func(t *testing.T) {
			if got := tt.code.HTTPStatus(); got != tt.wantStatus {
				t.Errorf("HTTPStatus() = %v, want %v", got, tt.wantStatus)
			}
		})
	}
}

func TestNew(t *testing.T) {
	err := New(ConfigInvalid)

	if err == nil {
		t.Fatal("Expected error, got nil")
	}

	if err.Code != ConfigInvalid {
		t.Errorf("Code = %v, want %v", err.Code, ConfigInvalid)
	}

	if err.Error() != ConfigInvalid.Message() {
		t.Errorf("Error() = %v, want %v", err.Error(), ConfigInvalid.Message())
	}
}

func TestNewf(t *testing.T) {
	err := Newf(UnknownTypeTag, "type %q not in the closed set", "quaternion")

	want := `type "quaternion" not in the closed set`
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}
}

func TestWrap(t *testing.T) {
	originalErr := stderrors.New("connection refused")
	wrappedErr := Wrap(originalErr, SandboxCreateFailed)

	if wrappedErr.Code != SandboxCreateFailed {
		t.Errorf("Code = %v, want %v", wrappedErr.Code, SandboxCreateFailed)
	}

	if wrappedErr.Unwrap() != originalErr {
		t.Error("Unwrap() should return original error")
	}
}

func TestError_WithDetail(t *testing.T) {
	err := New(ValidationFailed).
		WithDetail("field", "function_type").
		WithDetail("reason", "required")

	if err.Details["field"] != "function_type" {
		t.Error("Field detail not set correctly")
	}

	if err.Details["reason"] != "required" {
		t.Error("Reason detail not set correctly")
	}
}

func TestError_WithMessage(t *testing.T) {
	customMsg := "custom error message"
	err := New(InternalServerError).WithMessage(customMsg)

	if err.Error() != customMsg {
		t.Errorf("Error() = %v, want %v", err.Error(), customMsg)
	}
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{
			name: "nil error",
			err:  nil,
			want: Success,
		},
		{
			name: "custom error",
			err:  New(ConfigInvalid),
			want: ConfigInvalid,
		},
		{
			name: "standard error",
			err:  stderrors.New("standard error"),
			want: InternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.want {
				t.Errorf("GetCode() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIs(t *testing.T) {
	err := New(SandboxQueueFull)

	if !Is(err, SandboxQueueFull) {
		t.Error("Is() should return true for matching code")
	}

	if Is(err, SandboxUnavailable) {
		t.Error("Is() should return false for non-matching code")
	}

	if Is(nil, SandboxQueueFull) {
		t.Error("Is() should return false for nil error")
	}
}

func TestCommonErrorConstructors(t *testing.T) {
	t.Run("BadRequest", func(t *testing.T) {
		err := BadRequest("invalid input")
		if err.Code != InvalidParams {
			t.Error("BadRequest should use InvalidParams code")
		}
	})

	t.Run("InternalError", func(t *testing.T) {
		originalErr := stderrors.New("docker daemon unreachable")
		err := InternalError(originalErr)
		if err.Code != InternalServerError {
			t.Error("InternalError should use InternalServerError code")
		}
	})

	t.Run("ValidationError", func(t *testing.T) {
		err := ValidationError("language", "unsupported")
		if err.Code != ValidationFailed {
			t.Error("ValidationError should use ValidationFailed code")
		}
		if err.Details["field"] != "language" {
			t.Error("Field detail not set")
		}
	})

	t.Run("ConfigError", func(t *testing.T) {
		err := ConfigError(DuplicateParameterName, "solve_params.name", "a")
		if err.Code != DuplicateParameterName {
			t.Error("ConfigError should keep the given code")
		}
		if err.Details["field"] != "solve_params.name" || err.Details["reason"] != "a" {
			t.Errorf("details = %v", err.Details)
		}
	})
}
