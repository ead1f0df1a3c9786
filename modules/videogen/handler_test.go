package videogen

import (
	"errors"
	"net/http"
	"testing"
)

func TestSubmitErrorResponse(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantJobID  string
	}{
		{
			name:       "validation failure maps to 400",
			err:        &ValidationError{Reason: "prompt is required for text mode"},
			wantStatus: http.StatusBadRequest,
			wantCode:   ErrCodeValidation,
		},
		{
			name:       "in-flight conflict maps to 409 with existing job id",
			err:        &InflightError{JobID: "job-busy"},
			wantStatus: http.StatusConflict,
			wantCode:   ErrCodeInflight,
			wantJobID:  "job-busy",
		},
		{
			name:       "wrapped in-flight conflict is still detected",
			err:        errors.Join(errors.New("submit failed"), &InflightError{JobID: "job-wrapped"}),
			wantStatus: http.StatusConflict,
			wantCode:   ErrCodeInflight,
			wantJobID:  "job-wrapped",
		},
		{
			name:       "unknown error maps to 500",
			err:        errors.New("redis down"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   ErrCodeGeneric,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, resp := submitErrorResponse(tt.err)
			if status != tt.wantStatus {
				t.Errorf("status = %d, want %d", status, tt.wantStatus)
			}
			if resp.Success {
				t.Error("error response must not claim success")
			}
			if resp.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", resp.Code, tt.wantCode)
			}
			if resp.JobID != tt.wantJobID {
				t.Errorf("jobId = %q, want %q", resp.JobID, tt.wantJobID)
			}
		})
	}
}
