package videogen

import (
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// 사용자에게 노출되는 에러 분류 코드
const (
	ErrCodeValidation      = "validation_failed"
	ErrCodeQuota           = "quota_exceeded"
	ErrCodeSafety          = "safety_blocked"
	ErrCodeCredential      = "credential_invalid"
	ErrCodeResultIntegrity = "no_video_produced"
	ErrCodeGeneric         = "generation_failed"
	ErrCodeInflight        = "already_in_flight"
)

// 결과 무결성 에러 (내부적으로는 구분하되 사용자 분류는 동일)
var (
	ErrNoVideosReturned = errors.New("operation completed but returned no videos")
	ErrNoVideoURI       = errors.New("generated video has no retrievable location")
)

// SafetyError - 콘텐츠 안전 정책 차단
// 제공자가 구조화된 사유를 주면 Reasons에 담김
type SafetyError struct {
	Reasons []string
}

func (e *SafetyError) Error() string {
	if len(e.Reasons) > 0 {
		return fmt.Sprintf("generation blocked by content safety policy: %s", strings.Join(e.Reasons, "; "))
	}
	return "generation blocked by content safety policy"
}

// OperationError - 원격 operation이 에러로 종료됨
type OperationError struct {
	Code    int
	Message string
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("operation failed: %s (code %d)", e.Message, e.Code)
}

// ClassifyError - 에러를 사용자 분류 코드와 메시지로 변환
// 가능하면 구조화된 에러 타입으로 판별하고, 아니면 문자열 패턴 매칭으로 폴백
func ClassifyError(err error) (code string, userMessage string) {
	if err == nil {
		return "", ""
	}

	// 1. 검증 에러
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return ErrCodeValidation, validationErr.Reason
	}

	// 2. 안전 정책 차단 (구조화된 사유가 있으면 그대로 노출)
	var safetyErr *SafetyError
	if errors.As(err, &safetyErr) {
		if len(safetyErr.Reasons) > 0 {
			return ErrCodeSafety, fmt.Sprintf("Your request was blocked: %s. Try modifying the prompt or removing attached images.", strings.Join(safetyErr.Reasons, "; "))
		}
		return ErrCodeSafety, "Your request was blocked by the content safety policy. Try modifying the prompt or removing attached images."
	}

	// 3. 결과 무결성 에러
	if errors.Is(err, ErrNoVideosReturned) || errors.Is(err, ErrNoVideoURI) {
		return ErrCodeResultIntegrity, "The operation completed but no video was produced. Please try again."
	}

	// 4. API 구조화 에러 (HTTP 상태 코드 기반)
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case 429:
			return ErrCodeQuota, "Quota or rate limit exceeded. Check your plan and billing details."
		case 401, 403:
			return ErrCodeCredential, "API credentials are invalid or missing the required permissions."
		}
		switch apiErr.Status {
		case "RESOURCE_EXHAUSTED":
			return ErrCodeQuota, "Quota or rate limit exceeded. Check your plan and billing details."
		case "UNAUTHENTICATED", "PERMISSION_DENIED":
			return ErrCodeCredential, "API credentials are invalid or missing the required permissions."
		}
	}

	// 5. 문자열 패턴 폴백 (제공자가 구조화 코드를 안 주는 경우)
	return classifyByText(err.Error())
}

// classifyByText - 에러 문자열 패턴 매칭
func classifyByText(errText string) (string, string) {
	lower := strings.ToLower(errText)

	switch {
	case strings.Contains(errText, "RESOURCE_EXHAUSTED"),
		strings.Contains(lower, "quota"),
		strings.Contains(lower, "rate limit"),
		strings.Contains(errText, "429"):
		return ErrCodeQuota, "Quota or rate limit exceeded. Check your plan and billing details."

	case strings.Contains(lower, "safety"),
		strings.Contains(lower, "blocked"),
		strings.Contains(lower, "responsible ai"):
		return ErrCodeSafety, "Your request was blocked by the content safety policy. Try modifying the prompt or removing attached images."

	case strings.Contains(lower, "api key"),
		strings.Contains(errText, "API_KEY_INVALID"),
		strings.Contains(lower, "unauthenticated"),
		strings.Contains(lower, "permission denied"),
		strings.Contains(lower, "unauthorized"):
		return ErrCodeCredential, "API credentials are invalid or missing the required permissions."
	}

	return ErrCodeGeneric, fmt.Sprintf("Video generation failed: %s", errText)
}

// operationErrorFrom - operation의 에러 맵에서 코드/메시지 추출
func operationErrorFrom(errMap map[string]any) *OperationError {
	opErr := &OperationError{Message: "unknown error"}

	if msg, ok := errMap["message"].(string); ok && msg != "" {
		opErr.Message = msg
	}
	switch code := errMap["code"].(type) {
	case float64:
		opErr.Code = int(code)
	case int:
		opErr.Code = code
	}

	return opErr
}
