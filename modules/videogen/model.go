package videogen

import (
	"google.golang.org/genai"
)

// GenerationRequest - 비디오 생성 요청 (multipart form에서 파싱됨)
type GenerationRequest struct {
	UserID          string `json:"userId"`
	Mode            string `json:"mode"`
	Prompt          string `json:"prompt"`
	Model           string `json:"model,omitempty"`
	AspectRatio     string `json:"aspectRatio,omitempty"`
	Resolution      string `json:"resolution,omitempty"`
	DurationSeconds int    `json:"durationSeconds,omitempty"`
	SourceVideoURL  string `json:"sourceVideoUrl,omitempty"`
}

// MediaInput - 업로드된 이미지 한 장
type MediaInput struct {
	Data     []byte
	MIMEType string
}

// MediaInputs - 모드별 입력 이미지 묶음
type MediaInputs struct {
	StartImage *MediaInput
	EndImage   *MediaInput
	References []MediaInput
}

// AssembledRequest - 검증/보정이 끝난 제출용 요청
type AssembledRequest struct {
	Mode            string
	Model           string
	Prompt          string // 길이가 포함된 최종 프롬프트
	AspectRatio     string
	Resolution      string
	DurationSeconds int
	StartImage      *MediaInput
	EndImage        *MediaInput
	References      []MediaInput
	StyleImage      *MediaInput
	SourceVideoURL  string
}

// GenerateResponse - 생성 요청 접수 응답
type GenerateResponse struct {
	Success bool   `json:"success"`
	JobID   string `json:"jobId,omitempty"`
	Status  string `json:"status,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
}

// StatusResponse - 작업 상태 조회 응답
type StatusResponse struct {
	JobID        string `json:"jobId"`
	Status       string `json:"status"`
	Mode         string `json:"mode"`
	VideoURL     string `json:"videoUrl,omitempty"`
	PreviewURL   string `json:"previewUrl,omitempty"`
	ErrorCode    string `json:"errorCode,omitempty"`
	ErrorMessage string `json:"errorMessage,omitempty"`
}

// ProgressEvent - WebSocket으로 내보내는 진행 상황 이벤트
type ProgressEvent struct {
	JobID   string `json:"jobId"`
	Phase   string `json:"phase"` // queued / submitting / polling / downloading / uploading / done / failed / cancelled
	Attempt int    `json:"attempt,omitempty"`
	Status  string `json:"status,omitempty"`
	Message string `json:"message,omitempty"`
}

// InflightError - 같은 사용자의 작업이 이미 진행 중
// JobID는 가드를 잡고 있는 기존 작업 (조회 실패 시 빈 문자열)
type InflightError struct {
	JobID string
}

func (e *InflightError) Error() string {
	return "another generation is already in flight for this user"
}

// toImage - MediaInput을 제공자 이미지 타입으로 변환
func toImage(input *MediaInput) *genai.Image {
	if input == nil {
		return nil
	}
	return &genai.Image{
		ImageBytes: input.Data,
		MIMEType:   input.MIMEType,
	}
}
