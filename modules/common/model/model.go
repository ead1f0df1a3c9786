package model

import "time"

// Job 상태 상수
const (
	StatusPending       = "pending"
	StatusProcessing    = "processing"
	StatusCompleted     = "completed"
	StatusFailed        = "failed"
	StatusUserCancelled = "user_cancelled"
)

// 생성 모드 상수
const (
	ModeText       = "text"       // 텍스트 프롬프트만
	ModeImage      = "image"      // 시작 이미지 + 프롬프트
	ModeFrames     = "frames"     // 시작/끝 프레임 보간
	ModeReferences = "references" // 레퍼런스 이미지 기반 (최대 3장)
	ModeExtend     = "extend"     // 기존 비디오 연장
)

// VideoJob - veo_jobs 테이블 레코드
type VideoJob struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	Status    string `json:"status"`
	Mode      string `json:"generation_mode"`
	Prompt    string `json:"prompt"`

	// 요청 파라미터
	Model           string `json:"model"`
	AspectRatio     string `json:"aspect_ratio,omitempty"`
	Resolution      string `json:"resolution,omitempty"`
	DurationSeconds int    `json:"duration_seconds,omitempty"`

	// 입력 미디어 (Storage 경로)
	StartImagePath string   `json:"start_image_path,omitempty"`
	EndImagePath   string   `json:"end_image_path,omitempty"`
	ReferencePaths []string `json:"reference_paths,omitempty"`
	StyleImagePath string   `json:"style_image_path,omitempty"`
	SourceVideoURL string   `json:"source_video_url,omitempty"`

	// 결과
	VideoURL     string `json:"video_url,omitempty"`
	PreviewURL   string `json:"preview_url,omitempty"`
	OperationID  string `json:"operation_id,omitempty"`
	ErrorCode    string `json:"error_code,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// IsTerminal - 작업이 종료 상태인지 확인
func (j *VideoJob) IsTerminal() bool {
	switch j.Status {
	case StatusCompleted, StatusFailed, StatusUserCancelled:
		return true
	}
	return false
}
