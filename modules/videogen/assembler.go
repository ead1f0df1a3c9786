package videogen

import (
	"fmt"
	"strings"

	"veo-canvas-server/modules/common/fallback"
	"veo-canvas-server/modules/common/model"
)

// 모드별 고정값 (제공자 제약)
const (
	DefaultModel = "veo-3.0-generate-preview"

	// references 모드는 모델/비율/해상도 고정
	ReferencesModel       = "veo-2.0-generate-exp"
	ReferencesAspectRatio = "16:9"
	ReferencesResolution  = "720p"

	// extend 모드는 모델/해상도/길이 고정
	ExtendModel           = "veo-2.0-generate-exp"
	ExtendResolution      = "720p"
	ExtendDurationSeconds = 7

	MaxReferenceImages = 3

	defaultDurationSeconds = 5
)

// ValidationError - 제출 전 검증 실패
// 네트워크 호출 없이 핸들러에서 바로 400으로 반환됨
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func validationErrorf(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// AssembleRequest - 모드별 규칙 검증 후 제출용 요청 생성
// 검증 실패 시 *ValidationError 반환 (네트워크 호출 전에 차단)
func AssembleRequest(req *GenerationRequest, inputs *MediaInputs, loop bool, styleImage *MediaInput) (*AssembledRequest, error) {
	if req.UserID == "" {
		return nil, validationErrorf("userId is required")
	}

	prompt := strings.TrimSpace(req.Prompt)
	duration := fallback.SafeDuration(req.DurationSeconds, defaultDurationSeconds)

	assembled := &AssembledRequest{
		Mode:            req.Mode,
		Model:           fallback.SafeString(req.Model, DefaultModel),
		AspectRatio:     fallback.SafeAspectRatio(req.AspectRatio),
		Resolution:      fallback.SafeResolution(req.Resolution),
		DurationSeconds: duration,
	}

	switch req.Mode {
	case model.ModeText:
		if prompt == "" {
			return nil, validationErrorf("prompt is required for text mode")
		}
		if inputs != nil && (inputs.StartImage != nil || inputs.EndImage != nil || len(inputs.References) > 0) {
			return nil, validationErrorf("text mode does not accept media attachments")
		}

	case model.ModeImage:
		if inputs == nil || inputs.StartImage == nil {
			return nil, validationErrorf("source image is required for image mode")
		}
		assembled.StartImage = inputs.StartImage

	case model.ModeFrames:
		if inputs == nil || inputs.StartImage == nil {
			return nil, validationErrorf("start image is required for frames mode")
		}
		assembled.StartImage = inputs.StartImage
		assembled.EndImage = inputs.EndImage
		// 루프 모드: 끝 이미지가 없으면 시작 이미지를 그대로 재사용
		if loop && assembled.EndImage == nil {
			assembled.EndImage = inputs.StartImage
		}

	case model.ModeReferences:
		if prompt == "" {
			return nil, validationErrorf("prompt is required for references mode")
		}
		if inputs == nil || len(inputs.References) == 0 {
			return nil, validationErrorf("at least one reference image is required for references mode")
		}
		if len(inputs.References) > MaxReferenceImages {
			return nil, validationErrorf("at most %d reference images are allowed", MaxReferenceImages)
		}
		assembled.References = inputs.References
		assembled.StyleImage = styleImage
		// 제공자 제약: references 모드는 설정값 고정
		assembled.Model = ReferencesModel
		assembled.AspectRatio = ReferencesAspectRatio
		assembled.Resolution = ReferencesResolution

	case model.ModeExtend:
		if prompt == "" {
			return nil, validationErrorf("prompt is required for extend mode")
		}
		if req.SourceVideoURL == "" {
			return nil, validationErrorf("source video is required for extend mode")
		}
		assembled.SourceVideoURL = req.SourceVideoURL
		// 제공자 제약: extend 모드는 모델/해상도/길이 고정
		assembled.Model = ExtendModel
		assembled.Resolution = ExtendResolution
		assembled.DurationSeconds = ExtendDurationSeconds

	default:
		return nil, validationErrorf("unknown generation mode: %q", req.Mode)
	}

	assembled.Prompt = AugmentPrompt(prompt, assembled.DurationSeconds)
	return assembled, nil
}

// AugmentPrompt - 프롬프트에 목표 길이(초)를 삽입
// duration 파라미터만으로는 길이가 잘 지켜지지 않아서 프롬프트에도 명시함
func AugmentPrompt(prompt string, durationSeconds int) string {
	if prompt == "" {
		return fmt.Sprintf("A %d second video.", durationSeconds)
	}
	return fmt.Sprintf("A %d second video of: %s", durationSeconds, prompt)
}
