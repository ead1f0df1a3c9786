package videogen

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"veo-canvas-server/modules/common/fallback"
	"veo-canvas-server/modules/common/utils"
)

const maxUploadSize = 32 << 20 // 32MB

// Handler - 비디오 생성 API 핸들러
type Handler struct {
	service *Service
}

// NewHandler - Handler 생성
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes - 라우트 등록
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/video/generate", h.HandleGenerate).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/video/status", h.HandleStatus).Methods("GET", "OPTIONS")
	log.Println("✅ Video routes registered: POST /api/video/generate, GET /api/video/status")
}

// HandleGenerate - POST /api/video/generate (multipart form)
// 필드: userId, mode, prompt, model, aspectRatio, resolution, duration, loop, sourceVideoUrl
// 파일: startImage, endImage, styleImage, referenceImages (최대 3개)
func (h *Handler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeGenerateError(w, http.StatusBadRequest, ErrCodeValidation, "invalid multipart form: "+err.Error())
		return
	}

	req := &GenerationRequest{
		UserID:          strings.TrimSpace(r.FormValue("userId")),
		Mode:            strings.TrimSpace(r.FormValue("mode")),
		Prompt:          r.FormValue("prompt"),
		Model:           strings.TrimSpace(r.FormValue("model")),
		AspectRatio:     strings.TrimSpace(r.FormValue("aspectRatio")),
		Resolution:      strings.TrimSpace(r.FormValue("resolution")),
		DurationSeconds: fallback.SafeInt(r.FormValue("duration"), 0),
		SourceVideoURL:  strings.TrimSpace(r.FormValue("sourceVideoUrl")),
	}
	loop, _ := strconv.ParseBool(r.FormValue("loop"))

	inputs, styleImage, err := parseMediaInputs(r)
	if err != nil {
		writeGenerateError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
		return
	}

	jobID, err := h.service.SubmitGeneration(r.Context(), req, inputs, loop, styleImage)
	if err != nil {
		status, resp := submitErrorResponse(err)
		if status == http.StatusInternalServerError {
			log.Printf("❌ Failed to submit generation: %v", err)
		}
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(resp)
		return
	}

	json.NewEncoder(w).Encode(GenerateResponse{
		Success: true,
		JobID:   jobID,
		Status:  "pending",
	})
}

// HandleStatus - GET /api/video/status?jobId=
func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	jobID := r.URL.Query().Get("jobId")
	if jobID == "" {
		writeGenerateError(w, http.StatusBadRequest, ErrCodeValidation, "jobId parameter is required")
		return
	}

	job, err := h.service.GetJobStatus(jobID)
	if err != nil {
		writeGenerateError(w, http.StatusNotFound, "not_found", "job not found")
		return
	}

	json.NewEncoder(w).Encode(StatusResponse{
		JobID:        job.ID,
		Status:       job.Status,
		Mode:         job.Mode,
		VideoURL:     job.VideoURL,
		PreviewURL:   job.PreviewURL,
		ErrorCode:    job.ErrorCode,
		ErrorMessage: job.ErrorMessage,
	})
}

// parseMediaInputs - multipart 파일들을 읽어서 MediaInputs로 변환
func parseMediaInputs(r *http.Request) (*MediaInputs, *MediaInput, error) {
	inputs := &MediaInputs{}

	start, err := readFormImage(r, "startImage")
	if err != nil {
		return nil, nil, err
	}
	inputs.StartImage = start

	end, err := readFormImage(r, "endImage")
	if err != nil {
		return nil, nil, err
	}
	inputs.EndImage = end

	styleImage, err := readFormImage(r, "styleImage")
	if err != nil {
		return nil, nil, err
	}

	if r.MultipartForm != nil {
		for _, header := range r.MultipartForm.File["referenceImages"] {
			img, err := readImageFile(header)
			if err != nil {
				return nil, nil, err
			}
			inputs.References = append(inputs.References, *img)
		}
	}

	return inputs, styleImage, nil
}

// readFormImage - 단일 파일 필드 읽기 (없으면 nil)
func readFormImage(r *http.Request, field string) (*MediaInput, error) {
	if r.MultipartForm == nil || len(r.MultipartForm.File[field]) == 0 {
		return nil, nil
	}
	return readImageFile(r.MultipartForm.File[field][0])
}

// readImageFile - 파일 내용을 읽고 MIME 타입 검증
func readImageFile(header *multipart.FileHeader) (*MediaInput, error) {
	file, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}

	mime, err := utils.SniffImageMIME(data)
	if err != nil {
		return nil, err
	}

	return &MediaInput{Data: data, MIMEType: mime}, nil
}

// submitErrorResponse - 제출 실패를 HTTP 상태와 응답으로 변환
// in-flight 충돌이면 가드를 잡고 있는 작업 ID를 함께 돌려줌
func submitErrorResponse(err error) (int, GenerateResponse) {
	var validationErr *ValidationError
	var inflightErr *InflightError
	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest, GenerateResponse{
			Success: false,
			Code:    ErrCodeValidation,
			Error:   validationErr.Reason,
		}
	case errors.As(err, &inflightErr):
		return http.StatusConflict, GenerateResponse{
			Success: false,
			Code:    ErrCodeInflight,
			Error:   inflightErr.Error(),
			JobID:   inflightErr.JobID,
		}
	default:
		return http.StatusInternalServerError, GenerateResponse{
			Success: false,
			Code:    ErrCodeGeneric,
			Error:   "failed to submit generation request",
		}
	}
}

// writeGenerateError - 에러 응답 작성
func writeGenerateError(w http.ResponseWriter, status int, code string, message string) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(GenerateResponse{
		Success: false,
		Code:    code,
		Error:   message,
	})
}
