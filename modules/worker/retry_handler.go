package worker

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"veo-canvas-server/modules/common/database"
	"veo-canvas-server/modules/common/model"
	redisutil "veo-canvas-server/modules/common/redis"
)

const retryInflightTTL = 2 * time.Hour

// RetryHandler - 실패한 Job 재시도 핸들러
// 마지막 요청 구성을 그대로 다시 큐에 넣음 (자동 재시도는 없음, 항상 사용자가 요청)
type RetryHandler struct {
	db *database.Client
}

// RetryRequest - 재시도 요청
// clearMedia: 안전 정책 차단 시 입력 이미지를 비우고 재시도할 때 사용
type RetryRequest struct {
	JobID      string `json:"jobId"`
	ClearMedia bool   `json:"clearMedia"`
}

// RetryResponse - 재시도 응답
type RetryResponse struct {
	Success       bool   `json:"success"`
	Message       string `json:"message,omitempty"`
	Error         string `json:"error,omitempty"`
	JobID         string `json:"jobId,omitempty"`
	Queue         string `json:"queue,omitempty"`
	QueuePosition int64  `json:"queuePosition,omitempty"`
}

// validateClearMediaRetry - 미디어를 비운 뒤에도 재시도가 돌아갈 수 있는지 확인
// 미디어가 빠지면 job은 text 모드로 전환되므로 프롬프트가 반드시 있어야 함
func validateClearMediaRetry(job *model.VideoJob) error {
	if strings.TrimSpace(job.Prompt) == "" {
		return errors.New("cannot clear media: job has no prompt to retry as a text generation")
	}
	return nil
}

// NewRetryHandler - RetryHandler 생성
func NewRetryHandler(db *database.Client) *RetryHandler {
	if db == nil {
		log.Println("⚠️ [Retry] Database client is required")
		return nil
	}
	log.Println("✅ [Retry] Handler initialized")
	return &RetryHandler{db: db}
}

// RegisterRoutes - 라우트 등록
func (h *RetryHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/video/retry", h.HandleRetry).Methods("POST", "OPTIONS")
	log.Println("✅ Retry routes registered: /api/video/retry")
}

// HandleRetry - POST /api/video/retry
func (h *RetryHandler) HandleRetry(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	// OPTIONS 요청 처리
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	// Request 파싱
	var req RetryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("❌ [Retry] Invalid request: %v", err)
		json.NewEncoder(w).Encode(RetryResponse{
			Success: false,
			Error:   "Invalid request body",
		})
		return
	}

	if req.JobID == "" {
		json.NewEncoder(w).Encode(RetryResponse{
			Success: false,
			Error:   "jobId is required",
		})
		return
	}

	log.Printf("📥 [Retry] Retry requested for job: %s (clearMedia: %v)", req.JobID, req.ClearMedia)

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	// 실패한 job만 재시도 가능
	job, err := h.db.FetchJob(req.JobID)
	if err != nil {
		json.NewEncoder(w).Encode(RetryResponse{
			Success: false,
			Error:   "Job not found",
		})
		return
	}

	if job.Status != model.StatusFailed && job.Status != model.StatusUserCancelled {
		json.NewEncoder(w).Encode(RetryResponse{
			Success: false,
			Error:   "Only failed or cancelled jobs can be retried (current: " + job.Status + ")",
		})
		return
	}

	// 미디어를 비우는 재시도는 text 모드로 전환되므로 프롬프트 없이는 불가
	if req.ClearMedia {
		if err := validateClearMediaRetry(job); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(RetryResponse{
				Success: false,
				Error:   err.Error(),
			})
			return
		}
	}

	// 단일 작업 가드 재획득
	acquired, err := redisutil.AcquireInflight(ctx, job.UserID, job.ID, retryInflightTTL)
	if err != nil || !acquired {
		json.NewEncoder(w).Encode(RetryResponse{
			Success: false,
			Error:   "Another generation is already in flight for this user",
		})
		return
	}

	// 이전 취소 플래그 제거 + 결과 필드 초기화
	redisutil.ClearCancelFlag(ctx, job.ID)
	if err := h.db.ClearJobResult(ctx, job.ID, req.ClearMedia); err != nil {
		log.Printf("❌ [Retry] Failed to reset job: %v", err)
		redisutil.ReleaseInflight(ctx, job.UserID, job.ID)
		json.NewEncoder(w).Encode(RetryResponse{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	// Redis LPUSH
	if err := redisutil.EnqueueVideoJob(ctx, job.ID); err != nil {
		log.Printf("❌ [Retry] Redis LPUSH failed: %v", err)
		redisutil.ReleaseInflight(ctx, job.UserID, job.ID)
		json.NewEncoder(w).Encode(RetryResponse{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	// Queue 길이 조회
	queueLen, _ := redisutil.GetClient().LLen(ctx, redisutil.VideoQueueKey).Result()

	log.Printf("✅ [Retry] Job %s re-enqueued successfully (position: %d)", job.ID, queueLen)

	json.NewEncoder(w).Encode(RetryResponse{
		Success:       true,
		Message:       "Job re-enqueued successfully",
		JobID:         job.ID,
		Queue:         redisutil.VideoQueueKey,
		QueuePosition: queueLen,
	})
}
