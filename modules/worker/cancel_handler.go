package worker

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"veo-canvas-server/modules/common/database"
	"veo-canvas-server/modules/common/model"
	redisutil "veo-canvas-server/modules/common/redis"
)

const cancelFlagTTL = 2 * time.Hour

// CancelHandler - Job 취소 API 핸들러
type CancelHandler struct {
	db *database.Client
}

// NewCancelHandler - 핸들러 생성
func NewCancelHandler(db *database.Client) *CancelHandler {
	if db == nil {
		log.Println("❌ [CancelHandler] Database client is required")
		return nil
	}
	return &CancelHandler{db: db}
}

// RegisterRoutes - 라우트 등록
func (h *CancelHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/video/cancel", h.CancelJob).Methods("POST", "OPTIONS")
	log.Println("✅ [CancelHandler] Routes registered: POST /api/video/cancel")
}

// CancelRequest - 취소 요청
type CancelRequest struct {
	JobID string `json:"jobId"`
}

// CancelJob - Job 취소 처리
// 취소 플래그를 설정하면 워커가 다음 폴링 전에 확인하고 중단함
func (h *CancelHandler) CancelJob(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	// CORS preflight
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	var req CancelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.JobID == "" {
		http.Error(w, `{"error": "jobId is required"}`, http.StatusBadRequest)
		return
	}

	log.Printf("🛑 [CancelHandler] Cancel requested for job: %s", req.JobID)

	// 1. DB에서 현재 job 상태 조회
	job, err := h.db.FetchJob(req.JobID)
	if err != nil {
		log.Printf("❌ [CancelHandler] Job not found: %s", req.JobID)
		http.Error(w, `{"error": "Job not found"}`, http.StatusNotFound)
		return
	}

	// 이미 종료된 job은 취소 불가
	if job.IsTerminal() {
		log.Printf("⚠️ [CancelHandler] Job already %s: %s", job.Status, req.JobID)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": false,
			"message": "Job already " + job.Status,
			"jobId":   req.JobID,
			"status":  job.Status,
		})
		return
	}

	// 2. Redis에 취소 플래그 설정
	if err := redisutil.MarkJobCancelled(r.Context(), req.JobID, cancelFlagTTL); err != nil {
		log.Printf("❌ [CancelHandler] Failed to set cancel flag: %v", err)
		http.Error(w, `{"error": "Failed to set cancel flag"}`, http.StatusInternalServerError)
		return
	}

	// 3. 아직 큐에서 대기 중이면 바로 취소 상태로 전환
	if job.Status == model.StatusPending {
		h.db.UpdateJobStatus(r.Context(), req.JobID, model.StatusUserCancelled)
		redisutil.ReleaseInflight(r.Context(), job.UserID, job.ID)
	}

	log.Printf("✅ [CancelHandler] Cancel flag set for job: %s (current status: %s)", req.JobID, job.Status)

	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"message": "Cancel request sent. Job will stop before the next poll.",
		"jobId":   req.JobID,
		"status":  job.Status,
	})
}
