package database

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/supabase-community/supabase-go"

	"veo-canvas-server/modules/common/config"
	"veo-canvas-server/modules/common/model"
)

const jobsTable = "veo_jobs"

type Client struct {
	supabase *supabase.Client
}

// NewClient - Database 클라이언트 생성
func NewClient() *Client {
	cfg := config.GetConfig()

	supabaseClient, err := supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseServiceKey, &supabase.ClientOptions{})
	if err != nil {
		log.Printf("❌ Failed to create Supabase client: %v", err)
		return nil
	}

	return &Client{
		supabase: supabaseClient,
	}
}

// CreateJob - veo_jobs 테이블에 새 작업 레코드 생성
func (c *Client) CreateJob(ctx context.Context, job *model.VideoJob) error {
	log.Printf("💾 Creating job record: %s (mode: %s)", job.ID, job.Mode)

	insertData := map[string]interface{}{
		"id":              job.ID,
		"user_id":         job.UserID,
		"status":          job.Status,
		"generation_mode": job.Mode,
		"prompt":          job.Prompt,
		"model":           job.Model,
	}
	if job.AspectRatio != "" {
		insertData["aspect_ratio"] = job.AspectRatio
	}
	if job.Resolution != "" {
		insertData["resolution"] = job.Resolution
	}
	if job.DurationSeconds > 0 {
		insertData["duration_seconds"] = job.DurationSeconds
	}
	if job.StartImagePath != "" {
		insertData["start_image_path"] = job.StartImagePath
	}
	if job.EndImagePath != "" {
		insertData["end_image_path"] = job.EndImagePath
	}
	if len(job.ReferencePaths) > 0 {
		insertData["reference_paths"] = job.ReferencePaths
	}
	if job.StyleImagePath != "" {
		insertData["style_image_path"] = job.StyleImagePath
	}
	if job.SourceVideoURL != "" {
		insertData["source_video_url"] = job.SourceVideoURL
	}

	_, _, err := c.supabase.From(jobsTable).
		Insert(insertData, false, "", "", "").
		Execute()

	if err != nil {
		return fmt.Errorf("failed to insert job record: %w", err)
	}

	log.Printf("✅ Job record created: %s", job.ID)
	return nil
}

// FetchJob - veo_jobs 테이블에서 작업 조회
func (c *Client) FetchJob(jobID string) (*model.VideoJob, error) {
	log.Printf("🔍 Fetching job from Supabase: %s", jobID)

	var jobs []model.VideoJob

	data, _, err := c.supabase.From(jobsTable).
		Select("*", "exact", false).
		Eq("id", jobID).
		Execute()

	if err != nil {
		return nil, fmt.Errorf("failed to query Supabase: %w", err)
	}

	if err := json.Unmarshal(data, &jobs); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if len(jobs) == 0 {
		return nil, fmt.Errorf("job not found: %s", jobID)
	}

	job := &jobs[0]
	log.Printf("✅ Job fetched: %s (status: %s, mode: %s)", job.ID, job.Status, job.Mode)

	return job, nil
}

// UpdateJobStatus - Job 상태 업데이트
func (c *Client) UpdateJobStatus(ctx context.Context, jobID string, status string) error {
	log.Printf("📝 Updating job %s status to: %s", jobID, status)

	updateData := map[string]interface{}{
		"status":     status,
		"updated_at": "now()",
	}

	if status == model.StatusCompleted || status == model.StatusFailed || status == model.StatusUserCancelled {
		updateData["completed_at"] = "now()"
	}

	_, _, err := c.supabase.From(jobsTable).
		Update(updateData, "", "").
		Eq("id", jobID).
		Execute()

	if err != nil {
		return fmt.Errorf("failed to update job status: %w", err)
	}

	log.Printf("✅ Job %s status updated to: %s", jobID, status)
	return nil
}

// UpdateJobOperation - 원격 operation 이름 기록 (제출 직후)
func (c *Client) UpdateJobOperation(ctx context.Context, jobID string, operationID string) error {
	updateData := map[string]interface{}{
		"operation_id": operationID,
		"updated_at":   "now()",
	}

	_, _, err := c.supabase.From(jobsTable).
		Update(updateData, "", "").
		Eq("id", jobID).
		Execute()

	if err != nil {
		return fmt.Errorf("failed to update job operation: %w", err)
	}

	return nil
}

// CompleteJob - 작업 완료 처리 (결과 URL 기록)
func (c *Client) CompleteJob(ctx context.Context, jobID string, videoURL string, previewURL string) error {
	log.Printf("📝 Completing job %s", jobID)

	updateData := map[string]interface{}{
		"status":       model.StatusCompleted,
		"video_url":    videoURL,
		"updated_at":   "now()",
		"completed_at": "now()",
	}
	if previewURL != "" {
		updateData["preview_url"] = previewURL
	}

	_, _, err := c.supabase.From(jobsTable).
		Update(updateData, "", "").
		Eq("id", jobID).
		Execute()

	if err != nil {
		return fmt.Errorf("failed to complete job: %w", err)
	}

	log.Printf("✅ Job %s completed: %s", jobID, videoURL)
	return nil
}

// FailJob - 작업 실패 처리 (분류된 에러 코드와 메시지 기록)
func (c *Client) FailJob(ctx context.Context, jobID string, errorCode string, errorMessage string) error {
	log.Printf("📝 Failing job %s (code: %s)", jobID, errorCode)

	updateData := map[string]interface{}{
		"status":        model.StatusFailed,
		"error_code":    errorCode,
		"error_message": errorMessage,
		"updated_at":    "now()",
		"completed_at":  "now()",
	}

	_, _, err := c.supabase.From(jobsTable).
		Update(updateData, "", "").
		Eq("id", jobID).
		Execute()

	if err != nil {
		return fmt.Errorf("failed to mark job failed: %w", err)
	}

	log.Printf("✅ Job %s marked failed: %s", jobID, errorCode)
	return nil
}

// ClearJobResult - 재시도 전 결과/에러 필드 초기화
// clearMedia가 true면 입력 미디어 경로를 비우고, 미디어가 필수인 모드로 남지 않도록
// generation_mode를 text로 전환함
func (c *Client) ClearJobResult(ctx context.Context, jobID string, clearMedia bool) error {
	log.Printf("🧹 Clearing job %s result (clearMedia: %v)", jobID, clearMedia)

	updateData := map[string]interface{}{
		"status":        model.StatusPending,
		"video_url":     nil,
		"preview_url":   nil,
		"operation_id":  nil,
		"error_code":    nil,
		"error_message": nil,
		"completed_at":  nil,
		"updated_at":    "now()",
	}
	if clearMedia {
		updateData["start_image_path"] = nil
		updateData["end_image_path"] = nil
		updateData["reference_paths"] = nil
		updateData["style_image_path"] = nil
		updateData["source_video_url"] = nil
		updateData["generation_mode"] = model.ModeText
	}

	_, _, err := c.supabase.From(jobsTable).
		Update(updateData, "", "").
		Eq("id", jobID).
		Execute()

	if err != nil {
		return fmt.Errorf("failed to clear job result: %w", err)
	}

	return nil
}
