package cancel

import (
	"context"
	"log"

	"veo-canvas-server/modules/common/model"
)

// StatusUpdater - 상태 업데이트 인터페이스
type StatusUpdater interface {
	IsJobCancelled(jobID string) bool
	UpdateJobStatus(ctx context.Context, jobID string, status string) error
}

// CheckBeforeSubmit - 제출 전 취소 체크
// 취소됐으면 상태를 user_cancelled로 바꾸고 true 반환
func CheckBeforeSubmit(ctx context.Context, service StatusUpdater, job *model.VideoJob) bool {
	if !service.IsJobCancelled(job.ID) {
		return false
	}

	log.Printf("🛑 Job %s cancelled before submission, skipping", job.ID)
	service.UpdateJobStatus(ctx, job.ID, model.StatusUserCancelled)
	return true
}

// CheckBeforeFetch - 결과 다운로드 전 취소 체크
// 완료된 결과라도 취소된 작업이면 저장하지 않음
func CheckBeforeFetch(ctx context.Context, service StatusUpdater, job *model.VideoJob) bool {
	if !service.IsJobCancelled(job.ID) {
		return false
	}

	log.Printf("🛑 Job %s cancelled, discarding completed result", job.ID)
	service.UpdateJobStatus(ctx, job.ID, model.StatusUserCancelled)
	return true
}
