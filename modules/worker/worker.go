package worker

import (
	"context"
	"log"
	"time"

	redisutil "veo-canvas-server/modules/common/redis"
	"veo-canvas-server/modules/videogen"
)

// StartWorker - Redis Queue Worker 시작
func StartWorker(service *videogen.Service) {
	log.Println("🔄 Redis Queue Worker starting...")

	rdb := redisutil.GetClient()

	// Queue 감시 시작
	log.Println("👀 Watching queue:", redisutil.VideoQueueKey)

	ctx := context.Background()

	// 무한 루프로 Queue 감시
	for {
		// Job 받기 (BRPOP - Blocking Right Pop)
		result, err := rdb.BRPop(ctx, 0, redisutil.VideoQueueKey).Result()
		if err != nil {
			log.Printf("❌ Redis BRPOP error: %v", err)
			time.Sleep(5 * time.Second)
			continue
		}

		// result[0]은 큐 이름, result[1]이 실제 job_id
		jobID := result[1]
		log.Printf("🎯 Received new job: %s", jobID)

		// Job 처리 (goroutine으로 비동기)
		go service.ProcessJob(ctx, jobID)
	}
}
