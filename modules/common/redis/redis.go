package redis

import (
	"context"
	"crypto/tls"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"veo-canvas-server/modules/common/config"
)

const (
	// VideoQueueKey - 비디오 생성 작업 큐
	VideoQueueKey = "video:jobs:queue"

	inflightKeyPrefix = "video:inflight:"
	cancelKeyPrefix   = "video:cancel:"
)

var Client *redis.Client

// Connect - Redis 연결
func Connect() error {
	cfg := config.GetConfig()

	opts := &redis.Options{
		Addr:     cfg.GetRedisAddr(),
		Username: cfg.RedisUsername,
		Password: cfg.RedisPassword,
		DB:       0,
	}

	// TLS 설정 (Upstash 등 클라우드 Redis)
	if cfg.RedisUseTLS {
		opts.TLSConfig = &tls.Config{
			InsecureSkipVerify: true,
		}
	}

	Client = redis.NewClient(opts)

	// 연결 테스트
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := Client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis connection failed: %w", err)
	}

	log.Println("✅ Redis connected:", cfg.GetRedisAddr())
	return nil
}

// GetClient - Redis 클라이언트 가져오기
func GetClient() *redis.Client {
	if Client == nil {
		log.Fatal("❌ Redis not connected. Call Connect() first.")
	}
	return Client
}

// EnqueueVideoJob - 비디오 작업을 큐에 넣기
func EnqueueVideoJob(ctx context.Context, payload string) error {
	return GetClient().LPush(ctx, VideoQueueKey, payload).Err()
}

// AcquireInflight - 사용자별 단일 작업 가드 (SETNX)
// 이미 진행 중인 작업이 있으면 false 반환
func AcquireInflight(ctx context.Context, userID string, jobID string, ttl time.Duration) (bool, error) {
	return GetClient().SetNX(ctx, inflightKeyPrefix+userID, jobID, ttl).Result()
}

// ReleaseInflight - 단일 작업 가드 해제
// 다른 작업이 가드를 잡고 있으면 건드리지 않음
func ReleaseInflight(ctx context.Context, userID string, jobID string) {
	key := inflightKeyPrefix + userID
	current, err := GetClient().Get(ctx, key).Result()
	if err != nil {
		return
	}
	if current == jobID {
		GetClient().Del(ctx, key)
	}
}

// GetInflightJob - 사용자의 진행 중인 작업 ID 조회 (없으면 빈 문자열)
func GetInflightJob(ctx context.Context, userID string) string {
	jobID, err := GetClient().Get(ctx, inflightKeyPrefix+userID).Result()
	if err != nil {
		return ""
	}
	return jobID
}

// MarkJobCancelled - 취소 플래그 설정 (워커가 폴링 중 확인)
func MarkJobCancelled(ctx context.Context, jobID string, ttl time.Duration) error {
	return GetClient().Set(ctx, cancelKeyPrefix+jobID, "1", ttl).Err()
}

// IsJobCancelled - 취소 플래그 확인
func IsJobCancelled(ctx context.Context, jobID string) bool {
	exists, err := GetClient().Exists(ctx, cancelKeyPrefix+jobID).Result()
	if err != nil {
		return false
	}
	return exists > 0
}

// ClearCancelFlag - 취소 플래그 제거
func ClearCancelFlag(ctx context.Context, jobID string) {
	GetClient().Del(ctx, cancelKeyPrefix+jobID)
}
