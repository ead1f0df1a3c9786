package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"veo-canvas-server/modules/common/config"
	"veo-canvas-server/modules/common/database"
	redisutil "veo-canvas-server/modules/common/redis"
	"veo-canvas-server/modules/prompt"
	"veo-canvas-server/modules/videogen"
	"veo-canvas-server/modules/worker"
)

var startTime = time.Now()

// CORS 헤더 추가
func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// 헬스 체크 엔드포인트
func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "healthy",
		"service": "veo-canvas-server",
		"uptime":  time.Since(startTime).String(),
	})
}

func main() {
	// 환경변수 로드
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	// Redis 연결
	if err := redisutil.Connect(); err != nil {
		log.Fatalf("❌ Failed to connect to Redis: %v", err)
	}

	ctx := context.Background()

	// 진행 상황 WebSocket Hub
	hub := videogen.NewHub()

	// 비디오 생성 서비스
	videoService, err := videogen.NewService(ctx, hub)
	if err != nil {
		log.Fatalf("❌ Failed to initialize video service: %v", err)
	}

	// Database 클라이언트 (취소/재시도 핸들러용)
	dbClient := database.NewClient()
	if dbClient == nil {
		log.Fatal("❌ Failed to initialize database client")
	}

	// Redis Queue Worker 시작 (백그라운드)
	go worker.StartWorker(videoService)

	// 라우터 설정
	r := mux.NewRouter()

	// CORS 미들웨어 적용
	r.Use(enableCORS)

	// 기본 라우트
	r.HandleFunc("/", healthCheck).Methods("GET")
	r.HandleFunc("/health", healthCheck).Methods("GET")
	r.HandleFunc("/ws", hub.HandleWS)

	// 비디오 생성 라우트
	videoHandler := videogen.NewHandler(videoService)
	videoHandler.RegisterRoutes(r)

	// 취소 / 재시도 라우트
	if cancelHandler := worker.NewCancelHandler(dbClient); cancelHandler != nil {
		cancelHandler.RegisterRoutes(r)
	}
	if retryHandler := worker.NewRetryHandler(dbClient); retryHandler != nil {
		retryHandler.RegisterRoutes(r)
	}

	// 프롬프트 개선 라우트 (Gemini API 키가 있을 때만)
	if cfg.GeminiAPIKey != "" {
		promptService, err := prompt.NewService(ctx)
		if err != nil {
			log.Printf("⚠️  Prompt enhancement disabled: %v", err)
		} else {
			defer promptService.Close()
			prompt.NewHandler(promptService).RegisterRoutes(r)
		}
	}

	log.Printf("🚀 Veo Canvas Server starting on port %s", cfg.Port)
	log.Printf("📡 WebSocket endpoint: ws://localhost:%s/ws", cfg.Port)
	log.Printf("❤️  Health check: http://localhost:%s/health", cfg.Port)
	log.Printf("🎬 Generate: POST http://localhost:%s/api/video/generate", cfg.Port)

	// 서버 시작
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
