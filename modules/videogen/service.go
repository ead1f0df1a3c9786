package videogen

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2/google"
	"google.golang.org/genai"

	"veo-canvas-server/modules/common/cancel"
	"veo-canvas-server/modules/common/config"
	"veo-canvas-server/modules/common/database"
	genaiclient "veo-canvas-server/modules/common/genai"
	"veo-canvas-server/modules/common/model"
	redisutil "veo-canvas-server/modules/common/redis"
	"veo-canvas-server/modules/common/storage"
	"veo-canvas-server/modules/common/utils"
)

const (
	inflightTTL     = 2 * time.Hour
	previewMaxWidth = 512
	previewQuality  = 80.0
)

// Service - 비디오 생성 파이프라인
type Service struct {
	db      *database.Client
	storage *storage.Client
	client  *genai.Client
	hub     *Hub
	http    *http.Client
}

// NewService - Service 초기화
func NewService(ctx context.Context, hub *Hub) (*Service, error) {
	db := database.NewClient()
	if db == nil {
		return nil, fmt.Errorf("failed to initialize database client")
	}

	client, err := genaiclient.NewClient(ctx)
	if err != nil {
		return nil, err
	}

	return &Service{
		db:      db,
		storage: storage.NewClient(),
		client:  client,
		hub:     hub,
		http:    &http.Client{Timeout: 5 * time.Minute},
	}, nil
}

// SubmitGeneration - 요청 검증 후 작업 생성 및 큐 등록
// 같은 사용자의 작업이 진행 중이면 기존 작업 ID를 담은 InflightError 반환
func (s *Service) SubmitGeneration(ctx context.Context, req *GenerationRequest, inputs *MediaInputs, loop bool, styleImage *MediaInput) (string, error) {
	// 1단계: 검증 + 조립 (네트워크 호출 전에 실패)
	assembled, err := AssembleRequest(req, inputs, loop, styleImage)
	if err != nil {
		return "", err
	}

	jobID := uuid.New().String()

	// 2단계: 단일 작업 가드 (명시적 in-flight 플래그)
	acquired, err := redisutil.AcquireInflight(ctx, req.UserID, jobID, inflightTTL)
	if err != nil {
		return "", fmt.Errorf("failed to check in-flight guard: %w", err)
	}
	if !acquired {
		return "", &InflightError{JobID: redisutil.GetInflightJob(ctx, req.UserID)}
	}

	// 실패 시 가드 해제
	success := false
	defer func() {
		if !success {
			redisutil.ReleaseInflight(ctx, req.UserID, jobID)
		}
	}()

	// 3단계: 입력 이미지 Storage 업로드
	job := &model.VideoJob{
		ID:              jobID,
		UserID:          req.UserID,
		Status:          model.StatusPending,
		Mode:            assembled.Mode,
		Prompt:          strings.TrimSpace(req.Prompt),
		Model:           assembled.Model,
		AspectRatio:     assembled.AspectRatio,
		Resolution:      assembled.Resolution,
		DurationSeconds: assembled.DurationSeconds,
		SourceVideoURL:  assembled.SourceVideoURL,
	}

	if err := s.uploadInputs(ctx, job, assembled); err != nil {
		return "", err
	}

	// 4단계: 작업 레코드 생성
	if err := s.db.CreateJob(ctx, job); err != nil {
		return "", err
	}

	// 5단계: 큐 등록
	if err := redisutil.EnqueueVideoJob(ctx, jobID); err != nil {
		return "", fmt.Errorf("failed to enqueue job: %w", err)
	}

	s.hub.Publish(ProgressEvent{JobID: jobID, Phase: "queued", Status: model.StatusPending})
	log.Printf("✅ Job %s submitted (mode: %s, user: %s)", jobID, assembled.Mode, req.UserID)

	success = true
	return jobID, nil
}

// uploadInputs - 조립된 요청의 입력 이미지들을 Storage에 업로드하고 경로 기록
func (s *Service) uploadInputs(ctx context.Context, job *model.VideoJob, assembled *AssembledRequest) error {
	if assembled.StartImage != nil {
		path, err := s.storage.UploadInputImage(ctx, assembled.StartImage.Data, assembled.StartImage.MIMEType, job.UserID, job.ID, "start")
		if err != nil {
			return fmt.Errorf("failed to upload start image: %w", err)
		}
		job.StartImagePath = path
	}

	if assembled.EndImage != nil {
		path, err := s.storage.UploadInputImage(ctx, assembled.EndImage.Data, assembled.EndImage.MIMEType, job.UserID, job.ID, "end")
		if err != nil {
			return fmt.Errorf("failed to upload end image: %w", err)
		}
		job.EndImagePath = path
	}

	for i, ref := range assembled.References {
		path, err := s.storage.UploadInputImage(ctx, ref.Data, ref.MIMEType, job.UserID, job.ID, fmt.Sprintf("ref-%d", i))
		if err != nil {
			return fmt.Errorf("failed to upload reference image %d: %w", i, err)
		}
		job.ReferencePaths = append(job.ReferencePaths, path)
	}

	if assembled.StyleImage != nil {
		path, err := s.storage.UploadInputImage(ctx, assembled.StyleImage.Data, assembled.StyleImage.MIMEType, job.UserID, job.ID, "style")
		if err != nil {
			return fmt.Errorf("failed to upload style image: %w", err)
		}
		job.StyleImagePath = path
	}

	return nil
}

// ProcessJob - 큐에서 받은 작업 처리 (워커 진입점)
func (s *Service) ProcessJob(ctx context.Context, jobID string) {
	log.Printf("🚀 Processing job: %s", jobID)

	// 1단계: 작업 조회
	job, err := s.db.FetchJob(jobID)
	if err != nil {
		log.Printf("❌ Failed to fetch job %s: %v", jobID, err)
		return
	}

	if job.IsTerminal() {
		log.Printf("⚠️  Job %s already terminal (%s), skipping", jobID, job.Status)
		return
	}

	defer func() {
		redisutil.ReleaseInflight(ctx, job.UserID, job.ID)
		redisutil.ClearCancelFlag(ctx, job.ID)
	}()

	// 2단계: 제출 전 취소 체크
	if cancel.CheckBeforeSubmit(ctx, s, job) {
		s.hub.Publish(ProgressEvent{JobID: jobID, Phase: "cancelled", Status: model.StatusUserCancelled})
		return
	}

	s.db.UpdateJobStatus(ctx, jobID, model.StatusProcessing)
	s.hub.Publish(ProgressEvent{JobID: jobID, Phase: "submitting", Status: model.StatusProcessing})

	// 3단계: 입력 이미지 다운로드 + 요청 재조립
	assembled, err := s.rebuildRequest(ctx, job)
	if err != nil {
		s.failJob(ctx, job, err)
		return
	}

	// 4단계: 제공자에 제출
	op, err := s.submit(ctx, assembled)
	if err != nil {
		s.failJob(ctx, job, err)
		return
	}

	log.Printf("📡 Job %s operation started: %s", jobID, op.Name)
	s.db.UpdateJobOperation(ctx, jobID, op.Name)

	// 5단계: 고정 간격 폴링
	cfg := config.GetConfig()
	poller := &Poller{
		Interval:    cfg.PollInterval,
		MaxAttempts: cfg.PollMaxAttempts,
		IsCancelled: func() bool { return redisutil.IsJobCancelled(ctx, jobID) },
		OnAttempt: func(attempt int) {
			s.hub.Publish(ProgressEvent{JobID: jobID, Phase: "polling", Attempt: attempt, Status: model.StatusProcessing})
		},
	}

	err = waitForOperation(ctx, poller, op.Done, func(ctx context.Context) (bool, error) {
		updated, pollErr := s.client.Operations.GetVideosOperation(ctx, op, nil)
		if pollErr != nil {
			return false, pollErr
		}
		op = updated
		return op.Done, nil
	})

	if errors.Is(err, ErrPollCancelled) {
		log.Printf("🛑 Job %s cancelled during polling, abandoning operation %s", jobID, op.Name)
		s.db.UpdateJobStatus(ctx, jobID, model.StatusUserCancelled)
		s.hub.Publish(ProgressEvent{JobID: jobID, Phase: "cancelled", Status: model.StatusUserCancelled})
		return
	}
	if err != nil {
		s.failJob(ctx, job, err)
		return
	}

	// 6단계: 종료 상태 분류
	video, err := extractVideo(op)
	if err != nil {
		s.failJob(ctx, job, err)
		return
	}

	// 7단계: 다운로드 전 취소 체크 (취소된 작업의 결과는 버림)
	if cancel.CheckBeforeFetch(ctx, s, job) {
		s.hub.Publish(ProgressEvent{JobID: jobID, Phase: "cancelled", Status: model.StatusUserCancelled})
		return
	}

	// 8단계: 결과 다운로드
	s.hub.Publish(ProgressEvent{JobID: jobID, Phase: "downloading", Status: model.StatusProcessing})
	videoData, err := s.fetchVideoBytes(ctx, video)
	if err != nil {
		s.failJob(ctx, job, err)
		return
	}

	// 9단계: Storage 업로드 + 미리보기 생성
	s.hub.Publish(ProgressEvent{JobID: jobID, Phase: "uploading", Status: model.StatusProcessing})
	videoPath, err := s.storage.UploadVideo(ctx, videoData, job.UserID, job.ID)
	if err != nil {
		s.failJob(ctx, job, err)
		return
	}

	previewPath := s.uploadPreview(ctx, job)

	// 10단계: 완료 처리
	if err := s.db.CompleteJob(ctx, jobID, videoPath, previewPath); err != nil {
		log.Printf("❌ Failed to record completion for job %s: %v", jobID, err)
		return
	}

	s.hub.Publish(ProgressEvent{JobID: jobID, Phase: "done", Status: model.StatusCompleted})
	log.Printf("🎉 Job %s completed: %s", jobID, videoPath)
}

// rebuildRequest - 작업 레코드와 Storage의 입력 이미지로 제출용 요청 재구성
func (s *Service) rebuildRequest(ctx context.Context, job *model.VideoJob) (*AssembledRequest, error) {
	inputs := &MediaInputs{}
	var styleImage *MediaInput

	load := func(path string) (*MediaInput, error) {
		data, err := s.storage.DownloadFromStorage(ctx, path)
		if err != nil {
			return nil, err
		}
		mime, err := utils.SniffImageMIME(data)
		if err != nil {
			return nil, err
		}
		return &MediaInput{Data: data, MIMEType: mime}, nil
	}

	if job.StartImagePath != "" {
		img, err := load(job.StartImagePath)
		if err != nil {
			return nil, fmt.Errorf("failed to load start image: %w", err)
		}
		inputs.StartImage = img
	}
	if job.EndImagePath != "" {
		img, err := load(job.EndImagePath)
		if err != nil {
			return nil, fmt.Errorf("failed to load end image: %w", err)
		}
		inputs.EndImage = img
	}
	for _, path := range job.ReferencePaths {
		img, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load reference image: %w", err)
		}
		inputs.References = append(inputs.References, *img)
	}
	if job.StyleImagePath != "" {
		img, err := load(job.StyleImagePath)
		if err != nil {
			return nil, fmt.Errorf("failed to load style image: %w", err)
		}
		styleImage = img
	}

	req := &GenerationRequest{
		UserID:          job.UserID,
		Mode:            job.Mode,
		Prompt:          job.Prompt,
		Model:           job.Model,
		AspectRatio:     job.AspectRatio,
		Resolution:      job.Resolution,
		DurationSeconds: job.DurationSeconds,
		SourceVideoURL:  job.SourceVideoURL,
	}

	// 루프 모드의 끝 이미지는 제출 시점에 이미 확정되어 저장됨
	return AssembleRequest(req, inputs, false, styleImage)
}

// submit - 모드에 맞는 제공자 호출로 operation 시작
func (s *Service) submit(ctx context.Context, assembled *AssembledRequest) (*genai.GenerateVideosOperation, error) {
	duration := int32(assembled.DurationSeconds)
	genConfig := &genai.GenerateVideosConfig{
		AspectRatio:     assembled.AspectRatio,
		Resolution:      assembled.Resolution,
		DurationSeconds: &duration,
	}

	switch assembled.Mode {
	case model.ModeText:
		return s.client.Models.GenerateVideos(ctx, assembled.Model, assembled.Prompt, nil, genConfig)

	case model.ModeImage:
		return s.client.Models.GenerateVideos(ctx, assembled.Model, assembled.Prompt, toImage(assembled.StartImage), genConfig)

	case model.ModeFrames:
		if assembled.EndImage != nil {
			genConfig.LastFrame = toImage(assembled.EndImage)
		}
		return s.client.Models.GenerateVideos(ctx, assembled.Model, assembled.Prompt, toImage(assembled.StartImage), genConfig)

	case model.ModeReferences:
		for i := range assembled.References {
			genConfig.ReferenceImages = append(genConfig.ReferenceImages, &genai.VideoGenerationReferenceImage{
				Image:         toImage(&assembled.References[i]),
				ReferenceType: genai.VideoGenerationReferenceTypeAsset,
			})
		}
		if assembled.StyleImage != nil {
			genConfig.ReferenceImages = append(genConfig.ReferenceImages, &genai.VideoGenerationReferenceImage{
				Image:         toImage(assembled.StyleImage),
				ReferenceType: genai.VideoGenerationReferenceTypeStyle,
			})
		}
		return s.client.Models.GenerateVideos(ctx, assembled.Model, assembled.Prompt, nil, genConfig)

	case model.ModeExtend:
		source := &genai.GenerateVideosSource{
			Prompt: assembled.Prompt,
			Video:  &genai.Video{URI: assembled.SourceVideoURL},
		}
		return s.client.Models.GenerateVideosFromSource(ctx, assembled.Model, source, genConfig)
	}

	return nil, fmt.Errorf("unknown generation mode: %q", assembled.Mode)
}

// extractVideo - 종료된 operation에서 비디오를 꺼내거나 분류 가능한 에러 반환
func extractVideo(op *genai.GenerateVideosOperation) (*genai.Video, error) {
	// 제공자가 에러로 종료한 경우
	if len(op.Error) > 0 {
		return nil, operationErrorFrom(op.Error)
	}

	// 결과가 비어 있는 경우: 안전 정책 사유가 있으면 그것으로 분류
	if op.Response == nil || len(op.Response.GeneratedVideos) == 0 {
		if op.Response != nil && len(op.Response.RAIMediaFilteredReasons) > 0 {
			return nil, &SafetyError{Reasons: op.Response.RAIMediaFilteredReasons}
		}
		return nil, ErrNoVideosReturned
	}

	video := op.Response.GeneratedVideos[0].Video
	if video == nil || (video.URI == "" && len(video.VideoBytes) == 0) {
		return nil, ErrNoVideoURI
	}

	return video, nil
}

// fetchVideoBytes - 결과 비디오 다운로드
// 바이너리가 인라인으로 오지 않으면 URI를 GET
// Gemini API 백엔드는 API 키를 쿼리로, Vertex 백엔드는 ADC 토큰으로 인증함
func (s *Service) fetchVideoBytes(ctx context.Context, video *genai.Video) ([]byte, error) {
	if len(video.VideoBytes) > 0 {
		return video.VideoBytes, nil
	}

	httpClient := s.http
	downloadURL := video.URI
	if apiKey := config.GetConfig().GeminiAPIKey; apiKey != "" {
		downloadURL = appendAPIKey(downloadURL, apiKey)
	} else {
		authed, err := google.DefaultClient(ctx, "https://www.googleapis.com/auth/cloud-platform")
		if err != nil {
			return nil, fmt.Errorf("failed to build authenticated download client: %w", err)
		}
		httpClient = authed
	}

	req, err := http.NewRequestWithContext(ctx, "GET", downloadURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create video download request: %w", err)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download video: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("video download failed with status %d: %s", resp.StatusCode, string(body))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read video data: %w", err)
	}

	log.Printf("✅ Video downloaded: %d bytes", len(data))
	return data, nil
}

// uploadPreview - 시작 이미지가 있으면 WebP 썸네일 생성 (실패해도 작업은 계속)
func (s *Service) uploadPreview(ctx context.Context, job *model.VideoJob) string {
	if job.StartImagePath == "" {
		return ""
	}

	imageData, err := s.storage.DownloadFromStorage(ctx, job.StartImagePath)
	if err != nil {
		log.Printf("⚠️  Failed to load image for preview: %v", err)
		return ""
	}

	webpData, err := utils.ConvertToWebPThumbnail(imageData, previewMaxWidth, previewQuality)
	if err != nil {
		log.Printf("⚠️  Failed to encode preview thumbnail: %v", err)
		return ""
	}

	path, err := s.storage.UploadPreview(ctx, webpData, job.UserID, job.ID)
	if err != nil {
		log.Printf("⚠️  Failed to upload preview thumbnail: %v", err)
		return ""
	}

	return path
}

// failJob - 에러 분류 후 작업 실패 처리
func (s *Service) failJob(ctx context.Context, job *model.VideoJob, err error) {
	code, userMessage := ClassifyError(err)
	log.Printf("❌ Job %s failed [%s]: %v", job.ID, code, err)

	s.db.FailJob(ctx, job.ID, code, userMessage)
	s.hub.Publish(ProgressEvent{JobID: job.ID, Phase: "failed", Status: model.StatusFailed, Message: userMessage})
}

// GetJobStatus - 작업 상태 조회
func (s *Service) GetJobStatus(jobID string) (*model.VideoJob, error) {
	return s.db.FetchJob(jobID)
}

// IsJobCancelled - cancel.StatusUpdater 구현
func (s *Service) IsJobCancelled(jobID string) bool {
	return redisutil.IsJobCancelled(context.Background(), jobID)
}

// UpdateJobStatus - cancel.StatusUpdater 구현
func (s *Service) UpdateJobStatus(ctx context.Context, jobID string, status string) error {
	return s.db.UpdateJobStatus(ctx, jobID, status)
}

// appendAPIKey - 다운로드 URI에 API 키 쿼리 파라미터 추가
func appendAPIKey(uri, apiKey string) string {
	sep := "?"
	if strings.Contains(uri, "?") {
		sep = "&"
	}
	return uri + sep + "key=" + apiKey
}
